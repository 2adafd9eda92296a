package services

import (
	"context"
	"errors"
	"testing"

	"medisafe/models"
)

func TestDoctorDetailAggregatesClinicalActivity(t *testing.T) {
	userRepo := newFakeUserRepo(
		activeUserFixture(2, "drbob", "drbob@x.com", models.RoleDoctor),
		activeUserFixture(3, "alice", "alice@x.com", models.RolePatient),
		activeUserFixture(4, "carol", "carol@x.com", models.RolePatient),
	)
	doctorRepo := newFakeDoctorRepo(&models.Doctor{ID: 1, UserID: 2, Specialization: "Oncology"})
	doctorRepo.patientsByDoctor = map[int64][]models.User{
		1: {*activeUserFixture(3, "alice", "alice@x.com", models.RolePatient), *activeUserFixture(4, "carol", "carol@x.com", models.RolePatient)},
	}
	svc := NewDoctorService(doctorRepo, userRepo)

	detail, err := svc.Detail(context.Background(), 1)
	if err != nil {
		t.Fatalf("Detail() error: %v", err)
	}
	if detail.User == nil || detail.User.Username != "drbob" {
		t.Errorf("user = %+v", detail.User)
	}
	if len(detail.Patients) != 2 {
		t.Fatalf("patients = %d, want 2", len(detail.Patients))
	}
	if detail.Patients[0].Username != "alice" {
		t.Errorf("first patient = %q", detail.Patients[0].Username)
	}
}

func TestDoctorDetailUnknownDoctor(t *testing.T) {
	svc := NewDoctorService(newFakeDoctorRepo(), newFakeUserRepo())

	if _, err := svc.Detail(context.Background(), 42); !errors.Is(err, ErrDoctorNotFound) {
		t.Errorf("err = %v, want ErrDoctorNotFound", err)
	}
}
