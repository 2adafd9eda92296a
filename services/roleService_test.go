package services

import (
	"context"
	"errors"
	"testing"

	"medisafe/models"
)

func newRoleFixture(users []*models.User, doctors []*models.Doctor, patients []*models.Patient) (RoleService, *fakeUserRepo, *fakeDoctorRepo, *fakePatientRepo, *fakeConversionRepo) {
	userRepo := newFakeUserRepo(users...)
	doctorRepo := newFakeDoctorRepo(doctors...)
	patientRepo := newFakePatientRepo(patients...)
	conversionRepo := &fakeConversionRepo{users: userRepo, doctors: doctorRepo, patients: patientRepo}
	notifier := NewNotificationService(&fakeNotificationRepo{}, userRepo)

	svc := NewRoleService(userRepo, conversionRepo, notifier)
	return svc, userRepo, doctorRepo, patientRepo, conversionRepo
}

func TestPromoteToTeamMember(t *testing.T) {
	svc, userRepo, _, patientRepo, _ := newRoleFixture(
		[]*models.User{activeUserFixture(2, "bob", "bob@x.com", models.RolePatient)},
		nil,
		[]*models.Patient{{ID: 1, UserID: 2}},
	)

	result, err := svc.PromoteToTeamMember(context.Background(), 2, models.RoleNurse)
	if err != nil {
		t.Fatalf("PromoteToTeamMember() error: %v", err)
	}
	if result.OriginalRole != models.RolePatient || result.NewRole != models.RoleNurse {
		t.Errorf("conversion = %s -> %s", result.OriginalRole, result.NewRole)
	}
	if userRepo.users[2].Role != models.RoleNurse {
		t.Errorf("role = %q", userRepo.users[2].Role)
	}
	if _, ok := patientRepo.patients[2]; ok {
		t.Error("patient record should be dropped on staff promotion")
	}
}

func TestPromoteToTeamMemberRejectsDoctor(t *testing.T) {
	svc, _, _, _, _ := newRoleFixture(
		[]*models.User{activeUserFixture(2, "drbob", "drbob@x.com", models.RoleDoctor)},
		[]*models.Doctor{{ID: 1, UserID: 2}},
		nil,
	)

	if _, err := svc.PromoteToTeamMember(context.Background(), 2, models.RoleNurse); !errors.Is(err, ErrAlreadyDoctor) {
		t.Errorf("err = %v, want ErrAlreadyDoctor", err)
	}
}

func TestPromoteToTeamMemberRejectsSameRole(t *testing.T) {
	svc, _, _, _, _ := newRoleFixture(
		[]*models.User{activeUserFixture(2, "nina", "nina@x.com", models.RoleNurse)},
		nil, nil,
	)

	if _, err := svc.PromoteToTeamMember(context.Background(), 2, models.RoleNurse); !errors.Is(err, ErrSameRole) {
		t.Errorf("err = %v, want ErrSameRole", err)
	}
}

func TestPromoteToDoctorCreatesProfile(t *testing.T) {
	svc, userRepo, doctorRepo, _, _ := newRoleFixture(
		[]*models.User{activeUserFixture(2, "bob", "bob@x.com", models.RolePatient)},
		nil, nil,
	)

	result, err := svc.PromoteToDoctor(context.Background(), 2, &DoctorProfileInput{
		Specialization: "Cardiology",
		LicenseNumber:  "LIC-44",
	})
	if err != nil {
		t.Fatalf("PromoteToDoctor() error: %v", err)
	}
	if result.NewRole != models.RoleDoctor {
		t.Errorf("NewRole = %q", result.NewRole)
	}
	if userRepo.users[2].Role != models.RoleDoctor {
		t.Errorf("role = %q", userRepo.users[2].Role)
	}
	doctor := doctorRepo.doctors[2]
	if doctor == nil || doctor.Specialization != "Cardiology" {
		t.Errorf("doctor profile = %+v", doctor)
	}
}

func TestPromoteToDoctorRejectsExistingDoctor(t *testing.T) {
	svc, _, _, _, _ := newRoleFixture(
		[]*models.User{activeUserFixture(2, "drbob", "drbob@x.com", models.RoleDoctor)},
		[]*models.Doctor{{ID: 1, UserID: 2, Specialization: "Oncology"}},
		nil,
	)

	if _, err := svc.PromoteToDoctor(context.Background(), 2, nil); !errors.Is(err, ErrAlreadyDoctor) {
		t.Errorf("err = %v, want ErrAlreadyDoctor", err)
	}
}

func TestDemoteToPatientRetainsDoctorRow(t *testing.T) {
	svc, userRepo, doctorRepo, patientRepo, _ := newRoleFixture(
		[]*models.User{activeUserFixture(2, "drbob", "drbob@x.com", models.RoleDoctor)},
		[]*models.Doctor{{ID: 1, UserID: 2, Specialization: "Oncology"}},
		nil,
	)

	result, err := svc.DemoteToPatient(context.Background(), 2)
	if err != nil {
		t.Fatalf("DemoteToPatient() error: %v", err)
	}
	if userRepo.users[2].Role != models.RolePatient {
		t.Errorf("role = %q", userRepo.users[2].Role)
	}
	if !result.PatientCreated {
		t.Error("expected a patient record to be created")
	}
	if _, ok := patientRepo.patients[2]; !ok {
		t.Error("patient record missing")
	}
	// The clinical profile survives so a re-promotion recovers it.
	if _, ok := doctorRepo.doctors[2]; !ok {
		t.Error("doctor row must be retained on demotion")
	}
}

func TestDemoteToPatientRejectsPatients(t *testing.T) {
	svc, _, _, _, _ := newRoleFixture(
		[]*models.User{activeUserFixture(2, "bob", "bob@x.com", models.RolePatient)},
		nil, nil,
	)

	if _, err := svc.DemoteToPatient(context.Background(), 2); !errors.Is(err, ErrNotTeamMember) {
		t.Errorf("err = %v, want ErrNotTeamMember", err)
	}
}

func TestDelistDoctorRemovesDoctorRow(t *testing.T) {
	svc, userRepo, doctorRepo, patientRepo, _ := newRoleFixture(
		[]*models.User{activeUserFixture(2, "drbob", "drbob@x.com", models.RoleDoctor)},
		[]*models.Doctor{{ID: 1, UserID: 2, Specialization: "Oncology"}},
		nil,
	)

	result, err := svc.DelistDoctor(context.Background(), 2)
	if err != nil {
		t.Fatalf("DelistDoctor() error: %v", err)
	}
	if userRepo.users[2].Role != models.RolePatient {
		t.Errorf("role = %q", userRepo.users[2].Role)
	}
	if _, ok := doctorRepo.doctors[2]; ok {
		t.Error("doctor row must be deleted on delisting")
	}
	if _, ok := patientRepo.patients[2]; !ok {
		t.Error("patient record missing")
	}
	if !result.PatientCreated {
		t.Error("expected a patient record to be created")
	}
}

func TestDelistDoctorFailureLeavesRoleIntact(t *testing.T) {
	// The conversion is one transactional repository call, so a failure
	// partway through must leave both the role and the doctor row as
	// they were.
	svc, userRepo, doctorRepo, _, conversionRepo := newRoleFixture(
		[]*models.User{activeUserFixture(2, "drbob", "drbob@x.com", models.RoleDoctor)},
		[]*models.Doctor{{ID: 1, UserID: 2, Specialization: "Oncology"}},
		nil,
	)
	conversionRepo.failWith = errors.New("connection reset")

	if _, err := svc.DelistDoctor(context.Background(), 2); err == nil {
		t.Fatal("expected an error from the failed conversion")
	}
	if userRepo.users[2].Role != models.RoleDoctor {
		t.Errorf("role = %q, must stay doctor after a failed delist", userRepo.users[2].Role)
	}
	if _, ok := doctorRepo.doctors[2]; !ok {
		t.Error("doctor row must survive a failed delist")
	}
}

func TestDelistDoctorRejectsNonDoctors(t *testing.T) {
	svc, _, _, _, _ := newRoleFixture(
		[]*models.User{activeUserFixture(2, "nina", "nina@x.com", models.RoleNurse)},
		nil, nil,
	)

	if _, err := svc.DelistDoctor(context.Background(), 2); !errors.Is(err, ErrDoctorNotFound) {
		t.Errorf("err = %v, want ErrDoctorNotFound", err)
	}
}

func TestRePromotionRecoversRetainedProfile(t *testing.T) {
	svc, _, doctorRepo, _, _ := newRoleFixture(
		[]*models.User{activeUserFixture(2, "drbob", "drbob@x.com", models.RoleDoctor)},
		[]*models.Doctor{{ID: 1, UserID: 2, Specialization: "Oncology"}},
		nil,
	)

	if _, err := svc.DemoteToPatient(context.Background(), 2); err != nil {
		t.Fatalf("DemoteToPatient() error: %v", err)
	}
	if _, err := svc.PromoteToDoctor(context.Background(), 2, nil); err != nil {
		t.Fatalf("PromoteToDoctor() error: %v", err)
	}
	doctor := doctorRepo.doctors[2]
	if doctor == nil || doctor.Specialization != "Oncology" {
		t.Errorf("retained profile not recovered: %+v", doctor)
	}
}
