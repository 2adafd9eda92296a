package services

import (
	"context"
	"fmt"

	"medisafe/models"
	"medisafe/repositories"
)

// DoctorDetail is a doctor's clinical profile with their recent activity.
type DoctorDetail struct {
	Doctor        *models.Doctor        `json:"doctor"`
	User          *models.User          `json:"user"`
	Patients      []models.User         `json:"patients"`
	Appointments  []models.Appointment  `json:"appointments"`
	Prescriptions []models.Prescription `json:"prescriptions"`
}

// DoctorService exposes the doctor directory and profile editing.
type DoctorService interface {
	List(ctx context.Context) ([]models.Doctor, error)
	Detail(ctx context.Context, doctorID int64) (*DoctorDetail, error)
	UpdateProfile(ctx context.Context, doctorID int64, input *DoctorProfileInput) (*models.Doctor, error)
}

type doctorService struct {
	doctorRepo repositories.DoctorRepository
	userRepo   repositories.UserRepository
}

func NewDoctorService(doctorRepo repositories.DoctorRepository, userRepo repositories.UserRepository) DoctorService {
	return &doctorService{doctorRepo: doctorRepo, userRepo: userRepo}
}

func (s *doctorService) List(ctx context.Context) ([]models.Doctor, error) {
	return s.doctorRepo.GetAll(ctx)
}

// Detail fetches a doctor together with their account, the patients they
// have seen, their appointments and their prescriptions, including
// prescriptions attributed through a live appointment they conducted.
func (s *doctorService) Detail(ctx context.Context, doctorID int64) (*DoctorDetail, error) {
	doctor, err := s.doctorRepo.GetByID(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	if doctor == nil {
		return nil, ErrDoctorNotFound
	}

	user, err := s.userRepo.GetUserByID(ctx, doctor.UserID)
	if err != nil {
		return nil, err
	}
	patients, err := s.doctorRepo.ListPatients(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	appointments, err := s.doctorRepo.ListAppointments(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	prescriptions, err := s.doctorRepo.ListPrescriptions(ctx, doctorID)
	if err != nil {
		return nil, err
	}

	return &DoctorDetail{
		Doctor:        doctor,
		User:          user,
		Patients:      patients,
		Appointments:  appointments,
		Prescriptions: prescriptions,
	}, nil
}

func (s *doctorService) UpdateProfile(ctx context.Context, doctorID int64, input *DoctorProfileInput) (*models.Doctor, error) {
	doctor, err := s.doctorRepo.GetByID(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	if doctor == nil {
		return nil, ErrDoctorNotFound
	}

	applyDoctorProfile(doctor, input)
	if err := s.doctorRepo.Update(ctx, doctor); err != nil {
		return nil, fmt.Errorf("failed to update doctor: %w", err)
	}
	return doctor, nil
}
