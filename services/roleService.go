package services

import (
	"context"
	"encoding/json"
	"fmt"

	"medisafe/models"
	"medisafe/repositories"
)

// ConversionResult reports the outcome of a role conversion.
type ConversionResult struct {
	UserID         int64  `json:"user_id"`
	Username       string `json:"username"`
	OriginalRole   string `json:"original_role"`
	NewRole        string `json:"new_role"`
	PatientCreated bool   `json:"patient_record_created,omitempty"`
}

// DoctorProfileInput carries the optional clinical profile supplied when
// promoting an account to doctor.
type DoctorProfileInput struct {
	Specialization    string              `json:"specialization"`
	LicenseNumber     string              `json:"license_number"`
	YearsOfExperience int                 `json:"years_of_experience"`
	ContactInfo       string              `json:"contact_info"`
	Availability      models.Availability `json:"availability"`
}

// RoleService implements the conversions between patient, team-member and
// doctor roles. Conversions are guarded: doctors do not stack with team
// roles, and demotion keeps the doctor's clinical profile for a later
// re-promotion. The mutation itself is a single transactional repository
// call so a failure never leaves the role flipped with its dependent rows
// unadjusted.
type RoleService interface {
	PromoteToTeamMember(ctx context.Context, targetID int64, role string) (*ConversionResult, error)
	PromoteToDoctor(ctx context.Context, targetID int64, profile *DoctorProfileInput) (*ConversionResult, error)
	DemoteToPatient(ctx context.Context, targetID int64) (*ConversionResult, error)
	DelistDoctor(ctx context.Context, targetID int64) (*ConversionResult, error)
}

type roleService struct {
	userRepo       repositories.UserRepository
	conversionRepo repositories.ConversionRepository
	notifier       NotificationService
}

func NewRoleService(
	userRepo repositories.UserRepository,
	conversionRepo repositories.ConversionRepository,
	notifier NotificationService,
) RoleService {
	return &roleService{
		userRepo:       userRepo,
		conversionRepo: conversionRepo,
		notifier:       notifier,
	}
}

func (s *roleService) activeUser(ctx context.Context, targetID int64) (*models.User, error) {
	user, err := s.userRepo.GetUserByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if user == nil || user.IsDeleted() {
		return nil, ErrAccountNotFound
	}
	return user, nil
}

// PromoteToTeamMember assigns an admin, nurse or lab tech role. Doctors must
// be delisted first so clinical and team roles never stack. Leaving the
// patient role drops the clinical record with it.
func (s *roleService) PromoteToTeamMember(ctx context.Context, targetID int64, role string) (*ConversionResult, error) {
	user, err := s.activeUser(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if user.Role == models.RoleDoctor {
		return nil, ErrAlreadyDoctor
	}
	if user.Role == role {
		return nil, ErrSameRole
	}

	original := user.Role
	if err := s.conversionRepo.AssignTeamRole(ctx, targetID, role); err != nil {
		return nil, fmt.Errorf("failed to convert role: %w", err)
	}

	s.notifier.Notify(ctx, &models.Notification{
		UserID:   targetID,
		Title:    "Role Updated",
		Message:  fmt.Sprintf("Your account role changed from %s to %s.", original, role),
		Type:     models.NotificationTypeAccount,
		Priority: models.PriorityMedium,
	})

	return &ConversionResult{
		UserID:       targetID,
		Username:     user.Username,
		OriginalRole: original,
		NewRole:      role,
	}, nil
}

// PromoteToDoctor changes the role to doctor and creates or refreshes the
// clinical profile row. An account already holding the doctor role is
// rejected rather than silently overwritten.
func (s *roleService) PromoteToDoctor(ctx context.Context, targetID int64, profile *DoctorProfileInput) (*ConversionResult, error) {
	user, err := s.activeUser(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if user.Role == models.RoleDoctor {
		return nil, ErrAlreadyDoctor
	}

	original := user.Role
	var row *models.Doctor
	if profile != nil {
		row = &models.Doctor{UserID: targetID}
		applyDoctorProfile(row, profile)
	}
	if err := s.conversionRepo.AssignDoctorRole(ctx, targetID, row); err != nil {
		return nil, fmt.Errorf("failed to convert role: %w", err)
	}

	s.notifier.Notify(ctx, &models.Notification{
		UserID:   targetID,
		Title:    "Promoted to Doctor",
		Message:  "Your account now has doctor access.",
		Type:     models.NotificationTypeAccount,
		Priority: models.PriorityMedium,
	})

	return &ConversionResult{
		UserID:       targetID,
		Username:     user.Username,
		OriginalRole: original,
		NewRole:      models.RoleDoctor,
	}, nil
}

// DemoteToPatient moves a team member back to the patient role and ensures a
// patient record exists. A doctor's clinical profile is kept so a later
// re-promotion recovers it.
func (s *roleService) DemoteToPatient(ctx context.Context, targetID int64) (*ConversionResult, error) {
	user, err := s.activeUser(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if !models.IsTeamRole(user.Role) {
		return nil, ErrNotTeamMember
	}

	original := user.Role
	created, err := s.conversionRepo.AssignPatientRole(ctx, targetID, false)
	if err != nil {
		return nil, fmt.Errorf("failed to convert role: %w", err)
	}

	s.notifier.Notify(ctx, &models.Notification{
		UserID:   targetID,
		Title:    "Role Updated",
		Message:  fmt.Sprintf("Your account role changed from %s to %s.", original, models.RolePatient),
		Type:     models.NotificationTypeAccount,
		Priority: models.PriorityMedium,
	})

	return &ConversionResult{
		UserID:         targetID,
		Username:       user.Username,
		OriginalRole:   original,
		NewRole:        models.RolePatient,
		PatientCreated: created,
	}, nil
}

// DelistDoctor demotes a doctor to patient and removes the clinical profile
// entirely. Only accounts currently holding the doctor role qualify.
func (s *roleService) DelistDoctor(ctx context.Context, targetID int64) (*ConversionResult, error) {
	user, err := s.activeUser(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if user.Role != models.RoleDoctor {
		return nil, ErrDoctorNotFound
	}

	created, err := s.conversionRepo.AssignPatientRole(ctx, targetID, true)
	if err != nil {
		return nil, fmt.Errorf("failed to delist doctor: %w", err)
	}

	s.notifier.Notify(ctx, &models.Notification{
		UserID:   targetID,
		Title:    "Doctor Access Removed",
		Message:  "Your doctor profile was removed and your account is now a patient account.",
		Type:     models.NotificationTypeAccount,
		Priority: models.PriorityHigh,
	})

	return &ConversionResult{
		UserID:         targetID,
		Username:       user.Username,
		OriginalRole:   models.RoleDoctor,
		NewRole:        models.RolePatient,
		PatientCreated: created,
	}, nil
}

func applyDoctorProfile(doctor *models.Doctor, profile *DoctorProfileInput) {
	if profile == nil {
		return
	}
	doctor.Specialization = profile.Specialization
	doctor.LicenseNumber = profile.LicenseNumber
	doctor.YearsOfExperience = profile.YearsOfExperience
	doctor.ContactInfo = profile.ContactInfo
	if len(profile.Availability.Days) > 0 || profile.Availability.Start != "" {
		if raw, err := json.Marshal(profile.Availability); err == nil {
			doctor.Availability = raw
		}
	}
}
