package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"medisafe/models"
	"medisafe/repositories"
	"medisafe/utils"
)

// ProfileUpdateInput carries the editable profile fields. Pointer fields
// distinguish "unset" from "clear".
type ProfileUpdateInput struct {
	FirstName     *string `json:"first_name"`
	MiddleName    *string `json:"middle_name"`
	LastName      *string `json:"last_name"`
	Sex           *string `json:"sex"`
	Birthday      *string `json:"birthday"`
	CivilStatus   *string `json:"civil_status"`
	Address       *string `json:"address"`
	ContactNumber *string `json:"contact_number"`
	ContactPerson *string `json:"contact_person"`

	// Patient clinical fields, applied only when a patient record exists.
	BloodType             *string `json:"blood_type"`
	Allergies             *string `json:"allergies"`
	Conditions            *string `json:"conditions"`
	EmergencyContactName  *string `json:"emergency_contact_name"`
	EmergencyContactPhone *string `json:"emergency_contact_phone"`
}

// VitalsSnapshot is the latest captured vitals set for the profile view.
type VitalsSnapshot struct {
	BloodPressure string `json:"blood_pressure,omitempty"`
	HeartRate     string `json:"heart_rate,omitempty"`
	Temperature   string `json:"temperature,omitempty"`
	Weight        string `json:"weight,omitempty"`
	RecordedAt    string `json:"recorded_at,omitempty"`
}

// ProfileOverview aggregates everything the profile page shows.
type ProfileOverview struct {
	User              *models.User        `json:"user"`
	Profile           *models.UserProfile `json:"profile"`
	PatientRecord     *models.Patient     `json:"patient_record,omitempty"`
	Age               *int                `json:"age,omitempty"`
	CompletionPercent int                 `json:"completion_percent"`
	Vitals            *VitalsSnapshot     `json:"vitals,omitempty"`
}

// DashboardStats summarizes a user's clinical activity.
type DashboardStats struct {
	TotalAppointments     int64                 `json:"total_appointments"`
	CompletedAppointments int64                 `json:"completed_appointments"`
	UpcomingAppointments  int64                 `json:"upcoming_appointments"`
	LabResults            int64                 `json:"lab_results"`
	Prescriptions         int64                 `json:"prescriptions"`
	RecentAppointments    []models.Appointment  `json:"recent_appointments"`
	RecentPrescriptions   []models.Prescription `json:"recent_prescriptions"`
}

// ProfileService reads and edits profiles, including the photo upload.
type ProfileService interface {
	Overview(ctx context.Context, userID int64) (*ProfileOverview, error)
	Update(ctx context.Context, userID int64, input *ProfileUpdateInput) (*models.UserProfile, error)
	UploadPhoto(ctx context.Context, userID int64, contentType string, data []byte) (string, error)
	Dashboard(ctx context.Context, userID int64) (*DashboardStats, error)
}

type profileService struct {
	userRepo     repositories.UserRepository
	profileRepo  repositories.ProfileRepository
	patientRepo  repositories.PatientRecordRepository
	clinicalRepo repositories.ClinicalRepository
	notifier     NotificationService
	now          func() time.Time
}

func NewProfileService(
	userRepo repositories.UserRepository,
	profileRepo repositories.ProfileRepository,
	patientRepo repositories.PatientRecordRepository,
	clinicalRepo repositories.ClinicalRepository,
	notifier NotificationService,
) ProfileService {
	return &profileService{
		userRepo:     userRepo,
		profileRepo:  profileRepo,
		patientRepo:  patientRepo,
		clinicalRepo: clinicalRepo,
		notifier:     notifier,
		now:          time.Now,
	}
}

// Overview assembles the profile page: demographics, the patient clinical
// record when one exists, completion percentage, computed age and the
// latest captured vitals.
func (s *profileService) Overview(ctx context.Context, userID int64) (*ProfileOverview, error) {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrAccountNotFound
	}

	profile, _, err := s.profileRepo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	overview := &ProfileOverview{
		User:              user,
		Profile:           profile,
		CompletionPercent: completionPercent(profile),
	}
	if profile.Birthday != nil {
		age := ageAt(*profile.Birthday, s.now())
		overview.Age = &age
	}

	if user.Role == models.RolePatient {
		patient, err := s.patientRepo.GetByUserID(ctx, userID)
		if err != nil {
			return nil, err
		}
		overview.PatientRecord = patient
	}

	live, err := s.clinicalRepo.LatestLiveAppointment(ctx, userID)
	if err != nil {
		return nil, err
	}
	if live != nil && len(live.VitalSigns) > 0 {
		var vitals VitalsSnapshot
		if err := json.Unmarshal(live.VitalSigns, &vitals); err == nil {
			vitals.RecordedAt = live.CreatedAt.Format(time.RFC3339)
			overview.Vitals = &vitals
		}
	}
	return overview, nil
}

// Update applies the supplied profile fields, and the clinical fields onto
// the patient record when the account has one.
func (s *profileService) Update(ctx context.Context, userID int64, input *ProfileUpdateInput) (*models.UserProfile, error) {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrAccountNotFound
	}

	profile, _, err := s.profileRepo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	setString(&profile.FirstName, input.FirstName)
	setString(&profile.MiddleName, input.MiddleName)
	setString(&profile.LastName, input.LastName)
	setString(&profile.Sex, input.Sex)
	setString(&profile.CivilStatus, input.CivilStatus)
	setString(&profile.Address, input.Address)
	setString(&profile.ContactNumber, input.ContactNumber)
	setString(&profile.ContactPerson, input.ContactPerson)
	if input.Birthday != nil {
		if *input.Birthday == "" {
			profile.Birthday = nil
		} else {
			birthday, err := time.Parse("2006-01-02", *input.Birthday)
			if err != nil {
				return nil, fmt.Errorf("invalid birthday: %w", err)
			}
			profile.Birthday = &birthday
		}
	}

	if err := s.profileRepo.Save(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to save profile: %w", err)
	}

	if hasClinicalFields(input) {
		patient, _, err := s.patientRepo.GetOrCreate(ctx, userID)
		if err != nil {
			return nil, err
		}
		setString(&patient.BloodType, input.BloodType)
		setString(&patient.Allergies, input.Allergies)
		setString(&patient.Conditions, input.Conditions)
		setString(&patient.EmergencyContactName, input.EmergencyContactName)
		setString(&patient.EmergencyContactPhone, input.EmergencyContactPhone)
		if err := s.patientRepo.Save(ctx, patient); err != nil {
			return nil, fmt.Errorf("failed to save patient record: %w", err)
		}
	}
	return profile, nil
}

// UploadPhoto validates the MIME type against the image whitelist and stores
// the photo inline as a data URL. Returns the stored URL.
func (s *profileService) UploadPhoto(ctx context.Context, userID int64, contentType string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrNoFileAttached
	}
	if !utils.IsAllowedImageType(contentType) {
		return "", ErrInvalidFileType
	}

	profile, _, err := s.profileRepo.GetOrCreate(ctx, userID)
	if err != nil {
		return "", err
	}
	profile.PhotoURL = utils.EncodeDataURL(contentType, data)
	if err := s.profileRepo.Save(ctx, profile); err != nil {
		return "", fmt.Errorf("failed to save photo: %w", err)
	}

	s.notifier.Notify(ctx, &models.Notification{
		UserID:   userID,
		Title:    "Profile Photo Updated",
		Message:  "Your profile photo was updated.",
		Type:     models.NotificationTypeAccount,
		Priority: models.PriorityLow,
	})
	return profile.PhotoURL, nil
}

// Dashboard gathers the per-user clinical counters and recent activity.
func (s *profileService) Dashboard(ctx context.Context, userID int64) (*DashboardStats, error) {
	total, completed, upcoming, err := s.clinicalRepo.CountAppointments(ctx, userID)
	if err != nil {
		return nil, err
	}
	labResults, err := s.clinicalRepo.CountLabResults(ctx, userID)
	if err != nil {
		return nil, err
	}
	prescriptions, err := s.clinicalRepo.CountPrescriptions(ctx, userID)
	if err != nil {
		return nil, err
	}
	recentAppointments, err := s.clinicalRepo.RecentAppointments(ctx, userID, 5)
	if err != nil {
		return nil, err
	}
	recentPrescriptions, err := s.clinicalRepo.RecentPrescriptions(ctx, userID, 5)
	if err != nil {
		return nil, err
	}
	return &DashboardStats{
		TotalAppointments:     total,
		CompletedAppointments: completed,
		UpcomingAppointments:  upcoming,
		LabResults:            labResults,
		Prescriptions:         prescriptions,
		RecentAppointments:    recentAppointments,
		RecentPrescriptions:   recentPrescriptions,
	}, nil
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func hasClinicalFields(input *ProfileUpdateInput) bool {
	return input.BloodType != nil || input.Allergies != nil || input.Conditions != nil ||
		input.EmergencyContactName != nil || input.EmergencyContactPhone != nil
}

// completionPercent scores the profile by its filled demographic fields.
func completionPercent(p *models.UserProfile) int {
	fields := []bool{
		p.FirstName != "",
		p.LastName != "",
		p.Sex != "",
		p.Birthday != nil,
		p.CivilStatus != "",
		p.Address != "",
		p.ContactNumber != "",
		p.ContactPerson != "",
		p.PhotoURL != "",
	}
	filled := 0
	for _, ok := range fields {
		if ok {
			filled++
		}
	}
	return filled * 100 / len(fields)
}

func ageAt(birthday, now time.Time) int {
	age := now.Year() - birthday.Year()
	if now.Month() < birthday.Month() ||
		(now.Month() == birthday.Month() && now.Day() < birthday.Day()) {
		age--
	}
	return age
}
