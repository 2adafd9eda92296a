package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"medisafe/database"
	"medisafe/models"
	"medisafe/repositories"
	"medisafe/utils"

	"github.com/google/uuid"
)

// AuthService covers registration, login and the password reset flow.
type AuthService interface {
	Register(ctx context.Context, user *models.User) error
	Login(ctx context.Context, email, password string) (*models.User, error)
	UpdatePassword(ctx context.Context, userID int64, currentPassword, newPassword string) error
	RequestPasswordReset(ctx context.Context, email string) error
	ConfirmPasswordReset(ctx context.Context, email, resetCode, newPassword string) error
}

type authService struct {
	userRepo    repositories.UserRepository
	profileRepo repositories.ProfileRepository
	patientRepo repositories.PatientRecordRepository
	notifier    NotificationService
}

func NewAuthService(
	userRepo repositories.UserRepository,
	profileRepo repositories.ProfileRepository,
	patientRepo repositories.PatientRecordRepository,
	notifier NotificationService,
) AuthService {
	return &authService{
		userRepo:    userRepo,
		profileRepo: profileRepo,
		patientRepo: patientRepo,
		notifier:    notifier,
	}
}

// Register validates and creates an account, defaulting the role to patient,
// then seeds the empty profile and patient record rows. Registration is
// serialized per email with a short lock so concurrent signups on the same
// address cannot both pass the uniqueness check.
func (s *authService) Register(ctx context.Context, user *models.User) error {
	lockKey := fmt.Sprintf("register_lock:%s", user.Email)
	lockValue := uuid.New().String()
	locked, err := database.NewLock(ctx, lockKey, lockValue, time.Minute)
	if err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !locked {
		return errors.New("failed to acquire lock")
	}
	defer func() {
		if err := database.ReleaseLock(ctx, lockKey, lockValue); err != nil {
			log.Printf("Failed to release lock: %v", err)
		}
	}()

	if user.Role == "" {
		user.Role = models.RolePatient
	}
	if err := utils.ValidateUserData(*user); err != nil {
		return fmt.Errorf("invalid user data: %w", err)
	}

	if taken, err := s.userRepo.EmailTaken(ctx, user.Email, 0); err != nil {
		return err
	} else if taken {
		return ErrIdentityTaken
	}
	if taken, err := s.userRepo.UsernameTaken(ctx, user.Username, 0); err != nil {
		return err
	} else if taken {
		return ErrIdentityTaken
	}

	hashedPassword, err := utils.HashPassword(user.Password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.Password = hashedPassword
	user.IsActive = true
	user.Status = true

	if err := s.userRepo.CreateUser(ctx, user); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	if _, _, err := s.profileRepo.GetOrCreate(ctx, user.ID); err != nil {
		log.Printf("Failed to seed profile for user %d: %v", user.ID, err)
	}
	if user.Role == models.RolePatient {
		if _, _, err := s.patientRepo.GetOrCreate(ctx, user.ID); err != nil {
			log.Printf("Failed to seed patient record for user %d: %v", user.ID, err)
		}
	}

	s.notifier.Notify(ctx, &models.Notification{
		UserID:   user.ID,
		Title:    "Welcome to MediSafe",
		Message:  fmt.Sprintf("Your account %s was created successfully.", user.Username),
		Type:     models.NotificationTypeSystem,
		Priority: models.PriorityLow,
	})
	return nil
}

// Login authenticates by email and password and stamps last_login. Deleted
// and deactivated accounts cannot sign in even with the right password.
func (s *authService) Login(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.userRepo.AuthenticateUser(ctx, email)
	if err != nil {
		return nil, errors.New("invalid email or password")
	}
	if !user.HasUsablePassword() || !utils.CheckPassword(user.Password, password) {
		return nil, errors.New("invalid email or password")
	}
	if !user.IsActive || user.IsDeleted() {
		return nil, errors.New("account is deactivated")
	}

	now := time.Now()
	if err := s.userRepo.UpdateAccount(ctx, user.ID, map[string]interface{}{"last_login": now}); err != nil {
		log.Printf("Failed to update last login for user %d: %v", user.ID, err)
	} else {
		user.LastLogin = &now
	}
	return user, nil
}

// UpdatePassword changes the password after verifying the current one.
func (s *authService) UpdatePassword(ctx context.Context, userID int64, currentPassword, newPassword string) error {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrAccountNotFound
	}
	if !user.HasUsablePassword() || !utils.CheckPassword(user.Password, currentPassword) {
		return errors.New("current password is incorrect")
	}

	hashedPassword, err := utils.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	return s.userRepo.UpdateUserPassword(ctx, userID, hashedPassword)
}

// RequestPasswordReset emails a short-lived reset code and raises a
// password-reset notification for the admins. The response is identical
// whether or not the email exists.
func (s *authService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user == nil || user.IsDeleted() {
		// Do not reveal whether the address is registered.
		return nil
	}

	code := utils.GenerateResetCode()
	if err := utils.SetResetCode(ctx, email, code); err != nil {
		return fmt.Errorf("failed to store reset code: %w", err)
	}
	if err := utils.SendResetCodeEmail(email, code); err != nil {
		return fmt.Errorf("failed to send reset email: %w", err)
	}

	admins, err := s.userRepo.ListActiveByRole(ctx, models.RoleAdmin)
	if err != nil {
		log.Printf("Failed to list admins for reset notification: %v", err)
		return nil
	}
	for i := range admins {
		userID := user.ID
		s.notifier.Notify(ctx, &models.Notification{
			UserID:    admins[i].ID,
			Title:     "Password Reset Requested",
			Message:   fmt.Sprintf("%s (%s) requested a password reset.", user.Username, user.Email),
			Type:      models.NotificationTypePasswordReset,
			Priority:  models.PriorityHigh,
			RelatedID: &userID,
		})
	}
	return nil
}

// ConfirmPasswordReset verifies the emailed code and installs the new
// password, consuming the code on success.
func (s *authService) ConfirmPasswordReset(ctx context.Context, email, resetCode, newPassword string) error {
	if err := utils.ValidatePasswordReset(resetCode, newPassword); err != nil {
		return fmt.Errorf("invalid reset request: %w", err)
	}

	stored, err := utils.GetResetCode(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to read reset code: %w", err)
	}
	if stored == nil || *stored != resetCode {
		return errors.New("invalid or expired reset code")
	}

	user, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrAccountNotFound
	}

	hashedPassword, err := utils.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.userRepo.UpdateUserPassword(ctx, user.ID, hashedPassword); err != nil {
		return err
	}
	if err := utils.DeleteResetCode(ctx, email); err != nil {
		log.Printf("Failed to delete reset code for %s: %v", email, err)
	}

	s.notifier.Notify(ctx, &models.Notification{
		UserID:   user.ID,
		Title:    "Password Changed",
		Message:  "Your password was reset successfully.",
		Type:     models.NotificationTypePasswordReset,
		Priority: models.PriorityMedium,
	})
	return nil
}
