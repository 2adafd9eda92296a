package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"medisafe/models"
	"medisafe/repositories"
	"medisafe/utils"

	"gorm.io/gorm"
)

// NotificationService creates and reads notification rows. Creation through
// Notify is best-effort: it runs after the primary mutation has committed
// and never propagates its failure back to the caller.
type NotificationService interface {
	Notify(ctx context.Context, notification *models.Notification)
	SendMessageToAdmins(ctx context.Context, sender *models.User, title, message string) (int, error)
	MarkRead(ctx context.Context, notificationID, requesterID int64, admin bool) error
	ListForUser(ctx context.Context, userID int64) ([]models.Notification, error)
	CountUnread(ctx context.Context, userID int64) (int64, error)
	ListPasswordResetRequests(ctx context.Context, userID int64) ([]models.Notification, error)
	AttachedFile(ctx context.Context, notificationID, requesterID int64, admin bool) (filename, mimeType string, data []byte, err error)
}

type notificationService struct {
	notificationRepo repositories.NotificationRepository
	userRepo         repositories.UserRepository
}

func NewNotificationService(
	notificationRepo repositories.NotificationRepository,
	userRepo repositories.UserRepository,
) NotificationService {
	return &notificationService{
		notificationRepo: notificationRepo,
		userRepo:         userRepo,
	}
}

// Notify writes a notification row, logging instead of failing so it never
// blocks the mutation that triggered it.
func (s *notificationService) Notify(ctx context.Context, notification *models.Notification) {
	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		log.Printf("Failed to create notification %q for user %d: %v", notification.Title, notification.UserID, err)
	}
}

// SendMessageToAdmins fans a patient message out to every active admin,
// falling back to staff-flagged accounts and finally to any active account
// when no admin exists at all. Returns the number of notifications created.
func (s *notificationService) SendMessageToAdmins(ctx context.Context, sender *models.User, title, message string) (int, error) {
	recipients, err := s.userRepo.ListActiveByRole(ctx, models.RoleAdmin)
	if err != nil {
		return 0, fmt.Errorf("failed to find admin recipients: %w", err)
	}
	if len(recipients) == 0 {
		recipients, err = s.userRepo.ListActiveStaff(ctx)
		if err != nil {
			return 0, fmt.Errorf("failed to find staff recipients: %w", err)
		}
	}
	if len(recipients) == 0 {
		fallback, err := s.userRepo.FirstActiveUser(ctx)
		if err != nil {
			return 0, fmt.Errorf("failed to find fallback recipient: %w", err)
		}
		if fallback != nil {
			recipients = []models.User{*fallback}
		}
	}

	senderEmail := sender.Email
	if senderEmail == "" {
		senderEmail = "No email"
	}

	created := 0
	for i := range recipients {
		senderID := sender.ID
		notification := models.Notification{
			UserID:    recipients[i].ID,
			Title:     fmt.Sprintf("Patient Message: %s", title),
			Message:   fmt.Sprintf("From: %s (%s)\n\n%s", sender.Username, senderEmail, message),
			Type:      models.NotificationTypeSystem,
			Priority:  models.PriorityMedium,
			RelatedID: &senderID,
		}
		if err := s.notificationRepo.Create(ctx, &notification); err != nil {
			log.Printf("Failed to create notification for %s: %v", recipients[i].Username, err)
			continue
		}
		created++
	}
	if created == 0 {
		return 0, errors.New("could not create notification")
	}
	return created, nil
}

// MarkRead flags a notification as read. Non-admin callers can only touch
// their own notifications.
func (s *notificationService) MarkRead(ctx context.Context, notificationID, requesterID int64, admin bool) error {
	if _, err := s.authorize(ctx, notificationID, requesterID, admin); err != nil {
		return err
	}
	err := s.notificationRepo.MarkRead(ctx, notificationID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotificationNotFound
	}
	return err
}

// authorize resolves the notification and rejects callers who neither own it
// nor hold admin access.
func (s *notificationService) authorize(ctx context.Context, notificationID, requesterID int64, admin bool) (*models.Notification, error) {
	notification, err := s.notificationRepo.GetByID(ctx, notificationID)
	if err != nil {
		return nil, err
	}
	if notification == nil {
		return nil, ErrNotificationNotFound
	}
	if !admin && notification.UserID != requesterID {
		return nil, ErrNotificationAccess
	}
	return notification, nil
}

func (s *notificationService) ListForUser(ctx context.Context, userID int64) ([]models.Notification, error) {
	return s.notificationRepo.ListForUser(ctx, userID)
}

func (s *notificationService) CountUnread(ctx context.Context, userID int64) (int64, error) {
	return s.notificationRepo.CountUnread(ctx, userID)
}

func (s *notificationService) ListPasswordResetRequests(ctx context.Context, userID int64) ([]models.Notification, error) {
	return s.notificationRepo.ListPasswordResetRequests(ctx, userID)
}

// AttachedFile decodes the data-URL attachment of a notification into raw
// bytes for download, inferring the filename extension from the MIME type.
// Ownership applies the same way as MarkRead: admins or the recipient only.
func (s *notificationService) AttachedFile(ctx context.Context, notificationID, requesterID int64, admin bool) (string, string, []byte, error) {
	notification, err := s.authorize(ctx, notificationID, requesterID, admin)
	if err != nil {
		return "", "", nil, err
	}
	if notification.File == "" {
		return "", "", nil, ErrNoFileAttached
	}

	mimeType, data, err := utils.DecodeDataURL(notification.File)
	if err != nil {
		return "", "", nil, err
	}
	filename := fmt.Sprintf("id_photo_%d%s", notificationID, utils.ExtensionForMIME(mimeType))
	return filename, mimeType, data, nil
}
