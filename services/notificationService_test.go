package services

import (
	"context"
	"errors"
	"testing"

	"medisafe/models"
)

func TestSendMessageToAdminsFansOutToAllAdmins(t *testing.T) {
	userRepo := newFakeUserRepo(
		activeUserFixture(1, "admin1", "a1@x.com", models.RoleAdmin),
		activeUserFixture(2, "admin2", "a2@x.com", models.RoleAdmin),
		activeUserFixture(3, "bob", "bob@x.com", models.RolePatient),
	)
	notificationRepo := &fakeNotificationRepo{}
	svc := NewNotificationService(notificationRepo, userRepo)

	sender, _ := userRepo.GetUserByID(context.Background(), 3)
	count, err := svc.SendMessageToAdmins(context.Background(), sender, "Billing question", "Hello")
	if err != nil {
		t.Fatalf("SendMessageToAdmins() error: %v", err)
	}
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}
	if !containsTitle(notificationRepo.titlesFor(1), "Billing question") {
		t.Errorf("admin1 notifications = %v", notificationRepo.titlesFor(1))
	}
	for _, n := range notificationRepo.created {
		if n.RelatedID == nil || *n.RelatedID != 3 {
			t.Errorf("related_id should point at the sender, got %+v", n.RelatedID)
		}
	}
}

func TestSendMessageToAdminsFallsBackToStaff(t *testing.T) {
	userRepo := newFakeUserRepo(
		activeUserFixture(1, "nina", "nina@x.com", models.RoleNurse),
		activeUserFixture(3, "bob", "bob@x.com", models.RolePatient),
	)
	notificationRepo := &fakeNotificationRepo{}
	svc := NewNotificationService(notificationRepo, userRepo)

	sender, _ := userRepo.GetUserByID(context.Background(), 3)
	count, err := svc.SendMessageToAdmins(context.Background(), sender, "Help", "No admins around")
	if err != nil {
		t.Fatalf("SendMessageToAdmins() error: %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
	if len(notificationRepo.titlesFor(1)) != 1 {
		t.Error("the nurse should have received the fallback message")
	}
}

func TestSendMessageToAdminsLastResortAnyActiveAccount(t *testing.T) {
	userRepo := newFakeUserRepo(activeUserFixture(3, "bob", "bob@x.com", models.RolePatient))
	notificationRepo := &fakeNotificationRepo{}
	svc := NewNotificationService(notificationRepo, userRepo)

	sender, _ := userRepo.GetUserByID(context.Background(), 3)
	count, err := svc.SendMessageToAdmins(context.Background(), sender, "Help", "Nobody staffed")
	if err != nil {
		t.Fatalf("SendMessageToAdmins() error: %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
}

func TestAttachedFileDecodesDataURL(t *testing.T) {
	userRepo := newFakeUserRepo()
	notificationRepo := &fakeNotificationRepo{}
	svc := NewNotificationService(notificationRepo, userRepo)

	svc.Notify(context.Background(), &models.Notification{
		UserID: 1,
		Title:  "ID photo",
		Type:   models.NotificationTypeSystem,
		File:   "data:image/png;base64,iVBORw0KGgo=",
	})

	filename, mimeType, data, err := svc.AttachedFile(context.Background(), notificationRepo.created[0].ID, 1, false)
	if err != nil {
		t.Fatalf("AttachedFile() error: %v", err)
	}
	if mimeType != "image/png" {
		t.Errorf("mimeType = %q", mimeType)
	}
	if filename != "id_photo_1.png" {
		t.Errorf("filename = %q", filename)
	}
	if len(data) == 0 {
		t.Error("expected decoded bytes")
	}
}

func TestAttachedFileWithoutFile(t *testing.T) {
	userRepo := newFakeUserRepo()
	notificationRepo := &fakeNotificationRepo{}
	svc := NewNotificationService(notificationRepo, userRepo)

	svc.Notify(context.Background(), &models.Notification{UserID: 1, Title: "Plain", Type: models.NotificationTypeSystem})

	if _, _, _, err := svc.AttachedFile(context.Background(), notificationRepo.created[0].ID, 1, false); err != ErrNoFileAttached {
		t.Errorf("err = %v, want ErrNoFileAttached", err)
	}
}

func TestMarkReadRejectsOtherRecipients(t *testing.T) {
	userRepo := newFakeUserRepo()
	notificationRepo := &fakeNotificationRepo{}
	svc := NewNotificationService(notificationRepo, userRepo)

	svc.Notify(context.Background(), &models.Notification{UserID: 2, Title: "Lab results ready", Type: models.NotificationTypeSystem})
	id := notificationRepo.created[0].ID

	if err := svc.MarkRead(context.Background(), id, 3, false); !errors.Is(err, ErrNotificationAccess) {
		t.Errorf("err = %v, want ErrNotificationAccess", err)
	}
	if err := svc.MarkRead(context.Background(), id, 2, false); err != nil {
		t.Errorf("recipient MarkRead() error: %v", err)
	}
	if err := svc.MarkRead(context.Background(), id, 3, true); err != nil {
		t.Errorf("admin MarkRead() error: %v", err)
	}
}

func TestMarkReadUnknownNotification(t *testing.T) {
	svc := NewNotificationService(&fakeNotificationRepo{}, newFakeUserRepo())

	if err := svc.MarkRead(context.Background(), 99, 1, true); !errors.Is(err, ErrNotificationNotFound) {
		t.Errorf("err = %v, want ErrNotificationNotFound", err)
	}
}

func TestAttachedFileRejectsOtherRecipients(t *testing.T) {
	userRepo := newFakeUserRepo()
	notificationRepo := &fakeNotificationRepo{}
	svc := NewNotificationService(notificationRepo, userRepo)

	svc.Notify(context.Background(), &models.Notification{
		UserID: 2,
		Title:  "ID photo",
		Type:   models.NotificationTypeSystem,
		File:   "data:image/png;base64,iVBORw0KGgo=",
	})
	id := notificationRepo.created[0].ID

	if _, _, _, err := svc.AttachedFile(context.Background(), id, 3, false); !errors.Is(err, ErrNotificationAccess) {
		t.Errorf("err = %v, want ErrNotificationAccess", err)
	}
	if _, _, _, err := svc.AttachedFile(context.Background(), id, 3, true); err != nil {
		t.Errorf("admin AttachedFile() error: %v", err)
	}
}
