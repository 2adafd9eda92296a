package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"medisafe/models"
	"medisafe/repositories"
	"medisafe/utils"
)

// SoftDeleteResult reports the identity rewrite performed by a soft delete.
type SoftDeleteResult struct {
	UserID           int64  `json:"user_id"`
	OriginalUsername string `json:"original_username"`
	DeletedUsername  string `json:"deleted_username"`
}

// RestoreResult reports the identity recovered by a restore.
type RestoreResult struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// PurgeResult carries the per-table row counts removed by a permanent delete.
type PurgeResult struct {
	Username      string           `json:"username"`
	DeletedCounts map[string]int64 `json:"deleted_counts"`
}

// AccountService owns the account lifecycle: soft delete, restore and
// permanent delete, plus activation toggles and admin listings.
type AccountService interface {
	SoftDelete(ctx context.Context, actorID, targetID int64) (*SoftDeleteResult, error)
	Restore(ctx context.Context, targetID int64) (*RestoreResult, error)
	PermanentDelete(ctx context.Context, actorID, targetID int64) (*PurgeResult, error)
	SetActive(ctx context.Context, targetID int64, active bool) (*models.User, error)
	GetAccount(ctx context.Context, userID int64) (*models.User, error)
	ListAccounts(ctx context.Context, includeDeleted bool) ([]models.User, error)
	ListDeletedAccounts(ctx context.Context, limit int) ([]models.User, error)
	Overview(ctx context.Context) (*AccountOverview, error)
}

// AccountOverview is the admin dashboard summary.
type AccountOverview struct {
	Stats           *repositories.AccountStats `json:"stats"`
	RecentAccounts  []models.User              `json:"recent_accounts"`
	DeletedAccounts []models.User              `json:"recently_deleted"`
}

type accountService struct {
	userRepo      repositories.UserRepository
	lifecycleRepo repositories.LifecycleRepository
	notifier      NotificationService
	now           func() time.Time
}

func NewAccountService(
	userRepo repositories.UserRepository,
	lifecycleRepo repositories.LifecycleRepository,
	notifier NotificationService,
) AccountService {
	return &accountService{
		userRepo:      userRepo,
		lifecycleRepo: lifecycleRepo,
		notifier:      notifier,
		now:           time.Now,
	}
}

// SoftDelete deactivates the account and mangles its username and email so
// both unique slots are freed for reuse. The actor cannot delete themselves
// and an already deleted account is rejected.
func (s *accountService) SoftDelete(ctx context.Context, actorID, targetID int64) (*SoftDeleteResult, error) {
	if actorID == targetID {
		return nil, ErrSelfDelete
	}
	user, err := s.userRepo.GetUserByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrAccountNotFound
	}
	if user.IsDeleted() {
		return nil, ErrAlreadyDeleted
	}

	at := s.now()
	mangledUsername := utils.MangleIdentity(user.Username, at)
	mangledEmail := utils.MangleIdentity(user.Email, at)

	if err := s.lifecycleRepo.SoftDelete(ctx, targetID, mangledUsername, mangledEmail); err != nil {
		return nil, fmt.Errorf("failed to delete account: %w", err)
	}

	// The deactivated account keeps its notification history, so the
	// notice lands there for whoever restores or reviews it later.
	s.notifier.Notify(ctx, &models.Notification{
		UserID:    targetID,
		Title:     "Account Deleted",
		Message:   fmt.Sprintf("Account %s was deactivated. All medical records are preserved and the account can be restored by an administrator.", user.Username),
		Type:      models.NotificationTypeSystem,
		Priority:  models.PriorityHigh,
		RelatedID: &actorID,
	})

	return &SoftDeleteResult{
		UserID:           targetID,
		OriginalUsername: user.Username,
		DeletedUsername:  mangledUsername,
	}, nil
}

// Restore reactivates a soft-deleted account, recovering the original
// username and email from the mangled values. Malformed mangled identities
// fall back to synthetic placeholders, and identities taken by another
// account in the meantime are disambiguated with a timestamp suffix.
func (s *accountService) Restore(ctx context.Context, targetID int64) (*RestoreResult, error) {
	user, err := s.userRepo.GetUserByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrAccountNotFound
	}
	if !user.IsDeleted() {
		return nil, ErrNotSoftDeleted
	}

	username, ok := utils.UnmangleIdentity(user.Username)
	if !ok || username == "" {
		username = utils.FallbackUsername(targetID)
	}
	email, ok := utils.UnmangleIdentity(user.Email)
	if !ok || email == "" {
		email = utils.FallbackEmail(targetID)
	}

	at := s.now()
	taken, err := s.userRepo.UsernameTaken(ctx, username, targetID)
	if err != nil {
		return nil, err
	}
	if taken {
		username = utils.DisambiguateUsername(username, at)
	}
	taken, err = s.userRepo.EmailTaken(ctx, email, targetID)
	if err != nil {
		return nil, err
	}
	if taken {
		email = utils.DisambiguateEmail(email, at)
	}

	if err := s.lifecycleRepo.Restore(ctx, targetID, username, email); err != nil {
		return nil, fmt.Errorf("failed to restore account: %w", err)
	}

	s.notifier.Notify(ctx, &models.Notification{
		UserID:   targetID,
		Title:    "Account Restored",
		Message:  fmt.Sprintf("Your account was restored as %s. Please reset your password.", username),
		Type:     models.NotificationTypeSystem,
		Priority: models.PriorityHigh,
	})

	return &RestoreResult{
		UserID:   targetID,
		Username: username,
		Email:    email,
		Role:     user.Role,
	}, nil
}

// PermanentDelete irreversibly removes a soft-deleted account and all its
// dependent clinical rows, returning per-table counts. Only accounts still
// carrying the deleted prefix qualify, and the actor cannot purge themselves.
func (s *accountService) PermanentDelete(ctx context.Context, actorID, targetID int64) (*PurgeResult, error) {
	if actorID == targetID {
		return nil, ErrSelfDelete
	}
	user, err := s.userRepo.GetUserByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrAccountNotFound
	}
	if !strings.HasPrefix(user.Username, models.DeletedPrefix) {
		return nil, ErrNotSoftDeleted
	}

	counts, err := s.lifecycleRepo.Purge(ctx, targetID)
	if err != nil {
		return nil, fmt.Errorf("failed to permanently delete account: %w", err)
	}
	log.Printf("PERMANENT DELETION: account %s (id %d) removed with dependent rows: %v", user.Username, targetID, counts)

	s.notifier.Notify(ctx, &models.Notification{
		UserID:   actorID,
		Title:    "Account Permanently Deleted",
		Message:  fmt.Sprintf("Account %s and all related records were removed.", user.Username),
		Type:     models.NotificationTypeAccount,
		Priority: models.PriorityHigh,
	})

	return &PurgeResult{Username: user.Username, DeletedCounts: counts}, nil
}

// SetActive toggles is_active without touching the identity fields. Deleted
// accounts must go through Restore instead.
func (s *accountService) SetActive(ctx context.Context, targetID int64, active bool) (*models.User, error) {
	user, err := s.userRepo.GetUserByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrAccountNotFound
	}
	if user.IsDeleted() {
		return nil, ErrAlreadyDeleted
	}

	updates := map[string]interface{}{
		"is_active": active,
		"status":    active,
	}
	if err := s.userRepo.UpdateAccount(ctx, targetID, updates); err != nil {
		return nil, err
	}
	user.IsActive = active
	user.Status = active
	return user, nil
}

func (s *accountService) GetAccount(ctx context.Context, userID int64) (*models.User, error) {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrAccountNotFound
	}
	return user, nil
}

func (s *accountService) ListAccounts(ctx context.Context, includeDeleted bool) ([]models.User, error) {
	return s.userRepo.ListAccounts(ctx, includeDeleted)
}

func (s *accountService) ListDeletedAccounts(ctx context.Context, limit int) ([]models.User, error) {
	return s.userRepo.ListDeletedAccounts(ctx, limit)
}

// Overview assembles the admin dashboard: counts plus the newest and most
// recently deleted accounts.
func (s *accountService) Overview(ctx context.Context) (*AccountOverview, error) {
	stats, err := s.userRepo.AccountStats(ctx)
	if err != nil {
		return nil, err
	}
	recent, err := s.userRepo.RecentAccounts(ctx, 5)
	if err != nil {
		return nil, err
	}
	deleted, err := s.userRepo.ListDeletedAccounts(ctx, 5)
	if err != nil {
		return nil, err
	}
	return &AccountOverview{
		Stats:           stats,
		RecentAccounts:  recent,
		DeletedAccounts: deleted,
	}, nil
}
