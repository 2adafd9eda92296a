package repositories

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"medisafe/database"
	"medisafe/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LifecycleRepository performs the multi-step account lifecycle mutations.
// Every method runs inside a single transaction: the account row is never
// left partially mutated.
type LifecycleRepository interface {
	SoftDelete(ctx context.Context, userID int64, mangledUsername, mangledEmail string) error
	Restore(ctx context.Context, userID int64, username, email string) error
	Purge(ctx context.Context, userID int64) (map[string]int64, error)
}

type lifecycleRepository struct {
	db       *gorm.DB
	userRepo UserRepository
}

func NewLifecycleRepository(db *gorm.DB, userRepo UserRepository) LifecycleRepository {
	return &lifecycleRepository{db: db, userRepo: userRepo}
}

// lockAccount serializes the multi-step account mutations (lifecycle and
// role conversions) behind a per-account Redis lock.
func lockAccount(ctx context.Context, userID int64) (release func(), err error) {
	lockKey := fmt.Sprintf("user_lock:%d", userID)
	lockValue := uuid.New().String()
	locked, err := database.NewLock(ctx, lockKey, lockValue, time.Minute)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !locked {
		return nil, errors.New("failed to acquire lock")
	}
	return func() {
		if err := database.ReleaseLock(ctx, lockKey, lockValue); err != nil {
			log.Printf("Failed to release lock: %v", err)
		}
	}, nil
}

// SoftDelete deactivates the account, rewrites its identity fields to the
// mangled form, and renders the credential unusable. Dependent medical
// records are untouched.
func (r *lifecycleRepository) SoftDelete(ctx context.Context, userID int64, mangledUsername, mangledEmail string) error {
	release, err := lockAccount(ctx, userID)
	if err != nil {
		return err
	}
	defer release()

	err = r.db.Transaction(func(tx *gorm.DB) error {
		return tx.Model(&models.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
			"is_active":  false,
			"status":     false,
			"username":   mangledUsername,
			"email":      mangledEmail,
			"password":   models.UnusablePassword,
			"last_login": nil,
		}).Error
	})
	if err != nil {
		return fmt.Errorf("failed to soft delete account: %w", err)
	}
	return r.userRepo.DeleteUserCache(ctx, fmt.Sprintf("%d", userID))
}

// Restore reactivates a soft-deleted account under the recovered identity.
// The credential stays unusable; an admin must reset the password separately.
func (r *lifecycleRepository) Restore(ctx context.Context, userID int64, username, email string) error {
	release, err := lockAccount(ctx, userID)
	if err != nil {
		return err
	}
	defer release()

	err = r.db.Transaction(func(tx *gorm.DB) error {
		return tx.Model(&models.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
			"is_active": true,
			"status":    true,
			"username":  username,
			"email":     email,
		}).Error
	})
	if err != nil {
		return fmt.Errorf("failed to restore account: %w", err)
	}
	return r.userRepo.DeleteUserCache(ctx, fmt.Sprintf("%d", userID))
}

// Purge irreversibly removes the account and every dependent record,
// returning a per-category deletion count for audit.
func (r *lifecycleRepository) Purge(ctx context.Context, userID int64) (map[string]int64, error) {
	release, err := lockAccount(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer release()

	counts := map[string]int64{}

	err = r.db.Transaction(func(tx *gorm.DB) error {
		// Doctor rows owned by this account; their IDs scope the
		// doctor-side deletes below.
		var doctorIDs []int64
		if err := tx.Model(&models.Doctor{}).Where("user_id = ?", userID).Pluck("id", &doctorIDs).Error; err != nil {
			return fmt.Errorf("failed to resolve doctor records: %w", err)
		}

		// Appointment IDs held as patient or doctor, for the
		// live-appointment and prescription joins.
		apptQuery := tx.Model(&models.Appointment{}).Where("patient_id = ?", userID)
		if len(doctorIDs) > 0 {
			apptQuery = tx.Model(&models.Appointment{}).
				Where("patient_id = ? OR doctor_id IN ?", userID, doctorIDs)
		}
		var appointmentIDs []int64
		if err := apptQuery.Pluck("id", &appointmentIDs).Error; err != nil {
			return fmt.Errorf("failed to resolve appointments: %w", err)
		}

		var liveAppointmentIDs []int64
		if len(appointmentIDs) > 0 {
			if err := tx.Model(&models.LiveAppointment{}).
				Where("appointment_id IN ?", appointmentIDs).
				Pluck("id", &liveAppointmentIDs).Error; err != nil {
				return fmt.Errorf("failed to resolve live appointments: %w", err)
			}
		}

		steps := []struct {
			category string
			run      func() *gorm.DB
		}{
			{"profiles", func() *gorm.DB {
				return tx.Where("user_id = ?", userID).Delete(&models.UserProfile{})
			}},
			{"prescriptions", func() *gorm.DB {
				q := tx.Where("1 = 0")
				switch {
				case len(doctorIDs) > 0 && len(liveAppointmentIDs) > 0:
					q = tx.Where("doctor_id IN ? OR live_appointment_id IN ?", doctorIDs, liveAppointmentIDs)
				case len(doctorIDs) > 0:
					q = tx.Where("doctor_id IN ?", doctorIDs)
				case len(liveAppointmentIDs) > 0:
					q = tx.Where("live_appointment_id IN ?", liveAppointmentIDs)
				}
				return q.Delete(&models.Prescription{})
			}},
			{"live_appointments", func() *gorm.DB {
				if len(appointmentIDs) == 0 {
					return tx.Where("1 = 0").Delete(&models.LiveAppointment{})
				}
				return tx.Where("appointment_id IN ?", appointmentIDs).Delete(&models.LiveAppointment{})
			}},
			{"appointments", func() *gorm.DB {
				if len(appointmentIDs) == 0 {
					return tx.Where("1 = 0").Delete(&models.Appointment{})
				}
				return tx.Where("id IN ?", appointmentIDs).Delete(&models.Appointment{})
			}},
			{"lab_results", func() *gorm.DB {
				return tx.Where("user_id = ?", userID).Delete(&models.LabResult{})
			}},
			{"notifications", func() *gorm.DB {
				return tx.Where("user_id = ?", userID).Delete(&models.Notification{})
			}},
			{"doctors", func() *gorm.DB {
				return tx.Where("user_id = ?", userID).Delete(&models.Doctor{})
			}},
			{"patients", func() *gorm.DB {
				return tx.Where("user_id = ?", userID).Delete(&models.Patient{})
			}},
		}

		for _, step := range steps {
			res := step.run()
			if res.Error != nil && !errors.Is(res.Error, gorm.ErrRecordNotFound) {
				return fmt.Errorf("failed to delete %s: %w", step.category, res.Error)
			}
			counts[step.category] = res.RowsAffected
		}

		if err := tx.Delete(&models.User{}, userID).Error; err != nil {
			return fmt.Errorf("failed to delete account: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := r.userRepo.DeleteUserCache(ctx, fmt.Sprintf("%d", userID)); err != nil {
		log.Printf("Failed to invalidate user cache after purge: %v", err)
	}
	return counts, nil
}
