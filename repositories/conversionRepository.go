package repositories

import (
	"context"
	"errors"
	"fmt"
	"log"

	"medisafe/cache"
	"medisafe/models"

	"gorm.io/gorm"
)

// ConversionRepository performs the multi-step role conversions. Each
// conversion runs inside a single transaction, like the lifecycle mutations:
// the role flip and its dependent specialization or patient rows commit
// together or not at all.
type ConversionRepository interface {
	AssignTeamRole(ctx context.Context, userID int64, role string) error
	AssignDoctorRole(ctx context.Context, userID int64, profile *models.Doctor) error
	AssignPatientRole(ctx context.Context, userID int64, removeDoctor bool) (patientCreated bool, err error)
}

type conversionRepository struct {
	db       *gorm.DB
	userRepo UserRepository
	cache    *cache.Cache
}

func NewConversionRepository(db *gorm.DB, userRepo UserRepository, cache *cache.Cache) ConversionRepository {
	return &conversionRepository{db: db, userRepo: userRepo, cache: cache}
}

// AssignTeamRole moves the account to an admin, nurse or lab tech role. A
// patient record left over from the previous role is dropped in the same
// transaction.
func (r *conversionRepository) AssignTeamRole(ctx context.Context, userID int64, role string) error {
	release, err := lockAccount(ctx, userID)
	if err != nil {
		return err
	}
	defer release()

	err = r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.User{}).Where("id = ?", userID).Update("role", role).Error; err != nil {
			return fmt.Errorf("failed to update role: %w", err)
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.Patient{}).Error; err != nil {
			return fmt.Errorf("failed to remove patient record: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	return r.userRepo.DeleteUserCache(ctx, fmt.Sprintf("%d", userID))
}

// AssignDoctorRole moves the account to the doctor role and creates the
// specialization row, or refreshes a retained one from an earlier demotion
// when profile fields are supplied.
func (r *conversionRepository) AssignDoctorRole(ctx context.Context, userID int64, profile *models.Doctor) error {
	release, err := lockAccount(ctx, userID)
	if err != nil {
		return err
	}
	defer release()

	err = r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.User{}).Where("id = ?", userID).Update("role", models.RoleDoctor).Error; err != nil {
			return fmt.Errorf("failed to update role: %w", err)
		}

		var existing models.Doctor
		err := tx.Where("user_id = ?", userID).First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			row := models.Doctor{UserID: userID}
			applyDoctorColumns(&row, profile)
			if err := tx.Create(&row).Error; err != nil {
				return fmt.Errorf("failed to create doctor profile: %w", err)
			}
		case err != nil:
			return fmt.Errorf("failed to check for existing doctor: %w", err)
		default:
			if profile == nil {
				return nil
			}
			applyDoctorColumns(&existing, profile)
			if err := tx.Save(&existing).Error; err != nil {
				return fmt.Errorf("failed to update doctor profile: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	if err := r.cache.DeleteAll(ctx, "doctors_cache"); err != nil {
		log.Printf("Failed to invalidate doctors cache after promotion: %v", err)
	}
	return r.userRepo.DeleteUserCache(ctx, fmt.Sprintf("%d", userID))
}

// AssignPatientRole moves the account back to the patient role and ensures a
// patient record exists, creating one when missing. With removeDoctor the
// specialization row is deleted as well, otherwise it is retained for a
// later re-promotion.
func (r *conversionRepository) AssignPatientRole(ctx context.Context, userID int64, removeDoctor bool) (bool, error) {
	release, err := lockAccount(ctx, userID)
	if err != nil {
		return false, err
	}
	defer release()

	created := false
	var removedDoctorID int64

	err = r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.User{}).Where("id = ?", userID).Update("role", models.RolePatient).Error; err != nil {
			return fmt.Errorf("failed to update role: %w", err)
		}

		if removeDoctor {
			var doctor models.Doctor
			err := tx.Where("user_id = ?", userID).First(&doctor).Error
			switch {
			case err == nil:
				if err := tx.Delete(&models.Doctor{}, doctor.ID).Error; err != nil {
					return fmt.Errorf("failed to remove doctor profile: %w", err)
				}
				removedDoctorID = doctor.ID
			case !errors.Is(err, gorm.ErrRecordNotFound):
				return fmt.Errorf("failed to resolve doctor for deletion: %w", err)
			}
		}

		var patient models.Patient
		err := tx.Where("user_id = ?", userID).First(&patient).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if err := tx.Create(&models.Patient{UserID: userID}).Error; err != nil {
				return fmt.Errorf("failed to create patient record: %w", err)
			}
			created = true
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to check for patient record: %w", err)
		}
		return nil
	})
	if err != nil {
		return false, err
	}

	if removedDoctorID != 0 {
		if err := r.cache.Delete(ctx, fmt.Sprintf("doctor_cache:%d", removedDoctorID)); err != nil {
			log.Printf("Failed to invalidate doctor cache after delisting: %v", err)
		}
		if err := r.cache.DeleteAll(ctx, "doctors_cache"); err != nil {
			log.Printf("Failed to invalidate doctors cache after delisting: %v", err)
		}
	}
	return created, r.userRepo.DeleteUserCache(ctx, fmt.Sprintf("%d", userID))
}

// applyDoctorColumns copies the supplied profile columns onto the row.
// Availability only overwrites when the caller actually provided one.
func applyDoctorColumns(row, profile *models.Doctor) {
	if profile == nil {
		return
	}
	row.Specialization = profile.Specialization
	row.LicenseNumber = profile.LicenseNumber
	row.YearsOfExperience = profile.YearsOfExperience
	row.ContactInfo = profile.ContactInfo
	if len(profile.Availability) > 0 {
		row.Availability = profile.Availability
	}
}
