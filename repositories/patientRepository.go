package repositories

import (
	"context"
	"errors"
	"fmt"

	"medisafe/models"

	"gorm.io/gorm"
)

// PatientRecordRepository manages the Patient specialization rows attached
// to accounts; it does not manage the account itself.
type PatientRecordRepository interface {
	GetByUserID(ctx context.Context, userID int64) (*models.Patient, error)
	GetOrCreate(ctx context.Context, userID int64) (*models.Patient, bool, error)
	Save(ctx context.Context, patient *models.Patient) error
	DeleteByUserID(ctx context.Context, userID int64) error
}

type patientRecordRepository struct {
	db *gorm.DB
}

func NewPatientRecordRepository(db *gorm.DB) PatientRecordRepository {
	return &patientRecordRepository{db: db}
}

func (r *patientRecordRepository) GetByUserID(ctx context.Context, userID int64) (*models.Patient, error) {
	var patient models.Patient
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&patient).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get patient record: %w", err)
	}
	return &patient, nil
}

// GetOrCreate ensures exactly one Patient row exists for the account. The
// second return value reports whether a new row was created.
func (r *patientRecordRepository) GetOrCreate(ctx context.Context, userID int64) (*models.Patient, bool, error) {
	existing, err := r.GetByUserID(ctx, userID)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	patient := models.Patient{UserID: userID}
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Where(models.Patient{UserID: userID}).FirstOrCreate(&patient).Error
	})
	if err != nil {
		return nil, false, fmt.Errorf("failed to create patient record: %w", err)
	}
	return &patient, true, nil
}

func (r *patientRecordRepository) Save(ctx context.Context, patient *models.Patient) error {
	if err := r.db.WithContext(ctx).Save(patient).Error; err != nil {
		return fmt.Errorf("failed to save patient record: %w", err)
	}
	return nil
}

func (r *patientRecordRepository) DeleteByUserID(ctx context.Context, userID int64) error {
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.Patient{}).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to delete patient record: %w", err)
	}
	return nil
}
