package repositories

import (
	"context"
	"errors"
	"fmt"

	"medisafe/models"

	"gorm.io/gorm"
)

// ClinicalRepository exposes the per-user read paths over the dependent
// medical records (appointments, lab results, prescriptions, vitals) used by
// the profile and dashboard views.
type ClinicalRepository interface {
	CountAppointments(ctx context.Context, userID int64) (total, completed, upcoming int64, err error)
	RecentAppointments(ctx context.Context, userID int64, limit int) ([]models.Appointment, error)
	CountLabResults(ctx context.Context, userID int64) (int64, error)
	CountPrescriptions(ctx context.Context, userID int64) (int64, error)
	RecentPrescriptions(ctx context.Context, userID int64, limit int) ([]models.Prescription, error)
	LatestLiveAppointment(ctx context.Context, userID int64) (*models.LiveAppointment, error)
}

type clinicalRepository struct {
	db *gorm.DB
}

func NewClinicalRepository(db *gorm.DB) ClinicalRepository {
	return &clinicalRepository{db: db}
}

func (r *clinicalRepository) CountAppointments(ctx context.Context, userID int64) (total, completed, upcoming int64, err error) {
	db := r.db.WithContext(ctx).Model(&models.Appointment{})

	if err = db.Session(&gorm.Session{}).Where("patient_id = ?", userID).Count(&total).Error; err != nil {
		return 0, 0, 0, fmt.Errorf("failed to count appointments: %w", err)
	}
	if err = db.Session(&gorm.Session{}).Where("patient_id = ? AND status = ?", userID, "Completed").Count(&completed).Error; err != nil {
		return 0, 0, 0, fmt.Errorf("failed to count completed appointments: %w", err)
	}
	if err = db.Session(&gorm.Session{}).Where("patient_id = ? AND status = ?", userID, "Scheduled").Count(&upcoming).Error; err != nil {
		return 0, 0, 0, fmt.Errorf("failed to count scheduled appointments: %w", err)
	}
	return total, completed, upcoming, nil
}

func (r *clinicalRepository) RecentAppointments(ctx context.Context, userID int64, limit int) ([]models.Appointment, error) {
	var appointments []models.Appointment
	err := r.db.WithContext(ctx).
		Where("patient_id = ?", userID).
		Order("consultation_date DESC, consultation_time DESC").
		Limit(limit).
		Find(&appointments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list recent appointments: %w", err)
	}
	return appointments, nil
}

func (r *clinicalRepository) CountLabResults(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.LabResult{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count lab results: %w", err)
	}
	return count, nil
}

func (r *clinicalRepository) CountPrescriptions(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Prescription{}).
		Joins("JOIN live_appointments la ON la.id = prescriptions.live_appointment_id").
		Joins("JOIN appointments a ON a.id = la.appointment_id").
		Where("a.patient_id = ?", userID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count prescriptions: %w", err)
	}
	return count, nil
}

func (r *clinicalRepository) RecentPrescriptions(ctx context.Context, userID int64, limit int) ([]models.Prescription, error) {
	var prescriptions []models.Prescription
	err := r.db.WithContext(ctx).
		Joins("JOIN live_appointments la ON la.id = prescriptions.live_appointment_id").
		Joins("JOIN appointments a ON a.id = la.appointment_id").
		Where("a.patient_id = ?", userID).
		Order("prescriptions.created_at DESC").
		Limit(limit).
		Find(&prescriptions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list recent prescriptions: %w", err)
	}
	return prescriptions, nil
}

func (r *clinicalRepository) LatestLiveAppointment(ctx context.Context, userID int64) (*models.LiveAppointment, error) {
	var session models.LiveAppointment
	err := r.db.WithContext(ctx).
		Joins("JOIN appointments a ON a.id = live_appointments.appointment_id").
		Where("a.patient_id = ?", userID).
		Order("live_appointments.created_at DESC").
		First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest live appointment: %w", err)
	}
	return &session, nil
}
