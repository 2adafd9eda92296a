package models

import (
	"time"

	"gorm.io/datatypes"
)

// Availability is the structured weekly availability stored on a doctor.
type Availability struct {
	Days  []string `json:"days"`
	Start string   `json:"start"`
	End   string   `json:"end"`
}

// Doctor model. One per account while the account holds the doctor role. The
// row can outlive a demotion to patient so historical attribution on past
// appointments and prescriptions is preserved.
type Doctor struct {
	ID                int64          `gorm:"primaryKey;column:id" json:"id"`
	UserID            int64          `gorm:"not null;uniqueIndex;column:user_id" json:"user_id"`
	Specialization    string         `gorm:"size:150;not null;column:specialization" json:"specialization"`
	LicenseNumber     string         `gorm:"size:100;column:license_number" json:"license_number"`
	YearsOfExperience int            `gorm:"column:years_of_experience" json:"years_of_experience"`
	Availability      datatypes.JSON `gorm:"type:jsonb;column:availability" json:"availability"`
	ContactInfo       string         `gorm:"size:255;column:contact_info" json:"contact_info"`
	CreatedAt         time.Time      `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	User              User           `gorm:"foreignKey:UserID;references:ID" json:"-"`
	Appointments      []Appointment  `gorm:"foreignKey:DoctorID;references:ID" json:"-"`
	Prescriptions     []Prescription `gorm:"foreignKey:DoctorID;references:ID" json:"-"`
}

func (Doctor) TableName() string {
	return "doctors"
}

// Patient model. One per account while the account holds the patient role,
// carrying the clinical attributes that do not belong on the profile.
type Patient struct {
	ID                    int64     `gorm:"primaryKey;column:id" json:"id"`
	UserID                int64     `gorm:"not null;uniqueIndex;column:user_id" json:"user_id"`
	BloodType             string    `gorm:"size:10;column:blood_type" json:"blood_type"`
	Allergies             string    `gorm:"type:text;column:allergies" json:"allergies"`
	Conditions            string    `gorm:"type:text;column:conditions" json:"conditions"`
	EmergencyContactName  string    `gorm:"size:150;column:emergency_contact_name" json:"emergency_contact_name"`
	EmergencyContactPhone string    `gorm:"size:50;column:emergency_contact_phone" json:"emergency_contact_phone"`
	CreatedAt             time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	User                  User      `gorm:"foreignKey:UserID;references:ID" json:"-"`
}

func (Patient) TableName() string {
	return "patients"
}

// Appointment model
type Appointment struct {
	ID               int64     `gorm:"primaryKey;column:id" json:"id"`
	PatientID        int64     `gorm:"not null;index;column:patient_id" json:"patient_id"`
	DoctorID         int64     `gorm:"not null;index;column:doctor_id" json:"doctor_id"`
	ConsultationType string    `gorm:"size:100;column:consultation_type" json:"consultation_type"`
	ConsultationDate string    `gorm:"size:10;not null;index;column:consultation_date" json:"consultation_date"`
	ConsultationTime string    `gorm:"size:8;not null;column:consultation_time" json:"consultation_time"`
	Status           string    `gorm:"size:20;check:status IN ('Scheduled', 'Completed', 'Cancelled');not null;column:status" json:"status"`
	CreatedAt        time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	Patient          User      `gorm:"foreignKey:PatientID;references:ID" json:"-"`
	Doctor           Doctor    `gorm:"foreignKey:DoctorID;references:ID" json:"-"`
}

func (Appointment) TableName() string {
	return "appointments"
}

// LiveAppointment is the in-consultation session attached to an appointment,
// holding the vitals captured during it.
type LiveAppointment struct {
	ID            int64          `gorm:"primaryKey;column:id" json:"id"`
	AppointmentID int64          `gorm:"not null;index;column:appointment_id" json:"appointment_id"`
	VitalSigns    datatypes.JSON `gorm:"type:jsonb;column:vital_signs" json:"vital_signs"`
	Notes         string         `gorm:"type:text;column:notes" json:"notes"`
	CreatedAt     time.Time      `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	Appointment   Appointment    `gorm:"foreignKey:AppointmentID;references:ID" json:"-"`
}

func (LiveAppointment) TableName() string {
	return "live_appointments"
}

// LabResult model
type LabResult struct {
	ID         int64     `gorm:"primaryKey;column:id" json:"id"`
	UserID     int64     `gorm:"not null;index;column:user_id" json:"user_id"`
	TestName   string    `gorm:"size:150;not null;column:test_name" json:"test_name"`
	ResultFile string    `gorm:"type:text;column:result_file" json:"result_file"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	User       User      `gorm:"foreignKey:UserID;references:ID" json:"-"`
}

func (LabResult) TableName() string {
	return "lab_results"
}

// Prescription model. Linked either directly to the prescribing doctor or
// through the live appointment it was issued in.
type Prescription struct {
	ID                 int64            `gorm:"primaryKey;column:id" json:"id"`
	PrescriptionNumber string           `gorm:"size:50;not null;unique;column:prescription_number" json:"prescription_number"`
	DoctorID           *int64           `gorm:"index;column:doctor_id" json:"doctor_id"`
	LiveAppointmentID  *int64           `gorm:"index;column:live_appointment_id" json:"live_appointment_id"`
	Status             string           `gorm:"size:20;column:status" json:"status"`
	PrescriptionFile   string           `gorm:"type:text;column:prescription_file" json:"prescription_file"`
	CreatedAt          time.Time        `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	Doctor             *Doctor          `gorm:"foreignKey:DoctorID;references:ID" json:"-"`
	LiveAppointment    *LiveAppointment `gorm:"foreignKey:LiveAppointmentID;references:ID" json:"-"`
}

func (Prescription) TableName() string {
	return "prescriptions"
}
