package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// Account roles. Role is stored directly on the user row; Doctor and Patient
// rows carry the role-specific attributes separately.
const (
	RoleAdmin   = "admin"
	RoleDoctor  = "doctor"
	RoleNurse   = "nurse"
	RoleLabTech = "lab_tech"
	RolePatient = "patient"
)

// TeamRoles are the staff roles an account can be promoted to directly.
// Doctor is handled separately because it carries a specialization record.
var TeamRoles = []string{RoleAdmin, RoleNurse, RoleLabTech}

// IsTeamRole reports whether role grants staff access (doctor included).
func IsTeamRole(role string) bool {
	switch role {
	case RoleAdmin, RoleDoctor, RoleNurse, RoleLabTech:
		return true
	}
	return false
}

// DeletedPrefix marks a soft-deleted account's username and email.
const DeletedPrefix = "deleted_"

// UnusablePassword is the sentinel stored in place of a hash when login must
// be impossible. bcrypt hashes never start with "!".
const UnusablePassword = "!"

// User represents an account in the system
type User struct {
	ID          int64      `gorm:"primaryKey;column:id" json:"id"`
	Username    string     `gorm:"size:150;not null;unique;index;column:username" json:"username"`
	Email       string     `gorm:"size:255;not null;unique;index;column:email" json:"email"`
	Password    string     `gorm:"size:255;not null;column:password" json:"-"`
	Role        string     `gorm:"size:20;not null;index;check:role IN ('admin', 'doctor', 'nurse', 'lab_tech', 'patient');column:role" json:"role"`
	IsActive    bool       `gorm:"not null;default:true;column:is_active" json:"is_active"`
	Status      bool       `gorm:"not null;default:true;column:status" json:"status"`
	IsSuperuser bool       `gorm:"not null;default:false;column:is_superuser" json:"is_superuser"`
	DateJoined  time.Time  `gorm:"autoCreateTime;column:date_joined" json:"date_joined"`
	LastLogin   *time.Time `gorm:"column:last_login" json:"last_login"`
}

func (User) TableName() string {
	return "users"
}

// IsDeleted reports whether the account has been soft-deleted.
func (u *User) IsDeleted() bool {
	return strings.HasPrefix(u.Username, DeletedPrefix)
}

// HasUsablePassword reports whether the stored credential can authenticate.
func (u *User) HasUsablePassword() bool {
	return u.Password != "" && !strings.HasPrefix(u.Password, UnusablePassword)
}

// UserProfile holds demographic and contact details, one per account.
// Created lazily on first edit.
type UserProfile struct {
	ID            int64      `gorm:"primaryKey;column:id" json:"id"`
	UserID        int64      `gorm:"not null;uniqueIndex;column:user_id" json:"user_id"`
	FirstName     string     `gorm:"size:100;column:first_name" json:"first_name"`
	MiddleName    string     `gorm:"size:100;column:middle_name" json:"middle_name"`
	LastName      string     `gorm:"size:100;column:last_name" json:"last_name"`
	Sex           string     `gorm:"size:20;column:sex" json:"sex"`
	Birthday      *time.Time `gorm:"column:birthday" json:"birthday"`
	CivilStatus   string     `gorm:"size:50;column:civil_status" json:"civil_status"`
	Address       string     `gorm:"type:text;column:address" json:"address"`
	ContactNumber string     `gorm:"size:50;column:contact_number" json:"contact_number"`
	ContactPerson string     `gorm:"size:150;column:contact_person" json:"contact_person"`
	PhotoURL      string     `gorm:"type:text;column:photo_url" json:"photo_url"`
	User          User       `gorm:"foreignKey:UserID;references:ID" json:"-"`
}

func (UserProfile) TableName() string {
	return "user_profiles"
}

// FullName joins the profile's first and last name.
func (p *UserProfile) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// SeedSuperAdmin ensures a super-admin account exists so a fresh deployment
// can be administered. The password is unusable until reset.
func SeedSuperAdmin(db *gorm.DB) error {
	admin := User{
		Username:    "superadmin",
		Email:       "admin@medisafe.local",
		Password:    UnusablePassword,
		Role:        RoleAdmin,
		IsActive:    true,
		Status:      true,
		IsSuperuser: true,
	}
	return db.Transaction(func(tx *gorm.DB) error {
		return tx.Where(User{Username: admin.Username}).FirstOrCreate(&admin).Error
	})
}
