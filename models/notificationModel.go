package models

import (
	"time"
)

// Notification types and priorities.
const (
	NotificationTypeSystem        = "system"
	NotificationTypeAccount       = "account"
	NotificationTypePasswordReset = "password_reset"

	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Notification belongs to its recipient account. The author is referenced by
// value through RelatedID, never by ownership link. Immutable once created
// except for the read flag.
type Notification struct {
	ID        int64     `gorm:"primaryKey;column:id" json:"id"`
	UserID    int64     `gorm:"not null;index;column:user_id" json:"user_id"`
	Title     string    `gorm:"size:255;not null;column:title" json:"title"`
	Message   string    `gorm:"type:text;not null;column:message" json:"message"`
	Type      string    `gorm:"size:30;not null;check:notification_type IN ('system', 'account', 'password_reset');column:notification_type" json:"notification_type"`
	Priority  string    `gorm:"size:10;not null;check:priority IN ('low', 'medium', 'high');column:priority" json:"priority"`
	IsRead    bool      `gorm:"not null;default:false;column:is_read" json:"is_read"`
	File      string    `gorm:"type:text;column:file" json:"file,omitempty"`
	RelatedID *int64    `gorm:"index;column:related_id" json:"related_id"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	User      User      `gorm:"foreignKey:UserID;references:ID" json:"-"`
}

func (Notification) TableName() string {
	return "notifications"
}
