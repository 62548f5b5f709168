package model

import "time"

// Notification is a user-scoped alert derived from a mutation. Notifications
// are independently addressable by recipient and outlive the project they
// reference; the back-references are optional hints for the UI, not owners.
type Notification struct {
	ID          uint             `gorm:"primarykey"`
	ClerkUserID string           `gorm:"index;type:varchar(64);not null"`
	Type        NotificationType `gorm:"type:varchar(16);not null"`
	Title       string           `gorm:"type:varchar(256);not null"`
	Message     string           `gorm:"type:text;not null"`
	Read        bool             `gorm:"index;not null;default:false"`
	ProjectID   *uint
	TaskID      *uint
	CommentID   *uint
	ActorID     string    `gorm:"type:varchar(64);not null"`
	ActorName   string    `gorm:"type:varchar(128);not null"`
	CreatedAt   time.Time `gorm:"index"`
}
