package model

import "time"

// ActivityLog is the project-scoped audit feed: exactly one row per mutating
// operation, append-only. EntityTitle is a point-in-time snapshot of the
// entity's display name; it intentionally goes stale if the entity is later
// renamed. Within a project, rows are totally ordered by CreatedAt with ID
// as the tie-break for same-timestamp events.
type ActivityLog struct {
	ID         uint       `gorm:"primarykey"`
	Action     ActionKind `gorm:"type:varchar(32);not null"`
	Field      *string    `gorm:"type:varchar(64)"`
	OldValue   *string    `gorm:"type:text"`
	NewValue   *string    `gorm:"type:text"`
	UserID     string     `gorm:"type:varchar(64);not null"`
	UserName   string     `gorm:"type:varchar(128);not null"`
	EntityType EntityType `gorm:"type:varchar(16);not null"`
	EntityID   uint       `gorm:"not null"`
	EntityTitle string    `gorm:"type:varchar(256);not null"`
	ProjectID  uint       `gorm:"index;not null"`
	CreatedAt  time.Time  `gorm:"index"`
}
