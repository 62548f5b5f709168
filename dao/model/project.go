package model

import (
	"time"

	"gorm.io/gorm"
)

// Authored carries the denormalized creator snapshot embedded in entities
// that record who created them. IDs are opaque external user references.
type Authored struct {
	CreatorID   string `gorm:"type:varchar(64);not null"`
	CreatorName string `gorm:"type:varchar(128);not null"`
}

type Project struct {
	gorm.Model
	Name           string  `gorm:"type:varchar(128);not null"`
	Description    *string `gorm:"type:varchar(512)"`
	OrganizationID uint    `gorm:"index;not null"`
	// Optional reference to a client organization at the identity provider.
	ClientOrgRef *string `gorm:"type:varchar(64)"`
	Authored

	Apps    []App
	Members []ProjectMember
}

type ProjectMember struct {
	gorm.Model
	ProjectID   uint   `gorm:"uniqueIndex:uniq_project_member;not null"`
	ClerkUserID string `gorm:"uniqueIndex:uniq_project_member;type:varchar(64);not null"`
	Role        Role   `gorm:"type:varchar(16);not null"`
}

// UserVisit records a user opening a project or app view.
// ProjectName and AppName are point-in-time snapshots, not foreign keys;
// they are not refreshed when the underlying entity is renamed.
type UserVisit struct {
	gorm.Model
	ClerkUserID string    `gorm:"index;type:varchar(64);not null"`
	ProjectID   uint      `gorm:"index;not null"`
	ProjectName string    `gorm:"type:varchar(128);not null"`
	AppID       *uint     `gorm:"index"`
	AppName     *string   `gorm:"type:varchar(128)"`
	ViewType    ViewType  `gorm:"type:varchar(16);not null"`
	VisitedAt   time.Time `gorm:"index;not null"`
}

// UserStarred marks a project (or an app within it) as starred by a user.
// The composite unique index makes repeat stars a Conflict at the core level.
type UserStarred struct {
	gorm.Model
	ClerkUserID string  `gorm:"uniqueIndex:uniq_user_star;type:varchar(64);not null"`
	ProjectID   uint    `gorm:"uniqueIndex:uniq_user_star;not null"`
	ProjectName string  `gorm:"type:varchar(128);not null"`
	AppID       *uint   `gorm:"uniqueIndex:uniq_user_star"`
	AppName     *string `gorm:"type:varchar(128)"`
}
