package model

import "gorm.io/gorm"

// Organization is the tenant root. Identity is delegated to the external
// provider; ClerkOrgID is an opaque reference, never interpreted here.
type Organization struct {
	gorm.Model
	ClerkOrgID string `gorm:"uniqueIndex;type:varchar(64);not null"`
	Name       string `gorm:"type:varchar(128);not null"`

	Projects []Project
	Members  []OrganizationMember
}

// OrganizationMember links an external user to an organization with a role.
// Role is stored only; policy enforcement lives outside this service.
type OrganizationMember struct {
	gorm.Model
	OrganizationID uint   `gorm:"uniqueIndex:uniq_org_member;not null"`
	ClerkUserID    string `gorm:"uniqueIndex:uniq_org_member;type:varchar(64);not null"`
	Role           Role   `gorm:"type:varchar(16);not null"`
}
