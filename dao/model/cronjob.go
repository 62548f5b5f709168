package model

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CronJobConfig persists the schedule and parameters of a background job so
// operators can tune retention without a redeploy.
type CronJobConfig struct {
	gorm.Model
	Name    string         `gorm:"uniqueIndex;type:varchar(64);not null"`
	Type    CronJobType    `gorm:"type:varchar(32);not null"`
	Spec    string         `gorm:"type:varchar(64);not null"`
	Suspend *bool          `gorm:"not null;default:false"`
	Config  datatypes.JSON `gorm:"type:jsonb"`
}

func (c *CronJobConfig) GetSuspend() bool {
	return c.Suspend != nil && *c.Suspend
}
