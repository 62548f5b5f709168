package model

import "gorm.io/gorm"

type App struct {
	gorm.Model
	Name      string  `gorm:"type:varchar(128);not null"`
	Type      AppType `gorm:"type:varchar(16);not null"`
	Icon      *string `gorm:"type:varchar(64)"`
	ProjectID uint    `gorm:"index;not null"`
	Authored

	Modules   []Module
	BugSheets []BugSheet
}

// BugSheet is a flat bug record attached to an app. Module here is a
// free-text label supplied by the reporter, unrelated to the Module entity.
type BugSheet struct {
	gorm.Model
	Module      string       `gorm:"type:varchar(128);not null"`
	Description string       `gorm:"type:text;not null"`
	Status      TaskStatus   `gorm:"type:varchar(16);not null"`
	Priority    TaskPriority `gorm:"type:varchar(16);not null"`
	AssignedTo  *string      `gorm:"type:varchar(64)"`
	Remarks     *string      `gorm:"type:varchar(512)"`
	AppID       uint         `gorm:"index;not null"`
	Authored

	Comments []Comment
}
