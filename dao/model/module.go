package model

import "gorm.io/gorm"

// Module is an ordered container of tasks within an app. It owns the
// task-code counter: TaskCounter only ever increases, even when tasks are
// deleted, so a freed code is never handed out again. Both TaskCounter and
// SortOrder are mutated through atomic UPDATE expressions, never via
// read-modify-write in application memory.
type Module struct {
	gorm.Model
	Name  string `gorm:"type:varchar(128);not null"`
	AppID uint   `gorm:"index;not null"`
	// Slug seeds human-readable task codes ("PAY-3"). Fixed at creation.
	Slug string `gorm:"type:varchar(16);not null"`
	// SortOrder is the dense position among sibling modules of the app.
	SortOrder int `gorm:"not null;default:0"`
	// TaskCounter is monotonic; incremented under the row lock of the
	// enclosing transaction when a task is created.
	TaskCounter uint `gorm:"not null;default:0"`

	Tasks []Task
}
