package model

import (
	"time"

	"gorm.io/gorm"
)

// Task is the unit of work inside a module. A task with ParentID set is a
// subtask; subtasks always live in the same module as their parent and the
// parent chain is acyclic (both enforced at write time in pkg/tracker).
type Task struct {
	gorm.Model
	// TaskCode is the human-readable id ("PAY-3") assigned at creation from
	// the owning module's counter. Nil only for rows predating code assignment.
	TaskCode    *string      `gorm:"type:varchar(32);index"`
	Title       string       `gorm:"type:varchar(256);not null"`
	Description *string      `gorm:"type:text"`
	Type        TaskType     `gorm:"type:varchar(16);not null"`
	Priority    TaskPriority `gorm:"type:varchar(16);not null"`
	Status      TaskStatus   `gorm:"type:varchar(16);not null"`
	AssignedTo  *string      `gorm:"type:varchar(64);index"`
	Remarks     *string      `gorm:"type:varchar(512)"`
	StartDate   *time.Time
	EndDate     *time.Time
	ParentID    *uint `gorm:"index"`
	ModuleID    uint  `gorm:"index;not null"`
	// SortOrder is the dense position among siblings sharing (module, parent).
	SortOrder int `gorm:"not null;default:0"`
	Authored
	ReporterID   string `gorm:"type:varchar(64);not null"`
	ReporterName string `gorm:"type:varchar(128);not null"`

	Subtasks []Task    `gorm:"foreignKey:ParentID"`
	Comments []Comment `gorm:"foreignKey:TaskID"`
	History  []TaskHistory
}

// TaskHistory is the field-level change log of a task: one row per changed
// field per mutation, append-only. Rows are only removed when the owning
// task is deleted.
type TaskHistory struct {
	ID        uint      `gorm:"primarykey"`
	TaskID    uint      `gorm:"index;not null"`
	ActorID   string    `gorm:"type:varchar(64);not null"`
	ActorName string    `gorm:"type:varchar(128);not null"`
	Field     string    `gorm:"type:varchar(64);not null"`
	OldValue  *string   `gorm:"type:text"`
	NewValue  *string   `gorm:"type:text"`
	CreatedAt time.Time `gorm:"index"`
}
