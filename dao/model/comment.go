package model

import "gorm.io/gorm"

// Comment is attached to exactly one of a task or a bug sheet. The XOR is
// guaranteed by the tagged CommentTarget type in pkg/tracker before a row
// is ever built; the two nullable columns only mirror it relationally.
type Comment struct {
	gorm.Model
	Content    string `gorm:"type:text;not null"`
	AuthorID   string `gorm:"type:varchar(64);not null"`
	AuthorName string `gorm:"type:varchar(128);not null"`
	TaskID     *uint  `gorm:"index"`
	BugSheetID *uint  `gorm:"index"`
}
