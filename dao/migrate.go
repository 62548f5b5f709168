package dao

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"

	"github.com/raids-lab/tracker/dao/model"
)

// allModels is the authoritative list for schema migration. Order matters
// only for readability; gorm resolves cross-table references itself.
func allModels() []any {
	return []any{
		&model.Organization{},
		&model.OrganizationMember{},
		&model.Project{},
		&model.ProjectMember{},
		&model.App{},
		&model.Module{},
		&model.Task{},
		&model.TaskHistory{},
		&model.BugSheet{},
		&model.Comment{},
		&model.ActivityLog{},
		&model.Notification{},
		&model.UserVisit{},
		&model.UserStarred{},
		&model.CronJobConfig{},
	}
}

// Migrate brings the schema up to date. The initial migration is a plain
// AutoMigrate of every model; later schema changes get their own entries.
func Migrate(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{})
	m.InitSchema(func(tx *gorm.DB) error {
		return tx.AutoMigrate(allModels()...)
	})
	return m.Migrate()
}

// AutoMigrate is the test/development shortcut used where versioned
// migrations are unnecessary (e.g. in-memory sqlite fixtures).
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(allModels()...)
}
