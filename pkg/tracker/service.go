// Package tracker is the domain facade of the task-tracking core. Every
// exported operation runs as one storage transaction composing code
// generation, sibling ordering, change tracking and notification fan-out;
// partial application is never observable.
package tracker

import (
	"context"

	"gorm.io/gorm"

	"github.com/raids-lab/tracker/dao/model"
	"github.com/raids-lab/tracker/pkg/identity"
	"github.com/raids-lab/tracker/pkg/metrics"
	"github.com/raids-lab/tracker/pkg/notify"
	"github.com/raids-lab/tracker/pkg/ordering"
	"github.com/raids-lab/tracker/pkg/tracking"
)

// Actor identifies the user performing an operation.
type Actor = tracking.Actor

type Service struct {
	db         *gorm.DB
	dispatcher *notify.Dispatcher
}

func New(db *gorm.DB, resolver identity.Resolver) *Service {
	return &Service{
		db:         db,
		dispatcher: notify.NewDispatcher(resolver),
	}
}

// inTx runs fn in one transaction and lifts non-domain failures into
// ErrTransactionAborted. Domain errors pass through untouched so callers can
// distinguish validation failures from storage trouble.
func (s *Service) inTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	err := s.db.WithContext(ctx).Transaction(fn)
	if err == nil || isDomainErr(err) {
		return err
	}
	return wrapf(ErrTransactionAborted, "%v", err)
}

// maxTreeDepth bounds every parent-chain walk. Trees this deep only come
// from corrupted data; walking further would loop forever on a cycle.
const maxTreeDepth = 64

func loadTask(tx *gorm.DB, id uint) (*model.Task, error) {
	var t model.Task
	if err := tx.First(&t, id).Error; err != nil {
		return nil, mapDBErr(err, "task")
	}
	return &t, nil
}

func loadModule(tx *gorm.DB, id uint) (*model.Module, error) {
	var m model.Module
	if err := tx.First(&m, id).Error; err != nil {
		return nil, mapDBErr(err, "module")
	}
	return &m, nil
}

func loadApp(tx *gorm.DB, id uint) (*model.App, error) {
	var a model.App
	if err := tx.First(&a, id).Error; err != nil {
		return nil, mapDBErr(err, "app")
	}
	return &a, nil
}

// projectOfModule resolves the owning project for activity scoping.
func projectOfModule(tx *gorm.DB, moduleID uint) (uint, error) {
	mod, err := loadModule(tx, moduleID)
	if err != nil {
		return 0, err
	}
	app, err := loadApp(tx, mod.AppID)
	if err != nil {
		return 0, err
	}
	return app.ProjectID, nil
}

// taskScope is the ordering scope of tasks sharing (module, parent).
func taskScope(moduleID uint, parentID *uint) ordering.Scope {
	if parentID == nil {
		return ordering.Scope{
			Model: &model.Task{},
			Query: "module_id = ? AND parent_id IS NULL",
			Args:  []any{moduleID},
		}
	}
	return ordering.Scope{
		Model: &model.Task{},
		Query: "module_id = ? AND parent_id = ?",
		Args:  []any{moduleID, *parentID},
	}
}

// moduleScope is the ordering scope of modules within an app.
func moduleScope(appID uint) ordering.Scope {
	return ordering.Scope{
		Model: &model.Module{},
		Query: "app_id = ?",
		Args:  []any{appID},
	}
}

// appendActivity persists the single activity row of a mutation.
func appendActivity(tx *gorm.DB, row model.ActivityLog) error {
	if err := tx.Create(&row).Error; err != nil {
		return mapDBErr(err, "activity log")
	}
	return nil
}

// emitNotifications persists dispatcher output and counts it. Rows are
// written inside the mutation's transaction so a rollback retracts them.
func emitNotifications(tx *gorm.DB, rows []model.Notification) error {
	if len(rows) == 0 {
		return nil
	}
	if err := tx.Create(&rows).Error; err != nil {
		return mapDBErr(err, "notifications")
	}
	for i := range rows {
		metrics.NotificationsEmitted.WithLabelValues(string(rows[i].Type)).Inc()
	}
	return nil
}

// collectSubtree returns the task id plus all descendant ids, breadth-first,
// bounded by maxTreeDepth.
func collectSubtree(tx *gorm.DB, rootID uint) ([]uint, error) {
	ids := []uint{rootID}
	frontier := []uint{rootID}
	for depth := 0; len(frontier) > 0; depth++ {
		if depth >= maxTreeDepth {
			return nil, wrapf(ErrInvalidHierarchy, "task tree exceeds depth %d", maxTreeDepth)
		}
		var next []uint
		err := tx.Model(&model.Task{}).Where("parent_id IN ?", frontier).
			Pluck("id", &next).Error
		if err != nil {
			return nil, mapDBErr(err, "collect subtasks")
		}
		ids = append(ids, next...)
		frontier = next
	}
	return ids, nil
}

// ensureNoCycle rejects a parent choice that would make the task its own
// ancestor: walks up from candidate through the parent chain, bounded.
func ensureNoCycle(tx *gorm.DB, taskID uint, candidate *model.Task) error {
	cur := candidate
	for depth := 0; depth < maxTreeDepth; depth++ {
		if cur.ID == taskID {
			return wrapf(ErrInvalidHierarchy, "task %d would become its own ancestor", taskID)
		}
		if cur.ParentID == nil {
			return nil
		}
		next, err := loadTask(tx, *cur.ParentID)
		if err != nil {
			return err
		}
		cur = next
	}
	return wrapf(ErrInvalidHierarchy, "parent chain exceeds depth %d", maxTreeDepth)
}
