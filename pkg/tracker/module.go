package tracker

import (
	"context"

	"gorm.io/gorm"

	"github.com/raids-lab/tracker/dao/model"
	"github.com/raids-lab/tracker/pkg/ordering"
	"github.com/raids-lab/tracker/pkg/tracking"
)

// CreateModule creates an ordered task container under an app. The slug is
// derived from the name once and never changes afterwards, so task codes
// stay stable across renames.
func (s *Service) CreateModule(ctx context.Context, appID uint, name string, actor Actor) (*model.Module, error) {
	var created *model.Module
	err := s.inTx(ctx, func(tx *gorm.DB) error {
		app, err := loadApp(tx, appID)
		if err != nil {
			return err
		}
		order, err := ordering.Append(tx, moduleScope(appID))
		if err != nil {
			return err
		}
		mod := model.Module{
			Name:      name,
			AppID:     appID,
			Slug:      slugFromName(name),
			SortOrder: order,
		}
		if err := tx.Create(&mod).Error; err != nil {
			return mapDBErr(err, "create module")
		}
		row := tracking.ActivityRow(
			tracking.Mutation{Created: true},
			tracking.Target{Type: model.EntityModule, ID: mod.ID, Title: mod.Name, ProjectID: app.ProjectID},
			actor,
		)
		if err := appendActivity(tx, row); err != nil {
			return err
		}
		created = &mod
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// RenameModule changes the display name. Slug and existing task codes are
// untouched.
func (s *Service) RenameModule(ctx context.Context, moduleID uint, name string, actor Actor) (*model.Module, error) {
	var renamed *model.Module
	err := s.inTx(ctx, func(tx *gorm.DB) error {
		mod, err := loadModule(tx, moduleID)
		if err != nil {
			return err
		}
		app, err := loadApp(tx, mod.AppID)
		if err != nil {
			return err
		}
		if mod.Name == name {
			renamed = mod
			return nil
		}
		oldName := mod.Name
		mod.Name = name
		if err := tx.Save(mod).Error; err != nil {
			return mapDBErr(err, "rename module")
		}
		row := tracking.ActivityRow(
			tracking.Mutation{Changes: []tracking.FieldChange{{Field: "name", Old: &oldName, New: &name}}},
			tracking.Target{Type: model.EntityModule, ID: mod.ID, Title: mod.Name, ProjectID: app.ProjectID},
			actor,
		)
		if err := appendActivity(tx, row); err != nil {
			return err
		}
		renamed = mod
		return nil
	})
	if err != nil {
		return nil, err
	}
	return renamed, nil
}

// MoveModule repositions a module among its app's siblings.
func (s *Service) MoveModule(ctx context.Context, moduleID uint, targetIndex int) error {
	return s.inTx(ctx, func(tx *gorm.DB) error {
		mod, err := loadModule(tx, moduleID)
		if err != nil {
			return err
		}
		return ordering.Move(tx, moduleScope(mod.AppID), mod.ID, targetIndex)
	})
}

// DeleteModule removes a module with its tasks, their comments and history.
// Remaining sibling modules are re-densified.
func (s *Service) DeleteModule(ctx context.Context, moduleID uint, actor Actor) error {
	return s.inTx(ctx, func(tx *gorm.DB) error {
		mod, err := loadModule(tx, moduleID)
		if err != nil {
			return err
		}
		app, err := loadApp(tx, mod.AppID)
		if err != nil {
			return err
		}
		var taskIDs []uint
		if err := tx.Model(&model.Task{}).Where("module_id = ?", mod.ID).Pluck("id", &taskIDs).Error; err != nil {
			return mapDBErr(err, "collect tasks")
		}
		if len(taskIDs) > 0 {
			if err := tx.Unscoped().Where("task_id IN ?", taskIDs).Delete(&model.Comment{}).Error; err != nil {
				return mapDBErr(err, "delete comments")
			}
			if err := tx.Unscoped().Where("task_id IN ?", taskIDs).Delete(&model.TaskHistory{}).Error; err != nil {
				return mapDBErr(err, "delete task history")
			}
			if err := tx.Unscoped().Where("id IN ?", taskIDs).Delete(&model.Task{}).Error; err != nil {
				return mapDBErr(err, "delete tasks")
			}
		}
		if err := tx.Unscoped().Delete(&model.Module{}, mod.ID).Error; err != nil {
			return mapDBErr(err, "delete module")
		}
		if err := ordering.Normalize(tx, moduleScope(mod.AppID)); err != nil {
			return err
		}
		row := tracking.ActivityRow(
			tracking.Mutation{Deleted: true},
			tracking.Target{Type: model.EntityModule, ID: mod.ID, Title: mod.Name, ProjectID: app.ProjectID},
			actor,
		)
		return appendActivity(tx, row)
	})
}

// ListModules returns an app's modules in display order.
func (s *Service) ListModules(ctx context.Context, appID uint) ([]model.Module, error) {
	if _, err := loadApp(s.db.WithContext(ctx), appID); err != nil {
		return nil, err
	}
	var modules []model.Module
	err := s.db.WithContext(ctx).
		Where("app_id = ?", appID).
		Order("sort_order ASC, created_at ASC, id ASC").
		Find(&modules).Error
	if err != nil {
		return nil, mapDBErr(err, "list modules")
	}
	return modules, nil
}
