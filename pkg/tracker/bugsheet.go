package tracker

import (
	"context"

	"gorm.io/gorm"

	"github.com/raids-lab/tracker/dao/model"
	"github.com/raids-lab/tracker/pkg/tracking"
)

type CreateBugSheetInput struct {
	Module      string // free-text label, not the Module entity
	Description string
	Status      model.TaskStatus
	Priority    model.TaskPriority
	AssignedTo  *string
	Remarks     *string
}

// CreateBugSheet records a bug against an app. Assignment at creation
// notifies the assignee, same as tasks.
func (s *Service) CreateBugSheet(ctx context.Context, appID uint, in CreateBugSheetInput, actor Actor) (*model.BugSheet, error) {
	if in.Status == "" {
		in.Status = model.StatusTodo
	}
	if in.Priority == "" {
		in.Priority = model.PriorityMedium
	}
	var created *model.BugSheet
	err := s.inTx(ctx, func(tx *gorm.DB) error {
		app, err := loadApp(tx, appID)
		if err != nil {
			return err
		}
		bug := model.BugSheet{
			Module:      in.Module,
			Description: in.Description,
			Status:      in.Status,
			Priority:    in.Priority,
			AssignedTo:  in.AssignedTo,
			Remarks:     in.Remarks,
			AppID:       appID,
			Authored:    model.Authored{CreatorID: actor.ID, CreatorName: actor.Name},
		}
		if err := tx.Create(&bug).Error; err != nil {
			return mapDBErr(err, "create bug sheet")
		}
		row := tracking.ActivityRow(
			tracking.Mutation{Created: true},
			tracking.Target{Type: model.EntityBugSheet, ID: bug.ID, Title: bug.Module, ProjectID: app.ProjectID},
			actor,
		)
		if err := appendActivity(tx, row); err != nil {
			return err
		}
		if err := emitNotifications(tx, s.dispatcher.ForBugSheetChange(nil, &bug, app.ProjectID, actor)); err != nil {
			return err
		}
		created = &bug
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// UpdateBugSheetInput is a patch; nil keeps the field, Unassign clears the
// assignee.
type UpdateBugSheetInput struct {
	Module      *string
	Description *string
	Status      *model.TaskStatus
	Priority    *model.TaskPriority
	AssignedTo  *string
	Unassign    bool
	Remarks     *string
}

// UpdateBugSheet applies a patch and writes one classified activity row.
// Bug sheets carry no field-level history; only tasks do.
func (s *Service) UpdateBugSheet(ctx context.Context, bugID uint, patch UpdateBugSheetInput, actor Actor) (*model.BugSheet, error) {
	var updated *model.BugSheet
	err := s.inTx(ctx, func(tx *gorm.DB) error {
		bug, err := loadBugSheet(tx, bugID)
		if err != nil {
			return err
		}
		app, err := loadApp(tx, bug.AppID)
		if err != nil {
			return err
		}

		beforeBug := *bug
		before := tracking.BugSheetSnapshot(bug)
		if patch.Module != nil {
			bug.Module = *patch.Module
		}
		if patch.Description != nil {
			bug.Description = *patch.Description
		}
		if patch.Status != nil {
			bug.Status = *patch.Status
		}
		if patch.Priority != nil {
			bug.Priority = *patch.Priority
		}
		if patch.Unassign {
			bug.AssignedTo = nil
		} else if patch.AssignedTo != nil {
			bug.AssignedTo = patch.AssignedTo
		}
		if patch.Remarks != nil {
			bug.Remarks = patch.Remarks
		}
		after := tracking.BugSheetSnapshot(bug)

		changes := tracking.Diff(before, after)
		if len(changes) == 0 {
			updated = bug
			return nil
		}
		if err := tx.Save(bug).Error; err != nil {
			return mapDBErr(err, "update bug sheet")
		}
		row := tracking.ActivityRow(
			tracking.Mutation{Changes: changes},
			tracking.Target{Type: model.EntityBugSheet, ID: bug.ID, Title: bug.Module, ProjectID: app.ProjectID},
			actor,
		)
		if err := appendActivity(tx, row); err != nil {
			return err
		}
		if err := emitNotifications(tx, s.dispatcher.ForBugSheetChange(&beforeBug, bug, app.ProjectID, actor)); err != nil {
			return err
		}
		updated = bug
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteBugSheet removes a bug sheet and its comments.
func (s *Service) DeleteBugSheet(ctx context.Context, bugID uint, actor Actor) error {
	return s.inTx(ctx, func(tx *gorm.DB) error {
		bug, err := loadBugSheet(tx, bugID)
		if err != nil {
			return err
		}
		app, err := loadApp(tx, bug.AppID)
		if err != nil {
			return err
		}
		if err := tx.Unscoped().Where("bug_sheet_id = ?", bug.ID).Delete(&model.Comment{}).Error; err != nil {
			return mapDBErr(err, "delete comments")
		}
		if err := tx.Unscoped().Delete(&model.BugSheet{}, bug.ID).Error; err != nil {
			return mapDBErr(err, "delete bug sheet")
		}
		row := tracking.ActivityRow(
			tracking.Mutation{Deleted: true},
			tracking.Target{Type: model.EntityBugSheet, ID: bug.ID, Title: bug.Module, ProjectID: app.ProjectID},
			actor,
		)
		return appendActivity(tx, row)
	})
}

// ListBugSheets returns an app's bug sheets, newest first.
func (s *Service) ListBugSheets(ctx context.Context, appID uint) ([]model.BugSheet, error) {
	if _, err := loadApp(s.db.WithContext(ctx), appID); err != nil {
		return nil, err
	}
	var bugs []model.BugSheet
	err := s.db.WithContext(ctx).
		Where("app_id = ?", appID).
		Order("created_at DESC, id DESC").
		Find(&bugs).Error
	if err != nil {
		return nil, mapDBErr(err, "list bug sheets")
	}
	return bugs, nil
}
