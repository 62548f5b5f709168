package tracker

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/raids-lab/tracker/dao/model"
	"github.com/raids-lab/tracker/pkg/metrics"
	"github.com/raids-lab/tracker/pkg/ordering"
	"github.com/raids-lab/tracker/pkg/tracking"
)

type CreateTaskInput struct {
	Title       string
	Description *string
	Type        model.TaskType
	Priority    model.TaskPriority
	Status      model.TaskStatus
	AssignedTo  *string
	Remarks     *string
	StartDate   *time.Time
	EndDate     *time.Time
	// ParentID makes the new task a subtask; the parent must live in the
	// same module.
	ParentID *uint
}

// CreateTask creates a task (or subtask) under a module: validates the
// parent, takes the next sibling order, allocates the task code from the
// module counter, and records the CREATED activity. An assignment present
// at creation already notifies the assignee.
func (s *Service) CreateTask(ctx context.Context, moduleID uint, in CreateTaskInput, actor Actor) (*model.Task, error) {
	if in.Type == "" {
		in.Type = model.TaskTypeFeature
	}
	if in.Priority == "" {
		in.Priority = model.PriorityMedium
	}
	if in.Status == "" {
		in.Status = model.StatusTodo
	}

	var created *model.Task
	err := s.inTx(ctx, func(tx *gorm.DB) error {
		projectID, err := projectOfModule(tx, moduleID)
		if err != nil {
			return err
		}
		if in.ParentID != nil {
			parent, err := loadTask(tx, *in.ParentID)
			if err != nil {
				return err
			}
			if parent.ModuleID != moduleID {
				return wrapf(ErrInvalidHierarchy,
					"parent task %d belongs to module %d, not %d",
					parent.ID, parent.ModuleID, moduleID)
			}
		}

		order, err := ordering.Append(tx, taskScope(moduleID, in.ParentID))
		if err != nil {
			return err
		}
		code, err := nextTaskCode(tx, moduleID)
		if err != nil {
			return err
		}

		task := model.Task{
			TaskCode:    &code,
			Title:       in.Title,
			Description: in.Description,
			Type:        in.Type,
			Priority:    in.Priority,
			Status:      in.Status,
			AssignedTo:  in.AssignedTo,
			Remarks:     in.Remarks,
			StartDate:   in.StartDate,
			EndDate:     in.EndDate,
			ParentID:    in.ParentID,
			ModuleID:    moduleID,
			SortOrder:   order,
			Authored:    model.Authored{CreatorID: actor.ID, CreatorName: actor.Name},
			ReporterID:  actor.ID,
			ReporterName: actor.Name,
		}
		if err := tx.Create(&task).Error; err != nil {
			return mapDBErr(err, "create task")
		}

		row := tracking.ActivityRow(
			tracking.Mutation{Created: true},
			tracking.Target{Type: model.EntityTask, ID: task.ID, Title: task.Title, ProjectID: projectID},
			actor,
		)
		if err := appendActivity(tx, row); err != nil {
			return err
		}
		if err := emitNotifications(tx, s.dispatcher.ForTaskChange(nil, &task, projectID, actor)); err != nil {
			return err
		}
		created = &task
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.TasksCreated.Inc()
	return created, nil
}

// UpdateTaskInput is a patch: nil leaves a field unchanged. Unassign clears
// AssignedTo explicitly, since a nil pointer cannot distinguish "no change"
// from "remove the assignee".
type UpdateTaskInput struct {
	Title       *string
	Description *string
	Type        *model.TaskType
	Priority    *model.TaskPriority
	Status      *model.TaskStatus
	AssignedTo  *string
	Unassign    bool
	Remarks     *string
	StartDate   *time.Time
	EndDate     *time.Time
}

// UpdateTask applies a patch, writes one task_histories row per changed
// field and exactly one classified activity row, then fans out assignment
// and status-change notifications. A patch that changes nothing writes
// nothing.
func (s *Service) UpdateTask(ctx context.Context, taskID uint, patch UpdateTaskInput, actor Actor) (*model.Task, error) {
	var updated *model.Task
	err := s.inTx(ctx, func(tx *gorm.DB) error {
		task, err := loadTask(tx, taskID)
		if err != nil {
			return err
		}
		projectID, err := projectOfModule(tx, task.ModuleID)
		if err != nil {
			return err
		}

		beforeTask := *task
		before := tracking.TaskSnapshot(task)
		applyPatch(task, patch)
		after := tracking.TaskSnapshot(task)

		changes := tracking.Diff(before, after)
		if len(changes) == 0 {
			updated = task
			return nil
		}

		if err := tx.Save(task).Error; err != nil {
			return mapDBErr(err, "update task")
		}
		history := tracking.HistoryRows(task.ID, actor, changes)
		if err := tx.Create(&history).Error; err != nil {
			return mapDBErr(err, "task history")
		}
		row := tracking.ActivityRow(
			tracking.Mutation{Changes: changes},
			tracking.Target{Type: model.EntityTask, ID: task.ID, Title: task.Title, ProjectID: projectID},
			actor,
		)
		if err := appendActivity(tx, row); err != nil {
			return err
		}
		if err := emitNotifications(tx, s.dispatcher.ForTaskChange(&beforeTask, task, projectID, actor)); err != nil {
			return err
		}
		updated = task
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.TasksUpdated.Inc()
	return updated, nil
}

func applyPatch(task *model.Task, p UpdateTaskInput) {
	if p.Title != nil {
		task.Title = *p.Title
	}
	if p.Description != nil {
		task.Description = p.Description
	}
	if p.Type != nil {
		task.Type = *p.Type
	}
	if p.Priority != nil {
		task.Priority = *p.Priority
	}
	if p.Status != nil {
		task.Status = *p.Status
	}
	if p.Unassign {
		task.AssignedTo = nil
	} else if p.AssignedTo != nil {
		task.AssignedTo = p.AssignedTo
	}
	if p.Remarks != nil {
		task.Remarks = p.Remarks
	}
	if p.StartDate != nil {
		task.StartDate = p.StartDate
	}
	if p.EndDate != nil {
		task.EndDate = p.EndDate
	}
}

// DeleteTask removes a task with its whole subtree, their comments and
// history rows — all in one transaction, leaving no orphans. The module's
// task counter is untouched, so the freed codes are never reissued. Sibling
// order of the remaining tasks is re-densified.
func (s *Service) DeleteTask(ctx context.Context, taskID uint, actor Actor) error {
	err := s.inTx(ctx, func(tx *gorm.DB) error {
		task, err := loadTask(tx, taskID)
		if err != nil {
			return err
		}
		projectID, err := projectOfModule(tx, task.ModuleID)
		if err != nil {
			return err
		}
		ids, err := collectSubtree(tx, task.ID)
		if err != nil {
			return err
		}

		// Hard deletes: cascaded removal must not leave soft-deleted rows
		// behind that still reference the dead task.
		if err := tx.Unscoped().Where("task_id IN ?", ids).Delete(&model.Comment{}).Error; err != nil {
			return mapDBErr(err, "delete comments")
		}
		if err := tx.Unscoped().Where("task_id IN ?", ids).Delete(&model.TaskHistory{}).Error; err != nil {
			return mapDBErr(err, "delete task history")
		}
		if err := tx.Unscoped().Where("id IN ?", ids).Delete(&model.Task{}).Error; err != nil {
			return mapDBErr(err, "delete tasks")
		}
		if err := ordering.Normalize(tx, taskScope(task.ModuleID, task.ParentID)); err != nil {
			return err
		}

		row := tracking.ActivityRow(
			tracking.Mutation{Deleted: true},
			tracking.Target{Type: model.EntityTask, ID: task.ID, Title: task.Title, ProjectID: projectID},
			actor,
		)
		return appendActivity(tx, row)
	})
	if err != nil {
		return err
	}
	metrics.TasksDeleted.Inc()
	return nil
}

// MoveTaskInput names the destination of a move. Nil fields keep the
// current value; MakeRoot clears the parent. Order is the target index
// among the destination siblings (clamped; nil appends at the end).
type MoveTaskInput struct {
	ModuleID *uint
	ParentID *uint
	MakeRoot bool
	Order    *int
}

// MoveTask relocates a task within or across modules. A subtask cannot be
// torn away from its parent's module, a task cannot become its own ancestor,
// and a cross-module move carries the whole subtree along. Both the old and
// the new sibling scopes end up densely numbered.
func (s *Service) MoveTask(ctx context.Context, taskID uint, in MoveTaskInput, actor Actor) (*model.Task, error) {
	var moved *model.Task
	err := s.inTx(ctx, func(tx *gorm.DB) error {
		task, err := loadTask(tx, taskID)
		if err != nil {
			return err
		}
		oldModuleID := task.ModuleID
		oldParentID := task.ParentID
		oldScope := taskScope(oldModuleID, oldParentID)

		destModuleID := oldModuleID
		if in.ModuleID != nil {
			if _, err := loadModule(tx, *in.ModuleID); err != nil {
				return err
			}
			destModuleID = *in.ModuleID
		}

		// Resolve the destination parent.
		destParentID := oldParentID
		switch {
		case in.MakeRoot:
			destParentID = nil
		case in.ParentID != nil:
			parent, err := loadTask(tx, *in.ParentID)
			if err != nil {
				return err
			}
			if parent.ModuleID != destModuleID {
				return wrapf(ErrInvalidHierarchy,
					"parent task %d lives in module %d, not %d",
					parent.ID, parent.ModuleID, destModuleID)
			}
			if err := ensureNoCycle(tx, task.ID, parent); err != nil {
				return err
			}
			destParentID = in.ParentID
		}

		// A module change while keeping the old parent would strand the
		// subtask away from its parent's module.
		if destModuleID != oldModuleID && destParentID != nil && in.ParentID == nil {
			return wrapf(ErrInvalidHierarchy,
				"moving subtask %d to module %d would split it from its parent", task.ID, destModuleID)
		}

		if destModuleID != oldModuleID {
			// The subtree moves with the task. Task codes are fixed at
			// creation and keep the original module's slug.
			ids, err := collectSubtree(tx, task.ID)
			if err != nil {
				return err
			}
			err = tx.Model(&model.Task{}).Where("id IN ?", ids).
				UpdateColumn("module_id", destModuleID).Error
			if err != nil {
				return mapDBErr(err, "move subtree")
			}
		}

		projectID, err := projectOfModule(tx, destModuleID)
		if err != nil {
			return err
		}

		before := tracking.TaskSnapshot(task)
		task.ModuleID = destModuleID
		task.ParentID = destParentID
		if err := tx.Save(task).Error; err != nil {
			return mapDBErr(err, "move task")
		}

		newScope := taskScope(destModuleID, destParentID)
		target := 1 << 30 // append at the end unless an index was given
		if in.Order != nil {
			target = *in.Order
		}
		if err := ordering.Move(tx, newScope, task.ID, target); err != nil {
			return err
		}
		scopeChanged := destModuleID != oldModuleID ||
			!uintEqual(destParentID, oldParentID)
		if scopeChanged {
			if err := ordering.Normalize(tx, oldScope); err != nil {
				return err
			}
		}

		after := tracking.TaskSnapshot(task)
		changes := tracking.Diff(before, after)
		if len(changes) > 0 {
			history := tracking.HistoryRows(task.ID, actor, changes)
			if err := tx.Create(&history).Error; err != nil {
				return mapDBErr(err, "task history")
			}
		}
		row := tracking.ActivityRow(
			tracking.Mutation{Changes: changes},
			tracking.Target{Type: model.EntityTask, ID: task.ID, Title: task.Title, ProjectID: projectID},
			actor,
		)
		if err := appendActivity(tx, row); err != nil {
			return err
		}
		moved = task
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.TasksUpdated.Inc()
	return moved, nil
}

// ListTasks returns the tasks of a module in display order: root tasks and
// subtasks interleaved by (parent, order) the way the client renders them.
func (s *Service) ListTasks(ctx context.Context, moduleID uint) ([]model.Task, error) {
	if _, err := loadModule(s.db.WithContext(ctx), moduleID); err != nil {
		return nil, err
	}
	var tasks []model.Task
	err := s.db.WithContext(ctx).
		Where("module_id = ?", moduleID).
		Order("parent_id ASC NULLS FIRST, sort_order ASC, created_at ASC, id ASC").
		Find(&tasks).Error
	if err != nil {
		return nil, mapDBErr(err, "list tasks")
	}
	return tasks, nil
}

// GetTask loads one task with its subtasks and comments.
func (s *Service) GetTask(ctx context.Context, taskID uint) (*model.Task, error) {
	var t model.Task
	err := s.db.WithContext(ctx).
		Preload("Subtasks").Preload("Comments").Preload("History").
		First(&t, taskID).Error
	if err != nil {
		return nil, mapDBErr(err, "task")
	}
	return &t, nil
}

func uintEqual(a, b *uint) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
