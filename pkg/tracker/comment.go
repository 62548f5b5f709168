package tracker

import (
	"context"

	"gorm.io/gorm"

	"github.com/raids-lab/tracker/dao/model"
	"github.com/raids-lab/tracker/pkg/metrics"
	"github.com/raids-lab/tracker/pkg/notify"
	"github.com/raids-lab/tracker/pkg/tracking"
)

// CommentTarget is the tagged parent of a comment: a task or a bug sheet,
// never both, never neither. The zero value is invalid, so "exactly one
// parent" holds by construction instead of by runtime column checks.
type CommentTarget struct {
	kind commentKind
	id   uint
}

type commentKind uint8

const (
	commentOnTask commentKind = iota + 1
	commentOnBugSheet
)

func TaskTarget(id uint) CommentTarget     { return CommentTarget{kind: commentOnTask, id: id} }
func BugSheetTarget(id uint) CommentTarget { return CommentTarget{kind: commentOnBugSheet, id: id} }

// AddComment attaches a comment to its target, records the COMMENTED
// activity and fans out COMMENT and MENTION notifications. Mentions are
// resolved before the transaction opens: a resolver outage degrades to a
// comment without mention notifications, never to a failed comment.
func (s *Service) AddComment(ctx context.Context, target CommentTarget, content string, actor Actor) (*model.Comment, error) {
	if target.kind == 0 {
		return nil, wrapf(ErrNotFound, "comment target not set")
	}
	mentions := s.dispatcher.ResolveMentions(ctx, content)

	var created *model.Comment
	err := s.inTx(ctx, func(tx *gorm.DB) error {
		comment := model.Comment{
			Content:    content,
			AuthorID:   actor.ID,
			AuthorName: actor.Name,
		}
		var (
			parent     notify.CommentParent
			activityOn tracking.Target
		)

		switch target.kind {
		case commentOnTask:
			task, err := loadTask(tx, target.id)
			if err != nil {
				return err
			}
			projectID, err := projectOfModule(tx, task.ModuleID)
			if err != nil {
				return err
			}
			comment.TaskID = &task.ID
			parent = notify.CommentParent{
				Title:      task.Title,
				AssignedTo: task.AssignedTo,
				ReporterID: &task.ReporterID,
				TaskID:     &task.ID,
				ProjectID:  projectID,
			}
			activityOn = tracking.Target{
				Type: model.EntityTask, ID: task.ID, Title: task.Title, ProjectID: projectID,
			}
		case commentOnBugSheet:
			bug, err := loadBugSheet(tx, target.id)
			if err != nil {
				return err
			}
			app, err := loadApp(tx, bug.AppID)
			if err != nil {
				return err
			}
			comment.BugSheetID = &bug.ID
			parent = notify.CommentParent{
				Title:      bug.Module,
				AssignedTo: bug.AssignedTo,
				ProjectID:  app.ProjectID,
			}
			activityOn = tracking.Target{
				Type: model.EntityBugSheet, ID: bug.ID, Title: bug.Module, ProjectID: app.ProjectID,
			}
		}

		if err := tx.Create(&comment).Error; err != nil {
			return mapDBErr(err, "create comment")
		}
		row := tracking.ActivityRow(tracking.Mutation{Commented: true}, activityOn, actor)
		if err := appendActivity(tx, row); err != nil {
			return err
		}
		notifs := s.dispatcher.ForComment(&comment, parent, mentions, actor)
		if err := emitNotifications(tx, notifs); err != nil {
			return err
		}
		created = &comment
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.CommentsCreated.Inc()
	return created, nil
}

// ListComments returns a target's comments oldest-first.
func (s *Service) ListComments(ctx context.Context, target CommentTarget) ([]model.Comment, error) {
	if target.kind == 0 {
		return nil, wrapf(ErrNotFound, "comment target not set")
	}
	col := "task_id"
	if target.kind == commentOnBugSheet {
		col = "bug_sheet_id"
	}
	var comments []model.Comment
	err := s.db.WithContext(ctx).
		Where(col+" = ?", target.id).
		Order("created_at ASC, id ASC").
		Find(&comments).Error
	if err != nil {
		return nil, mapDBErr(err, "list comments")
	}
	return comments, nil
}

func loadBugSheet(tx *gorm.DB, id uint) (*model.BugSheet, error) {
	var b model.BugSheet
	if err := tx.First(&b, id).Error; err != nil {
		return nil, mapDBErr(err, "bug sheet")
	}
	return &b, nil
}
