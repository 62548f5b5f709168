package tracker

import (
	"context"

	"github.com/raids-lab/tracker/dao/model"
)

// Pagination is a zero-based page index with a page size.
type Pagination struct {
	Page     int `form:"page" json:"page"`
	PageSize int `form:"pageSize" json:"pageSize"`
}

func (p Pagination) limit() int {
	if p.PageSize <= 0 {
		return 50
	}
	return p.PageSize
}

func (p Pagination) offset() int {
	if p.Page < 0 {
		return 0
	}
	return p.Page * p.limit()
}

// ListActivity returns a project's activity feed, newest first. Rows with
// the same timestamp fall back to insertion order, so the feed's total
// order always matches the order mutations were applied in.
func (s *Service) ListActivity(ctx context.Context, projectID uint, p Pagination) ([]model.ActivityLog, int64, error) {
	db := s.db.WithContext(ctx)
	var project model.Project
	if err := db.First(&project, projectID).Error; err != nil {
		return nil, 0, mapDBErr(err, "project")
	}
	var count int64
	if err := db.Model(&model.ActivityLog{}).Where("project_id = ?", projectID).Count(&count).Error; err != nil {
		return nil, 0, mapDBErr(err, "count activity")
	}
	var rows []model.ActivityLog
	err := db.Where("project_id = ?", projectID).
		Order("created_at DESC, id DESC").
		Limit(p.limit()).Offset(p.offset()).
		Find(&rows).Error
	if err != nil {
		return nil, 0, mapDBErr(err, "list activity")
	}
	return rows, count, nil
}

// ListTaskHistory returns a task's field-level change log, oldest first.
func (s *Service) ListTaskHistory(ctx context.Context, taskID uint) ([]model.TaskHistory, error) {
	if _, err := loadTask(s.db.WithContext(ctx), taskID); err != nil {
		return nil, err
	}
	var rows []model.TaskHistory
	err := s.db.WithContext(ctx).
		Where("task_id = ?", taskID).
		Order("created_at ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, mapDBErr(err, "list task history")
	}
	return rows, nil
}
