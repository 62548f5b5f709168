package tracker

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/raids-lab/tracker/dao/model"
)

// RecordVisit stores that a user opened a project or app view. The
// project/app names are copied at visit time and intentionally left stale
// if the entity is later renamed.
func (s *Service) RecordVisit(ctx context.Context, clerkUserID string, projectID uint, appID *uint) (*model.UserVisit, error) {
	var created *model.UserVisit
	err := s.inTx(ctx, func(tx *gorm.DB) error {
		var project model.Project
		if err := tx.First(&project, projectID).Error; err != nil {
			return mapDBErr(err, "project")
		}
		visit := model.UserVisit{
			ClerkUserID: clerkUserID,
			ProjectID:   projectID,
			ProjectName: project.Name,
			ViewType:    model.ViewProject,
			VisitedAt:   time.Now().UTC(),
		}
		if appID != nil {
			app, err := loadApp(tx, *appID)
			if err != nil {
				return err
			}
			if app.ProjectID != projectID {
				return wrapf(ErrInvalidHierarchy, "app %d does not belong to project %d", app.ID, projectID)
			}
			visit.AppID = appID
			visit.AppName = &app.Name
			visit.ViewType = model.ViewApp
		}
		if err := tx.Create(&visit).Error; err != nil {
			return mapDBErr(err, "record visit")
		}
		created = &visit
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// ListRecentVisits returns a user's latest visits, most recent first.
func (s *Service) ListRecentVisits(ctx context.Context, clerkUserID string, limit int) ([]model.UserVisit, error) {
	if limit <= 0 {
		limit = 10
	}
	var visits []model.UserVisit
	err := s.db.WithContext(ctx).
		Where("clerk_user_id = ?", clerkUserID).
		Order("visited_at DESC, id DESC").
		Limit(limit).
		Find(&visits).Error
	if err != nil {
		return nil, mapDBErr(err, "list visits")
	}
	return visits, nil
}

// StarProject stars a project (or one of its apps) for a user. Starring the
// same combination twice is a Conflict; the HTTP layer may choose to treat
// that as an idempotent success, the core always reports it.
func (s *Service) StarProject(ctx context.Context, clerkUserID string, projectID uint, appID *uint) (*model.UserStarred, error) {
	var created *model.UserStarred
	err := s.inTx(ctx, func(tx *gorm.DB) error {
		var project model.Project
		if err := tx.First(&project, projectID).Error; err != nil {
			return mapDBErr(err, "project")
		}
		dup := tx.Model(&model.UserStarred{}).
			Where("clerk_user_id = ? AND project_id = ?", clerkUserID, projectID)
		if appID == nil {
			dup = dup.Where("app_id IS NULL")
		} else {
			dup = dup.Where("app_id = ?", *appID)
		}
		var count int64
		if err := dup.Count(&count).Error; err != nil {
			return mapDBErr(err, "star lookup")
		}
		if count > 0 {
			return wrapf(ErrConflict, "already starred")
		}
		star := model.UserStarred{
			ClerkUserID: clerkUserID,
			ProjectID:   projectID,
			ProjectName: project.Name,
		}
		if appID != nil {
			app, err := loadApp(tx, *appID)
			if err != nil {
				return err
			}
			if app.ProjectID != projectID {
				return wrapf(ErrInvalidHierarchy, "app %d does not belong to project %d", app.ID, projectID)
			}
			star.AppID = appID
			star.AppName = &app.Name
		}
		if err := tx.Create(&star).Error; err != nil {
			return mapDBErr(err, "star project")
		}
		created = &star
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// UnstarProject removes a star; missing stars are NotFound.
func (s *Service) UnstarProject(ctx context.Context, clerkUserID string, projectID uint, appID *uint) error {
	return s.inTx(ctx, func(tx *gorm.DB) error {
		q := tx.Unscoped().
			Where("clerk_user_id = ? AND project_id = ?", clerkUserID, projectID)
		if appID == nil {
			q = q.Where("app_id IS NULL")
		} else {
			q = q.Where("app_id = ?", *appID)
		}
		res := q.Delete(&model.UserStarred{})
		if res.Error != nil {
			return mapDBErr(res.Error, "unstar project")
		}
		if res.RowsAffected == 0 {
			return wrapf(ErrNotFound, "star on project %d", projectID)
		}
		return nil
	})
}

// ListStarred returns a user's starred projects/apps.
func (s *Service) ListStarred(ctx context.Context, clerkUserID string) ([]model.UserStarred, error) {
	var stars []model.UserStarred
	err := s.db.WithContext(ctx).
		Where("clerk_user_id = ?", clerkUserID).
		Order("created_at DESC, id DESC").
		Find(&stars).Error
	if err != nil {
		return nil, mapDBErr(err, "list starred")
	}
	return stars, nil
}
