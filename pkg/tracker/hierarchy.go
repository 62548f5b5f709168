package tracker

import (
	"context"

	"gorm.io/gorm"

	"github.com/raids-lab/tracker/dao/model"
	"github.com/raids-lab/tracker/pkg/tracking"
)

// CreateOrganization registers a tenant for an external org reference.
func (s *Service) CreateOrganization(ctx context.Context, clerkOrgID, name string) (*model.Organization, error) {
	var created *model.Organization
	err := s.inTx(ctx, func(tx *gorm.DB) error {
		var count int64
		err := tx.Model(&model.Organization{}).
			Where("clerk_org_id = ?", clerkOrgID).Count(&count).Error
		if err != nil {
			return mapDBErr(err, "organization lookup")
		}
		if count > 0 {
			return wrapf(ErrConflict, "organization %s already exists", clerkOrgID)
		}
		org := model.Organization{ClerkOrgID: clerkOrgID, Name: name}
		if err := tx.Create(&org).Error; err != nil {
			return mapDBErr(err, "create organization")
		}
		created = &org
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// AddOrganizationMember stores a membership. Duplicate members are a
// Conflict: the core reports it rather than silently succeeding; callers
// may treat it as idempotent if they wish.
func (s *Service) AddOrganizationMember(ctx context.Context, orgID uint, clerkUserID string, role model.Role) (*model.OrganizationMember, error) {
	var created *model.OrganizationMember
	err := s.inTx(ctx, func(tx *gorm.DB) error {
		var org model.Organization
		if err := tx.First(&org, orgID).Error; err != nil {
			return mapDBErr(err, "organization")
		}
		var count int64
		err := tx.Model(&model.OrganizationMember{}).
			Where("organization_id = ? AND clerk_user_id = ?", orgID, clerkUserID).
			Count(&count).Error
		if err != nil {
			return mapDBErr(err, "member lookup")
		}
		if count > 0 {
			return wrapf(ErrConflict, "user %s is already a member of organization %d", clerkUserID, orgID)
		}
		m := model.OrganizationMember{OrganizationID: orgID, ClerkUserID: clerkUserID, Role: role}
		if err := tx.Create(&m).Error; err != nil {
			return mapDBErr(err, "add member")
		}
		created = &m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

type CreateProjectInput struct {
	Name         string
	Description  *string
	ClientOrgRef *string
}

// CreateProject creates a project under an organization, makes the creator
// its admin and writes the project's own CREATED activity row.
func (s *Service) CreateProject(ctx context.Context, orgID uint, in CreateProjectInput, actor Actor) (*model.Project, error) {
	var created *model.Project
	err := s.inTx(ctx, func(tx *gorm.DB) error {
		var org model.Organization
		if err := tx.First(&org, orgID).Error; err != nil {
			return mapDBErr(err, "organization")
		}
		project := model.Project{
			Name:           in.Name,
			Description:    in.Description,
			OrganizationID: orgID,
			ClientOrgRef:   in.ClientOrgRef,
			Authored:       model.Authored{CreatorID: actor.ID, CreatorName: actor.Name},
		}
		if err := tx.Create(&project).Error; err != nil {
			return mapDBErr(err, "create project")
		}
		member := model.ProjectMember{
			ProjectID:   project.ID,
			ClerkUserID: actor.ID,
			Role:        model.RoleAdmin,
		}
		if err := tx.Create(&member).Error; err != nil {
			return mapDBErr(err, "add project member")
		}
		row := tracking.ActivityRow(
			tracking.Mutation{Created: true},
			tracking.Target{Type: model.EntityProject, ID: project.ID, Title: project.Name, ProjectID: project.ID},
			actor,
		)
		if err := appendActivity(tx, row); err != nil {
			return err
		}
		created = &project
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// AddProjectMember stores a project membership; duplicates are a Conflict.
func (s *Service) AddProjectMember(ctx context.Context, projectID uint, clerkUserID string, role model.Role) (*model.ProjectMember, error) {
	var created *model.ProjectMember
	err := s.inTx(ctx, func(tx *gorm.DB) error {
		var project model.Project
		if err := tx.First(&project, projectID).Error; err != nil {
			return mapDBErr(err, "project")
		}
		var count int64
		err := tx.Model(&model.ProjectMember{}).
			Where("project_id = ? AND clerk_user_id = ?", projectID, clerkUserID).
			Count(&count).Error
		if err != nil {
			return mapDBErr(err, "member lookup")
		}
		if count > 0 {
			return wrapf(ErrConflict, "user %s is already a member of project %d", clerkUserID, projectID)
		}
		m := model.ProjectMember{ProjectID: projectID, ClerkUserID: clerkUserID, Role: role}
		if err := tx.Create(&m).Error; err != nil {
			return mapDBErr(err, "add member")
		}
		created = &m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// DeleteProject removes a project and everything it transitively owns:
// apps, modules, tasks, bug sheets, comments, history, activity, visits and
// stars. Organization rows and notifications survive; notifications are
// user-scoped and outlive any project.
func (s *Service) DeleteProject(ctx context.Context, projectID uint) error {
	return s.inTx(ctx, func(tx *gorm.DB) error {
		var project model.Project
		if err := tx.First(&project, projectID).Error; err != nil {
			return mapDBErr(err, "project")
		}
		var appIDs []uint
		if err := tx.Model(&model.App{}).Where("project_id = ?", projectID).Pluck("id", &appIDs).Error; err != nil {
			return mapDBErr(err, "collect apps")
		}
		for _, appID := range appIDs {
			if err := deleteAppCascade(tx, appID); err != nil {
				return err
			}
		}
		if err := tx.Unscoped().Where("project_id = ?", projectID).Delete(&model.UserVisit{}).Error; err != nil {
			return mapDBErr(err, "delete visits")
		}
		if err := tx.Unscoped().Where("project_id = ?", projectID).Delete(&model.UserStarred{}).Error; err != nil {
			return mapDBErr(err, "delete stars")
		}
		if err := tx.Unscoped().Where("project_id = ?", projectID).Delete(&model.ActivityLog{}).Error; err != nil {
			return mapDBErr(err, "delete activity")
		}
		if err := tx.Unscoped().Where("project_id = ?", projectID).Delete(&model.ProjectMember{}).Error; err != nil {
			return mapDBErr(err, "delete members")
		}
		if err := tx.Unscoped().Delete(&model.Project{}, projectID).Error; err != nil {
			return mapDBErr(err, "delete project")
		}
		return nil
	})
}

type CreateAppInput struct {
	Name string
	Type model.AppType
	Icon *string
}

// CreateApp creates an app under a project.
func (s *Service) CreateApp(ctx context.Context, projectID uint, in CreateAppInput, actor Actor) (*model.App, error) {
	if in.Type == "" {
		in.Type = model.AppTypeCustom
	}
	var created *model.App
	err := s.inTx(ctx, func(tx *gorm.DB) error {
		var project model.Project
		if err := tx.First(&project, projectID).Error; err != nil {
			return mapDBErr(err, "project")
		}
		app := model.App{
			Name:      in.Name,
			Type:      in.Type,
			Icon:      in.Icon,
			ProjectID: projectID,
			Authored:  model.Authored{CreatorID: actor.ID, CreatorName: actor.Name},
		}
		if err := tx.Create(&app).Error; err != nil {
			return mapDBErr(err, "create app")
		}
		created = &app
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// DeleteApp removes an app with its modules, tasks, bug sheets and comments.
func (s *Service) DeleteApp(ctx context.Context, appID uint) error {
	return s.inTx(ctx, func(tx *gorm.DB) error {
		if _, err := loadApp(tx, appID); err != nil {
			return err
		}
		return deleteAppCascade(tx, appID)
	})
}

// deleteAppCascade hard-deletes one app and everything under it. Runs
// inside the caller's transaction.
func deleteAppCascade(tx *gorm.DB, appID uint) error {
	var moduleIDs []uint
	if err := tx.Model(&model.Module{}).Where("app_id = ?", appID).Pluck("id", &moduleIDs).Error; err != nil {
		return mapDBErr(err, "collect modules")
	}
	if len(moduleIDs) > 0 {
		var taskIDs []uint
		if err := tx.Model(&model.Task{}).Where("module_id IN ?", moduleIDs).Pluck("id", &taskIDs).Error; err != nil {
			return mapDBErr(err, "collect tasks")
		}
		if len(taskIDs) > 0 {
			if err := tx.Unscoped().Where("task_id IN ?", taskIDs).Delete(&model.Comment{}).Error; err != nil {
				return mapDBErr(err, "delete task comments")
			}
			if err := tx.Unscoped().Where("task_id IN ?", taskIDs).Delete(&model.TaskHistory{}).Error; err != nil {
				return mapDBErr(err, "delete task history")
			}
			if err := tx.Unscoped().Where("id IN ?", taskIDs).Delete(&model.Task{}).Error; err != nil {
				return mapDBErr(err, "delete tasks")
			}
		}
		if err := tx.Unscoped().Where("id IN ?", moduleIDs).Delete(&model.Module{}).Error; err != nil {
			return mapDBErr(err, "delete modules")
		}
	}
	var bugIDs []uint
	if err := tx.Model(&model.BugSheet{}).Where("app_id = ?", appID).Pluck("id", &bugIDs).Error; err != nil {
		return mapDBErr(err, "collect bug sheets")
	}
	if len(bugIDs) > 0 {
		if err := tx.Unscoped().Where("bug_sheet_id IN ?", bugIDs).Delete(&model.Comment{}).Error; err != nil {
			return mapDBErr(err, "delete bug comments")
		}
		if err := tx.Unscoped().Where("id IN ?", bugIDs).Delete(&model.BugSheet{}).Error; err != nil {
			return mapDBErr(err, "delete bug sheets")
		}
	}
	if err := tx.Unscoped().Delete(&model.App{}, appID).Error; err != nil {
		return mapDBErr(err, "delete app")
	}
	return nil
}

// ListProjects returns an organization's projects, newest first.
func (s *Service) ListProjects(ctx context.Context, orgID uint) ([]model.Project, error) {
	var projects []model.Project
	err := s.db.WithContext(ctx).
		Where("organization_id = ?", orgID).
		Order("id DESC").
		Find(&projects).Error
	if err != nil {
		return nil, mapDBErr(err, "list projects")
	}
	return projects, nil
}

// ListApps returns a project's apps.
func (s *Service) ListApps(ctx context.Context, projectID uint) ([]model.App, error) {
	var apps []model.App
	err := s.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("id ASC").
		Find(&apps).Error
	if err != nil {
		return nil, mapDBErr(err, "list apps")
	}
	return apps, nil
}
