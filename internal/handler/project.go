package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/raids-lab/tracker/dao/model"
	"github.com/raids-lab/tracker/internal/payload"
	"github.com/raids-lab/tracker/internal/resputil"
	"github.com/raids-lab/tracker/internal/util"
	"github.com/raids-lab/tracker/pkg/tracker"
)

//nolint:gochecknoinits // This is the standard way to register a gin handler.
func init() {
	Registers = append(Registers, NewProjectMgr)
}

type ProjectMgr struct {
	name    string
	service *tracker.Service
}

func NewProjectMgr(conf *RegisterConfig) Manager {
	return &ProjectMgr{
		name:    "projects",
		service: conf.Service,
	}
}

func (mgr *ProjectMgr) GetName() string { return mgr.name }

func (mgr *ProjectMgr) RegisterPublic(_ *gin.RouterGroup) {}

func (mgr *ProjectMgr) RegisterProtected(g *gin.RouterGroup) {
	g.GET("/organizations/:id/projects", mgr.List)
	g.POST("/organizations/:id/projects", mgr.Create)
	g.POST("/projects/:id/members", mgr.AddMember)
	g.GET("/projects/:id/activity", mgr.Activity)
	g.GET("/projects/:id/apps", mgr.ListApps)
	g.POST("/projects/:id/apps", mgr.CreateApp)
	g.DELETE("/apps/:id", mgr.DeleteApp)
}

func (mgr *ProjectMgr) RegisterAdmin(g *gin.RouterGroup) {
	g.DELETE("/projects/:id", mgr.Delete)
}

type CreateProjectReq struct {
	Name         string  `json:"name" binding:"required"`
	Description  *string `json:"description"`
	ClientOrgRef *string `json:"clientOrgRef"`
}

// Create godoc
// @Summary Create a project under an organization
// @Description The creator is enrolled as the project admin
// @Tags Project
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path IDReq true "organization id"
// @Param data body CreateProjectReq true "project fields"
// @Success 200 {object} resputil.Response[model.Project] "created project"
// @Router /v1/organizations/{id}/projects [post]
func (mgr *ProjectMgr) Create(c *gin.Context) {
	var uri IDReq
	if err := c.ShouldBindUri(&uri); err != nil {
		resputil.HTTPError(c, 400, err.Error(), resputil.InvalidRequest)
		return
	}
	var req CreateProjectReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.HTTPError(c, 400, err.Error(), resputil.InvalidRequest)
		return
	}
	id := util.GetIdentity(c)
	project, err := mgr.service.CreateProject(c, uri.ID, tracker.CreateProjectInput{
		Name:         req.Name,
		Description:  req.Description,
		ClientOrgRef: req.ClientOrgRef,
	}, id.Actor())
	if err != nil {
		resputil.DomainError(c, err)
		return
	}
	resputil.Success(c, project)
}

type AddMemberReq struct {
	ClerkUserID string     `json:"clerkUserId" binding:"required"`
	Role        model.Role `json:"role" binding:"required"`
}

func (mgr *ProjectMgr) AddMember(c *gin.Context) {
	var uri IDReq
	if err := c.ShouldBindUri(&uri); err != nil {
		resputil.HTTPError(c, 400, err.Error(), resputil.InvalidRequest)
		return
	}
	var req AddMemberReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.HTTPError(c, 400, err.Error(), resputil.InvalidRequest)
		return
	}
	member, err := mgr.service.AddProjectMember(c, uri.ID, req.ClerkUserID, req.Role)
	if err != nil {
		resputil.DomainError(c, err)
		return
	}
	resputil.Success(c, member)
}

// Delete godoc
// @Summary Delete a project and everything under it
// @Description Cascades through apps, modules, tasks, bug sheets, comments, history, activity, visits and stars
// @Tags Project
// @Produce json
// @Security Bearer
// @Param id path IDReq true "project id"
// @Success 200 {object} resputil.Response[string] "deleted"
// @Router /v1/admin/projects/{id} [delete]
func (mgr *ProjectMgr) Delete(c *gin.Context) {
	var uri IDReq
	if err := c.ShouldBindUri(&uri); err != nil {
		resputil.HTTPError(c, 400, err.Error(), resputil.InvalidRequest)
		return
	}
	if err := mgr.service.DeleteProject(c, uri.ID); err != nil {
		resputil.DomainError(c, err)
		return
	}
	resputil.Success(c, "")
}

func (mgr *ProjectMgr) List(c *gin.Context) {
	var uri IDReq
	if err := c.ShouldBindUri(&uri); err != nil {
		resputil.HTTPError(c, 400, err.Error(), resputil.InvalidRequest)
		return
	}
	projects, err := mgr.service.ListProjects(c, uri.ID)
	if err != nil {
		resputil.DomainError(c, err)
		return
	}
	resputil.Success(c, projects)
}

// Activity godoc
// @Summary List a project's activity feed, newest first
// @Tags Project
// @Produce json
// @Security Bearer
// @Param id path IDReq true "project id"
// @Param page query int false "page, zero-based"
// @Param pageSize query int false "page size, default 50"
// @Success 200 {object} resputil.Response[payload.ListResp[model.ActivityLog]] "activity page"
// @Router /v1/projects/{id}/activity [get]
func (mgr *ProjectMgr) Activity(c *gin.Context) {
	var uri IDReq
	if err := c.ShouldBindUri(&uri); err != nil {
		resputil.HTTPError(c, 400, err.Error(), resputil.InvalidRequest)
		return
	}
	var p tracker.Pagination
	if err := c.ShouldBindQuery(&p); err != nil {
		resputil.HTTPError(c, 400, err.Error(), resputil.InvalidRequest)
		return
	}
	rows, total, err := mgr.service.ListActivity(c, uri.ID, p)
	if err != nil {
		resputil.DomainError(c, err)
		return
	}
	resputil.Success(c, payload.ListResp[model.ActivityLog]{Rows: rows, Count: total})
}

type CreateAppReq struct {
	Name string        `json:"name" binding:"required"`
	Type model.AppType `json:"type"`
	Icon *string       `json:"icon"`
}

func (mgr *ProjectMgr) CreateApp(c *gin.Context) {
	var uri IDReq
	if err := c.ShouldBindUri(&uri); err != nil {
		resputil.HTTPError(c, 400, err.Error(), resputil.InvalidRequest)
		return
	}
	var req CreateAppReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.HTTPError(c, 400, err.Error(), resputil.InvalidRequest)
		return
	}
	id := util.GetIdentity(c)
	app, err := mgr.service.CreateApp(c, uri.ID, tracker.CreateAppInput{
		Name: req.Name,
		Type: req.Type,
		Icon: req.Icon,
	}, id.Actor())
	if err != nil {
		resputil.DomainError(c, err)
		return
	}
	resputil.Success(c, app)
}

func (mgr *ProjectMgr) DeleteApp(c *gin.Context) {
	var uri IDReq
	if err := c.ShouldBindUri(&uri); err != nil {
		resputil.HTTPError(c, 400, err.Error(), resputil.InvalidRequest)
		return
	}
	if err := mgr.service.DeleteApp(c, uri.ID); err != nil {
		resputil.DomainError(c, err)
		return
	}
	resputil.Success(c, "")
}

func (mgr *ProjectMgr) ListApps(c *gin.Context) {
	var uri IDReq
	if err := c.ShouldBindUri(&uri); err != nil {
		resputil.HTTPError(c, 400, err.Error(), resputil.InvalidRequest)
		return
	}
	apps, err := mgr.service.ListApps(c, uri.ID)
	if err != nil {
		resputil.DomainError(c, err)
		return
	}
	resputil.Success(c, apps)
}
