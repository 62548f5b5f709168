package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/raids-lab/tracker/internal/resputil"
	"github.com/raids-lab/tracker/internal/util"
	"github.com/raids-lab/tracker/pkg/tracker"
)

//nolint:gochecknoinits // This is the standard way to register a gin handler.
func init() {
	Registers = append(Registers, NewVisitMgr)
}

type VisitMgr struct {
	name    string
	service *tracker.Service
}

func NewVisitMgr(conf *RegisterConfig) Manager {
	return &VisitMgr{
		name:    "visits",
		service: conf.Service,
	}
}

func (mgr *VisitMgr) GetName() string { return mgr.name }

func (mgr *VisitMgr) RegisterPublic(_ *gin.RouterGroup) {}

func (mgr *VisitMgr) RegisterProtected(g *gin.RouterGroup) {
	g.POST("/visits", mgr.Record)
	g.GET("/visits/recent", mgr.Recent)
	g.POST("/stars", mgr.Star)
	g.DELETE("/stars", mgr.Unstar)
	g.GET("/stars", mgr.ListStarred)
}

func (mgr *VisitMgr) RegisterAdmin(_ *gin.RouterGroup) {}

type VisitReq struct {
	ProjectID uint  `json:"projectId" binding:"required"`
	AppID     *uint `json:"appId"`
}

// Record godoc
// @Summary Record that the caller opened a project or app
// @Description Snapshots the names at visit time so the recents list survives renames
// @Tags Visit
// @Accept json
// @Produce json
// @Security Bearer
// @Param data body VisitReq true "visit target"
// @Success 200 {object} resputil.Response[model.UserVisit] "recorded visit"
// @Router /v1/visits [post]
func (mgr *VisitMgr) Record(c *gin.Context) {
	var req VisitReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.HTTPError(c, 400, err.Error(), resputil.InvalidRequest)
		return
	}
	id := util.GetIdentity(c)
	visit, err := mgr.service.RecordVisit(c, id.ClerkUserID, req.ProjectID, req.AppID)
	if err != nil {
		resputil.DomainError(c, err)
		return
	}
	resputil.Success(c, visit)
}

type RecentReq struct {
	Limit int `form:"limit"`
}

func (mgr *VisitMgr) Recent(c *gin.Context) {
	var req RecentReq
	if err := c.ShouldBindQuery(&req); err != nil {
		resputil.HTTPError(c, 400, err.Error(), resputil.InvalidRequest)
		return
	}
	id := util.GetIdentity(c)
	visits, err := mgr.service.ListRecentVisits(c, id.ClerkUserID, req.Limit)
	if err != nil {
		resputil.DomainError(c, err)
		return
	}
	resputil.Success(c, visits)
}

// Star godoc
// @Summary Star a project or app for the caller
// @Tags Visit
// @Accept json
// @Produce json
// @Security Bearer
// @Param data body VisitReq true "star target"
// @Success 200 {object} resputil.Response[model.UserStarred] "created star"
// @Failure 409 {object} resputil.Response[any] "already starred"
// @Router /v1/stars [post]
func (mgr *VisitMgr) Star(c *gin.Context) {
	var req VisitReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.HTTPError(c, 400, err.Error(), resputil.InvalidRequest)
		return
	}
	id := util.GetIdentity(c)
	star, err := mgr.service.StarProject(c, id.ClerkUserID, req.ProjectID, req.AppID)
	if err != nil {
		resputil.DomainError(c, err)
		return
	}
	resputil.Success(c, star)
}

func (mgr *VisitMgr) Unstar(c *gin.Context) {
	var req VisitReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.HTTPError(c, 400, err.Error(), resputil.InvalidRequest)
		return
	}
	id := util.GetIdentity(c)
	if err := mgr.service.UnstarProject(c, id.ClerkUserID, req.ProjectID, req.AppID); err != nil {
		resputil.DomainError(c, err)
		return
	}
	resputil.Success(c, "")
}

func (mgr *VisitMgr) ListStarred(c *gin.Context) {
	id := util.GetIdentity(c)
	stars, err := mgr.service.ListStarred(c, id.ClerkUserID)
	if err != nil {
		resputil.DomainError(c, err)
		return
	}
	resputil.Success(c, stars)
}
