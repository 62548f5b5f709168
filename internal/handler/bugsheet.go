package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/raids-lab/tracker/dao/model"
	"github.com/raids-lab/tracker/internal/resputil"
	"github.com/raids-lab/tracker/internal/util"
	"github.com/raids-lab/tracker/pkg/tracker"
)

//nolint:gochecknoinits // This is the standard way to register a gin handler.
func init() {
	Registers = append(Registers, NewBugSheetMgr)
}

type BugSheetMgr struct {
	name    string
	service *tracker.Service
}

func NewBugSheetMgr(conf *RegisterConfig) Manager {
	return &BugSheetMgr{
		name:    "bugsheets",
		service: conf.Service,
	}
}

func (mgr *BugSheetMgr) GetName() string { return mgr.name }

func (mgr *BugSheetMgr) RegisterPublic(_ *gin.RouterGroup) {}

func (mgr *BugSheetMgr) RegisterProtected(g *gin.RouterGroup) {
	g.GET("/apps/:id/bugsheets", mgr.List)
	g.POST("/apps/:id/bugsheets", mgr.Create)
	g.PUT("/bugsheets/:id", mgr.Update)
	g.DELETE("/bugsheets/:id", mgr.Delete)
}

func (mgr *BugSheetMgr) RegisterAdmin(_ *gin.RouterGroup) {}

type CreateBugSheetReq struct {
	Module      string              `json:"module"`
	Description string              `json:"description" binding:"required"`
	Status      model.TaskStatus    `json:"status"`
	Priority    model.TaskPriority  `json:"priority"`
	AssignedTo  *string             `json:"assignedTo"`
	Remarks     *string             `json:"remarks"`
}

// Create godoc
// @Summary Record a bug against an app
// @Description The module field is a free-text label, not a module reference
// @Tags BugSheet
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path IDReq true "app id"
// @Param data body CreateBugSheetReq true "bug fields"
// @Success 200 {object} resputil.Response[model.BugSheet] "created bug sheet"
// @Router /v1/apps/{id}/bugsheets [post]
func (mgr *BugSheetMgr) Create(c *gin.Context) {
	var uri IDReq
	if err := c.ShouldBindUri(&uri); err != nil {
		resputil.HTTPError(c, 400, err.Error(), resputil.InvalidRequest)
		return
	}
	var req CreateBugSheetReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.HTTPError(c, 400, err.Error(), resputil.InvalidRequest)
		return
	}
	id := util.GetIdentity(c)
	bug, err := mgr.service.CreateBugSheet(c, uri.ID, tracker.CreateBugSheetInput{
		Module:      req.Module,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		AssignedTo:  req.AssignedTo,
		Remarks:     req.Remarks,
	}, id.Actor())
	if err != nil {
		resputil.DomainError(c, err)
		return
	}
	resputil.Success(c, bug)
}

type UpdateBugSheetReq struct {
	Module      *string             `json:"module"`
	Description *string             `json:"description"`
	Status      *model.TaskStatus   `json:"status"`
	Priority    *model.TaskPriority `json:"priority"`
	AssignedTo  *string             `json:"assignedTo"`
	Unassign    bool                `json:"unassign"`
	Remarks     *string             `json:"remarks"`
}

func (mgr *BugSheetMgr) Update(c *gin.Context) {
	var uri IDReq
	if err := c.ShouldBindUri(&uri); err != nil {
		resputil.HTTPError(c, 400, err.Error(), resputil.InvalidRequest)
		return
	}
	var req UpdateBugSheetReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.HTTPError(c, 400, err.Error(), resputil.InvalidRequest)
		return
	}
	id := util.GetIdentity(c)
	bug, err := mgr.service.UpdateBugSheet(c, uri.ID, tracker.UpdateBugSheetInput{
		Module:      req.Module,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		AssignedTo:  req.AssignedTo,
		Unassign:    req.Unassign,
		Remarks:     req.Remarks,
	}, id.Actor())
	if err != nil {
		resputil.DomainError(c, err)
		return
	}
	resputil.Success(c, bug)
}

func (mgr *BugSheetMgr) Delete(c *gin.Context) {
	var uri IDReq
	if err := c.ShouldBindUri(&uri); err != nil {
		resputil.HTTPError(c, 400, err.Error(), resputil.InvalidRequest)
		return
	}
	id := util.GetIdentity(c)
	if err := mgr.service.DeleteBugSheet(c, uri.ID, id.Actor()); err != nil {
		resputil.DomainError(c, err)
		return
	}
	resputil.Success(c, "")
}

func (mgr *BugSheetMgr) List(c *gin.Context) {
	var uri IDReq
	if err := c.ShouldBindUri(&uri); err != nil {
		resputil.HTTPError(c, 400, err.Error(), resputil.InvalidRequest)
		return
	}
	bugs, err := mgr.service.ListBugSheets(c, uri.ID)
	if err != nil {
		resputil.DomainError(c, err)
		return
	}
	resputil.Success(c, bugs)
}
