package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/raids-lab/tracker/internal/resputil"
	"github.com/raids-lab/tracker/internal/util"
	"github.com/raids-lab/tracker/pkg/tracker"
)

//nolint:gochecknoinits // This is the standard way to register a gin handler.
func init() {
	Registers = append(Registers, NewModuleMgr)
}

type ModuleMgr struct {
	name    string
	service *tracker.Service
}

func NewModuleMgr(conf *RegisterConfig) Manager {
	return &ModuleMgr{
		name:    "modules",
		service: conf.Service,
	}
}

func (mgr *ModuleMgr) GetName() string { return mgr.name }

func (mgr *ModuleMgr) RegisterPublic(_ *gin.RouterGroup) {}

func (mgr *ModuleMgr) RegisterProtected(g *gin.RouterGroup) {
	g.GET("/apps/:id/modules", mgr.List)
	g.POST("/apps/:id/modules", mgr.Create)
	g.PUT("/modules/:id", mgr.Rename)
	g.PUT("/modules/:id/move", mgr.Move)
	g.DELETE("/modules/:id", mgr.Delete)
}

func (mgr *ModuleMgr) RegisterAdmin(_ *gin.RouterGroup) {}

type CreateModuleReq struct {
	Name string `json:"name" binding:"required"`
}

// Create godoc
// @Summary Create a module under an app
// @Description The module slug is derived from the name once and frozen; task codes keep it forever
// @Tags Module
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path IDReq true "app id"
// @Param data body CreateModuleReq true "module name"
// @Success 200 {object} resputil.Response[model.Module] "created module"
// @Router /v1/apps/{id}/modules [post]
func (mgr *ModuleMgr) Create(c *gin.Context) {
	var uri IDReq
	if err := c.ShouldBindUri(&uri); err != nil {
		resputil.HTTPError(c, 400, err.Error(), resputil.InvalidRequest)
		return
	}
	var req CreateModuleReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.HTTPError(c, 400, err.Error(), resputil.InvalidRequest)
		return
	}
	id := util.GetIdentity(c)
	module, err := mgr.service.CreateModule(c, uri.ID, req.Name, id.Actor())
	if err != nil {
		resputil.DomainError(c, err)
		return
	}
	resputil.Success(c, module)
}

// Rename godoc
// @Summary Rename a module
// @Description Renaming never changes the slug, so existing task codes stay valid
// @Tags Module
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path IDReq true "module id"
// @Param data body CreateModuleReq true "new name"
// @Success 200 {object} resputil.Response[model.Module] "renamed module"
// @Router /v1/modules/{id} [put]
func (mgr *ModuleMgr) Rename(c *gin.Context) {
	var uri IDReq
	if err := c.ShouldBindUri(&uri); err != nil {
		resputil.HTTPError(c, 400, err.Error(), resputil.InvalidRequest)
		return
	}
	var req CreateModuleReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.HTTPError(c, 400, err.Error(), resputil.InvalidRequest)
		return
	}
	id := util.GetIdentity(c)
	module, err := mgr.service.RenameModule(c, uri.ID, req.Name, id.Actor())
	if err != nil {
		resputil.DomainError(c, err)
		return
	}
	resputil.Success(c, module)
}

type MoveModuleReq struct {
	Order int `json:"order"`
}

func (mgr *ModuleMgr) Move(c *gin.Context) {
	var uri IDReq
	if err := c.ShouldBindUri(&uri); err != nil {
		resputil.HTTPError(c, 400, err.Error(), resputil.InvalidRequest)
		return
	}
	var req MoveModuleReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.HTTPError(c, 400, err.Error(), resputil.InvalidRequest)
		return
	}
	if err := mgr.service.MoveModule(c, uri.ID, req.Order); err != nil {
		resputil.DomainError(c, err)
		return
	}
	resputil.Success(c, "")
}

// Delete godoc
// @Summary Delete a module with all its tasks, comments and history
// @Tags Module
// @Produce json
// @Security Bearer
// @Param id path IDReq true "module id"
// @Success 200 {object} resputil.Response[string] "deleted"
// @Router /v1/modules/{id} [delete]
func (mgr *ModuleMgr) Delete(c *gin.Context) {
	var uri IDReq
	if err := c.ShouldBindUri(&uri); err != nil {
		resputil.HTTPError(c, 400, err.Error(), resputil.InvalidRequest)
		return
	}
	id := util.GetIdentity(c)
	if err := mgr.service.DeleteModule(c, uri.ID, id.Actor()); err != nil {
		resputil.DomainError(c, err)
		return
	}
	resputil.Success(c, "")
}

func (mgr *ModuleMgr) List(c *gin.Context) {
	var uri IDReq
	if err := c.ShouldBindUri(&uri); err != nil {
		resputil.HTTPError(c, 400, err.Error(), resputil.InvalidRequest)
		return
	}
	modules, err := mgr.service.ListModules(c, uri.ID)
	if err != nil {
		resputil.DomainError(c, err)
		return
	}
	resputil.Success(c, modules)
}
