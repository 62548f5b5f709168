package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/raids-lab/tracker/dao/model"
	"github.com/raids-lab/tracker/internal/resputil"
	"github.com/raids-lab/tracker/internal/util"
	"github.com/raids-lab/tracker/pkg/tracker"
)

//nolint:gochecknoinits // This is the standard way to register a gin handler.
func init() {
	Registers = append(Registers, NewTaskMgr)
}

type TaskMgr struct {
	name    string
	service *tracker.Service
}

func NewTaskMgr(conf *RegisterConfig) Manager {
	return &TaskMgr{
		name:    "tasks",
		service: conf.Service,
	}
}

func (mgr *TaskMgr) GetName() string { return mgr.name }

func (mgr *TaskMgr) RegisterPublic(_ *gin.RouterGroup) {}

func (mgr *TaskMgr) RegisterProtected(g *gin.RouterGroup) {
	g.GET("/modules/:id/tasks", mgr.List)
	g.POST("/modules/:id/tasks", mgr.Create)
	g.GET("/tasks/:id", mgr.Get)
	g.PUT("/tasks/:id", mgr.Update)
	g.DELETE("/tasks/:id", mgr.Delete)
	g.PUT("/tasks/:id/move", mgr.Move)
	g.GET("/tasks/:id/history", mgr.History)
}

func (mgr *TaskMgr) RegisterAdmin(_ *gin.RouterGroup) {}

type IDReq struct {
	ID uint `uri:"id" binding:"required"`
}

type CreateTaskReq struct {
	Title       string              `json:"title" binding:"required"`
	Description *string             `json:"description"`
	Type        model.TaskType      `json:"type"`
	Priority    model.TaskPriority  `json:"priority"`
	Status      model.TaskStatus    `json:"status"`
	AssignedTo  *string             `json:"assignedTo"`
	Remarks     *string             `json:"remarks"`
	StartDate   *time.Time          `json:"startDate"`
	EndDate     *time.Time          `json:"endDate"`
	ParentID    *uint               `json:"parentId"`
}

// Create godoc
// @Summary Create a task or subtask under a module
// @Description Assigns the sibling order and the human-readable task code atomically
// @Tags Task
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path IDReq true "module id"
// @Param data body CreateTaskReq true "task fields"
// @Success 200 {object} resputil.Response[model.Task] "created task"
// @Failure 400 {object} resputil.Response[any] "invalid hierarchy or request"
// @Failure 404 {object} resputil.Response[any] "module or parent not found"
// @Router /v1/modules/{id}/tasks [post]
func (mgr *TaskMgr) Create(c *gin.Context) {
	var uri IDReq
	if err := c.ShouldBindUri(&uri); err != nil {
		resputil.HTTPError(c, 400, err.Error(), resputil.InvalidRequest)
		return
	}
	var req CreateTaskReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.HTTPError(c, 400, err.Error(), resputil.InvalidRequest)
		return
	}
	id := util.GetIdentity(c)
	task, err := mgr.service.CreateTask(c, uri.ID, tracker.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Type:        req.Type,
		Priority:    req.Priority,
		Status:      req.Status,
		AssignedTo:  req.AssignedTo,
		Remarks:     req.Remarks,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		ParentID:    req.ParentID,
	}, id.Actor())
	if err != nil {
		resputil.DomainError(c, err)
		return
	}
	resputil.Success(c, task)
}

type UpdateTaskReq struct {
	Title       *string             `json:"title"`
	Description *string             `json:"description"`
	Type        *model.TaskType     `json:"type"`
	Priority    *model.TaskPriority `json:"priority"`
	Status      *model.TaskStatus   `json:"status"`
	AssignedTo  *string             `json:"assignedTo"`
	Unassign    bool                `json:"unassign"`
	Remarks     *string             `json:"remarks"`
	StartDate   *time.Time          `json:"startDate"`
	EndDate     *time.Time          `json:"endDate"`
}

// Update godoc
// @Summary Patch a task
// @Description Writes per-field history, one classified activity row, and notification fan-out
// @Tags Task
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path IDReq true "task id"
// @Param data body UpdateTaskReq true "fields to change"
// @Success 200 {object} resputil.Response[model.Task] "updated task"
// @Router /v1/tasks/{id} [put]
func (mgr *TaskMgr) Update(c *gin.Context) {
	var uri IDReq
	if err := c.ShouldBindUri(&uri); err != nil {
		resputil.HTTPError(c, 400, err.Error(), resputil.InvalidRequest)
		return
	}
	var req UpdateTaskReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.HTTPError(c, 400, err.Error(), resputil.InvalidRequest)
		return
	}
	id := util.GetIdentity(c)
	task, err := mgr.service.UpdateTask(c, uri.ID, tracker.UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Type:        req.Type,
		Priority:    req.Priority,
		Status:      req.Status,
		AssignedTo:  req.AssignedTo,
		Unassign:    req.Unassign,
		Remarks:     req.Remarks,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
	}, id.Actor())
	if err != nil {
		resputil.DomainError(c, err)
		return
	}
	resputil.Success(c, task)
}

// Delete godoc
// @Summary Delete a task with its subtasks, comments and history
// @Tags Task
// @Produce json
// @Security Bearer
// @Param id path IDReq true "task id"
// @Success 200 {object} resputil.Response[string] "deleted"
// @Router /v1/tasks/{id} [delete]
func (mgr *TaskMgr) Delete(c *gin.Context) {
	var uri IDReq
	if err := c.ShouldBindUri(&uri); err != nil {
		resputil.HTTPError(c, 400, err.Error(), resputil.InvalidRequest)
		return
	}
	id := util.GetIdentity(c)
	if err := mgr.service.DeleteTask(c, uri.ID, id.Actor()); err != nil {
		resputil.DomainError(c, err)
		return
	}
	resputil.Success(c, "")
}

type MoveTaskReq struct {
	ModuleID *uint `json:"moduleId"`
	ParentID *uint `json:"parentId"`
	MakeRoot bool  `json:"makeRoot"`
	Order    *int  `json:"order"`
}

// Move godoc
// @Summary Move a task within or across modules
// @Tags Task
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path IDReq true "task id"
// @Param data body MoveTaskReq true "destination"
// @Success 200 {object} resputil.Response[model.Task] "moved task"
// @Failure 400 {object} resputil.Response[any] "cycle or cross-module parent"
// @Router /v1/tasks/{id}/move [put]
func (mgr *TaskMgr) Move(c *gin.Context) {
	var uri IDReq
	if err := c.ShouldBindUri(&uri); err != nil {
		resputil.HTTPError(c, 400, err.Error(), resputil.InvalidRequest)
		return
	}
	var req MoveTaskReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.HTTPError(c, 400, err.Error(), resputil.InvalidRequest)
		return
	}
	id := util.GetIdentity(c)
	task, err := mgr.service.MoveTask(c, uri.ID, tracker.MoveTaskInput{
		ModuleID: req.ModuleID,
		ParentID: req.ParentID,
		MakeRoot: req.MakeRoot,
		Order:    req.Order,
	}, id.Actor())
	if err != nil {
		resputil.DomainError(c, err)
		return
	}
	resputil.Success(c, task)
}

func (mgr *TaskMgr) List(c *gin.Context) {
	var uri IDReq
	if err := c.ShouldBindUri(&uri); err != nil {
		resputil.HTTPError(c, 400, err.Error(), resputil.InvalidRequest)
		return
	}
	tasks, err := mgr.service.ListTasks(c, uri.ID)
	if err != nil {
		resputil.DomainError(c, err)
		return
	}
	resputil.Success(c, tasks)
}

func (mgr *TaskMgr) Get(c *gin.Context) {
	var uri IDReq
	if err := c.ShouldBindUri(&uri); err != nil {
		resputil.HTTPError(c, 400, err.Error(), resputil.InvalidRequest)
		return
	}
	task, err := mgr.service.GetTask(c, uri.ID)
	if err != nil {
		resputil.DomainError(c, err)
		return
	}
	resputil.Success(c, task)
}

func (mgr *TaskMgr) History(c *gin.Context) {
	var uri IDReq
	if err := c.ShouldBindUri(&uri); err != nil {
		resputil.HTTPError(c, 400, err.Error(), resputil.InvalidRequest)
		return
	}
	rows, err := mgr.service.ListTaskHistory(c, uri.ID)
	if err != nil {
		resputil.DomainError(c, err)
		return
	}
	resputil.Success(c, rows)
}
