package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/raids-lab/tracker/internal/resputil"
	"github.com/raids-lab/tracker/internal/util"
	"github.com/raids-lab/tracker/pkg/tracker"
)

//nolint:gochecknoinits // This is the standard way to register a gin handler.
func init() {
	Registers = append(Registers, NewCommentMgr)
}

type CommentMgr struct {
	name    string
	service *tracker.Service
}

func NewCommentMgr(conf *RegisterConfig) Manager {
	return &CommentMgr{
		name:    "comments",
		service: conf.Service,
	}
}

func (mgr *CommentMgr) GetName() string { return mgr.name }

func (mgr *CommentMgr) RegisterPublic(_ *gin.RouterGroup) {}

func (mgr *CommentMgr) RegisterProtected(g *gin.RouterGroup) {
	g.GET("/tasks/:id/comments", mgr.ListForTask)
	g.POST("/tasks/:id/comments", mgr.CreateForTask)
	g.GET("/bugsheets/:id/comments", mgr.ListForBugSheet)
	g.POST("/bugsheets/:id/comments", mgr.CreateForBugSheet)
}

func (mgr *CommentMgr) RegisterAdmin(_ *gin.RouterGroup) {}

type CreateCommentReq struct {
	Content string `json:"content" binding:"required"`
}

// CreateForTask godoc
// @Summary Comment on a task
// @Description Notifies the assignee and anyone @-mentioned in the body
// @Tags Comment
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path IDReq true "task id"
// @Param data body CreateCommentReq true "comment body"
// @Success 200 {object} resputil.Response[model.Comment] "created comment"
// @Router /v1/tasks/{id}/comments [post]
func (mgr *CommentMgr) CreateForTask(c *gin.Context) {
	mgr.create(c, tracker.TaskTarget)
}

// CreateForBugSheet godoc
// @Summary Comment on a bug sheet
// @Tags Comment
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path IDReq true "bug sheet id"
// @Param data body CreateCommentReq true "comment body"
// @Success 200 {object} resputil.Response[model.Comment] "created comment"
// @Router /v1/bugsheets/{id}/comments [post]
func (mgr *CommentMgr) CreateForBugSheet(c *gin.Context) {
	mgr.create(c, tracker.BugSheetTarget)
}

func (mgr *CommentMgr) create(c *gin.Context, target func(uint) tracker.CommentTarget) {
	var uri IDReq
	if err := c.ShouldBindUri(&uri); err != nil {
		resputil.HTTPError(c, 400, err.Error(), resputil.InvalidRequest)
		return
	}
	var req CreateCommentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.HTTPError(c, 400, err.Error(), resputil.InvalidRequest)
		return
	}
	id := util.GetIdentity(c)
	comment, err := mgr.service.AddComment(c, target(uri.ID), req.Content, id.Actor())
	if err != nil {
		resputil.DomainError(c, err)
		return
	}
	resputil.Success(c, comment)
}

func (mgr *CommentMgr) ListForTask(c *gin.Context) {
	mgr.list(c, tracker.TaskTarget)
}

func (mgr *CommentMgr) ListForBugSheet(c *gin.Context) {
	mgr.list(c, tracker.BugSheetTarget)
}

func (mgr *CommentMgr) list(c *gin.Context, target func(uint) tracker.CommentTarget) {
	var uri IDReq
	if err := c.ShouldBindUri(&uri); err != nil {
		resputil.HTTPError(c, 400, err.Error(), resputil.InvalidRequest)
		return
	}
	comments, err := mgr.service.ListComments(c, target(uri.ID))
	if err != nil {
		resputil.DomainError(c, err)
		return
	}
	resputil.Success(c, comments)
}
