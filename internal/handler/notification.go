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
	Registers = append(Registers, NewNotificationMgr)
}

type NotificationMgr struct {
	name    string
	service *tracker.Service
}

func NewNotificationMgr(conf *RegisterConfig) Manager {
	return &NotificationMgr{
		name:    "notifications",
		service: conf.Service,
	}
}

func (mgr *NotificationMgr) GetName() string { return mgr.name }

func (mgr *NotificationMgr) RegisterPublic(_ *gin.RouterGroup) {}

func (mgr *NotificationMgr) RegisterProtected(g *gin.RouterGroup) {
	g.GET("/notifications", mgr.List)
	g.PUT("/notifications/:id/read", mgr.MarkRead)
	g.PUT("/notifications/read", mgr.MarkAllRead)
}

func (mgr *NotificationMgr) RegisterAdmin(_ *gin.RouterGroup) {}

type ListNotificationsReq struct {
	UnreadOnly bool `form:"unreadOnly"`
	Page       int  `form:"page"`
	PageSize   int  `form:"pageSize"`
}

// List godoc
// @Summary List the caller's notifications, newest first
// @Tags Notification
// @Produce json
// @Security Bearer
// @Param unreadOnly query bool false "only unread"
// @Param page query int false "page, zero-based"
// @Param pageSize query int false "page size, default 50"
// @Success 200 {object} resputil.Response[payload.ListResp[model.Notification]] "notification page"
// @Router /v1/notifications [get]
func (mgr *NotificationMgr) List(c *gin.Context) {
	var req ListNotificationsReq
	if err := c.ShouldBindQuery(&req); err != nil {
		resputil.HTTPError(c, 400, err.Error(), resputil.InvalidRequest)
		return
	}
	id := util.GetIdentity(c)
	rows, total, err := mgr.service.ListNotifications(c, id.ClerkUserID, tracker.NotificationFilter{
		UnreadOnly: req.UnreadOnly,
		Pagination: tracker.Pagination{Page: req.Page, PageSize: req.PageSize},
	})
	if err != nil {
		resputil.DomainError(c, err)
		return
	}
	resputil.Success(c, payload.ListResp[model.Notification]{Rows: rows, Count: total})
}

// MarkRead godoc
// @Summary Mark one of the caller's notifications as read
// @Tags Notification
// @Produce json
// @Security Bearer
// @Param id path IDReq true "notification id"
// @Success 200 {object} resputil.Response[string] "marked"
// @Failure 404 {object} resputil.Response[any] "not the caller's notification"
// @Router /v1/notifications/{id}/read [put]
func (mgr *NotificationMgr) MarkRead(c *gin.Context) {
	var uri IDReq
	if err := c.ShouldBindUri(&uri); err != nil {
		resputil.HTTPError(c, 400, err.Error(), resputil.InvalidRequest)
		return
	}
	id := util.GetIdentity(c)
	if err := mgr.service.MarkRead(c, id.ClerkUserID, uri.ID); err != nil {
		resputil.DomainError(c, err)
		return
	}
	resputil.Success(c, "")
}

type MarkAllResp struct {
	Marked int64 `json:"marked"`
}

func (mgr *NotificationMgr) MarkAllRead(c *gin.Context) {
	id := util.GetIdentity(c)
	marked, err := mgr.service.MarkAllRead(c, id.ClerkUserID)
	if err != nil {
		resputil.DomainError(c, err)
		return
	}
	resputil.Success(c, MarkAllResp{Marked: marked})
}
