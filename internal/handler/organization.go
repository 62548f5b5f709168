package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/raids-lab/tracker/dao/model"
	"github.com/raids-lab/tracker/internal/resputil"
	"github.com/raids-lab/tracker/pkg/tracker"
)

//nolint:gochecknoinits // This is the standard way to register a gin handler.
func init() {
	Registers = append(Registers, NewOrganizationMgr)
}

type OrganizationMgr struct {
	name    string
	service *tracker.Service
}

func NewOrganizationMgr(conf *RegisterConfig) Manager {
	return &OrganizationMgr{
		name:    "organizations",
		service: conf.Service,
	}
}

func (mgr *OrganizationMgr) GetName() string { return mgr.name }

func (mgr *OrganizationMgr) RegisterPublic(_ *gin.RouterGroup) {}

func (mgr *OrganizationMgr) RegisterProtected(_ *gin.RouterGroup) {}

func (mgr *OrganizationMgr) RegisterAdmin(g *gin.RouterGroup) {
	g.POST("/organizations", mgr.Create)
	g.POST("/organizations/:id/members", mgr.AddMember)
}

type CreateOrgReq struct {
	ClerkOrgID string `json:"clerkOrgId" binding:"required"`
	Name       string `json:"name" binding:"required"`
}

// Create godoc
// @Summary Create an organization mirroring a Clerk organization
// @Tags Organization
// @Accept json
// @Produce json
// @Security Bearer
// @Param data body CreateOrgReq true "organization fields"
// @Success 200 {object} resputil.Response[model.Organization] "created organization"
// @Failure 409 {object} resputil.Response[any] "clerk org already registered"
// @Router /v1/admin/organizations [post]
func (mgr *OrganizationMgr) Create(c *gin.Context) {
	var req CreateOrgReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.HTTPError(c, 400, err.Error(), resputil.InvalidRequest)
		return
	}
	org, err := mgr.service.CreateOrganization(c, req.ClerkOrgID, req.Name)
	if err != nil {
		resputil.DomainError(c, err)
		return
	}
	resputil.Success(c, org)
}

type AddOrgMemberReq struct {
	ClerkUserID string     `json:"clerkUserId" binding:"required"`
	Role        model.Role `json:"role" binding:"required"`
}

func (mgr *OrganizationMgr) AddMember(c *gin.Context) {
	var uri IDReq
	if err := c.ShouldBindUri(&uri); err != nil {
		resputil.HTTPError(c, 400, err.Error(), resputil.InvalidRequest)
		return
	}
	var req AddOrgMemberReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.HTTPError(c, 400, err.Error(), resputil.InvalidRequest)
		return
	}
	member, err := mgr.service.AddOrganizationMember(c, uri.ID, req.ClerkUserID, req.Role)
	if err != nil {
		resputil.DomainError(c, err)
		return
	}
	resputil.Success(c, member)
}
