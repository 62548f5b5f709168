package util

import (
	"github.com/gin-gonic/gin"

	"github.com/raids-lab/tracker/dao/model"
	"github.com/raids-lab/tracker/pkg/tracker"
)

const (
	UserIDKey   = "x-user-id"
	UserNameKey = "x-user-name"
	OrgIDKey    = "x-org-id"
	OrgRoleKey  = "x-org-role"
)

// Identity is the authenticated caller as asserted by the external identity
// provider's token. IDs are opaque; role is stored claims only, policy is
// evaluated upstream.
type Identity struct {
	ClerkUserID string
	UserName    string
	ClerkOrgID  string
	OrgRole     model.Role
}

func SetIdentity(c *gin.Context, id Identity) {
	c.Set(UserIDKey, id.ClerkUserID)
	c.Set(UserNameKey, id.UserName)
	c.Set(OrgIDKey, id.ClerkOrgID)
	c.Set(OrgRoleKey, string(id.OrgRole))
}

func GetIdentity(c *gin.Context) Identity {
	return Identity{
		ClerkUserID: c.GetString(UserIDKey),
		UserName:    c.GetString(UserNameKey),
		ClerkOrgID:  c.GetString(OrgIDKey),
		OrgRole:     model.Role(c.GetString(OrgRoleKey)),
	}
}

// Actor converts the caller identity into the domain actor passed to every
// mutating operation.
func (id Identity) Actor() tracker.Actor {
	return tracker.Actor{ID: id.ClerkUserID, Name: id.UserName}
}
