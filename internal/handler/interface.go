package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/raids-lab/tracker/pkg/tracker"
)

// RegisterConfig carries the shared collaborators handed to every manager.
type RegisterConfig struct {
	Service *tracker.Service
}

type Manager interface {
	GetName() string
	RegisterPublic(group *gin.RouterGroup)
	RegisterProtected(group *gin.RouterGroup)
	RegisterAdmin(group *gin.RouterGroup)
}

type Register func(conf *RegisterConfig) Manager

// Registers collects every manager constructor; handlers append themselves
// from init().
var Registers []Register
