package api

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/powerhour/internal/http/middleware"
	"github.com/Nixie-Tech-LLC/powerhour/internal/session"
)

// Module is a pluggable feature that attaches its endpoints to a Controller (a gin group).
type Module interface {
	Mount(c *Controller)
}

// ModuleFunc lets you define a Module with a simple function.
type ModuleFunc func(c *Controller)

func (f ModuleFunc) Mount(c *Controller) { f(c) }

// Controller wraps a gin group so modules register plain handler funcs.
type Controller struct {
	Group *gin.RouterGroup
}

func (c *Controller) GET(path string, h HandlerFuncWithSession) {
	c.Group.GET(path, ResolveEndpointWithSession(h))
}

func (c *Controller) POST(path string, h HandlerFuncWithSession) {
	c.Group.POST(path, ResolveEndpointWithSession(h))
}

func (c *Controller) DELETE(path string, h HandlerFuncWithSession) {
	c.Group.DELETE(path, ResolveEndpointWithSession(h))
}

func (c *Controller) PublicGET(path string, h HandlerFunc) {
	c.Group.GET(path, ResolveEndpoint(h))
}

func (c *Controller) PublicPOST(path string, h HandlerFunc) {
	c.Group.POST(path, ResolveEndpoint(h))
}

// Stream registers a raw GET handler (websocket upgrades).
func (c *Controller) Stream(path string, h gin.HandlerFunc) {
	c.Group.GET(path, h)
}

// GroupConfig tells the api package how to mount a group.
type GroupConfig struct {
	Prefix     string
	Auth       bool
	SecretKey  string            // required if Auth == true
	Sessions   *session.Manager  // required if Auth == true
	Middleware []gin.HandlerFunc // optional additional middleware
}

// MountGroup mounts one or more Modules under a prefix with optional auth.
func MountGroup(parent gin.IRoutes, cfg GroupConfig, modules ...Module) {
	var grp *gin.RouterGroup

	switch v := parent.(type) {
	case *gin.Engine:
		grp = v.Group(cfg.Prefix)
	case *gin.RouterGroup:
		if cfg.Prefix != "" {
			grp = v.Group(cfg.Prefix)
		} else {
			grp = v
		}
	default:
		log.Fatal().Str("type", fmt.Sprintf("%T", parent)).Msg("api.MountGroup: unsupported router type")
	}

	// Apply middleware in a deterministic order.
	for _, mw := range cfg.Middleware {
		grp.Use(mw)
	}
	if cfg.Auth {
		if cfg.SecretKey == "" || cfg.Sessions == nil {
			log.Fatal().Msg("api.MountGroup: Auth enabled but SecretKey or Sessions is missing")
		}
		grp.Use(middleware.JWTMiddleware(cfg.SecretKey, cfg.Sessions))
	}

	controller := &Controller{Group: grp}

	for _, m := range modules {
		m.Mount(controller)
	}
}
