package main

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/Nixie-Tech-LLC/powerhour/internal/config"
	"github.com/Nixie-Tech-LLC/powerhour/internal/http/api"
	"github.com/Nixie-Tech-LLC/powerhour/internal/http/api/powerhour/endpoints"
	"github.com/Nixie-Tech-LLC/powerhour/internal/http/middleware"
	"github.com/Nixie-Tech-LLC/powerhour/internal/session"
)

// RegisterRoutes sets up all application routes
func RegisterRoutes(r *gin.Engine, cfg *config.Config, sessions *session.Manager) {
	r.Use(gin.Recovery(), middleware.RequestLogger())

	// CORS
	r.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool { return true },
		AllowMethods: []string{
			"GET",
			"POST",
			"DELETE",
			"OPTIONS",
			"HEAD",
		},
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Authorization",
			"Accept",
		},
		ExposeHeaders: []string{
			"Content-Length",
		},
		AllowCredentials: false,
	}))

	api.MountGroup(r, api.GroupConfig{},
		endpoints.HealthModule(sessions),
	)

	api.MountGroup(r, api.GroupConfig{
		Prefix: "/api",
	},
		endpoints.SessionPublicModule(sessions, cfg.SessionSecret, cfg.SessionTTL),
	)

	api.MountGroup(r, api.GroupConfig{
		Prefix:    "/api/sessions/:id",
		Auth:      true,
		SecretKey: cfg.SessionSecret,
		Sessions:  sessions,
	},
		endpoints.SessionModule(sessions),
	)
}
