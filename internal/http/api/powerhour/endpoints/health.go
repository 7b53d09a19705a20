package endpoints

import (
	"github.com/gin-gonic/gin"

	"github.com/Nixie-Tech-LLC/powerhour/internal/http/api"
	"github.com/Nixie-Tech-LLC/powerhour/internal/http/api/powerhour/packets"
	"github.com/Nixie-Tech-LLC/powerhour/internal/session"
)

func HealthModule(sessions *session.Manager) api.Module {
	return api.ModuleFunc(func(c *api.Controller) {
		c.PublicGET("/health", func(ctx *gin.Context) (any, *api.APIError) {
			return packets.HealthResponse{Status: "ok", Sessions: sessions.Len()}, nil
		})
	})
}
