package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/Nixie-Tech-LLC/powerhour/internal/session"
)

// retrieves *session.Session from Gin context (after JWTMiddleware has run).
func GetCurrentSession(c *gin.Context) (*session.Session, bool) {
	s, exists := c.Get("currentSession")
	if !exists {
		return nil, false
	}
	sess, ok := s.(*session.Session)
	return sess, ok
}
