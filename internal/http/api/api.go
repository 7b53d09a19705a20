package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Nixie-Tech-LLC/powerhour/internal/http/middleware"
	"github.com/Nixie-Tech-LLC/powerhour/internal/session"
)

type APIError struct {
	Code    int
	Message string
}

// Created marks a handler result that should be answered with 201.
type Created struct {
	Body any
}

type HandlerFuncWithSession func(ctx *gin.Context, s *session.Session) (any, *APIError)
type HandlerFunc func(ctx *gin.Context) (any, *APIError)

func respond(ctx *gin.Context, result any, apiErr *APIError) {
	if apiErr != nil {
		ctx.JSON(apiErr.Code, gin.H{"error": apiErr.Message})
		return
	}
	if c, ok := result.(Created); ok {
		ctx.JSON(http.StatusCreated, c.Body)
		return
	}
	if result == nil {
		ctx.Status(http.StatusNoContent)
		return
	}
	ctx.JSON(http.StatusOK, result)
}

func ResolveEndpointWithSession(h HandlerFuncWithSession) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		s, ok := middleware.GetCurrentSession(ctx)
		if !ok {
			ctx.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		result, apiErr := h(ctx, s)
		respond(ctx, result, apiErr)
	}
}

func ResolveEndpoint(h HandlerFunc) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		result, apiErr := h(ctx)
		respond(ctx, result, apiErr)
	}
}
