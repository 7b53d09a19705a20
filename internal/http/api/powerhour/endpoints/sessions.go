package endpoints

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/powerhour/internal/http/api"
	"github.com/Nixie-Tech-LLC/powerhour/internal/http/api/powerhour/packets"
	"github.com/Nixie-Tech-LLC/powerhour/internal/http/middleware"
	"github.com/Nixie-Tech-LLC/powerhour/internal/model"
	"github.com/Nixie-Tech-LLC/powerhour/internal/playback"
	"github.com/Nixie-Tech-LLC/powerhour/internal/session"
)

type SessionController struct {
	sessions *session.Manager
	secret   string
	ttl      time.Duration
}

func newSessionController(sessions *session.Manager, secret string, ttl time.Duration) *SessionController {
	return &SessionController{sessions: sessions, secret: secret, ttl: ttl}
}

// SessionPublicModule mounts session creation, which hands out the token
// the rest of the API requires.
func SessionPublicModule(sessions *session.Manager, secret string, ttl time.Duration) api.Module {
	ctl := newSessionController(sessions, secret, ttl)
	return api.ModuleFunc(func(c *api.Controller) {
		c.PublicPOST("/sessions", ctl.createSession)
	})
}

// SessionModule mounts the token-protected /sessions/:id endpoints.
func SessionModule(sessions *session.Manager) api.Module {
	ctl := newSessionController(sessions, "", 0)
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("", ctl.getSession)
		c.DELETE("", ctl.deleteSession)

		c.POST("/search", ctl.search)
		c.POST("/playlist", ctl.submitPlaylist)

		c.POST("/play", ctl.play)
		c.DELETE("/play", ctl.exit)
		c.POST("/events", ctl.playerEvent)

		c.Stream("/ws", ctl.stream)
	})
}

// mapError turns validation and session errors into API errors with the
// message the user should see. urlMode picks the pasted-link wording.
func mapError(err error, urlMode bool) *api.APIError {
	switch {
	case errors.Is(err, model.ErrSessionNotFound):
		return &api.APIError{Code: http.StatusNotFound, Message: "session not found"}
	case errors.Is(err, session.ErrUnknownCandidate):
		return &api.APIError{Code: http.StatusNotFound, Message: err.Error()}
	}

	msg := session.FailureFor(err, urlMode).Message
	switch {
	case errors.Is(err, model.ErrInvalidInput):
		return &api.APIError{Code: http.StatusBadRequest, Message: msg}
	case errors.Is(err, model.ErrNoQualifyingPlaylist):
		return &api.APIError{Code: http.StatusUnprocessableEntity, Message: msg}
	case errors.Is(err, model.ErrCatalogUnavailable):
		return &api.APIError{Code: http.StatusBadGateway, Message: msg}
	}
	return &api.APIError{Code: http.StatusInternalServerError, Message: "internal error"}
}

// ===== Handlers =====

func (p *SessionController) createSession(ctx *gin.Context) (any, *api.APIError) {
	s := p.sessions.Create()
	token, err := middleware.GenerateJWT(s.ID, p.secret, p.ttl)
	if err != nil {
		log.Error().Err(err).Str("session_id", s.ID).Msg("[sessions] create: could not sign token")
		_ = p.sessions.Delete(s.ID)
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not create session"}
	}
	return api.Created{Body: packets.SessionCreatedResponse{
		ID:        s.ID,
		Token:     token,
		ExpiresAt: time.Now().Add(p.ttl).UTC(),
	}}, nil
}

func (p *SessionController) getSession(ctx *gin.Context, s *session.Session) (any, *api.APIError) {
	return s.Snapshot(), nil
}

func (p *SessionController) deleteSession(ctx *gin.Context, s *session.Session) (any, *api.APIError) {
	if err := p.sessions.Delete(s.ID); err != nil {
		return nil, mapError(err, false)
	}
	return nil, nil
}

func (p *SessionController) search(ctx *gin.Context, s *session.Session) (any, *api.APIError) {
	var req packets.SearchRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}
	if err := s.Search(ctx.Request.Context(), req.Query); err != nil {
		return nil, mapError(err, false)
	}
	return s.Snapshot(), nil
}

func (p *SessionController) submitPlaylist(ctx *gin.Context, s *session.Session) (any, *api.APIError) {
	var req packets.SubmitPlaylistRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}
	if err := s.SubmitURL(ctx.Request.Context(), req.URL); err != nil {
		return nil, mapError(err, true)
	}
	return s.Snapshot(), nil
}

func (p *SessionController) play(ctx *gin.Context, s *session.Session) (any, *api.APIError) {
	var req packets.PlayRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}
	if err := s.Select(req.PlaylistID); err != nil {
		log.Warn().Err(err).Str("session_id", s.ID).Str("playlist_id", req.PlaylistID).Msg("[sessions] play: rejected")
		return nil, mapError(err, false)
	}
	return s.Snapshot(), nil
}

func (p *SessionController) exit(ctx *gin.Context, s *session.Session) (any, *api.APIError) {
	s.Exit()
	return s.Snapshot(), nil
}

func (p *SessionController) playerEvent(ctx *gin.Context, s *session.Session) (any, *api.APIError) {
	var req packets.PlayerEventRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}
	kind, err := playback.ParseEventKind(req.Event)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}
	advanced := s.Event(kind)
	return packets.PlayerEventResponse{Advanced: advanced, Playback: s.Snapshot().Playback}, nil
}
