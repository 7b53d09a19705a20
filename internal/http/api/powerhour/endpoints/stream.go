package endpoints

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/powerhour/internal/http/api/powerhour/packets"
	"github.com/Nixie-Tech-LLC/powerhour/internal/http/middleware"
	"github.com/Nixie-Tech-LLC/powerhour/internal/playback"
)

const writeWait = 5 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// stream pushes a session snapshot on every change. Players may also send
// {"event":"ended"} frames instead of POSTing to /events.
func (p *SessionController) stream(c *gin.Context) {
	s, ok := middleware.GetCurrentSession(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn().Err(err).Str("session_id", s.ID).Msg("[stream] websocket upgrade failed")
		return
	}
	defer conn.Close()

	changes, cancel := s.Subscribe()
	defer cancel()

	log.Debug().Str("session_id", s.ID).Msg("[stream] websocket connected")
	defer log.Debug().Str("session_id", s.ID).Msg("[stream] websocket disconnected")

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			var req packets.PlayerEventRequest
			if err := conn.ReadJSON(&req); err != nil {
				return
			}
			kind, err := playback.ParseEventKind(req.Event)
			if err != nil {
				log.Debug().Err(err).Str("session_id", s.ID).Msg("[stream] ignoring frame")
				continue
			}
			s.Event(kind)
		}
	}()

	send := func() bool {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		return conn.WriteJSON(s.Snapshot()) == nil
	}
	if !send() {
		return
	}
	for {
		select {
		case <-closed:
			return
		case _, ok := <-changes:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session closed"),
					time.Now().Add(writeWait))
				return
			}
			if !send() {
				return
			}
		}
	}
}
