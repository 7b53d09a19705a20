package packets

import (
	"time"

	"github.com/Nixie-Tech-LLC/powerhour/internal/playback"
)

type SessionCreatedResponse struct {
	ID        string    `json:"id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type PlayerEventResponse struct {
	Advanced bool              `json:"advanced"`
	Playback playback.Snapshot `json:"playback"`
}

type HealthResponse struct {
	Status   string `json:"status"`
	Sessions int    `json:"sessions"`
}
