// Package session owns each user's search results and power hour, and is
// the only writer of that state.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/powerhour/internal/model"
	"github.com/Nixie-Tech-LLC/powerhour/internal/playback"
)

const DefaultTTL = 3 * time.Hour

type Options struct {
	CueWindow time.Duration
	TTL       time.Duration
	// Sinks returns extra player sinks for a new session (e.g. MQTT).
	Sinks func(sessionID string) []playback.Sink
	// OnCreate is called for every new session, after it is registered.
	OnCreate func(*Session)
}

type Manager struct {
	validator Validator
	opts      Options
	now       func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewManager(v Validator, opts Options) *Manager {
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	return &Manager{
		validator: v,
		opts:      opts,
		now:       time.Now,
		sessions:  map[string]*Session{},
	}
}

func (m *Manager) Create() *Session {
	id := uuid.NewString()
	var sinks []playback.Sink
	if m.opts.Sinks != nil {
		sinks = m.opts.Sinks(id)
	}
	s := newSession(id, m.validator, m.opts.CueWindow, sinks, m.now)

	m.mu.Lock()
	m.sessions[id] = s
	total := len(m.sessions)
	m.mu.Unlock()

	if m.opts.OnCreate != nil {
		m.opts.OnCreate(s)
	}
	log.Info().Str("session_id", id).Int("sessions", total).Msg("[session] created")
	return s
}

func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, model.ErrSessionNotFound
	}
	return s, nil
}

func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return model.ErrSessionNotFound
	}
	s.close()
	log.Info().Str("session_id", id).Msg("[session] deleted")
	return nil
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sweep drops sessions untouched for longer than the TTL.
func (m *Manager) Sweep() int {
	cutoff := m.now().Add(-m.opts.TTL)

	m.mu.Lock()
	var expired []*Session
	for id, s := range m.sessions {
		if s.lastTouched().Before(cutoff) {
			expired = append(expired, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, s := range expired {
		s.close()
	}
	if len(expired) > 0 {
		log.Info().Int("expired", len(expired)).Msg("[session] swept idle sessions")
	}
	return len(expired)
}

// RunJanitor sweeps on every tick until ctx is done.
func (m *Manager) RunJanitor(ctx context.Context, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			m.Sweep()
		}
	}
}
