package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/powerhour/internal/model"
	"github.com/Nixie-Tech-LLC/powerhour/internal/playback"
)

var ErrUnknownCandidate = errors.New("playlist is not among the validated candidates")

// Validator is the part of the playlist validator a session drives.
type Validator interface {
	Search(ctx context.Context, query string) ([]model.Candidate, error)
	ValidateURL(ctx context.Context, rawURL string) (model.Candidate, error)
}

const (
	KindInvalidInput         = "invalid_input"
	KindCatalogUnavailable   = "catalog_unavailable"
	KindNoQualifyingPlaylist = "no_qualifying_playlist"
	KindInternal             = "internal"
)

// Failure is the error shown to the user after a search or URL submission.
type Failure struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// FailureFor maps a lookup error to the kind and message shown to the user.
// urlMode selects the wording for a pasted playlist link.
func FailureFor(err error, urlMode bool) *Failure {
	switch {
	case errors.Is(err, model.ErrInvalidInput):
		return &Failure{KindInvalidInput, "The url you entered doesn't seem to be a valid YouTube playlist."}
	case errors.Is(err, model.ErrNoQualifyingPlaylist) && urlMode:
		return &Failure{KindNoQualifyingPlaylist, "This playlist doesn't have at least 60 one-minute videos."}
	case errors.Is(err, model.ErrNoQualifyingPlaylist):
		return &Failure{KindNoQualifyingPlaylist, "No playlist with at least 60 one-minute videos was found."}
	case errors.Is(err, model.ErrCatalogUnavailable):
		return &Failure{KindCatalogUnavailable, "YouTube could not be reached. Please try again."}
	}
	return &Failure{KindInternal, "Something went wrong. Please try again."}
}

// Snapshot is everything a client needs to render the session.
type Snapshot struct {
	ID         string            `json:"id"`
	Query      string            `json:"query,omitempty"`
	Loading    bool              `json:"loading"`
	Error      *Failure          `json:"error,omitempty"`
	Candidates []model.Candidate `json:"candidates"`
	PlaylistID string            `json:"playlist_id,omitempty"`
	Playback   playback.Snapshot `json:"playback"`
	Command    *playback.Command `json:"command,omitempty"`
}

// Session is one user's search results and power hour. Search state is
// guarded by mu; playback state lives in the sequencer, which has its own
// lock. mu is never held while calling into the sequencer or validator.
type Session struct {
	ID string

	validator Validator
	seq       *playback.Sequencer
	recorder  *playback.Recorder

	mu         sync.Mutex
	query      string
	loading    bool
	failure    *Failure
	candidates []model.Candidate
	playlistID string
	generation uint64
	touched    time.Time
	now        func() time.Time

	subsMu sync.Mutex
	subs   map[chan struct{}]struct{}
	closed bool
}

func newSession(id string, v Validator, cueWindow time.Duration, sinks []playback.Sink, now func() time.Time) *Session {
	s := &Session{
		ID:        id,
		validator: v,
		recorder:  &playback.Recorder{},
		subs:      map[chan struct{}]struct{}{},
		now:       now,
		touched:   now(),
	}
	s.seq = playback.NewSequencer(playback.NewPlayer(append([]playback.Sink{s.recorder}, sinks...)...), cueWindow, s.notify)
	return s
}

// begin resets the session for a new lookup and returns its generation.
func (s *Session) begin(query string) uint64 {
	s.mu.Lock()
	s.generation++
	gen := s.generation
	s.query = query
	s.loading = true
	s.failure = nil
	s.candidates = nil
	s.playlistID = ""
	s.touched = s.now()
	s.mu.Unlock()

	s.seq.Exit()
	s.recorder.Reset()
	return gen
}

// finish stores a lookup result unless a newer lookup has started since.
func (s *Session) finish(gen uint64, candidates []model.Candidate, err error, urlMode bool) error {
	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		log.Debug().Str("session_id", s.ID).Msg("[session] dropping stale result")
		return err
	}
	s.loading = false
	if err != nil {
		s.failure = FailureFor(err, urlMode)
	} else {
		s.candidates = candidates
	}
	s.mu.Unlock()

	s.notify()
	return err
}

// Search validates the catalog's playlists for query. Last write wins when
// searches overlap.
func (s *Session) Search(ctx context.Context, query string) error {
	gen := s.begin(query)
	s.notify()

	candidates, err := s.validator.Search(ctx, query)
	if err != nil {
		log.Warn().Err(err).Str("session_id", s.ID).Str("query", query).Msg("[session] search failed")
	}
	return s.finish(gen, candidates, err, false)
}

func (s *Session) SubmitURL(ctx context.Context, rawURL string) error {
	gen := s.begin(rawURL)
	s.notify()

	c, err := s.validator.ValidateURL(ctx, rawURL)
	if err != nil {
		log.Warn().Err(err).Str("session_id", s.ID).Str("url", rawURL).Msg("[session] playlist url rejected")
		return s.finish(gen, nil, err, true)
	}
	return s.finish(gen, []model.Candidate{c}, nil, true)
}

// Select starts playback of a validated candidate.
func (s *Session) Select(playlistID string) error {
	s.mu.Lock()
	var clips []model.Clip
	for _, c := range s.candidates {
		if c.ID == playlistID && c.Valid() {
			clips = c.Clips
			break
		}
	}
	if clips == nil {
		s.mu.Unlock()
		return ErrUnknownCandidate
	}
	s.playlistID = playlistID
	s.touched = s.now()
	s.mu.Unlock()

	s.recorder.Reset()
	if err := s.seq.Start(clips); err != nil {
		return err
	}
	log.Info().Str("session_id", s.ID).Str("playlist_id", playlistID).Msg("[session] power hour started")
	return nil
}

// Event delivers a player lifecycle event to the sequencer.
func (s *Session) Event(kind playback.EventKind) bool {
	s.mu.Lock()
	s.touched = s.now()
	s.mu.Unlock()
	return s.seq.Handle(playback.Event{Kind: kind})
}

// Exit stops playback and keeps the search results.
func (s *Session) Exit() {
	s.mu.Lock()
	s.playlistID = ""
	s.touched = s.now()
	s.mu.Unlock()

	s.seq.Exit()
	s.recorder.Reset()
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	snap := Snapshot{
		ID:         s.ID,
		Query:      s.query,
		Loading:    s.loading,
		Error:      s.failure,
		Candidates: s.candidates,
		PlaylistID: s.playlistID,
	}
	s.mu.Unlock()

	if snap.Candidates == nil {
		snap.Candidates = []model.Candidate{}
	}
	snap.Playback = s.seq.Snapshot()
	if cmd, ok := s.recorder.Last(); ok {
		snap.Command = &cmd
	}
	return snap
}

// Subscribe returns a channel that receives a signal after every change.
// Signals coalesce; read Snapshot after each one. The channel is closed
// when the session is deleted.
func (s *Session) Subscribe() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)
	s.subsMu.Lock()
	if s.closed {
		close(ch)
	} else {
		s.subs[ch] = struct{}{}
	}
	s.subsMu.Unlock()

	cancel := func() {
		s.subsMu.Lock()
		if _, ok := s.subs[ch]; ok {
			delete(s.subs, ch)
			close(ch)
		}
		s.subsMu.Unlock()
	}
	return ch, cancel
}

func (s *Session) notify() {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	for ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func (s *Session) lastTouched() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.touched
}

func (s *Session) close() {
	s.seq.Exit()

	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	s.closed = true
	for ch := range s.subs {
		close(ch)
		delete(s.subs, ch)
	}
}
