// Package playback steps a power hour through its clips, one per player
// event, and raises the drink cue between clips.
package playback

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/powerhour/internal/model"
)

var ErrClipCount = fmt.Errorf("a power hour needs exactly %d clips", model.ClipsPerHour)

type State int

const (
	Idle State = iota
	Playing
	Ended
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Playing:
		return "playing"
	case Ended:
		return "ended"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(b []byte) error {
	switch string(b) {
	case "idle":
		*s = Idle
	case "playing":
		*s = Playing
	case "ended":
		*s = Ended
	default:
		return fmt.Errorf("unknown playback state %q", b)
	}
	return nil
}

type EventKind int

const (
	EventReady EventKind = iota
	EventEnded
	EventError
)

func (k EventKind) String() string {
	switch k {
	case EventReady:
		return "ready"
	case EventEnded:
		return "ended"
	case EventError:
		return "error"
	}
	return fmt.Sprintf("event(%d)", int(k))
}

var ErrUnknownEvent = errors.New("unknown player event")

func ParseEventKind(s string) (EventKind, error) {
	switch s {
	case "ready":
		return EventReady, nil
	case "ended", "end":
		return EventEnded, nil
	case "error":
		return EventError, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownEvent, s)
}

// Event is one lifecycle callback from the embedded player.
type Event struct {
	Kind EventKind
}

// Snapshot is what the presentation layer renders.
type Snapshot struct {
	State     State       `json:"state"`
	Index     int         `json:"index"`
	Total     int         `json:"total"`
	Label     string      `json:"label,omitempty"`
	CueActive bool        `json:"cue_active"`
	Current   *model.Clip `json:"current,omitempty"`
}

// Sequencer is the playback state machine for one session. All transitions
// hold mu, so player commands go out in event order.
type Sequencer struct {
	mu       sync.Mutex
	player   Player
	cue      *Cue
	state    State
	index    int
	clips    []model.Clip
	onChange func()
}

// NewSequencer builds an idle sequencer. onChange, if set, is called with no
// lock held after every transition and when the cue times out.
func NewSequencer(player Player, cueWindow time.Duration, onChange func()) *Sequencer {
	s := &Sequencer{player: player, onChange: onChange}
	s.cue = NewCue(cueWindow, s.changed)
	return s
}

func (s *Sequencer) changed() {
	if s.onChange != nil {
		s.onChange()
	}
}

func (s *Sequencer) Start(clips []model.Clip) error {
	if len(clips) != model.ClipsPerHour {
		return fmt.Errorf("start with %d clips: %w", len(clips), ErrClipCount)
	}

	s.mu.Lock()
	s.clips = append([]model.Clip(nil), clips...)
	s.index = 0
	s.state = Playing
	s.mu.Unlock()

	s.cue.Clear()
	s.changed()
	return nil
}

// Handle applies one player event. It reports whether the clip pointer moved.
// Ended and error are the same transition: a broken clip just moves on.
func (s *Sequencer) Handle(ev Event) bool {
	s.mu.Lock()
	advanced := s.handleLocked(ev)
	s.mu.Unlock()

	s.changed()
	return advanced
}

func (s *Sequencer) handleLocked(ev Event) bool {
	if s.state != Playing {
		return false
	}
	if s.index >= len(s.clips) {
		if ev.Kind != EventReady {
			s.state = Ended
			log.Info().Int("index", s.index).Msg("[playback] power hour finished")
		}
		return false
	}

	clip := s.clips[s.index]
	switch ev.Kind {
	case EventReady:
		if err := s.player.Cue(clip); err != nil {
			log.Warn().Err(err).Str("video_id", clip.VideoID).Msg("[playback] cue failed")
		}
	case EventEnded, EventError:
		if ev.Kind == EventError {
			log.Debug().Int("index", s.index).Msg("[playback] player error, skipping ahead")
		}
		s.cue.Trigger()
		if err := s.player.Seek(0); err != nil {
			log.Warn().Err(err).Msg("[playback] seek failed")
		}
		if err := s.player.Load(clip); err != nil {
			log.Warn().Err(err).Str("video_id", clip.VideoID).Msg("[playback] load failed")
		}
	default:
		return false
	}
	s.index++
	return true
}

// Exit abandons the session and returns to idle. Safe in any state.
func (s *Sequencer) Exit() {
	s.mu.Lock()
	s.index = 0
	s.clips = nil
	s.state = Idle
	s.mu.Unlock()

	s.cue.Clear()
	s.changed()
}

func (s *Sequencer) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		State:     s.state,
		Index:     s.index,
		Total:     len(s.clips),
		CueActive: s.cue.Active(),
	}
	if s.index > 0 && s.index <= len(s.clips) {
		c := s.clips[s.index-1]
		snap.Current = &c
		snap.Label = fmt.Sprintf("Video %d / %d", s.index, model.ClipsPerHour)
	}
	return snap
}
