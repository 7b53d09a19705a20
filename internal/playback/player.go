package playback

import (
	"errors"
	"sync"

	"github.com/Nixie-Tech-LLC/powerhour/internal/model"
)

// Player is the embedded video player the sequencer drives.
type Player interface {
	Cue(clip model.Clip) error
	Load(clip model.Clip) error
	Seek(seconds int) error
}

type Action string

const (
	ActionCue  Action = "cue"
	ActionLoad Action = "load"
	ActionSeek Action = "seek"
)

// Command is a player instruction as it goes over the wire.
type Command struct {
	Seq     int         `json:"seq"`
	Action  Action      `json:"action"`
	Clip    *model.Clip `json:"clip,omitempty"`
	Seconds int         `json:"seconds"`
}

// Sink receives player commands (a recorder, an MQTT topic, ...).
type Sink interface {
	Send(cmd Command) error
}

type commandPlayer struct {
	mu    sync.Mutex
	seq   int
	sinks []Sink
}

// NewPlayer returns a Player that turns every call into a Command and fans
// it out to all sinks. Every sink sees every command even if one fails.
func NewPlayer(sinks ...Sink) Player {
	return &commandPlayer{sinks: sinks}
}

func (p *commandPlayer) send(cmd Command) error {
	p.mu.Lock()
	p.seq++
	cmd.Seq = p.seq
	p.mu.Unlock()

	var errs []error
	for _, s := range p.sinks {
		if err := s.Send(cmd); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (p *commandPlayer) Cue(clip model.Clip) error {
	return p.send(Command{Action: ActionCue, Clip: &clip})
}

func (p *commandPlayer) Load(clip model.Clip) error {
	return p.send(Command{Action: ActionLoad, Clip: &clip})
}

func (p *commandPlayer) Seek(seconds int) error {
	return p.send(Command{Action: ActionSeek, Seconds: seconds})
}

// Recorder keeps the most recent command so a polling client can read it.
type Recorder struct {
	mu   sync.Mutex
	last *Command
}

func (r *Recorder) Send(cmd Command) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.last = &cmd
	return nil
}

func (r *Recorder) Last() (Command, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.last == nil {
		return Command{}, false
	}
	return *r.last, true
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	r.last = nil
	r.mu.Unlock()
}
