package playback

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nixie-Tech-LLC/powerhour/internal/model"
)

type call struct {
	action Action
	video  string
	secs   int
}

type fakePlayer struct {
	mu    sync.Mutex
	calls []call
	err   error
}

func (p *fakePlayer) record(c call) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, c)
	return p.err
}

func (p *fakePlayer) Cue(c model.Clip) error  { return p.record(call{ActionCue, c.VideoID, c.StartSeconds}) }
func (p *fakePlayer) Load(c model.Clip) error { return p.record(call{ActionLoad, c.VideoID, c.StartSeconds}) }
func (p *fakePlayer) Seek(s int) error        { return p.record(call{action: ActionSeek, secs: s}) }

func hourOfClips() []model.Clip {
	clips := make([]model.Clip, model.ClipsPerHour)
	for i := range clips {
		clips[i] = model.Clip{VideoID: fmt.Sprintf("v%02d", i), StartSeconds: i, EndSeconds: i + 60}
	}
	return clips
}

func TestStartRequiresSixtyClips(t *testing.T) {
	s := NewSequencer(&fakePlayer{}, time.Second, nil)
	err := s.Start(hourOfClips()[:59])
	assert.ErrorIs(t, err, ErrClipCount)
	assert.Equal(t, Idle, s.Snapshot().State)
}

func TestSixtyEndedEventsFinishTheHour(t *testing.T) {
	p := &fakePlayer{}
	s := NewSequencer(p, time.Second, nil)
	require.NoError(t, s.Start(hourOfClips()))

	for i := 0; i < 60; i++ {
		assert.True(t, s.Handle(Event{Kind: EventEnded}), "event %d", i)
		assert.Equal(t, i+1, s.Snapshot().Index)
	}
	assert.Len(t, p.calls, 120)

	assert.False(t, s.Handle(Event{Kind: EventEnded}))
	snap := s.Snapshot()
	assert.Equal(t, 60, snap.Index)
	assert.Equal(t, Ended, snap.State)
	assert.Equal(t, "Video 60 / 60", snap.Label)
	assert.Equal(t, "v59", snap.Current.VideoID)
	assert.Len(t, p.calls, 120)

	assert.False(t, s.Handle(Event{Kind: EventError}))
	assert.Equal(t, 60, s.Snapshot().Index)
}

func TestReadyCuesFirstClipAndAdvances(t *testing.T) {
	p := &fakePlayer{}
	s := NewSequencer(p, time.Second, nil)
	require.NoError(t, s.Start(hourOfClips()))

	assert.True(t, s.Handle(Event{Kind: EventReady}))
	snap := s.Snapshot()
	assert.Equal(t, 1, snap.Index)
	assert.False(t, snap.CueActive)
	assert.Equal(t, []call{{ActionCue, "v00", 0}}, p.calls)

	assert.True(t, s.Handle(Event{Kind: EventEnded}))
	snap = s.Snapshot()
	assert.Equal(t, 2, snap.Index)
	assert.True(t, snap.CueActive)
	assert.Equal(t, "Video 2 / 60", snap.Label)
	assert.Equal(t, []call{
		{ActionCue, "v00", 0},
		{action: ActionSeek, secs: 0},
		{ActionLoad, "v01", 1},
	}, p.calls)
}

func TestErrorIsTreatedAsEnded(t *testing.T) {
	p := &fakePlayer{err: errors.New("player gone")}
	s := NewSequencer(p, time.Second, nil)
	require.NoError(t, s.Start(hourOfClips()))

	s.Handle(Event{Kind: EventReady})
	assert.True(t, s.Handle(Event{Kind: EventError}))
	assert.Equal(t, 2, s.Snapshot().Index)
	assert.True(t, s.Snapshot().CueActive)
}

func TestEventsBeforeStartAreIgnored(t *testing.T) {
	p := &fakePlayer{}
	s := NewSequencer(p, time.Second, nil)

	assert.False(t, s.Handle(Event{Kind: EventReady}))
	assert.False(t, s.Handle(Event{Kind: EventEnded}))
	assert.Empty(t, p.calls)
	assert.Equal(t, Idle, s.Snapshot().State)
}

func TestExitResets(t *testing.T) {
	s := NewSequencer(&fakePlayer{}, time.Second, nil)
	require.NoError(t, s.Start(hourOfClips()))
	s.Handle(Event{Kind: EventReady})
	s.Handle(Event{Kind: EventEnded})

	s.Exit()
	snap := s.Snapshot()
	assert.Equal(t, Idle, snap.State)
	assert.Zero(t, snap.Index)
	assert.Zero(t, snap.Total)
	assert.False(t, snap.CueActive)
	assert.Nil(t, snap.Current)

	s.Exit()
	assert.False(t, s.Handle(Event{Kind: EventEnded}))
}

func TestOnChangeCalledWithoutLocks(t *testing.T) {
	var s *Sequencer
	var snaps []Snapshot
	s = NewSequencer(&fakePlayer{}, time.Second, func() {
		snaps = append(snaps, s.Snapshot())
	})
	require.NoError(t, s.Start(hourOfClips()))
	s.Handle(Event{Kind: EventReady})
	s.Exit()

	require.Len(t, snaps, 3)
	assert.Equal(t, Playing, snaps[0].State)
	assert.Equal(t, 1, snaps[1].Index)
	assert.Equal(t, Idle, snaps[2].State)
}

func TestParseEventKind(t *testing.T) {
	for in, want := range map[string]EventKind{"ready": EventReady, "ended": EventEnded, "end": EventEnded, "error": EventError} {
		got, err := ParseEventKind(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseEventKind("paused")
	assert.ErrorIs(t, err, ErrUnknownEvent)
}

func TestCommandPlayerFansOut(t *testing.T) {
	a, b := &Recorder{}, &Recorder{}
	p := NewPlayer(a, b)

	require.NoError(t, p.Cue(model.Clip{VideoID: "x", StartSeconds: 5, EndSeconds: 65}))
	require.NoError(t, p.Seek(0))

	for _, r := range []*Recorder{a, b} {
		last, ok := r.Last()
		require.True(t, ok)
		assert.Equal(t, 2, last.Seq)
		assert.Equal(t, ActionSeek, last.Action)
	}

	a.Reset()
	_, ok := a.Last()
	assert.False(t, ok)
}

func TestSnapshotStateTravelsAsText(t *testing.T) {
	s := NewSequencer(&fakePlayer{}, time.Second, nil)
	require.NoError(t, s.Start(hourOfClips()))

	b, err := json.Marshal(s.Snapshot())
	require.NoError(t, err)
	assert.Contains(t, string(b), `"state":"playing"`)

	var back Snapshot
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, Playing, back.State)

	assert.Error(t, json.Unmarshal([]byte(`{"state":"paused"}`), &back))
}
