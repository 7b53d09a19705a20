package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nixie-Tech-LLC/powerhour/internal/model"
	"github.com/Nixie-Tech-LLC/powerhour/internal/playback"
	"github.com/Nixie-Tech-LLC/powerhour/internal/session"
)

type fakeToken struct{ err error }

func (t fakeToken) Wait() bool                     { return true }
func (t fakeToken) WaitTimeout(time.Duration) bool { return true }
func (t fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
func (t fakeToken) Error() error { return t.err }

type published struct {
	topic    string
	retained bool
	payload  []byte
}

type fakeClient struct {
	paho.Client

	mu           sync.Mutex
	published    []published
	handler      paho.MessageHandler
	disconnected bool
}

func (c *fakeClient) Publish(topic string, _ byte, retained bool, payload any) paho.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, _ := payload.([]byte)
	c.published = append(c.published, published{topic: topic, retained: retained, payload: b})
	return fakeToken{}
}

func (c *fakeClient) Subscribe(_ string, _ byte, h paho.MessageHandler) paho.Token {
	c.mu.Lock()
	c.handler = h
	c.mu.Unlock()
	return fakeToken{}
}

func (c *fakeClient) Unsubscribe(...string) paho.Token { return fakeToken{} }

func (c *fakeClient) Disconnect(uint) {
	c.mu.Lock()
	c.disconnected = true
	c.mu.Unlock()
}

func (c *fakeClient) on(topic string) []published {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []published
	for _, p := range c.published {
		if p.topic == topic {
			out = append(out, p)
		}
	}
	return out
}

func (c *fakeClient) deliver(topic, payload string) {
	c.mu.Lock()
	h := c.handler
	c.mu.Unlock()
	h(c, fakeMessage{topic: topic, payload: []byte(payload)})
}

type fakeMessage struct {
	paho.Message
	topic   string
	payload []byte
}

func (m fakeMessage) Topic() string   { return m.topic }
func (m fakeMessage) Payload() []byte { return m.payload }

type oneCandidate struct{ c model.Candidate }

func (v oneCandidate) Search(context.Context, string) ([]model.Candidate, error) {
	return []model.Candidate{v.c}, nil
}

func (v oneCandidate) ValidateURL(context.Context, string) (model.Candidate, error) {
	return v.c, nil
}

func testCandidate() model.Candidate {
	clips := make([]model.Clip, model.ClipsPerHour)
	for i := range clips {
		clips[i] = model.Clip{VideoID: fmt.Sprintf("v%d", i), StartSeconds: 5, EndSeconds: 65}
	}
	return model.Candidate{PlaylistSummary: model.PlaylistSummary{ID: "PL1", Title: "Hits"}, Clips: clips}
}

func setup(t *testing.T) (*fakeClient, *Bus, *session.Manager, *session.Session) {
	t.Helper()
	client := &fakeClient{}
	bus := NewBus(client)
	mgr := session.NewManager(oneCandidate{testCandidate()}, session.Options{Sinks: bus.Sinks})
	require.NoError(t, bus.Listen(mgr))

	s := mgr.Create()
	require.NoError(t, s.Search(context.Background(), "hits"))
	require.NoError(t, s.Select("PL1"))
	return client, bus, mgr, s
}

func TestSessionIDFromTopic(t *testing.T) {
	id, ok := sessionIDFromTopic("powerhour/abc/events")
	assert.True(t, ok)
	assert.Equal(t, "abc", id)

	for _, topic := range []string{"powerhour/abc/status", "other/abc/events", "powerhour//events", "powerhour/a/b/events"} {
		_, ok := sessionIDFromTopic(topic)
		assert.False(t, ok, topic)
	}
}

func TestEventsAreRoutedAndCommandsPublished(t *testing.T) {
	client, _, _, s := setup(t)

	client.deliver(EventsTopic(s.ID), `{"event":"ready"}`)
	assert.Equal(t, 1, s.Snapshot().Playback.Index)

	cmds := client.on(CommandsTopic(s.ID))
	require.Len(t, cmds, 1)
	var cmd playback.Command
	require.NoError(t, json.Unmarshal(cmds[0].payload, &cmd))
	assert.Equal(t, playback.ActionCue, cmd.Action)
	require.NotNil(t, cmd.Clip)
	assert.Equal(t, "v0", cmd.Clip.VideoID)
	assert.False(t, cmds[0].retained)

	client.deliver(EventsTopic(s.ID), `{"event":"ended"}`)
	assert.Equal(t, 2, s.Snapshot().Playback.Index)
	// seek to 0 then load the next clip
	assert.Len(t, client.on(CommandsTopic(s.ID)), 3)
}

func TestBadEventsAreIgnored(t *testing.T) {
	client, _, _, s := setup(t)

	client.deliver(EventsTopic(s.ID), `not json`)
	client.deliver(EventsTopic(s.ID), `{"event":"paused"}`)
	client.deliver(EventsTopic("missing"), `{"event":"ready"}`)
	client.deliver("powerhour/x/status", `{"event":"ready"}`)

	assert.Equal(t, 0, s.Snapshot().Playback.Index)
	assert.Empty(t, client.on(CommandsTopic(s.ID)))
}

func TestWatchPublishesRetainedStatus(t *testing.T) {
	client, bus, mgr, s := setup(t)

	bus.Watch(s)
	assert.Eventually(t, func() bool {
		return len(client.on(StatusTopic(s.ID))) > 0
	}, time.Second, 5*time.Millisecond)

	status := client.on(StatusTopic(s.ID))
	assert.True(t, status[0].retained)
	var snap session.Snapshot
	require.NoError(t, json.Unmarshal(status[0].payload, &snap))
	assert.Equal(t, s.ID, snap.ID)
	assert.Equal(t, "PL1", snap.PlaylistID)

	require.NoError(t, mgr.Delete(s.ID))
	assert.Eventually(t, func() bool {
		msgs := client.on(StatusTopic(s.ID))
		last := msgs[len(msgs)-1]
		return last.retained && len(last.payload) == 0
	}, time.Second, 5*time.Millisecond)
}

func TestCloseDisconnects(t *testing.T) {
	client, bus, _, s := setup(t)
	bus.Watch(s)
	bus.Close()

	client.mu.Lock()
	defer client.mu.Unlock()
	assert.True(t, client.disconnected)
}
