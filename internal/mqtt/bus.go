// Package mqtt mirrors each session's player onto an MQTT broker so an
// external player can follow along and report its lifecycle events.
package mqtt

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/powerhour/internal/http/api/powerhour/packets"
	"github.com/Nixie-Tech-LLC/powerhour/internal/playback"
	"github.com/Nixie-Tech-LLC/powerhour/internal/session"
)

const (
	topicPrefix    = "powerhour"
	eventsWildcard = topicPrefix + "/+/events"

	publishTimeout = 2 * time.Second
	quiesceMillis  = 250
)

var ErrPublishTimeout = errors.New("mqtt publish timed out")

func CommandsTopic(sessionID string) string { return topicPrefix + "/" + sessionID + "/commands" }
func StatusTopic(sessionID string) string   { return topicPrefix + "/" + sessionID + "/status" }
func EventsTopic(sessionID string) string   { return topicPrefix + "/" + sessionID + "/events" }

// Connect dials the broker. Handlers run unordered so a handler may publish
// without stalling the client's router.
func Connect(brokerURL, clientID string) (paho.Client, error) {
	opts := paho.NewClientOptions()
	opts.AddBroker(brokerURL)
	opts.SetClientID(clientID)
	opts.SetAutoReconnect(true)
	opts.SetOrderMatters(false)
	opts.OnConnect = func(paho.Client) {
		log.Info().Str("broker", brokerURL).Msg("[mqtt] connected")
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Warn().Err(err).Str("broker", brokerURL).Msg("[mqtt] connection lost")
	}

	client := paho.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}
	return client, nil
}

// Bus publishes commands and snapshots and routes player events back in.
type Bus struct {
	client paho.Client
	qos    byte

	mu      sync.Mutex
	watched map[string]func()
}

func NewBus(client paho.Client) *Bus {
	return &Bus{client: client, qos: 1, watched: map[string]func(){}}
}

func (b *Bus) publish(topic string, retained bool, payload []byte) error {
	token := b.client.Publish(topic, b.qos, retained, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("%w: %s", ErrPublishTimeout, topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

type commandSink struct {
	bus   *Bus
	topic string
}

func (c commandSink) Send(cmd playback.Command) error {
	payload, err := json.Marshal(cmd)
	if err != nil {
		return err
	}
	return c.bus.publish(c.topic, false, payload)
}

// Sink returns a playback sink publishing to the session's commands topic.
func (b *Bus) Sink(sessionID string) playback.Sink {
	return commandSink{bus: b, topic: CommandsTopic(sessionID)}
}

// Sinks matches session.Options.Sinks.
func (b *Bus) Sinks(sessionID string) []playback.Sink {
	return []playback.Sink{b.Sink(sessionID)}
}

// Watch publishes a retained snapshot on every session change until the
// session is deleted, then clears the retained message.
func (b *Bus) Watch(s *session.Session) {
	changes, cancel := s.Subscribe()

	b.mu.Lock()
	b.watched[s.ID] = cancel
	b.mu.Unlock()

	topic := StatusTopic(s.ID)
	go func() {
		defer func() {
			b.mu.Lock()
			delete(b.watched, s.ID)
			b.mu.Unlock()
		}()

		b.publishSnapshot(topic, s)
		for range changes {
			b.publishSnapshot(topic, s)
		}
		if err := b.publish(topic, true, nil); err != nil {
			log.Warn().Err(err).Str("session_id", s.ID).Msg("[mqtt] could not clear status")
		}
	}()
}

func (b *Bus) publishSnapshot(topic string, s *session.Session) {
	payload, err := json.Marshal(s.Snapshot())
	if err != nil {
		log.Error().Err(err).Str("session_id", s.ID).Msg("[mqtt] marshal snapshot")
		return
	}
	if err := b.publish(topic, true, payload); err != nil {
		log.Warn().Err(err).Str("session_id", s.ID).Msg("[mqtt] publish status failed")
	}
}

// Listen subscribes to every session's events topic and feeds the events
// into the matching session.
func (b *Bus) Listen(sessions *session.Manager) error {
	handler := func(_ paho.Client, msg paho.Message) {
		b.route(sessions, msg.Topic(), msg.Payload())
	}
	token := b.client.Subscribe(eventsWildcard, b.qos, handler)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("subscribe %s: timed out", eventsWildcard)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("subscribe %s: %w", eventsWildcard, err)
	}
	log.Info().Str("topic", eventsWildcard).Msg("[mqtt] listening for player events")
	return nil
}

func sessionIDFromTopic(topic string) (string, bool) {
	parts := strings.Split(topic, "/")
	if len(parts) != 3 || parts[0] != topicPrefix || parts[2] != "events" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func (b *Bus) route(sessions *session.Manager, topic string, payload []byte) {
	id, ok := sessionIDFromTopic(topic)
	if !ok {
		log.Debug().Str("topic", topic).Msg("[mqtt] ignoring message on unexpected topic")
		return
	}
	var req packets.PlayerEventRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		log.Warn().Err(err).Str("session_id", id).Msg("[mqtt] bad event payload")
		return
	}
	kind, err := playback.ParseEventKind(req.Event)
	if err != nil {
		log.Warn().Err(err).Str("session_id", id).Msg("[mqtt] bad event")
		return
	}
	s, err := sessions.Get(id)
	if err != nil {
		log.Debug().Str("session_id", id).Msg("[mqtt] event for unknown session")
		return
	}
	s.Event(kind)
}

// Close stops all watchers and disconnects from the broker.
func (b *Bus) Close() {
	b.mu.Lock()
	cancels := make([]func(), 0, len(b.watched))
	for _, cancel := range b.watched {
		cancels = append(cancels, cancel)
	}
	b.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
	if token := b.client.Unsubscribe(eventsWildcard); !token.WaitTimeout(publishTimeout) {
		log.Warn().Msg("[mqtt] unsubscribe timed out")
	}
	b.client.Disconnect(quiesceMillis)
	log.Info().Msg("[mqtt] disconnected")
}
