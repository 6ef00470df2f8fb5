package broadcast

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog/log"
)

// StreamConfig shapes the game event stream.
type StreamConfig struct {
	StreamName      string
	SubjectPrefix   string
	MaxAge          time.Duration
	MaxMsgs         int64
	Replicas        int
	DuplicateWindow time.Duration
}

func DefaultStreamConfig() StreamConfig {
	return StreamConfig{
		StreamName:      "GAME_EVENTS",
		SubjectPrefix:   "game.events",
		MaxAge:          24 * time.Hour,
		MaxMsgs:         -1,
		Replicas:        1,
		DuplicateWindow: 2 * time.Minute,
	}
}

// publishAPI is the slice of jetstream.JetStream the publisher needs.
type publishAPI interface {
	PublishMsg(ctx context.Context, msg *nats.Msg, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error)
}

// Publisher fans game events out to every gateway instance through the
// event stream. Sends are fire-and-forget: a publish failure is logged
// and the round machine moves on, since clients resync from the next
// game:update.
type Publisher struct {
	js     publishAPI
	config StreamConfig
}

func NewPublisher(js publishAPI, cfg StreamConfig) *Publisher {
	return &Publisher{js: js, config: cfg}
}

// Broadcast publishes a room-wide event.
func (p *Publisher) Broadcast(ctx context.Context, code, event string, payload any) {
	p.publish(ctx, code, "", event, payload)
}

// SendToUser publishes an event targeted at one user's connections.
func (p *Publisher) SendToUser(ctx context.Context, code, userID, event string, payload any) {
	p.publish(ctx, code, userID, event, payload)
}

func (p *Publisher) publish(ctx context.Context, code, userID, event string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Str("room", code).Str("event", event).Msg("failed to marshal event payload")
		return
	}

	env := Envelope{
		EventID:   uuid.New().String(),
		EventType: event,
		RoomCode:  code,
		UserID:    userID,
		Timestamp: time.Now().UTC(),
		Payload:   data,
	}
	body, err := json.Marshal(env)
	if err != nil {
		log.Error().Err(err).Str("room", code).Str("event", event).Msg("failed to marshal event envelope")
		return
	}

	subject := fmt.Sprintf("%s.%s", p.config.SubjectPrefix, code)
	_, err = p.js.PublishMsg(ctx, &nats.Msg{
		Subject: subject,
		Data:    body,
		Header: nats.Header{
			"Event-Type": []string{event},
			"Room-Code":  []string{code},
			"Event-ID":   []string{env.EventID},
		},
	},
		jetstream.WithMsgID(env.EventID),
		jetstream.WithExpectStream(p.config.StreamName),
	)
	if err != nil {
		log.Error().Err(err).Str("room", code).Str("event", event).Msg("failed to publish game event")
		return
	}

	log.Debug().
		Str("subject", subject).
		Str("event", event).
		Str("room", code).
		Msg("published game event")
}

// EnsureStream creates or updates the game event stream. Idempotent.
func EnsureStream(ctx context.Context, js jetstream.JetStream, cfg StreamConfig) error {
	sc := jetstream.StreamConfig{
		Name:        cfg.StreamName,
		Description: "Game event fanout stream",
		Subjects:    []string{fmt.Sprintf("%s.>", cfg.SubjectPrefix)},
		Retention:   jetstream.LimitsPolicy,
		MaxAge:      cfg.MaxAge,
		MaxMsgs:     cfg.MaxMsgs,
		Storage:     jetstream.FileStorage,
		Replicas:    cfg.Replicas,
		Duplicates:  cfg.DuplicateWindow,
	}

	stream, err := js.Stream(ctx, cfg.StreamName)
	if err != nil {
		if _, err = js.CreateStream(ctx, sc); err != nil {
			return fmt.Errorf("create stream: %w", err)
		}
		log.Info().Str("stream", cfg.StreamName).Msg("created game event stream")
		return nil
	}

	info, err := stream.Info(ctx)
	if err != nil {
		return fmt.Errorf("get stream info: %w", err)
	}
	if !isStreamConfigEqual(info.Config, sc) {
		if _, err = js.UpdateStream(ctx, sc); err != nil {
			return fmt.Errorf("update stream: %w", err)
		}
		log.Info().Str("stream", cfg.StreamName).Msg("updated game event stream")
	}
	return nil
}

func isStreamConfigEqual(a, b jetstream.StreamConfig) bool {
	return a.Name == b.Name &&
		a.MaxAge == b.MaxAge &&
		a.MaxMsgs == b.MaxMsgs &&
		a.Replicas == b.Replicas &&
		a.Duplicates == b.Duplicates
}
