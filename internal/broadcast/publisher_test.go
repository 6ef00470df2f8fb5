package broadcast

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeJS struct {
	mu        sync.Mutex
	published []*nats.Msg
	err       error
}

func (f *fakeJS) PublishMsg(_ context.Context, msg *nats.Msg, _ ...jetstream.PublishOpt) (*jetstream.PubAck, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.published = append(f.published, msg)
	return &jetstream.PubAck{Stream: "GAME_EVENTS", Sequence: uint64(len(f.published))}, nil
}

func (f *fakeJS) msgs() []*nats.Msg {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*nats.Msg(nil), f.published...)
}

func TestPublisherBroadcastEnvelope(t *testing.T) {
	js := &fakeJS{}
	p := NewPublisher(js, DefaultStreamConfig())

	p.Broadcast(context.Background(), "ROOM1", "round:openButton", map[string]int64{"roundSequence": 2})

	msgs := js.msgs()
	require.Len(t, msgs, 1)
	assert.Equal(t, "game.events.ROOM1", msgs[0].Subject)
	assert.Equal(t, "round:openButton", msgs[0].Header.Get("Event-Type"))
	assert.Equal(t, "ROOM1", msgs[0].Header.Get("Room-Code"))

	var env Envelope
	require.NoError(t, json.Unmarshal(msgs[0].Data, &env))
	assert.Equal(t, "round:openButton", env.EventType)
	assert.Equal(t, "ROOM1", env.RoomCode)
	assert.Empty(t, env.UserID)
	assert.NotEmpty(t, env.EventID)
	assert.Equal(t, env.EventID, msgs[0].Header.Get("Event-ID"))

	var payload map[string]int64
	require.NoError(t, json.Unmarshal(env.Payload, &payload))
	assert.Equal(t, int64(2), payload["roundSequence"])
}

func TestPublisherSendToUserTargets(t *testing.T) {
	js := &fakeJS{}
	p := NewPublisher(js, DefaultStreamConfig())

	p.SendToUser(context.Background(), "ROOM1", "u1", "round:answerRequest", map[string]any{"options": []string{"a"}})

	msgs := js.msgs()
	require.Len(t, msgs, 1)

	var env Envelope
	require.NoError(t, json.Unmarshal(msgs[0].Data, &env))
	assert.Equal(t, "u1", env.UserID)
}

func TestPublisherPublishFailureDoesNotPanic(t *testing.T) {
	js := &fakeJS{err: errors.New("nats down")}
	p := NewPublisher(js, DefaultStreamConfig())

	// Fire-and-forget: a broken bus must never take down a handler.
	p.Broadcast(context.Background(), "ROOM1", "game:update", struct{}{})
	assert.Empty(t, js.msgs())
}

func TestPublisherUnmarshalablePayloadSkipped(t *testing.T) {
	js := &fakeJS{}
	p := NewPublisher(js, DefaultStreamConfig())

	p.Broadcast(context.Background(), "ROOM1", "game:update", make(chan int))
	assert.Empty(t, js.msgs())
}
