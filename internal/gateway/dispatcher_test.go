package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/buzzin/internal/game"
)

type fakeGameService struct {
	startCalls []string
	pressCalls []int64
	ack        *game.Ack
	err        error
}

func (f *fakeGameService) StartGame(_ context.Context, code, userID string) (*game.Ack, error) {
	f.startCalls = append(f.startCalls, code+":"+userID)
	return f.ack, f.err
}

func (f *fakeGameService) HandleButtonPress(_ context.Context, code, userID string, roundSeq int64, eventID string) (*game.Ack, error) {
	f.pressCalls = append(f.pressCalls, roundSeq)
	return f.ack, f.err
}

func (f *fakeGameService) HandleAnswerSubmit(_ context.Context, code, userID string, roundSeq int64, selectedIndex int, eventID string) (*game.Ack, error) {
	return f.ack, f.err
}

func testConn() *Connection {
	return &Connection{
		ID:       "conn-1",
		UserID:   "u1",
		RoomCode: "ROOM1",
		Send:     make(chan []byte, 8),
	}
}

func readAck(t *testing.T, conn *Connection) AckFrame {
	t.Helper()
	select {
	case data := <-conn.Send:
		var ack AckFrame
		require.NoError(t, json.Unmarshal(data, &ack))
		return ack
	default:
		t.Fatal("no ack queued")
		return AckFrame{}
	}
}

func mustRaw(t *testing.T, v any) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}

func TestDispatchGameStart(t *testing.T) {
	svc := &fakeGameService{ack: &game.Ack{OK: true}}
	d := NewDispatcher(svc)
	conn := testConn()

	d.Dispatch(context.Background(), conn, &ClientMessage{
		Type:      MsgGameStart,
		RequestID: "req-1",
		Payload:   mustRaw(t, GameStartPayload{Code: "ROOM1"}),
	})

	require.Equal(t, []string{"ROOM1:u1"}, svc.startCalls)
	ack := readAck(t, conn)
	assert.True(t, ack.OK)
	assert.Equal(t, "req-1", ack.RequestID)
}

func TestDispatchButtonPressRejection(t *testing.T) {
	svc := &fakeGameService{ack: &game.Ack{OK: false, Code: game.CodeStaleRound, Message: "stale round"}}
	d := NewDispatcher(svc)
	conn := testConn()

	d.Dispatch(context.Background(), conn, &ClientMessage{
		Type:    MsgButtonPress,
		Payload: mustRaw(t, ButtonPressPayload{Code: "ROOM1", RoundSequence: 7, EventID: "evt-1"}),
	})

	require.Equal(t, []int64{7}, svc.pressCalls)
	ack := readAck(t, conn)
	assert.False(t, ack.OK)
	assert.Equal(t, game.CodeStaleRound, ack.Code)
	assert.Equal(t, "stale round", ack.Message)
}

func TestDispatchAnswerCarriesVerdict(t *testing.T) {
	correct := true
	svc := &fakeGameService{ack: &game.Ack{OK: true, Correct: &correct}}
	d := NewDispatcher(svc)
	conn := testConn()

	d.Dispatch(context.Background(), conn, &ClientMessage{
		Type:    MsgAnswer,
		Payload: mustRaw(t, AnswerPayload{Code: "ROOM1", RoundSequence: 7, SelectedIndex: 0}),
	})

	ack := readAck(t, conn)
	assert.True(t, ack.OK)
	require.NotNil(t, ack.Correct)
	assert.True(t, *ack.Correct)
}

func TestDispatchUnknownTypeNacks(t *testing.T) {
	d := NewDispatcher(&fakeGameService{})
	conn := testConn()

	d.Dispatch(context.Background(), conn, &ClientMessage{Type: "game:teleport", RequestID: "req-9"})

	ack := readAck(t, conn)
	assert.False(t, ack.OK)
	assert.Equal(t, "req-9", ack.RequestID)
	assert.Equal(t, "unknown message type", ack.Message)
}

func TestDispatchInvalidPayloadNacks(t *testing.T) {
	svc := &fakeGameService{ack: &game.Ack{OK: true}}
	d := NewDispatcher(svc)
	conn := testConn()

	d.Dispatch(context.Background(), conn, &ClientMessage{
		Type:    MsgButtonPress,
		Payload: json.RawMessage(`{bad json`),
	})

	ack := readAck(t, conn)
	assert.False(t, ack.OK)
	assert.Empty(t, svc.pressCalls)
}

func TestDispatchInternalErrorHidesDetail(t *testing.T) {
	svc := &fakeGameService{err: errors.New("pq: connection refused")}
	d := NewDispatcher(svc)
	conn := testConn()

	d.Dispatch(context.Background(), conn, &ClientMessage{
		Type:    MsgGameStart,
		Payload: mustRaw(t, GameStartPayload{Code: "ROOM1"}),
	})

	ack := readAck(t, conn)
	assert.False(t, ack.OK)
	assert.Equal(t, "internal error", ack.Message, "internal detail must not leak to clients")
}
