package gateway

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/buzzin/internal/game"
)

// GameService is the slice of the round service the gateway drives.
type GameService interface {
	StartGame(ctx context.Context, code, userID string) (*game.Ack, error)
	HandleButtonPress(ctx context.Context, code, userID string, roundSeq int64, eventID string) (*game.Ack, error)
	HandleAnswerSubmit(ctx context.Context, code, userID string, roundSeq int64, selectedIndex int, eventID string) (*game.Ack, error)
}

// Dispatcher routes inbound client frames to the game service and acks
// the sender. Internal failures never leak detail to the client.
type Dispatcher struct {
	game GameService
}

func NewDispatcher(game GameService) *Dispatcher {
	return &Dispatcher{game: game}
}

func (d *Dispatcher) Dispatch(ctx context.Context, conn *Connection, msg *ClientMessage) {
	var (
		ack *game.Ack
		err error
	)

	switch msg.Type {
	case MsgGameStart:
		var p GameStartPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			conn.sendAck(AckFrame{Type: "ack", RequestID: msg.RequestID, OK: false, Message: "invalid payload"})
			return
		}
		ack, err = d.game.StartGame(ctx, p.Code, conn.UserID)

	case MsgButtonPress:
		var p ButtonPressPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			conn.sendAck(AckFrame{Type: "ack", RequestID: msg.RequestID, OK: false, Message: "invalid payload"})
			return
		}
		ack, err = d.game.HandleButtonPress(ctx, p.Code, conn.UserID, p.RoundSequence, p.EventID)

	case MsgAnswer:
		var p AnswerPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			conn.sendAck(AckFrame{Type: "ack", RequestID: msg.RequestID, OK: false, Message: "invalid payload"})
			return
		}
		ack, err = d.game.HandleAnswerSubmit(ctx, p.Code, conn.UserID, p.RoundSequence, p.SelectedIndex, p.EventID)

	default:
		log.Debug().
			Str("connection_id", conn.ID).
			Str("type", msg.Type).
			Msg("unknown client message type")
		conn.sendAck(AckFrame{Type: "ack", RequestID: msg.RequestID, OK: false, Message: "unknown message type"})
		return
	}

	if err != nil {
		log.Error().
			Err(err).
			Str("connection_id", conn.ID).
			Str("type", msg.Type).
			Msg("game handler failed")
		conn.sendAck(AckFrame{Type: "ack", RequestID: msg.RequestID, OK: false, Message: "internal error"})
		return
	}

	conn.sendAck(AckFrame{
		Type:      "ack",
		RequestID: msg.RequestID,
		OK:        ack.OK,
		Message:   ack.Message,
		Code:      ack.Code,
		Correct:   ack.Correct,
	})
}
