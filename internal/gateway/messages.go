package gateway

import (
	"encoding/json"
	"time"
)

// Inbound message types clients may send over the socket.
const (
	MsgGameStart   = "game:start"
	MsgButtonPress = "round:buttonPress"
	MsgAnswer      = "round:answer"
)

// ClientMessage is one inbound frame. RequestID, when present, is
// echoed back on the ack so clients can correlate.
type ClientMessage struct {
	Type      string          `json:"type"`
	RequestID string          `json:"requestId,omitempty"`
	Payload   json.RawMessage `json:"payload"`
}

type GameStartPayload struct {
	Code string `json:"code"`
}

type ButtonPressPayload struct {
	Code          string `json:"code"`
	RoundSequence int64  `json:"roundSequence"`
	EventID       string `json:"eventId,omitempty"`
}

type AnswerPayload struct {
	Code          string `json:"code"`
	RoundSequence int64  `json:"roundSequence"`
	SelectedIndex int    `json:"selectedIndex"`
	EventID       string `json:"eventId,omitempty"`
}

// AckFrame replies to exactly one inbound frame, only on the sending
// connection.
type AckFrame struct {
	Type      string `json:"type"`
	RequestID string `json:"requestId,omitempty"`
	OK        bool   `json:"ok"`
	Message   string `json:"message,omitempty"`
	Code      int    `json:"code,omitempty"`
	Correct   *bool  `json:"correct,omitempty"`
}

// RoomEvent is the outbound frame for bus-fanned game events.
type RoomEvent struct {
	Type      string          `json:"type"`
	RoomCode  string          `json:"roomCode"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}
