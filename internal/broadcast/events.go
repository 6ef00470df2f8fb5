package broadcast

import (
	"encoding/json"
	"time"
)

// Envelope is the wire frame for one game event on the bus. UserID is
// set only for targeted sends; gateways deliver those to that user's
// connections alone.
type Envelope struct {
	EventID   string          `json:"eventId"`
	EventType string          `json:"eventType"`
	RoomCode  string          `json:"roomCode"`
	UserID    string          `json:"userId,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}
