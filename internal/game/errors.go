package game

import "errors"

// Sentinel errors shared between the service and the state store.
var (
	// ErrNoState means no (valid) state blob exists for the room. A
	// corrupted blob is reported the same way after the store has
	// deleted it.
	ErrNoState = errors.New("no game state")

	// ErrStaleRound aborts a state mutation whose round sequence no
	// longer matches the live state. Returned from mutation closures;
	// callers treat it as a silent no-op.
	ErrStaleRound = errors.New("stale round sequence")
)

// Ack codes for authorization-style rejections. Plain validation
// failures carry a message only.
const (
	CodeNotResponder = 4401
	CodeBlocked      = 4403
	CodeNotFound     = 4404
	CodeStaleRound   = 4409
)

// Ack is the per-caller reply to an inbound game message. Rejections
// travel here and are never broadcast.
type Ack struct {
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
	Correct *bool  `json:"correct,omitempty"`
}

func reject(code int, message string) *Ack {
	return &Ack{OK: false, Code: code, Message: message}
}

func accepted(message string) *Ack {
	return &Ack{OK: true, Message: message}
}
