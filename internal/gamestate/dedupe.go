package gamestate

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog/log"
)

var keyUnsafe = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

// Deduper remembers recently seen event ids per room, one expiring key
// per id. Callers opt in by sending an event id; an empty id always
// counts as a first occurrence.
type Deduper struct {
	kv KV
}

func NewDeduper(kv KV) *Deduper {
	return &Deduper{kv: kv}
}

// FirstOccurrence records eventID for the room and reports whether it
// was new. Dedupe is protection, not correctness: an unreachable store
// logs and lets the event through rather than failing the handler.
func (d *Deduper) FirstOccurrence(ctx context.Context, code, eventID string, ttl time.Duration) (bool, error) {
	if eventID == "" {
		return true, nil
	}
	key := fmt.Sprintf("%s.%s", sanitizeKey(code), sanitizeKey(eventID))
	_, err := d.kv.Create(ctx, key, []byte{1}, jetstream.KeyTTL(ttl))
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyExists) {
			return false, nil
		}
		log.Warn().Err(err).Str("room", code).Str("event_id", eventID).Msg("dedupe store unavailable")
		return true, nil
	}
	return true, nil
}

func sanitizeKey(s string) string {
	return keyUnsafe.ReplaceAllString(s, "-")
}
