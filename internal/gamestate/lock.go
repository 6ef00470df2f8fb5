package gamestate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"
)

// Lock arbitrates buzz-ins with a single atomic create-if-absent per
// room. The key expires after the press window, so a crashed winner
// never wedges the round. No ownership check on Reset: round lifetime
// is already serialized by the round sequence.
type Lock struct {
	kv KV
}

func NewLock(kv KV) *Lock {
	return &Lock{kv: kv}
}

// AttemptFirstPress tries to claim the round's buzz for userID. Exactly
// one concurrent caller per room gets true. This must stay one atomic
// operation; a read-then-write here would break the whole game under
// horizontal scaling.
func (l *Lock) AttemptFirstPress(ctx context.Context, code, userID string, window time.Duration) (bool, error) {
	_, err := l.kv.Create(ctx, code, []byte(userID), jetstream.KeyTTL(window))
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyExists) {
			return false, nil
		}
		return false, fmt.Errorf("acquire press lock for %s: %w", code, err)
	}
	return true, nil
}

// HolderOf returns the user holding the room's press lock, or "" when
// nobody does.
func (l *Lock) HolderOf(ctx context.Context, code string) (string, error) {
	entry, err := l.kv.Get(ctx, code)
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("read press lock for %s: %w", code, err)
	}
	return string(entry.Value()), nil
}

// Reset clears the room's press lock. Idempotent.
func (l *Lock) Reset(ctx context.Context, code string) error {
	if err := l.kv.Delete(ctx, code); err != nil && !errors.Is(err, jetstream.ErrKeyNotFound) {
		return fmt.Errorf("reset press lock for %s: %w", code, err)
	}
	return nil
}
