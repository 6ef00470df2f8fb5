package gamestate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/buzzin/internal/game"
)

// mutateAttempts bounds the read-modify-write retry loop on revision
// conflicts.
const mutateAttempts = 3

// corruptionSnippetLen caps how much of an unparseable blob gets logged.
const corruptionSnippetLen = 200

// Store keeps the per-room state blob in a KV bucket, one key per room.
// Saves carry the revision the blob was read at, so a concurrent writer
// fails the save instead of being silently overwritten.
type Store struct {
	kv KV

	corrupt atomic.Int64
}

func NewStore(kv KV) *Store {
	return &Store{kv: kv}
}

// Init creates or overwrites the room's state unconditionally. Only the
// game-start path uses it.
func (s *Store) Init(ctx context.Context, code string, state *game.State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal state for %s: %w", code, err)
	}
	if _, err := s.kv.Put(ctx, code, data); err != nil {
		return fmt.Errorf("put state for %s: %w", code, err)
	}
	return nil
}

// Get loads the room's state. A blob that fails to parse is
// unrecoverable for that room: it is logged, counted, and deleted, and
// the room reports no state until a fresh game start.
func (s *Store) Get(ctx context.Context, code string) (*game.State, error) {
	st, _, err := s.getWithRevision(ctx, code)
	return st, err
}

func (s *Store) getWithRevision(ctx context.Context, code string) (*game.State, uint64, error) {
	entry, err := s.kv.Get(ctx, code)
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return nil, 0, game.ErrNoState
		}
		return nil, 0, fmt.Errorf("get state for %s: %w", code, err)
	}

	var st game.State
	if err := json.Unmarshal(entry.Value(), &st); err != nil {
		snippet := entry.Value()
		if len(snippet) > corruptionSnippetLen {
			snippet = snippet[:corruptionSnippetLen]
		}
		n := s.corrupt.Add(1)
		log.Error().
			Err(err).
			Str("room", code).
			Str("blob", string(snippet)).
			Int64("corrupt_total", n).
			Msg("corrupted game state blob, deleting")
		if delErr := s.kv.Delete(ctx, code); delErr != nil {
			log.Warn().Err(delErr).Str("room", code).Msg("failed to delete corrupted state")
		}
		return nil, 0, game.ErrNoState
	}
	return &st, entry.Revision(), nil
}

// Mutate applies fn to the freshest state and saves the result with a
// revision check, retrying the whole read-modify-write when another
// writer got there first. An error from fn aborts without saving and is
// returned as is.
func (s *Store) Mutate(ctx context.Context, code string, fn func(*game.State) error) (*game.State, error) {
	var lastErr error
	for attempt := 0; attempt < mutateAttempts; attempt++ {
		st, revision, err := s.getWithRevision(ctx, code)
		if err != nil {
			return nil, err
		}
		if err := fn(st); err != nil {
			return nil, err
		}
		data, err := json.Marshal(st)
		if err != nil {
			return nil, fmt.Errorf("marshal state for %s: %w", code, err)
		}
		if _, err := s.kv.Update(ctx, code, data, revision); err != nil {
			if isWrongRevision(err) {
				lastErr = err
				continue
			}
			return nil, fmt.Errorf("save state for %s: %w", code, err)
		}
		return st, nil
	}
	return nil, fmt.Errorf("save state for %s: gave up after %d conflicts: %w", code, mutateAttempts, lastErr)
}

// Delete removes the room's state. Finished rooms normally just expire,
// so this is only for cleanup paths.
func (s *Store) Delete(ctx context.Context, code string) error {
	if err := s.kv.Delete(ctx, code); err != nil && !errors.Is(err, jetstream.ErrKeyNotFound) {
		return fmt.Errorf("delete state for %s: %w", code, err)
	}
	return nil
}

// CorruptionCount reports how many corrupted blobs this instance has
// discarded.
func (s *Store) CorruptionCount() int64 {
	return s.corrupt.Load()
}

// isWrongRevision matches the server's wrong-last-sequence rejection,
// which is how a revision conflict surfaces from Update.
func isWrongRevision(err error) bool {
	var apiErr *jetstream.APIError
	return errors.As(err, &apiErr) && apiErr.ErrorCode == jetstream.JSErrCodeStreamWrongLastSequence
}
