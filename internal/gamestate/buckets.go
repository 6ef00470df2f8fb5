package gamestate

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"
)

// Bucket names. Live state is bucket-expired; the press lock and the
// dedupe set carry per-key TTLs, which requires limit markers on the
// bucket.
const (
	StateBucket     = "game-state"
	PressLockBucket = "first-press"
	EventIDBucket   = "event-ids"

	stateTTL = 24 * time.Hour
)

// Buckets holds the three shared-store buckets the game depends on.
type Buckets struct {
	State     jetstream.KeyValue
	PressLock jetstream.KeyValue
	EventIDs  jetstream.KeyValue
}

// SetupBuckets creates or updates the game buckets. Idempotent; every
// instance runs it at startup.
func SetupBuckets(ctx context.Context, js jetstream.JetStream) (*Buckets, error) {
	state, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      StateBucket,
		Description: "Live per-room game state",
		TTL:         stateTTL,
		Storage:     jetstream.FileStorage,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s bucket: %w", StateBucket, err)
	}

	press, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:         PressLockBucket,
		Description:    "First-press arbitration locks",
		LimitMarkerTTL: time.Minute,
		Storage:        jetstream.FileStorage,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s bucket: %w", PressLockBucket, err)
	}

	events, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:         EventIDBucket,
		Description:    "Seen event ids for dedupe",
		LimitMarkerTTL: time.Minute,
		Storage:        jetstream.FileStorage,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s bucket: %w", EventIDBucket, err)
	}

	return &Buckets{State: state, PressLock: press, EventIDs: events}, nil
}
