package gamestate

import (
	"context"

	"github.com/nats-io/nats.go/jetstream"
)

// KV is the slice of the JetStream key-value API this package uses.
// jetstream.KeyValue satisfies it; tests substitute an in-memory fake.
type KV interface {
	Get(ctx context.Context, key string) (jetstream.KeyValueEntry, error)
	Put(ctx context.Context, key string, value []byte) (uint64, error)
	Create(ctx context.Context, key string, value []byte, opts ...jetstream.KVCreateOpt) (uint64, error)
	Update(ctx context.Context, key string, value []byte, revision uint64) (uint64, error)
	Delete(ctx context.Context, key string, opts ...jetstream.KVDeleteOpt) error
}
