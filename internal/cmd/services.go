package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/buzzin/internal/broadcast"
	"github.com/mcdev12/buzzin/internal/game"
	"github.com/mcdev12/buzzin/internal/gamestate"
	"github.com/mcdev12/buzzin/internal/gateway"
	"github.com/mcdev12/buzzin/internal/results"
	"github.com/mcdev12/buzzin/internal/rooms"
	"github.com/mcdev12/buzzin/internal/timers"
	"github.com/mcdev12/buzzin/internal/trivia"
)

// Services bundles everything the server runs.
type Services struct {
	InstanceID string

	Game        *game.Service
	TimerRunner *timers.Runner
	ConnManager *gateway.ConnectionManager
	Consumer    *gateway.EventConsumer
	WSHandler   *gateway.WebSocketHandler
}

func setupServices(ctx context.Context, db *sql.DB, js jetstream.JetStream, gameCfg game.Config) (*Services, error) {
	instanceID := uuid.New().String()[:8]
	clock := clockwork.NewRealClock()

	buckets, err := gamestate.SetupBuckets(ctx, js)
	if err != nil {
		return nil, fmt.Errorf("setup shared-store buckets: %w", err)
	}

	streamCfg := broadcast.DefaultStreamConfig()
	if err := broadcast.EnsureStream(ctx, js, streamCfg); err != nil {
		return nil, fmt.Errorf("ensure event stream: %w", err)
	}
	publisher := broadcast.NewPublisher(js, streamCfg)

	store := gamestate.NewStore(buckets.State)
	lock := gamestate.NewLock(buckets.PressLock)
	dedupe := gamestate.NewDeduper(buckets.EventIDs)

	triviaRepo := trivia.NewRepository(db)
	roomRepo := rooms.NewRepository(db)
	resultRepo := results.NewRepository(db)

	local := timers.NewLocal(clock)

	// The durable queue needs Postgres; without it, answer timeouts fall
	// back to the press-window guards alone.
	var durable game.DurableScheduler
	var runner *timers.Runner
	if db != nil {
		jobStore := timers.NewRepository(db)
		runner = timers.NewRunner(jobStore, clock)
		durable = timers.NewQueue(jobStore, clock, runner.Wake)
	} else {
		log.Warn().Msg("no database configured, durable answer timeouts disabled")
		durable = timers.Noop{}
	}

	svc := game.NewService(gameCfg, game.Deps{
		Store:   store,
		Lock:    lock,
		Dedupe:  dedupe,
		Local:   local,
		Durable: durable,
		Bus:     publisher,
		Trivias: triviaRepo,
		Rooms:   roomRepo,
		Results: resultRepo,
	})
	if runner != nil {
		timers.AttachAnswerTimeouts(runner, svc)
	}

	dispatcher := gateway.NewDispatcher(svc)
	connManager := gateway.NewConnectionManager(gateway.DefaultConnectionConfig(), dispatcher)
	consumer, err := gateway.NewEventConsumer(ctx, connManager, js, gateway.DefaultConsumerConfig(instanceID))
	if err != nil {
		return nil, fmt.Errorf("setup event consumer: %w", err)
	}
	wsHandler := gateway.NewWebSocketHandler(connManager)

	return &Services{
		InstanceID:  instanceID,
		Game:        svc,
		TimerRunner: runner,
		ConnManager: connManager,
		Consumer:    consumer,
		WSHandler:   wsHandler,
	}, nil
}
