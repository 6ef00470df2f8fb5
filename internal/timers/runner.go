package timers

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

const (
	idlePollDuration = 5 * time.Second
	retryBackoffBase = 500 * time.Millisecond
	maxJobAttempts   = 3
)

// Handler resolves one claimed job. A returned error triggers a bounded
// exponential-backoff retry; handlers must therefore tolerate repeat
// execution.
type Handler func(ctx context.Context, job *Job) error

// Runner drains the durable job queue: it sleeps until the soonest
// deadline, claims due jobs, and fans them out over a worker pool. Any
// number of instances can run concurrently; SKIP LOCKED claiming keeps
// them from double-firing.
type Runner struct {
	store      JobStore
	clock      clockwork.Clock
	handlers   map[string]Handler
	batchSize  int
	numWorkers int
	wakeCh     chan struct{}
	instanceID string

	workCh chan *Job

	inFlight   map[string]bool
	inFlightMu sync.Mutex
}

func NewRunner(store JobStore, clock clockwork.Clock) *Runner {
	numWorkers := 10
	return &Runner{
		store:      store,
		clock:      clock,
		handlers:   make(map[string]Handler),
		batchSize:  50,
		numWorkers: numWorkers,
		wakeCh:     make(chan struct{}, 1),
		instanceID: uuid.New().String()[:8],
		workCh:     make(chan *Job, numWorkers*2),
		inFlight:   make(map[string]bool),
	}
}

// Register binds a handler to a job type. Call before Run.
func (r *Runner) Register(jobType string, h Handler) {
	r.handlers[jobType] = h
}

// Wake nudges the runner out of its sleep; call after enqueueing a job
// that may be due sooner than the current deadline.
func (r *Runner) Wake() {
	select {
	case r.wakeCh <- struct{}{}:
	default:
	}
}

// Run loops until ctx is cancelled, sleeping until the next deadline
// and firing due jobs.
func (r *Runner) Run(ctx context.Context) error {
	log.Info().Str("instance", r.instanceID).Int("workers", r.numWorkers).Msg("timer runner started")

	var wg sync.WaitGroup
	workerCtx, cancelWorkers := context.WithCancel(ctx)
	defer cancelWorkers()

	for i := 0; i < r.numWorkers; i++ {
		wg.Add(1)
		go r.worker(workerCtx, &wg, i)
	}
	defer func() {
		cancelWorkers()
		close(r.workCh)
		wg.Wait()
		log.Info().Str("instance", r.instanceID).Msg("timer runner shut down")
	}()

	timer := r.clock.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-r.wakeCh:
		default:
		}

		nextDue, err := r.store.NextDueAt(ctx)
		if err != nil {
			log.Error().Err(err).Str("instance", r.instanceID).Msg("failed to fetch next timer deadline")
			timer.Reset(time.Second)
			select {
			case <-timer.Chan():
				continue
			case <-ctx.Done():
				return nil
			}
		}

		if nextDue == nil {
			timer.Reset(idlePollDuration)
			select {
			case <-timer.Chan():
				continue
			case <-ctx.Done():
				return nil
			case <-r.wakeCh:
				continue
			}
		}

		if wait := nextDue.Sub(r.clock.Now()); wait > 0 {
			timer.Reset(wait)
			select {
			case <-timer.Chan():
			case <-ctx.Done():
				return nil
			case <-r.wakeCh:
				// A sooner deadline may have landed; re-evaluate.
				continue
			}
		}

		jobs, err := r.store.ClaimDue(ctx, r.clock.Now(), r.batchSize)
		if err != nil {
			log.Error().Err(err).Str("instance", r.instanceID).Msg("failed to claim due timer jobs")
			timer.Reset(time.Second)
			select {
			case <-timer.Chan():
				continue
			case <-ctx.Done():
				return nil
			}
		}

		for _, job := range jobs {
			r.inFlightMu.Lock()
			if r.inFlight[job.ID] {
				r.inFlightMu.Unlock()
				continue
			}
			r.inFlight[job.ID] = true
			r.inFlightMu.Unlock()

			select {
			case <-ctx.Done():
				r.inFlightMu.Lock()
				delete(r.inFlight, job.ID)
				r.inFlightMu.Unlock()
				return nil
			case r.workCh <- job:
			}
		}
	}
}

func (r *Runner) worker(ctx context.Context, wg *sync.WaitGroup, workerID int) {
	defer wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-r.workCh:
			if !ok {
				return
			}
			if err := r.handle(ctx, job); err != nil {
				log.Error().
					Err(err).
					Str("job_id", job.ID).
					Str("instance", r.instanceID).
					Int("worker_id", workerID).
					Msg("timer job failed")
				r.retry(ctx, job)
			}
			r.inFlightMu.Lock()
			delete(r.inFlight, job.ID)
			r.inFlightMu.Unlock()
		}
	}
}

func (r *Runner) handle(ctx context.Context, job *Job) error {
	h, ok := r.handlers[job.Type]
	if !ok {
		// Unknown types are dropped rather than retried forever.
		log.Warn().Str("job_id", job.ID).Str("job_type", job.Type).Msg("no handler for timer job type")
		return nil
	}
	return h(ctx, job)
}

// retry re-enqueues a failed job with exponential backoff, up to
// maxJobAttempts.
func (r *Runner) retry(ctx context.Context, job *Job) {
	if job.Attempts+1 >= maxJobAttempts {
		log.Error().
			Str("job_id", job.ID).
			Int("attempts", job.Attempts+1).
			Msg("timer job exhausted retries, dropping")
		return
	}
	backoff := retryBackoffBase * time.Duration(1<<job.Attempts)
	if err := r.store.Reschedule(ctx, job, r.clock.Now().Add(backoff)); err != nil {
		log.Error().Err(err).Str("job_id", job.ID).Msg("failed to reschedule timer job")
		return
	}
	r.Wake()
}

// AttachAnswerTimeouts registers the answer-timeout handler against a
// round service.
func AttachAnswerTimeouts(r *Runner, svc AnswerTimeoutService) {
	r.Register(JobTypeAnswerTimeout, func(ctx context.Context, job *Job) error {
		if err := svc.HandleAnswerTimeout(ctx, job.RoomCode, job.RoundSeq, job.UserID); err != nil {
			return fmt.Errorf("answer timeout for %s round %d: %w", job.RoomCode, job.RoundSeq, err)
		}
		return nil
	})
}

// AnswerTimeoutService is the slice of the game service the runner
// needs.
type AnswerTimeoutService interface {
	HandleAnswerTimeout(ctx context.Context, code string, roundSeq int64, userID string) error
}
