package timers

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/jonboulle/clockwork"
)

// JobTypeAnswerTimeout is the only durable job type today: the
// answer-window expiry that must survive crash and failover.
const JobTypeAnswerTimeout = "answerTimeout"

var jobIDUnsafe = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

// Job is one enqueued durable timer. The payload is sufficient to
// resolve the timeout on any worker process.
type Job struct {
	ID       string
	Type     string
	RoomCode string
	RoundSeq int64
	UserID   string
	DueAt    time.Time
	Attempts int
}

// JobStore persists durable jobs. Upsert is create-if-absent keyed by
// job id, so a rescheduled duplicate collapses into the existing entry.
type JobStore interface {
	Upsert(ctx context.Context, job *Job) error
	Delete(ctx context.Context, jobID string) error
	NextDueAt(ctx context.Context) (*time.Time, error)
	ClaimDue(ctx context.Context, now time.Time, limit int) ([]*Job, error)
	Reschedule(ctx context.Context, job *Job, dueAt time.Time) error
}

// Queue enqueues durable answer-timeout jobs and wakes the runner when
// a sooner deadline may have landed.
type Queue struct {
	store JobStore
	clock clockwork.Clock
	wake  func()
}

func NewQueue(store JobStore, clock clockwork.Clock, wake func()) *Queue {
	if wake == nil {
		wake = func() {}
	}
	return &Queue{store: store, clock: clock, wake: wake}
}

// ScheduleAnswerTimeout enqueues the answer-window expiry for a round.
// The job id is deterministic per room and round, so a reschedule after
// an early fire replaces rather than duplicates.
func (q *Queue) ScheduleAnswerTimeout(ctx context.Context, code string, roundSeq int64, userID string, delay time.Duration) error {
	job := &Job{
		ID:       answerTimeoutJobID(code, roundSeq),
		Type:     JobTypeAnswerTimeout,
		RoomCode: code,
		RoundSeq: roundSeq,
		UserID:   userID,
		DueAt:    q.clock.Now().Add(delay),
	}
	if err := q.store.Upsert(ctx, job); err != nil {
		return fmt.Errorf("enqueue answer timeout for %s round %d: %w", code, roundSeq, err)
	}
	q.wake()
	return nil
}

// CancelAnswerTimeout removes the pending job. Best effort: a job that
// already fired is rendered harmless by the handler's guard.
func (q *Queue) CancelAnswerTimeout(ctx context.Context, code string, roundSeq int64) error {
	if err := q.store.Delete(ctx, answerTimeoutJobID(code, roundSeq)); err != nil {
		return fmt.Errorf("cancel answer timeout for %s round %d: %w", code, roundSeq, err)
	}
	return nil
}

// Noop stands in where no queue backend is configured; answer timeouts
// then rely on clients resubmitting and the press-window fallback.
type Noop struct{}

func (Noop) ScheduleAnswerTimeout(context.Context, string, int64, string, time.Duration) error {
	return nil
}

func (Noop) CancelAnswerTimeout(context.Context, string, int64) error {
	return nil
}

func answerTimeoutJobID(code string, roundSeq int64) string {
	return fmt.Sprintf("%s-%s-%d", sanitizeJobID(code), JobTypeAnswerTimeout, roundSeq)
}

func sanitizeJobID(s string) string {
	return jobIDUnsafe.ReplaceAllString(s, "-")
}
