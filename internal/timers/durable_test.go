package timers

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memJobStore is an in-memory JobStore with the repository's
// create-if-absent and claim semantics.
type memJobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
}

func newMemJobStore() *memJobStore {
	return &memJobStore{jobs: make(map[string]*Job)}
}

func (m *memJobStore) Upsert(_ context.Context, job *Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.jobs[job.ID]; ok {
		return nil
	}
	cp := *job
	m.jobs[job.ID] = &cp
	return nil
}

func (m *memJobStore) Delete(_ context.Context, jobID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.jobs, jobID)
	return nil
}

func (m *memJobStore) NextDueAt(_ context.Context) (*time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var next *time.Time
	for _, job := range m.jobs {
		if next == nil || job.DueAt.Before(*next) {
			due := job.DueAt
			next = &due
		}
	}
	return next, nil
}

func (m *memJobStore) ClaimDue(_ context.Context, now time.Time, limit int) ([]*Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var due []*Job
	for _, job := range m.jobs {
		if !job.DueAt.After(now) {
			due = append(due, job)
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i].DueAt.Before(due[j].DueAt) })
	if len(due) > limit {
		due = due[:limit]
	}
	for _, job := range due {
		delete(m.jobs, job.ID)
	}
	return due, nil
}

func (m *memJobStore) Reschedule(_ context.Context, job *Job, dueAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *job
	cp.DueAt = dueAt
	cp.Attempts = job.Attempts + 1
	m.jobs[cp.ID] = &cp
	return nil
}

func (m *memJobStore) get(id string) *Job {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.jobs[id]
}

func TestQueueSchedulesDeterministicJobID(t *testing.T) {
	store := newMemJobStore()
	clock := clockwork.NewFakeClock()
	woken := 0
	q := NewQueue(store, clock, func() { woken++ })

	require.NoError(t, q.ScheduleAnswerTimeout(context.Background(), "ROOM1", 3, "u1", 15*time.Second))

	job := store.get("ROOM1-answerTimeout-3")
	require.NotNil(t, job)
	assert.Equal(t, JobTypeAnswerTimeout, job.Type)
	assert.Equal(t, "ROOM1", job.RoomCode)
	assert.Equal(t, int64(3), job.RoundSeq)
	assert.Equal(t, "u1", job.UserID)
	assert.Equal(t, clock.Now().Add(15*time.Second), job.DueAt)
	assert.Equal(t, 1, woken)
}

func TestQueueSanitizesJobID(t *testing.T) {
	store := newMemJobStore()
	q := NewQueue(store, clockwork.NewFakeClock(), nil)

	require.NoError(t, q.ScheduleAnswerTimeout(context.Background(), "room code!", 1, "u1", time.Second))
	assert.NotNil(t, store.get("room-code--answerTimeout-1"))
}

func TestQueueCancelRemovesJob(t *testing.T) {
	store := newMemJobStore()
	q := NewQueue(store, clockwork.NewFakeClock(), nil)
	ctx := context.Background()

	require.NoError(t, q.ScheduleAnswerTimeout(ctx, "ROOM1", 3, "u1", time.Second))
	require.NoError(t, q.CancelAnswerTimeout(ctx, "ROOM1", 3))
	assert.Nil(t, store.get("ROOM1-answerTimeout-3"))

	// Cancelling a job that already fired is a no-op.
	require.NoError(t, q.CancelAnswerTimeout(ctx, "ROOM1", 3))
}

func TestQueueDuplicateScheduleCollapses(t *testing.T) {
	store := newMemJobStore()
	clock := clockwork.NewFakeClock()
	q := NewQueue(store, clock, nil)
	ctx := context.Background()

	require.NoError(t, q.ScheduleAnswerTimeout(ctx, "ROOM1", 3, "u1", time.Second))
	first := store.get("ROOM1-answerTimeout-3").DueAt

	require.NoError(t, q.ScheduleAnswerTimeout(ctx, "ROOM1", 3, "u1", time.Minute))
	assert.Equal(t, first, store.get("ROOM1-answerTimeout-3").DueAt, "existing job wins")
}

func TestNoopSchedulerDoesNothing(t *testing.T) {
	var n Noop
	assert.NoError(t, n.ScheduleAnswerTimeout(context.Background(), "ROOM1", 1, "u1", time.Second))
	assert.NoError(t, n.CancelAnswerTimeout(context.Background(), "ROOM1", 1))
}
