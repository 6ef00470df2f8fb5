package timers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Repository persists durable timer jobs in Postgres. Claiming deletes
// the due rows under SKIP LOCKED, so concurrent runner instances never
// double-claim a job; a worker that dies mid-job loses it, which the
// handler-side guards tolerate.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Upsert(ctx context.Context, job *Job) error {
	query := `
		INSERT INTO timer_jobs (id, job_type, room_code, round_seq, user_id, due_at, attempts)
		VALUES ($1, $2, $3, $4, $5, $6, 0)
		ON CONFLICT (id) DO NOTHING`
	if _, err := r.db.ExecContext(ctx, query, job.ID, job.Type, job.RoomCode, job.RoundSeq, job.UserID, job.DueAt); err != nil {
		return fmt.Errorf("failed to upsert timer job %s: %w", job.ID, err)
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, jobID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM timer_jobs WHERE id = $1`, jobID); err != nil {
		return fmt.Errorf("failed to delete timer job %s: %w", jobID, err)
	}
	return nil
}

// NextDueAt returns the soonest deadline across all pending jobs, or
// nil when the queue is empty.
func (r *Repository) NextDueAt(ctx context.Context) (*time.Time, error) {
	var dueAt time.Time
	err := r.db.QueryRowContext(ctx, `SELECT due_at FROM timer_jobs ORDER BY due_at ASC LIMIT 1`).Scan(&dueAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch next due timer: %w", err)
	}
	return &dueAt, nil
}

// ClaimDue atomically removes and returns up to limit jobs whose
// deadline has passed.
func (r *Repository) ClaimDue(ctx context.Context, now time.Time, limit int) ([]*Job, error) {
	query := `
		DELETE FROM timer_jobs
		WHERE id IN (
			SELECT id FROM timer_jobs
			WHERE due_at <= $1
			ORDER BY due_at ASC
			LIMIT $2
			FOR UPDATE SKIP LOCKED
		)
		RETURNING id, job_type, room_code, round_seq, user_id, due_at, attempts`
	rows, err := r.db.QueryContext(ctx, query, now, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to claim due timer jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*Job
	for rows.Next() {
		var job Job
		if err := rows.Scan(&job.ID, &job.Type, &job.RoomCode, &job.RoundSeq, &job.UserID, &job.DueAt, &job.Attempts); err != nil {
			return nil, fmt.Errorf("failed to scan timer job: %w", err)
		}
		jobs = append(jobs, &job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate timer jobs: %w", err)
	}
	return jobs, nil
}

// Reschedule re-inserts a claimed job with a new deadline and a bumped
// attempt count.
func (r *Repository) Reschedule(ctx context.Context, job *Job, dueAt time.Time) error {
	query := `
		INSERT INTO timer_jobs (id, job_type, room_code, round_seq, user_id, due_at, attempts)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET due_at = EXCLUDED.due_at, attempts = EXCLUDED.attempts`
	if _, err := r.db.ExecContext(ctx, query, job.ID, job.Type, job.RoomCode, job.RoundSeq, job.UserID, dueAt, job.Attempts+1); err != nil {
		return fmt.Errorf("failed to reschedule timer job %s: %w", job.ID, err)
	}
	return nil
}
