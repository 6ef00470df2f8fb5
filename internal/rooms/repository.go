package rooms

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// Repository reads room rosters from Postgres.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// GetRoomByCode returns the room roster, or nil when no room exists for
// the code.
func (r *Repository) GetRoomByCode(ctx context.Context, code string) (*Room, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT code, host_id, trivia_id, status, capacity, players FROM rooms WHERE code = $1`, code)

	var (
		room        Room
		playersJSON []byte
	)
	if err := row.Scan(&room.Code, &room.HostID, &room.TriviaID, &room.Status, &room.Capacity, &playersJSON); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get room %s: %w", code, err)
	}

	if err := json.Unmarshal(playersJSON, &room.Players); err != nil {
		return nil, fmt.Errorf("failed to unmarshal players for room %s: %w", code, err)
	}

	return &room, nil
}

// UpdateRoomStatus flips the room status (waiting -> in-game -> finished).
func (r *Repository) UpdateRoomStatus(ctx context.Context, code, status string) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE rooms SET status = $2, updated_at = NOW() WHERE code = $1`, code, status); err != nil {
		return fmt.Errorf("failed to update room %s status: %w", code, err)
	}
	return nil
}
