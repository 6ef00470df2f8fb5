package results

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

// Repository persists final game results in Postgres.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// ResultExists reports whether a result document already exists for the
// room.
func (r *Repository) ResultExists(ctx context.Context, roomCode string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM game_results WHERE room_code = $1)`, roomCode).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check result for room %s: %w", roomCode, err)
	}
	return exists, nil
}

// CreateResult inserts the canonical result for a room. The insert is
// idempotent on room_code; the return value reports whether this call
// actually created the document.
func (r *Repository) CreateResult(ctx context.Context, result *GameResult) (bool, error) {
	scoresJSON, err := json.Marshal(result.Scores)
	if err != nil {
		return false, fmt.Errorf("failed to marshal scores: %w", err)
	}
	playersJSON, err := json.Marshal(result.Players)
	if err != nil {
		return false, fmt.Errorf("failed to marshal players: %w", err)
	}
	var winnerJSON []byte
	if result.Winner != nil {
		winnerJSON, err = json.Marshal(result.Winner)
		if err != nil {
			return false, fmt.Errorf("failed to marshal winner: %w", err)
		}
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO game_results (room_code, trivia_id, finished_at, scores, players, winner)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (room_code) DO NOTHING`,
		result.RoomCode, result.TriviaID, result.FinishedAt, scoresJSON, playersJSON, winnerJSON)
	if err != nil {
		return false, fmt.Errorf("failed to create result for room %s: %w", result.RoomCode, err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return rows == 1, nil
}
