package trivia

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// Repository reads trivia documents from Postgres. Question authoring
// and AI generation live in a separate service; this side only reads.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// GetTrivia returns the trivia with its ordered question list, or nil
// when no trivia exists for the id.
func (r *Repository) GetTrivia(ctx context.Context, id string) (*Trivia, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, title, questions FROM trivias WHERE id = $1`, id)

	var (
		t             Trivia
		questionsJSON []byte
	)
	if err := row.Scan(&t.ID, &t.Title, &questionsJSON); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get trivia %s: %w", id, err)
	}

	if err := json.Unmarshal(questionsJSON, &t.Questions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal questions for trivia %s: %w", id, err)
	}

	return &t, nil
}
