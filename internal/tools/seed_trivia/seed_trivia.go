package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mcdev12/buzzin/internal/dbconfig"
)

// SeedTrivia mirrors the JSON snapshot layout. The last question of
// each set is reserved as the tie breaker.
type SeedTrivia struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Questions []struct {
		Question      string   `json:"question"`
		Options       []string `json:"options"`
		CorrectAnswer string   `json:"correctAnswer"`
	} `json:"questions"`
}

func main() {
	// 1) Load the JSON snapshot
	path := "internal/assets/trivias.json"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read JSON: %v\n", err)
		os.Exit(1)
	}
	var trivias []SeedTrivia
	if err := json.Unmarshal(data, &trivias); err != nil {
		fmt.Fprintf(os.Stderr, "unmarshal JSON: %v\n", err)
		os.Exit(1)
	}

	// 2) Connect using shared dbconfig
	cfg := dbconfig.NewConfigFromEnv()
	pool, err := pgxpool.New(context.Background(), cfg.DSN())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	// 3) Upsert and count
	var (
		total    = len(trivias)
		inserted int
		skipped  int
		errs     int
	)

	for _, t := range trivias {
		questions, err := json.Marshal(t.Questions)
		if err != nil {
			fmt.Fprintf(os.Stderr, "marshal questions for %s: %v\n", t.ID, err)
			errs++
			continue
		}
		cmdTag, err := pool.Exec(context.Background(), `
            INSERT INTO trivias (id, title, questions)
            VALUES ($1, $2, $3)
            ON CONFLICT (id) DO NOTHING
        `, t.ID, t.Title, questions)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error inserting trivia %s: %v\n", t.ID, err)
			errs++
			continue
		}
		if cmdTag.RowsAffected() == 1 {
			inserted++
		} else {
			skipped++
		}
	}

	// 4) Print summary
	fmt.Printf(
		"Trivia seed complete: %d total, %d inserted, %d skipped, %d errors\n",
		total, inserted, skipped, errs,
	)
}
