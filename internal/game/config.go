package game

import "time"

// Config carries the round timing and scoring policy. The random button
// delay and the inter-round pauses are fairness knobs; keep them
// configurable rather than baked in.
type Config struct {
	// QuestionRead is how long the question is shown before the button
	// can unlock.
	QuestionRead time.Duration
	// ButtonDelayMin/Max bound the random extra delay before the button
	// unlocks, drawn uniformly per round.
	ButtonDelayMin time.Duration
	ButtonDelayMax time.Duration
	// PressWindow is how long the button stays open, and the TTL of the
	// first-press lock.
	PressWindow time.Duration
	// AnswerTimeout is the answer window for the button winner.
	AnswerTimeout time.Duration
	// BaseScore is awarded per correct answer.
	BaseScore int
	// ResultPause separates a reveal or timeout result from the next
	// round or reopen.
	ResultPause time.Duration
	// NextRoundDelay separates a correct answer from the next round.
	NextRoundDelay time.Duration
	// ReopenDelay separates a wrong answer from the buzzer reopening.
	ReopenDelay time.Duration
	// DedupeTTL is how long replayed event ids are remembered.
	DedupeTTL time.Duration
}

// DefaultConfig mirrors the production tuning.
func DefaultConfig() Config {
	return Config{
		QuestionRead:   10 * time.Second,
		ButtonDelayMin: 1 * time.Second,
		ButtonDelayMax: 5 * time.Second,
		PressWindow:    10 * time.Second,
		AnswerTimeout:  15 * time.Second,
		BaseScore:      100,
		ResultPause:    1200 * time.Millisecond,
		NextRoundDelay: 1500 * time.Millisecond,
		ReopenDelay:    800 * time.Millisecond,
		DedupeTTL:      10 * time.Second,
	}
}
