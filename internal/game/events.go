package game

import "github.com/mcdev12/buzzin/internal/results"

// Wire names of the events the round machine emits. Room-wide events
// fan out across instances through the broadcast bus; answerRequest is
// a targeted private send to the button winner.
const (
	EventGameStarted     = "game:started"
	EventShowQuestion    = "round:showQuestion"
	EventOpenButton      = "round:openButton"
	EventPlayerWonButton = "round:playerWonButton"
	EventAnswerRequest   = "round:answerRequest"
	EventRoundResult     = "round:result"
	EventGameUpdate      = "game:update"
	EventGameEnded       = "game:ended"
)

type GameStartedPayload struct {
	TotalQuestions int `json:"totalQuestions"`
}

type ShowQuestionPayload struct {
	RoundSequence int64  `json:"roundSequence"`
	QuestionText  string `json:"questionText"`
	ReadMs        int64  `json:"readMs"`
}

type OpenButtonPayload struct {
	RoundSequence int64 `json:"roundSequence"`
	PressWindowMs int64 `json:"pressWindowMs"`
}

type PlayerWonButtonPayload struct {
	RoundSequence int64  `json:"roundSequence"`
	PlayerID      string `json:"playerId"`
	Name          string `json:"name"`
}

// AnswerRequestPayload is sent privately to the button winner. EndsAt
// is the authoritative deadline; clients time out against it rather
// than their own clocks.
type AnswerRequestPayload struct {
	RoundSequence   int64    `json:"roundSequence"`
	Options         []string `json:"options"`
	AnswerTimeoutMs int64    `json:"answerTimeoutMs"`
	EndsAt          int64    `json:"endsAt"`
}

// RoundResultPayload closes a round. PlayerID and Correct are nil when
// nobody pressed the button and the answer is revealed.
type RoundResultPayload struct {
	RoundSequence int64          `json:"roundSequence"`
	PlayerID      *string        `json:"playerId"`
	Correct       *bool          `json:"correct"`
	Message       string         `json:"message,omitempty"`
	CorrectAnswer string         `json:"correctAnswer,omitempty"`
	Scores        map[string]int `json:"scores"`
}

type GameEndedPayload struct {
	Scores map[string]int       `json:"scores"`
	Winner *results.PlayerScore `json:"winner,omitempty"`
}
