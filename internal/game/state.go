package game

// Status is the round progression state of a room.
type Status string

const (
	StatusReading   Status = "reading"
	StatusOpen      Status = "open"
	StatusAnswering Status = "answering"
	StatusResult    Status = "result"
	StatusFinished  Status = "finished"
)

// Player is one participant of the round, in roster order.
type Player struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
}

// State is the per-room game state blob. It lives in the shared store
// as a whole, keyed by room code, and is only ever mutated through
// whole-blob read-modify-write with a revision check. Deadlines are
// absolute epoch milliseconds; clients trust them over local timers.
type State struct {
	RoomCode             string          `json:"roomCode"`
	TriviaID             string          `json:"triviaId"`
	Status               Status          `json:"status"`
	CurrentQuestionIndex int             `json:"currentQuestionIndex"`
	RoundSequence        int64           `json:"roundSequence"`
	Scores               map[string]int  `json:"scores"`
	Blocked              map[string]bool `json:"blocked"`
	Players              []Player        `json:"players"`
	QuestionReadEndsAt   int64           `json:"questionReadEndsAt,omitempty"`
	AnswerWindowEndsAt   int64           `json:"answerWindowEndsAt,omitempty"`
	TieBreakerPlayed     bool            `json:"tieBreakerPlayed,omitempty"`
}

// PlayerName resolves a display name from the roster snapshot.
func (s *State) PlayerName(userID string) string {
	for _, p := range s.Players {
		if p.UserID == userID {
			return p.Name
		}
	}
	return "unknown"
}

// EligiblePlayers returns the players still allowed to buzz this
// question.
func (s *State) EligiblePlayers() []Player {
	var eligible []Player
	for _, p := range s.Players {
		if !s.Blocked[p.UserID] {
			eligible = append(eligible, p)
		}
	}
	return eligible
}

// BlockAllExcept bars every player but userID from buzzing. Used when a
// player wins the button.
func (s *State) BlockAllExcept(userID string) {
	s.Blocked = make(map[string]bool, len(s.Players))
	for _, p := range s.Players {
		s.Blocked[p.UserID] = p.UserID != userID
	}
}

// BlockOnly bars userID and frees everyone else. Used when the button
// winner answers wrong or times out.
func (s *State) BlockOnly(userID string) {
	s.Blocked = make(map[string]bool, len(s.Players))
	for _, p := range s.Players {
		s.Blocked[p.UserID] = p.UserID == userID
	}
}

// ClearBlocked frees all players.
func (s *State) ClearBlocked() {
	s.Blocked = map[string]bool{}
}

// ClearAnswerWindow marks the answer window resolved. A zero value is
// what makes late answer-timeout deliveries no-ops.
func (s *State) ClearAnswerWindow() {
	s.AnswerWindowEndsAt = 0
}
