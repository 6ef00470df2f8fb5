package game

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/buzzin/internal/results"
	"github.com/mcdev12/buzzin/internal/rooms"
	"github.com/mcdev12/buzzin/internal/trivia"
)

// pressWindowGrace pads the local press-window fallback so it fires
// just after the lock key has expired.
const pressWindowGrace = 50 * time.Millisecond

// StateStore is the shared per-room state blob. Mutate runs fn against
// the freshest state and saves with a revision check, retrying the
// whole read-modify-write on a concurrent writer. An error returned by
// fn aborts the save and is passed through.
type StateStore interface {
	Init(ctx context.Context, code string, state *State) error
	Get(ctx context.Context, code string) (*State, error)
	Mutate(ctx context.Context, code string, fn func(*State) error) (*State, error)
}

// PressLock is the buzz-in arbitration primitive. AttemptFirstPress is
// a single atomic set-if-absent with expiry; it is the entire
// correctness mechanism for "who buzzed first".
type PressLock interface {
	AttemptFirstPress(ctx context.Context, code, userID string, window time.Duration) (bool, error)
	HolderOf(ctx context.Context, code string) (string, error)
	Reset(ctx context.Context, code string) error
}

// EventDeduper guards against client-retried messages. An empty event
// id disables dedupe for that call.
type EventDeduper interface {
	FirstOccurrence(ctx context.Context, code, eventID string, ttl time.Duration) (bool, error)
}

// LocalScheduler runs short same-process delays. Scheduling under an
// existing key replaces the prior timer.
type LocalScheduler interface {
	Schedule(key string, delay time.Duration, fn func())
	Clear(key string)
}

// DurableScheduler enqueues the one timeout that must survive crash and
// failover: the answer timeout. Cancellation is best effort; late or
// duplicate fires are rendered harmless by HandleAnswerTimeout.
type DurableScheduler interface {
	ScheduleAnswerTimeout(ctx context.Context, code string, roundSeq int64, userID string, delay time.Duration) error
	CancelAnswerTimeout(ctx context.Context, code string, roundSeq int64) error
}

// Broadcaster publishes events to all members of a room, fanned out
// across server instances. Sends are fire-and-forget; an absent
// broadcast is the client's only failure signal.
type Broadcaster interface {
	Broadcast(ctx context.Context, code, event string, payload any)
	SendToUser(ctx context.Context, code, userID, event string, payload any)
}

// TriviaRepo reads the ordered question list.
type TriviaRepo interface {
	GetTrivia(ctx context.Context, id string) (*trivia.Trivia, error)
}

// RoomRepo reads the roster and flips the room status.
type RoomRepo interface {
	GetRoomByCode(ctx context.Context, code string) (*rooms.Room, error)
	UpdateRoomStatus(ctx context.Context, code, status string) error
}

// ResultRepo persists the single canonical result per room.
type ResultRepo interface {
	ResultExists(ctx context.Context, roomCode string) (bool, error)
	CreateResult(ctx context.Context, result *results.GameResult) (bool, error)
}

// Deps bundles the service collaborators.
type Deps struct {
	Store   StateStore
	Lock    PressLock
	Dedupe  EventDeduper
	Local   LocalScheduler
	Durable DurableScheduler
	Bus     Broadcaster
	Trivias TriviaRepo
	Rooms   RoomRepo
	Results ResultRepo
}

// Service owns a room's round progression. One room logically processes
// one mutation at a time while many rooms progress concurrently; all
// cross-instance coordination goes through the shared store and queue,
// never in-process memory.
type Service struct {
	store   StateStore
	lock    PressLock
	dedupe  EventDeduper
	local   LocalScheduler
	durable DurableScheduler
	bus     Broadcaster
	trivias TriviaRepo
	rooms   RoomRepo
	results ResultRepo

	cfg   Config
	clock clockwork.Clock

	// buttonDelay draws the random extra unlock delay; replaced in
	// tests for determinism.
	buttonDelay func() time.Duration
}

func NewService(cfg Config, deps Deps) *Service {
	s := &Service{
		store:   deps.Store,
		lock:    deps.Lock,
		dedupe:  deps.Dedupe,
		local:   deps.Local,
		durable: deps.Durable,
		bus:     deps.Bus,
		trivias: deps.Trivias,
		rooms:   deps.Rooms,
		results: deps.Results,
		cfg:     cfg,
		clock:   clockwork.NewRealClock(),
	}
	s.buttonDelay = func() time.Duration {
		spread := cfg.ButtonDelayMax - cfg.ButtonDelayMin
		if spread <= 0 {
			return cfg.ButtonDelayMin
		}
		return cfg.ButtonDelayMin + time.Duration(rand.Int63n(int64(spread)+1))
	}
	return s
}

// StartGame initializes the room's game state and kicks off the first
// round. Only the room host may start.
func (s *Service) StartGame(ctx context.Context, code, userID string) (*Ack, error) {
	if code == "" {
		return reject(0, "room code required"), nil
	}

	room, err := s.rooms.GetRoomByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("load room %s: %w", code, err)
	}
	if room == nil {
		return reject(CodeNotFound, "room not found"), nil
	}
	if room.HostID != userID {
		return reject(CodeNotResponder, "only the host can start the game"), nil
	}

	tv, err := s.trivias.GetTrivia(ctx, room.TriviaID)
	if err != nil {
		return nil, fmt.Errorf("load trivia %s: %w", room.TriviaID, err)
	}
	if tv == nil || len(tv.Questions) == 0 {
		return reject(CodeNotFound, "trivia not found"), nil
	}

	if err := s.rooms.UpdateRoomStatus(ctx, code, rooms.StatusInGame); err != nil {
		log.Error().Err(err).Str("room", code).Msg("failed to mark room in-game")
	}

	players := make([]Player, 0, len(room.Players))
	scores := make(map[string]int, len(room.Players))
	for _, p := range room.Players {
		players = append(players, Player{UserID: p.UserID, Name: p.Name})
		scores[p.UserID] = 0
	}

	state := &State{
		RoomCode: code,
		TriviaID: room.TriviaID,
		Status:   StatusReading,
		Scores:   scores,
		Blocked:  map[string]bool{},
		Players:  players,
	}
	if err := s.store.Init(ctx, code, state); err != nil {
		return nil, fmt.Errorf("init game state for %s: %w", code, err)
	}

	s.bus.Broadcast(ctx, code, EventGameStarted, GameStartedPayload{TotalQuestions: tv.TotalQuestions()})

	if err := s.startRound(ctx, code); err != nil {
		return nil, err
	}
	return &Ack{OK: true}, nil
}

// startRound reveals the question at the current index and schedules
// the button unlock. A missing question ends the game.
func (s *Service) startRound(ctx context.Context, code string) error {
	st, err := s.store.Get(ctx, code)
	if err != nil {
		if errors.Is(err, ErrNoState) {
			return nil
		}
		return fmt.Errorf("load state for %s: %w", code, err)
	}

	tv, err := s.trivias.GetTrivia(ctx, st.TriviaID)
	if err != nil {
		return fmt.Errorf("load trivia %s: %w", st.TriviaID, err)
	}
	if tv == nil {
		log.Warn().Str("room", code).Str("trivia", st.TriviaID).Msg("trivia disappeared; ending game")
		s.finishGame(ctx, code)
		return nil
	}

	q := tv.QuestionAt(st.CurrentQuestionIndex)
	if q == nil {
		s.finishGame(ctx, code)
		return nil
	}

	readMs := s.cfg.QuestionRead
	delay := s.buttonDelay()
	readEndsAt := s.clock.Now().Add(readMs).UnixMilli()

	updated, err := s.store.Mutate(ctx, code, func(st *State) error {
		st.RoundSequence++
		st.Status = StatusReading
		st.QuestionReadEndsAt = readEndsAt
		st.ClearAnswerWindow()
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrNoState) {
			return nil
		}
		return fmt.Errorf("start round for %s: %w", code, err)
	}
	seq := updated.RoundSequence

	log.Info().
		Str("room", code).
		Int64("round_seq", seq).
		Int("question_index", updated.CurrentQuestionIndex).
		Dur("button_delay", delay).
		Msg("round started")

	s.bus.Broadcast(ctx, code, EventGameUpdate, updated)
	s.bus.Broadcast(ctx, code, EventShowQuestion, ShowQuestionPayload{
		RoundSequence: seq,
		QuestionText:  q.Question,
		ReadMs:        readMs.Milliseconds(),
	})

	s.local.Schedule(timerKey(code, "openButton", seq), readMs+delay, func() {
		s.openButton(context.Background(), code, seq)
	})
	return nil
}

// openButton unlocks the buzzer for the round and arms the press-window
// fallback.
func (s *Service) openButton(ctx context.Context, code string, seq int64) {
	if err := s.lock.Reset(ctx, code); err != nil {
		log.Warn().Err(err).Str("room", code).Msg("failed to reset first-press lock")
	}

	updated, err := s.store.Mutate(ctx, code, func(st *State) error {
		if st.RoundSequence != seq {
			return ErrStaleRound
		}
		st.Status = StatusOpen
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrStaleRound) && !errors.Is(err, ErrNoState) {
			log.Error().Err(err).Str("room", code).Int64("round_seq", seq).Msg("failed to open button")
		}
		return
	}

	s.bus.Broadcast(ctx, code, EventGameUpdate, updated)
	s.bus.Broadcast(ctx, code, EventOpenButton, OpenButtonPayload{
		RoundSequence: seq,
		PressWindowMs: s.cfg.PressWindow.Milliseconds(),
	})

	s.schedulePressWindowFallback(code, seq)
}

// schedulePressWindowFallback arms the local timer that resolves the
// round when nobody buzzes. The callback re-validates the live state
// and the live lock so that a press racing the window edge wins.
func (s *Service) schedulePressWindowFallback(code string, seq int64) {
	s.local.Schedule(timerKey(code, "pressWindow", seq), s.cfg.PressWindow+pressWindowGrace, func() {
		ctx := context.Background()

		st, err := s.store.Get(ctx, code)
		if err != nil || st.RoundSequence != seq {
			return
		}
		if st.Status != StatusOpen || st.AnswerWindowEndsAt != 0 {
			return
		}
		holder, err := s.lock.HolderOf(ctx, code)
		if err == nil && holder != "" {
			return
		}
		if err := s.lock.Reset(ctx, code); err != nil {
			log.Warn().Err(err).Str("room", code).Msg("failed to reset first-press lock")
		}
		s.handleNoPresses(ctx, code, seq)
	})
}

// handleNoPresses reveals the answer when the press window elapsed
// without a winner, then advances.
func (s *Service) handleNoPresses(ctx context.Context, code string, seq int64) {
	st, err := s.store.Get(ctx, code)
	if err != nil || st.RoundSequence != seq {
		return
	}

	tv, err := s.trivias.GetTrivia(ctx, st.TriviaID)
	if err != nil || tv == nil {
		return
	}
	q := tv.QuestionAt(st.CurrentQuestionIndex)
	if q == nil {
		return
	}

	s.bus.Broadcast(ctx, code, EventRoundResult, RoundResultPayload{
		RoundSequence: seq,
		PlayerID:      nil,
		Correct:       nil,
		Message:       "nobody pressed the button, revealing the answer",
		CorrectAnswer: q.CorrectAnswer,
		Scores:        st.Scores,
	})

	updated, err := s.store.Mutate(ctx, code, func(st *State) error {
		if st.RoundSequence != seq {
			return ErrStaleRound
		}
		st.Status = StatusResult
		st.ClearBlocked()
		st.ClearAnswerWindow()
		st.CurrentQuestionIndex++
		return nil
	})
	if err != nil {
		return
	}

	s.bus.Broadcast(ctx, code, EventGameUpdate, updated)

	hasMore := updated.CurrentQuestionIndex < tv.TotalQuestions()
	s.local.Schedule(timerKey(code, "nextRound", seq), s.cfg.ResultPause, func() {
		bg := context.Background()
		if hasMore {
			s.startRoundLogged(bg, code)
		} else {
			s.finishGame(bg, code)
		}
	})
}

// HandleButtonPress arbitrates a buzz attempt. Exactly one caller per
// round is told it won; everyone else gets a rejection ack.
func (s *Service) HandleButtonPress(ctx context.Context, code, userID string, roundSeq int64, eventID string) (*Ack, error) {
	first, err := s.dedupe.FirstOccurrence(ctx, code, eventID, s.cfg.DedupeTTL)
	if err != nil {
		log.Warn().Err(err).Str("room", code).Msg("dedupe check failed; processing anyway")
		first = true
	}
	if !first {
		return accepted("duplicate event ignored"), nil
	}

	st, err := s.store.Get(ctx, code)
	if err != nil {
		if errors.Is(err, ErrNoState) {
			return reject(CodeNotFound, "no game state"), nil
		}
		return nil, fmt.Errorf("load state for %s: %w", code, err)
	}
	if st.RoundSequence != roundSeq {
		return reject(CodeStaleRound, "stale round"), nil
	}
	if st.Blocked[userID] {
		return reject(CodeBlocked, "you are blocked for this question"), nil
	}

	won, err := s.lock.AttemptFirstPress(ctx, code, userID, s.cfg.PressWindow)
	if err != nil {
		// Lock acquisition is the critical path; infra failure surfaces
		// as a rejection, not a crash.
		log.Error().Err(err).Str("room", code).Str("user", userID).Msg("first-press arbitration failed")
		return reject(0, "press arbitration unavailable, try again"), nil
	}
	if !won {
		return reject(0, "another player won the button"), nil
	}

	endsAt := s.clock.Now().Add(s.cfg.AnswerTimeout).UnixMilli()
	updated, err := s.store.Mutate(ctx, code, func(st *State) error {
		if st.RoundSequence != roundSeq {
			return ErrStaleRound
		}
		st.BlockAllExcept(userID)
		st.Status = StatusAnswering
		st.AnswerWindowEndsAt = endsAt
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrStaleRound) || errors.Is(err, ErrNoState) {
			if resetErr := s.lock.Reset(ctx, code); resetErr != nil {
				log.Warn().Err(resetErr).Str("room", code).Msg("failed to release stale press lock")
			}
			return reject(CodeStaleRound, "stale round"), nil
		}
		return nil, fmt.Errorf("record button win for %s: %w", code, err)
	}

	log.Info().
		Str("room", code).
		Str("user", userID).
		Int64("round_seq", roundSeq).
		Msg("player won the button")

	s.bus.Broadcast(ctx, code, EventGameUpdate, updated)
	s.bus.Broadcast(ctx, code, EventPlayerWonButton, PlayerWonButtonPayload{
		RoundSequence: roundSeq,
		PlayerID:      userID,
		Name:          updated.PlayerName(userID),
	})

	tv, err := s.trivias.GetTrivia(ctx, updated.TriviaID)
	if err != nil {
		return nil, fmt.Errorf("load trivia %s: %w", updated.TriviaID, err)
	}
	var q *trivia.Question
	if tv != nil {
		q = tv.QuestionAt(updated.CurrentQuestionIndex)
	}
	if q == nil {
		return nil, fmt.Errorf("question %d not found for trivia %s", updated.CurrentQuestionIndex, updated.TriviaID)
	}

	if err := s.durable.ScheduleAnswerTimeout(ctx, code, roundSeq, userID, s.cfg.AnswerTimeout); err != nil {
		log.Error().Err(err).Str("room", code).Int64("round_seq", roundSeq).Msg("failed to schedule answer timeout")
	}

	s.bus.SendToUser(ctx, code, userID, EventAnswerRequest, AnswerRequestPayload{
		RoundSequence:   roundSeq,
		Options:         q.Options,
		AnswerTimeoutMs: s.cfg.AnswerTimeout.Milliseconds(),
		EndsAt:          endsAt,
	})

	return accepted("you pressed first"), nil
}

// HandleAnswerSubmit resolves the button winner's answer. The responder
// is re-checked against the live lock, never trusted from client state.
func (s *Service) HandleAnswerSubmit(ctx context.Context, code, userID string, roundSeq int64, selectedIndex int, eventID string) (*Ack, error) {
	first, err := s.dedupe.FirstOccurrence(ctx, code, eventID, s.cfg.DedupeTTL)
	if err != nil {
		log.Warn().Err(err).Str("room", code).Msg("dedupe check failed; processing anyway")
		first = true
	}
	if !first {
		return accepted("duplicate event ignored"), nil
	}

	st, err := s.store.Get(ctx, code)
	if err != nil {
		if errors.Is(err, ErrNoState) {
			return reject(CodeNotFound, "no game state"), nil
		}
		return nil, fmt.Errorf("load state for %s: %w", code, err)
	}
	if st.RoundSequence != roundSeq {
		return reject(CodeStaleRound, "round mismatch"), nil
	}

	holder, err := s.lock.HolderOf(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("check press lock for %s: %w", code, err)
	}
	if holder != userID {
		return reject(CodeNotResponder, "you are not the current responder"), nil
	}

	tv, err := s.trivias.GetTrivia(ctx, st.TriviaID)
	if err != nil {
		return nil, fmt.Errorf("load trivia %s: %w", st.TriviaID, err)
	}
	var q *trivia.Question
	if tv != nil {
		q = tv.QuestionAt(st.CurrentQuestionIndex)
	}
	if q == nil {
		return nil, fmt.Errorf("question %d not found for trivia %s", st.CurrentQuestionIndex, st.TriviaID)
	}

	correct := selectedIndex >= 0 && selectedIndex < len(q.Options) && q.Options[selectedIndex] == q.CorrectAnswer

	if err := s.durable.CancelAnswerTimeout(ctx, code, roundSeq); err != nil {
		log.Warn().Err(err).Str("room", code).Int64("round_seq", roundSeq).Msg("failed to cancel answer timeout")
	}

	if correct {
		return s.resolveCorrectAnswer(ctx, code, userID, roundSeq, q, tv)
	}
	return s.resolveWrongAnswer(ctx, code, userID, roundSeq)
}

func (s *Service) resolveCorrectAnswer(ctx context.Context, code, userID string, roundSeq int64, q *trivia.Question, tv *trivia.Trivia) (*Ack, error) {
	updated, err := s.store.Mutate(ctx, code, func(st *State) error {
		if st.RoundSequence != roundSeq {
			return ErrStaleRound
		}
		st.Scores[userID] += s.cfg.BaseScore
		st.Status = StatusResult
		st.ClearBlocked()
		st.ClearAnswerWindow()
		st.CurrentQuestionIndex++
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrStaleRound) || errors.Is(err, ErrNoState) {
			return reject(CodeStaleRound, "round mismatch"), nil
		}
		return nil, fmt.Errorf("record correct answer for %s: %w", code, err)
	}

	correctFlag := true
	s.bus.Broadcast(ctx, code, EventRoundResult, RoundResultPayload{
		RoundSequence: roundSeq,
		PlayerID:      &userID,
		Correct:       &correctFlag,
		CorrectAnswer: q.CorrectAnswer,
		Scores:        updated.Scores,
	})
	s.bus.Broadcast(ctx, code, EventGameUpdate, updated)

	if updated.CurrentQuestionIndex < tv.TotalQuestions() {
		s.local.Schedule(timerKey(code, "nextRound", roundSeq), s.cfg.NextRoundDelay, func() {
			s.startRoundLogged(context.Background(), code)
		})
	} else {
		s.finishGame(ctx, code)
	}

	return &Ack{OK: true, Correct: &correctFlag}, nil
}

func (s *Service) resolveWrongAnswer(ctx context.Context, code, userID string, roundSeq int64) (*Ack, error) {
	updated, err := s.store.Mutate(ctx, code, func(st *State) error {
		if st.RoundSequence != roundSeq {
			return ErrStaleRound
		}
		st.Status = StatusResult
		st.BlockOnly(userID)
		st.ClearAnswerWindow()
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrStaleRound) || errors.Is(err, ErrNoState) {
			return reject(CodeStaleRound, "round mismatch"), nil
		}
		return nil, fmt.Errorf("record wrong answer for %s: %w", code, err)
	}

	correctFlag := false
	s.bus.Broadcast(ctx, code, EventRoundResult, RoundResultPayload{
		RoundSequence: roundSeq,
		PlayerID:      &userID,
		Correct:       &correctFlag,
		Message:       "incorrect answer",
		Scores:        updated.Scores,
	})
	s.bus.Broadcast(ctx, code, EventGameUpdate, updated)

	if err := s.lock.Reset(ctx, code); err != nil {
		log.Warn().Err(err).Str("room", code).Msg("failed to reset first-press lock")
	}

	s.local.Schedule(timerKey(code, "reopen", roundSeq), s.cfg.ReopenDelay, func() {
		s.reopenButton(context.Background(), code, roundSeq)
	})

	return &Ack{OK: true, Correct: &correctFlag}, nil
}

// HandleAnswerTimeout is the durable-timer callback. It is delivered at
// least once and possibly early, so it re-validates the live state
// before acting: a still-open answer window means a premature or
// duplicate delivery and reschedules for the remaining delta; a cleared
// window means the round already resolved.
func (s *Service) HandleAnswerTimeout(ctx context.Context, code string, roundSeq int64, userID string) error {
	st, err := s.store.Get(ctx, code)
	if err != nil {
		if errors.Is(err, ErrNoState) {
			return nil
		}
		return fmt.Errorf("load state for %s: %w", code, err)
	}
	if st.RoundSequence != roundSeq {
		return nil
	}
	if st.AnswerWindowEndsAt == 0 {
		return nil
	}
	now := s.clock.Now().UnixMilli()
	if now < st.AnswerWindowEndsAt {
		remaining := time.Duration(st.AnswerWindowEndsAt-now) * time.Millisecond
		return s.durable.ScheduleAnswerTimeout(ctx, code, roundSeq, userID, remaining)
	}

	updated, err := s.store.Mutate(ctx, code, func(st *State) error {
		if st.RoundSequence != roundSeq {
			return ErrStaleRound
		}
		st.Status = StatusResult
		st.BlockOnly(userID)
		st.ClearAnswerWindow()
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrStaleRound) || errors.Is(err, ErrNoState) {
			return nil
		}
		return fmt.Errorf("record answer timeout for %s: %w", code, err)
	}

	log.Info().
		Str("room", code).
		Str("user", userID).
		Int64("round_seq", roundSeq).
		Msg("answer window expired")

	correctFlag := false
	s.bus.Broadcast(ctx, code, EventRoundResult, RoundResultPayload{
		RoundSequence: roundSeq,
		PlayerID:      &userID,
		Correct:       &correctFlag,
		Message:       "time is up",
		Scores:        updated.Scores,
	})
	s.bus.Broadcast(ctx, code, EventGameUpdate, updated)

	if err := s.lock.Reset(ctx, code); err != nil {
		log.Warn().Err(err).Str("room", code).Msg("failed to reset first-press lock")
	}

	s.local.Schedule(timerKey(code, "reopen", roundSeq), s.cfg.ResultPause, func() {
		s.reopenButton(context.Background(), code, roundSeq)
	})
	return nil
}

// reopenButton unlocks the buzzer again for the players not yet blocked
// this question. With nobody left it falls through to the reveal.
func (s *Service) reopenButton(ctx context.Context, code string, seq int64) {
	st, err := s.store.Get(ctx, code)
	if err != nil || st.RoundSequence != seq {
		return
	}

	if len(st.EligiblePlayers()) == 0 {
		s.handleNoPresses(ctx, code, seq)
		return
	}

	if err := s.lock.Reset(ctx, code); err != nil {
		log.Warn().Err(err).Str("room", code).Msg("failed to reset first-press lock")
	}

	updated, err := s.store.Mutate(ctx, code, func(st *State) error {
		if st.RoundSequence != seq {
			return ErrStaleRound
		}
		st.Status = StatusOpen
		return nil
	})
	if err != nil {
		return
	}

	s.bus.Broadcast(ctx, code, EventGameUpdate, updated)
	s.bus.Broadcast(ctx, code, EventOpenButton, OpenButtonPayload{
		RoundSequence: seq,
		PressWindowMs: s.cfg.PressWindow.Milliseconds(),
	})

	s.schedulePressWindowFallback(code, seq)
}

func (s *Service) startRoundLogged(ctx context.Context, code string) {
	if err := s.startRound(ctx, code); err != nil {
		log.Error().Err(err).Str("room", code).Msg("failed to start round")
	}
}

func timerKey(code, kind string, seq int64) string {
	return fmt.Sprintf("%s:%s:%d", code, kind, seq)
}
