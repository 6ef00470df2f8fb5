package game

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/buzzin/internal/results"
	"github.com/mcdev12/buzzin/internal/rooms"
)

// errTieBreaker aborts the finish mutation when a tie-break round is
// owed instead of a final result.
var errTieBreaker = errors.New("tie breaker pending")

// finishGame resolves the end of the game: detects a top-two tie and
// plays the reserved spare question at most once, otherwise persists
// the single canonical result and broadcasts it. The ResultExists guard
// up front resolves the race between the correct-answer path and the
// timeout path both reaching end-of-game concurrently.
func (s *Service) finishGame(ctx context.Context, code string) {
	exists, err := s.results.ResultExists(ctx, code)
	if err != nil {
		log.Error().Err(err).Str("room", code).Msg("failed to check for existing result")
		return
	}
	if exists {
		return
	}

	st, err := s.store.Get(ctx, code)
	if err != nil {
		if !errors.Is(err, ErrNoState) {
			log.Error().Err(err).Str("room", code).Msg("failed to load state at end of game")
		}
		return
	}

	ranked := RankPlayers(st)
	tied := len(ranked) >= 2 && ranked[0].Score == ranked[1].Score

	if tied && !st.TieBreakerPlayed {
		tv, err := s.trivias.GetTrivia(ctx, st.TriviaID)
		if err != nil {
			log.Error().Err(err).Str("room", code).Msg("failed to load trivia for tie break")
			return
		}
		if tv != nil && tv.QuestionAt(tv.SpareIndex()) != nil {
			spare := tv.SpareIndex()
			_, err := s.store.Mutate(ctx, code, func(st *State) error {
				if st.TieBreakerPlayed {
					return errTieBreaker
				}
				st.TieBreakerPlayed = true
				st.CurrentQuestionIndex = spare
				st.Status = StatusReading
				st.ClearBlocked()
				st.ClearAnswerWindow()
				return nil
			})
			if err != nil {
				if errors.Is(err, errTieBreaker) || errors.Is(err, ErrNoState) {
					return
				}
				log.Error().Err(err).Str("room", code).Msg("failed to arm tie breaker")
				return
			}

			log.Info().Str("room", code).Int("spare_index", spare).Msg("top scores tied, playing tie breaker")
			s.startRoundLogged(ctx, code)
			return
		}
	}

	updated, err := s.store.Mutate(ctx, code, func(st *State) error {
		st.Status = StatusFinished
		st.ClearAnswerWindow()
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrNoState) {
			return
		}
		log.Error().Err(err).Str("room", code).Msg("failed to finalize game state")
		return
	}

	ranked = RankPlayers(updated)
	var winner *results.PlayerScore
	if len(ranked) > 0 {
		w := ranked[0]
		winner = &w
	}

	result := &results.GameResult{
		RoomCode:   code,
		TriviaID:   updated.TriviaID,
		FinishedAt: s.clock.Now().UTC().Truncate(time.Millisecond),
		Scores:     updated.Scores,
		Players:    ranked,
		Winner:     winner,
	}
	inserted, err := s.results.CreateResult(ctx, result)
	if err != nil {
		log.Error().Err(err).Str("room", code).Msg("failed to persist game result")
		return
	}
	if !inserted {
		// Another instance finished the room first.
		return
	}

	if err := s.rooms.UpdateRoomStatus(ctx, code, rooms.StatusFinished); err != nil {
		log.Error().Err(err).Str("room", code).Msg("failed to mark room finished")
	}

	log.Info().Str("room", code).Msg("game finished")

	s.bus.Broadcast(ctx, code, EventGameUpdate, updated)
	s.bus.Broadcast(ctx, code, EventGameEnded, GameEndedPayload{
		Scores: updated.Scores,
		Winner: winner,
	})
}

// RankPlayers orders the roster by descending score. Iterating the
// roster slice rather than the score map keeps equal scores in join
// order.
func RankPlayers(st *State) []results.PlayerScore {
	ranked := make([]results.PlayerScore, 0, len(st.Players))
	for _, p := range st.Players {
		ranked = append(ranked, results.PlayerScore{
			UserID: p.UserID,
			Name:   p.Name,
			Score:  st.Scores[p.UserID],
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}
