package results

import "time"

// PlayerScore is one ranked row of the final standings.
type PlayerScore struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Score  int    `json:"score"`
}

// GameResult is the single canonical result document for a room. The
// room code is unique in storage; concurrent end-of-game paths race on
// the insert and exactly one wins.
type GameResult struct {
	RoomCode   string         `json:"roomCode"`
	TriviaID   string         `json:"triviaId"`
	FinishedAt time.Time      `json:"finishedAt"`
	Scores     map[string]int `json:"scores"`
	Players    []PlayerScore  `json:"players"`
	Winner     *PlayerScore   `json:"winner,omitempty"`
}
