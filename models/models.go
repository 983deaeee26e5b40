// Package models holds the wire DTOs shared by the HTTP surface, the remote
// facade and the persistence layer.
package models

import (
	"time"

	"github.com/wfunc/rpsls/events"
)

// PlayerInfo is the per-player view inside a room snapshot. Pending moves
// stay hidden mid-round; only the Moved flag is visible until the round
// resolves and the event log reveals the moves.
type PlayerInfo struct {
	Username  string `json:"username"`
	Ready     bool   `json:"ready"`
	Score     int    `json:"score"`
	RoundWins int    `json:"round_wins"`
	Moved     bool   `json:"moved"`
	Abandoned bool   `json:"abandoned,omitempty"`
}

// RoomSnapshot is what getState returns: the room as of one read-locked
// instant, plus the latest event for watermark comparison.
type RoomSnapshot struct {
	RoomID            string        `json:"room_id"`
	Host              string        `json:"host"`
	State             string        `json:"state"`
	Round             int           `json:"round"`
	MaxPlayers        int           `json:"max_players"`
	BestOf            int           `json:"best_of"`
	PasswordProtected bool          `json:"password_protected"`
	Players           []PlayerInfo  `json:"players"`
	LastEvent         *events.Event `json:"last_event,omitempty"`
}

// ParticipantResult is one participant's final delta triple for the
// leaderboard write at game over.
type ParticipantResult struct {
	Username string `json:"username"`
	Wins     int    `json:"wins"`
	Losses   int    `json:"losses"`
	Draws    int    `json:"draws"`
	Winner   bool   `json:"winner"`
}

// MatchResult is the atomic unit handed to the leaderboard store when a
// room reaches FINISHED.
type MatchResult struct {
	RoomID       string              `json:"room_id"`
	Winner       string              `json:"winner"`
	BestOf       int                 `json:"best_of"`
	RoundsPlayed int                 `json:"rounds_played"`
	Participants []ParticipantResult `json:"participants"`
	FinishedAt   time.Time           `json:"finished_at"`
}

// LeaderboardEntry is one ranked row of the leaderboard read path.
type LeaderboardEntry struct {
	Username string `json:"username"`
	Wins     int    `json:"wins"`
	Losses   int    `json:"losses"`
	Draws    int    `json:"draws"`
}
