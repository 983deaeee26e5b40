// Package player holds the per-seat state of one participant in a room.
// A Player exists from join until the room ends or the seat is abandoned;
// the pending move resets at round boundaries.
package player

import (
	"time"

	"github.com/wfunc/rpsls/game"
	"github.com/wfunc/rpsls/models"
)

type Player struct {
	Username  string
	Address   string
	Ready     bool
	Score     int
	RoundWins int
	Move      *game.Move
	Abandoned bool
	JoinedAt  time.Time
}

func New(username, address string) *Player {
	return &Player{
		Username: username,
		Address:  address,
		JoinedAt: time.Now(),
	}
}

// Seated reports whether the player still participates in pairwise scoring.
func (p *Player) Seated() bool {
	return !p.Abandoned
}

// HasMoved reports whether a move is recorded for the current round.
func (p *Player) HasMoved() bool {
	return p.Move != nil
}

// ResetRound clears the pending move at a round boundary.
func (p *Player) ResetRound() {
	p.Move = nil
}

// Info renders the player for a room snapshot. The pending move itself is
// deliberately absent; mid-round only the Moved flag is visible.
func (p *Player) Info() models.PlayerInfo {
	return models.PlayerInfo{
		Username:  p.Username,
		Ready:     p.Ready,
		Score:     p.Score,
		RoundWins: p.RoundWins,
		Moved:     p.HasMoved(),
		Abandoned: p.Abandoned,
	}
}
