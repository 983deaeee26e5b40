// state/interfaces.go
package state

import (
	"time"

	"github.com/wfunc/rpsls/events"
	"github.com/wfunc/rpsls/game"
	"github.com/wfunc/rpsls/models"
	"github.com/wfunc/rpsls/player"
)

// RoomContext is the view of a room that states operate on. Every method is
// invoked with the room's lock already held; implementations must not lock
// again. Defining the interface here breaks the import cycle between room
// and state.
type RoomContext interface {
	GetID() string
	HostUser() string

	GetPlayers() []*player.Player
	GetPlayer(username string) (*player.Player, bool)
	AddPlayer(p *player.Player)
	RemovePlayer(username string)

	MaxPlayers() int
	BestOf() int
	Password() string

	CurrentRound() int
	SetRound(n int)

	AppendEvent(ev events.Event)
	ChangeState(newState State) error

	// MoveDeadline is the forfeit window for a round; zero disables it.
	MoveDeadline() time.Duration

	// Narrate produces round commentary for a decided pairing. It must
	// return promptly; generators degrade to a fallback string rather
	// than block resolution.
	Narrate(a, b game.Move, outcome game.Outcome, edge game.Edge) string

	// ReportFinished hands the final result to the leaderboard write
	// path. Failures there never propagate back into the state machine.
	ReportFinished(result models.MatchResult)
}
