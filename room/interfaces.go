package room

import (
	"github.com/wfunc/rpsls/game"
	"github.com/wfunc/rpsls/models"
)

// Narrator produces round commentary. Defined here to break the import
// cycle between room and commentary.
type Narrator interface {
	Narrate(a, b game.Move, outcome game.Outcome, edge game.Edge) string
}

// ResultReporter receives the final match result when a room finishes.
// This is the leaderboard write path; implementations must swallow their
// own failures.
type ResultReporter interface {
	ReportMatch(result models.MatchResult)
}
