// Package game implements the rock/paper/scissors/lizard/spock rules: the
// five moves, the static beats relation and the pairwise resolver. It holds
// no state and is total over the 5x5 input space.
package game

import (
	"strings"

	"github.com/wfunc/rpsls/apperr"
)

type Move int

const (
	Rock Move = iota
	Paper
	Scissors
	Lizard
	Spock
)

// Moves lists every move in declaration order.
var Moves = []Move{Rock, Paper, Scissors, Lizard, Spock}

var moveNames = map[Move]string{
	Rock:     "Rock",
	Paper:    "Paper",
	Scissors: "Scissors",
	Lizard:   "Lizard",
	Spock:    "Spock",
}

func (m Move) String() string {
	if name, ok := moveNames[m]; ok {
		return name
	}
	return "Unknown"
}

func (m Move) Valid() bool {
	_, ok := moveNames[m]
	return ok
}

// ParseMove maps a wire name back to a Move, ignoring case.
func ParseMove(name string) (Move, error) {
	for move, n := range moveNames {
		if strings.EqualFold(n, name) {
			return move, nil
		}
	}
	return 0, apperr.Validation("unknown move %q", name)
}

// MarshalText makes moves readable on the wire.
func (m Move) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Move) UnmarshalText(text []byte) error {
	move, err := ParseMove(string(text))
	if err != nil {
		return err
	}
	*m = move
	return nil
}

// beats is the single authoritative adjacency table for the 5-node
// tournament. Each move beats exactly two others; the verb is the narration
// for that edge. Both directions of every pairing derive from this one table
// so the relation cannot drift asymmetric.
var beats = map[Move]map[Move]string{
	Rock:     {Scissors: "crushes", Lizard: "crushes"},
	Paper:    {Rock: "covers", Spock: "disproves"},
	Scissors: {Paper: "cuts", Lizard: "decapitates"},
	Lizard:   {Spock: "poisons", Paper: "eats"},
	Spock:    {Scissors: "smashes", Rock: "vaporizes"},
}

type Outcome int

const (
	Draw Outcome = iota
	WinA
	WinB
)

// Edge describes the beats relation used to decide a non-draw outcome,
// for narration ("Rock crushes Scissors").
type Edge struct {
	Winner Move
	Loser  Move
	Verb   string
}

func (e Edge) String() string {
	return e.Winner.String() + " " + e.Verb + " " + e.Loser.String()
}

// Resolve decides a pairing. A move always draws against itself; otherwise
// exactly one direction of the beats table applies.
func Resolve(a, b Move) (Outcome, Edge) {
	if a == b {
		return Draw, Edge{}
	}
	if verb, ok := beats[a][b]; ok {
		return WinA, Edge{Winner: a, Loser: b, Verb: verb}
	}
	verb := beats[b][a]
	return WinB, Edge{Winner: b, Loser: a, Verb: verb}
}
