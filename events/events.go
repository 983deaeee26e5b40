// Package events holds the per-room event log that polling guests replicate
// from. The host is the only writer; readers diff the latest timestamp
// against their own watermark.
package events

import (
	"sync"
	"time"

	"github.com/wfunc/rpsls/game"
)

type Type string

const (
	TypeGameStart Type = "game_start"
	TypeRoundOver Type = "round_over"
	TypeGameOver  Type = "game_over"
	TypeEmote     Type = "emote"
)

// Event is a tagged variant: exactly one payload pointer is set, matching
// the Type tag.
type Event struct {
	Type      Type              `json:"type"`
	Timestamp int64             `json:"timestamp"`
	GameStart *GameStartPayload `json:"game_start,omitempty"`
	RoundOver *RoundOverPayload `json:"round_over,omitempty"`
	GameOver  *GameOverPayload  `json:"game_over,omitempty"`
	Emote     *EmotePayload     `json:"emote,omitempty"`
}

type GameStartPayload struct {
	Players []string `json:"players"`
	BestOf  int      `json:"best_of"`
}

// RoundOverPayload carries each player's revealed move and the score
// snapshot after the round.
type RoundOverPayload struct {
	Round      int                  `json:"round"`
	Moves      map[string]game.Move `json:"moves"`
	Scores     map[string]int       `json:"scores"`
	RoundWins  map[string]int       `json:"round_wins"`
	Winner     string               `json:"winner,omitempty"`
	Commentary string               `json:"commentary,omitempty"`
}

type GameOverPayload struct {
	Winner    string               `json:"winner"`
	Round     int                  `json:"round"`
	Moves     map[string]game.Move `json:"moves"`
	Scores    map[string]int       `json:"scores"`
	RoundWins map[string]int       `json:"round_wins"`
}

type EmotePayload struct {
	From  string `json:"from"`
	Emote string `json:"emote"`
}

// replayDepth bounds the ring of recent events kept for Since queries.
// Pollers only need the latest event; the ring is a courtesy for clients
// that missed a tick.
const replayDepth = 32

// Log is one room's append-only event log. Timestamps are strictly
// increasing within the log and never reused, even when the wall clock
// stalls or steps backwards.
type Log struct {
	mu     sync.RWMutex
	lastTS int64
	latest *Event
	ring   []Event
}

func NewLog() *Log {
	return &Log{}
}

// Append stamps and stores the event. The caller owns nothing afterwards;
// events are never mutated once appended.
func (l *Log) Append(ev Event) Event {
	l.mu.Lock()
	defer l.mu.Unlock()

	ts := time.Now().UnixNano()
	if ts <= l.lastTS {
		ts = l.lastTS + 1
	}
	l.lastTS = ts
	ev.Timestamp = ts

	l.latest = &ev
	l.ring = append(l.ring, ev)
	if len(l.ring) > replayDepth {
		l.ring = l.ring[len(l.ring)-replayDepth:]
	}
	return ev
}

// Latest returns the newest event, if any.
func (l *Log) Latest() (Event, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.latest == nil {
		return Event{}, false
	}
	return *l.latest, true
}

// Since returns buffered events newer than the watermark, oldest first.
// A client that advances its watermark to the last returned timestamp
// observes each event at most once, regardless of duplicate polls.
func (l *Log) Since(watermark int64) []Event {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []Event
	for _, ev := range l.ring {
		if ev.Timestamp > watermark {
			out = append(out, ev)
		}
	}
	return out
}
