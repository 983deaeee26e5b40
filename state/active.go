package state

import (
	"time"

	"github.com/wfunc/rpsls/apperr"
	"github.com/wfunc/rpsls/events"
	"github.com/wfunc/rpsls/game"
	"github.com/wfunc/rpsls/models"
	"github.com/wfunc/rpsls/player"
)

// ActiveState runs the best-of-N series. A round resolves synchronously,
// inside the same critical section as the final move submission, so the
// event order always reflects the serialized mutation order.
type ActiveState struct {
	baseState
	roundStartedAt time.Time
	drawnRounds    int
}

func NewActiveState(room RoomContext) *ActiveState {
	return &ActiveState{baseState: baseState{id: StateActive, room: room}}
}

func (s *ActiveState) OnEnter() {
	s.room.SetRound(1)
	s.roundStartedAt = time.Now()

	var names []string
	for _, p := range s.room.GetPlayers() {
		p.ResetRound()
		names = append(names, p.Username)
	}

	s.room.AppendEvent(events.Event{
		Type: events.TypeGameStart,
		GameStart: &events.GameStartPayload{
			Players: names,
			BestOf:  s.room.BestOf(),
		},
	})
}

func (s *ActiveState) SubmitMove(username string, move game.Move) error {
	p, ok := s.room.GetPlayer(username)
	if !ok {
		return apperr.NotFound("player %s not in room", username)
	}
	if p.Abandoned {
		return apperr.Conflict("player %s has left the match", username)
	}
	if p.HasMoved() {
		return apperr.Conflict("player %s already moved this round", username)
	}

	m := move
	p.Move = &m

	if s.roundComplete() {
		s.resolveRound()
	}
	return nil
}

func (s *ActiveState) Emote(username, payload string) error {
	if _, ok := s.room.GetPlayer(username); !ok {
		return apperr.NotFound("player %s not in room", username)
	}
	s.room.AppendEvent(events.Event{
		Type:  events.TypeEmote,
		Emote: &events.EmotePayload{From: username, Emote: payload},
	})
	return nil
}

// Leave records an abandonment: the seat stays (scores remain visible) but
// the player exits future pairwise scoring. The room wrapper destroys the
// room when nobody is left.
func (s *ActiveState) Leave(username string) error {
	p, ok := s.room.GetPlayer(username)
	if !ok {
		return apperr.NotFound("player %s not in room", username)
	}
	if p.Abandoned {
		return nil
	}
	p.Abandoned = true
	p.ResetRound()

	seated := s.seated()
	switch {
	case len(seated) == 1:
		// A series cannot continue with one participant.
		s.finish(seated[0].Username, nil)
	case len(seated) >= 2 && s.roundComplete():
		s.resolveRound()
	}
	return nil
}

// OnUpdate enforces the move-submission deadline so the resolver can never
// stall waiting on a silent player.
func (s *ActiveState) OnUpdate(now time.Time) {
	deadline := s.room.MoveDeadline()
	if deadline <= 0 || now.Sub(s.roundStartedAt) < deadline {
		return
	}

	movers := 0
	for _, p := range s.seated() {
		if p.HasMoved() {
			movers++
		}
	}
	if movers == 0 {
		// Nothing to score; restart the window.
		s.roundStartedAt = now
		return
	}
	s.resolveRound()
}

func (s *ActiveState) seated() []*player.Player {
	var out []*player.Player
	for _, p := range s.room.GetPlayers() {
		if p.Seated() {
			out = append(out, p)
		}
	}
	return out
}

func (s *ActiveState) roundComplete() bool {
	seated := s.seated()
	if len(seated) < 2 {
		return false
	}
	for _, p := range seated {
		if !p.HasMoved() {
			return false
		}
	}
	return true
}

// resolveRound scores the current round. Every ordered pair of movers is
// resolved against the beats table; a player's score delta is the number of
// opponents beaten. Seated players without a move (deadline forfeit)
// concede their pairings. Round-win credit goes to the strictly highest
// pairwise-win count; any tie, including an all-draw round, awards nothing.
func (s *ActiveState) resolveRound() {
	seated := s.seated()

	var movers []*player.Player
	for _, p := range seated {
		if p.HasMoved() {
			movers = append(movers, p)
		}
	}

	roundWins := make(map[string]int, len(seated))
	for _, p := range seated {
		roundWins[p.Username] = 0
	}

	var (
		lastEdge    game.Edge
		lastOutcome game.Outcome
	)
	for i := 0; i < len(movers); i++ {
		for j := i + 1; j < len(movers); j++ {
			outcome, edge := game.Resolve(*movers[i].Move, *movers[j].Move)
			switch outcome {
			case game.WinA:
				roundWins[movers[i].Username]++
			case game.WinB:
				roundWins[movers[j].Username]++
			}
			lastEdge, lastOutcome = edge, outcome
		}
	}
	forfeited := len(seated) - len(movers)
	for _, p := range movers {
		roundWins[p.Username] += forfeited
	}

	moves := make(map[string]game.Move, len(movers))
	for _, p := range movers {
		moves[p.Username] = *p.Move
	}

	// Apply score deltas and find a strict round winner.
	var winner *player.Player
	tie := false
	for _, p := range seated {
		p.Score += roundWins[p.Username]
		switch {
		case winner == nil || roundWins[p.Username] > roundWins[winner.Username]:
			winner, tie = p, false
		case roundWins[p.Username] == roundWins[winner.Username]:
			tie = true
		}
	}

	winnerName := ""
	if winner != nil && !tie && roundWins[winner.Username] > 0 {
		winner.RoundWins++
		winnerName = winner.Username
	} else {
		s.drawnRounds++
	}

	commentary := ""
	if len(movers) == 2 {
		commentary = s.room.Narrate(*movers[0].Move, *movers[1].Move, lastOutcome, lastEdge)
	}

	for _, p := range s.room.GetPlayers() {
		p.ResetRound()
	}

	// Termination: first tally to reach ceil(best_of/2) ends the series;
	// game_over supersedes round_over on that tick.
	target := s.room.BestOf()/2 + 1
	if winnerName != "" {
		if p, _ := s.room.GetPlayer(winnerName); p != nil && p.RoundWins >= target {
			s.finish(winnerName, moves)
			return
		}
	}

	s.room.AppendEvent(events.Event{
		Type: events.TypeRoundOver,
		RoundOver: &events.RoundOverPayload{
			Round:      s.room.CurrentRound(),
			Moves:      moves,
			Scores:     s.scoreSnapshot(),
			RoundWins:  s.tallySnapshot(),
			Winner:     winnerName,
			Commentary: commentary,
		},
	})

	s.room.SetRound(s.room.CurrentRound() + 1)
	s.roundStartedAt = time.Now()
}

func (s *ActiveState) scoreSnapshot() map[string]int {
	out := make(map[string]int)
	for _, p := range s.room.GetPlayers() {
		out[p.Username] = p.Score
	}
	return out
}

func (s *ActiveState) tallySnapshot() map[string]int {
	out := make(map[string]int)
	for _, p := range s.room.GetPlayers() {
		out[p.Username] = p.RoundWins
	}
	return out
}

func (s *ActiveState) finish(winnerName string, finalMoves map[string]game.Move) {
	s.room.AppendEvent(events.Event{
		Type: events.TypeGameOver,
		GameOver: &events.GameOverPayload{
			Winner:    winnerName,
			Round:     s.room.CurrentRound(),
			Moves:     finalMoves,
			Scores:    s.scoreSnapshot(),
			RoundWins: s.tallySnapshot(),
		},
	})

	result := models.MatchResult{
		RoomID:       s.room.GetID(),
		Winner:       winnerName,
		BestOf:       s.room.BestOf(),
		RoundsPlayed: s.room.CurrentRound(),
		FinishedAt:   time.Now(),
	}
	for _, p := range s.room.GetPlayers() {
		pr := models.ParticipantResult{
			Username: p.Username,
			Draws:    s.drawnRounds,
			Winner:   p.Username == winnerName,
		}
		if pr.Winner {
			pr.Wins = 1
		} else {
			pr.Losses = 1
		}
		result.Participants = append(result.Participants, pr)
	}

	if err := s.room.ChangeState(NewFinishedState(s.room)); err != nil {
		return
	}
	s.room.ReportFinished(result)
}
