package state

import (
	"github.com/wfunc/rpsls/apperr"
	"github.com/wfunc/rpsls/events"
)

// FinishedState is terminal: only reads, emotes and leaving remain valid.
type FinishedState struct {
	baseState
}

func NewFinishedState(room RoomContext) *FinishedState {
	return &FinishedState{baseState{id: StateFinished, room: room}}
}

func (s *FinishedState) Emote(username, payload string) error {
	if _, ok := s.room.GetPlayer(username); !ok {
		return apperr.NotFound("player %s not in room", username)
	}
	s.room.AppendEvent(events.Event{
		Type:  events.TypeEmote,
		Emote: &events.EmotePayload{From: username, Emote: payload},
	})
	return nil
}

func (s *FinishedState) Leave(username string) error {
	p, ok := s.room.GetPlayer(username)
	if !ok {
		return apperr.NotFound("player %s not in room", username)
	}
	p.Abandoned = true
	return nil
}
