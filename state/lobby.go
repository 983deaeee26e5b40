package state

import (
	"github.com/wfunc/rpsls/apperr"
	"github.com/wfunc/rpsls/player"
)

// LobbyState gathers players before the match. The host is always
// considered ready; everyone else toggles.
type LobbyState struct {
	baseState
}

func NewLobbyState(room RoomContext) *LobbyState {
	return &LobbyState{baseState{id: StateLobby, room: room}}
}

func (s *LobbyState) Join(username, address, password string) error {
	if s.room.Password() != "" && s.room.Password() != password {
		return apperr.Auth("wrong room password")
	}
	if len(s.room.GetPlayers()) >= s.room.MaxPlayers() {
		return apperr.Conflict("room is full")
	}
	if _, exists := s.room.GetPlayer(username); exists {
		return apperr.Conflict("username %s already in room", username)
	}

	s.room.AddPlayer(player.New(username, address))
	return nil
}

func (s *LobbyState) ToggleReady(username string) error {
	if username == s.room.HostUser() {
		return apperr.Validation("host is always ready")
	}
	p, ok := s.room.GetPlayer(username)
	if !ok {
		return apperr.NotFound("player %s not in room", username)
	}
	p.Ready = !p.Ready
	return nil
}

func (s *LobbyState) Start(byUser string) error {
	if byUser != s.room.HostUser() {
		return apperr.Validation("only the host can start the game")
	}
	players := s.room.GetPlayers()
	if len(players) < 2 {
		return apperr.Validation("need at least 2 players to start")
	}
	for _, p := range players {
		if p.Username != s.room.HostUser() && !p.Ready {
			return apperr.Validation("player %s is not ready", p.Username)
		}
	}

	return s.room.ChangeState(NewActiveState(s.room))
}

func (s *LobbyState) Leave(username string) error {
	if _, ok := s.room.GetPlayer(username); !ok {
		return apperr.NotFound("player %s not in room", username)
	}
	s.room.RemovePlayer(username)
	return nil
}
