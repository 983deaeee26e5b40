// Package state implements the room lifecycle as a state machine with one
// state per phase (LOBBY, ACTIVE, FINISHED). Each state declares exactly
// the operations valid in it; everything else fails with a Conflict before
// touching room data.
package state

import (
	"errors"
	"time"

	"github.com/wfunc/rpsls/apperr"
	"github.com/wfunc/rpsls/game"
)

const (
	StateLobby    = "lobby"
	StateActive   = "active"
	StateFinished = "finished"
)

// State is one lifecycle phase. Operation methods run with the room lock
// held; OnUpdate is driven by the room's tick loop.
type State interface {
	ID() string
	OnEnter()
	OnExit()
	OnUpdate(now time.Time)

	Join(username, address, password string) error
	ToggleReady(username string) error
	Start(byUser string) error
	SubmitMove(username string, move game.Move) error
	Emote(username, payload string) error
	Leave(username string) error
}

// Machine guards lifecycle transitions.
type Machine interface {
	ChangeState(newState State) error
	Current() State
	AddTransition(from, to string, condition func() bool)
}

// ErrTransitionNotAllowed is returned when a transition is not registered
// or its condition fails.
var ErrTransitionNotAllowed = errors.New("state transition not allowed")

// BaseMachine is a strict transition table: only registered edges may be
// taken. A room transitions LOBBY -> ACTIVE -> FINISHED and nothing else,
// so FINISHED is terminal by construction.
type BaseMachine struct {
	current     State
	transitions map[string]map[string]func() bool
}

// NewBaseMachine starts the machine in initialState and fires its OnEnter.
// The machine itself is unsynchronized; the owning room serializes access.
func NewBaseMachine(initialState State) *BaseMachine {
	m := &BaseMachine{
		current:     initialState,
		transitions: make(map[string]map[string]func() bool),
	}
	initialState.OnEnter()
	return m
}

func (m *BaseMachine) AddTransition(from, to string, condition func() bool) {
	if _, ok := m.transitions[from]; !ok {
		m.transitions[from] = make(map[string]func() bool)
	}
	m.transitions[from][to] = condition
}

func (m *BaseMachine) ChangeState(newState State) error {
	condition, ok := m.transitions[m.current.ID()][newState.ID()]
	if !ok {
		return ErrTransitionNotAllowed
	}
	if condition != nil && !condition() {
		return ErrTransitionNotAllowed
	}

	m.current.OnExit()
	m.current = newState
	m.current.OnEnter()
	return nil
}

func (m *BaseMachine) Current() State {
	return m.current
}

// baseState rejects every operation; concrete states override what their
// phase permits.
type baseState struct {
	id   string
	room RoomContext
}

func (s *baseState) ID() string             { return s.id }
func (s *baseState) OnEnter()               {}
func (s *baseState) OnExit()                {}
func (s *baseState) OnUpdate(now time.Time) {}

func (s *baseState) notAllowed(op string) error {
	return apperr.Conflict("%s not allowed while room is %s", op, s.id)
}

func (s *baseState) Join(username, address, password string) error {
	return s.notAllowed("join")
}

func (s *baseState) ToggleReady(username string) error {
	return s.notAllowed("toggle ready")
}

func (s *baseState) Start(byUser string) error {
	return s.notAllowed("start")
}

func (s *baseState) SubmitMove(username string, move game.Move) error {
	return s.notAllowed("move submission")
}

func (s *baseState) Emote(username, payload string) error {
	return s.notAllowed("emote")
}

func (s *baseState) Leave(username string) error {
	return s.notAllowed("leave")
}
