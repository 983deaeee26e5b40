package state

import (
	"testing"
	"time"

	"github.com/wfunc/rpsls/game"
)

// mockState tracks lifecycle calls for machine tests.
type mockState struct {
	id             string
	onEnterCalled  bool
	onExitCalled   bool
	onUpdateCalled bool
}

func (m *mockState) ID() string             { return m.id }
func (m *mockState) OnEnter()               { m.onEnterCalled = true }
func (m *mockState) OnExit()                { m.onExitCalled = true }
func (m *mockState) OnUpdate(now time.Time) { m.onUpdateCalled = true }

func (m *mockState) Join(username, address, password string) error      { return nil }
func (m *mockState) ToggleReady(username string) error                  { return nil }
func (m *mockState) Start(byUser string) error                          { return nil }
func (m *mockState) SubmitMove(username string, move game.Move) error   { return nil }
func (m *mockState) Emote(username, payload string) error               { return nil }
func (m *mockState) Leave(username string) error                        { return nil }

func (m *mockState) reset() {
	m.onEnterCalled = false
	m.onExitCalled = false
	m.onUpdateCalled = false
}

func TestMachine_InitialState(t *testing.T) {
	initial := &mockState{id: "initial"}
	m := NewBaseMachine(initial)

	if !initial.onEnterCalled {
		t.Error("Expected OnEnter to be called on the initial state")
	}
	if m.Current() != initial {
		t.Error("Current should return the initial state")
	}
}

func TestMachine_RegisteredTransition(t *testing.T) {
	a := &mockState{id: "A"}
	b := &mockState{id: "B"}

	m := NewBaseMachine(a)
	m.AddTransition("A", "B", nil)
	a.reset()

	if err := m.ChangeState(b); err != nil {
		t.Fatalf("ChangeState failed: %v", err)
	}
	if !a.onExitCalled {
		t.Error("Expected OnExit on the old state")
	}
	if !b.onEnterCalled {
		t.Error("Expected OnEnter on the new state")
	}
	if m.Current() != b {
		t.Error("Current should return the new state")
	}
}

func TestMachine_UnregisteredTransitionBlocked(t *testing.T) {
	a := &mockState{id: "A"}
	c := &mockState{id: "C"}

	m := NewBaseMachine(a)
	a.reset()

	if err := m.ChangeState(c); err != ErrTransitionNotAllowed {
		t.Fatalf("expected ErrTransitionNotAllowed, got %v", err)
	}
	if m.Current() != a {
		t.Error("current state must not change on a blocked transition")
	}
	if a.onExitCalled || c.onEnterCalled {
		t.Error("no lifecycle hooks may fire on a blocked transition")
	}
}

func TestMachine_ConditionBlocks(t *testing.T) {
	a := &mockState{id: "A"}
	b := &mockState{id: "B"}

	m := NewBaseMachine(a)
	allowed := false
	m.AddTransition("A", "B", func() bool { return allowed })

	if err := m.ChangeState(b); err != ErrTransitionNotAllowed {
		t.Fatalf("expected ErrTransitionNotAllowed while condition is false, got %v", err)
	}

	allowed = true
	if err := m.ChangeState(b); err != nil {
		t.Fatalf("expected transition once condition holds, got %v", err)
	}
	if m.Current().ID() != "B" {
		t.Errorf("current = %s, want B", m.Current().ID())
	}
}
