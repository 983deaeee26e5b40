// room/room.go
package room

import (
	"sync"
	"time"

	"github.com/wfunc/rpsls/apperr"
	"github.com/wfunc/rpsls/events"
	"github.com/wfunc/rpsls/game"
	"github.com/wfunc/rpsls/models"
	"github.com/wfunc/rpsls/player"
	"github.com/wfunc/rpsls/state"
)

// tickInterval drives OnUpdate for deadline enforcement.
const tickInterval = 250 * time.Millisecond

// Settings are the host-chosen match parameters, fixed at creation.
type Settings struct {
	MaxPlayers int
	BestOf     int
	Password   string
}

func (s Settings) validate() error {
	if s.MaxPlayers < 2 || s.MaxPlayers > 4 {
		return apperr.Validation("max_players must be 2, 3 or 4")
	}
	switch s.BestOf {
	case 1, 3, 5, 7:
	default:
		return apperr.Validation("best_of must be 1, 3, 5 or 7")
	}
	return nil
}

// Room 是一场对局的权威状态。 Every mutation runs under mu and inside the
// state machine's current state, so the event log order reflects the true
// serialized order of accepted mutations.
type Room struct {
	ID       string
	host     string
	settings Settings

	mu      sync.RWMutex
	players []*player.Player
	round   int
	machine state.Machine
	log     *events.Log

	narrator     Narrator
	reporter     ResultReporter
	moveDeadline time.Duration

	createdAt  time.Time
	finishedAt time.Time

	ticker    *time.Ticker
	closeChan chan bool
	closeOnce sync.Once
}

// NewRoom creates a room in LOBBY with the host seated as its only member.
// The host is implicitly ready and never toggles.
func NewRoom(id, hostUser, hostAddr string, settings Settings, narrator Narrator, reporter ResultReporter, moveDeadline time.Duration) *Room {
	r := &Room{
		ID:           id,
		host:         hostUser,
		settings:     settings,
		log:          events.NewLog(),
		narrator:     narrator,
		reporter:     reporter,
		moveDeadline: moveDeadline,
		createdAt:    time.Now(),
		closeChan:    make(chan bool),
	}

	hostSeat := player.New(hostUser, hostAddr)
	hostSeat.Ready = true
	r.players = append(r.players, hostSeat)

	machine := state.NewBaseMachine(state.NewLobbyState(r))
	machine.AddTransition(state.StateLobby, state.StateActive, nil)
	machine.AddTransition(state.StateActive, state.StateFinished, nil)
	r.machine = machine

	r.ticker = time.NewTicker(tickInterval)
	go r.loop()

	return r
}

// --- state.RoomContext implementation. Called with mu already held. ---

func (r *Room) GetID() string    { return r.ID }
func (r *Room) HostUser() string { return r.host }
func (r *Room) MaxPlayers() int  { return r.settings.MaxPlayers }
func (r *Room) BestOf() int      { return r.settings.BestOf }
func (r *Room) Password() string { return r.settings.Password }

func (r *Room) GetPlayers() []*player.Player {
	out := make([]*player.Player, len(r.players))
	copy(out, r.players)
	return out
}

func (r *Room) GetPlayer(username string) (*player.Player, bool) {
	for _, p := range r.players {
		if p.Username == username {
			return p, true
		}
	}
	return nil, false
}

func (r *Room) AddPlayer(p *player.Player) {
	r.players = append(r.players, p)
}

func (r *Room) RemovePlayer(username string) {
	for i, p := range r.players {
		if p.Username == username {
			r.players = append(r.players[:i], r.players[i+1:]...)
			return
		}
	}
}

func (r *Room) CurrentRound() int { return r.round }
func (r *Room) SetRound(n int)    { r.round = n }

func (r *Room) AppendEvent(ev events.Event) {
	r.log.Append(ev)
}

func (r *Room) ChangeState(newState state.State) error {
	if err := r.machine.ChangeState(newState); err != nil {
		return err
	}
	if newState.ID() == state.StateFinished {
		r.finishedAt = time.Now()
	}
	return nil
}

func (r *Room) MoveDeadline() time.Duration { return r.moveDeadline }

func (r *Room) Narrate(a, b game.Move, outcome game.Outcome, edge game.Edge) string {
	if r.narrator == nil {
		return ""
	}
	return r.narrator.Narrate(a, b, outcome, edge)
}

func (r *Room) ReportFinished(result models.MatchResult) {
	if r.reporter == nil {
		return
	}
	// Off the critical section: the store may do network or disk IO.
	go r.reporter.ReportMatch(result)
}

// --- Serialized room operations ---

func (r *Room) Join(username, address, password string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.machine.Current().Join(username, address, password)
}

func (r *Room) ToggleReady(username string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.machine.Current().ToggleReady(username)
}

func (r *Room) Start(byUser string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.machine.Current().Start(byUser)
}

func (r *Room) SubmitMove(username string, move game.Move) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.machine.Current().SubmitMove(username, move)
}

func (r *Room) Emote(username, payload string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.machine.Current().Emote(username, payload)
}

// Leave removes or abandons the seat. It reports whether the room is now
// empty (nobody seated, or the host left an un-started lobby) so the
// registry can collect it.
func (r *Room) Leave(username string) (empty bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current := r.machine.Current()
	if err := current.Leave(username); err != nil {
		return false, err
	}

	if current.ID() == state.StateLobby && username == r.host {
		return true, nil
	}
	for _, p := range r.players {
		if p.Seated() {
			return false, nil
		}
	}
	return true, nil
}

// Snapshot renders the room for polling clients, including the latest
// event for watermark comparison.
func (r *Room) Snapshot() models.RoomSnapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snap := models.RoomSnapshot{
		RoomID:            r.ID,
		Host:              r.host,
		State:             r.machine.Current().ID(),
		Round:             r.round,
		MaxPlayers:        r.settings.MaxPlayers,
		BestOf:            r.settings.BestOf,
		PasswordProtected: r.settings.Password != "",
	}
	for _, p := range r.players {
		snap.Players = append(snap.Players, p.Info())
	}
	if latest, ok := r.log.Latest(); ok {
		snap.LastEvent = &latest
	}
	return snap
}

// EventsSince exposes the replay ring for clients that missed a poll.
func (r *Room) EventsSince(watermark int64) []events.Event {
	return r.log.Since(watermark)
}

// State returns the current lifecycle phase.
func (r *Room) State() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.machine.Current().ID()
}

// Expired reports whether the registry may collect this room: finished past
// the grace window, or nobody seated anymore.
func (r *Room) Expired(now time.Time, grace time.Duration) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.machine.Current().ID() == state.StateFinished && now.Sub(r.finishedAt) > grace {
		return true
	}
	for _, p := range r.players {
		if p.Seated() {
			return false
		}
	}
	return true
}

func (r *Room) loop() {
	for {
		select {
		case <-r.ticker.C:
			r.mu.Lock()
			r.machine.Current().OnUpdate(time.Now())
			r.mu.Unlock()
		case <-r.closeChan:
			r.ticker.Stop()
			return
		}
	}
}

// Close stops the room's tick loop.
func (r *Room) Close() {
	r.closeOnce.Do(func() {
		close(r.closeChan)
	})
}
