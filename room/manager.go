package room

import (
	"time"

	"github.com/google/uuid"

	"github.com/wfunc/rpsls/logger"
	"github.com/wfunc/rpsls/timer"
)

// gcSweepInterval is how often the registry looks for collectable rooms.
const gcSweepInterval = 30 * time.Second

// Manager coordinates room creation and lookup over a Registry backend.
// In-room mutation is serialized by each room's lock, so unrelated rooms
// mutate concurrently.
type Manager struct {
	registry Registry

	narrator      Narrator
	reporter      ResultReporter
	moveDeadline  time.Duration
	finishedGrace time.Duration
}

func NewManager(narrator Narrator, reporter ResultReporter, moveDeadline, finishedGrace time.Duration) *Manager {
	return NewManagerWithRegistry(NewMemoryRegistry(), narrator, reporter, moveDeadline, finishedGrace)
}

// NewManagerWithRegistry is the injection seam for a non-default storage
// backend.
func NewManagerWithRegistry(registry Registry, narrator Narrator, reporter ResultReporter, moveDeadline, finishedGrace time.Duration) *Manager {
	return &Manager{
		registry:      registry,
		narrator:      narrator,
		reporter:      reporter,
		moveDeadline:  moveDeadline,
		finishedGrace: finishedGrace,
	}
}

// CreateRoom allocates a room in LOBBY with the host as sole member.
func (m *Manager) CreateRoom(hostUser, hostAddr string, settings Settings) (*Room, error) {
	if err := settings.validate(); err != nil {
		return nil, err
	}

	r := NewRoom(uuid.New().String(), hostUser, hostAddr, settings, m.narrator, m.reporter, m.moveDeadline)
	m.registry.Put(r)
	return r, nil
}

func (m *Manager) GetRoom(id string) (*Room, bool) {
	return m.registry.Get(id)
}

func (m *Manager) RemoveRoom(id string) {
	if r, exists := m.registry.Get(id); exists {
		r.Close()
		m.registry.Delete(id)
	}
}

func (m *Manager) Count() int {
	return m.registry.Len()
}

// StartGC schedules the sweep that collects finished rooms after the grace
// window and rooms everyone has left.
func (m *Manager) StartGC(sched *timer.Scheduler) int64 {
	return sched.Every(gcSweepInterval, m.sweep)
}

func (m *Manager) sweep() {
	now := time.Now()

	for _, r := range m.registry.All() {
		if r.Expired(now, m.finishedGrace) {
			logger.Log.Infof("Collecting room %s", r.ID)
			m.RemoveRoom(r.ID)
		}
	}
}
