package room

import "sync"

// Registry is the storage backend behind the Manager. The default is an
// in-process map; the interface exists so a persistent or distributed
// backend can be swapped in without touching room semantics.
type Registry interface {
	Put(r *Room)
	Get(id string) (*Room, bool)
	Delete(id string)
	All() []*Room
	Len() int
}

type memoryRegistry struct {
	mu    sync.RWMutex
	rooms map[string]*Room
}

// NewMemoryRegistry returns the map-backed registry used by default. Its
// lock guards only the map; in-room mutation is serialized per room.
func NewMemoryRegistry() Registry {
	return &memoryRegistry{rooms: make(map[string]*Room)}
}

func (m *memoryRegistry) Put(r *Room) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rooms[r.ID] = r
}

func (m *memoryRegistry) Get(id string) (*Room, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, exists := m.rooms[id]
	return r, exists
}

func (m *memoryRegistry) Delete(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rooms, id)
}

func (m *memoryRegistry) All() []*Room {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Room, 0, len(m.rooms))
	for _, r := range m.rooms {
		out = append(out, r)
	}
	return out
}

func (m *memoryRegistry) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rooms)
}
