package session

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/suricata-ml/dashboard/internal/analyzer"
	"github.com/suricata-ml/dashboard/internal/dashboard"
	"github.com/suricata-ml/dashboard/internal/storage"
)

// DefaultMaxSessions limits live dashboards to bound memory and disk use.
const DefaultMaxSessions = 1000

// Manager holds one dashboard controller per visitor.
type Manager struct {
	sessions    map[string]*SessionState
	mu          sync.RWMutex
	store       storage.Store
	analyzer    analyzer.Analyzer
	recorder    dashboard.Recorder
	maxSessions int
}

// SessionState holds a visitor's controller and its last access time.
type SessionState struct {
	Controller   *dashboard.Controller
	CreatedAt    time.Time
	LastAccessed time.Time
}

// NewManager creates a session manager whose dashboards share store and analyzer.
func NewManager(store storage.Store, a analyzer.Analyzer, rec dashboard.Recorder) *Manager {
	return &Manager{
		sessions:    make(map[string]*SessionState),
		store:       store,
		analyzer:    a,
		recorder:    rec,
		maxSessions: DefaultMaxSessions,
	}
}

// SetMaxSessions changes the session cap. Values below 1 are ignored.
func (m *Manager) SetMaxSessions(n int) {
	if n < 1 {
		return
	}
	m.mu.Lock()
	m.maxSessions = n
	m.mu.Unlock()
}

// Get returns the controller for id and refreshes its access time.
func (m *Manager) Get(id string) (*dashboard.Controller, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, ok := m.sessions[id]
	if !ok {
		return nil, false
	}
	state.LastAccessed = time.Now()
	return state.Controller, true
}

// GetOrCreate returns the controller for id, creating a new session when id
// is unknown. The second result reports whether a session was created.
func (m *Manager) GetOrCreate(id string) (*dashboard.Controller, bool) {
	if c, ok := m.Get(id); ok {
		return c, false
	}
	return m.Create(), true
}

// Create starts a new session with an empty dashboard.
func (m *Manager) Create() *dashboard.Controller {
	id := uuid.New().String()
	now := time.Now()
	c := dashboard.NewController(id, m.store, m.analyzer, m.recorder)

	m.mu.Lock()
	evicted := m.evictIfFullLocked()
	m.sessions[id] = &SessionState{
		Controller:   c,
		CreatedAt:    now,
		LastAccessed: now,
	}
	m.mu.Unlock()

	for _, old := range evicted {
		old.Close()
	}
	return c
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// evictIfFullLocked drops the least recently used sessions so one more fits.
func (m *Manager) evictIfFullLocked() []*dashboard.Controller {
	toFree := len(m.sessions) - m.maxSessions + 1
	if toFree <= 0 {
		return nil
	}

	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return m.sessions[ids[i]].LastAccessed.Before(m.sessions[ids[j]].LastAccessed)
	})

	evicted := make([]*dashboard.Controller, 0, toFree)
	for _, id := range ids[:toFree] {
		evicted = append(evicted, m.sessions[id].Controller)
		delete(m.sessions, id)
	}
	fmt.Printf("[Session] Evicted %d least recently used sessions (limit %d)\n", len(evicted), m.maxSessions)
	return evicted
}

// CleanupOldSessions removes sessions not accessed within maxAge and
// releases their stored files. It returns the number removed.
func (m *Manager) CleanupOldSessions(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)

	m.mu.Lock()
	var expired []*dashboard.Controller
	for id, state := range m.sessions {
		if state.LastAccessed.Before(cutoff) {
			expired = append(expired, state.Controller)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, c := range expired {
		c.Close()
	}
	if len(expired) > 0 {
		fmt.Printf("[Session] Cleaned up %d idle sessions\n", len(expired))
	}
	return len(expired)
}
