package quiz

import (
	"sync"
	"time"
)

// Manager holds the quiz sessions of every browser, keyed by an opaque session id.
type Manager struct {
	mu        sync.Mutex
	sessions  map[string]*Session
	submitter Submitter
	opts      []Option
}

func NewManager(submitter Submitter, opts ...Option) *Manager {
	return &Manager{
		sessions:  make(map[string]*Session),
		submitter: submitter,
		opts:      opts,
	}
}

// Session returns the session of id, creating it in Browsing if needed.
func (m *Manager) Session(id string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		s = NewSession(m.submitter, m.opts...)
		m.sessions[id] = s
	}
	return s
}

// Lookup returns the session of id without creating it.
func (m *Manager) Lookup(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Remove tears the session of id down, stopping its countdown.
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if ok {
		_ = s.Close()
	}
}

// EvictIdle tears down every session untouched for longer than maxIdle and returns how many went.
func (m *Manager) EvictIdle(maxIdle time.Duration) int {
	threshold := nowFunc().Add(-maxIdle)

	m.mu.Lock()
	idle := make([]*Session, 0)
	for id, s := range m.sessions {
		if s.LastActive().Before(threshold) {
			idle = append(idle, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, s := range idle {
		_ = s.Close()
	}
	return len(idle)
}

// Shutdown tears every session down.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	all := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range all {
		_ = s.Close()
	}
}

func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
