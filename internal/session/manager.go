package session

import "sync"

// Manager holds the single live session on behalf of a menu or frontend.
type Manager struct {
	opts Options

	mu      sync.Mutex
	current *Session
}

// NewManager returns a manager that creates sessions from opts.
func NewManager(opts Options) *Manager {
	return &Manager{opts: opts}
}

// Start tears down the live session, if any, then creates a fresh one. On
// error no session is live.
func (m *Manager) Start() (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current != nil {
		m.current.Teardown()
		m.current = nil
	}
	s, err := New(m.opts)
	if err != nil {
		return nil, err
	}
	m.current = s
	return s, nil
}

// Stop tears down the live session.
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current != nil {
		m.current.Teardown()
		m.current = nil
	}
}

// Current returns the live session or nil.
func (m *Manager) Current() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Reseed changes the seed used by the next Start. Zero means time-based.
func (m *Manager) Reseed(seed int64) {
	m.mu.Lock()
	m.opts.Seed = seed
	m.mu.Unlock()
}
