package core

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jo-hoe/qrcollector/internal/backend/database"
)

// PageSession is the server-side state of one browser page: its upload form
// and its admin toggle. The toggle only changes what is rendered.
type PageSession struct {
	ID   string
	Form *Form

	mu       sync.Mutex
	admin    bool
	lastSeen time.Time
}

func (s *PageSession) IsAdmin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.admin
}

// ToggleAdmin flips the admin view and returns the new value.
func (s *PageSession) ToggleAdmin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.admin = !s.admin
	return s.admin
}

func (s *PageSession) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *PageSession) idleSince(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastSeen)
}

// SessionManager keeps page sessions in memory. Idle sessions are evicted
// lazily whenever a new session is created.
type SessionManager struct {
	mu          sync.Mutex
	sessions    map[string]*PageSession
	idleTimeout time.Duration
	store       database.DatabaseService
	now         func() time.Time
}

func NewSessionManager(store database.DatabaseService, idleTimeout time.Duration) *SessionManager {
	return &SessionManager{
		sessions:    make(map[string]*PageSession),
		idleTimeout: idleTimeout,
		store:       store,
		now:         time.Now,
	}
}

// Get returns the session for id, creating a fresh one when id is unknown or
// expired. created reports whether the caller must hand out a new id.
func (m *SessionManager) Get(id string) (session *PageSession, created bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if s, ok := m.sessions[id]; ok && s.idleSince(now) <= m.idleTimeout {
		s.touch(now)
		return s, false
	}

	m.evictLocked(now)
	s := &PageSession{
		ID:       uuid.NewString(),
		Form:     NewForm(m.store),
		lastSeen: now,
	}
	m.sessions[s.ID] = s
	return s, true
}

func (m *SessionManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *SessionManager) evictLocked(now time.Time) {
	for id, s := range m.sessions {
		if s.idleSince(now) > m.idleTimeout {
			delete(m.sessions, id)
		}
	}
}
