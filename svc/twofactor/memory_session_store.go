package twofactor

import (
	"context"
	"slices"
	"sync"
	"time"
)

type memorySession struct {
	enrollment Enrollment
	expiresAt  time.Time
}

// MemorySessionStore keeps enrollment sessions in process memory. Expired
// sessions are dropped lazily on access.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]memorySession
	now      func() time.Time
}

// MemorySessionOption configures a MemorySessionStore.
type MemorySessionOption func(*MemorySessionStore)

// WithSessionClock replaces time.Now for expiry checks.
func WithSessionClock(now func() time.Time) MemorySessionOption {
	return func(m *MemorySessionStore) {
		if now != nil {
			m.now = now
		}
	}
}

func NewMemorySessionStore(opts ...MemorySessionOption) *MemorySessionStore {
	m := &MemorySessionStore{
		sessions: make(map[string]memorySession),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *MemorySessionStore) Create(_ context.Context, e *Enrollment, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[e.ID]; ok && m.now().Before(s.expiresAt) {
		return ErrEnrollmentExists
	}
	e.Revision = 1
	m.sessions[e.ID] = memorySession{enrollment: cloneEnrollment(e), expiresAt: m.now().Add(ttl)}
	return nil
}

func (m *MemorySessionStore) Get(_ context.Context, id string) (*Enrollment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.live(id)
	if !ok {
		return nil, ErrEnrollmentNotFound
	}
	e := cloneEnrollment(&s.enrollment)
	return &e, nil
}

func (m *MemorySessionStore) Update(_ context.Context, e *Enrollment, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.live(e.ID)
	if !ok {
		return ErrEnrollmentNotFound
	}
	if s.enrollment.Revision != e.Revision {
		return ErrRevisionMismatch
	}
	e.Revision++
	m.sessions[e.ID] = memorySession{enrollment: cloneEnrollment(e), expiresAt: m.now().Add(ttl)}
	return nil
}

func (m *MemorySessionStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

// live must be called with mu held.
func (m *MemorySessionStore) live(id string) (memorySession, bool) {
	s, ok := m.sessions[id]
	if !ok {
		return memorySession{}, false
	}
	if !m.now().Before(s.expiresAt) {
		delete(m.sessions, id)
		return memorySession{}, false
	}
	return s, true
}

func cloneEnrollment(e *Enrollment) Enrollment {
	c := *e
	c.SealedSecret = slices.Clone(e.SealedSecret)
	c.SealedRecoveryCodes = slices.Clone(e.SealedRecoveryCodes)
	c.RecoveryCodeHashes = slices.Clone(e.RecoveryCodeHashes)
	return c
}
