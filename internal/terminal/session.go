package terminal

import (
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/parking-service/internal/domain"
)

// Phase tracks the session manager's startup lifecycle. No role view may
// render while the phase is still PhaseChecking.
type Phase int

const (
	PhaseChecking Phase = iota
	PhaseUnauthenticated
	PhaseAuthenticated
)

// SessionManager owns exclusive read/write access to the persisted
// token/role pair. All other components observe sessions through it.
type SessionManager struct {
	mu      sync.Mutex
	store   SessionStore
	logger  *zap.Logger
	phase   Phase
	session domain.Session
}

// NewSessionManager builds a manager in the checking phase; callers must
// Restore before consulting Current.
func NewSessionManager(store SessionStore, logger *zap.Logger) *SessionManager {
	return &SessionManager{store: store, logger: logger, phase: PhaseChecking}
}

// Restore reads the persisted pair. A complete pair yields an
// authenticated session; a partial pair is inconsistent state and both
// entries are cleared.
func (m *SessionManager) Restore() (domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	token, role, err := m.store.Load()
	if err != nil {
		m.phase = PhaseUnauthenticated
		m.session = domain.Session{}
		return m.session, err
	}

	if token == "" || role == "" {
		if token != "" || role != "" {
			m.logger.Warn("partial session pair found; clearing")
			if err := m.store.Clear(); err != nil {
				m.phase = PhaseUnauthenticated
				m.session = domain.Session{}
				return m.session, err
			}
		}
		m.phase = PhaseUnauthenticated
		m.session = domain.Session{}
		return m.session, nil
	}

	m.session = domain.Session{Token: token, Role: domain.Role(role)}
	m.phase = PhaseAuthenticated
	return m.session, nil
}

// Establish persists the pair and transitions to authenticated. Calling it
// again with the same values only re-persists.
func (m *SessionManager) Establish(token string, role domain.Role) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.store.Save(token, string(role)); err != nil {
		return err
	}
	m.session = domain.Session{Token: token, Role: role}
	m.phase = PhaseAuthenticated
	return nil
}

// Terminate clears the persisted pair and all role-derived state. Safe to
// call when already unauthenticated.
func (m *SessionManager) Terminate() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.store.Clear(); err != nil {
		return err
	}
	m.session = domain.Session{}
	m.phase = PhaseUnauthenticated
	return nil
}

// Current returns the session and lifecycle phase.
func (m *SessionManager) Current() (domain.Session, Phase) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session, m.phase
}

// Token returns the bearer credential for collaborator calls, empty when
// unauthenticated.
func (m *SessionManager) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session.Token
}
