package browser

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/entrhq/pilot/pkg/logging"
)

// SessionManager owns every open browser session and the launchers that
// create them.
type SessionManager struct {
	mu          sync.RWMutex
	sessions    map[string]*Session
	launchers   map[string]Launcher
	maxSessions int
	idleTimeout time.Duration
	logger      *logging.Logger
}

// ManagerOption configures a SessionManager.
type ManagerOption func(*SessionManager)

// WithLauncher installs l for backend, replacing the built-in one.
func WithLauncher(backend string, l Launcher) ManagerOption {
	return func(m *SessionManager) { m.launchers[backend] = l }
}

// WithMaxSessions sets the maximum number of concurrent sessions.
func WithMaxSessions(n int) ManagerOption {
	return func(m *SessionManager) { m.maxSessions = n }
}

// WithIdleTimeout sets how long a session may stay unused before
// CleanupIdleSessions closes it.
func WithIdleTimeout(d time.Duration) ManagerOption {
	return func(m *SessionManager) { m.idleTimeout = d }
}

// WithManagerLogger sets the manager's logger.
func WithManagerLogger(l *logging.Logger) ManagerOption {
	return func(m *SessionManager) {
		if l != nil {
			m.logger = l
		}
	}
}

// NewSessionManager creates a session manager with the Playwright and CDP
// launchers installed.
func NewSessionManager(opts ...ManagerOption) *SessionManager {
	m := &SessionManager{
		sessions: make(map[string]*Session),
		launchers: map[string]Launcher{
			BackendPlaywright: newPlaywrightLauncher(),
			BackendCDP:        newCDPLauncher(),
		},
		maxSessions: DefaultMaxSessions,
		idleTimeout: DefaultIdleTimeout,
		logger:      logging.Discard(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// StartSession opens a new tab under name. An empty name gets a generated one.
func (m *SessionManager) StartSession(ctx context.Context, name string, opts SessionOptions) (*Session, error) {
	if name == "" {
		name = "session-" + uuid.NewString()[:8]
	}
	if opts.Backend == "" {
		opts.Backend = BackendPlaywright
	}
	if opts.Viewport == nil {
		opts.Viewport = &Viewport{Width: DefaultViewportWidth, Height: DefaultViewportHeight}
	}
	if opts.Timeout == 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.ActionTimeout == 0 {
		opts.ActionTimeout = DefaultActionTimeout
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[name]; exists {
		return nil, fmt.Errorf("session %q already exists", name)
	}
	if len(m.sessions) >= m.maxSessions {
		return nil, fmt.Errorf("maximum number of sessions (%d) reached", m.maxSessions)
	}
	launcher, ok := m.launchers[opts.Backend]
	if !ok {
		return nil, fmt.Errorf("unknown browser backend %q", opts.Backend)
	}

	page, err := launcher.Launch(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to launch %s session: %w", opts.Backend, err)
	}

	session := newSession(name, opts, page)
	m.sessions[name] = session
	m.logger.WithFields(logging.Fields{"session": name, "backend": opts.Backend}).Infof("session started")
	return session, nil
}

// GetSession retrieves an active session by name.
func (m *SessionManager) GetSession(name string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, exists := m.sessions[name]
	if !exists {
		return nil, fmt.Errorf("%w: %q", ErrSessionNotFound, name)
	}
	return session, nil
}

// CloseSession closes and removes a browser session.
func (m *SessionManager) CloseSession(name string) error {
	m.mu.Lock()
	session, exists := m.sessions[name]
	delete(m.sessions, name)
	m.mu.Unlock()

	if !exists {
		return fmt.Errorf("%w: %q", ErrSessionNotFound, name)
	}
	if err := session.close(); err != nil {
		m.logger.Warnf("closing session %s: %v", name, err)
	}
	m.logger.WithFields(logging.Fields{"session": name}).Infof("session closed")
	return nil
}

// ListSessions returns information about all active sessions, by name.
func (m *SessionManager) ListSessions() []SessionInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()

	infos := make([]SessionInfo, 0, len(m.sessions))
	for _, session := range m.sessions {
		infos = append(infos, session.Info())
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}

// HasSessions returns true if there are any active sessions.
func (m *SessionManager) HasSessions() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions) > 0
}

// CleanupIdleSessions closes sessions unused for longer than the idle
// timeout and returns their names.
func (m *SessionManager) CleanupIdleSessions() []string {
	m.mu.Lock()
	now := time.Now()
	var idle []*Session
	for name, session := range m.sessions {
		if now.Sub(session.LastUsedAt()) > m.idleTimeout {
			idle = append(idle, session)
			delete(m.sessions, name)
		}
	}
	m.mu.Unlock()

	names := make([]string, 0, len(idle))
	for _, session := range idle {
		if err := session.close(); err != nil {
			m.logger.Warnf("closing idle session %s: %v", session.Name, err)
		}
		names = append(names, session.Name)
	}
	sort.Strings(names)
	return names
}

// Shutdown closes all sessions and every launcher.
func (m *SessionManager) Shutdown() error {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	var errs []error
	for name, session := range sessions {
		if err := session.close(); err != nil {
			errs = append(errs, fmt.Errorf("session %s: %w", name, err))
		}
	}
	for backend, l := range m.launchers {
		if err := l.Close(); err != nil {
			errs = append(errs, fmt.Errorf("%s launcher: %w", backend, err))
		}
	}
	return errors.Join(errs...)
}
