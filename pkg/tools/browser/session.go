package browser

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Session is a named browser tab that survives across tool calls.
type Session struct {
	Name      string
	Backend   string
	Headless  bool
	CreatedAt time.Time

	page Page

	mu         sync.Mutex
	lastUsedAt time.Time
	currentURL string
}

func newSession(name string, opts SessionOptions, page Page) *Session {
	now := time.Now()
	return &Session{
		Name:       name,
		Backend:    opts.Backend,
		Headless:   opts.Headless,
		CreatedAt:  now,
		page:       page,
		lastUsedAt: now,
		currentURL: "about:blank",
	}
}

// Page returns the session's tab and marks the session as used.
func (s *Session) Page() Page {
	s.touch()
	return s.page
}

func (s *Session) touch() {
	s.mu.Lock()
	s.lastUsedAt = time.Now()
	s.mu.Unlock()
}

// LastUsedAt returns the time of the last operation on the session.
func (s *Session) LastUsedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsedAt
}

// CurrentURL returns the URL recorded after the last navigation.
func (s *Session) CurrentURL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentURL
}

// Navigate loads url and records where the tab ended up.
func (s *Session) Navigate(ctx context.Context, url string, timeout time.Duration) error {
	s.touch()

	if err := s.page.Navigate(ctx, url, timeout); err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}

	current, err := s.page.URL(ctx)
	if err != nil || current == "" {
		current = url
	}
	s.mu.Lock()
	s.currentURL = current
	s.mu.Unlock()
	return nil
}

// Info returns a snapshot of the session's metadata.
func (s *Session) Info() SessionInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SessionInfo{
		Name:       s.Name,
		Backend:    s.Backend,
		CurrentURL: s.currentURL,
		Headless:   s.Headless,
		CreatedAt:  s.CreatedAt,
		LastUsedAt: s.lastUsedAt,
	}
}

func (s *Session) close() error {
	return s.page.Close()
}
