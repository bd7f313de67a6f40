package browser

import (
	"context"
	"errors"
	"time"

	"github.com/entrhq/pilot/pkg/selection"
)

// ErrSessionNotFound is returned when no session has the requested name.
var ErrSessionNotFound = errors.New("browser session not found")

// Backend names accepted in SessionOptions.
const (
	BackendPlaywright = "playwright"
	BackendCDP        = "cdp"
)

// Page is a live browser tab. Besides the primitives the selection engine
// needs, it can navigate and report where it is.
type Page interface {
	selection.Page

	Navigate(ctx context.Context, url string, timeout time.Duration) error
	URL(ctx context.Context) (string, error)
	Title(ctx context.Context) (string, error)
	Close() error
}

// Launcher opens pages for one backend.
type Launcher interface {
	Launch(ctx context.Context, opts SessionOptions) (Page, error)
	// Close releases backend-wide resources, such as the Playwright driver.
	Close() error
}

// SessionOptions configures a new browser session.
type SessionOptions struct {
	// Backend is BackendPlaywright (default) or BackendCDP.
	Backend string

	// Headless controls whether a launched browser shows a window.
	// Ignored when attaching over CDP.
	Headless bool

	// ProfileDir selects a persistent browser profile, so logins survive
	// between runs. Empty means a throwaway profile.
	ProfileDir string

	// CDPURL is the DevTools endpoint of a running Chrome.
	CDPURL string

	Viewport *Viewport

	// Timeout bounds navigation and attaching to the browser.
	Timeout time.Duration

	// ActionTimeout bounds element operations such as clicks.
	ActionTimeout time.Duration
}

// Viewport represents the browser viewport dimensions.
type Viewport struct {
	Width  int
	Height int
}

// SessionInfo contains metadata about a browser session.
type SessionInfo struct {
	Name       string
	Backend    string
	CurrentURL string
	Headless   bool
	CreatedAt  time.Time
	LastUsedAt time.Time
}

// Default values for various operations
const (
	DefaultTimeout        = 30 * time.Second
	DefaultActionTimeout  = 5 * time.Second
	DefaultViewportWidth  = 1280
	DefaultViewportHeight = 800
	DefaultMaxSessions    = 3
	DefaultIdleTimeout    = 15 * time.Minute
)
