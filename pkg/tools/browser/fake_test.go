package browser

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/entrhq/pilot/pkg/snapshot"
)

// fakePage is a snapshot document posing as a live tab.
type fakePage struct {
	*snapshot.Page

	mu      sync.Mutex
	url     string
	title   string
	closed  bool
	navErr  error
	visited []string

	// actionTimeout is what a live page would bound clicks with.
	actionTimeout time.Duration
}

func (p *fakePage) Navigate(ctx context.Context, url string, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.navErr != nil {
		return p.navErr
	}
	p.url = url
	p.visited = append(p.visited, url)
	return nil
}

func (p *fakePage) URL(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.url, nil
}

func (p *fakePage) Title(ctx context.Context) (string, error) {
	return p.title, nil
}

func (p *fakePage) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

func (p *fakePage) isClosed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

// fakeLauncher hands out pages built by newPage.
type fakeLauncher struct {
	mu      sync.Mutex
	newPage func() (*snapshot.Page, error)
	pages   []*fakePage
	opts    []SessionOptions
	err     error
	closed  bool
}

func (l *fakeLauncher) Launch(ctx context.Context, opts SessionOptions) (Page, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return nil, l.err
	}
	doc, err := l.newPage()
	if err != nil {
		return nil, err
	}
	p := &fakePage{Page: doc, title: "Ask anything", actionTimeout: opts.ActionTimeout}
	l.pages = append(l.pages, p)
	l.opts = append(l.opts, opts)
	return p, nil
}

func (l *fakeLauncher) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
	return nil
}

func (l *fakeLauncher) lastOptions(t *testing.T) SessionOptions {
	t.Helper()
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.opts) == 0 {
		t.Fatal("launcher was never called")
	}
	return l.opts[len(l.opts)-1]
}

func blankPage() (*snapshot.Page, error) {
	return snapshot.ParseString(`<html><body><textarea></textarea></body></html>`)
}

// newTestManager installs the same fake launcher for both backends.
func newTestManager(t *testing.T, newPage func() (*snapshot.Page, error), opts ...ManagerOption) (*SessionManager, *fakeLauncher) {
	t.Helper()
	if newPage == nil {
		newPage = blankPage
	}
	l := &fakeLauncher{newPage: newPage}
	opts = append([]ManagerOption{
		WithLauncher(BackendPlaywright, l),
		WithLauncher(BackendCDP, l),
	}, opts...)
	m := NewSessionManager(opts...)
	t.Cleanup(func() { _ = m.Shutdown() })
	return m, l
}

var errLaunch = errors.New("chromium is not installed")
