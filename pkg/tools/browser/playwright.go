package browser

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/entrhq/pilot/pkg/selection"
)

// playwrightLauncher starts the Playwright driver on first use.
type playwrightLauncher struct {
	mu sync.Mutex
	pw *playwright.Playwright
}

func newPlaywrightLauncher() *playwrightLauncher {
	return &playwrightLauncher{}
}

func (l *playwrightLauncher) driver() (*playwright.Playwright, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.pw != nil {
		return l.pw, nil
	}

	// Discard driver output so it does not interfere with the TUI picker.
	opts := &playwright.RunOptions{
		Browsers: []string{"chromium"},
		Verbose:  false,
		Stdout:   io.Discard,
		Stderr:   io.Discard,
	}
	if err := playwright.Install(opts); err != nil {
		return nil, fmt.Errorf("failed to install playwright: %w", err)
	}
	pw, err := playwright.Run(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}
	l.pw = pw
	return pw, nil
}

// Launch opens Chromium. With a ProfileDir the browser runs on a persistent
// context so cookies and logins are kept between runs.
func (l *playwrightLauncher) Launch(ctx context.Context, opts SessionOptions) (Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	pw, err := l.driver()
	if err != nil {
		return nil, err
	}

	viewport := &playwright.Size{Width: opts.Viewport.Width, Height: opts.Viewport.Height}

	var (
		browser playwright.Browser
		bctx    playwright.BrowserContext
	)
	if opts.ProfileDir != "" {
		bctx, err = pw.Chromium.LaunchPersistentContext(opts.ProfileDir, playwright.BrowserTypeLaunchPersistentContextOptions{
			Headless: &opts.Headless,
			Viewport: viewport,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to launch persistent context: %w", err)
		}
	} else {
		browser, err = pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{Headless: &opts.Headless})
		if err != nil {
			return nil, fmt.Errorf("failed to launch browser: %w", err)
		}
		bctx, err = browser.NewContext(playwright.BrowserNewContextOptions{Viewport: viewport})
		if err != nil {
			browser.Close()
			return nil, fmt.Errorf("failed to create context: %w", err)
		}
	}

	var page playwright.Page
	if pages := bctx.Pages(); len(pages) > 0 {
		page = pages[0]
	} else if page, err = bctx.NewPage(); err != nil {
		bctx.Close()
		if browser != nil {
			browser.Close()
		}
		return nil, fmt.Errorf("failed to create page: %w", err)
	}
	page.SetDefaultNavigationTimeout(float64(opts.Timeout.Milliseconds()))
	page.SetDefaultTimeout(float64(opts.ActionTimeout.Milliseconds()))

	return &PlaywrightPage{page: page, context: bctx, browser: browser, actionTimeout: opts.ActionTimeout}, nil
}

func (l *playwrightLauncher) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.pw == nil {
		return nil
	}
	err := l.pw.Stop()
	l.pw = nil
	if err != nil {
		return fmt.Errorf("failed to stop playwright: %w", err)
	}
	return nil
}

// PlaywrightPage adapts a Playwright page to Page.
type PlaywrightPage struct {
	page    playwright.Page
	context playwright.BrowserContext
	// browser is nil for persistent contexts, which own their browser.
	browser       playwright.Browser
	actionTimeout time.Duration
}

// Navigate implements Page.
func (p *PlaywrightPage) Navigate(ctx context.Context, url string, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	waitUntil := playwright.WaitUntilState("domcontentloaded")
	opts := playwright.PageGotoOptions{WaitUntil: &waitUntil}
	if timeout > 0 {
		opts.Timeout = playwright.Float(float64(timeout.Milliseconds()))
	}
	if _, err := p.page.Goto(url, opts); err != nil {
		return err
	}
	return nil
}

// URL implements Page.
func (p *PlaywrightPage) URL(ctx context.Context) (string, error) {
	return p.page.URL(), ctx.Err()
}

// Title implements Page.
func (p *PlaywrightPage) Title(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return p.page.Title()
}

// Close implements Page.
func (p *PlaywrightPage) Close() error {
	_ = p.page.Close() // the context close below reports real failures
	err := p.context.Close()
	if p.browser != nil {
		if berr := p.browser.Close(); err == nil {
			err = berr
		}
	}
	return err
}

// QueryAll implements selection.Page.
func (p *PlaywrightPage) QueryAll(ctx context.Context, selector string) ([]selection.Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	handles, err := p.page.QuerySelectorAll(selector)
	if err != nil {
		return nil, err
	}
	out := make([]selection.Element, 0, len(handles))
	for _, h := range handles {
		out = append(out, p.element(h))
	}
	return out, nil
}

// WaitFor implements selection.Page.
func (p *PlaywrightPage) WaitFor(ctx context.Context, selector string, timeout time.Duration) (selection.Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	state := playwright.WaitForSelectorState("visible")
	h, err := p.page.WaitForSelector(selector, playwright.PageWaitForSelectorOptions{
		State:   &state,
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	})
	if err != nil {
		return nil, fmt.Errorf("wait for %q: %w (%v)", selector, selection.ErrNotFound, err)
	}
	if h == nil {
		return nil, fmt.Errorf("wait for %q: %w", selector, selection.ErrNotFound)
	}
	return p.element(h), nil
}

func (p *PlaywrightPage) element(h playwright.ElementHandle) *playwrightElement {
	return &playwrightElement{handle: h, timeout: p.actionTimeout}
}

// Evaluate implements selection.Page.
func (p *PlaywrightPage) Evaluate(ctx context.Context, script string, arg interface{}) (interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if arg == nil {
		return p.page.Evaluate(script)
	}
	return p.page.Evaluate(script, arg)
}

// Press implements selection.Page.
func (p *PlaywrightPage) Press(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return p.page.Keyboard().Press(key)
}

type playwrightElement struct {
	handle  playwright.ElementHandle
	timeout time.Duration
}

func (e *playwrightElement) Text(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return e.handle.InnerText()
}

func (e *playwrightElement) Attribute(ctx context.Context, name string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	// GetAttribute cannot tell an empty attribute from a missing one.
	v, err := e.handle.Evaluate(scriptAttribute, name)
	if err != nil {
		return "", false, err
	}
	s, ok := v.(string)
	return s, ok, nil
}

func (e *playwrightElement) Visible(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return e.handle.IsVisible()
}

func (e *playwrightElement) TagName(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	v, err := e.handle.Evaluate(scriptTagName)
	if err != nil {
		return "", err
	}
	s, _ := v.(string)
	return s, nil
}

func (e *playwrightElement) Click(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return e.handle.Click(playwright.ElementHandleClickOptions{
		Timeout: playwright.Float(float64(e.timeout.Milliseconds())),
	})
}

func (e *playwrightElement) Closest(ctx context.Context, selector string) (selection.Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	h, err := e.handle.EvaluateHandle(scriptClosest, selector)
	if err != nil {
		return nil, err
	}
	el := h.AsElement()
	if el == nil {
		return nil, nil
	}
	return &playwrightElement{handle: el, timeout: e.timeout}, nil
}

var (
	_ Page              = (*PlaywrightPage)(nil)
	_ selection.Element = (*playwrightElement)(nil)
)
