package selection

import (
	"context"
	"errors"
	"strings"
	"time"
)

// ErrNotFound is returned by Page.WaitFor when no element appeared in time.
var ErrNotFound = errors.New("element not found")

// Page is the subset of a browser page controller the engine drives.
// Implementations own the browser lifecycle; the engine only issues these
// primitives, one at a time.
type Page interface {
	// QueryAll returns every element matching a CSS selector, in document order.
	QueryAll(ctx context.Context, selector string) ([]Element, error)

	// WaitFor blocks until a visible element matches selector or timeout elapses.
	// A timeout is reported as an error wrapping ErrNotFound.
	WaitFor(ctx context.Context, selector string, timeout time.Duration) (Element, error)

	// Evaluate runs a JavaScript function expression in the page with one argument.
	Evaluate(ctx context.Context, script string, arg interface{}) (interface{}, error)

	// Press dispatches a keyboard key ("Escape", "Enter", ...) to the page.
	Press(ctx context.Context, key string) error
}

// Element is a handle to one DOM element.
type Element interface {
	// Text returns the rendered text (innerText), without hidden descendants.
	Text(ctx context.Context) (string, error)
	// Attribute returns the attribute value and whether it is present.
	Attribute(ctx context.Context, name string) (string, bool, error)
	Visible(ctx context.Context) (bool, error)
	TagName(ctx context.Context) (string, error)
	Click(ctx context.Context) error
	// Closest returns the nearest ancestor-or-self matching selector, or nil.
	Closest(ctx context.Context, selector string) (Element, error)
}

// Logger is the passive observer the engine reports to.
type Logger interface {
	Infof(format string, v ...interface{})
	Warnf(format string, v ...interface{})
	Errorf(format string, v ...interface{})
}

type nopLogger struct{}

func (nopLogger) Infof(string, ...interface{})  {}
func (nopLogger) Warnf(string, ...interface{})  {}
func (nopLogger) Errorf(string, ...interface{}) {}

// ScriptDocumentLang reads the page's declared language.
const ScriptDocumentLang = `() => (document.documentElement && document.documentElement.lang) || ""`

// normalizeText collapses whitespace runs so labels compare regardless of layout.
func normalizeText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// elementText returns the normalized text of el, or "" on error.
func elementText(ctx context.Context, el Element) string {
	text, err := el.Text(ctx)
	if err != nil {
		return ""
	}
	return normalizeText(text)
}

func isVisible(ctx context.Context, el Element) bool {
	visible, err := el.Visible(ctx)
	return err == nil && visible
}

// sleepContext waits for d or until ctx is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
