package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"

	"github.com/entrhq/pilot/pkg/selection"
)

// refAttr tags elements handed out by CDPPage so later calls can find them
// again with a plain CSS selector.
const refAttr = "data-pilot-ref"

const scriptTagMatches = `(sel) => {
  window.__pilotRef = window.__pilotRef || 0;
  return Array.from(document.querySelectorAll(sel)).map((el) => {
    if (!el.hasAttribute("` + refAttr + `")) {
      el.setAttribute("` + refAttr + `", String(++window.__pilotRef));
    }
    return el.getAttribute("` + refAttr + `");
  });
}`

// scriptOnRef runs an element script against the element tagged with ref.
const scriptOnRef = `(ref, fn, ...args) => {
  const el = document.querySelector('[` + refAttr + `="' + ref + '"]');
  if (!el) throw new Error("element " + ref + " is gone");
  return fn(el, ...args);
}`

// cdpLauncher attaches to a Chrome started with --remote-debugging-port.
type cdpLauncher struct{}

func newCDPLauncher() *cdpLauncher {
	return &cdpLauncher{}
}

// Launch opens a new tab in the remote browser. The browser itself is left
// running when the session closes.
func (l *cdpLauncher) Launch(ctx context.Context, opts SessionOptions) (Page, error) {
	if opts.CDPURL == "" {
		return nil, fmt.Errorf("cdp url is required for the %s backend", BackendCDP)
	}

	// The tab outlives ctx, so it hangs off a background context.
	allocCtx, cancelAlloc := chromedp.NewRemoteAllocator(context.Background(), opts.CDPURL)
	tabCtx, cancelTab := chromedp.NewContext(allocCtx)

	p := &CDPPage{
		tab:        tabCtx,
		timeout:    opts.ActionTimeout,
		navTimeout: opts.Timeout,
		cancel: func() {
			cancelTab()
			cancelAlloc()
		},
	}

	// The first Run allocates the tab and ties it to the context it gets,
	// so it must get tabCtx itself rather than a timeout-derived one.
	errc := make(chan error, 1)
	go func() { errc <- chromedp.Run(tabCtx) }()

	timer := time.NewTimer(opts.Timeout)
	defer timer.Stop()
	select {
	case err := <-errc:
		if err != nil {
			p.cancel()
			return nil, fmt.Errorf("failed to attach to %s: %w", opts.CDPURL, err)
		}
		return p, nil
	case <-ctx.Done():
		p.cancel()
		return nil, ctx.Err()
	case <-timer.C:
		p.cancel()
		return nil, fmt.Errorf("timed out attaching to %s after %s", opts.CDPURL, opts.Timeout)
	}
}

func (l *cdpLauncher) Close() error { return nil }

// CDPPage adapts a chromedp tab to Page.
type CDPPage struct {
	tab    context.Context
	cancel context.CancelFunc
	// timeout bounds element operations; navTimeout bounds page loads.
	timeout    time.Duration
	navTimeout time.Duration
}

// run executes actions on the tab, bounded by ctx and timeout.
func (p *CDPPage) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if timeout <= 0 {
		timeout = p.timeout
	}
	runCtx, cancel := context.WithTimeout(p.tab, timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	err := chromedp.Run(runCtx, actions...)
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

// call evaluates fn(args...) in the page and decodes the result into out.
func (p *CDPPage) call(ctx context.Context, out interface{}, fn string, args ...interface{}) error {
	encoded := make([]string, len(args))
	for i, a := range args {
		if js, ok := a.(jsExpr); ok {
			encoded[i] = string(js)
			continue
		}
		b, err := json.Marshal(a)
		if err != nil {
			return fmt.Errorf("failed to encode script argument: %w", err)
		}
		encoded[i] = string(b)
	}
	expr := fmt.Sprintf("(%s)(%s)", fn, strings.Join(encoded, ", "))
	return p.run(ctx, 0, chromedp.Evaluate(expr, out, func(ep *runtime.EvaluateParams) *runtime.EvaluateParams {
		return ep.WithReturnByValue(true).WithAwaitPromise(true)
	}))
}

// jsExpr is passed to call verbatim instead of JSON-encoded.
type jsExpr string

// Navigate implements Page.
func (p *CDPPage) Navigate(ctx context.Context, url string, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = p.navTimeout
	}
	return p.run(ctx, timeout, chromedp.Navigate(url), chromedp.WaitReady("body", chromedp.ByQuery))
}

// URL implements Page.
func (p *CDPPage) URL(ctx context.Context) (string, error) {
	var u string
	err := p.run(ctx, 0, chromedp.Location(&u))
	return u, err
}

// Title implements Page.
func (p *CDPPage) Title(ctx context.Context) (string, error) {
	var t string
	err := p.run(ctx, 0, chromedp.Title(&t))
	return t, err
}

// Close closes the tab.
func (p *CDPPage) Close() error {
	p.cancel()
	return nil
}

// QueryAll implements selection.Page.
func (p *CDPPage) QueryAll(ctx context.Context, selector string) ([]selection.Element, error) {
	var refs []string
	if err := p.call(ctx, &refs, scriptTagMatches, selector); err != nil {
		return nil, err
	}
	out := make([]selection.Element, 0, len(refs))
	for _, ref := range refs {
		out = append(out, &cdpElement{page: p, ref: ref})
	}
	return out, nil
}

// WaitFor implements selection.Page.
func (p *CDPPage) WaitFor(ctx context.Context, selector string, timeout time.Duration) (selection.Element, error) {
	if err := p.run(ctx, timeout, chromedp.WaitVisible(selector, chromedp.ByQuery)); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("wait for %q: %w (%v)", selector, selection.ErrNotFound, err)
	}

	elements, err := p.QueryAll(ctx, selector)
	if err != nil {
		return nil, err
	}
	for _, el := range elements {
		if ok, _ := el.Visible(ctx); ok {
			return el, nil
		}
	}
	return nil, fmt.Errorf("wait for %q: %w", selector, selection.ErrNotFound)
}

// Evaluate implements selection.Page.
func (p *CDPPage) Evaluate(ctx context.Context, script string, arg interface{}) (interface{}, error) {
	var out interface{}
	if err := p.call(ctx, &out, script, arg); err != nil {
		return nil, err
	}
	return out, nil
}

var keyNames = map[string]string{
	"Escape":    kb.Escape,
	"Enter":     kb.Enter,
	"Tab":       kb.Tab,
	"ArrowDown": kb.ArrowDown,
	"ArrowUp":   kb.ArrowUp,
}

// Press implements selection.Page.
func (p *CDPPage) Press(ctx context.Context, key string) error {
	if k, ok := keyNames[key]; ok {
		key = k
	}
	return p.run(ctx, 0, chromedp.KeyEvent(key))
}

type cdpElement struct {
	page *CDPPage
	ref  string
}

func (e *cdpElement) selector() string {
	return fmt.Sprintf(`[%s="%s"]`, refAttr, e.ref)
}

// eval runs an element script on this element.
func (e *cdpElement) eval(ctx context.Context, out interface{}, script string, args ...interface{}) error {
	all := append([]interface{}{e.ref, jsExpr(script)}, args...)
	return e.page.call(ctx, out, scriptOnRef, all...)
}

func (e *cdpElement) Text(ctx context.Context) (string, error) {
	var s string
	err := e.eval(ctx, &s, scriptInnerText)
	return s, err
}

func (e *cdpElement) Attribute(ctx context.Context, name string) (string, bool, error) {
	var v *string
	if err := e.eval(ctx, &v, scriptAttribute, name); err != nil {
		return "", false, err
	}
	if v == nil {
		return "", false, nil
	}
	return *v, true, nil
}

func (e *cdpElement) Visible(ctx context.Context) (bool, error) {
	var ok bool
	err := e.eval(ctx, &ok, scriptVisible)
	return ok, err
}

func (e *cdpElement) TagName(ctx context.Context) (string, error) {
	var s string
	err := e.eval(ctx, &s, scriptTagName)
	return s, err
}

func (e *cdpElement) Click(ctx context.Context) error {
	return e.page.run(ctx, 0, chromedp.Click(e.selector(), chromedp.ByQuery, chromedp.NodeVisible))
}

func (e *cdpElement) Closest(ctx context.Context, selector string) (selection.Element, error) {
	var ref *string
	script := `(el, sel) => {
  const c = el.closest(sel);
  if (!c) return null;
  if (!c.hasAttribute("` + refAttr + `")) {
    window.__pilotRef = (window.__pilotRef || 0) + 1;
    c.setAttribute("` + refAttr + `", String(window.__pilotRef));
  }
  return c.getAttribute("` + refAttr + `");
}`
	if err := e.eval(ctx, &ref, script, selector); err != nil {
		return nil, err
	}
	if ref == nil {
		return nil, nil
	}
	return &cdpElement{page: e.page, ref: *ref}, nil
}

var (
	_ Page              = (*CDPPage)(nil)
	_ selection.Element = (*cdpElement)(nil)
)
