// Package snapshot implements selection.Page over a static HTML document.
//
// It lets the selection engine run against a saved copy of the target page
// without a browser: `pilot inspect` uses it to show which controls and
// strategies would be used, and tests use it with click hooks that mutate
// the document the way the live application would.
package snapshot

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/entrhq/pilot/pkg/selection"
)

// ClickHook runs after an element is clicked. It may mutate the document.
type ClickHook func(p *Page, el *Element)

// KeyHook runs after a key is pressed.
type KeyHook func(p *Page, key string)

// ScriptFunc answers a Page.Evaluate call for one script.
type ScriptFunc func(p *Page, arg interface{}) (interface{}, error)

// Page is an in-memory document that records every interaction.
type Page struct {
	mu      sync.Mutex
	doc     *goquery.Document
	clicks  []string
	keys    []string
	onClick []ClickHook
	onKey   []KeyHook
	scripts map[string]ScriptFunc
}

// Parse reads an HTML document.
func Parse(r io.Reader) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse snapshot: %w", err)
	}
	p := &Page{doc: doc, scripts: make(map[string]ScriptFunc)}
	p.scripts[selection.ScriptDocumentLang] = func(p *Page, _ interface{}) (interface{}, error) {
		lang, _ := p.doc.Find("html").Attr("lang")
		return lang, nil
	}
	return p, nil
}

// ParseString reads an HTML document from a string.
func ParseString(s string) (*Page, error) {
	return Parse(strings.NewReader(s))
}

// Load reads an HTML document from a file.
func Load(path string) (*Page, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// OnClick registers a hook that runs after every click.
func (p *Page) OnClick(h ClickHook) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onClick = append(p.onClick, h)
}

// OnKey registers a hook that runs after every key press.
func (p *Page) OnKey(h KeyHook) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onKey = append(p.onKey, h)
}

// HandleScript answers Evaluate calls for script.
func (p *Page) HandleScript(script string, fn ScriptFunc) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.scripts[script] = fn
}

// Clicks returns a description of every clicked element, in order.
func (p *Page) Clicks() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.clicks...)
}

// Keys returns every pressed key, in order.
func (p *Page) Keys() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.keys...)
}

// Find returns the first element matching selector, or nil.
func (p *Page) Find(selector string) *Element {
	s := p.doc.Find(selector).First()
	if s.Length() == 0 {
		return nil
	}
	return &Element{page: p, sel: s}
}

// HTML renders the current document.
func (p *Page) HTML() (string, error) {
	return p.doc.Html()
}

// QueryAll implements selection.Page.
func (p *Page) QueryAll(ctx context.Context, selector string) ([]selection.Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	found := p.doc.Find(selector)
	out := make([]selection.Element, 0, found.Length())
	found.Each(func(_ int, s *goquery.Selection) {
		out = append(out, &Element{page: p, sel: s})
	})
	return out, nil
}

// WaitFor implements selection.Page. A static document never changes on its
// own, so the wait resolves immediately.
func (p *Page) WaitFor(ctx context.Context, selector string, timeout time.Duration) (selection.Element, error) {
	elements, err := p.QueryAll(ctx, selector)
	if err != nil {
		return nil, err
	}
	for _, el := range elements {
		if ok, _ := el.Visible(ctx); ok {
			return el, nil
		}
	}
	return nil, fmt.Errorf("wait for %q (%s): %w", selector, timeout, selection.ErrNotFound)
}

// Evaluate implements selection.Page for scripts registered with HandleScript.
func (p *Page) Evaluate(ctx context.Context, script string, arg interface{}) (interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.mu.Lock()
	fn, ok := p.scripts[script]
	p.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("script evaluation is not supported by snapshots")
	}
	return fn(p, arg)
}

// Press implements selection.Page.
func (p *Page) Press(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	p.keys = append(p.keys, key)
	hooks := append([]KeyHook(nil), p.onKey...)
	p.mu.Unlock()

	for _, h := range hooks {
		h(p, key)
	}
	return nil
}

// Element is one node of a snapshot document.
type Element struct {
	page *Page
	sel  *goquery.Selection
}

// Node returns the underlying HTML node.
func (e *Element) Node() *html.Node {
	return e.sel.Get(0)
}

// Selection exposes the goquery selection for hooks that rewrite the document.
func (e *Element) Selection() *goquery.Selection {
	return e.sel
}

// Describe renders a short human-readable identity: tag, role and text.
func (e *Element) Describe() string {
	tag := goquery.NodeName(e.sel)
	if role, ok := e.sel.Attr("role"); ok {
		tag += fmt.Sprintf("[role=%s]", role)
	}
	return fmt.Sprintf("%s %q", tag, strings.Join(strings.Fields(e.sel.Text()), " "))
}

// Text implements selection.Element. Like innerText, it leaves out the text
// of hidden descendants.
func (e *Element) Text(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			switch c.Type {
			case html.TextNode:
				b.WriteString(c.Data)
			case html.ElementNode:
				if !hiddenNode(c) {
					walk(c)
				}
			}
		}
	}
	walk(e.Node())
	return b.String(), nil
}

// Attribute implements selection.Element.
func (e *Element) Attribute(ctx context.Context, name string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	v, ok := e.sel.Attr(name)
	return v, ok, nil
}

// TagName implements selection.Element.
func (e *Element) TagName(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return goquery.NodeName(e.sel), nil
}

// Visible implements selection.Element. An element is hidden when it or an
// ancestor is a non-rendered tag, carries the hidden attribute or
// aria-hidden="true", or has an inline display:none / visibility:hidden style.
func (e *Element) Visible(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	for n := e.Node(); n != nil; n = n.Parent {
		if n.Type != html.ElementNode {
			continue
		}
		if hiddenNode(n) {
			return false, nil
		}
	}
	return true, nil
}

func hiddenNode(n *html.Node) bool {
	switch n.Data {
	case "script", "style", "template", "noscript", "head":
		return true
	}
	for _, a := range n.Attr {
		switch a.Key {
		case "hidden":
			return true
		case "aria-hidden":
			if a.Val == "true" {
				return true
			}
		case "style":
			style := strings.ReplaceAll(strings.ToLower(a.Val), " ", "")
			if strings.Contains(style, "display:none") || strings.Contains(style, "visibility:hidden") {
				return true
			}
		}
	}
	return false
}

// Click implements selection.Element: it records the click and runs hooks.
func (e *Element) Click(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if ok, _ := e.Visible(ctx); !ok {
		return fmt.Errorf("element is not visible: %s", e.Describe())
	}

	p := e.page
	p.mu.Lock()
	p.clicks = append(p.clicks, e.Describe())
	hooks := append([]ClickHook(nil), p.onClick...)
	p.mu.Unlock()

	for _, h := range hooks {
		h(p, e)
	}
	return nil
}

// Closest implements selection.Element.
func (e *Element) Closest(ctx context.Context, selector string) (selection.Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c := e.sel.Closest(selector)
	if c.Length() == 0 {
		return nil, nil
	}
	return &Element{page: e.page, sel: c}, nil
}

var (
	_ selection.Page    = (*Page)(nil)
	_ selection.Element = (*Element)(nil)
)
