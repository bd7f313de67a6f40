package snapshot

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/pilot/pkg/selection"
)

const fixture = `<!DOCTYPE html>
<html lang="es"><head><title>t</title><style>.x{}</style></head>
<body>
  <button id="chip" aria-haspopup="menu">  Claude
     Sonnet 4.6 </button>
  <div id="menu" role="menu" hidden><div role="menuitem">GPT-5.1</div></div>
  <div id="styled" style="Display: None">styled</div>
  <div id="invisible" style="visibility:hidden">invisible</div>
  <div aria-hidden="true"><span id="aria">aria</span></div>
  <ul><li id="mixed">Visible<span hidden>Secret</span></li></ul>
</body></html>`

func mustParse(t *testing.T) *Page {
	t.Helper()
	p, err := ParseString(fixture)
	require.NoError(t, err)
	return p
}

func TestQueryAllAndText(t *testing.T) {
	p := mustParse(t)
	ctx := context.Background()

	els, err := p.QueryAll(ctx, `[aria-haspopup]`)
	require.NoError(t, err)
	require.Len(t, els, 1)

	text, err := els[0].Text(ctx)
	require.NoError(t, err)
	assert.Contains(t, text, "Sonnet 4.6")

	tag, err := els[0].TagName(ctx)
	require.NoError(t, err)
	assert.Equal(t, "button", tag)

	v, ok, err := els[0].Attribute(ctx, "aria-haspopup")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "menu", v)

	_, ok, err = els[0].Attribute(ctx, "aria-expanded")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTextSkipsHiddenDescendants(t *testing.T) {
	p := mustParse(t)
	text, err := p.Find("#mixed").Text(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Visible", text)
}

func TestVisible(t *testing.T) {
	p := mustParse(t)
	ctx := context.Background()

	tests := []struct {
		selector string
		want     bool
	}{
		{"#chip", true},
		{"#menu", false},
		{`#menu [role="menuitem"]`, false},
		{"#styled", false},
		{"#invisible", false},
		{"#aria", false},
		{"style", false},
		{"#mixed", true},
	}
	for _, tt := range tests {
		t.Run(tt.selector, func(t *testing.T) {
			el := p.Find(tt.selector)
			require.NotNil(t, el)
			got, err := el.Visible(ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClickRecordsAndRunsHooks(t *testing.T) {
	p := mustParse(t)
	ctx := context.Background()

	var seen []string
	p.OnClick(func(p *Page, el *Element) {
		seen = append(seen, el.Describe())
		p.Find("#menu").Selection().RemoveAttr("hidden")
	})

	require.NoError(t, p.Find("#chip").Click(ctx))
	assert.Equal(t, []string{`button "Claude Sonnet 4.6"`}, p.Clicks())
	assert.Equal(t, p.Clicks(), seen)

	item := p.Find(`[role="menuitem"]`)
	visible, err := item.Visible(ctx)
	require.NoError(t, err)
	assert.True(t, visible, "hook revealed the menu")
	assert.Equal(t, `div[role=menuitem] "GPT-5.1"`, item.Describe())
}

func TestClickHiddenElementFails(t *testing.T) {
	p := mustParse(t)
	err := p.Find("#menu").Click(context.Background())
	assert.Error(t, err)
	assert.Empty(t, p.Clicks())
}

func TestWaitFor(t *testing.T) {
	p := mustParse(t)
	ctx := context.Background()

	el, err := p.WaitFor(ctx, "button", time.Second)
	require.NoError(t, err)
	tag, _ := el.TagName(ctx)
	assert.Equal(t, "button", tag)

	_, err = p.WaitFor(ctx, `[role="menu"]`, time.Second)
	assert.ErrorIs(t, err, selection.ErrNotFound)
}

func TestClosest(t *testing.T) {
	p := mustParse(t)
	ctx := context.Background()

	item := p.Find(`[role="menuitem"]`)
	menu, err := item.Closest(ctx, `[role="menu"]`)
	require.NoError(t, err)
	require.NotNil(t, menu)
	id, _, _ := menu.Attribute(ctx, "id")
	assert.Equal(t, "menu", id)

	none, err := item.Closest(ctx, `[role="listbox"]`)
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestEvaluateAndPress(t *testing.T) {
	p := mustParse(t)
	ctx := context.Background()

	lang, err := p.Evaluate(ctx, selection.ScriptDocumentLang, nil)
	require.NoError(t, err)
	assert.Equal(t, "es", lang)

	_, err = p.Evaluate(ctx, "() => document.title", nil)
	assert.Error(t, err)

	p.HandleScript("() => document.title", func(p *Page, _ interface{}) (interface{}, error) {
		return p.doc.Find("title").Text(), nil
	})
	title, err := p.Evaluate(ctx, "() => document.title", nil)
	require.NoError(t, err)
	assert.Equal(t, "t", title)

	var pressed string
	p.OnKey(func(_ *Page, key string) { pressed = key })
	require.NoError(t, p.Press(ctx, "Escape"))
	assert.Equal(t, []string{"Escape"}, p.Keys())
	assert.Equal(t, "Escape", pressed)
}

func TestCancelledContext(t *testing.T) {
	p := mustParse(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.QueryAll(ctx, "button")
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, p.Press(ctx, "Escape"), context.Canceled)
	assert.Empty(t, p.Keys())
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "page.html")
	require.NoError(t, os.WriteFile(path, []byte(fixture), 0o644))

	p, err := Load(path)
	require.NoError(t, err)
	assert.NotNil(t, p.Find("#chip"))

	_, err = Load(filepath.Join(t.TempDir(), "missing.html"))
	assert.Error(t, err)
}
