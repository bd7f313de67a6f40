package selection

import (
	"context"
	"strings"
	"unicode/utf8"
)

const controlSelector = `button, [role="button"], [aria-haspopup]`

// Controls wider than this many characters are toolbars or thread titles, not
// the model chip.
const maxControlTextLen = 64

// Labels of the collapsed "more options" affordance: en, ru, es, pt, ja.
var moreLabels = []string{
	"more",
	"more models",
	"more options",
	"ещё",
	"еще",
	"больше",
	"другие модели",
	"ещё варианты",
	"еще варианты",
	"más",
	"más opciones",
	"más modelos",
	"mais",
	"mais opções",
	"mais modelos",
	"もっと見る",
	"その他",
	"その他のオプション",
	"その他のモデル",
}

func isMoreLabel(text string) bool {
	text = strings.ToLower(normalizeText(text))
	for _, l := range moreLabels {
		if text == l {
			return true
		}
	}
	return false
}

// Capabilities describes the UI variant currently rendered.
type Capabilities struct {
	// ActiveControl displays the active model; nil when not found.
	ActiveControl Element
	// ActiveText is the normalized text of ActiveControl.
	ActiveText string
	// MoreControl is the collapsed "more options" affordance; nil when absent.
	MoreControl Element
	// HasReasoningToggle reports whether a reasoning-mode switch is rendered.
	HasReasoningToggle bool
	// PortalMenu reports whether a popover is mounted through a portal.
	PortalMenu bool
	// Locale is the document language, when declared.
	Locale string
}

// HasMoreAffordance reports whether the collapsed list affordance was found.
func (c Capabilities) HasMoreAffordance() bool {
	return c.MoreControl != nil
}

// Available reports whether any model-selection control was found.
func (c Capabilities) Available() bool {
	return c.ActiveControl != nil || c.MoreControl != nil
}

// detect scans interactive controls for the active-model chip and the "more"
// affordance. A control whose text is exactly a "more" label is never taken
// as the active model.
func (e *Engine) detect(ctx context.Context, page Page) (active Element, activeText string, more Element) {
	controls, err := page.QueryAll(ctx, controlSelector)
	if err != nil {
		e.logger.Warnf("control scan failed: %v", err)
		return nil, "", nil
	}

	var fallback Element
	var fallbackText string
	for _, el := range controls {
		if ctx.Err() != nil {
			break
		}

		text := elementText(ctx, el)
		if text == "" {
			if label, ok, _ := el.Attribute(ctx, "aria-label"); ok {
				text = normalizeText(label)
			}
		}
		if text == "" || utf8.RuneCountInString(text) > maxControlTextLen {
			continue
		}

		if isMoreLabel(text) {
			if more == nil && isVisible(ctx, el) {
				more = el
			}
			continue
		}
		if !e.families.Match(text) || !isVisible(ctx, el) {
			continue
		}

		// Prefer a control that announces a popup; fall back to the first match.
		if _, ok, _ := el.Attribute(ctx, "aria-haspopup"); ok && active == nil {
			active, activeText = el, text
		} else if fallback == nil {
			fallback, fallbackText = el, text
		}
	}

	if active == nil {
		active, activeText = fallback, fallbackText
	}
	return active, activeText, more
}

// Probe inspects the page and reports the capabilities of the rendered UI.
func (e *Engine) Probe(ctx context.Context, page Page) Capabilities {
	var caps Capabilities
	caps.ActiveControl, caps.ActiveText, caps.MoreControl = e.detect(ctx, page)
	caps.HasReasoningToggle = e.reasoning.IsAvailable(ctx, page)

	if portals, err := page.QueryAll(ctx, portalSelector); err == nil && len(portals) > 0 {
		caps.PortalMenu = true
	}

	if v, err := page.Evaluate(ctx, ScriptDocumentLang, nil); err == nil {
		if lang, ok := v.(string); ok {
			caps.Locale = lang
		}
	}
	return caps
}

// IsModelSelectionAvailable reports whether the page shows a model control
// or the "more options" affordance.
func (e *Engine) IsModelSelectionAvailable(ctx context.Context, page Page) bool {
	active, _, more := e.detect(ctx, page)
	return active != nil || more != nil
}

// ActiveModelText returns the text of the control showing the active model.
func (e *Engine) ActiveModelText(ctx context.Context, page Page) (string, bool) {
	active, text, _ := e.detect(ctx, page)
	return text, active != nil
}
