package selection

import (
	"context"
	"strings"
	"time"
)

// Switch candidates are filtered by label in Go so that matching stays
// case-insensitive whatever selector engine the page controller uses.
const toggleSelector = `[role="switch"], [data-testid*="reasoning"], [data-testid*="thinking"]`

var toggleLabelHints = []string{"reasoning", "thinking", "рассужд", "razonamiento", "raciocínio", "推論"}

// ReasoningToggle drives the reasoning-mode switch rendered next to the
// model dropdown for some model families. Every operation is best-effort:
// failures are logged and reported as false.
type ReasoningToggle struct {
	logger Logger
	settle time.Duration
	sleep  func(context.Context, time.Duration) error
}

// NewReasoningToggle creates a toggle driver that settles for settle after a click.
func NewReasoningToggle(logger Logger, settle time.Duration) *ReasoningToggle {
	if logger == nil {
		logger = nopLogger{}
	}
	return &ReasoningToggle{logger: logger, settle: settle, sleep: sleepContext}
}

func (r *ReasoningToggle) find(ctx context.Context, page Page) Element {
	candidates, err := page.QueryAll(ctx, toggleSelector)
	if err != nil {
		r.logger.Warnf("reasoning toggle query failed: %v", err)
		return nil
	}

	var inMenu Element
	for _, el := range candidates {
		if ctx.Err() != nil {
			return nil
		}
		if !isVisible(ctx, el) {
			continue
		}
		if r.hasHint(ctx, el) {
			return el
		}
		// An unlabeled switch inside the open model menu is the toggle too.
		if inMenu == nil {
			if menu, err := el.Closest(ctx, menuContainerSelector); err == nil && menu != nil {
				inMenu = el
			}
		}
	}
	return inMenu
}

func (r *ReasoningToggle) hasHint(ctx context.Context, el Element) bool {
	var texts []string
	for _, attr := range []string{"aria-label", "data-testid", "title"} {
		if v, ok, _ := el.Attribute(ctx, attr); ok {
			texts = append(texts, v)
		}
	}
	texts = append(texts, elementText(ctx, el))

	for _, t := range texts {
		t = strings.ToLower(t)
		for _, hint := range toggleLabelHints {
			if strings.Contains(t, hint) {
				return true
			}
		}
	}
	return false
}

// IsAvailable reports whether the toggle is rendered.
func (r *ReasoningToggle) IsAvailable(ctx context.Context, page Page) bool {
	return r.find(ctx, page) != nil
}

// IsEnabled reports whether the toggle is present and engaged.
func (r *ReasoningToggle) IsEnabled(ctx context.Context, page Page) bool {
	el := r.find(ctx, page)
	return el != nil && engaged(ctx, el)
}

// Enable switches reasoning mode on. It is a no-op when already engaged.
func (r *ReasoningToggle) Enable(ctx context.Context, page Page) bool {
	el := r.find(ctx, page)
	if el == nil {
		r.logger.Infof("reasoning toggle not present")
		return false
	}
	if engaged(ctx, el) {
		return true
	}

	if err := el.Click(ctx); err != nil {
		r.logger.Warnf("reasoning toggle click failed: %v", err)
		return false
	}
	if err := r.sleep(ctx, r.settle); err != nil {
		r.logger.Warnf("reasoning toggle settle interrupted: %v", err)
		return false
	}

	// Re-query: frameworks often replace the switch node on state change.
	if after := r.find(ctx, page); after != nil {
		if state, known := checkedState(ctx, after); known && !state {
			r.logger.Warnf("reasoning toggle did not engage after click")
			return false
		}
	}
	return true
}

func engaged(ctx context.Context, el Element) bool {
	state, _ := checkedState(ctx, el)
	return state
}

// checkedState reads aria-checked, aria-pressed and data-state.
// known is false when none of them is present.
func checkedState(ctx context.Context, el Element) (state, known bool) {
	for _, attr := range []string{"aria-checked", "aria-pressed"} {
		if v, ok, _ := el.Attribute(ctx, attr); ok {
			return strings.EqualFold(v, "true"), true
		}
	}
	if v, ok, _ := el.Attribute(ctx, "data-state"); ok {
		switch strings.ToLower(v) {
		case "checked", "on":
			return true, true
		case "unchecked", "off":
			return false, true
		}
	}
	return false, false
}
