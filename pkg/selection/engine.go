package selection

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/entrhq/pilot/pkg/models"
)

// Default waits. All are bounded; a timeout is an ordinary failure path.
const (
	DefaultSettleDelay = 800 * time.Millisecond
	DefaultExpandDelay = 500 * time.Millisecond
	DefaultWaitTimeout = 5 * time.Second
)

// Engine keeps the page's active-model selector in sync with a requested model.
//
// The engine is stateless between calls and performs no locking: callers must
// not run two selections against the same page at once.
type Engine struct {
	validator   *models.Validator
	catalog     *models.Catalog
	families    *models.FamilyMatcher
	strategies  []Strategy
	reasoning   *ReasoningToggle
	logger      Logger
	settleDelay time.Duration
	expandDelay time.Duration
	waitTimeout time.Duration
	useToggle   bool
	sleep       func(context.Context, time.Duration) error
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine's logger.
func WithLogger(l Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithSettleDelay sets the fixed wait after a click that changes selection.
func WithSettleDelay(d time.Duration) Option {
	return func(e *Engine) { e.settleDelay = d }
}

// WithExpandDelay sets the wait after opening the dropdown or its "more" list.
func WithExpandDelay(d time.Duration) Option {
	return func(e *Engine) { e.expandDelay = d }
}

// WithWaitTimeout bounds every element-appearance wait.
func WithWaitTimeout(d time.Duration) Option {
	return func(e *Engine) { e.waitTimeout = d }
}

// WithStrategies replaces the option-matching strategy chain.
func WithStrategies(s ...Strategy) Option {
	return func(e *Engine) {
		if len(s) > 0 {
			e.strategies = s
		}
	}
}

// WithReasoning controls whether the reasoning toggle is engaged for models
// that support it.
func WithReasoning(enabled bool) Option {
	return func(e *Engine) { e.useToggle = enabled }
}

// WithSleep replaces the settle clock. Tests use it to avoid real delays.
func WithSleep(fn func(context.Context, time.Duration) error) Option {
	return func(e *Engine) {
		if fn != nil {
			e.sleep = fn
		}
	}
}

// NewEngine creates an engine that validates input with v.
func NewEngine(v *models.Validator, opts ...Option) (*Engine, error) {
	families, err := models.NewFamilyMatcher(v.Catalog())
	if err != nil {
		return nil, fmt.Errorf("failed to build family matcher: %w", err)
	}

	e := &Engine{
		validator:   v,
		catalog:     v.Catalog(),
		families:    families,
		strategies:  DefaultStrategies(),
		logger:      nopLogger{},
		settleDelay: DefaultSettleDelay,
		expandDelay: DefaultExpandDelay,
		waitTimeout: DefaultWaitTimeout,
		useToggle:   true,
		sleep:       sleepContext,
	}
	for _, opt := range opts {
		opt(e)
	}

	e.reasoning = NewReasoningToggle(e.logger, e.settleDelay)
	e.reasoning.sleep = e.sleep
	return e, nil
}

// Reasoning returns the engine's reasoning-toggle driver.
func (e *Engine) Reasoning() *ReasoningToggle {
	return e.reasoning
}

// result is the internal record of one pass through the state machine.
type result struct {
	switched       bool
	alreadyMatched bool
	verified       bool
	reasoning      bool
	strategy       string
}

// SelectModel makes the page's active model match the canonical name.
// It reports whether the selection is in place or a click was dispatched for
// it; failures are logged and reported as false, never raised.
func (e *Engine) SelectModel(ctx context.Context, page Page, canonical string) bool {
	target, ok := e.catalog.ByName(canonical)
	if !ok {
		e.logger.Warnf("select: %q is not a catalog model", canonical)
		return false
	}
	active, activeText, more := e.detect(ctx, page)
	res := e.run(ctx, page, target, active, activeText, more)
	return res.switched
}

// run is the selection state machine:
// Detect -> AlreadyMatches | Open/Expand -> Search -> Activate -> Settle
// -> (Toggle) -> Verify, with NotFound as the failure terminal.
func (e *Engine) run(ctx context.Context, page Page, target models.ModelConfig, active Element, activeText string, more Element) result {
	label := target.SelectorText

	// Detect
	if active == nil && more == nil {
		e.logger.Warnf("select %s: model selector not found on page", target.Name)
		return result{}
	}

	// AlreadyMatches
	if active != nil && containsFold(activeText, label) {
		e.logger.Infof("select %s: already active (%q)", target.Name, activeText)
		return result{switched: true, alreadyMatched: true, verified: true}
	}

	// Open the dropdown. When only the "more" affordance is rendered, opening
	// it is also the Expand step.
	opener, expanded := active, false
	if opener == nil {
		opener, expanded = more, true
	}
	if err := opener.Click(ctx); err != nil {
		e.logger.Warnf("select %s: failed to open model menu: %v", target.Name, err)
		return result{}
	}
	if err := e.sleep(ctx, e.expandDelay); err != nil {
		e.logger.Warnf("select %s: interrupted while opening menu: %v", target.Name, err)
		return result{}
	}
	if _, err := page.WaitFor(ctx, menuContainerSelector, e.waitTimeout); err != nil {
		// Some variants render options without a menu container; keep searching.
		e.logger.Infof("select %s: no menu container appeared: %v", target.Name, err)
	}

	// Search
	option, strategy := e.search(ctx, page, label)
	if option == nil && !expanded {
		if e.expandInMenu(ctx, page) {
			expanded = true
			option, strategy = e.search(ctx, page, label)
		}
	}
	if option == nil {
		e.closeMenu(ctx, page)
		e.logger.Warnf("select %s: option %q not found after %d strategies", target.Name, label, len(e.strategies))
		return result{}
	}

	// Activate
	clickTarget := option
	if item, err := option.Closest(ctx, menuOptionSelector); err == nil && item != nil {
		clickTarget = item
	}
	if err := clickTarget.Click(ctx); err != nil {
		e.logger.Warnf("select %s: click on option failed: %v", target.Name, err)
		e.closeMenu(ctx, page)
		return result{}
	}
	e.logger.Infof("select %s: clicked option via %s strategy", target.Name, strategy)

	// Settle
	if err := e.sleep(ctx, e.settleDelay); err != nil {
		e.logger.Warnf("select %s: interrupted while settling: %v", target.Name, err)
		return result{strategy: strategy}
	}

	res := result{switched: true, strategy: strategy}

	// Secondary toggle
	if e.useToggle && target.SupportsReasoning {
		res.reasoning = e.reasoning.Enable(ctx, page)
	}

	// Verify. An inconclusive read is logged but does not fail the selection:
	// the click was dispatched.
	if text, ok := e.ActiveModelText(ctx, page); ok && containsFold(text, label) {
		res.verified = true
	} else {
		e.logger.Warnf("select %s: could not verify active model (read %q)", target.Name, text)
	}
	return res
}

func (e *Engine) search(ctx context.Context, page Page, label string) (Element, string) {
	for _, s := range e.strategies {
		if ctx.Err() != nil {
			return nil, ""
		}
		el, err := s.Find(ctx, page, label)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, ""
			}
			e.logger.Warnf("strategy %s failed: %v", s.Name(), err)
			continue
		}
		if el != nil {
			return el, s.Name()
		}
	}
	return nil, ""
}

// expandInMenu clicks a "more" entry rendered inside the open menu, for
// variants that collapse part of the model list.
func (e *Engine) expandInMenu(ctx context.Context, page Page) bool {
	candidates, err := page.QueryAll(ctx, scopeSelector(menuContainerSelector, "*"))
	if err != nil {
		return false
	}
	for _, el := range candidates {
		if !isMoreLabel(elementText(ctx, el)) || !isVisible(ctx, el) {
			continue
		}
		clickTarget := el
		if item, err := el.Closest(ctx, menuOptionSelector); err == nil && item != nil {
			clickTarget = item
		}
		if err := clickTarget.Click(ctx); err != nil {
			e.logger.Warnf("failed to expand model list: %v", err)
			return false
		}
		if err := e.sleep(ctx, e.expandDelay); err != nil {
			return false
		}
		return true
	}
	return false
}

// closeMenu dismisses a menu this engine opened. Best-effort.
func (e *Engine) closeMenu(ctx context.Context, page Page) {
	if err := page.Press(ctx, "Escape"); err != nil {
		e.logger.Infof("failed to close model menu: %v", err)
	}
}

// SelectionOutcome summarizes one Sync call. It is never persisted.
type SelectionOutcome struct {
	RequestedName    string `json:"requested_name" yaml:"requested_name"`
	CanonicalName    string `json:"canonical_name" yaml:"canonical_name"`
	UIAvailable      bool   `json:"ui_available" yaml:"ui_available"`
	Switched         bool   `json:"switched" yaml:"switched"`
	ReasoningEnabled bool   `json:"reasoning_enabled" yaml:"reasoning_enabled"`
	AlreadyMatched   bool   `json:"already_matched" yaml:"already_matched"`
	Verified         bool   `json:"verified" yaml:"verified"`
	Strategy         string `json:"strategy,omitempty" yaml:"strategy,omitempty"`
}

// Sync validates raw, then tries to realize the resulting model in the page.
// CanonicalName is always a valid catalog name, whatever happened in the UI.
func (e *Engine) Sync(ctx context.Context, page Page, raw string) SelectionOutcome {
	out := SelectionOutcome{
		RequestedName: raw,
		CanonicalName: e.validator.GetValidatedModel(raw),
	}
	if page == nil {
		return out
	}

	active, activeText, more := e.detect(ctx, page)
	if active == nil && more == nil {
		e.logger.Warnf("model selection unavailable on page, continuing with %s", out.CanonicalName)
		return out
	}
	out.UIAvailable = true

	target, _ := e.catalog.ByName(out.CanonicalName)
	res := e.run(ctx, page, target, active, activeText, more)

	out.Switched = res.switched
	out.AlreadyMatched = res.alreadyMatched
	out.Verified = res.verified
	out.Strategy = res.strategy
	out.ReasoningEnabled = res.reasoning
	if res.alreadyMatched && e.useToggle && target.SupportsReasoning {
		out.ReasoningEnabled = e.reasoning.IsEnabled(ctx, page)
	}
	if !res.switched {
		e.logger.Warnf("could not switch to %s, the search will use the page's current model", out.CanonicalName)
	}
	return out
}
