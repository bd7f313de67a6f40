package selection

import (
	"context"
	"fmt"
	"strings"
)

// Strategy locates the dropdown option for a model label.
// Strategies are tried in order until one returns an element.
type Strategy interface {
	Name() string
	// Find returns the best element whose text contains label, or nil.
	Find(ctx context.Context, page Page, label string) (Element, error)
}

const (
	menuOptionSelector    = `[role="menuitem"], [role="menuitemradio"], [role="option"]`
	menuContainerSelector = `[role="menu"], [role="listbox"], [data-radix-popper-content-wrapper], [data-headlessui-portal]`
	portalSelector        = `[data-radix-popper-content-wrapper], [data-headlessui-portal], [data-portal], body > div[id^="headlessui-portal"]`
)

// Tags that never render text a user could click.
var technicalTags = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"template": true,
	"head":     true,
	"meta":     true,
	"link":     true,
}

// selectorStrategy matches elements returned by a fixed selector.
type selectorStrategy struct {
	name     string
	selector string
	// filterTags drops technical nodes; needed only for unscoped selectors.
	filterTags bool
}

// MenuRoleStrategy looks for option roles inside an open menu or listbox.
func MenuRoleStrategy() Strategy {
	return &selectorStrategy{name: "menu-role", selector: menuOptionSelector}
}

// PortalStrategy scans descendants of portal-rendered popovers, which are
// mounted at the end of <body> rather than next to their trigger.
func PortalStrategy() Strategy {
	return &selectorStrategy{name: "portal", selector: scopeSelector(portalSelector, "*")}
}

// DocumentTextStrategy scans every element in the document.
func DocumentTextStrategy() Strategy {
	return &selectorStrategy{name: "document-text", selector: "body *", filterTags: true}
}

// DefaultStrategies returns the scoped-first strategy chain.
func DefaultStrategies() []Strategy {
	return []Strategy{MenuRoleStrategy(), PortalStrategy(), DocumentTextStrategy()}
}

func (s *selectorStrategy) Name() string { return s.name }

func (s *selectorStrategy) Find(ctx context.Context, page Page, label string) (Element, error) {
	elements, err := page.QueryAll(ctx, s.selector)
	if err != nil {
		return nil, fmt.Errorf("%s query failed: %w", s.name, err)
	}

	var (
		best    Element
		bestLen int
	)
	for _, el := range elements {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		text := elementText(ctx, el)
		if text == "" || !containsFold(text, label) {
			continue
		}
		// Keep the innermost candidate: the shortest text that still contains the label.
		if best != nil && len(text) >= bestLen {
			continue
		}
		if s.filterTags {
			tag, err := el.TagName(ctx)
			if err != nil || technicalTags[strings.ToLower(tag)] {
				continue
			}
		}
		if !isVisible(ctx, el) {
			continue
		}
		best, bestLen = el, len(text)
	}
	return best, nil
}

// scopeSelector prefixes every selector in a comma list with scope.
func scopeSelector(list, inner string) string {
	parts := strings.Split(list, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p) + " " + inner
	}
	return strings.Join(parts, ", ")
}
