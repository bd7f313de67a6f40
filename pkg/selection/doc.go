// Package selection drives a chat application's model dropdown so that the
// active model matches a requested one.
//
// # State machine
//
// Each selection runs once, top to bottom:
//
//  1. Detect: scan interactive controls for the chip that displays the active
//     model, and for a collapsed "more options" affordance.
//  2. AlreadyMatches: when the chip already shows the target label, stop
//     without touching the page.
//  3. Open/Expand: click the chip (or the "more" affordance) and wait for the
//     menu container.
//  4. Search: run each Strategy in order until one returns an option. When
//     nothing matches, a "more" entry inside the menu is expanded and the
//     search runs once more.
//  5. Activate and Settle: click the option, then wait a fixed delay.
//  6. Toggle: engage the reasoning switch for models that support it.
//  7. Verify: re-read the chip. A failed read is logged, not raised.
//
// Not finding the option closes the menu with Escape and reports failure.
// Every wait is bounded and every failure is reported through the Logger and
// the returned SelectionOutcome; nothing in this package panics or returns
// an error to the caller of Sync.
//
// # Page controllers
//
// The engine talks to the browser only through Page and Element. The
// pkg/tools/browser package implements them for Playwright and for Chrome
// DevTools, and pkg/snapshot implements them over static HTML.
package selection
