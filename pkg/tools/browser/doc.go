// Package browser owns real browser pages and exposes them to pilot's
// selection engine and tool surface.
//
// # Architecture
//
//  1. Launcher: opens a Page on one backend. "playwright" launches Chromium
//     through playwright-go, optionally with a persistent profile so logins
//     survive. "cdp" attaches to a Chrome that is already running with
//     --remote-debugging-port, through chromedp.
//  2. Session: a named Page plus bookkeeping (current URL, last use).
//  3. SessionManager: the registry of sessions, with a session limit and
//     idle cleanup.
//  4. Tools: browser_start_session, browser_list_sessions,
//     browser_close_session, browser_navigate and browser_select_model.
//
// Both backends implement selection.Page, so the engine never knows which
// browser it drives.
//
// # Example Usage
//
//	manager := browser.NewSessionManager(browser.WithManagerLogger(logger))
//	defer manager.Shutdown()
//
//	session, err := manager.StartSession(ctx, "main", browser.SessionOptions{
//	    Backend:    browser.BackendPlaywright,
//	    ProfileDir: "/home/me/.pilot/profile",
//	})
//	if err != nil {
//	    return err
//	}
//	if err := session.Navigate(ctx, "https://chat.example.com", 0); err != nil {
//	    return err
//	}
//	outcome := engine.Sync(ctx, session.Page(), "gpt-5.1")
package browser
