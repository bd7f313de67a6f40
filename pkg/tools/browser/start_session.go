package browser

import (
	"context"
	"encoding/xml"
	"fmt"

	"github.com/entrhq/pilot/pkg/config"
	"github.com/entrhq/pilot/pkg/tools"
)

// StartSessionTool opens a new browser session.
type StartSessionTool struct {
	manager *SessionManager
}

// NewStartSessionTool creates a new start session tool.
func NewStartSessionTool(manager *SessionManager) *StartSessionTool {
	return &StartSessionTool{manager: manager}
}

// Name returns the tool name.
func (t *StartSessionTool) Name() string {
	return "browser_start_session"
}

// Description returns the tool description.
func (t *StartSessionTool) Description() string {
	return "Open a browser session for model selection. Sessions persist across tool calls until closed. " +
		"Use backend 'cdp' to attach to a Chrome you are already logged in to."
}

// Schema returns the tool's JSON schema.
func (t *StartSessionTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(
		map[string]interface{}{
			"name":        tools.StringProperty("Unique name for the session (e.g., 'main'). Generated when omitted"),
			"backend":     tools.StringProperty("'playwright' to launch Chromium or 'cdp' to attach to a running Chrome"),
			"headless":    tools.BoolProperty("Run a launched browser without a window"),
			"profile_dir": tools.StringProperty("Persistent profile directory so logins survive between runs"),
			"cdp_url":     tools.StringProperty("DevTools endpoint for the cdp backend, e.g. http://127.0.0.1:9222"),
		},
		nil,
	)
}

// StartSessionInput defines the input parameters for starting a browser session.
type StartSessionInput struct {
	XMLName    xml.Name `xml:"arguments"`
	Name       string   `xml:"name"`
	Backend    string   `xml:"backend"`
	Headless   *bool    `xml:"headless"`
	ProfileDir string   `xml:"profile_dir"`
	CDPURL     string   `xml:"cdp_url"`
}

// Execute starts a new browser session.
func (t *StartSessionTool) Execute(ctx context.Context, argsXML []byte) (string, map[string]interface{}, error) {
	var input StartSessionInput
	if err := tools.UnmarshalXMLWithFallback(argsXML, &input); err != nil {
		return "", nil, fmt.Errorf("invalid parameters: %w", err)
	}

	opts, err := t.buildSessionOptions(&input)
	if err != nil {
		return "", nil, err
	}

	session, err := t.manager.StartSession(ctx, input.Name, opts)
	if err != nil {
		return "", nil, fmt.Errorf("failed to start session: %w", err)
	}

	mode := "headed"
	if session.Headless {
		mode = "headless"
	}
	result := fmt.Sprintf(`Browser session started

Session Details:
- Name: %s
- Backend: %s
- Mode: %s

Use browser_navigate to open the chat page, then browser_select_model to switch models.`,
		session.Name, session.Backend, mode)

	return result, map[string]interface{}{"session": session.Name, "backend": session.Backend}, nil
}

// buildSessionOptions layers the tool arguments over the resolved configuration.
func (t *StartSessionTool) buildSessionOptions(input *StartSessionInput) (SessionOptions, error) {
	cli := config.Overrides{
		Backend:    input.Backend,
		Headless:   input.Headless,
		ProfileDir: input.ProfileDir,
		CDPURL:     input.CDPURL,
	}
	settings, err := config.Resolve(cli)
	if err != nil {
		return SessionOptions{}, fmt.Errorf("invalid browser settings: %w", err)
	}
	return OptionsFromSettings(settings), nil
}

// OptionsFromSettings converts resolved settings to session options. Element
// operations share the selection wait timeout so no engine step outlasts it.
func OptionsFromSettings(s config.Settings) SessionOptions {
	return SessionOptions{
		Backend:       s.Browser.Backend,
		Headless:      s.Browser.Headless,
		ProfileDir:    s.Browser.ProfileDir,
		CDPURL:        s.Browser.CDPURL,
		Timeout:       s.Browser.NavigationTimeout,
		ActionTimeout: s.Selection.WaitTimeout,
	}
}

// IsLoopBreaking returns whether this tool breaks the agent loop.
func (t *StartSessionTool) IsLoopBreaking() bool {
	return false
}

// ShouldShow returns whether this tool should be visible.
func (t *StartSessionTool) ShouldShow() bool {
	return true
}
