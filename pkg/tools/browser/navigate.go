package browser

import (
	"context"
	"encoding/xml"
	"fmt"

	"github.com/entrhq/pilot/pkg/config"
	"github.com/entrhq/pilot/pkg/tools"
)

// NavigateTool navigates to a URL in a browser session.
type NavigateTool struct {
	manager *SessionManager
}

// NewNavigateTool creates a new navigate tool.
func NewNavigateTool(manager *SessionManager) *NavigateTool {
	return &NavigateTool{manager: manager}
}

// Name returns the tool name.
func (t *NavigateTool) Name() string {
	return "browser_navigate"
}

// Description returns the tool description.
func (t *NavigateTool) Description() string {
	return "Open a URL in a browser session. Without a url, the configured base_url is opened."
}

// Schema returns the tool's JSON schema.
func (t *NavigateTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(
		map[string]interface{}{
			"session": tools.StringProperty("Name of the browser session to use"),
			"url":     tools.StringProperty("Absolute URL to open, including the scheme"),
		},
		[]string{"session"},
	)
}

// NavigateInput represents the parameters for navigation.
type NavigateInput struct {
	XMLName xml.Name `xml:"arguments"`
	Session string   `xml:"session"`
	URL     string   `xml:"url"`
}

// Execute navigates to a URL.
func (t *NavigateTool) Execute(ctx context.Context, argsXML []byte) (string, map[string]interface{}, error) {
	var input NavigateInput
	if err := tools.UnmarshalXMLWithFallback(argsXML, &input); err != nil {
		return "", nil, fmt.Errorf("invalid parameters: %w", err)
	}
	if input.Session == "" {
		return "", nil, fmt.Errorf("session name is required")
	}

	settings, err := config.Resolve(config.Overrides{BaseURL: input.URL})
	if err != nil {
		return "", nil, fmt.Errorf("invalid browser settings: %w", err)
	}
	target := settings.Browser.BaseURL
	if target == "" {
		return "", nil, fmt.Errorf("URL is required: pass url or configure base_url")
	}

	session, err := t.manager.GetSession(input.Session)
	if err != nil {
		return "", nil, err
	}
	if err := session.Navigate(ctx, target, settings.Browser.NavigationTimeout); err != nil {
		return "", nil, err
	}

	title, err := session.Page().Title(ctx)
	if err != nil {
		title = "Unknown"
	}

	result := fmt.Sprintf(`Navigation successful

Page Details:
- URL: %s
- Title: %s
- Session: %s`,
		session.CurrentURL(), title, session.Name)
	return result, map[string]interface{}{"url": session.CurrentURL()}, nil
}

// IsLoopBreaking returns whether this tool breaks the agent loop.
func (t *NavigateTool) IsLoopBreaking() bool {
	return false
}

// ShouldShow returns whether this tool should be visible.
// Navigation is only offered when there are active sessions.
func (t *NavigateTool) ShouldShow() bool {
	return t.manager.HasSessions()
}
