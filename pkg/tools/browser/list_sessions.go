package browser

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/entrhq/pilot/pkg/tools"
)

// ListSessionsTool lists all active browser sessions.
type ListSessionsTool struct {
	manager *SessionManager
}

// NewListSessionsTool creates a new list sessions tool.
func NewListSessionsTool(manager *SessionManager) *ListSessionsTool {
	return &ListSessionsTool{manager: manager}
}

// Name returns the tool name.
func (t *ListSessionsTool) Name() string {
	return "browser_list_sessions"
}

// Description returns the tool description.
func (t *ListSessionsTool) Description() string {
	return "List all active browser sessions with their backend, current URL and idle time."
}

// Schema returns the tool's JSON schema.
func (t *ListSessionsTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(map[string]interface{}{}, nil)
}

// Execute lists all sessions.
func (t *ListSessionsTool) Execute(ctx context.Context, argsXML []byte) (string, map[string]interface{}, error) {
	sessions := t.manager.ListSessions()
	if len(sessions) == 0 {
		return "No active browser sessions.\n\nUse browser_start_session to create a new session.", nil, nil
	}

	var result strings.Builder
	fmt.Fprintf(&result, "Active Browser Sessions: %d\n\n", len(sessions))

	now := time.Now()
	names := make([]string, 0, len(sessions))
	for i, s := range sessions {
		mode := "headed"
		if s.Headless {
			mode = "headless"
		}
		currentURL := s.CurrentURL
		if currentURL == "" {
			currentURL = "(none)"
		}
		fmt.Fprintf(&result, `%d. %s
   Backend: %s
   URL: %s
   Mode: %s
   Age: %s
   Last Used: %s ago

`,
			i+1, s.Name, s.Backend, currentURL, mode,
			formatDuration(now.Sub(s.CreatedAt)),
			formatDuration(now.Sub(s.LastUsedAt)),
		)
		names = append(names, s.Name)
	}
	result.WriteString("Use browser_close_session to close a session when finished.")

	return result.String(), map[string]interface{}{"sessions": names}, nil
}

// IsLoopBreaking returns whether this tool breaks the agent loop.
func (t *ListSessionsTool) IsLoopBreaking() bool {
	return false
}

// ShouldShow returns whether this tool should be visible.
func (t *ListSessionsTool) ShouldShow() bool {
	return true
}

// formatDuration formats a duration in a human-readable way.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
	return fmt.Sprintf("%dh %dm", int(d.Hours()), int(d.Minutes())%60)
}
