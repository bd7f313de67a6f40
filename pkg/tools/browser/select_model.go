package browser

import (
	"context"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/entrhq/pilot/pkg/selection"
	"github.com/entrhq/pilot/pkg/tools"
)

// SelectModelTool switches the model selector of a session's page.
type SelectModelTool struct {
	manager *SessionManager
	engine  *selection.Engine
}

// NewSelectModelTool creates a select model tool driven by engine.
func NewSelectModelTool(manager *SessionManager, engine *selection.Engine) *SelectModelTool {
	return &SelectModelTool{manager: manager, engine: engine}
}

// Name returns the tool name.
func (t *SelectModelTool) Name() string {
	return "browser_select_model"
}

// Description returns the tool description.
func (t *SelectModelTool) Description() string {
	return "Make the page's model selector show the requested model. Unknown or disallowed names " +
		"fall back to the default model. Failing to switch is reported, not raised: the page keeps its current model."
}

// Schema returns the tool's JSON schema.
func (t *SelectModelTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(
		map[string]interface{}{
			"session": tools.StringProperty("Name of the browser session to use"),
			"model":   tools.StringProperty("Model name, e.g. 'gpt-5.1' or 'claude-sonnet-4.6'"),
		},
		[]string{"session", "model"},
	)
}

// SelectModelInput represents the parameters for model selection.
type SelectModelInput struct {
	XMLName xml.Name `xml:"arguments"`
	Session string   `xml:"session"`
	Model   string   `xml:"model"`
}

// Execute runs one selection and reports the outcome.
func (t *SelectModelTool) Execute(ctx context.Context, argsXML []byte) (string, map[string]interface{}, error) {
	var input SelectModelInput
	if err := tools.UnmarshalXMLWithFallback(argsXML, &input); err != nil {
		return "", nil, fmt.Errorf("invalid parameters: %w", err)
	}
	if input.Session == "" {
		return "", nil, fmt.Errorf("session name is required")
	}
	if strings.TrimSpace(input.Model) == "" {
		return "", nil, fmt.Errorf("model is required")
	}

	session, err := t.manager.GetSession(input.Session)
	if err != nil {
		return "", nil, err
	}

	out := t.engine.Sync(ctx, session.Page(), input.Model)
	return FormatOutcome(out), OutcomeMetadata(out), nil
}

// FormatOutcome renders an outcome for humans and agents.
func FormatOutcome(out selection.SelectionOutcome) string {
	var b strings.Builder
	switch {
	case !out.UIAvailable:
		fmt.Fprintf(&b, "Model selector not found on page; continuing with %s", out.CanonicalName)
	case out.AlreadyMatched:
		fmt.Fprintf(&b, "%s is already selected", out.CanonicalName)
	case out.Switched && out.Verified:
		fmt.Fprintf(&b, "Switched to %s", out.CanonicalName)
	case out.Switched:
		fmt.Fprintf(&b, "Clicked %s but the selector did not confirm it", out.CanonicalName)
	default:
		fmt.Fprintf(&b, "Could not switch to %s; the page keeps its current model", out.CanonicalName)
	}
	if out.RequestedName != out.CanonicalName {
		fmt.Fprintf(&b, "\n- Requested: %q (replaced by %s)", out.RequestedName, out.CanonicalName)
	}
	if out.Strategy != "" {
		fmt.Fprintf(&b, "\n- Strategy: %s", out.Strategy)
	}
	if out.ReasoningEnabled {
		b.WriteString("\n- Reasoning: on")
	}
	return b.String()
}

// OutcomeMetadata flattens an outcome into tool metadata.
func OutcomeMetadata(out selection.SelectionOutcome) map[string]interface{} {
	return map[string]interface{}{
		"requested_name":    out.RequestedName,
		"canonical_name":    out.CanonicalName,
		"ui_available":      out.UIAvailable,
		"switched":          out.Switched,
		"already_matched":   out.AlreadyMatched,
		"verified":          out.Verified,
		"reasoning_enabled": out.ReasoningEnabled,
		"strategy":          out.Strategy,
	}
}

// IsLoopBreaking returns whether this tool breaks the agent loop.
func (t *SelectModelTool) IsLoopBreaking() bool {
	return false
}

// ShouldShow returns whether this tool should be visible.
func (t *SelectModelTool) ShouldShow() bool {
	return t.manager.HasSessions()
}
