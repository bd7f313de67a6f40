package browser

import (
	"github.com/entrhq/pilot/pkg/selection"
	"github.com/entrhq/pilot/pkg/tools"
)

// ToolRegistry builds the browser tool set around one session manager.
type ToolRegistry struct {
	manager *SessionManager
	engine  *selection.Engine
	tools   []tools.Tool
}

// NewToolRegistry creates a new browser tool registry.
func NewToolRegistry(manager *SessionManager, engine *selection.Engine) *ToolRegistry {
	return &ToolRegistry{manager: manager, engine: engine}
}

// RegisterTools creates and returns all browser tools.
func (r *ToolRegistry) RegisterTools() []tools.Tool {
	if len(r.tools) > 0 {
		return r.tools
	}

	// Session management tools (always available)
	r.tools = append(r.tools,
		NewStartSessionTool(r.manager),
		NewListSessionsTool(r.manager),
		NewCloseSessionTool(r.manager),
	)

	// Page tools (shown when sessions exist)
	r.tools = append(r.tools,
		NewNavigateTool(r.manager),
		NewSelectModelTool(r.manager, r.engine),
	)
	return r.tools
}

// VisibleTools returns the tools that should be offered right now.
func (r *ToolRegistry) VisibleTools() []tools.Tool {
	var out []tools.Tool
	for _, t := range r.RegisterTools() {
		if v, ok := t.(interface{ ShouldShow() bool }); ok && !v.ShouldShow() {
			continue
		}
		out = append(out, t)
	}
	return out
}

// GetSessionManager returns the underlying session manager.
func (r *ToolRegistry) GetSessionManager() *SessionManager {
	return r.manager
}
