// Package tools defines the XML tool-call surface that exposes pilot's
// browser operations to an agent.
package tools

import (
	"context"
	"encoding/xml"
)

// Tool is one operation an agent can invoke through an XML tool call:
//
//	<tool>
//	<server_name>local</server_name>
//	<tool_name>browser_select_model</tool_name>
//	<arguments>
//	  <session>main</session>
//	  <model>gpt-5.1</model>
//	</arguments>
//	</tool>
type Tool interface {
	// Name returns the unique identifier for this tool (e.g., "browser_navigate")
	Name() string

	Description() string

	// Schema returns the JSON schema of the tool's arguments.
	Schema() map[string]interface{}

	// Execute runs the tool with the given <arguments> XML.
	// Returns: (result string, metadata map, error). Metadata may be nil.
	Execute(ctx context.Context, argumentsXML []byte) (string, map[string]interface{}, error)

	// IsLoopBreaking reports whether the agent loop should stop after this tool.
	IsLoopBreaking() bool
}

// ToolCall represents a parsed tool invocation.
type ToolCall struct {
	XMLName    xml.Name       `xml:"tool"`
	ServerName string         `xml:"server_name"`
	ToolName   string         `xml:"tool_name"`
	Arguments  ArgumentsBlock `xml:"arguments"`
}

// ArgumentsBlock holds the raw XML of the arguments element
type ArgumentsBlock struct {
	InnerXML []byte `xml:",innerxml"`
}

// GetArgumentsXML returns the arguments wrapped in <arguments> tags for unmarshaling.
func (tc *ToolCall) GetArgumentsXML() []byte {
	const prefix = "<arguments>"
	const suffix = "</arguments>"

	result := make([]byte, 0, len(prefix)+len(tc.Arguments.InnerXML)+len(suffix))
	result = append(result, prefix...)
	result = append(result, tc.Arguments.InnerXML...)
	result = append(result, suffix...)
	return result
}

// BaseToolSchema creates a common JSON schema structure for a tool
// with the given properties and required fields
func BaseToolSchema(properties map[string]interface{}, required []string) map[string]interface{} {
	schema := map[string]interface{}{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

// StringProperty is a schema property of type string.
func StringProperty(description string) map[string]interface{} {
	return map[string]interface{}{"type": "string", "description": description}
}

// BoolProperty is a schema property of type boolean.
func BoolProperty(description string) map[string]interface{} {
	return map[string]interface{}{"type": "boolean", "description": description}
}
