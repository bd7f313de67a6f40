package tools

import (
	"context"
	"encoding/xml"
	"strings"
	"testing"
)

type echoTool struct{}

type echoInput struct {
	XMLName xml.Name `xml:"arguments"`
	Text    string   `xml:"text"`
}

func (echoTool) Name() string                   { return "echo" }
func (echoTool) Description() string            { return "echo text" }
func (echoTool) Schema() map[string]interface{} { return BaseToolSchema(nil, nil) }
func (echoTool) IsLoopBreaking() bool           { return false }

func (echoTool) Execute(_ context.Context, args []byte) (string, map[string]interface{}, error) {
	var in echoInput
	if err := UnmarshalXMLWithFallback(args, &in); err != nil {
		return "", nil, err
	}
	return in.Text, nil, nil
}

func TestParseToolCall(t *testing.T) {
	text := `Switching model first.
<tool>
<tool_name>browser_select_model</tool_name>
<arguments>
  <session>main</session>
  <model>gpt-5.1</model>
</arguments>
</tool>
done`

	call, remaining, err := ParseToolCall(text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if call.ToolName != "browser_select_model" {
		t.Errorf("expected tool name browser_select_model, got %q", call.ToolName)
	}
	if call.ServerName != "local" {
		t.Errorf("expected default server name, got %q", call.ServerName)
	}
	if !strings.Contains(string(call.GetArgumentsXML()), "<model>gpt-5.1</model>") {
		t.Errorf("arguments not preserved: %s", call.GetArgumentsXML())
	}
	if remaining != "Switching model first.\n\ndone" {
		t.Errorf("unexpected remaining text %q", remaining)
	}
}

func TestParseToolCall_Errors(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"no tool", "just text"},
		{"missing name", "<tool><arguments></arguments></tool>"},
		{"broken xml", "<tool><tool_name>x</tool_name><arguments><a></arguments></tool>"},
		{"too large", "<tool>" + strings.Repeat("x", maxXMLSize) + "</tool>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := ParseToolCall(tt.text); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestUnmarshalXMLWithFallback(t *testing.T) {
	var in echoInput
	err := UnmarshalXMLWithFallback([]byte(`<arguments><text>a=1&b=2 &amp; &#38;</text></arguments>`), &in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if in.Text != "a=1&b=2 & &" {
		t.Errorf("got %q", in.Text)
	}
}

func TestRegistry(t *testing.T) {
	r, err := NewRegistry(echoTool{})
	if err != nil {
		t.Fatal(err)
	}
	if err := r.Register(echoTool{}); err == nil {
		t.Error("expected duplicate registration error")
	}
	if names := r.Names(); len(names) != 1 || names[0] != "echo" {
		t.Errorf("unexpected names %v", names)
	}

	call, _, err := ParseToolCall(`<tool><tool_name>echo</tool_name><arguments><text>hi</text></arguments></tool>`)
	if err != nil {
		t.Fatal(err)
	}
	out, _, err := r.Execute(context.Background(), call)
	if err != nil || out != "hi" {
		t.Errorf("Execute = %q, %v", out, err)
	}

	call.ToolName = "missing"
	if _, _, err := r.Execute(context.Background(), call); err == nil {
		t.Error("expected unknown tool error")
	}
}

func TestBaseToolSchema(t *testing.T) {
	schema := BaseToolSchema(map[string]interface{}{"model": StringProperty("model name")}, []string{"model"})
	if schema["type"] != "object" {
		t.Error("schema type should be object")
	}
	if req, ok := schema["required"].([]string); !ok || req[0] != "model" {
		t.Error("required fields missing")
	}
	if _, ok := BaseToolSchema(nil, nil)["required"]; ok {
		t.Error("required should be omitted when empty")
	}
}
