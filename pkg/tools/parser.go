package tools

import (
	"encoding/xml"
	"fmt"
	"regexp"
	"strings"
)

const (
	defaultServerName = "local"
	maxXMLSize        = 1 << 20
)

var toolRegex = regexp.MustCompile(`(?s)<tool>.*?</tool>`)

// ampersandEntityRegex matches ampersands that already start an XML entity.
var ampersandEntityRegex = regexp.MustCompile(`&(?:amp|lt|gt|quot|apos|#\d+|#x[0-9a-fA-F]+);`)

// ParseToolCall extracts the first <tool> element from text.
// It returns the call and the text with the call removed.
func ParseToolCall(text string) (*ToolCall, string, error) {
	if len(text) > maxXMLSize {
		return nil, text, fmt.Errorf("tool call XML exceeds maximum size of %d bytes", maxXMLSize)
	}

	loc := toolRegex.FindStringIndex(text)
	if loc == nil {
		return nil, text, fmt.Errorf("no tool call found in text")
	}
	toolXML := text[loc[0]:loc[1]]

	var call ToolCall
	if err := UnmarshalXMLWithFallback([]byte(toolXML), &call); err != nil {
		snippet := toolXML
		if len(snippet) > 200 {
			snippet = snippet[:200] + "..."
		}
		return nil, text, fmt.Errorf("failed to unmarshal tool call XML: %w\nXML snippet: %s", err, snippet)
	}

	call.ToolName = strings.TrimSpace(call.ToolName)
	if call.ToolName == "" {
		return nil, text, fmt.Errorf("tool_name is required in tool call")
	}
	if call.ServerName = strings.TrimSpace(call.ServerName); call.ServerName == "" {
		call.ServerName = defaultServerName
	}

	remaining := strings.TrimSpace(text[:loc[0]] + text[loc[1]:])
	return &call, remaining, nil
}

// UnmarshalXMLWithFallback unmarshals data, retrying once with bare
// ampersands escaped. Model-written XML often carries raw & in URLs.
func UnmarshalXMLWithFallback(data []byte, v interface{}) error {
	err := xml.Unmarshal(data, v)
	if err == nil {
		return nil
	}
	return xml.Unmarshal(escapeUnescapedAmpersands(data), v)
}

// escapeUnescapedAmpersands replaces bare & with &amp;, keeping existing entities.
func escapeUnescapedAmpersands(data []byte) []byte {
	text := string(data)

	entities := make(map[int]bool)
	for _, m := range ampersandEntityRegex.FindAllStringIndex(text, -1) {
		entities[m[0]] = true
	}

	var b strings.Builder
	b.Grow(len(text) + 16)
	for i := 0; i < len(text); i++ {
		if text[i] == '&' && !entities[i] {
			b.WriteString("&amp;")
		} else {
			b.WriteByte(text[i])
		}
	}
	return []byte(b.String())
}
