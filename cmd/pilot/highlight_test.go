package main

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func forceColor(t *testing.T, on bool) {
	t.Helper()
	prev := colorOutput
	colorOutput = func(io.Writer) bool { return on }
	t.Cleanup(func() { colorOutput = prev })
}

func TestEncode_PlainWhenNotTerminal(t *testing.T) {
	var buf bytes.Buffer
	format := outputFormat{json: true}

	ok, err := format.encode(&buf, map[string]string{"model": "Claude Sonnet 4.6"})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NotContains(t, buf.String(), "\x1b[")

	var got map[string]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "Claude Sonnet 4.6", got["model"])
}

func TestEncode_HighlightsForTerminal(t *testing.T) {
	forceColor(t, true)

	for _, format := range []outputFormat{{json: true}, {yaml: true}} {
		var buf bytes.Buffer
		ok, err := format.encode(&buf, map[string]string{"model": "Claude Sonnet 4.6"})
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Contains(t, buf.String(), "\x1b[")
		assert.Contains(t, buf.String(), "Claude Sonnet 4.6")
	}
}

func TestEncode_NoFormatRequested(t *testing.T) {
	forceColor(t, true)
	var buf bytes.Buffer
	format := outputFormat{}

	ok, err := format.encode(&buf, "ignored")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, buf.String())
}

func TestColorOutput(t *testing.T) {
	assert.False(t, colorOutput(&bytes.Buffer{}))

	f, err := os.Create(filepath.Join(t.TempDir(), "out.json"))
	require.NoError(t, err)
	defer f.Close()
	assert.False(t, colorOutput(f), "regular files are not terminals")
}
