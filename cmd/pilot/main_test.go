package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/entrhq/pilot/pkg/config"
	"github.com/entrhq/pilot/pkg/models"
)

const savedPage = `<html lang="en"><body>
  <button id="chip" aria-haspopup="menu">Claude Sonnet 4.6</button>
  <div role="menu">
    <div role="menuitem"><span>Claude Sonnet 4.6</span></div>
    <div role="menuitem"><span>GPT-5.1</span></div>
  </div>
</body></html>`

// execute runs the root command with a private config file and fresh flags.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	modelsFlags = outputFormat{}
	validateFlags = outputFormat{}
	inspectFlags.model = ""
	inspectFlags.format = outputFormat{}
	t.Setenv(config.EnvConfigPath, filepath.Join(t.TempDir(), "config.json"))
	t.Setenv(config.EnvModel, "")

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(append([]string{"--verbose"}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestModelsCommand(t *testing.T) {
	out, err := execute(t, "models")
	require.NoError(t, err)
	for _, m := range models.Builtin().All() {
		assert.Contains(t, out, m.Name)
	}

	out, err = execute(t, "models", "--json")
	require.NoError(t, err)
	var listed []models.ModelConfig
	require.NoError(t, json.Unmarshal([]byte(out), &listed))
	assert.Equal(t, models.Builtin().All(), listed)
}

func TestValidateCommand(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want validation
	}{
		{
			name: "resolved",
			args: []string{"GPT-5.1"},
			want: validation{Input: "GPT-5.1", Canonical: "gpt-5.1", Reason: models.ReasonResolved},
		},
		{
			name: "banned",
			args: []string{"sonar"},
			want: validation{Input: "sonar", Canonical: models.Builtin().Default().Name, Reason: models.ReasonBanned},
		},
		{
			name: "empty",
			want: validation{Canonical: models.Builtin().Default().Name, Reason: models.ReasonDefaulted},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, append([]string{"validate", "--yaml"}, tt.args...)...)
			require.NoError(t, err)

			var got validation
			require.NoError(t, yaml.Unmarshal([]byte(out), &got))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestInspectCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "page.html")
	require.NoError(t, os.WriteFile(path, []byte(savedPage), 0600))

	out, err := execute(t, "inspect", "--html", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Model selector:   found")
	assert.Contains(t, out, "Active model:     Claude Sonnet 4.6")
	assert.Contains(t, out, "Locale:           en")

	out, err = execute(t, "inspect", "--html", path, "--model", "gpt-5.1", "--json")
	require.NoError(t, err)

	var res inspection
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.NotNil(t, res.Outcome)
	assert.True(t, res.Outcome.Switched)
	assert.False(t, res.Outcome.Verified, "a static snapshot cannot reflect the click")
	assert.Equal(t, []string{`button "Claude Sonnet 4.6"`, `div[role=menuitem] "GPT-5.1"`}, res.Clicks)
}

func TestInspectCommand_MissingFile(t *testing.T) {
	_, err := execute(t, "inspect", "--html", filepath.Join(t.TempDir(), "missing.html"))
	assert.ErrorContains(t, err, "failed to open snapshot")
}

func TestRunCommand_InvalidProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte("url: https://chat.example.com/\n"), 0600))

	_, err := execute(t, "run", "-f", path)
	assert.ErrorContains(t, err, "lists no models")
}
