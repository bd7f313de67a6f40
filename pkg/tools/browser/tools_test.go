package browser

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/entrhq/pilot/pkg/config"
	"github.com/entrhq/pilot/pkg/models"
	"github.com/entrhq/pilot/pkg/selection"
	"github.com/entrhq/pilot/pkg/snapshot"
	"github.com/entrhq/pilot/pkg/tools"
)

const chatPage = `<html lang="en"><body>
  <button id="chip" aria-haspopup="menu"><span class="lbl">Claude Sonnet 4.6</span></button>
  <div id="menu" role="menu" hidden>
    <div role="menuitem"><span>Claude Sonnet 4.6</span></div>
    <div role="menuitem"><span>GPT-5.1</span></div>
    <div role="menuitem"><span>Sonar</span></div>
  </div>
</body></html>`

// newChatPage behaves like the chat application's model dropdown.
func newChatPage() (*snapshot.Page, error) {
	p, err := snapshot.ParseString(chatPage)
	if err != nil {
		return nil, err
	}
	p.OnClick(func(p *snapshot.Page, el *snapshot.Element) {
		s := el.Selection()
		switch {
		case s.Is("#chip"):
			p.Find("#menu").Selection().RemoveAttr("hidden")
		case s.Is(`[role="menuitem"]`):
			p.Find("#chip .lbl").Selection().SetText(s.Find("span").Text())
			p.Find("#menu").Selection().SetAttr("hidden", "")
		}
	})
	return p, nil
}

func clearPilotEnv(t *testing.T) {
	t.Helper()
	for _, env := range []string{
		config.EnvBackend, config.EnvHeadless, config.EnvProfileDir, config.EnvCDPURL,
		config.EnvBaseURL, config.EnvNavigationTimeout, config.EnvWaitTimeout,
	} {
		t.Setenv(env, "")
	}
}

func newTestEngine(t *testing.T) *selection.Engine {
	t.Helper()
	e, err := selection.NewEngine(models.NewValidator(models.Builtin()),
		selection.WithSettleDelay(0), selection.WithExpandDelay(0), selection.WithReasoning(false))
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	return e
}

func execute(t *testing.T, tool tools.Tool, args string) (string, map[string]interface{}, error) {
	t.Helper()
	return tool.Execute(context.Background(), []byte("<arguments>"+args+"</arguments>"))
}

func TestStartSessionTool(t *testing.T) {
	clearPilotEnv(t)
	m, l := newTestManager(t, nil)
	tool := NewStartSessionTool(m)

	result, meta, err := execute(t, tool, `<name>main</name><headless>false</headless><profile_dir>/tmp/pilot-profile</profile_dir>`)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.Contains(result, "Name: main") || !strings.Contains(result, "Mode: headed") {
		t.Errorf("unexpected result:\n%s", result)
	}
	if meta["session"] != "main" || meta["backend"] != BackendPlaywright {
		t.Errorf("metadata = %v", meta)
	}

	opts := l.lastOptions(t)
	if opts.Headless || opts.ProfileDir != "/tmp/pilot-profile" {
		t.Errorf("options = %+v, want headed with profile", opts)
	}
	if opts.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want configured navigation timeout", opts.Timeout)
	}
	if opts.ActionTimeout != 5*time.Second {
		t.Errorf("ActionTimeout = %v, want the default selection wait timeout", opts.ActionTimeout)
	}
}

func TestStartSessionTool_ClicksUseWaitTimeout(t *testing.T) {
	clearPilotEnv(t)
	t.Setenv(config.EnvNavigationTimeout, "2m")
	t.Setenv(config.EnvWaitTimeout, "3s")
	m, l := newTestManager(t, nil)

	if _, _, err := execute(t, NewStartSessionTool(m), `<name>main</name>`); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	opts := l.lastOptions(t)
	if opts.Timeout != 2*time.Minute {
		t.Errorf("Timeout = %v, want the navigation timeout", opts.Timeout)
	}
	if got := l.pages[0].actionTimeout; got != 3*time.Second {
		t.Errorf("click timeout = %v, want the selection wait timeout 3s", got)
	}
}

func TestOptionsFromSettings(t *testing.T) {
	settings, err := config.ResolveWith(nil, nil, config.Overrides{WaitTimeout: 1500 * time.Millisecond})
	if err != nil {
		t.Fatal(err)
	}
	opts := OptionsFromSettings(settings)
	if opts.ActionTimeout != 1500*time.Millisecond {
		t.Errorf("ActionTimeout = %v, want 1.5s", opts.ActionTimeout)
	}
	if opts.ActionTimeout >= opts.Timeout {
		t.Errorf("ActionTimeout %v should be tighter than navigation %v", opts.ActionTimeout, opts.Timeout)
	}
}

func TestStartSessionTool_InvalidSettings(t *testing.T) {
	clearPilotEnv(t)
	m, _ := newTestManager(t, nil)
	tool := NewStartSessionTool(m)

	if _, _, err := execute(t, tool, `<backend>firefox</backend>`); err == nil || !strings.Contains(err.Error(), "invalid browser settings") {
		t.Errorf("error = %v, want invalid browser settings", err)
	}
	if m.HasSessions() {
		t.Error("invalid settings started a session")
	}
}

func TestNavigateTool(t *testing.T) {
	clearPilotEnv(t)
	m, l := newTestManager(t, nil)
	if _, err := m.StartSession(context.Background(), "main", SessionOptions{}); err != nil {
		t.Fatal(err)
	}
	tool := NewNavigateTool(m)

	tests := []struct {
		name    string
		env     string
		args    string
		wantURL string
		wantErr string
	}{
		{name: "explicit url", args: `<session>main</session><url>https://chat.example.com/</url>`, wantURL: "https://chat.example.com/"},
		{name: "base url from environment", env: "https://env.example.com/", args: `<session>main</session>`, wantURL: "https://env.example.com/"},
		{name: "no url anywhere", args: `<session>main</session>`, wantErr: "URL is required"},
		{name: "relative url", args: `<session>main</session><url>/search</url>`, wantErr: "must be an absolute URL"},
		{name: "missing session name", args: `<url>https://chat.example.com/</url>`, wantErr: "session name is required"},
		{name: "unknown session", args: `<session>other</session><url>https://chat.example.com/</url>`, wantErr: ErrSessionNotFound.Error()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(config.EnvBaseURL, tt.env)
			result, meta, err := execute(t, tool, tt.args)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("error = %v, want %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Execute() error = %v", err)
			}
			if meta["url"] != tt.wantURL {
				t.Errorf("url = %v, want %s", meta["url"], tt.wantURL)
			}
			if !strings.Contains(result, "Title: Ask anything") {
				t.Errorf("unexpected result:\n%s", result)
			}
		})
	}

	visited := l.pages[0].visited
	if len(visited) != 2 {
		t.Errorf("visited = %v, want two successful navigations", visited)
	}
}

func TestSelectModelTool(t *testing.T) {
	m, l := newTestManager(t, newChatPage)
	if _, err := m.StartSession(context.Background(), "main", SessionOptions{}); err != nil {
		t.Fatal(err)
	}
	tool := NewSelectModelTool(m, newTestEngine(t))

	result, meta, err := execute(t, tool, `<session>main</session><model>GPT-5.1</model>`)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.HasPrefix(result, "Switched to gpt-5.1") {
		t.Errorf("unexpected result:\n%s", result)
	}
	if meta["canonical_name"] != "gpt-5.1" || meta["switched"] != true || meta["verified"] != true {
		t.Errorf("metadata = %v", meta)
	}
	if got := l.pages[0].Find("#chip .lbl"); got == nil || got.Selection().Text() != "GPT-5.1" {
		t.Error("the page selector was not switched")
	}
}

func TestSelectModelTool_FallsBackForBannedNames(t *testing.T) {
	m, _ := newTestManager(t, newChatPage)
	if _, err := m.StartSession(context.Background(), "main", SessionOptions{}); err != nil {
		t.Fatal(err)
	}
	tool := NewSelectModelTool(m, newTestEngine(t))

	result, meta, err := execute(t, tool, `<session>main</session><model>Sonar</model>`)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	want := models.Builtin().Default().Name
	if meta["canonical_name"] != want || meta["already_matched"] != true {
		t.Errorf("metadata = %v, want already matched default %s", meta, want)
	}
	if !strings.Contains(result, `Requested: "Sonar"`) {
		t.Errorf("result does not mention the replaced name:\n%s", result)
	}
}

func TestSelectModelTool_Errors(t *testing.T) {
	m, _ := newTestManager(t, newChatPage)
	tool := NewSelectModelTool(m, newTestEngine(t))

	tests := []struct {
		name    string
		args    string
		wantErr string
	}{
		{name: "missing session", args: `<model>gpt-5.1</model>`, wantErr: "session name is required"},
		{name: "missing model", args: `<session>main</session><model>  </model>`, wantErr: "model is required"},
		{name: "unknown session", args: `<session>main</session><model>gpt-5.1</model>`, wantErr: "browser session not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, tool, tt.args)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestCloseAndListSessionsTools(t *testing.T) {
	m, _ := newTestManager(t, nil)
	list := NewListSessionsTool(m)
	closeTool := NewCloseSessionTool(m)

	result, _, err := execute(t, list, "")
	if err != nil || !strings.HasPrefix(result, "No active browser sessions.") {
		t.Fatalf("empty list = %q, %v", result, err)
	}

	if _, err := m.StartSession(context.Background(), "main", SessionOptions{Backend: BackendCDP}); err != nil {
		t.Fatal(err)
	}
	result, meta, err := execute(t, list, "")
	if err != nil {
		t.Fatalf("list error = %v", err)
	}
	if !strings.Contains(result, "1. main") || !strings.Contains(result, "Backend: cdp") {
		t.Errorf("unexpected list:\n%s", result)
	}
	if names, _ := meta["sessions"].([]string); len(names) != 1 || names[0] != "main" {
		t.Errorf("metadata sessions = %v", meta["sessions"])
	}

	if _, _, err := execute(t, closeTool, `<session>main</session>`); err != nil {
		t.Fatalf("close error = %v", err)
	}
	if _, _, err := execute(t, closeTool, `<session>main</session>`); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("second close error = %v, want ErrSessionNotFound", err)
	}
}

func TestToolRegistry_VisibleTools(t *testing.T) {
	m, _ := newTestManager(t, nil)
	r := NewToolRegistry(m, newTestEngine(t))

	if got := len(r.RegisterTools()); got != 5 {
		t.Fatalf("RegisterTools() returned %d tools, want 5", got)
	}
	names := func() []string {
		var out []string
		for _, tool := range r.VisibleTools() {
			out = append(out, tool.Name())
		}
		return out
	}

	before := strings.Join(names(), ",")
	if before != "browser_start_session,browser_list_sessions" {
		t.Errorf("visible without sessions = %s", before)
	}

	if _, err := m.StartSession(context.Background(), "main", SessionOptions{}); err != nil {
		t.Fatal(err)
	}
	if got := len(names()); got != 5 {
		t.Errorf("visible with a session = %d tools, want 5", got)
	}

	reg, err := tools.NewRegistry(r.RegisterTools()...)
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}
	if _, ok := reg.Get("browser_select_model"); !ok {
		t.Error("select tool missing from the XML registry")
	}
}
