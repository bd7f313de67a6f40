package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/entrhq/pilot/pkg/config"
	"github.com/entrhq/pilot/pkg/tools"
	"github.com/entrhq/pilot/pkg/tools/browser"
)

var callFlags struct {
	file string
	list bool
}

var callCmd = &cobra.Command{
	Use:   "call",
	Short: "Execute XML tool calls from stdin or a file",
	Long: `call executes a sequence of agent tool calls against one browser session
manager, in order, and prints each result. For example:

  <tool><tool_name>browser_start_session</tool_name>
  <arguments><name>main</name></arguments></tool>
  <tool><tool_name>browser_navigate</tool_name>
  <arguments><session>main</session><url>https://chat.example.com/</url></arguments></tool>
  <tool><tool_name>browser_select_model</tool_name>
  <arguments><session>main</session><model>gpt-5.1</model></arguments></tool>`,
	Args: cobra.NoArgs,
	RunE: runCall,
}

func init() {
	f := callCmd.Flags()
	f.StringVarP(&callFlags.file, "file", "f", "", "Read tool calls from a file instead of stdin")
	f.BoolVar(&callFlags.list, "list", false, "List the available tools and exit")
}

func runCall(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	settings, err := config.Resolve(config.Overrides{})
	if err != nil {
		return err
	}

	logger := newLogger(cmd)
	defer logger.Close()

	engine, err := newEngine(settings.Selection, logger)
	if err != nil {
		return err
	}
	manager := browser.NewSessionManager(browser.WithManagerLogger(logger))
	defer manager.Shutdown()

	registry, err := tools.NewRegistry(browser.NewToolRegistry(manager, engine).RegisterTools()...)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if callFlags.list {
		for _, name := range registry.Names() {
			t, _ := registry.Get(name)
			fmt.Fprintf(out, "%-24s %s\n", name, t.Description())
		}
		return nil
	}

	var in io.Reader = cmd.InOrStdin()
	if callFlags.file != "" {
		f, err := os.Open(callFlags.file)
		if err != nil {
			return fmt.Errorf("failed to open tool calls: %w", err)
		}
		defer f.Close()
		in = f
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("failed to read tool calls: %w", err)
	}

	text := string(data)
	for n := 0; ; n++ {
		if n > 0 && !strings.Contains(text, "<tool>") {
			return nil
		}
		call, rest, err := tools.ParseToolCall(text)
		if err != nil {
			return err
		}
		text = rest

		result, _, err := registry.Execute(ctx, call)
		if err != nil {
			return fmt.Errorf("%s: %w", call.ToolName, err)
		}
		fmt.Fprintf(out, "== %s\n%s\n\n", call.ToolName, result)
	}
}
