package commands

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/wheelhouse-labs/wheelhouse/internal/engine"
	"github.com/wheelhouse-labs/wheelhouse/pkg/marker"
	"github.com/wheelhouse-labs/wheelhouse/pkg/requirement"
)

// NewREPLCommand creates the repl command.
func NewREPLCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Interactive metadata shell",
		Long: `Start an interactive shell for exploring the project's packaging
metadata: list distributions, expand extras, evaluate requirements
against ad-hoc environments, and parse requirement or marker strings.`,
		Example: `  wheelhouse repl`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runREPL(cmd)
		},
	}

	return cmd
}

func runREPL(cmd *cobra.Command) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	eng := cmdCtx.Engine
	cfg := cmdCtx.Cfg

	if _, err := eng.Discover(cmd.Context(), engine.DiscoveryOptions{}); err != nil {
		return fmt.Errorf("failed to discover metadata files: %w", err)
	}

	historyFile := ""
	if cfg.StatePath != ":memory:" {
		historyFile = filepath.Join(filepath.Dir(cfg.StatePath), "repl_history")
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "wheelhouse> ",
		HistoryFile:     historyFile,
		AutoComplete:    newREPLCompleter(eng),
		InterruptPrompt: "^C",
		EOFPrompt:       "quit",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()
	_, _ = fmt.Fprintf(out, "Wheelhouse metadata shell (%d distributions)\n", len(eng.Distributions()))
	_, _ = fmt.Fprintln(out, "Type help for commands, quit to exit")
	_, _ = fmt.Fprintln(out)

	// Session-local marker overrides, applied on top of the engine env.
	overrides := map[string]string{}

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			break
		}

		if err := handleREPLCommand(out, eng, overrides, line); err != nil {
			_, _ = fmt.Fprintf(errOut, "Error: %v\n", err)
		}
	}

	return nil
}

func handleREPLCommand(w io.Writer, eng *engine.Engine, overrides map[string]string, line string) error {
	command, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	switch strings.ToLower(command) {
	case "help":
		printREPLHelp(w)
		return nil

	case "dists":
		for _, name := range eng.Distributions() {
			_, _ = fmt.Fprintf(w, "  %s\n", name)
		}
		return nil

	case "extras":
		if rest == "" {
			return fmt.Errorf("usage: extras <distribution>")
		}
		extras, err := eng.Extras(rest)
		if err != nil {
			return err
		}
		if len(extras) == 0 {
			_, _ = fmt.Fprintln(w, "  (none)")
			return nil
		}
		for _, e := range extras {
			_, _ = fmt.Fprintf(w, "  %s\n", e)
		}
		return nil

	case "eval":
		// eval <dist> [extra ...]
		fields := strings.Fields(rest)
		if len(fields) == 0 {
			return fmt.Errorf("usage: eval <distribution> [extra ...]")
		}
		env := eng.Environment().Merge(overrides)
		reqs, err := eng.Evaluate(fields[0], env, fields[1:])
		if err != nil {
			return err
		}
		for _, req := range reqs {
			_, _ = fmt.Fprintf(w, "  %s\n", req.String())
		}
		_, _ = fmt.Fprintf(w, "(%d requirements)\n", len(reqs))
		return nil

	case "parse":
		if rest == "" {
			return fmt.Errorf("usage: parse <requirement line>")
		}
		req, err := requirement.Parse(rest)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(w, "  name:      %s (canonical: %s)\n", req.Name, req.CanonicalNameKey())
		if len(req.Extras) > 0 {
			_, _ = fmt.Fprintf(w, "  extras:    %s\n", strings.Join(req.Extras, ", "))
		}
		if !req.Specifiers.Empty() {
			_, _ = fmt.Fprintf(w, "  specifier: %s\n", req.Specifiers.String())
		}
		if req.URL != "" {
			_, _ = fmt.Fprintf(w, "  url:       %s\n", req.URL)
		}
		if req.Marker != nil {
			_, _ = fmt.Fprintf(w, "  marker:    %s\n", req.Marker.String())
		}
		return nil

	case "marker":
		if rest == "" {
			return fmt.Errorf("usage: marker <expression>")
		}
		m, err := marker.Parse(rest)
		if err != nil {
			return err
		}
		result, err := m.Eval(eng.Environment().Merge(overrides))
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(w, "  %s => %t\n", m.String(), result)
		return nil

	case "set":
		// set key=value adjusts the session environment.
		key, value, ok := strings.Cut(rest, "=")
		if !ok {
			return fmt.Errorf("usage: set <variable>=<value>")
		}
		overrides[strings.TrimSpace(key)] = strings.TrimSpace(value)
		return nil

	case "env":
		env := eng.Environment().Merge(overrides)
		for _, name := range marker.Variables() {
			_, _ = fmt.Fprintf(w, "  %-22s %s\n", name, env[name])
		}
		return nil

	default:
		return fmt.Errorf("unknown command %q (type help for commands)", command)
	}
}

func printREPLHelp(w io.Writer) {
	help := `
Commands:
  dists                     List discovered distributions
  extras <dist>             Show a distribution's extras
  eval <dist> [extra ...]   Evaluate requirements with extras active
  parse <requirement>       Parse a requirement specifier line
  marker <expression>       Evaluate an environment marker
  set <var>=<value>         Override a marker variable for this session
  env                       Show the effective marker environment
  help                      Show this help message
  quit / exit               Exit the shell
`
	_, _ = fmt.Fprintln(w, help)
}

// newREPLCompleter completes commands and distribution names.
func newREPLCompleter(eng *engine.Engine) *readline.PrefixCompleter {
	var dists []readline.PrefixCompleterInterface
	for _, name := range eng.Distributions() {
		dists = append(dists, readline.PcItem(name))
	}

	var vars []readline.PrefixCompleterInterface
	for _, name := range marker.Variables() {
		vars = append(vars, readline.PcItem(name))
	}

	return readline.NewPrefixCompleter(
		readline.PcItem("dists"),
		readline.PcItem("extras", dists...),
		readline.PcItem("eval", dists...),
		readline.PcItem("parse"),
		readline.PcItem("marker"),
		readline.PcItem("set", vars...),
		readline.PcItem("env"),
		readline.PcItem("help"),
		readline.PcItem("quit"),
	)
}
