package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wheelhouse-labs/wheelhouse/internal/cli/output"
	"github.com/wheelhouse-labs/wheelhouse/internal/engine"
	"github.com/wheelhouse-labs/wheelhouse/pkg/lint"
	_ "github.com/wheelhouse-labs/wheelhouse/pkg/lint/rules" // register lint rules
)

// NewCheckCommand creates the check command.
func NewCheckCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate all metadata files in the project",
		Long: `Parse every requires.txt and setup.cfg in the project, run the lint
rules, and verify the dependency graph is acyclic.

Exits with a non-zero status when any file fails to parse, any
error-severity finding fires, or the graph contains a cycle.`,
		Example: `  # Validate the project
  wheelhouse check

  # Machine-readable result
  wheelhouse check --output json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCheck(cmd)
		},
	}

	return cmd
}

func runCheck(cmd *cobra.Command) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	eng := cmdCtx.Engine
	cfg := cmdCtx.Cfg
	r := cmdCtx.Renderer

	discovery, err := eng.Discover(cmd.Context(), engine.DiscoveryOptions{})
	if err != nil {
		return fmt.Errorf("failed to discover metadata files: %w", err)
	}

	payload := output.CheckOutput{
		OK:        true,
		Manifests: discovery.ManifestsTotal,
		Configs:   discovery.ConfigsTotal,
	}

	for _, e := range discovery.Errors {
		payload.ParseErrors = append(payload.ParseErrors, fmt.Sprintf("%s: %s", e.Path, e.Message))
	}
	for _, m := range eng.Manifests() {
		for _, p := range m.Problems {
			payload.ParseErrors = append(payload.ParseErrors,
				fmt.Sprintf("%s:%d: %v", m.Path, p.Line, p.Err))
		}
	}

	for _, d := range eng.Lint(cfg.ToLintConfig()) {
		switch d.Severity {
		case lint.SeverityError:
			payload.LintErrors++
		case lint.SeverityWarning:
			payload.LintWarnings++
		}
	}

	if cycle, found := eng.Graph().FindCycle(); found {
		payload.Cycle = cycle
	}

	payload.OK = len(payload.ParseErrors) == 0 && payload.LintErrors == 0 && len(payload.Cycle) == 0

	if r.EffectiveMode() == output.ModeJSON {
		if err := r.JSON(payload); err != nil {
			return err
		}
	} else {
		renderCheck(r, &payload)
	}

	if !payload.OK {
		return fmt.Errorf("check failed")
	}
	return nil
}

func renderCheck(r *output.Renderer, payload *output.CheckOutput) {
	r.Printf("Parsed %d manifests, %d tool configs\n", payload.Manifests, payload.Configs)

	for _, msg := range payload.ParseErrors {
		r.Errorf("parse error: %s", msg)
	}
	if payload.LintErrors > 0 || payload.LintWarnings > 0 {
		r.Printf("Lint: %d errors, %d warnings (run 'wheelhouse lint' for details)\n",
			payload.LintErrors, payload.LintWarnings)
	}
	if len(payload.Cycle) > 0 {
		r.Errorf("dependency cycle: %v", payload.Cycle)
	}

	if payload.OK {
		r.Success("All metadata files check out")
	}
}
