package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/wheelhouse-labs/wheelhouse/internal/cli/config"
	"github.com/wheelhouse-labs/wheelhouse/internal/cli/output"
	"github.com/wheelhouse-labs/wheelhouse/internal/engine"
	"github.com/wheelhouse-labs/wheelhouse/pkg/lint"
	_ "github.com/wheelhouse-labs/wheelhouse/pkg/lint/rules" // register lint rules
)

// NewDoctorCommand creates the doctor command.
func NewDoctorCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Run a project health check",
		Long: `Analyze the project's packaging metadata and report its overall
health: discovery coverage, parse problems, lint findings by severity,
graph shape, and the last recorded scan.`,
		Example: `  # Run the health check
  wheelhouse doctor

  # Output as JSON
  wheelhouse doctor --output json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDoctor(cmd)
		},
	}

	return cmd
}

// DoctorOutput is the JSON output for the doctor command.
type DoctorOutput struct {
	ConfigFile    string   `json:"config_file,omitempty"`
	ProjectRoot   string   `json:"project_root"`
	StatePath     string   `json:"state_path"`
	Distributions int      `json:"distributions"`
	Configs       int      `json:"configs"`
	ParseProblems int      `json:"parse_problems"`
	LintErrors    int      `json:"lint_errors"`
	LintWarnings  int      `json:"lint_warnings"`
	GraphNodes    int      `json:"graph_nodes"`
	GraphEdges    int      `json:"graph_edges"`
	GraphWaves    int      `json:"graph_waves"`
	Cycle         []string `json:"cycle,omitempty"`
	LastScan      string   `json:"last_scan,omitempty"`
	LastScanAt    string   `json:"last_scan_at,omitempty"`
}

func runDoctor(cmd *cobra.Command) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	eng := cmdCtx.Engine
	cfg := cmdCtx.Cfg
	r := cmdCtx.Renderer

	if _, err := eng.Discover(cmd.Context(), engine.DiscoveryOptions{}); err != nil {
		return fmt.Errorf("failed to discover metadata files: %w", err)
	}

	payload := DoctorOutput{
		ConfigFile:  config.GetConfigFileUsed(),
		ProjectRoot: cfg.ProjectRoot,
		StatePath:   cfg.StatePath,
		Configs:     len(eng.Configs()),
	}

	payload.Distributions = len(eng.Distributions())
	for _, m := range eng.Manifests() {
		payload.ParseProblems += len(m.Problems)
	}

	for _, d := range eng.Lint(cfg.ToLintConfig()) {
		switch d.Severity {
		case lint.SeverityError:
			payload.LintErrors++
		case lint.SeverityWarning:
			payload.LintWarnings++
		}
	}

	g := eng.Graph()
	payload.GraphNodes = g.NodeCount()
	payload.GraphEdges = g.EdgeCount()
	if waves, err := g.InstallWaves(); err == nil {
		payload.GraphWaves = len(waves)
	} else if cycle, found := g.FindCycle(); found {
		payload.Cycle = cycle
	}

	if scan, err := eng.Store().GetLatestScan(eng.Root()); err == nil && scan != nil {
		payload.LastScan = scan.ID
		payload.LastScanAt = scan.StartedAt.Format(time.RFC3339)
	}

	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(payload)
	}
	renderDoctor(r, &payload)
	return nil
}

func renderDoctor(r *output.Renderer, payload *DoctorOutput) {
	styles := r.Styles()

	r.Header(1, "Project Health")

	if payload.ConfigFile != "" {
		r.Printf("  Config:      %s\n", payload.ConfigFile)
	} else {
		r.Printf("  Config:      %s\n", styles.Muted.Render("none (defaults)"))
	}
	r.Printf("  Root:        %s\n", payload.ProjectRoot)
	if _, err := os.Stat(payload.StatePath); err == nil || payload.StatePath == ":memory:" {
		r.Printf("  State:       %s\n", payload.StatePath)
	} else {
		r.Printf("  State:       %s %s\n", payload.StatePath, styles.Muted.Render("(not created yet)"))
	}
	r.Println("")

	r.Printf("  Distributions: %d | Tool configs: %d\n", payload.Distributions, payload.Configs)
	r.Printf("  Graph: %d nodes, %d edges, %d install waves\n",
		payload.GraphNodes, payload.GraphEdges, payload.GraphWaves)
	r.Println("")

	ok := true
	if payload.ParseProblems > 0 {
		r.Warning(fmt.Sprintf("%d lines failed to parse", payload.ParseProblems))
		ok = false
	}
	if payload.LintErrors > 0 {
		r.Errorf("%d error-severity lint findings", payload.LintErrors)
		ok = false
	}
	if payload.LintWarnings > 0 {
		r.Warning(fmt.Sprintf("%d lint warnings", payload.LintWarnings))
	}
	if len(payload.Cycle) > 0 {
		r.Errorf("dependency cycle: %v", payload.Cycle)
		ok = false
	}

	if payload.LastScan != "" {
		r.Printf("  Last scan: %s at %s\n", payload.LastScan, payload.LastScanAt)
	} else {
		r.Println(styles.Muted.Render("  No recorded scans. Run 'wheelhouse scan'."))
	}

	r.Println("")
	if ok {
		r.Success("Project metadata is healthy")
	}
}
