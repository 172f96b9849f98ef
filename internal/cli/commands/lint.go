package commands

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/wheelhouse-labs/wheelhouse/internal/cli/config"
	"github.com/wheelhouse-labs/wheelhouse/internal/cli/output"
	"github.com/wheelhouse-labs/wheelhouse/internal/engine"
	"github.com/wheelhouse-labs/wheelhouse/pkg/lint"
	_ "github.com/wheelhouse-labs/wheelhouse/pkg/lint/rules" // register lint rules
)

// LintOptions holds options for the lint command.
type LintOptions struct {
	Format   string   // Output format: text, markdown, json
	Disable  []string // Rule IDs to disable
	Severity string   // Minimum severity: error, warning, info, hint
	Rules    []string // Run only specific rules
	Watch    bool     // Re-run on file changes
}

// NewLintCommand creates the lint command.
func NewLintCommand() *cobra.Command {
	opts := &LintOptions{}
	cmd := &cobra.Command{
		Use:   "lint",
		Short: "Run lint rules on packaging metadata",
		Long: `Analyze requires.txt manifests and setup.cfg files for common
mistakes: duplicate requirements, unparsable lines, undeclared extras,
extras cycles, unknown tool sections, and malformed boolean options.

Rules can be configured in wheelhouse.yaml under the lint key.

Output adapts to environment:
  - Terminal: Styled output with colors
  - Piped/Scripted: Markdown format
  - JSON: Machine-readable format`,
		Example: `  # Lint the project
  wheelhouse lint

  # Output as JSON
  wheelhouse lint --format json

  # Disable specific rules
  wheelhouse lint --disable RQ03,CF03

  # Only report errors
  wheelhouse lint --severity error

  # Re-run whenever a metadata file changes
  wheelhouse lint --watch`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLint(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: text, markdown, json")
	cmd.Flags().StringSliceVar(&opts.Disable, "disable", nil, "Rule IDs to disable")
	cmd.Flags().StringVar(&opts.Severity, "severity", "hint", "Minimum severity: error, warning, info, hint")
	cmd.Flags().StringSliceVar(&opts.Rules, "rule", nil, "Run only specific rules")
	cmd.Flags().BoolVarP(&opts.Watch, "watch", "w", false, "Re-run on metadata file changes")

	return cmd
}

func runLint(cmd *cobra.Command, opts *LintOptions) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	eng := cmdCtx.Engine
	cfg := cmdCtx.Cfg
	r := cmdCtx.Renderer

	if opts.Format != "" {
		r = output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.ParseMode(opts.Format))
	}

	lintCfg := buildLintConfig(cfg, opts)

	runOnce := func() (bool, error) {
		if _, err := eng.Discover(cmd.Context(), engine.DiscoveryOptions{}); err != nil {
			return false, fmt.Errorf("failed to discover metadata files: %w", err)
		}
		diags := filterBySeverity(eng.Lint(lintCfg), opts.Severity)
		return renderLintResults(r, diags), nil
	}

	if opts.Watch {
		return watchLint(cmd, eng, r, runOnce)
	}

	hasIssues, err := runOnce()
	if err != nil {
		return err
	}
	if hasIssues {
		return fmt.Errorf("lint issues found")
	}
	return nil
}

// buildLintConfig merges project config with CLI flags. Flags win.
func buildLintConfig(cfg *config.Config, opts *LintOptions) *lint.Config {
	lintCfg := cfg.ToLintConfig()

	for _, id := range opts.Disable {
		lintCfg.Disable(strings.TrimSpace(id))
	}

	// --rule keeps only the named rules.
	if len(opts.Rules) > 0 {
		enabled := make(map[string]bool)
		for _, id := range opts.Rules {
			enabled[strings.TrimSpace(id)] = true
		}
		for _, rule := range lint.GetAll() {
			if !enabled[rule.ID] {
				lintCfg.Disable(rule.ID)
			}
		}
	}

	return lintCfg
}

// filterBySeverity drops findings below the threshold.
func filterBySeverity(diags []lint.Diagnostic, threshold string) []lint.Diagnostic {
	limit := lint.ParseSeverity(threshold)

	var filtered []lint.Diagnostic
	for _, d := range diags {
		if d.Severity <= limit {
			filtered = append(filtered, d)
		}
	}
	return filtered
}

// renderLintResults renders findings and reports whether any fired.
func renderLintResults(r *output.Renderer, diags []lint.Diagnostic) bool {
	if len(diags) == 0 {
		r.Success("No lint issues found")
		return false
	}

	summary := output.LintSummary{TotalIssues: len(diags)}
	files := make(map[string]bool)
	for _, d := range diags {
		if d.File != "" {
			files[d.File] = true
		}
		switch d.Severity {
		case lint.SeverityError:
			summary.Errors++
		case lint.SeverityWarning:
			summary.Warnings++
		case lint.SeverityInfo:
			summary.Info++
		case lint.SeverityHint:
			summary.Hints++
		}
	}
	summary.FilesAnalyzed = len(files)

	if r.EffectiveMode() == output.ModeJSON {
		payload := output.LintOutput{Summary: summary}
		for _, d := range diags {
			payload.Diagnostics = append(payload.Diagnostics, output.LintDiagnostic{
				RuleID:   d.RuleID,
				Severity: d.Severity.String(),
				Message:  d.Message,
				File:     d.File,
				Line:     d.Line,
				Column:   d.Column,
			})
		}
		_ = r.JSON(payload)
		return true
	}

	currentFile := ""
	for _, d := range diags {
		if d.File != currentFile {
			currentFile = d.File
			r.Println(r.Styles().DistName.Render(currentFile))
		}
		loc := fmt.Sprintf("%d:%d", d.Line, d.Column)
		if d.Line == 0 {
			loc = "-"
		}
		r.Printf("  %s  %s  %s  %s\n",
			r.Styles().Muted.Render(fmt.Sprintf("%-7s", loc)),
			severityLabel(r, d.Severity),
			r.Styles().Bold.Render(d.RuleID),
			d.Message,
		)
	}

	parts := []string{fmt.Sprintf("%d issues", summary.TotalIssues)}
	if summary.Errors > 0 {
		parts = append(parts, fmt.Sprintf("%d errors", summary.Errors))
	}
	if summary.Warnings > 0 {
		parts = append(parts, fmt.Sprintf("%d warnings", summary.Warnings))
	}
	if summary.Info > 0 {
		parts = append(parts, fmt.Sprintf("%d info", summary.Info))
	}
	if summary.Hints > 0 {
		parts = append(parts, fmt.Sprintf("%d hints", summary.Hints))
	}
	r.Println("")
	r.Printf("Summary: %s in %d files\n", strings.Join(parts, ", "), summary.FilesAnalyzed)

	return true
}

func severityLabel(r *output.Renderer, sev lint.Severity) string {
	switch sev {
	case lint.SeverityError:
		return r.Styles().Error.Render("error  ")
	case lint.SeverityWarning:
		return r.Styles().Warning.Render("warning")
	case lint.SeverityInfo:
		return r.Styles().Info.Render("info   ")
	case lint.SeverityHint:
		return r.Styles().Muted.Render("hint   ")
	default:
		return r.Styles().Muted.Render("unknown")
	}
}

// watchLint re-runs the lint pass whenever a metadata file changes.
func watchLint(cmd *cobra.Command, eng *engine.Engine, r *output.Renderer, runOnce func() (bool, error)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if _, err := runOnce(); err != nil {
		return err
	}
	if err := addWatchDirs(watcher, eng); err != nil {
		return err
	}

	r.Println(r.Styles().Muted.Render("watching for changes, press Ctrl+C to stop"))

	// Editors fire bursts of events per save; coalesce them.
	var timer *time.Timer
	rerun := make(chan struct{}, 1)

	for {
		select {
		case <-cmd.Context().Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isMetadataFile(event.Name) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(200*time.Millisecond, func() {
				select {
				case rerun <- struct{}{}:
				default:
				}
			})

		case <-rerun:
			r.Println("")
			if _, err := runOnce(); err != nil {
				r.Errorf("lint failed: %v", err)
			}
			// New metadata files may live in new directories.
			if err := addWatchDirs(watcher, eng); err != nil {
				r.Errorf("watch update failed: %v", err)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			r.Errorf("watch error: %v", err)
		}
	}
}

// addWatchDirs registers the directories holding known metadata files.
func addWatchDirs(watcher *fsnotify.Watcher, eng *engine.Engine) error {
	dirs := map[string]bool{eng.Root(): true}
	for _, m := range eng.Manifests() {
		dirs[filepath.Dir(m.Path)] = true
	}
	for _, f := range eng.Configs() {
		dirs[filepath.Dir(f.Path)] = true
	}

	watched := make(map[string]bool)
	for _, d := range watcher.WatchList() {
		watched[d] = true
	}
	for dir := range dirs {
		if watched[dir] {
			continue
		}
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}
	return nil
}

func isMetadataFile(path string) bool {
	base := filepath.Base(path)
	return base == "requires.txt" || base == "setup.cfg"
}
