package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wheelhouse-labs/wheelhouse/internal/cli/output"
	"github.com/wheelhouse-labs/wheelhouse/internal/engine"
	_ "github.com/wheelhouse-labs/wheelhouse/pkg/lint/rules" // register lint rules
)

// ScanOptions holds options for the scan command.
type ScanOptions struct {
	Force bool // Ignore content hashes and re-record everything
}

// NewScanCommand creates the scan command.
func NewScanCommand() *cobra.Command {
	opts := &ScanOptions{}
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan the project and record results in the state database",
		Long: `Walk the project, parse every metadata file, run the lint rules,
and persist the outcome (file records and diagnostics) in the state
database for later inspection.

Unchanged files are detected by content hash and skipped in the
bookkeeping unless --force is given.`,
		Example: `  # Scan the project
  wheelhouse scan

  # Re-record everything
  wheelhouse scan --force`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runScan(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Force, "force", false, "Ignore content hashes and re-record everything")

	return cmd
}

func runScan(cmd *cobra.Command, opts *ScanOptions) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	eng := cmdCtx.Engine
	cfg := cmdCtx.Cfg
	r := cmdCtx.Renderer

	result, err := eng.Scan(cmd.Context(),
		engine.DiscoveryOptions{ForceFullRefresh: opts.Force},
		cfg.ToLintConfig())
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(map[string]any{
			"scan_id":     result.Scan.ID,
			"status":      string(result.Scan.Status),
			"files":       result.Scan.Files,
			"diagnostics": result.Scan.Diagnostics,
			"summary":     result.Discovery.Summary(),
		})
	}

	r.Println(result.Discovery.Summary())
	for _, e := range result.Discovery.Errors {
		r.Errorf("%s: %s", e.Path, e.Message)
	}
	r.Printf("Recorded scan %s with %d diagnostics\n", result.Scan.ID, result.Scan.Diagnostics)

	return nil
}
