package engine

import (
	"context"

	"github.com/wheelhouse-labs/wheelhouse/internal/state"
	"github.com/wheelhouse-labs/wheelhouse/pkg/lint"
)

// ScanResult bundles the outcome of one full scan.
type ScanResult struct {
	Scan        *state.Scan
	Discovery   *DiscoveryResult
	Diagnostics []lint.Diagnostic
}

// Scan runs discovery followed by lint and records the outcome in the
// state store.
func (e *Engine) Scan(ctx context.Context, opts DiscoveryOptions, lintCfg *lint.Config) (*ScanResult, error) {
	scan, err := e.store.CreateScan(e.root)
	if err != nil {
		return nil, err
	}

	discovery, err := e.Discover(ctx, opts)
	if err != nil {
		_ = e.store.CompleteScan(scan.ID, state.ScanStatusFailed, err.Error(), 0, 0)
		return nil, err
	}

	diags := e.Lint(lintCfg)

	stored := make([]*state.Diagnostic, len(diags))
	for i, d := range diags {
		stored[i] = &state.Diagnostic{
			RuleID:   d.RuleID,
			Severity: d.Severity.String(),
			Message:  d.Message,
			File:     d.File,
			Line:     d.Line,
			Column:   d.Column,
		}
	}
	if err := e.store.SaveDiagnostics(scan.ID, stored); err != nil {
		e.logger.Warn("failed to persist diagnostics", "error", err)
	}

	files := discovery.ManifestsTotal + discovery.ConfigsTotal
	if err := e.store.CompleteScan(scan.ID, state.ScanStatusCompleted, "", files, len(diags)); err != nil {
		e.logger.Warn("failed to complete scan record", "error", err)
	}

	scan.Status = state.ScanStatusCompleted
	scan.Files = files
	scan.Diagnostics = len(diags)

	return &ScanResult{Scan: scan, Discovery: discovery, Diagnostics: diags}, nil
}
