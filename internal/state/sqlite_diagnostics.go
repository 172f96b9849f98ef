package state

import (
	"fmt"
)

// SaveDiagnostics persists the diagnostics of one scan in a single
// transaction.
func (s *SQLiteStore) SaveDiagnostics(scanID string, diags []*Diagnostic) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(
		`INSERT INTO diagnostics (scan_id, rule_id, severity, message, file, line, col)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, d := range diags {
		if _, err := stmt.Exec(scanID, d.RuleID, d.Severity, d.Message, d.File, d.Line, d.Column); err != nil {
			return fmt.Errorf("failed to insert diagnostic: %w", err)
		}
	}

	return tx.Commit()
}

// ListDiagnostics returns the diagnostics persisted for a scan, ordered
// by file and line.
func (s *SQLiteStore) ListDiagnostics(scanID string) ([]*Diagnostic, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	rows, err := s.db.Query(
		`SELECT scan_id, rule_id, severity, message, file, line, col
		 FROM diagnostics WHERE scan_id = ? ORDER BY file, line, rule_id`, scanID)
	if err != nil {
		return nil, fmt.Errorf("failed to list diagnostics: %w", err)
	}
	defer rows.Close()

	var diags []*Diagnostic
	for rows.Next() {
		d := &Diagnostic{}
		if err := rows.Scan(&d.ScanID, &d.RuleID, &d.Severity, &d.Message, &d.File, &d.Line, &d.Column); err != nil {
			return nil, fmt.Errorf("failed to scan diagnostic row: %w", err)
		}
		diags = append(diags, d)
	}
	return diags, rows.Err()
}
