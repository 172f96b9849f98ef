package state

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// CreateScan records the start of a new scan over a project root.
func (s *SQLiteStore) CreateScan(root string) (*Scan, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	scan := &Scan{
		ID:        generateID(),
		Root:      root,
		Status:    ScanStatusRunning,
		StartedAt: time.Now().UTC(),
	}

	s.logger.Debug("creating scan", "id", scan.ID, "root", root)

	_, err := s.db.Exec(
		`INSERT INTO scans (id, root, status, started_at) VALUES (?, ?, ?, ?)`,
		scan.ID, scan.Root, scan.Status, scan.StartedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create scan: %w", err)
	}

	return scan, nil
}

// CompleteScan marks a scan as finished with the given status and totals.
func (s *SQLiteStore) CompleteScan(id string, status ScanStatus, errMsg string, files, diagnostics int) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	now := time.Now().UTC()
	var errorPtr *string
	if errMsg != "" {
		errorPtr = &errMsg
	}

	result, err := s.db.Exec(
		`UPDATE scans SET status = ?, completed_at = ?, error = ?, files = ?, diagnostics = ? WHERE id = ?`,
		status, now, errorPtr, files, diagnostics, id,
	)
	if err != nil {
		return fmt.Errorf("failed to complete scan: %w", err)
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return fmt.Errorf("scan not found: %s", id)
	}
	return nil
}

// GetScan retrieves a scan by ID.
func (s *SQLiteStore) GetScan(id string) (*Scan, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	row := s.db.QueryRow(
		`SELECT id, root, status, started_at, completed_at, error, files, diagnostics
		 FROM scans WHERE id = ?`, id)

	scan, err := scanScanRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("scan not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get scan: %w", err)
	}
	return scan, nil
}

// GetLatestScan retrieves the most recent scan for a project root.
// Returns nil without error when no scan exists yet.
func (s *SQLiteStore) GetLatestScan(root string) (*Scan, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	row := s.db.QueryRow(
		`SELECT id, root, status, started_at, completed_at, error, files, diagnostics
		 FROM scans WHERE root = ? ORDER BY started_at DESC LIMIT 1`, root)

	scan, err := scanScanRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest scan: %w", err)
	}
	return scan, nil
}

// ListScans retrieves the most recent scans up to the given limit.
func (s *SQLiteStore) ListScans(limit int) ([]*Scan, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	rows, err := s.db.Query(
		`SELECT id, root, status, started_at, completed_at, error, files, diagnostics
		 FROM scans ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list scans: %w", err)
	}
	defer rows.Close()

	var scans []*Scan
	for rows.Next() {
		scan, err := scanScanRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		scans = append(scans, scan)
	}
	return scans, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanScanRow(row rowScanner) (*Scan, error) {
	scan := &Scan{}
	var completedAt sql.NullTime
	var errMsg sql.NullString

	err := row.Scan(&scan.ID, &scan.Root, &scan.Status, &scan.StartedAt,
		&completedAt, &errMsg, &scan.Files, &scan.Diagnostics)
	if err != nil {
		return nil, err
	}

	if completedAt.Valid {
		scan.CompletedAt = &completedAt.Time
	}
	if errMsg.Valid {
		scan.Error = errMsg.String
	}
	return scan, nil
}
