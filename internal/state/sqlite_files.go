package state

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// UpsertFile inserts or updates a file record keyed by path.
func (s *SQLiteStore) UpsertFile(f *FileRecord) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	now := time.Now().UTC()
	_, err := s.db.Exec(
		`INSERT INTO files (path, kind, dist, content_hash, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(path) DO UPDATE SET
		   kind = excluded.kind,
		   dist = excluded.dist,
		   content_hash = excluded.content_hash,
		   updated_at = excluded.updated_at`,
		f.Path, f.Kind, f.Dist, f.ContentHash, now,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert file: %w", err)
	}
	f.UpdatedAt = now
	return nil
}

// GetFile retrieves a file record by path. Returns nil without error
// when the path is unknown.
func (s *SQLiteStore) GetFile(path string) (*FileRecord, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	f := &FileRecord{}
	err := s.db.QueryRow(
		`SELECT path, kind, dist, content_hash, updated_at FROM files WHERE path = ?`,
		path,
	).Scan(&f.Path, &f.Kind, &f.Dist, &f.ContentHash, &f.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get file: %w", err)
	}
	return f, nil
}

// GetContentHash returns the stored content hash for a path, "" when
// the path is unknown.
func (s *SQLiteStore) GetContentHash(path string) (string, error) {
	if s.db == nil {
		return "", fmt.Errorf("database not opened")
	}

	var hash string
	err := s.db.QueryRow(`SELECT content_hash FROM files WHERE path = ?`, path).Scan(&hash)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get content hash: %w", err)
	}
	return hash, nil
}

// ListFiles returns all tracked files ordered by path.
func (s *SQLiteStore) ListFiles() ([]*FileRecord, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	rows, err := s.db.Query(
		`SELECT path, kind, dist, content_hash, updated_at FROM files ORDER BY path`)
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	defer rows.Close()

	var files []*FileRecord
	for rows.Next() {
		f := &FileRecord{}
		if err := rows.Scan(&f.Path, &f.Kind, &f.Dist, &f.ContentHash, &f.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan file row: %w", err)
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

// DeleteFile removes a file record.
func (s *SQLiteStore) DeleteFile(path string) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	if _, err := s.db.Exec(`DELETE FROM files WHERE path = ?`, path); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}
