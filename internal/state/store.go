// Package state provides persistent project state using SQLite.
// It tracks discovered metadata files, scan runs, and the diagnostics
// each scan produced, so commands like doctor can report on history
// without re-walking the project.
package state

import "time"

// ScanStatus describes the lifecycle of a scan run.
type ScanStatus string

// Scan statuses.
const (
	ScanStatusRunning   ScanStatus = "running"
	ScanStatusCompleted ScanStatus = "completed"
	ScanStatusFailed    ScanStatus = "failed"
)

// Scan is one discovery-and-lint pass over a project.
type Scan struct {
	ID          string
	Root        string
	Status      ScanStatus
	StartedAt   time.Time
	CompletedAt *time.Time
	Error       string
	Files       int
	Diagnostics int
}

// FileKind describes what kind of metadata file a record tracks.
type FileKind string

// File kinds.
const (
	FileKindRequires FileKind = "requires"
	FileKindSetupCfg FileKind = "setupcfg"
)

// FileRecord is a discovered metadata file.
type FileRecord struct {
	Path        string
	Kind        FileKind
	Dist        string // owning distribution, "" when unknown
	ContentHash string
	UpdatedAt   time.Time
}

// Diagnostic is a persisted lint finding tied to a scan.
type Diagnostic struct {
	ScanID   string
	RuleID   string
	Severity string
	Message  string
	File     string
	Line     int
	Column   int
}

// Store is the persistence interface for project state.
type Store interface {
	Open(path string) error
	Close() error
	InitSchema() error

	CreateScan(root string) (*Scan, error)
	CompleteScan(id string, status ScanStatus, errMsg string, files, diagnostics int) error
	GetScan(id string) (*Scan, error)
	GetLatestScan(root string) (*Scan, error)
	ListScans(limit int) ([]*Scan, error)

	UpsertFile(f *FileRecord) error
	GetFile(path string) (*FileRecord, error)
	GetContentHash(path string) (string, error)
	ListFiles() ([]*FileRecord, error)
	DeleteFile(path string) error

	SaveDiagnostics(scanID string, diags []*Diagnostic) error
	ListDiagnostics(scanID string) ([]*Diagnostic, error)
}
