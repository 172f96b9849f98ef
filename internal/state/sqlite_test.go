package state

import (
	"path/filepath"
	"testing"
	"time"
)

func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store := NewSQLiteStore(nil)
	if err := store.Open(":memory:"); err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	if err := store.InitSchema(); err != nil {
		t.Fatalf("failed to init schema: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStore_OpenClose(t *testing.T) {
	store := NewSQLiteStore(nil)

	if err := store.Open(":memory:"); err != nil {
		t.Fatalf("failed to open in-memory store: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("failed to close store: %v", err)
	}
}

func TestSQLiteStore_OpenFile(t *testing.T) {
	store := NewSQLiteStore(nil)
	path := filepath.Join(t.TempDir(), "wheelhouse.db")

	if err := store.Open(path); err != nil {
		t.Fatalf("failed to open file-backed store: %v", err)
	}
	defer store.Close()

	if err := store.InitSchema(); err != nil {
		t.Fatalf("failed to init schema: %v", err)
	}
}

func TestSQLiteStore_InitSchema(t *testing.T) {
	store := setupTestStore(t)

	// Verify tables exist by querying them
	for _, table := range []string{"scans", "files", "diagnostics"} {
		rows, err := store.db.Query("SELECT 1 FROM " + table + " LIMIT 1")
		if err != nil {
			t.Errorf("table %s does not exist: %v", table, err)
		} else {
			rows.Close()
		}
	}
}

func TestSQLiteStore_NotOpened(t *testing.T) {
	store := NewSQLiteStore(nil)

	if err := store.InitSchema(); err == nil {
		t.Error("expected error for unopened store")
	}
	if _, err := store.CreateScan("/proj"); err == nil {
		t.Error("expected error for unopened store")
	}
}

func TestSQLiteStore_ScanLifecycle(t *testing.T) {
	store := setupTestStore(t)

	scan, err := store.CreateScan("/proj")
	if err != nil {
		t.Fatalf("failed to create scan: %v", err)
	}
	if scan.ID == "" {
		t.Error("expected non-empty scan ID")
	}
	if scan.Status != ScanStatusRunning {
		t.Errorf("expected running status, got %s", scan.Status)
	}

	if err := store.CompleteScan(scan.ID, ScanStatusCompleted, "", 4, 2); err != nil {
		t.Fatalf("failed to complete scan: %v", err)
	}

	got, err := store.GetScan(scan.ID)
	if err != nil {
		t.Fatalf("failed to get scan: %v", err)
	}
	if got.Status != ScanStatusCompleted {
		t.Errorf("expected completed status, got %s", got.Status)
	}
	if got.CompletedAt == nil {
		t.Error("expected completed_at to be set")
	}
	if got.Files != 4 || got.Diagnostics != 2 {
		t.Errorf("unexpected totals: files=%d diagnostics=%d", got.Files, got.Diagnostics)
	}
}

func TestSQLiteStore_CompleteScan_Failed(t *testing.T) {
	store := setupTestStore(t)

	scan, err := store.CreateScan("/proj")
	if err != nil {
		t.Fatalf("failed to create scan: %v", err)
	}

	if err := store.CompleteScan(scan.ID, ScanStatusFailed, "walk error", 0, 0); err != nil {
		t.Fatalf("failed to fail scan: %v", err)
	}

	got, err := store.GetScan(scan.ID)
	if err != nil {
		t.Fatalf("failed to get scan: %v", err)
	}
	if got.Error != "walk error" {
		t.Errorf("expected error message, got %q", got.Error)
	}
}

func TestSQLiteStore_CompleteScan_NotFound(t *testing.T) {
	store := setupTestStore(t)

	if err := store.CompleteScan("nonexistent", ScanStatusCompleted, "", 0, 0); err == nil {
		t.Error("expected error for unknown scan ID")
	}
}

func TestSQLiteStore_GetLatestScan(t *testing.T) {
	store := setupTestStore(t)

	latest, err := store.GetLatestScan("/proj")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if latest != nil {
		t.Error("expected nil for a root with no scans")
	}

	first, _ := store.CreateScan("/proj")
	second, _ := store.CreateScan("/proj")
	_, _ = store.CreateScan("/other")

	// Scans within the same instant sort by started_at; nudge the second
	// one forward so ordering is unambiguous.
	if _, err := store.db.Exec(
		`UPDATE scans SET started_at = ? WHERE id = ?`,
		time.Now().UTC().Add(time.Second), second.ID); err != nil {
		t.Fatalf("failed to adjust timestamp: %v", err)
	}

	latest, err = store.GetLatestScan("/proj")
	if err != nil {
		t.Fatalf("failed to get latest scan: %v", err)
	}
	if latest == nil || latest.ID != second.ID {
		t.Errorf("expected latest scan %s, got %+v (first was %s)", second.ID, latest, first.ID)
	}
}

func TestSQLiteStore_ListScans(t *testing.T) {
	store := setupTestStore(t)

	for i := 0; i < 3; i++ {
		if _, err := store.CreateScan("/proj"); err != nil {
			t.Fatalf("failed to create scan: %v", err)
		}
	}

	scans, err := store.ListScans(2)
	if err != nil {
		t.Fatalf("failed to list scans: %v", err)
	}
	if len(scans) != 2 {
		t.Errorf("expected 2 scans, got %d", len(scans))
	}
}

func TestSQLiteStore_FileRecords(t *testing.T) {
	store := setupTestStore(t)

	f := &FileRecord{
		Path:        "/proj/pkg.egg-info/requires.txt",
		Kind:        FileKindRequires,
		Dist:        "pkg",
		ContentHash: "abc123",
	}
	if err := store.UpsertFile(f); err != nil {
		t.Fatalf("failed to upsert file: %v", err)
	}
	if f.UpdatedAt.IsZero() {
		t.Error("expected updated_at to be set")
	}

	hash, err := store.GetContentHash(f.Path)
	if err != nil {
		t.Fatalf("failed to get hash: %v", err)
	}
	if hash != "abc123" {
		t.Errorf("expected hash abc123, got %q", hash)
	}

	// Upsert with a new hash overwrites.
	f.ContentHash = "def456"
	if err := store.UpsertFile(f); err != nil {
		t.Fatalf("failed to re-upsert file: %v", err)
	}
	hash, _ = store.GetContentHash(f.Path)
	if hash != "def456" {
		t.Errorf("expected hash def456, got %q", hash)
	}

	got, err := store.GetFile(f.Path)
	if err != nil {
		t.Fatalf("failed to get file: %v", err)
	}
	if got == nil || got.Kind != FileKindRequires || got.Dist != "pkg" {
		t.Errorf("unexpected file record: %+v", got)
	}

	files, err := store.ListFiles()
	if err != nil {
		t.Fatalf("failed to list files: %v", err)
	}
	if len(files) != 1 {
		t.Errorf("expected 1 file, got %d", len(files))
	}

	if err := store.DeleteFile(f.Path); err != nil {
		t.Fatalf("failed to delete file: %v", err)
	}
	if got, _ := store.GetFile(f.Path); got != nil {
		t.Error("expected file to be deleted")
	}
	if hash, _ := store.GetContentHash(f.Path); hash != "" {
		t.Errorf("expected empty hash after delete, got %q", hash)
	}
}

func TestSQLiteStore_Diagnostics(t *testing.T) {
	store := setupTestStore(t)

	scan, err := store.CreateScan("/proj")
	if err != nil {
		t.Fatalf("failed to create scan: %v", err)
	}

	diags := []*Diagnostic{
		{RuleID: "RQ03", Severity: "hint", Message: "h11 accepts any version", File: "b.txt", Line: 3},
		{RuleID: "CF04", Severity: "error", Message: "not a boolean", File: "a.cfg", Line: 7, Column: 1},
	}
	if err := store.SaveDiagnostics(scan.ID, diags); err != nil {
		t.Fatalf("failed to save diagnostics: %v", err)
	}

	got, err := store.ListDiagnostics(scan.ID)
	if err != nil {
		t.Fatalf("failed to list diagnostics: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 diagnostics, got %d", len(got))
	}
	// Ordered by file.
	if got[0].File != "a.cfg" || got[1].File != "b.txt" {
		t.Errorf("unexpected order: %s, %s", got[0].File, got[1].File)
	}
	if got[0].ScanID != scan.ID {
		t.Errorf("expected scan ID %s, got %s", scan.ID, got[0].ScanID)
	}
}

func TestSQLiteStore_SaveDiagnostics_Empty(t *testing.T) {
	store := setupTestStore(t)

	scan, _ := store.CreateScan("/proj")
	if err := store.SaveDiagnostics(scan.ID, nil); err != nil {
		t.Fatalf("saving no diagnostics should succeed: %v", err)
	}

	got, err := store.ListDiagnostics(scan.ID)
	if err != nil {
		t.Fatalf("failed to list diagnostics: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no diagnostics, got %d", len(got))
	}
}
