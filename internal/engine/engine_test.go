package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/wheelhouse-labs/wheelhouse/internal/testutil"
	"github.com/wheelhouse-labs/wheelhouse/pkg/marker"

	_ "github.com/wheelhouse-labs/wheelhouse/pkg/lint/rules"
)

const serverRequires = `click>=7.0
h11>=0.8

[standard]
uvloop>=0.14 ; sys_platform != "win32"
websockets>=10.4

[full]
server[standard]
pyyaml>=5.1
`

const appRequires = `server[standard]>=1.0
requests>=2.28
`

const appSetupCfg = `[flake8]
max-line-length = 100

[mypy]
strict = True
`

// writeProject lays out a two-distribution project under dir.
func writeProject(t *testing.T, dir string) {
	t.Helper()

	serverInfo := filepath.Join(dir, "server", "server.egg-info")
	appInfo := filepath.Join(dir, "app", "app.egg-info")
	for _, d := range []string{serverInfo, appInfo} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
	}

	files := map[string]string{
		filepath.Join(serverInfo, "requires.txt"): serverRequires,
		filepath.Join(appInfo, "requires.txt"):    appRequires,
		filepath.Join(dir, "app", "setup.cfg"):    appSetupCfg,
	}
	for path, content := range files {
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}

	// Content under skipped directories must stay invisible.
	hidden := filepath.Join(dir, ".tox", "py312.egg-info")
	if err := os.MkdirAll(hidden, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(hidden, "requires.txt"), []byte("ghost\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	dir := t.TempDir()
	writeProject(t, dir)

	eng, err := New(Config{Root: dir, Logger: testutil.NewTestLogger(t)})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	t.Cleanup(func() { _ = eng.Close() })

	if _, err := eng.Discover(context.Background(), DiscoveryOptions{}); err != nil {
		t.Fatalf("Discover() failed: %v", err)
	}
	return eng
}

func TestDiscover_FindsMetadataFiles(t *testing.T) {
	dir := t.TempDir()
	writeProject(t, dir)

	eng, err := New(Config{Root: dir, Logger: testutil.NewTestLogger(t)})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	defer eng.Close()

	result, err := eng.Discover(context.Background(), DiscoveryOptions{})
	if err != nil {
		t.Fatalf("Discover() failed: %v", err)
	}

	if result.ManifestsTotal != 2 {
		t.Errorf("expected 2 manifests, got %d", result.ManifestsTotal)
	}
	if result.ConfigsTotal != 1 {
		t.Errorf("expected 1 config, got %d", result.ConfigsTotal)
	}
	if result.HasErrors() {
		t.Errorf("unexpected discovery errors: %v", result.Errors)
	}
	if result.Changed != 3 {
		t.Errorf("expected 3 changed files on first scan, got %d", result.Changed)
	}
}

func TestDiscover_SecondRunUnchanged(t *testing.T) {
	eng := newTestEngine(t)

	result, err := eng.Discover(context.Background(), DiscoveryOptions{})
	if err != nil {
		t.Fatalf("Discover() failed: %v", err)
	}
	if result.Unchanged != 3 {
		t.Errorf("expected 3 unchanged files, got %d", result.Unchanged)
	}
	if result.Changed != 0 {
		t.Errorf("expected 0 changed files, got %d", result.Changed)
	}

	// Force refresh re-records everything.
	result, err = eng.Discover(context.Background(), DiscoveryOptions{ForceFullRefresh: true})
	if err != nil {
		t.Fatalf("Discover() failed: %v", err)
	}
	if result.Changed != 3 {
		t.Errorf("expected 3 changed files with force refresh, got %d", result.Changed)
	}
}

func TestDiscover_DeletedFilesCleaned(t *testing.T) {
	dir := t.TempDir()
	writeProject(t, dir)

	eng, err := New(Config{Root: dir, Logger: testutil.NewTestLogger(t)})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	defer eng.Close()

	if _, err := eng.Discover(context.Background(), DiscoveryOptions{}); err != nil {
		t.Fatalf("Discover() failed: %v", err)
	}

	if err := os.Remove(filepath.Join(dir, "app", "setup.cfg")); err != nil {
		t.Fatalf("remove: %v", err)
	}

	result, err := eng.Discover(context.Background(), DiscoveryOptions{})
	if err != nil {
		t.Fatalf("Discover() failed: %v", err)
	}
	if result.Deleted != 1 {
		t.Errorf("expected 1 deleted record, got %d", result.Deleted)
	}
	if result.ConfigsTotal != 0 {
		t.Errorf("expected 0 configs, got %d", result.ConfigsTotal)
	}
}

func TestDistributions(t *testing.T) {
	eng := newTestEngine(t)

	dists := eng.Distributions()
	if len(dists) != 2 || dists[0] != "app" || dists[1] != "server" {
		t.Errorf("unexpected distributions: %v", dists)
	}
}

func TestExtras(t *testing.T) {
	eng := newTestEngine(t)

	extras, err := eng.Extras("server")
	if err != nil {
		t.Fatalf("Extras() failed: %v", err)
	}
	if len(extras) != 2 || extras[0] != "full" || extras[1] != "standard" {
		t.Errorf("unexpected extras: %v", extras)
	}

	if _, err := eng.Extras("unknown"); err == nil {
		t.Error("expected error for unknown distribution")
	}
}

func TestEvaluate(t *testing.T) {
	eng := newTestEngine(t)
	env := marker.Default().Merge(map[string]string{"sys_platform": "linux"})

	reqs, err := eng.Evaluate("server", env, []string{"full"})
	if err != nil {
		t.Fatalf("Evaluate() failed: %v", err)
	}

	names := make(map[string]bool)
	for _, r := range reqs {
		names[r.CanonicalNameKey()] = true
	}
	for _, want := range []string{"click", "h11", "uvloop", "websockets", "pyyaml"} {
		if !names[want] {
			t.Errorf("expected %s in evaluated set, got %v", want, names)
		}
	}
	if names["server"] {
		t.Error("self-dependency must not be emitted")
	}
}

func TestGraph(t *testing.T) {
	eng := newTestEngine(t)
	g := eng.Graph()

	// app depends on server[standard], which depends on server.
	node, ok := g.Node("server[standard]")
	if !ok {
		t.Fatal("expected server[standard] node")
	}
	if node.Dist != "server" || node.Extra != "standard" {
		t.Errorf("unexpected node: %+v", node)
	}

	deps := g.Dependencies("app")
	found := false
	for _, d := range deps {
		if d == "server[standard]" || d == "server" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected app to depend on server, got %v", deps)
	}

	// requests is external.
	ext, ok := g.Node("requests")
	if !ok {
		t.Fatal("expected requests node")
	}
	if ext.Kind.String() != "external" {
		t.Errorf("expected external node, got %s", ext.Kind)
	}

	if _, err := g.InstallWaves(); err != nil {
		t.Errorf("expected acyclic graph: %v", err)
	}
}

func TestLint(t *testing.T) {
	eng := newTestEngine(t)

	// The fixture is well-formed, so nothing error-level should fire.
	for _, d := range eng.Lint(nil) {
		if d.Severity.String() == "error" {
			t.Errorf("unexpected error diagnostic: %+v", d)
		}
	}
}

func TestScan(t *testing.T) {
	eng := newTestEngine(t)

	result, err := eng.Scan(context.Background(), DiscoveryOptions{}, nil)
	if err != nil {
		t.Fatalf("Scan() failed: %v", err)
	}
	if result.Scan.Files != 3 {
		t.Errorf("expected 3 files, got %d", result.Scan.Files)
	}

	latest, err := eng.Store().GetLatestScan(eng.Root())
	if err != nil {
		t.Fatalf("GetLatestScan() failed: %v", err)
	}
	if latest == nil || latest.ID != result.Scan.ID {
		t.Errorf("expected persisted scan %s, got %+v", result.Scan.ID, latest)
	}

	stored, err := eng.Store().ListDiagnostics(result.Scan.ID)
	if err != nil {
		t.Fatalf("ListDiagnostics() failed: %v", err)
	}
	if len(stored) != len(result.Diagnostics) {
		t.Errorf("expected %d stored diagnostics, got %d", len(result.Diagnostics), len(stored))
	}
}
