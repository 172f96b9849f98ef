package engine

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wheelhouse-labs/wheelhouse/internal/state"
	"github.com/wheelhouse-labs/wheelhouse/pkg/manifest"
	"github.com/wheelhouse-labs/wheelhouse/pkg/setupcfg"
)

// skipDirs are directory names never descended into. Hidden directories
// (".tox", ".venv", ".git") are skipped by the dot rule.
var skipDirs = map[string]bool{
	"vendor":       true,
	"node_modules": true,
	"venv":         true,
	"__pycache__":  true,
	"build":        true,
	"dist":         true,
}

// DiscoveryOptions configures the discovery process.
type DiscoveryOptions struct {
	// ForceFullRefresh ignores content hashes and re-records everything.
	ForceFullRefresh bool
}

// DiscoveryResult contains statistics about the discovery run.
type DiscoveryResult struct {
	ManifestsTotal int
	ConfigsTotal   int
	Changed        int
	Unchanged      int
	Deleted        int

	// Errors (non-fatal)
	Errors []DiscoveryError

	Duration time.Duration
}

// DiscoveryError represents a non-fatal error during discovery.
type DiscoveryError struct {
	Path    string
	Type    string // "read", "parse"
	Message string
}

// HasErrors returns true if any errors occurred.
func (r *DiscoveryResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// Summary returns a human-readable summary.
func (r *DiscoveryResult) Summary() string {
	return fmt.Sprintf(
		"Manifests: %d | Configs: %d | %d changed, %d unchanged, %d deleted | Duration: %s",
		r.ManifestsTotal, r.ConfigsTotal, r.Changed, r.Unchanged, r.Deleted,
		r.Duration.Round(time.Millisecond),
	)
}

type candidate struct {
	path string
	kind state.FileKind
}

// Discover walks the project root, parses every metadata file, rebuilds
// the dependency graph, and syncs file records in the state store.
func (e *Engine) Discover(ctx context.Context, opts DiscoveryOptions) (*DiscoveryResult, error) {
	start := time.Now()
	result := &DiscoveryResult{}

	e.logger.Info("starting discovery", "root", e.root)

	candidates, err := e.collectCandidates()
	if err != nil {
		return result, fmt.Errorf("failed to walk project: %w", err)
	}

	manifests := make(map[string]*manifest.Manifest)
	configs := make(map[string]*setupcfg.File)

	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(8)

	for _, c := range candidates {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			content, err := os.ReadFile(c.path)
			if err != nil {
				mu.Lock()
				result.Errors = append(result.Errors, DiscoveryError{
					Path: c.path, Type: "read", Message: err.Error(),
				})
				mu.Unlock()
				return nil
			}
			hash := computeHash(content)

			// Parse the bytes we hashed, outside the lock. The lock
			// guards only result recording.
			switch c.kind {
			case state.FileKindRequires:
				m, err := manifest.ParseContent(c.path, content)
				if err != nil {
					mu.Lock()
					result.Errors = append(result.Errors, DiscoveryError{
						Path: c.path, Type: "parse", Message: err.Error(),
					})
					mu.Unlock()
					return nil
				}
				mu.Lock()
				manifests[c.path] = m
				result.ManifestsTotal++
				e.trackFile(c, hash, m.Name, opts.ForceFullRefresh, result)
				mu.Unlock()

			case state.FileKindSetupCfg:
				f, err := setupcfg.ParseContent(c.path, content)
				if err != nil {
					mu.Lock()
					result.Errors = append(result.Errors, DiscoveryError{
						Path: c.path, Type: "parse", Message: err.Error(),
					})
					mu.Unlock()
					return nil
				}
				mu.Lock()
				configs[c.path] = f
				result.ConfigsTotal++
				e.trackFile(c, hash, "", opts.ForceFullRefresh, result)
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return result, err
	}

	seen := make(map[string]bool, len(candidates))
	for _, c := range candidates {
		seen[c.path] = true
	}
	result.Deleted = e.cleanupDeletedFiles(seen)

	e.mu.Lock()
	e.manifests = manifests
	e.configs = configs
	e.mu.Unlock()

	if err := e.buildGraph(); err != nil {
		return result, fmt.Errorf("graph construction failed: %w", err)
	}

	result.Duration = time.Since(start)

	e.logger.Info("discovery completed",
		"manifests", result.ManifestsTotal,
		"configs", result.ConfigsTotal,
		"changed", result.Changed,
		"errors", len(result.Errors),
		"duration_ms", result.Duration.Milliseconds())

	return result, nil
}

// collectCandidates walks the root and lists metadata file paths.
func (e *Engine) collectCandidates() ([]candidate, error) {
	var candidates []candidate

	err := filepath.WalkDir(e.root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return nil //nolint:nilerr // Unreadable entries are skipped
		}
		name := d.Name()
		if d.IsDir() {
			if path == e.root {
				return nil
			}
			if strings.HasPrefix(name, ".") || skipDirs[name] {
				return filepath.SkipDir
			}
			return nil
		}

		switch name {
		case "requires.txt":
			candidates = append(candidates, candidate{path: path, kind: state.FileKindRequires})
		case "setup.cfg":
			candidates = append(candidates, candidate{path: path, kind: state.FileKindSetupCfg})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(candidates, func(i, j int) bool { return candidates[i].path < candidates[j].path })
	return candidates, nil
}

// trackFile syncs one file record with the store and updates counters.
// Caller holds the result mutex.
func (e *Engine) trackFile(c candidate, hash, dist string, force bool, result *DiscoveryResult) {
	if !force {
		if existing, err := e.store.GetContentHash(c.path); err == nil && existing == hash {
			result.Unchanged++
			return
		}
	}

	record := &state.FileRecord{
		Path:        c.path,
		Kind:        c.kind,
		Dist:        dist,
		ContentHash: hash,
	}
	if err := e.store.UpsertFile(record); err != nil {
		e.logger.Warn("failed to persist file record", "path", c.path, "error", err)
		return
	}
	result.Changed++
}

// cleanupDeletedFiles removes store records for files that disappeared.
func (e *Engine) cleanupDeletedFiles(seen map[string]bool) int {
	deleted := 0
	existing, err := e.store.ListFiles()
	if err != nil {
		return 0
	}
	for _, f := range existing {
		if !seen[f.Path] {
			_ = e.store.DeleteFile(f.Path)
			deleted++
		}
	}
	return deleted
}

// computeHash generates a short SHA256 hash of content.
func computeHash(content []byte) string {
	h := sha256.Sum256(content)
	return hex.EncodeToString(h[:8])
}
