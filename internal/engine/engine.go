// Package engine orchestrates project analysis: it discovers packaging
// metadata files, parses them, builds the declared dependency graph, and
// persists scan results to the state store.
package engine

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/wheelhouse-labs/wheelhouse/internal/dag"
	"github.com/wheelhouse-labs/wheelhouse/internal/state"
	"github.com/wheelhouse-labs/wheelhouse/pkg/manifest"
	"github.com/wheelhouse-labs/wheelhouse/pkg/marker"
	"github.com/wheelhouse-labs/wheelhouse/pkg/setupcfg"
)

// Engine holds the parsed view of one project.
type Engine struct {
	root   string
	store  state.Store
	logger *slog.Logger
	env    marker.Environment

	mu        sync.RWMutex
	manifests map[string]*manifest.Manifest // keyed by file path
	configs   map[string]*setupcfg.File     // keyed by file path
	graph     *dag.Graph
}

// Config holds engine configuration.
type Config struct {
	// Root is the project directory to scan.
	Root string
	// StatePath is the path to the SQLite state database.
	// Empty uses an in-memory store.
	StatePath string
	// Environment is the marker environment used by evaluating queries.
	Environment marker.Environment
	// Logger is the structured logger (optional, uses discard if nil).
	Logger *slog.Logger
}

// New creates an engine and opens its state store.
func New(cfg Config) (*Engine, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	logger.Debug("initializing engine", "root", cfg.Root)

	statePath := cfg.StatePath
	if statePath == "" {
		statePath = ":memory:"
	}

	store := state.NewSQLiteStore(logger)
	if err := store.Open(statePath); err != nil {
		return nil, fmt.Errorf("failed to open state store: %w", err)
	}
	if err := store.InitSchema(); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to initialize state schema: %w", err)
	}

	env := cfg.Environment
	if env == nil {
		env = marker.Default()
	}

	return &Engine{
		root:      cfg.Root,
		store:     store,
		logger:    logger,
		env:       env,
		manifests: make(map[string]*manifest.Manifest),
		configs:   make(map[string]*setupcfg.File),
		graph:     dag.NewGraph(),
	}, nil
}

// Root returns the project directory.
func (e *Engine) Root() string {
	return e.root
}

// Store exposes the state store for commands that report on history.
func (e *Engine) Store() state.Store {
	return e.store
}

// Environment returns the engine's marker environment.
func (e *Engine) Environment() marker.Environment {
	return e.env
}

// Close releases the state store.
func (e *Engine) Close() error {
	return e.store.Close()
}
