// Package server exposes the project's packaging metadata over a JSON
// HTTP API, with optional live re-discovery on file changes.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/wheelhouse-labs/wheelhouse/internal/engine"
	"github.com/wheelhouse-labs/wheelhouse/pkg/lint"
)

// Server is the metadata API server.
type Server struct {
	engine  *engine.Engine
	addr    string
	watch   bool
	lintCfg *lint.Config
	logger  *slog.Logger
}

// Config holds configuration for the API server.
type Config struct {
	Engine *engine.Engine
	Addr   string
	Watch  bool
	Lint   *lint.Config
	Logger *slog.Logger
}

// NewServer creates a new API server instance.
func NewServer(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Server{
		engine:  cfg.Engine,
		addr:    cfg.Addr,
		watch:   cfg.Watch,
		lintCfg: cfg.Lint,
		logger:  logger,
	}
}

// Handler builds the HTTP handler with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewMux()
	r.Use(
		middleware.Recoverer,
		middleware.Compress(5),
	)
	s.routes(r)
	return r
}

// Serve starts the server and blocks until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	s.logger.Info("starting metadata API server", "addr", s.addr)

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    s.addr,
		Handler: s.Handler(),
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	if s.watch {
		eg.Go(func() error {
			return s.watchFiles(egctx)
		})
	}

	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down metadata API server")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// watchFiles re-runs discovery when a metadata file changes.
func (s *Server) watchFiles(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	if err := s.addWatchDirs(watcher); err != nil {
		s.logger.Error("failed to watch metadata directories", "error", err)
	}

	var debounceTimer *time.Timer

	for {
		select {
		case <-ctx.Done():
			return nil

		case event := <-watcher.Events:
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove) == 0 {
				continue
			}
			base := filepath.Base(event.Name)
			if base != "requires.txt" && base != "setup.cfg" {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(100*time.Millisecond, func() {
				s.logger.Debug("metadata changed, re-discovering", "file", event.Name)
				if _, err := s.engine.Discover(ctx, engine.DiscoveryOptions{}); err != nil {
					s.logger.Error("discover failed", "error", err)
				}
				if err := s.addWatchDirs(watcher); err != nil {
					s.logger.Error("failed to refresh watches", "error", err)
				}
			})

		case err := <-watcher.Errors:
			s.logger.Error("watcher error", "error", err)
		}
	}
}

// addWatchDirs registers the root and every directory holding a known
// metadata file.
func (s *Server) addWatchDirs(watcher *fsnotify.Watcher) error {
	dirs := map[string]bool{s.engine.Root(): true}
	for _, m := range s.engine.Manifests() {
		dirs[filepath.Dir(m.Path)] = true
	}
	for _, f := range s.engine.Configs() {
		dirs[filepath.Dir(f.Path)] = true
	}

	watched := make(map[string]bool)
	for _, d := range watcher.WatchList() {
		watched[d] = true
	}
	for dir := range dirs {
		if watched[dir] {
			continue
		}
		if err := watcher.Add(dir); err != nil {
			return err
		}
	}
	return nil
}
