package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wheelhouse-labs/wheelhouse/internal/engine"
	"github.com/wheelhouse-labs/wheelhouse/internal/server"
	_ "github.com/wheelhouse-labs/wheelhouse/pkg/lint/rules" // register lint rules
)

// ServeOptions holds options for the serve command.
type ServeOptions struct {
	Addr    string // Listen address
	NoWatch bool   // Disable the metadata file watcher
}

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	opts := &ServeOptions{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the project metadata over a JSON HTTP API",
		Long: `Start an HTTP server exposing the project's packaging metadata:
distributions, extras, requirement evaluation, the dependency graph,
and lint diagnostics.

Metadata files are watched and re-discovered on change unless
--no-watch is given.`,
		Example: `  # Serve on the configured address
  wheelhouse serve

  # Serve on a specific address
  wheelhouse serve --addr localhost:9000`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", "", "Listen address (default from config)")
	cmd.Flags().BoolVar(&opts.NoWatch, "no-watch", false, "Disable the metadata file watcher")

	return cmd
}

func runServe(cmd *cobra.Command, opts *ServeOptions) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	eng := cmdCtx.Engine
	cfg := cmdCtx.Cfg

	if _, err := eng.Discover(cmd.Context(), engine.DiscoveryOptions{}); err != nil {
		return fmt.Errorf("failed to discover metadata files: %w", err)
	}

	addr := opts.Addr
	if addr == "" {
		addr = cfg.Serve.Addr
	}

	srv := server.NewServer(server.Config{
		Engine: eng,
		Addr:   addr,
		Watch:  !opts.NoWatch,
		Lint:   cfg.ToLintConfig(),
		Logger: cmdCtx.Logger,
	})

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Serving metadata API on http://%s\n", addr)
	return srv.Serve(cmd.Context())
}
