package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wheelhouse-labs/wheelhouse/internal/cli/output"
	"github.com/wheelhouse-labs/wheelhouse/internal/engine"
)

// NewExtrasCommand creates the extras command.
func NewExtrasCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extras <distribution>",
		Short: "Show the extras a distribution declares",
		Long: `Show the optional dependency groups (extras) a distribution
declares, with the requirements each one pulls in.`,
		Example: `  # Show extras of a distribution
  wheelhouse extras uvicorn

  # Output as JSON
  wheelhouse extras uvicorn --output json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtras(cmd, args[0])
		},
	}

	return cmd
}

type extraDetail struct {
	Name         string   `json:"name"`
	Requirements []string `json:"requirements"`
}

type extrasOutput struct {
	Distribution string        `json:"distribution"`
	Extras       []extraDetail `json:"extras"`
}

func runExtras(cmd *cobra.Command, dist string) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	eng := cmdCtx.Engine
	r := cmdCtx.Renderer

	if _, err := eng.Discover(cmd.Context(), engine.DiscoveryOptions{}); err != nil {
		return fmt.Errorf("failed to discover metadata files: %w", err)
	}

	m, err := eng.Manifest(dist)
	if err != nil {
		return err
	}

	payload := extrasOutput{Distribution: dist}
	for _, extra := range m.Extras() {
		detail := extraDetail{Name: extra}
		for _, s := range m.SectionsFor(extra) {
			for _, e := range s.Entries {
				detail.Requirements = append(detail.Requirements, e.Requirement.String())
			}
		}
		payload.Extras = append(payload.Extras, detail)
	}

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(payload)
	case output.ModeMarkdown:
		r.Println(output.FormatHeader(1, fmt.Sprintf("Extras of %s", dist)))
		r.Println("")
		for _, e := range payload.Extras {
			r.Println(output.FormatHeader(2, e.Name))
			for _, req := range e.Requirements {
				r.Printf("- `%s`\n", req)
			}
			r.Println("")
		}
	default:
		styles := r.Styles()
		r.Header(1, fmt.Sprintf("Extras of %s (%d)", dist, len(payload.Extras)))
		for _, e := range payload.Extras {
			r.Println(styles.Header2.Render("[" + e.Name + "]"))
			for _, req := range e.Requirements {
				r.Printf("  %s\n", req)
			}
		}
		if len(payload.Extras) == 0 {
			r.Println(styles.Muted.Render("no extras declared"))
		}
	}

	return nil
}
