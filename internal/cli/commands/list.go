package commands

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/wheelhouse-labs/wheelhouse/internal/cli/output"
	"github.com/wheelhouse-labs/wheelhouse/internal/engine"
	"github.com/wheelhouse-labs/wheelhouse/pkg/requirement"
)

// NewListCommand creates the list command.
func NewListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all distributions and their metadata files",
		Long: `List all discovered distributions with their extras, requirement
counts, and dependency relationships.

Output adapts to environment:
  - Terminal: Styled table
  - Piped/Scripted: Markdown format (agent-friendly)

Use --output to override: auto, text, markdown, json`,
		Example: `  # List all distributions
  wheelhouse list

  # List as JSON
  wheelhouse list --output json

  # List as Markdown
  wheelhouse list --output markdown`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runList(cmd)
		},
	}

	return cmd
}

func runList(cmd *cobra.Command) error {
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

	payload := buildListOutput(eng)

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(payload)
	case output.ModeMarkdown:
		return listMarkdown(r, payload)
	default:
		return listText(r, payload)
	}
}

// buildListOutput assembles the distribution inventory.
func buildListOutput(eng *engine.Engine) *output.ListOutput {
	graph := eng.Graph()

	payload := &output.ListOutput{}
	for _, f := range eng.Configs() {
		payload.Configs = append(payload.Configs, f.Path)
	}

	for _, name := range eng.Distributions() {
		m, err := eng.Manifest(name)
		if err != nil {
			continue
		}

		reqCount := 0
		for _, s := range m.Sections {
			reqCount += len(s.Entries)
		}

		info := output.DistributionInfo{
			Name:         requirement.CanonicalName(m.Name),
			Path:         m.Path,
			Extras:       m.Extras(),
			Requirements: reqCount,
			Problems:     len(m.Problems),
		}
		if graph != nil {
			info.Dependencies = graph.Dependencies(info.Name)
			info.Dependents = graph.Dependents(info.Name)
		}

		payload.Summary.TotalExtras += len(info.Extras)
		payload.Distributions = append(payload.Distributions, info)
	}

	payload.Summary.TotalDistributions = len(payload.Distributions)
	payload.Summary.TotalConfigs = len(payload.Configs)
	return payload
}

// listText outputs distributions as a styled table.
func listText(r *output.Renderer, payload *output.ListOutput) error {
	styles := r.Styles()

	r.Header(1, fmt.Sprintf("Distributions (%d total)", payload.Summary.TotalDistributions))

	t := table.NewWriter()
	t.SetOutputMirror(r.Writer())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Distribution", "Extras", "Requirements", "Problems"})

	for _, d := range payload.Distributions {
		t.AppendRow(table.Row{
			styles.DistName.Render(d.Name),
			strings.Join(d.Extras, ", "),
			d.Requirements,
			d.Problems,
		})
	}
	t.Render()

	if len(payload.Configs) > 0 {
		r.Println("")
		r.Println(styles.Header2.Render(fmt.Sprintf("Tool configs (%d)", len(payload.Configs))))
		for _, path := range payload.Configs {
			r.Printf("  %s\n", path)
		}
	}

	return nil
}

// listMarkdown outputs distributions in markdown format.
func listMarkdown(r *output.Renderer, payload *output.ListOutput) error {
	r.Println(output.FormatHeader(1, fmt.Sprintf("Distributions (%d total)", payload.Summary.TotalDistributions)))
	r.Println("")

	for _, d := range payload.Distributions {
		r.Println(output.FormatHeader(2, d.Name))
		r.Println(output.FormatKeyValue("File", d.Path))
		if len(d.Extras) > 0 {
			r.Println(output.FormatKeyValue("Extras", strings.Join(d.Extras, ", ")))
		}
		r.Println(output.FormatKeyValue("Requirements", fmt.Sprintf("%d", d.Requirements)))
		if d.Problems > 0 {
			r.Println(output.FormatKeyValue("Unparsable lines", fmt.Sprintf("%d", d.Problems)))
		}
		if len(d.Dependencies) > 0 {
			r.Println(output.FormatKeyValue("Depends on", strings.Join(d.Dependencies, ", ")))
		}
		if len(d.Dependents) > 0 {
			r.Println(output.FormatKeyValue("Used by", strings.Join(d.Dependents, ", ")))
		}
		r.Println("")
	}

	if len(payload.Configs) > 0 {
		r.Println(output.FormatHeader(2, "Tool configs"))
		for _, path := range payload.Configs {
			r.Printf("- %s\n", path)
		}
		r.Println("")
	}

	return nil
}
