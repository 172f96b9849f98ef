package commands

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/wheelhouse-labs/wheelhouse/internal/cli/output"
	"github.com/wheelhouse-labs/wheelhouse/internal/engine"
)

// NewGraphCommand creates the graph command.
func NewGraphCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Show the cross-distribution dependency graph",
		Long: `Display the dependency graph linking local distributions, their
extras, and external packages.

Nodes are grouped into install waves: every node in a wave depends only
on nodes from earlier waves, so each wave can be installed in parallel.

Output adapts to environment:
  - Terminal: Styled table
  - Piped/Scripted: Markdown format (agent-friendly)`,
		Example: `  # Show the graph
  wheelhouse graph

  # Output as JSON
  wheelhouse graph --output json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGraph(cmd)
		},
	}

	return cmd
}

func runGraph(cmd *cobra.Command) error {
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

	g := eng.Graph()
	payload := output.GraphOutput{
		TotalNodes: g.NodeCount(),
		TotalEdges: g.EdgeCount(),
	}

	waves, err := g.InstallWaves()
	if err != nil {
		if cycle, found := g.FindCycle(); found {
			payload.Cycle = cycle
		} else {
			return err
		}
	}
	for i, wave := range waves {
		payload.Waves = append(payload.Waves, output.GraphWave{Wave: i, Nodes: wave})
	}

	for _, n := range g.Nodes() {
		payload.Nodes = append(payload.Nodes, output.GraphNode{
			ID:         n.ID,
			Kind:       n.Kind.String(),
			DependsOn:  g.Dependencies(n.ID),
			Dependents: g.Dependents(n.ID),
		})
	}

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(payload)
	case output.ModeMarkdown:
		return graphMarkdown(r, &payload)
	default:
		return graphText(r, &payload)
	}
}

// graphText outputs the graph as a styled wave table.
func graphText(r *output.Renderer, payload *output.GraphOutput) error {
	styles := r.Styles()

	r.Header(1, "Dependency Graph")

	if len(payload.Cycle) > 0 {
		r.Errorf("dependency cycle: %s", strings.Join(payload.Cycle, " -> "))
	}

	t := table.NewWriter()
	t.SetOutputMirror(r.Writer())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Wave", "Nodes"})
	for _, wave := range payload.Waves {
		t.AppendRow(table.Row{wave.Wave, strings.Join(wave.Nodes, ", ")})
	}
	t.Render()

	r.Println(styles.Muted.Render(fmt.Sprintf("Total: %d nodes, %d edges", payload.TotalNodes, payload.TotalEdges)))

	return nil
}

// graphMarkdown outputs the graph in markdown format.
func graphMarkdown(r *output.Renderer, payload *output.GraphOutput) error {
	r.Println(output.FormatHeader(1, "Dependency Graph"))
	r.Println("")

	if len(payload.Cycle) > 0 {
		r.Printf("**Cycle detected:** %s\n\n", strings.Join(payload.Cycle, " -> "))
	}

	for _, wave := range payload.Waves {
		r.Println(output.FormatHeader(2, fmt.Sprintf("Wave %d", wave.Wave)))
		for _, id := range wave.Nodes {
			r.Printf("- %s\n", id)
		}
		r.Println("")
	}

	r.Println(output.FormatHeader(2, "Nodes"))
	for _, n := range payload.Nodes {
		r.Printf("- **%s** (%s)", n.ID, n.Kind)
		if len(n.DependsOn) > 0 {
			r.Printf(" depends on: %s", strings.Join(n.DependsOn, ", "))
		}
		r.Println("")
	}
	r.Println("")

	r.Println(output.FormatKeyValue("Total Nodes", fmt.Sprintf("%d", payload.TotalNodes)))
	r.Println(output.FormatKeyValue("Total Edges", fmt.Sprintf("%d", payload.TotalEdges)))

	return nil
}
