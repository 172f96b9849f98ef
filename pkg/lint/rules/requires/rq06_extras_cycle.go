package requires

import (
	"fmt"
	"strings"

	"github.com/wheelhouse-labs/wheelhouse/internal/dag"
	"github.com/wheelhouse-labs/wheelhouse/pkg/lint"
)

func init() {
	lint.Register(ExtrasCycle)
}

// ExtrasCycle detects extras that pull each other in through
// self-referential requirements. Evaluation tolerates the cycle, but it
// usually signals a declaration mistake.
var ExtrasCycle = lint.RuleDef{
	ID:          "RQ06",
	Name:        "requires.extras-cycle",
	Group:       "requires",
	Description: "Extras of a manifest reference each other in a cycle.",
	Severity:    lint.SeverityWarning,
	Check:       checkExtrasCycle,
}

func checkExtrasCycle(p *lint.Project, _ map[string]any) []lint.Diagnostic {
	var diagnostics []lint.Diagnostic
	for _, m := range p.Manifests {
		refs := m.SelfReferences()
		if len(refs) == 0 {
			continue
		}

		g := dag.NewGraph()
		for _, extra := range m.Extras() {
			g.AddNode(&dag.Node{ID: extra, Kind: dag.KindExtra, Dist: m.Name, Extra: extra})
		}
		for from, targets := range refs {
			for _, to := range targets {
				if _, ok := g.Node(to); !ok {
					continue
				}
				if from == to {
					continue
				}
				// "from" pulls in "to", so "to" is the dependency.
				g.AddEdge(to, from)
			}
		}

		if cycle, found := g.FindCycle(); found {
			diagnostics = append(diagnostics, lint.Diagnostic{
				RuleID:   "RQ06",
				Severity: lint.SeverityWarning,
				Message:  fmt.Sprintf("extras form a cycle: %s", strings.Join(cycle, " -> ")),
				File:     m.Path,
			})
		}
	}
	return diagnostics
}
