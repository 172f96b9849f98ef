package requires

import (
	"fmt"

	"github.com/wheelhouse-labs/wheelhouse/pkg/lint"
	"github.com/wheelhouse-labs/wheelhouse/pkg/requirement"
)

func init() {
	lint.Register(UnconstrainedRequirement)
}

// UnconstrainedRequirement flags requirements carrying no version
// constraint at all. An "allow" option lists names to exempt.
var UnconstrainedRequirement = lint.RuleDef{
	ID:          "RQ03",
	Name:        "requires.unconstrained",
	Group:       "requires",
	Description: "A requirement has no version specifier.",
	Severity:    lint.SeverityHint,
	Check:       checkUnconstrained,
	ConfigKeys:  []string{"allow"},
}

func checkUnconstrained(p *lint.Project, opts map[string]any) []lint.Diagnostic {
	allowed := make(map[string]bool)
	if raw, ok := opts["allow"].([]any); ok {
		for _, v := range raw {
			if name, ok := v.(string); ok {
				allowed[requirement.CanonicalName(name)] = true
			}
		}
	}

	var diagnostics []lint.Diagnostic
	for _, m := range p.Manifests {
		for _, s := range m.Sections {
			for _, e := range s.Entries {
				if !e.Requirement.Unconstrained() {
					continue
				}
				if allowed[e.Requirement.CanonicalNameKey()] {
					continue
				}
				diagnostics = append(diagnostics, lint.Diagnostic{
					RuleID:   "RQ03",
					Severity: lint.SeverityHint,
					Message:  fmt.Sprintf("%q accepts any version; consider a lower bound", e.Requirement.Name),
					File:     m.Path,
					Line:     e.Line,
				})
			}
		}
	}
	return diagnostics
}
