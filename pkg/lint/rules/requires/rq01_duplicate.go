package requires

import (
	"fmt"

	"github.com/wheelhouse-labs/wheelhouse/pkg/lint"
)

func init() {
	lint.Register(DuplicateRequirement)
}

// DuplicateRequirement detects the same distribution listed twice in one
// section.
var DuplicateRequirement = lint.RuleDef{
	ID:          "RQ01",
	Name:        "requires.duplicate",
	Group:       "requires",
	Description: "A distribution is required more than once in the same section.",
	Severity:    lint.SeverityWarning,
	Check:       checkDuplicateRequirement,
}

func checkDuplicateRequirement(p *lint.Project, _ map[string]any) []lint.Diagnostic {
	var diagnostics []lint.Diagnostic
	for _, m := range p.Manifests {
		for _, s := range m.Sections {
			seen := make(map[string]int)
			for _, e := range s.Entries {
				name := e.Requirement.CanonicalNameKey()
				if first, ok := seen[name]; ok {
					diagnostics = append(diagnostics, lint.Diagnostic{
						RuleID:   "RQ01",
						Severity: lint.SeverityWarning,
						Message:  fmt.Sprintf("%q already required on line %d of this section", name, first),
						File:     m.Path,
						Line:     e.Line,
					})
					continue
				}
				seen[name] = e.Line
			}
		}
	}
	return diagnostics
}
