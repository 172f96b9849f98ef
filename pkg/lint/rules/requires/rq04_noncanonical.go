package requires

import (
	"fmt"

	"github.com/wheelhouse-labs/wheelhouse/pkg/lint"
	"github.com/wheelhouse-labs/wheelhouse/pkg/requirement"
)

func init() {
	lint.Register(NonCanonicalName)
}

// NonCanonicalName flags spellings that differ from the canonical form,
// e.g. "Typing_Extensions" for "typing-extensions".
var NonCanonicalName = lint.RuleDef{
	ID:          "RQ04",
	Name:        "requires.non-canonical-name",
	Group:       "requires",
	Description: "A distribution name is not spelled in canonical form.",
	Severity:    lint.SeverityInfo,
	Check:       checkNonCanonicalName,
}

func checkNonCanonicalName(p *lint.Project, _ map[string]any) []lint.Diagnostic {
	var diagnostics []lint.Diagnostic
	for _, m := range p.Manifests {
		for _, s := range m.Sections {
			for _, e := range s.Entries {
				name := e.Requirement.Name
				canonical := requirement.CanonicalName(name)
				if name == canonical {
					continue
				}
				diagnostics = append(diagnostics, lint.Diagnostic{
					RuleID:   "RQ04",
					Severity: lint.SeverityInfo,
					Message:  fmt.Sprintf("name %q is spelled non-canonically; canonical form is %q", name, canonical),
					File:     m.Path,
					Line:     e.Line,
				})
			}
		}
	}
	return diagnostics
}
