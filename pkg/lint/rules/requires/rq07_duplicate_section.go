package requires

import (
	"fmt"

	"github.com/wheelhouse-labs/wheelhouse/pkg/lint"
)

func init() {
	lint.Register(DuplicateSection)
}

// DuplicateSection detects a section header declared more than once.
var DuplicateSection = lint.RuleDef{
	ID:          "RQ07",
	Name:        "requires.duplicate-section",
	Group:       "requires",
	Description: "The same section header appears more than once in a manifest.",
	Severity:    lint.SeverityWarning,
	Check:       checkDuplicateSection,
}

func checkDuplicateSection(p *lint.Project, _ map[string]any) []lint.Diagnostic {
	var diagnostics []lint.Diagnostic
	for _, m := range p.Manifests {
		seen := make(map[string]int)
		for _, s := range m.Sections {
			key := s.RawHeader
			if key == "" {
				// The unnamed base section only ever appears first.
				continue
			}
			if first, ok := seen[key]; ok {
				diagnostics = append(diagnostics, lint.Diagnostic{
					RuleID:   "RQ07",
					Severity: lint.SeverityWarning,
					Message:  fmt.Sprintf("section %s already declared on line %d", key, first),
					File:     m.Path,
					Line:     s.Line,
				})
				continue
			}
			seen[key] = s.Line
		}
	}
	return diagnostics
}
