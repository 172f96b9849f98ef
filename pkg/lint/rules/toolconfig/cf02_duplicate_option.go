package toolconfig

import (
	"fmt"

	"github.com/wheelhouse-labs/wheelhouse/pkg/lint"
)

func init() {
	lint.Register(DuplicateOption)
}

// DuplicateOption detects the same key set twice within a section. The
// later value silently wins, which is rarely intended.
var DuplicateOption = lint.RuleDef{
	ID:          "CF02",
	Name:        "setupcfg.duplicate-option",
	Group:       "setupcfg",
	Description: "An option key appears more than once in the same section.",
	Severity:    lint.SeverityWarning,
	Check:       checkDuplicateOption,
}

func checkDuplicateOption(p *lint.Project, _ map[string]any) []lint.Diagnostic {
	var diagnostics []lint.Diagnostic
	for _, f := range p.Configs {
		for _, s := range f.Sections {
			seen := make(map[string]int)
			for _, o := range s.Options {
				if first, ok := seen[o.Key]; ok {
					diagnostics = append(diagnostics, lint.Diagnostic{
						RuleID:   "CF02",
						Severity: lint.SeverityWarning,
						Message:  fmt.Sprintf("option %q in [%s] overrides the value set on line %d", o.Key, s.Name, first),
						File:     f.Path,
						Line:     o.Line,
					})
					continue
				}
				seen[o.Key] = o.Line
			}
		}
	}
	return diagnostics
}
