package toolconfig

import (
	"fmt"

	"github.com/wheelhouse-labs/wheelhouse/pkg/lint"
)

func init() {
	lint.Register(EmptyValue)
}

// EmptyValue flags options set to nothing. Some tools treat an empty
// value as "reset to default", most ignore it; either way it deserves a
// look.
var EmptyValue = lint.RuleDef{
	ID:          "CF03",
	Name:        "setupcfg.empty-value",
	Group:       "setupcfg",
	Description: "An option is set to an empty value.",
	Severity:    lint.SeverityInfo,
	Check:       checkEmptyValue,
}

func checkEmptyValue(p *lint.Project, _ map[string]any) []lint.Diagnostic {
	var diagnostics []lint.Diagnostic
	for _, f := range p.Configs {
		for _, s := range f.Sections {
			for _, o := range s.Options {
				if o.Value != "" {
					continue
				}
				diagnostics = append(diagnostics, lint.Diagnostic{
					RuleID:   "CF03",
					Severity: lint.SeverityInfo,
					Message:  fmt.Sprintf("option %q in [%s] has no value", o.Key, s.Name),
					File:     f.Path,
					Line:     o.Line,
				})
			}
		}
	}
	return diagnostics
}
