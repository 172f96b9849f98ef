package toolconfig

import (
	"fmt"

	"github.com/wheelhouse-labs/wheelhouse/pkg/lint"
	"github.com/wheelhouse-labs/wheelhouse/pkg/setupcfg"
)

func init() {
	lint.Register(NonBooleanValue)
}

// NonBooleanValue detects non-boolean values assigned to options the
// owning tool reads as booleans, e.g. "strict = yess".
var NonBooleanValue = lint.RuleDef{
	ID:          "CF04",
	Name:        "setupcfg.non-boolean-value",
	Group:       "setupcfg",
	Description: "A boolean option carries a value that does not parse as a boolean.",
	Severity:    lint.SeverityError,
	Check:       checkNonBooleanValue,
}

func checkNonBooleanValue(p *lint.Project, _ map[string]any) []lint.Diagnostic {
	var diagnostics []lint.Diagnostic
	for _, f := range p.Configs {
		for _, s := range f.Sections {
			tool := setupcfg.CanonicalTool(s.Name)
			if tool == "" {
				continue
			}
			for _, o := range s.Options {
				if !setupcfg.IsBooleanOption(tool, o.Key) {
					continue
				}
				if o.Value == "" || setupcfg.IsBoolLiteral(o.Value) {
					continue
				}
				diagnostics = append(diagnostics, lint.Diagnostic{
					RuleID:   "CF04",
					Severity: lint.SeverityError,
					Message:  fmt.Sprintf("option %q in [%s] expects a boolean, got %q", o.Key, s.Name, o.Value),
					File:     f.Path,
					Line:     o.Line,
				})
			}
		}
	}
	return diagnostics
}
