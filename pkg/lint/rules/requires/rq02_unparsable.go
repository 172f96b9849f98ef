package requires

import (
	"fmt"

	"github.com/wheelhouse-labs/wheelhouse/pkg/lint"
)

func init() {
	lint.Register(UnparsableLine)
}

// UnparsableLine surfaces lines the manifest parser could not read.
var UnparsableLine = lint.RuleDef{
	ID:          "RQ02",
	Name:        "requires.unparsable",
	Group:       "requires",
	Description: "A manifest line is not a valid requirement or section header.",
	Severity:    lint.SeverityError,
	Check:       checkUnparsableLine,
}

func checkUnparsableLine(p *lint.Project, _ map[string]any) []lint.Diagnostic {
	var diagnostics []lint.Diagnostic
	for _, m := range p.Manifests {
		for _, prob := range m.Problems {
			diagnostics = append(diagnostics, lint.Diagnostic{
				RuleID:   "RQ02",
				Severity: lint.SeverityError,
				Message:  fmt.Sprintf("cannot parse %q: %v", prob.Raw, prob.Err),
				File:     m.Path,
				Line:     prob.Line,
			})
		}
	}
	return diagnostics
}
