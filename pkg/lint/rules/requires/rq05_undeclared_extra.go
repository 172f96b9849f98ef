package requires

import (
	"fmt"

	"github.com/wheelhouse-labs/wheelhouse/pkg/lint"
	"github.com/wheelhouse-labs/wheelhouse/pkg/requirement"
)

func init() {
	lint.Register(UndeclaredSelfExtra)
}

// UndeclaredSelfExtra detects self-referential requirements asking for an
// extra the manifest never declares, e.g. "pkg[speed]" with no [speed]
// section.
var UndeclaredSelfExtra = lint.RuleDef{
	ID:          "RQ05",
	Name:        "requires.undeclared-self-extra",
	Group:       "requires",
	Description: "A self-referential requirement names an extra the manifest does not declare.",
	Severity:    lint.SeverityError,
	Check:       checkUndeclaredSelfExtra,
}

func checkUndeclaredSelfExtra(p *lint.Project, _ map[string]any) []lint.Diagnostic {
	var diagnostics []lint.Diagnostic
	for _, m := range p.Manifests {
		if m.Name == "" {
			continue
		}
		self := requirement.CanonicalName(m.Name)
		for _, s := range m.Sections {
			for _, e := range s.Entries {
				if e.Requirement.CanonicalNameKey() != self {
					continue
				}
				for _, extra := range e.Requirement.Extras {
					if m.HasExtra(extra) {
						continue
					}
					diagnostics = append(diagnostics, lint.Diagnostic{
						RuleID:   "RQ05",
						Severity: lint.SeverityError,
						Message:  fmt.Sprintf("extra %q of %q is not declared in this manifest", extra, m.Name),
						File:     m.Path,
						Line:     e.Line,
					})
				}
			}
		}
	}
	return diagnostics
}
