package toolconfig

import (
	"fmt"

	"github.com/wheelhouse-labs/wheelhouse/pkg/lint"
	"github.com/wheelhouse-labs/wheelhouse/pkg/setupcfg"
)

func init() {
	lint.Register(UnknownSection)
}

// UnknownSection flags sections no recognized tool reads. Often a typo
// like [flake] for [flake8]. An "allow" option lists extra section names
// to accept.
var UnknownSection = lint.RuleDef{
	ID:          "CF01",
	Name:        "setupcfg.unknown-section",
	Group:       "setupcfg",
	Description: "A configuration section does not belong to any recognized tool.",
	Severity:    lint.SeverityWarning,
	Check:       checkUnknownSection,
	ConfigKeys:  []string{"allow"},
}

func checkUnknownSection(p *lint.Project, opts map[string]any) []lint.Diagnostic {
	allowed := make(map[string]bool)
	if raw, ok := opts["allow"].([]any); ok {
		for _, v := range raw {
			if name, ok := v.(string); ok {
				allowed[name] = true
			}
		}
	}

	var diagnostics []lint.Diagnostic
	for _, f := range p.Configs {
		for _, s := range f.Sections {
			if setupcfg.KnownSection(s.Name) || allowed[s.Name] {
				continue
			}
			diagnostics = append(diagnostics, lint.Diagnostic{
				RuleID:   "CF01",
				Severity: lint.SeverityWarning,
				Message:  fmt.Sprintf("section [%s] is not read by any recognized tool", s.Name),
				File:     f.Path,
				Line:     s.Line,
			})
		}
	}
	return diagnostics
}
