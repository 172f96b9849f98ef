package lint

import "sort"

// Analyzer runs lint rules against a project's packaging metadata.
type Analyzer struct {
	config *Config
}

// NewAnalyzer creates a new analyzer with optional configuration.
func NewAnalyzer(config *Config) *Analyzer {
	if config == nil {
		config = NewConfig()
	}
	return &Analyzer{config: config}
}

// Analyze runs all registered rules against the project and returns
// diagnostics sorted by file, line, and rule ID.
func (a *Analyzer) Analyze(p *Project) []Diagnostic {
	if p == nil {
		return nil
	}

	var diagnostics []Diagnostic
	for _, rule := range GetAll() {
		if a.config.IsDisabled(rule.ID) {
			continue
		}

		opts := a.config.GetRuleOptions(rule.ID)
		diags := rule.Check(p, opts)

		for i := range diags {
			diags[i].Severity = a.config.GetSeverity(rule.ID, diags[i].Severity)
		}
		diagnostics = append(diagnostics, diags...)
	}

	sortDiagnostics(diagnostics)
	return diagnostics
}

// AnalyzeGroup runs only the rules of one group against the project.
func (a *Analyzer) AnalyzeGroup(p *Project, group string) []Diagnostic {
	if p == nil {
		return nil
	}

	var diagnostics []Diagnostic
	for _, rule := range GetByGroup(group) {
		if a.config.IsDisabled(rule.ID) {
			continue
		}
		diags := rule.Check(p, a.config.GetRuleOptions(rule.ID))
		for i := range diags {
			diags[i].Severity = a.config.GetSeverity(rule.ID, diags[i].Severity)
		}
		diagnostics = append(diagnostics, diags...)
	}

	sortDiagnostics(diagnostics)
	return diagnostics
}

func sortDiagnostics(diags []Diagnostic) {
	sort.Slice(diags, func(i, j int) bool {
		if diags[i].File != diags[j].File {
			return diags[i].File < diags[j].File
		}
		if diags[i].Line != diags[j].Line {
			return diags[i].Line < diags[j].Line
		}
		return diags[i].RuleID < diags[j].RuleID
	})
}
