package output

// JSON output structures shared across commands.

// DistributionInfo describes one discovered distribution.
type DistributionInfo struct {
	Name         string   `json:"name"`
	Path         string   `json:"path"`
	Extras       []string `json:"extras,omitempty"`
	Requirements int      `json:"requirements"`
	Problems     int      `json:"problems,omitempty"`
	Dependencies []string `json:"dependencies,omitempty"`
	Dependents   []string `json:"dependents,omitempty"`
}

// ListOutput is the JSON payload for the list command.
type ListOutput struct {
	Distributions []DistributionInfo `json:"distributions"`
	Configs       []string           `json:"configs,omitempty"`
	Summary       ListSummary        `json:"summary"`
}

// ListSummary aggregates counts for the list command.
type ListSummary struct {
	TotalDistributions int `json:"total_distributions"`
	TotalConfigs       int `json:"total_configs"`
	TotalExtras        int `json:"total_extras"`
}

// RequirementInfo describes an evaluated requirement.
type RequirementInfo struct {
	Name      string `json:"name"`
	Canonical string `json:"canonical"`
	Specifier string `json:"specifier,omitempty"`
	Extras    string `json:"extras,omitempty"`
	Marker    string `json:"marker,omitempty"`
}

// EvalOutput is the JSON payload for the eval command.
type EvalOutput struct {
	Distribution string            `json:"distribution"`
	Extras       []string          `json:"extras,omitempty"`
	Environment  map[string]string `json:"environment,omitempty"`
	Requirements []RequirementInfo `json:"requirements"`
}

// GraphNode describes one node in the dependency graph output.
type GraphNode struct {
	ID         string   `json:"id"`
	Kind       string   `json:"kind"`
	DependsOn  []string `json:"depends_on,omitempty"`
	Dependents []string `json:"dependents,omitempty"`
}

// GraphWave groups nodes installable in the same wave.
type GraphWave struct {
	Wave  int      `json:"wave"`
	Nodes []string `json:"nodes"`
}

// GraphOutput is the JSON payload for the graph command.
type GraphOutput struct {
	Waves      []GraphWave `json:"waves,omitempty"`
	Nodes      []GraphNode `json:"nodes"`
	TotalNodes int         `json:"total_nodes"`
	TotalEdges int         `json:"total_edges"`
	Cycle      []string    `json:"cycle,omitempty"`
}

// LintDiagnostic is one reported finding.
type LintDiagnostic struct {
	RuleID   string `json:"rule_id"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
	File     string `json:"file,omitempty"`
	Line     int    `json:"line,omitempty"`
	Column   int    `json:"column,omitempty"`
}

// LintSummary aggregates finding counts by severity.
type LintSummary struct {
	TotalIssues   int `json:"total_issues"`
	Errors        int `json:"errors"`
	Warnings      int `json:"warnings"`
	Info          int `json:"info"`
	Hints         int `json:"hints"`
	FilesAnalyzed int `json:"files_analyzed"`
}

// LintOutput is the JSON payload for the lint command.
type LintOutput struct {
	Diagnostics []LintDiagnostic `json:"diagnostics"`
	Summary     LintSummary      `json:"summary"`
}

// CheckOutput is the JSON payload for the check command.
type CheckOutput struct {
	OK           bool     `json:"ok"`
	Manifests    int      `json:"manifests"`
	Configs      int      `json:"configs"`
	ParseErrors  []string `json:"parse_errors,omitempty"`
	LintErrors   int      `json:"lint_errors"`
	LintWarnings int      `json:"lint_warnings"`
	Cycle        []string `json:"cycle,omitempty"`
}
