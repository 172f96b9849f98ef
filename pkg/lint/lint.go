// Package lint provides data-driven analysis of packaging metadata.
// Rules inspect parsed dependency manifests and tool configuration files
// and report diagnostics. Rule implementations live in subpackages under
// rules/ and register themselves with the global registry at init time.
package lint

import (
	"github.com/wheelhouse-labs/wheelhouse/pkg/manifest"
	"github.com/wheelhouse-labs/wheelhouse/pkg/setupcfg"
)

// Severity indicates the importance of a diagnostic.
type Severity int

// Severity levels for diagnostics.
const (
	// SeverityError indicates a critical issue that should be fixed.
	SeverityError Severity = iota
	// SeverityWarning indicates a potential issue that should be reviewed.
	SeverityWarning
	// SeverityInfo indicates informational feedback.
	SeverityInfo
	// SeverityHint indicates a suggestion for improvement.
	SeverityHint
)

// String returns the string representation of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInfo:
		return "info"
	case SeverityHint:
		return "hint"
	default:
		return "unknown"
	}
}

// ParseSeverity converts a severity name back to its value. Unknown
// names map to SeverityWarning.
func ParseSeverity(name string) Severity {
	switch name {
	case "error":
		return SeverityError
	case "info":
		return SeverityInfo
	case "hint":
		return SeverityHint
	default:
		return SeverityWarning
	}
}

// Project is the context rules analyze: every dependency manifest and
// tool configuration file discovered in a project.
type Project struct {
	// Manifests are the parsed requires.txt files.
	Manifests []*manifest.Manifest
	// Configs are the parsed setup.cfg files.
	Configs []*setupcfg.File
}

// RuleDef is a data-driven rule definition.
// Rules are stateless - all context comes via the Check function parameters.
type RuleDef struct {
	ID          string    // Unique identifier, e.g., "RQ01"
	Name        string    // Human-readable name, e.g., "requires.duplicate"
	Group       string    // Category: "requires" or "setupcfg"
	Description string    // Human-readable description
	Severity    Severity  // Default severity
	Check       CheckFunc // The check function
	ConfigKeys  []string  // Configuration keys this rule accepts
}

// CheckFunc analyzes a project and returns diagnostics.
// The opts parameter contains rule-specific options from configuration.
type CheckFunc func(p *Project, opts map[string]any) []Diagnostic

// Diagnostic represents a lint finding.
type Diagnostic struct {
	RuleID   string   `json:"rule_id"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	File     string   `json:"file,omitempty"`
	Line     int      `json:"line,omitempty"`
	Column   int      `json:"column,omitempty"`
}

// RuleInfo provides metadata about a rule for documentation/tooling.
type RuleInfo struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Group           string   `json:"group"`
	Description     string   `json:"description"`
	DefaultSeverity Severity `json:"default_severity"`
	ConfigKeys      []string `json:"config_keys,omitempty"`
}

// Info extracts metadata from a RuleDef for documentation/tooling.
func Info(r RuleDef) RuleInfo {
	return RuleInfo{
		ID:              r.ID,
		Name:            r.Name,
		Group:           r.Group,
		Description:     r.Description,
		DefaultSeverity: r.Severity,
		ConfigKeys:      r.ConfigKeys,
	}
}
