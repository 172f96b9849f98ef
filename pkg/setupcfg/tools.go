package setupcfg

import (
	"sort"
	"strings"
)

// ToolConfig groups the sections belonging to one developer tool: a
// linter, type checker, import sorter, test runner, or coverage reporter.
type ToolConfig struct {
	// Tool is the canonical tool name, e.g. "mypy".
	Tool string
	// Sections are the tool's sections in file order. Tools like mypy
	// and coverage split their configuration over several ([mypy] plus
	// per-module [mypy-*] overrides, [coverage:run], [coverage:report]).
	Sections []*Section
}

// toolPrefixes maps section name spellings to canonical tool names.
// Exact names first, then prefix forms.
var toolNames = map[string]string{
	"flake8":      "flake8",
	"pycodestyle": "pycodestyle",
	"pydocstyle":  "pydocstyle",
	"mypy":        "mypy",
	"isort":       "isort",
	"bdist_wheel": "bdist_wheel",
	"metadata":    "metadata",
	"options":     "options",
	"egg_info":    "egg_info",
	"aliases":     "aliases",
}

var toolPrefixes = map[string]string{
	"mypy-":            "mypy",
	"coverage:":        "coverage",
	"tool:":            "", // canonical name is whatever follows
	"options.":         "options",
	"flake8.":          "flake8",
	"pydocstyle.":      "pydocstyle",
	"build_sphinx":     "sphinx",
	"upload_sphinx":    "sphinx",
	"extract_messages": "babel",
}

// booleanOptions lists well-known options that must carry boolean
// values, keyed by tool name. Used by analyzers to catch type mistakes.
var booleanOptions = map[string]map[string]bool{
	"mypy": {
		"strict":                      true,
		"ignore_missing_imports":      true,
		"disallow_untyped_defs":       true,
		"disallow_any_generics":       true,
		"check_untyped_defs":          true,
		"warn_unused_ignores":         true,
		"warn_redundant_casts":        true,
		"warn_return_any":             true,
		"no_implicit_optional":        true,
		"show_error_codes":            true,
		"follow_imports_for_stubs":    true,
		"implicit_reexport":           true,
		"strict_equality":             true,
		"warn_unused_configs":         true,
		"disallow_untyped_decorators": true,
		"disallow_incomplete_defs":    true,
		"disallow_subclassing_any":    true,
	},
	"coverage": {
		"branch":                     true,
		"show_missing":               true,
		"skip_covered":               true,
		"skip_empty":                 true,
		"ignore_errors":              true,
		"include_namespace_packages": true,
	},
	"isort": {
		"combine_as_imports":             true,
		"include_trailing_comma":         true,
		"use_parentheses":                true,
		"ensure_newline_before_comments": true,
	},
	"bdist_wheel": {
		"universal": true,
	},
	"options": {
		"zip_safe":             true,
		"include_package_data": true,
	},
}

// CanonicalTool resolves a section name to its canonical tool name, e.g.
// "tool:pytest" -> "pytest", "mypy-tests.*" -> "mypy", "coverage:run" ->
// "coverage". Unknown sections resolve to "".
func CanonicalTool(sectionName string) string {
	if tool, ok := toolNames[sectionName]; ok {
		return tool
	}
	for prefix, tool := range toolPrefixes {
		if strings.HasPrefix(sectionName, prefix) {
			if tool == "" {
				return strings.TrimPrefix(sectionName, prefix)
			}
			return tool
		}
	}
	return ""
}

// KnownSection reports whether the section name belongs to a recognized
// tool or packaging section.
func KnownSection(name string) bool {
	return CanonicalTool(name) != ""
}

// IsBooleanOption reports whether the option is a known boolean-typed
// setting of the tool.
func IsBooleanOption(tool, key string) bool {
	return booleanOptions[tool][key]
}

// ToolSections groups the file's sections by canonical tool name,
// skipping unrecognized sections. Results are sorted by tool name.
func (f *File) ToolSections() []*ToolConfig {
	byTool := make(map[string]*ToolConfig)
	for _, s := range f.Sections {
		tool := CanonicalTool(s.Name)
		if tool == "" {
			continue
		}
		tc, ok := byTool[tool]
		if !ok {
			tc = &ToolConfig{Tool: tool}
			byTool[tool] = tc
		}
		tc.Sections = append(tc.Sections, s)
	}

	out := make([]*ToolConfig, 0, len(byTool))
	for _, tc := range byTool {
		out = append(out, tc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Tool < out[j].Tool })
	return out
}
