package marker

import "sort"

// Environment maps marker variable names to their values for evaluation.
type Environment map[string]string

// knownVariables are the marker variables defined by the dependency
// specification grammar, plus the legacy dotted aliases still found in
// older manifests.
var knownVariables = map[string]bool{
	"python_version":                 true,
	"python_full_version":            true,
	"os_name":                        true,
	"sys_platform":                   true,
	"platform_release":               true,
	"platform_system":                true,
	"platform_version":               true,
	"platform_machine":               true,
	"platform_python_implementation": true,
	"implementation_name":            true,
	"implementation_version":         true,
	"extra":                          true,
}

// legacyAliases maps the deprecated dotted spellings onto their canonical
// underscore names.
var legacyAliases = map[string]string{
	"os.name":                        "os_name",
	"sys.platform":                   "sys_platform",
	"platform.version":               "platform_version",
	"platform.machine":               "platform_machine",
	"platform.python_implementation": "platform_python_implementation",
	"python_implementation":          "platform_python_implementation",
}

// IsKnownVariable reports whether name is a recognized marker variable.
func IsKnownVariable(name string) bool {
	return knownVariables[name]
}

// normalizeVariable folds legacy aliases onto canonical variable names.
func normalizeVariable(name string) string {
	if canonical, ok := legacyAliases[name]; ok {
		return canonical
	}
	return name
}

// Variables returns the known marker variable names, sorted.
func Variables() []string {
	names := make([]string, 0, len(knownVariables))
	for name := range knownVariables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Default returns an environment describing a recent CPython on Linux.
// Callers overlay project-specific values on top of it.
func Default() Environment {
	return Environment{
		"python_version":                 "3.12",
		"python_full_version":            "3.12.0",
		"os_name":                        "posix",
		"sys_platform":                   "linux",
		"platform_release":               "",
		"platform_system":                "Linux",
		"platform_version":               "",
		"platform_machine":               "x86_64",
		"platform_python_implementation": "CPython",
		"implementation_name":            "cpython",
		"implementation_version":         "3.12.0",
		"extra":                          "",
	}
}

// Clone returns a copy of the environment.
func (e Environment) Clone() Environment {
	c := make(Environment, len(e))
	for k, v := range e {
		c[k] = v
	}
	return c
}

// WithExtra returns a copy of the environment with the extra variable
// bound to the given name.
func (e Environment) WithExtra(name string) Environment {
	c := e.Clone()
	c["extra"] = name
	return c
}

// Merge returns a copy of e overlaid with the entries of overrides.
// Unknown variable names in overrides are kept as-is so profiles can carry
// forward-compatible values.
func (e Environment) Merge(overrides map[string]string) Environment {
	c := e.Clone()
	for k, v := range overrides {
		c[normalizeVariable(k)] = v
	}
	return c
}
