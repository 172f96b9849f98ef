package rules

// Import all rule subpackages to register them with the global registry.
// This file triggers all init() functions in the rule packages.
import (
	_ "github.com/wheelhouse-labs/wheelhouse/pkg/lint/rules/requires"
	_ "github.com/wheelhouse-labs/wheelhouse/pkg/lint/rules/toolconfig"
)
