// Package rules aggregates all lint rule packages. Import it for its
// side effects to make every built-in rule available in the registry.
package rules
