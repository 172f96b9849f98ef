// Package requires contains lint rules for requires.txt dependency
// manifests: duplicate and unparsable requirements, naming hygiene, and
// extras structure.
package requires
