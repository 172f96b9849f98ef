// Package toolconfig contains lint rules for setup.cfg style tool
// configuration files: unknown sections, duplicate options, and value
// typing.
package toolconfig
