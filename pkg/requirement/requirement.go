// Package requirement implements parsing of dependency requirement
// specifiers: a distribution name, optional extras, an optional version
// constraint or direct URL, and an optional environment marker, e.g.
//
//	uvloop >=0.14.0,!=0.15.0 ; sys_platform != "win32"
//	httptools[brotli] >= 0.5.0
//	watchfiles @ https://example.com/watchfiles-0.13.tar.gz
package requirement

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/wheelhouse-labs/wheelhouse/pkg/marker"
	"github.com/wheelhouse-labs/wheelhouse/pkg/pep440"
)

// Requirement is a parsed requirement specifier line.
type Requirement struct {
	// Name is the distribution name as written.
	Name string
	// Extras are the requested extras, deduplicated, in written order.
	Extras []string
	// Specifiers is the version constraint set; empty when unconstrained.
	Specifiers *pep440.SpecifierSet
	// URL is the direct reference target for "name @ url" requirements.
	URL string
	// Marker is the environment predicate, nil when unconditional.
	Marker *marker.Marker
}

// namePattern matches a distribution name: letters, digits, and interior
// runs of -, _, . separators.
var namePattern = regexp.MustCompile(`^([A-Za-z0-9](?:[A-Za-z0-9._-]*[A-Za-z0-9])?)`)

// canonicalSeparators collapses name separator runs for canonicalization.
var canonicalSeparators = regexp.MustCompile(`[-_.]+`)

// extraPattern validates a single extra name.
var extraPattern = regexp.MustCompile(`^[A-Za-z0-9](?:[A-Za-z0-9._-]*[A-Za-z0-9])?$`)

// CanonicalName normalizes a distribution or extra name: lowercase, with
// every run of -, _, . separators collapsed to a single hyphen.
func CanonicalName(name string) string {
	return strings.ToLower(canonicalSeparators.ReplaceAllString(name, "-"))
}

// Parse parses a single requirement specifier line. Leading and trailing
// whitespace and a trailing comment are tolerated.
func Parse(line string) (*Requirement, error) {
	s := strings.TrimSpace(stripComment(line))
	if s == "" {
		return nil, fmt.Errorf("empty requirement")
	}

	req := &Requirement{Specifiers: &pep440.SpecifierSet{}}

	// Name.
	m := namePattern.FindString(s)
	if m == "" {
		return nil, fmt.Errorf("invalid requirement %q: expected distribution name", line)
	}
	req.Name = m
	s = strings.TrimSpace(s[len(m):])

	// Extras.
	if strings.HasPrefix(s, "[") {
		end := strings.Index(s, "]")
		if end < 0 {
			return nil, fmt.Errorf("invalid requirement %q: unterminated extras", line)
		}
		extras, err := parseExtras(s[1:end])
		if err != nil {
			return nil, fmt.Errorf("invalid requirement %q: %w", line, err)
		}
		req.Extras = extras
		s = strings.TrimSpace(s[end+1:])
	}

	// Split off the marker before interpreting the middle part.
	var markerText string
	if i := strings.Index(s, ";"); i >= 0 {
		markerText = strings.TrimSpace(s[i+1:])
		s = strings.TrimSpace(s[:i])
	}

	// Direct URL reference or version specifiers.
	if strings.HasPrefix(s, "@") {
		req.URL = strings.TrimSpace(s[1:])
		if req.URL == "" {
			return nil, fmt.Errorf("invalid requirement %q: missing URL after @", line)
		}
	} else if s != "" {
		// Parenthesized specifier sets are the older spelling.
		if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
			s = strings.TrimSpace(s[1 : len(s)-1])
		}
		set, err := pep440.ParseLenient(s)
		if err != nil {
			return nil, fmt.Errorf("invalid requirement %q: %w", line, err)
		}
		req.Specifiers = set
	}

	if markerText != "" {
		mk, err := marker.Parse(markerText)
		if err != nil {
			return nil, fmt.Errorf("invalid requirement %q: %w", line, err)
		}
		req.Marker = mk
	}

	return req, nil
}

// parseExtras splits and validates a bracketed extras list.
func parseExtras(s string) ([]string, error) {
	if strings.TrimSpace(s) == "" {
		return nil, fmt.Errorf("empty extras list")
	}

	var extras []string
	seen := make(map[string]bool)
	for _, part := range strings.Split(s, ",") {
		name := strings.TrimSpace(part)
		if !extraPattern.MatchString(name) {
			return nil, fmt.Errorf("invalid extra name %q", name)
		}
		if key := CanonicalName(name); !seen[key] {
			seen[key] = true
			extras = append(extras, name)
		}
	}
	return extras, nil
}

// stripComment removes an unquoted trailing # comment. A # starts a
// comment only at the start of the line or after whitespace; a # glued
// to the preceding token is content, so URL fragments like "#sha256=..."
// and "#egg=..." survive.
func stripComment(line string) string {
	inQuote := byte(0)
	for i := 0; i < len(line); i++ {
		switch c := line[i]; {
		case inQuote != 0 && c == inQuote:
			inQuote = 0
		case inQuote == 0 && (c == '\'' || c == '"'):
			inQuote = c
		case inQuote == 0 && c == '#':
			if i == 0 || line[i-1] == ' ' || line[i-1] == '\t' {
				return line[:i]
			}
		}
	}
	return line
}

// CanonicalNameKey returns the canonical form of the requirement's name.
func (r *Requirement) CanonicalNameKey() string {
	return CanonicalName(r.Name)
}

// Unconstrained reports whether the requirement pins nothing at all: no
// version specifiers and no direct URL.
func (r *Requirement) Unconstrained() bool {
	return r.URL == "" && r.Specifiers.Empty()
}

// Matches reports whether the requirement's marker admits the environment.
// Requirements without a marker always match.
func (r *Requirement) Matches(env marker.Environment) (bool, error) {
	if r.Marker == nil {
		return true, nil
	}
	return r.Marker.Eval(env)
}

// String renders the requirement in canonical form.
func (r *Requirement) String() string {
	var b strings.Builder
	b.WriteString(r.Name)

	if len(r.Extras) > 0 {
		b.WriteString("[")
		b.WriteString(strings.Join(r.Extras, ","))
		b.WriteString("]")
	}

	switch {
	case r.URL != "":
		b.WriteString(" @ ")
		b.WriteString(r.URL)
	case !r.Specifiers.Empty():
		b.WriteString(r.Specifiers.String())
	}

	if r.Marker != nil {
		b.WriteString(" ; ")
		b.WriteString(r.Marker.String())
	}

	return b.String()
}
