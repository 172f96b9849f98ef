// Package manifest implements parsing and evaluation of requires.txt
// dependency manifests: ordered sections of requirement specifier lines,
// each section either unconditional or headed by a bracketed predicate.
//
// Header forms:
//
//	[extra]          requirements installed only when the extra is requested
//	[:marker]        requirements gated by an environment marker
//	[extra:marker]   both at once
package manifest

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/wheelhouse-labs/wheelhouse/pkg/marker"
	"github.com/wheelhouse-labs/wheelhouse/pkg/requirement"
)

// Entry is one requirement line with its source position.
type Entry struct {
	// Requirement is the parsed line.
	Requirement *requirement.Requirement
	// Raw is the line as written.
	Raw string
	// Line is the 1-based line number in the manifest.
	Line int
}

// Section is a run of requirement lines under one header. The unheaded
// lines at the top of the file form the base section (empty Extra, nil
// Marker).
type Section struct {
	// Extra is the extra name gating the section, "" for none.
	Extra string
	// Marker is the environment predicate gating the section, nil for none.
	Marker *marker.Marker
	// RawHeader is the header as written, "" for the base section.
	RawHeader string
	// Line is the header's line number (0 for the base section).
	Line int
	// Entries are the section's requirement lines in order.
	Entries []Entry
}

// Problem is a line that failed to parse. Parsing continues past
// problems so a single typo does not hide the rest of the manifest.
type Problem struct {
	Line int
	Raw  string
	Err  error
}

// Manifest is a parsed requires.txt file.
type Manifest struct {
	// Name is the owning distribution's name, when known. It enables
	// self-referential extra expansion (mypkg depending on mypkg[other]).
	Name string
	// Path is the source file path, "" when parsed from a reader.
	Path string
	// Sections are the manifest's sections in file order. The first is
	// always the base section, possibly empty.
	Sections []*Section
	// Problems are lines that failed to parse.
	Problems []Problem
}

// ParseFile parses a manifest from disk. When the file sits inside a
// *.egg-info directory the distribution name is derived from it.
func ParseFile(path string) (*Manifest, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	return ParseContent(path, content)
}

// ParseContent parses a manifest from already-read content, attributing
// it to path for naming and diagnostics.
func ParseContent(path string, content []byte) (*Manifest, error) {
	m, err := Parse(bytes.NewReader(content))
	if err != nil {
		return nil, err
	}
	m.Path = path
	m.Name = distNameFromPath(path)
	return m, nil
}

// Parse parses a manifest from a reader.
func Parse(r io.Reader) (*Manifest, error) {
	m := &Manifest{}
	current := &Section{}
	m.Sections = append(m.Sections, current)

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if strings.HasPrefix(line, "[") {
			section, err := parseHeader(line, lineNo)
			if err != nil {
				m.Problems = append(m.Problems, Problem{Line: lineNo, Raw: line, Err: err})
				// Open an unreachable section so following lines don't
				// leak into the previous one.
				section = &Section{Extra: line, RawHeader: line, Line: lineNo}
			}
			current = section
			m.Sections = append(m.Sections, current)
			continue
		}

		req, err := requirement.Parse(line)
		if err != nil {
			m.Problems = append(m.Problems, Problem{Line: lineNo, Raw: line, Err: err})
			continue
		}
		current.Entries = append(current.Entries, Entry{Requirement: req, Raw: line, Line: lineNo})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error scanning manifest: %w", err)
	}

	return m, nil
}

// parseHeader parses a bracketed section header.
func parseHeader(line string, lineNo int) (*Section, error) {
	if !strings.HasSuffix(line, "]") {
		return nil, fmt.Errorf("unterminated section header %q", line)
	}
	inner := line[1 : len(line)-1]

	section := &Section{RawHeader: line, Line: lineNo}

	extraPart := inner
	if i := strings.Index(inner, ":"); i >= 0 {
		extraPart = strings.TrimSpace(inner[:i])
		markerText := strings.TrimSpace(inner[i+1:])
		if markerText == "" {
			return nil, fmt.Errorf("empty marker in section header %q", line)
		}
		mk, err := marker.Parse(markerText)
		if err != nil {
			return nil, fmt.Errorf("bad marker in section header %q: %w", line, err)
		}
		section.Marker = mk
	} else {
		extraPart = strings.TrimSpace(extraPart)
		if extraPart == "" {
			return nil, fmt.Errorf("empty section header %q", line)
		}
	}
	section.Extra = extraPart

	return section, nil
}

// distNameFromPath extracts the distribution name when the manifest lives
// in a metadata directory, e.g. "uvicorn.egg-info/requires.txt".
func distNameFromPath(path string) string {
	dir := filepath.Base(filepath.Dir(path))
	if strings.HasSuffix(dir, ".egg-info") {
		return strings.TrimSuffix(dir, ".egg-info")
	}
	return ""
}

// Err returns the first parse problem as an error, or nil when the whole
// manifest parsed cleanly.
func (m *Manifest) Err() error {
	if len(m.Problems) == 0 {
		return nil
	}
	p := m.Problems[0]
	return fmt.Errorf("line %d: %w", p.Line, p.Err)
}

// Base returns the unconditional base section.
func (m *Manifest) Base() *Section {
	return m.Sections[0]
}

// Extras returns the declared extra names, canonicalized, sorted, and
// deduplicated.
func (m *Manifest) Extras() []string {
	seen := make(map[string]bool)
	var extras []string
	for _, s := range m.Sections {
		if s.Extra == "" {
			continue
		}
		key := requirement.CanonicalName(s.Extra)
		if !seen[key] {
			seen[key] = true
			extras = append(extras, key)
		}
	}
	sort.Strings(extras)
	return extras
}

// HasExtra reports whether the manifest declares the extra.
func (m *Manifest) HasExtra(name string) bool {
	key := requirement.CanonicalName(name)
	for _, s := range m.Sections {
		if s.Extra != "" && requirement.CanonicalName(s.Extra) == key {
			return true
		}
	}
	return false
}

// SectionsFor returns the sections gated on the given extra ("" for the
// unconditional and marker-only sections).
func (m *Manifest) SectionsFor(extra string) []*Section {
	key := requirement.CanonicalName(extra)
	var out []*Section
	for _, s := range m.Sections {
		sKey := ""
		if s.Extra != "" {
			sKey = requirement.CanonicalName(s.Extra)
		}
		if sKey == key {
			out = append(out, s)
		}
	}
	return out
}

// String renders the manifest in its canonical on-disk layout.
func (m *Manifest) String() string {
	var b strings.Builder
	for i, s := range m.Sections {
		if i > 0 {
			b.WriteString("\n")
			b.WriteString(s.headerString())
			b.WriteString("\n")
		}
		for _, e := range s.Entries {
			b.WriteString(e.Requirement.String())
			b.WriteString("\n")
		}
	}
	return b.String()
}

// headerString renders a section header canonically.
func (s *Section) headerString() string {
	switch {
	case s.Marker != nil:
		return fmt.Sprintf("[%s:%s]", s.Extra, s.Marker)
	default:
		return fmt.Sprintf("[%s]", s.Extra)
	}
}
