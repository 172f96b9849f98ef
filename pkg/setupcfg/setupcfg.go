// Package setupcfg implements parsing of setup.cfg style tool
// configuration files: bracketed section headers, key = value entries,
// and indented continuation lines forming multi-line list values.
//
// The parser preserves order, positions, and duplicate keys so analyzers
// can report on the file as written; typed accessors sit on top for
// consumers that just want values.
package setupcfg

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
)

// Option is a single key/value entry within a section. Continuation
// lines are joined into Value with newline separators.
type Option struct {
	Key   string
	Value string
	// Line is the 1-based line number of the key.
	Line int
}

// Section is a named block of options.
type Section struct {
	Name string
	// Line is the header's line number.
	Line    int
	Options []*Option
}

// File is a parsed configuration file.
type File struct {
	// Path is the source file path, "" when parsed from a reader.
	Path     string
	Sections []*Section
}

// ParseError is a positioned syntax error.
type ParseError struct {
	Path string
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
	}
	return fmt.Sprintf("%s:%d: %s", e.Path, e.Line, e.Msg)
}

// ParseFile parses a configuration file from disk.
func ParseFile(path string) (*File, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return ParseContent(path, content)
}

// ParseContent parses a configuration file from already-read content,
// attributing it to path for diagnostics.
func ParseContent(path string, content []byte) (*File, error) {
	cfg, err := Parse(bytes.NewReader(content))
	if err != nil {
		if perr, ok := err.(*ParseError); ok {
			perr.Path = path
		}
		return nil, err
	}
	cfg.Path = path
	return cfg, nil
}

// Parse parses a configuration file from a reader.
func Parse(r io.Reader) (*File, error) {
	cfg := &File{}
	var section *Section
	var option *Option

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		raw := scanner.Text()
		trimmed := strings.TrimSpace(raw)

		// Blank lines end any running continuation.
		if trimmed == "" {
			option = nil
			continue
		}

		// Full-line comments. Inline comments are not stripped: values
		// like "ignore = E203 # frozen" keep tool semantics intact.
		if strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, ";") {
			continue
		}

		// Continuation line: indented content under a key.
		if raw[0] == ' ' || raw[0] == '\t' {
			if option == nil {
				return nil, &ParseError{Line: lineNo, Msg: fmt.Sprintf("unexpected continuation %q", trimmed)}
			}
			if option.Value == "" {
				option.Value = trimmed
			} else {
				option.Value += "\n" + trimmed
			}
			continue
		}
		option = nil

		// Section header.
		if strings.HasPrefix(trimmed, "[") {
			if !strings.HasSuffix(trimmed, "]") {
				return nil, &ParseError{Line: lineNo, Msg: fmt.Sprintf("unterminated section header %q", trimmed)}
			}
			name := strings.TrimSpace(trimmed[1 : len(trimmed)-1])
			if name == "" {
				return nil, &ParseError{Line: lineNo, Msg: "empty section header"}
			}
			section = &Section{Name: name, Line: lineNo}
			cfg.Sections = append(cfg.Sections, section)
			continue
		}

		// key = value or key: value.
		if section == nil {
			return nil, &ParseError{Line: lineNo, Msg: fmt.Sprintf("option %q outside any section", trimmed)}
		}
		key, value, ok := splitOption(trimmed)
		if !ok {
			return nil, &ParseError{Line: lineNo, Msg: fmt.Sprintf("expected key = value, got %q", trimmed)}
		}
		option = &Option{Key: key, Value: value, Line: lineNo}
		section.Options = append(section.Options, option)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error scanning config: %w", err)
	}

	return cfg, nil
}

// splitOption splits a key/value line on the first = or :, whichever
// comes first.
func splitOption(line string) (key, value string, ok bool) {
	eq := strings.IndexByte(line, '=')
	colon := strings.IndexByte(line, ':')

	sep := eq
	if sep < 0 || (colon >= 0 && colon < sep) {
		sep = colon
	}
	if sep <= 0 {
		return "", "", false
	}
	return strings.TrimSpace(line[:sep]), strings.TrimSpace(line[sep+1:]), true
}

// Section returns the named section, or nil.
func (f *File) Section(name string) *Section {
	for _, s := range f.Sections {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// SectionNames returns all section names in file order.
func (f *File) SectionNames() []string {
	names := make([]string, len(f.Sections))
	for i, s := range f.Sections {
		names[i] = s.Name
	}
	return names
}

// Option returns the last option with the given key, or nil. Last wins,
// matching how the consuming tools read duplicate keys.
func (s *Section) Option(key string) *Option {
	for i := len(s.Options) - 1; i >= 0; i-- {
		if s.Options[i].Key == key {
			return s.Options[i]
		}
	}
	return nil
}

// Keys returns the section's option keys in file order, duplicates kept.
func (s *Section) Keys() []string {
	keys := make([]string, len(s.Options))
	for i, o := range s.Options {
		keys[i] = o.Key
	}
	return keys
}
