package setupcfg

import (
	"fmt"
	"strconv"
	"strings"
)

// String returns the option's value for key, with ok reporting presence.
func (s *Section) String(key string) (string, bool) {
	o := s.Option(key)
	if o == nil {
		return "", false
	}
	return o.Value, true
}

// Bool interprets the value as a boolean the way the config-reading
// tools do: 1/yes/true/on and 0/no/false/off, case-insensitive.
func (s *Section) Bool(key string) (bool, error) {
	o := s.Option(key)
	if o == nil {
		return false, fmt.Errorf("option %q not set in [%s]", key, s.Name)
	}
	v, err := ParseBool(o.Value)
	if err != nil {
		return false, fmt.Errorf("option %q in [%s]: %w", key, s.Name, err)
	}
	return v, nil
}

// Int interprets the value as an integer.
func (s *Section) Int(key string) (int, error) {
	o := s.Option(key)
	if o == nil {
		return 0, fmt.Errorf("option %q not set in [%s]", key, s.Name)
	}
	n, err := strconv.Atoi(strings.TrimSpace(o.Value))
	if err != nil {
		return 0, fmt.Errorf("option %q in [%s]: invalid integer %q", key, s.Name, o.Value)
	}
	return n, nil
}

// List splits the value into items on commas and newlines, dropping
// empties. Both separators appear in the wild, often mixed.
func (s *Section) List(key string) []string {
	o := s.Option(key)
	if o == nil {
		return nil
	}
	return SplitList(o.Value)
}

// ParseBool parses a tool-config boolean literal.
func ParseBool(v string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "yes", "true", "on":
		return true, nil
	case "0", "no", "false", "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean %q", v)
	}
}

// IsBoolLiteral reports whether v parses as a tool-config boolean.
func IsBoolLiteral(v string) bool {
	_, err := ParseBool(v)
	return err == nil
}

// SplitList splits a raw option value into list items on commas and
// newlines.
func SplitList(v string) []string {
	var items []string
	for _, line := range strings.Split(v, "\n") {
		for _, part := range strings.Split(line, ",") {
			if item := strings.TrimSpace(part); item != "" {
				items = append(items, item)
			}
		}
	}
	return items
}
