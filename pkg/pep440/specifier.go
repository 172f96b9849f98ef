package pep440

import (
	"fmt"
	"regexp"
	"strings"
)

// Specifier is a single version constraint clause: an operator and a
// version literal, e.g. ">=1.0" or "==2.1.*".
type Specifier struct {
	// Op is the comparison operator.
	Op string
	// Literal is the raw version literal, possibly with a ".*" suffix.
	Literal string

	// version is the parsed literal with any wildcard suffix stripped.
	// Nil only for the === operator, whose literal is an arbitrary string.
	version *Version
	// wildcard is true for prefix-matching == / != clauses.
	wildcard bool
}

// SpecifierSet is a comma-joined conjunction of specifier clauses, e.g.
// ">=1.0,<2.0,!=1.5". An empty set matches every non-prerelease version.
type SpecifierSet struct {
	// Prereleases opts pre-release and dev versions into matching. When
	// false they still match if any clause literal is itself a pre-release.
	Prereleases bool

	specs []Specifier
}

var specifierPattern = regexp.MustCompile(`^\s*(===|==|!=|<=|>=|~=|<|>)\s*(\S+)\s*$`)

// ParseSpecifier parses a single constraint clause.
func ParseSpecifier(s string) (Specifier, error) {
	m := specifierPattern.FindStringSubmatch(s)
	if m == nil {
		return Specifier{}, fmt.Errorf("invalid specifier %q", strings.TrimSpace(s))
	}

	spec := Specifier{Op: m[1], Literal: m[2]}

	// === compares raw strings; the literal is not required to be a
	// well-formed version.
	if spec.Op == "===" {
		return spec, nil
	}

	lit := spec.Literal
	if strings.HasSuffix(lit, ".*") {
		if spec.Op != "==" && spec.Op != "!=" {
			return Specifier{}, fmt.Errorf("wildcard requires == or !=, got %q", s)
		}
		spec.wildcard = true
		lit = strings.TrimSuffix(lit, ".*")
	}

	v, err := Parse(lit)
	if err != nil {
		return Specifier{}, fmt.Errorf("invalid specifier %q: %w", strings.TrimSpace(s), err)
	}

	if spec.Op == "~=" {
		if len(v.Release) < 2 {
			return Specifier{}, fmt.Errorf("~= requires at least two release segments, got %q", s)
		}
		if v.Local != nil {
			return Specifier{}, fmt.Errorf("~= does not allow a local version label, got %q", s)
		}
	}
	if spec.wildcard && (v.Pre != nil || v.Post != nil || v.Dev != nil || v.Local != nil) {
		return Specifier{}, fmt.Errorf("wildcard allows only a release prefix, got %q", s)
	}

	spec.version = v
	return spec, nil
}

// ParseSet parses a comma-joined list of specifier clauses. The empty
// string yields an empty set.
func ParseSet(s string) (*SpecifierSet, error) {
	set := &SpecifierSet{}
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		spec, err := ParseSpecifier(part)
		if err != nil {
			return nil, err
		}
		set.specs = append(set.specs, spec)
	}
	return set, nil
}

// Specifiers returns the clauses in the set.
func (s *SpecifierSet) Specifiers() []Specifier {
	return s.specs
}

// Empty reports whether the set has no clauses.
func (s *SpecifierSet) Empty() bool {
	return len(s.specs) == 0
}

// String renders the set in canonical comma-joined form.
func (s *SpecifierSet) String() string {
	parts := make([]string, len(s.specs))
	for i, spec := range s.specs {
		parts[i] = spec.String()
	}
	return strings.Join(parts, ",")
}

// String renders the clause without whitespace.
func (s Specifier) String() string {
	return s.Op + s.Literal
}

// Match reports whether the clause alone admits the version. Pre-release
// policy is applied at the set level, not here.
func (s Specifier) Match(v *Version) bool {
	switch s.Op {
	case "===":
		return strings.TrimSpace(s.Literal) == v.Original() || s.Literal == v.String()
	case "==":
		if s.wildcard {
			return s.prefixMatch(v)
		}
		return s.compareEqual(v)
	case "!=":
		if s.wildcard {
			return !s.prefixMatch(v)
		}
		return !s.compareEqual(v)
	case "<=":
		return stripLocal(v).Compare(s.version) <= 0
	case ">=":
		return stripLocal(v).Compare(s.version) >= 0
	case "<":
		return s.exclusiveLess(v)
	case ">":
		return s.exclusiveGreater(v)
	case "~=":
		return s.compatibleMatch(v)
	default:
		return false
	}
}

// compareEqual implements ==. A clause without a local label ignores the
// candidate's local label; a clause with one requires an exact match.
func (s Specifier) compareEqual(v *Version) bool {
	if s.version.Local == nil {
		return stripLocal(v).Equal(s.version)
	}
	return v.Equal(s.version)
}

// prefixMatch implements the ==X.Y.* form: same epoch, release prefix
// equal with the candidate zero-padded as needed.
func (s Specifier) prefixMatch(v *Version) bool {
	if v.Epoch != s.version.Epoch {
		return false
	}
	for i, want := range s.version.Release {
		got := 0
		if i < len(v.Release) {
			got = v.Release[i]
		}
		if got != want {
			return false
		}
	}
	return true
}

// exclusiveLess implements <V, which must not match pre-releases of V
// itself when V is not a pre-release.
func (s Specifier) exclusiveLess(v *Version) bool {
	pv := stripLocal(v)
	if pv.Compare(s.version) >= 0 {
		return false
	}
	if !s.version.IsPrerelease() && pv.IsPrerelease() &&
		pv.BaseVersion() == s.version.BaseVersion() {
		return false
	}
	return true
}

// exclusiveGreater implements >V, which must not match post-releases or
// local versions of V itself when V is not a post-release.
func (s Specifier) exclusiveGreater(v *Version) bool {
	pv := stripLocal(v)
	if pv.Compare(s.version) <= 0 {
		return false
	}
	if !s.version.IsPostrelease() && pv.IsPostrelease() &&
		pv.BaseVersion() == s.version.BaseVersion() {
		return false
	}
	if v.Local != nil && pv.BaseVersion() == s.version.BaseVersion() {
		return false
	}
	return true
}

// compatibleMatch implements ~=X.Y[.Z]: at least the given version, and a
// release prefix match on all but its final segment.
func (s Specifier) compatibleMatch(v *Version) bool {
	pv := stripLocal(v)
	if pv.Compare(s.version) < 0 {
		return false
	}
	prefix := Specifier{
		Op:       "==",
		wildcard: true,
		version: &Version{
			Epoch:   s.version.Epoch,
			Release: s.version.Release[:len(s.version.Release)-1],
		},
	}
	return prefix.prefixMatch(pv)
}

// stripLocal returns the version without its local label. The receiver is
// not modified.
func stripLocal(v *Version) *Version {
	if v.Local == nil {
		return v
	}
	c := *v
	c.Local = nil
	return &c
}

// Contains reports whether the set admits the version, applying the
// standard pre-release policy: pre-releases are excluded unless the set
// opts in or some clause literal is itself a pre-release.
func (s *SpecifierSet) Contains(v *Version) bool {
	for _, spec := range s.specs {
		if !spec.Match(v) {
			return false
		}
	}
	if v.IsPrerelease() && !s.allowsPrereleases() {
		return false
	}
	return true
}

// allowsPrereleases reports whether pre-release candidates may match.
func (s *SpecifierSet) allowsPrereleases() bool {
	if s.Prereleases {
		return true
	}
	for _, spec := range s.specs {
		if spec.version != nil && spec.version.IsPrerelease() {
			return true
		}
	}
	return false
}

// Filter returns the candidates admitted by the set, in input order. If
// nothing matches and the set would have admitted pre-releases given the
// opt-in, the pre-release candidates are returned as a fallback.
func (s *SpecifierSet) Filter(versions []*Version) []*Version {
	var matched, prerelease []*Version
	for _, v := range versions {
		if s.Contains(v) {
			matched = append(matched, v)
		} else if v.IsPrerelease() && s.matchesIgnoringPolicy(v) {
			prerelease = append(prerelease, v)
		}
	}
	if len(matched) == 0 && len(prerelease) > 0 {
		return prerelease
	}
	return matched
}

func (s *SpecifierSet) matchesIgnoringPolicy(v *Version) bool {
	for _, spec := range s.specs {
		if !spec.Match(v) {
			return false
		}
	}
	return true
}

// ParseLenient parses a specifier set, additionally accepting a bare
// version literal as shorthand for an exact pin. Manifest files in the
// wild occasionally carry "pkg (1.2)" style pins.
func ParseLenient(s string) (*SpecifierSet, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return &SpecifierSet{}, nil
	}
	if set, err := ParseSet(s); err == nil {
		return set, nil
	}
	if _, err := Parse(s); err == nil {
		return ParseSet("==" + s)
	}
	return nil, fmt.Errorf("invalid specifier set %q", s)
}
