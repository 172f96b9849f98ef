// Package pep440 implements version parsing, ordering, and version
// constraint matching for Python package versions.
//
// Versions follow the scheme epoch!release[pre][post][dev][+local], e.g.
// "1!2.0.3rc1.post2.dev4+ubuntu.1". Parsing normalizes the many spellings
// the scheme permits (case, "v" prefix, -/_/. separators, alpha/beta/c
// aliases) into a single canonical form.
package pep440

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// PreRelease holds a pre-release segment: a phase letter and a number.
// Letter is always one of "a", "b", or "rc" after normalization.
type PreRelease struct {
	Letter string
	Number int
}

// Version is a parsed package version.
type Version struct {
	// Epoch is the version epoch (the N! prefix), 0 when absent.
	Epoch int
	// Release holds the dotted release segments.
	Release []int
	// Pre is the pre-release segment, nil for final releases.
	Pre *PreRelease
	// Post is the post-release number, nil when absent.
	Post *int
	// Dev is the development release number, nil when absent.
	Dev *int
	// Local holds the local version label segments (after +), nil when absent.
	Local []string

	original string
}

// versionPattern matches the full version grammar including all the
// non-canonical spellings that normalization folds away.
var versionPattern = regexp.MustCompile(`(?i)^\s*v?` +
	`(?:(\d+)!)?` + // epoch
	`(\d+(?:\.\d+)*)` + // release
	`(?:[-_.]?(preview|alpha|beta|pre|rc|a|b|c)[-_.]?(\d+)?)?` + // pre
	`(?:(?:-(\d+))|(?:[-_.]?(post|rev|r)[-_.]?(\d+)?))?` + // post
	`(?:[-_.]?(dev)[-_.]?(\d+)?)?` + // dev
	`(?:\+([a-z0-9]+(?:[-_.][a-z0-9]+)*))?` + // local
	`\s*$`)

// localSeparator splits local version labels on any permitted separator.
var localSeparator = regexp.MustCompile(`[-_.]`)

// Parse parses a version string. It accepts any spelling permitted by the
// version scheme and returns the normalized form.
func Parse(s string) (*Version, error) {
	m := versionPattern.FindStringSubmatch(s)
	if m == nil {
		return nil, fmt.Errorf("invalid version %q", strings.TrimSpace(s))
	}

	v := &Version{original: strings.TrimSpace(s)}

	if m[1] != "" {
		v.Epoch, _ = strconv.Atoi(m[1])
	}

	for _, part := range strings.Split(m[2], ".") {
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid release segment %q in %q", part, s)
		}
		v.Release = append(v.Release, n)
	}

	if m[3] != "" {
		v.Pre = &PreRelease{
			Letter: normalizePreLetter(m[3]),
			Number: atoiDefault(m[4]),
		}
	}

	// Post-release: either the bare "-N" form or an explicit post/rev/r.
	if m[5] != "" {
		n := atoiDefault(m[5])
		v.Post = &n
	} else if m[6] != "" {
		n := atoiDefault(m[7])
		v.Post = &n
	}

	if m[8] != "" {
		n := atoiDefault(m[9])
		v.Dev = &n
	}

	if m[10] != "" {
		v.Local = localSeparator.Split(strings.ToLower(m[10]), -1)
	}

	return v, nil
}

// MustParse parses a version string and panics on error. Intended for
// literals in tests and rule tables.
func MustParse(s string) *Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// normalizePreLetter maps pre-release aliases to canonical letters.
func normalizePreLetter(l string) string {
	switch strings.ToLower(l) {
	case "a", "alpha":
		return "a"
	case "b", "beta":
		return "b"
	default: // c, rc, pre, preview
		return "rc"
	}
}

func atoiDefault(s string) int {
	if s == "" {
		return 0
	}
	n, _ := strconv.Atoi(s)
	return n
}

// String returns the canonical form of the version.
func (v *Version) String() string {
	var b strings.Builder

	if v.Epoch != 0 {
		fmt.Fprintf(&b, "%d!", v.Epoch)
	}

	parts := make([]string, len(v.Release))
	for i, n := range v.Release {
		parts[i] = strconv.Itoa(n)
	}
	b.WriteString(strings.Join(parts, "."))

	if v.Pre != nil {
		fmt.Fprintf(&b, "%s%d", v.Pre.Letter, v.Pre.Number)
	}
	if v.Post != nil {
		fmt.Fprintf(&b, ".post%d", *v.Post)
	}
	if v.Dev != nil {
		fmt.Fprintf(&b, ".dev%d", *v.Dev)
	}
	if v.Local != nil {
		b.WriteString("+")
		b.WriteString(strings.Join(v.Local, "."))
	}

	return b.String()
}

// Original returns the string the version was parsed from.
func (v *Version) Original() string {
	return v.original
}

// BaseVersion returns the canonical epoch!release form with any pre, post,
// dev, and local segments stripped.
func (v *Version) BaseVersion() string {
	var b strings.Builder
	if v.Epoch != 0 {
		fmt.Fprintf(&b, "%d!", v.Epoch)
	}
	parts := make([]string, len(v.Release))
	for i, n := range v.Release {
		parts[i] = strconv.Itoa(n)
	}
	b.WriteString(strings.Join(parts, "."))
	return b.String()
}

// IsPrerelease reports whether the version is a pre-release or a dev release.
func (v *Version) IsPrerelease() bool {
	return v.Pre != nil || v.Dev != nil
}

// IsPostrelease reports whether the version has a post-release segment.
func (v *Version) IsPostrelease() bool {
	return v.Post != nil
}

// Compare returns -1, 0, or +1 ordering v against other under the scheme's
// total order: dev releases sort before pre-releases, pre-releases before
// the final release, post-releases after it. Trailing zero release segments
// are insignificant ("1.0" equals "1.0.0").
func (v *Version) Compare(other *Version) int {
	if c := cmpInt(v.Epoch, other.Epoch); c != 0 {
		return c
	}
	if c := cmpRelease(v.Release, other.Release); c != 0 {
		return c
	}
	if c := cmpPre(v, other); c != 0 {
		return c
	}
	if c := cmpOptional(v.Post, other.Post, -1); c != 0 {
		return c
	}
	if c := cmpOptional(v.Dev, other.Dev, 1); c != 0 {
		return c
	}
	return cmpLocal(v.Local, other.Local)
}

// Equal reports whether v and other are the same version under Compare.
func (v *Version) Equal(other *Version) bool {
	return v.Compare(other) == 0
}

// LessThan reports whether v sorts before other.
func (v *Version) LessThan(other *Version) bool {
	return v.Compare(other) < 0
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// cmpRelease compares release segment lists with trailing zeros ignored.
func cmpRelease(a, b []int) int {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		av, bv := 0, 0
		if i < len(a) {
			av = a[i]
		}
		if i < len(b) {
			bv = b[i]
		}
		if c := cmpInt(av, bv); c != 0 {
			return c
		}
	}
	return 0
}

// preRank converts a version's pre-release state into a sortable rank.
// A bare dev release ("1.0.dev1") sorts before any pre-release of the same
// release; a final release sorts after all of them.
func preRank(v *Version) (rank int, letter int, number int) {
	if v.Pre == nil {
		if v.Post == nil && v.Dev != nil {
			return -1, 0, 0 // dev-only: before every pre-release
		}
		return 1, 0, 0 // final (or post): after every pre-release
	}
	letters := map[string]int{"a": 0, "b": 1, "rc": 2}
	return 0, letters[v.Pre.Letter], v.Pre.Number
}

func cmpPre(a, b *Version) int {
	ar, al, an := preRank(a)
	br, bl, bn := preRank(b)
	if c := cmpInt(ar, br); c != 0 {
		return c
	}
	if c := cmpInt(al, bl); c != 0 {
		return c
	}
	return cmpInt(an, bn)
}

// cmpOptional compares optional numeric segments. missing says where an
// absent segment sorts relative to a present one: -1 for post-releases
// (absent sorts first), +1 for dev releases (absent sorts last).
func cmpOptional(a, b *int, missing int) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return missing
	case b == nil:
		return -missing
	default:
		return cmpInt(*a, *b)
	}
}

// cmpLocal compares local version labels segment-wise. Numeric segments
// compare numerically and always sort above alphanumeric ones. A version
// without a local label sorts before one with.
func cmpLocal(a, b []string) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}

	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if i >= len(a) {
			return -1
		}
		if i >= len(b) {
			return 1
		}
		an, aErr := strconv.Atoi(a[i])
		bn, bErr := strconv.Atoi(b[i])
		switch {
		case aErr == nil && bErr == nil:
			if c := cmpInt(an, bn); c != 0 {
				return c
			}
		case aErr == nil:
			return 1 // numeric beats alphanumeric
		case bErr == nil:
			return -1
		default:
			if c := strings.Compare(a[i], b[i]); c != 0 {
				return c
			}
		}
	}
	return 0
}

// Sort orders versions ascending in place.
func Sort(versions []*Version) {
	sort.Slice(versions, func(i, j int) bool {
		return versions[i].LessThan(versions[j])
	})
}
