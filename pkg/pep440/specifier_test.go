package pep440_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wheelhouse-labs/wheelhouse/pkg/pep440"
)

func TestParseSpecifier_Invalid(t *testing.T) {
	for _, input := range []string{
		"", "1.0", "=>1.0", "~=1", "==1.0.*.post1", ">=1.0.*", "~=1.0+local",
	} {
		t.Run(input, func(t *testing.T) {
			_, err := pep440.ParseSpecifier(input)
			assert.Error(t, err)
		})
	}
}

func TestSpecifierSet_Contains(t *testing.T) {
	tests := []struct {
		name    string
		set     string
		version string
		want    bool
	}{
		{"simple ge", ">=1.0", "1.5", true},
		{"simple ge miss", ">=1.0", "0.9", false},
		{"conjunction", ">=1.0,<2.0", "1.5", true},
		{"conjunction upper", ">=1.0,<2.0", "2.0", false},
		{"exclusion", ">=1.0,!=1.5", "1.5", false},
		{"exact trailing zeros", "==1.0", "1.0.0", true},
		{"exact epoch", "==1.0", "1!1.0", false},
		{"wildcard", "==1.1.*", "1.1.9", true},
		{"wildcard zero pad", "==1.1.*", "1.1", true},
		{"wildcard miss", "==1.1.*", "1.2.0", false},
		{"not equal wildcard", "!=1.1.*", "1.2", true},
		{"not equal wildcard hit", "!=1.1.*", "1.1.3", false},
		{"compatible patch", "~=2.2.3", "2.2.9", true},
		{"compatible patch upper", "~=2.2.3", "2.3.0", false},
		{"compatible minor", "~=2.2", "2.9", true},
		{"compatible minor lower", "~=2.2", "2.1", false},
		{"compatible minor upper", "~=2.2", "3.0", false},
		{"arbitrary equality", "===foobar", "1.0", false},
		{"lt excludes prerelease of bound", "<1.7", "1.7rc1", false},
		{"lt ordinary", "<1.7", "1.6", true},
		{"gt excludes post of bound", ">1.7", "1.7.post1", false},
		{"gt ordinary", ">1.7", "1.7.1", true},
		{"ge includes post", ">=1.7", "1.7.post1", true},
		{"local ignored for ge", ">=1.0", "1.0+local", true},
		{"eq ignores candidate local", "==1.0", "1.0+anything", true},
		{"eq with local exact", "==1.0+abc", "1.0+abc", true},
		{"eq with local mismatch", "==1.0+abc", "1.0+def", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set, err := pep440.ParseSet(tt.set)
			require.NoError(t, err)
			got := set.Contains(pep440.MustParse(tt.version))
			assert.Equal(t, tt.want, got, "%s against %s", tt.version, tt.set)
		})
	}
}

func TestSpecifierSet_PrereleasePolicy(t *testing.T) {
	set, err := pep440.ParseSet(">=1.0")
	require.NoError(t, err)

	pre := pep440.MustParse("2.0rc1")
	assert.False(t, set.Contains(pre), "pre-releases excluded by default")

	set.Prereleases = true
	assert.True(t, set.Contains(pre), "opt-in admits pre-releases")

	// A pre-release literal in the set opts in implicitly.
	implied, err := pep440.ParseSet(">=2.0rc1")
	require.NoError(t, err)
	assert.True(t, implied.Contains(pre))
}

func TestSpecifierSet_EmptySet(t *testing.T) {
	set, err := pep440.ParseSet("")
	require.NoError(t, err)
	assert.True(t, set.Empty())
	assert.True(t, set.Contains(pep440.MustParse("0.0.1")))
	assert.False(t, set.Contains(pep440.MustParse("1.0rc1")), "empty set still excludes pre-releases")
}

func TestSpecifierSet_Filter(t *testing.T) {
	set, err := pep440.ParseSet(">=1.0,<2.0")
	require.NoError(t, err)

	candidates := []*pep440.Version{
		pep440.MustParse("0.5"),
		pep440.MustParse("1.0"),
		pep440.MustParse("1.5"),
		pep440.MustParse("1.9rc1"),
		pep440.MustParse("2.0"),
	}
	got := set.Filter(candidates)

	want := []string{"1.0", "1.5"}
	require.Len(t, got, len(want))
	for i, v := range got {
		assert.Equal(t, want[i], v.String())
	}
}

func TestSpecifierSet_FilterPrereleaseFallback(t *testing.T) {
	set, err := pep440.ParseSet(">=2.0")
	require.NoError(t, err)

	candidates := []*pep440.Version{
		pep440.MustParse("1.0"),
		pep440.MustParse("3.0rc1"),
	}
	got := set.Filter(candidates)
	require.Len(t, got, 1)
	assert.Equal(t, "3.0rc1", got[0].String(), "only pre-releases match, so they are returned")
}

func TestSpecifierSet_String(t *testing.T) {
	set, err := pep440.ParseSet(" >= 1.0 , != 1.5 , < 2.0 ")
	require.NoError(t, err)
	assert.Equal(t, ">=1.0,!=1.5,<2.0", set.String())
}

func TestParseLenient(t *testing.T) {
	set, err := pep440.ParseLenient("1.2.3")
	require.NoError(t, err)
	assert.True(t, set.Contains(pep440.MustParse("1.2.3")))
	assert.False(t, set.Contains(pep440.MustParse("1.2.4")))

	_, err = pep440.ParseLenient("not a version")
	assert.Error(t, err)
}
