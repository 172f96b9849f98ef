package manifest_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wheelhouse-labs/wheelhouse/pkg/manifest"
	"github.com/wheelhouse-labs/wheelhouse/pkg/marker"
	"github.com/wheelhouse-labs/wheelhouse/pkg/requirement"
)

// serverManifest mirrors the requires.txt an ASGI server ships: a couple
// of base requirements, a marker-gated backport, and a "standard" extra
// pulling in optional speedups.
const serverManifest = `click>=7.0
h11>=0.8

[:python_version < "3.8"]
typing-extensions

[standard]
websockets>=10.4
httptools>=0.5.0
watchfiles>=0.13
uvloop>=0.14.0,!=0.15.0 ; sys_platform != "win32" and sys_platform != "cygwin"
colorama>=0.4 ; sys_platform == "win32"
python-dotenv>=0.13

[full]
uvicorn[standard]
pyyaml>=5.1
`

func parseServer(t *testing.T) *manifest.Manifest {
	t.Helper()
	m, err := manifest.Parse(strings.NewReader(serverManifest))
	require.NoError(t, err)
	require.NoError(t, m.Err())
	m.Name = "uvicorn"
	return m
}

func TestParse_Sections(t *testing.T) {
	m := parseServer(t)

	require.Len(t, m.Sections, 4)

	base := m.Base()
	assert.Equal(t, "", base.Extra)
	assert.Nil(t, base.Marker)
	assert.Len(t, base.Entries, 2)

	gated := m.Sections[1]
	assert.Equal(t, "", gated.Extra)
	require.NotNil(t, gated.Marker)
	assert.Len(t, gated.Entries, 1)

	standard := m.Sections[2]
	assert.Equal(t, "standard", standard.Extra)
	assert.Nil(t, standard.Marker)
	assert.Len(t, standard.Entries, 6)

	assert.Equal(t, []string{"full", "standard"}, m.Extras())
	assert.True(t, m.HasExtra("Standard"))
	assert.False(t, m.HasExtra("minimal"))
}

func TestParse_LinePositions(t *testing.T) {
	m := parseServer(t)

	assert.Equal(t, 1, m.Base().Entries[0].Line)
	assert.Equal(t, 4, m.Sections[1].Line)
	assert.Equal(t, "[standard]", m.Sections[2].RawHeader)
}

func TestParse_ProblemsDoNotAbort(t *testing.T) {
	input := `click>=7.0
this is !! not a requirement
h11>=0.8
[extra
pyyaml>=5.1
`
	m, err := manifest.Parse(strings.NewReader(input))
	require.NoError(t, err)

	require.Len(t, m.Problems, 2)
	assert.Equal(t, 2, m.Problems[0].Line)
	assert.Equal(t, 4, m.Problems[1].Line)
	assert.Error(t, m.Err())

	// Good lines around the problems still parse.
	assert.Len(t, m.Base().Entries, 2)
}

func TestEvaluate_Base(t *testing.T) {
	m := parseServer(t)
	env := marker.Default().Merge(map[string]string{"python_version": "3.12"})

	reqs, err := m.Evaluate(env, nil)
	require.NoError(t, err)

	names := reqNames(reqs)
	assert.Equal(t, []string{"click", "h11"}, names)
}

func TestEvaluate_MarkerGatedSection(t *testing.T) {
	m := parseServer(t)
	env := marker.Default().Merge(map[string]string{"python_version": "3.7"})

	reqs, err := m.Evaluate(env, nil)
	require.NoError(t, err)

	assert.Contains(t, reqNames(reqs), "typing-extensions")
}

func TestEvaluate_Extra(t *testing.T) {
	m := parseServer(t)

	linux := marker.Default().Merge(map[string]string{"sys_platform": "linux"})
	reqs, err := m.Evaluate(linux, []string{"standard"})
	require.NoError(t, err)

	names := reqNames(reqs)
	assert.Contains(t, names, "uvloop")
	assert.NotContains(t, names, "colorama", "win32-only requirement on linux")

	windows := marker.Default().Merge(map[string]string{"sys_platform": "win32"})
	reqs, err = m.Evaluate(windows, []string{"standard"})
	require.NoError(t, err)

	names = reqNames(reqs)
	assert.Contains(t, names, "colorama")
	assert.NotContains(t, names, "uvloop")
}

func TestEvaluate_SelfReferentialExtra(t *testing.T) {
	m := parseServer(t)
	env := marker.Default().Merge(map[string]string{"sys_platform": "linux"})

	reqs, err := m.Evaluate(env, []string{"full"})
	require.NoError(t, err)

	names := reqNames(reqs)
	// [full] pulls in uvicorn[standard], which expands in place.
	assert.Contains(t, names, "pyyaml")
	assert.Contains(t, names, "websockets")
	assert.Contains(t, names, "uvloop")
	assert.NotContains(t, names, "uvicorn", "self-dependency must not be emitted")
}

func TestEvaluate_UnknownExtra(t *testing.T) {
	m := parseServer(t)
	_, err := m.Evaluate(marker.Default(), []string{"nonexistent"})
	assert.Error(t, err)
}

func TestEvaluate_CycleTolerated(t *testing.T) {
	input := `[a]
pkg[b]
[b]
pkg[a]
left-pad>=1.0
`
	m, err := manifest.Parse(strings.NewReader(input))
	require.NoError(t, err)
	m.Name = "pkg"

	reqs, err := m.Evaluate(marker.Default(), []string{"a"})
	require.NoError(t, err)
	assert.Equal(t, []string{"left-pad"}, reqNames(reqs))
}

func TestSelfReferences(t *testing.T) {
	m := parseServer(t)
	refs := m.SelfReferences()
	assert.Equal(t, map[string][]string{"full": {"standard"}}, refs)
}

func TestParseFile_EggInfoName(t *testing.T) {
	dir := t.TempDir()
	infoDir := filepath.Join(dir, "uvicorn.egg-info")
	require.NoError(t, os.MkdirAll(infoDir, 0o755))
	path := filepath.Join(infoDir, "requires.txt")
	require.NoError(t, os.WriteFile(path, []byte(serverManifest), 0o644))

	m, err := manifest.ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, "uvicorn", m.Name)
	assert.Equal(t, path, m.Path)
}

func TestParseContent_NoDiskAccess(t *testing.T) {
	// The path is attribution only; the bytes are the source of truth.
	path := filepath.Join("nowhere", "uvicorn.egg-info", "requires.txt")

	m, err := manifest.ParseContent(path, []byte(serverManifest))
	require.NoError(t, err)
	assert.Equal(t, "uvicorn", m.Name)
	assert.Equal(t, path, m.Path)
	assert.Contains(t, m.Extras(), "standard")
}

func TestString_RoundTrip(t *testing.T) {
	m := parseServer(t)
	out := m.String()

	again, err := manifest.Parse(strings.NewReader(out))
	require.NoError(t, err)
	require.NoError(t, again.Err())

	assert.Len(t, again.Sections, len(m.Sections))
	assert.Equal(t, m.Extras(), again.Extras())
}

func reqNames(reqs []*requirement.Requirement) []string {
	names := make([]string, len(reqs))
	for i, r := range reqs {
		names[i] = r.CanonicalNameKey()
	}
	return names
}
