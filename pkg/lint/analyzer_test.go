package lint_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wheelhouse-labs/wheelhouse/pkg/lint"
	_ "github.com/wheelhouse-labs/wheelhouse/pkg/lint/rules"
	"github.com/wheelhouse-labs/wheelhouse/pkg/manifest"
	"github.com/wheelhouse-labs/wheelhouse/pkg/setupcfg"
)

const messyManifest = `click>=7.0
Click
h11
not !! parseable

[standard]
uvloop>=0.14

[standard]
websockets

[full]
pkg[turbo]
`

const messyConfig = `[flake]
max-line-length = 120

[mypy]
strict = yess
strict = no
ignore_missing_imports =
`

func fixtureProject(t *testing.T) *lint.Project {
	t.Helper()

	m, err := manifest.Parse(strings.NewReader(messyManifest))
	require.NoError(t, err)
	m.Name = "pkg"
	m.Path = "pkg.egg-info/requires.txt"

	cfg, err := setupcfg.Parse(strings.NewReader(messyConfig))
	require.NoError(t, err)
	cfg.Path = "setup.cfg"

	return &lint.Project{
		Manifests: []*manifest.Manifest{m},
		Configs:   []*setupcfg.File{cfg},
	}
}

func rulesFired(diags []lint.Diagnostic) map[string]int {
	fired := make(map[string]int)
	for _, d := range diags {
		fired[d.RuleID]++
	}
	return fired
}

func TestAnalyze_FiresExpectedRules(t *testing.T) {
	a := lint.NewAnalyzer(nil)
	diags := a.Analyze(fixtureProject(t))

	fired := rulesFired(diags)
	assert.Equal(t, 1, fired["RQ01"], "Click duplicates click")
	assert.Equal(t, 1, fired["RQ02"], "the !! line is unparsable")
	assert.GreaterOrEqual(t, fired["RQ03"], 2, "Click and h11 are unconstrained")
	assert.Equal(t, 1, fired["RQ04"], "Click is non-canonical")
	assert.Equal(t, 1, fired["RQ05"], "extra turbo is undeclared")
	assert.Equal(t, 1, fired["RQ07"], "[standard] declared twice")

	assert.Equal(t, 1, fired["CF01"], "[flake] is not a known tool")
	assert.Equal(t, 1, fired["CF02"], "strict set twice")
	assert.Equal(t, 1, fired["CF03"], "ignore_missing_imports is empty")
	assert.Equal(t, 1, fired["CF04"], "yess is not a boolean")
}

func TestAnalyze_Sorted(t *testing.T) {
	a := lint.NewAnalyzer(nil)
	diags := a.Analyze(fixtureProject(t))
	require.NotEmpty(t, diags)

	for i := 1; i < len(diags); i++ {
		prev, cur := diags[i-1], diags[i]
		if prev.File != cur.File {
			assert.Less(t, prev.File, cur.File)
			continue
		}
		assert.LessOrEqual(t, prev.Line, cur.Line)
	}
}

func TestAnalyze_DisabledRule(t *testing.T) {
	cfg := lint.NewConfig().Disable("RQ03")
	a := lint.NewAnalyzer(cfg)

	fired := rulesFired(a.Analyze(fixtureProject(t)))
	assert.Zero(t, fired["RQ03"])
	assert.Equal(t, 1, fired["RQ01"], "other rules still run")
}

func TestAnalyze_SeverityOverride(t *testing.T) {
	cfg := lint.NewConfig().SetSeverity("RQ03", lint.SeverityError)
	a := lint.NewAnalyzer(cfg)

	for _, d := range a.Analyze(fixtureProject(t)) {
		if d.RuleID == "RQ03" {
			assert.Equal(t, lint.SeverityError, d.Severity)
		}
	}
}

func TestAnalyze_RuleOptions(t *testing.T) {
	cfg := lint.NewConfig().SetOption("RQ03", "allow", []any{"h11", "Click", "pkg"})
	a := lint.NewAnalyzer(cfg)

	for _, d := range a.Analyze(fixtureProject(t)) {
		if d.RuleID == "RQ03" {
			t.Errorf("RQ03 should not fire for allowed names, got %q", d.Message)
		}
	}
}

func TestAnalyzeGroup(t *testing.T) {
	a := lint.NewAnalyzer(nil)

	for _, d := range a.AnalyzeGroup(fixtureProject(t), "setupcfg") {
		assert.True(t, strings.HasPrefix(d.RuleID, "CF"), d.RuleID)
	}
}

func TestExtrasCycleRule(t *testing.T) {
	input := `[a]
pkg[b]
[b]
pkg[a]
`
	m, err := manifest.Parse(strings.NewReader(input))
	require.NoError(t, err)
	m.Name = "pkg"

	a := lint.NewAnalyzer(nil)
	fired := rulesFired(a.Analyze(&lint.Project{Manifests: []*manifest.Manifest{m}}))
	assert.Equal(t, 1, fired["RQ06"])
}

func TestRegistry(t *testing.T) {
	assert.GreaterOrEqual(t, lint.Count(), 11)

	rule, ok := lint.GetByID("RQ01")
	require.True(t, ok)
	assert.Equal(t, "requires.duplicate", rule.Name)

	for _, r := range lint.GetByGroup("requires") {
		assert.Equal(t, "requires", r.Group)
	}

	info := lint.Info(rule)
	assert.Equal(t, "RQ01", info.ID)
	assert.Equal(t, lint.SeverityWarning, info.DefaultSeverity)
}

func TestSeverityRoundTrip(t *testing.T) {
	for _, s := range []lint.Severity{lint.SeverityError, lint.SeverityWarning, lint.SeverityInfo, lint.SeverityHint} {
		assert.Equal(t, s, lint.ParseSeverity(s.String()))
	}
	assert.Equal(t, lint.SeverityWarning, lint.ParseSeverity("bogus"))
}
