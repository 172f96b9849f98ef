package engine

import (
	"fmt"
	"sort"

	"github.com/wheelhouse-labs/wheelhouse/pkg/lint"
	"github.com/wheelhouse-labs/wheelhouse/pkg/manifest"
	"github.com/wheelhouse-labs/wheelhouse/pkg/marker"
	"github.com/wheelhouse-labs/wheelhouse/pkg/requirement"
	"github.com/wheelhouse-labs/wheelhouse/pkg/setupcfg"
)

// Manifests returns all parsed manifests ordered by path.
func (e *Engine) Manifests() []*manifest.Manifest {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]*manifest.Manifest, 0, len(e.manifests))
	for _, m := range e.manifests {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// Configs returns all parsed tool configuration files ordered by path.
func (e *Engine) Configs() []*setupcfg.File {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]*setupcfg.File, 0, len(e.configs))
	for _, f := range e.configs {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// Distributions returns the canonical names of all discovered
// distributions, sorted.
func (e *Engine) Distributions() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	seen := make(map[string]bool)
	var names []string
	for _, m := range e.manifests {
		if m.Name == "" {
			continue
		}
		name := requirement.CanonicalName(m.Name)
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Manifest returns the manifest of a distribution by (any spelling of)
// its name.
func (e *Engine) Manifest(dist string) (*manifest.Manifest, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	want := requirement.CanonicalName(dist)
	var paths []string
	for path := range e.manifests {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	for _, path := range paths {
		m := e.manifests[path]
		if m.Name != "" && requirement.CanonicalName(m.Name) == want {
			return m, nil
		}
	}
	return nil, fmt.Errorf("no manifest found for distribution %q", dist)
}

// Extras returns the declared extras of a distribution.
func (e *Engine) Extras(dist string) ([]string, error) {
	m, err := e.Manifest(dist)
	if err != nil {
		return nil, err
	}
	return m.Extras(), nil
}

// Evaluate resolves a distribution's requirements against a marker
// environment with the requested extras active. A nil env uses the
// engine's environment.
func (e *Engine) Evaluate(dist string, env marker.Environment, extras []string) ([]*requirement.Requirement, error) {
	m, err := e.Manifest(dist)
	if err != nil {
		return nil, err
	}
	if env == nil {
		env = e.env
	}
	return m.Evaluate(env, extras)
}

// Project assembles the lint context from the current parsed state.
func (e *Engine) Project() *lint.Project {
	return &lint.Project{
		Manifests: e.Manifests(),
		Configs:   e.Configs(),
	}
}

// Lint runs the registered rules against the project.
func (e *Engine) Lint(cfg *lint.Config) []lint.Diagnostic {
	return lint.NewAnalyzer(cfg).Analyze(e.Project())
}
