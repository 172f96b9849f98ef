package engine

import (
	"github.com/wheelhouse-labs/wheelhouse/internal/dag"
	"github.com/wheelhouse-labs/wheelhouse/pkg/manifest"
	"github.com/wheelhouse-labs/wheelhouse/pkg/requirement"
)

// buildGraph constructs the declared dependency graph from in-memory
// manifests. Nodes are distributions and their extras; requirements
// naming distributions outside the project become external nodes.
// Cycles are kept in the graph so lint can report them.
func (e *Engine) buildGraph() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	g := dag.NewGraph()

	// Phase 1: nodes for every discovered distribution and its extras.
	declared := make(map[string]*manifest.Manifest)
	for _, m := range e.manifests {
		if m.Name == "" {
			continue
		}
		self := requirement.CanonicalName(m.Name)
		declared[self] = m
		g.AddNode(&dag.Node{ID: self, Kind: dag.KindDistribution, Dist: self})
		for _, extra := range m.Extras() {
			id := dag.ExtraID(self, extra)
			g.AddNode(&dag.Node{ID: id, Kind: dag.KindExtra, Dist: self, Extra: extra})
			// An extra always includes its distribution's base set.
			_ = g.AddEdge(self, id)
		}
	}

	// Phase 2: edges from each requirement to the section it serves.
	for _, m := range e.manifests {
		if m.Name == "" {
			continue
		}
		self := requirement.CanonicalName(m.Name)

		for _, s := range m.Sections {
			target := self
			if s.Extra != "" {
				target = dag.ExtraID(self, requirement.CanonicalName(s.Extra))
			}

			for _, entry := range s.Entries {
				req := entry.Requirement
				dep := req.CanonicalNameKey()

				if dep == self {
					// Self-reference: the section depends on the named
					// extras of this same distribution.
					for _, extra := range req.Extras {
						id := dag.ExtraID(self, extra)
						if _, ok := g.Node(id); !ok {
							continue
						}
						if id == target {
							continue
						}
						_ = g.AddEdge(id, target)
					}
					continue
				}

				if _, ok := g.Node(dep); !ok {
					g.AddNode(&dag.Node{ID: dep, Kind: dag.KindExternal, Dist: dep})
				}
				_ = g.AddEdge(dep, target)

				// A requirement with extras also depends on those extras
				// when the dependency lives in this project.
				if _, isLocal := declared[dep]; isLocal {
					for _, extra := range req.Extras {
						id := dag.ExtraID(dep, requirement.CanonicalName(extra))
						if _, ok := g.Node(id); ok {
							_ = g.AddEdge(id, target)
						}
					}
				}
			}
		}
	}

	e.graph = g
	e.logger.Debug("graph built", "nodes", g.NodeCount(), "edges", g.EdgeCount())
	return nil
}

// Graph returns the current dependency graph.
func (e *Engine) Graph() *dag.Graph {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.graph
}
