// Package dag provides directed acyclic graph operations over declared
// dependency relationships: distributions, their extras, and the edges
// between them. It supports cycle detection, topological ordering, and
// grouping into install waves.
package dag

import (
	"fmt"
	"sort"
)

// NodeKind distinguishes what a graph node stands for.
type NodeKind int

const (
	// KindDistribution is a distribution discovered in the project.
	KindDistribution NodeKind = iota
	// KindExtra is a named extra of a discovered distribution.
	KindExtra
	// KindExternal is a requirement naming a distribution not present
	// in the project.
	KindExternal
)

func (k NodeKind) String() string {
	switch k {
	case KindDistribution:
		return "distribution"
	case KindExtra:
		return "extra"
	default:
		return "external"
	}
}

// Node is a node in the dependency graph.
type Node struct {
	// ID is the unique identifier: a canonical distribution name, or
	// "dist[extra]" for extras.
	ID string
	// Kind says what the node stands for.
	Kind NodeKind
	// Dist is the owning distribution's canonical name.
	Dist string
	// Extra is the extra name for KindExtra nodes, "" otherwise.
	Extra string
}

// ExtraID builds the node ID for an extra of a distribution.
func ExtraID(dist, extra string) string {
	return fmt.Sprintf("%s[%s]", dist, extra)
}

// Graph is a directed graph keyed by node ID. Edges run from a
// dependency to its dependents, matching install-before order.
type Graph struct {
	nodes   map[string]*Node
	edges   map[string][]string // dependency -> dependents
	parents map[string][]string // dependent -> dependencies
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{
		nodes:   make(map[string]*Node),
		edges:   make(map[string][]string),
		parents: make(map[string][]string),
	}
}

// AddNode adds a node, updating it in place if the ID already exists.
func (g *Graph) AddNode(n *Node) {
	if existing, ok := g.nodes[n.ID]; ok {
		*existing = *n
		return
	}
	g.nodes[n.ID] = n
	g.edges[n.ID] = []string{}
	g.parents[n.ID] = []string{}
}

// AddEdge records that dependentID depends on dependencyID.
func (g *Graph) AddEdge(dependencyID, dependentID string) error {
	if _, ok := g.nodes[dependencyID]; !ok {
		return fmt.Errorf("dependency node %q does not exist", dependencyID)
	}
	if _, ok := g.nodes[dependentID]; !ok {
		return fmt.Errorf("dependent node %q does not exist", dependentID)
	}
	if dependencyID == dependentID {
		return fmt.Errorf("self-dependency: %s", dependencyID)
	}

	if !contains(g.edges[dependencyID], dependentID) {
		g.edges[dependencyID] = append(g.edges[dependencyID], dependentID)
	}
	if !contains(g.parents[dependentID], dependencyID) {
		g.parents[dependentID] = append(g.parents[dependentID], dependencyID)
	}
	return nil
}

// Node returns the node with the given ID.
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Dependencies returns what the node depends on.
func (g *Graph) Dependencies(id string) []string {
	return g.parents[id]
}

// Dependents returns what depends on the node.
func (g *Graph) Dependents(id string) []string {
	return g.edges[id]
}

// Nodes returns all nodes sorted by ID for deterministic output.
func (g *Graph) Nodes() []*Node {
	nodes := make([]*Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		nodes = append(nodes, n)
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })
	return nodes
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int {
	count := 0
	for _, deps := range g.edges {
		count += len(deps)
	}
	return count
}

// FindCycle returns a cycle path if the graph contains one.
func (g *Graph) FindCycle() ([]string, bool) {
	visited := make(map[string]bool)
	inStack := make(map[string]bool)
	cameFrom := make(map[string]string)

	var cycle []string

	var dfs func(id string) bool
	dfs = func(id string) bool {
		visited[id] = true
		inStack[id] = true

		for _, next := range g.edges[id] {
			if !visited[next] {
				cameFrom[next] = id
				if dfs(next) {
					return true
				}
			} else if inStack[next] {
				// Reconstruct the cycle path.
				cycle = []string{next}
				for cur := id; cur != next; cur = cameFrom[cur] {
					cycle = append([]string{cur}, cycle...)
				}
				cycle = append([]string{next}, cycle...)
				return true
			}
		}

		inStack[id] = false
		return false
	}

	for _, id := range g.sortedIDs() {
		if !visited[id] {
			if dfs(id) {
				return cycle, true
			}
		}
	}
	return nil, false
}

// TopoSort returns nodes with every dependency before its dependents.
// Returns an error if the graph contains a cycle.
func (g *Graph) TopoSort() ([]*Node, error) {
	if cycle, found := g.FindCycle(); found {
		return nil, fmt.Errorf("dependency cycle: %v", cycle)
	}

	visited := make(map[string]bool)
	var result []*Node

	var visit func(id string)
	visit = func(id string) {
		if visited[id] {
			return
		}
		visited[id] = true
		for _, dep := range g.parents[id] {
			visit(dep)
		}
		result = append(result, g.nodes[id])
	}

	for _, id := range g.sortedIDs() {
		visit(id)
	}
	return result, nil
}

// InstallWaves groups node IDs by depth: wave 0 holds nodes with no
// dependencies, wave N nodes whose deepest dependency sits in wave N-1.
// Everything within a wave could be installed concurrently.
func (g *Graph) InstallWaves() ([][]string, error) {
	if cycle, found := g.FindCycle(); found {
		return nil, fmt.Errorf("dependency cycle: %v", cycle)
	}

	depth := make(map[string]int)

	var waveOf func(id string) int
	waveOf = func(id string) int {
		if d, ok := depth[id]; ok {
			return d
		}
		max := -1
		for _, dep := range g.parents[id] {
			if d := waveOf(dep); d > max {
				max = d
			}
		}
		depth[id] = max + 1
		return max + 1
	}

	maxWave := 0
	for id := range g.nodes {
		if w := waveOf(id); w > maxWave {
			maxWave = w
		}
	}

	waves := make([][]string, maxWave+1)
	for id, w := range depth {
		waves[w] = append(waves[w], id)
	}
	for i := range waves {
		sort.Strings(waves[i])
	}
	return waves, nil
}

// Roots returns node IDs with no dependencies, sorted.
func (g *Graph) Roots() []string {
	var roots []string
	for id := range g.nodes {
		if len(g.parents[id]) == 0 {
			roots = append(roots, id)
		}
	}
	sort.Strings(roots)
	return roots
}

// Leaves returns node IDs with no dependents, sorted.
func (g *Graph) Leaves() []string {
	var leaves []string
	for id := range g.nodes {
		if len(g.edges[id]) == 0 {
			leaves = append(leaves, id)
		}
	}
	sort.Strings(leaves)
	return leaves
}

// Closure returns the given IDs plus everything they transitively
// depend on, sorted.
func (g *Graph) Closure(ids []string) []string {
	seen := make(map[string]bool)

	var walk func(id string)
	walk = func(id string) {
		if seen[id] {
			return
		}
		seen[id] = true
		for _, dep := range g.parents[id] {
			walk(dep)
		}
	}

	for _, id := range ids {
		if _, ok := g.nodes[id]; ok {
			walk(id)
		}
	}

	out := make([]string, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Dependents of the given IDs, transitively, including the IDs
// themselves. Used to answer "what breaks if this changes".
func (g *Graph) Affected(ids []string) []string {
	seen := make(map[string]bool)

	var walk func(id string)
	walk = func(id string) {
		if seen[id] {
			return
		}
		seen[id] = true
		for _, dep := range g.edges[id] {
			walk(dep)
		}
	}

	for _, id := range ids {
		if _, ok := g.nodes[id]; ok {
			walk(id)
		}
	}

	out := make([]string, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (g *Graph) sortedIDs() []string {
	ids := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func contains(slice []string, s string) bool {
	for _, v := range slice {
		if v == s {
			return true
		}
	}
	return false
}
