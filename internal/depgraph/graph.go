// Package depgraph derives the directed module graph that the layout engine
// positions and the highlight controller classifies. Nodes are modules and
// edges run from a prerequisite to the module that requires it.
package depgraph

import "github.com/papapumpkin/syllabus/internal/catalog"

// Unresolved marks an edge endpoint whose id matches no node.
const Unresolved = -1

// Node is one module in the graph. Layout state lives in the layout
// package; a Node only carries identity and the fields forces read.
type Node struct {
	ID       string
	Title    string
	Category string
	Level    catalog.Level
}

// Edge is a prerequisite relationship, From (the prerequisite) → To (the
// module that requires it). Source and Target index into Graph.Nodes, or
// are Unresolved when the id is missing from the catalog.
type Edge struct {
	From   string
	To     string
	Source int
	Target int
}

// Dangling reports whether either endpoint failed to resolve.
func (e Edge) Dangling() bool {
	return e.Source == Unresolved || e.Target == Unresolved
}

// Graph is a snapshot of the catalog's dependency structure.
type Graph struct {
	Nodes []Node
	Edges []Edge

	index map[string]int
}

// Build derives the graph. Every module becomes a node, whatever its
// availability, and every prerequisite reference becomes an edge, including
// references to unknown ids. Endpoint ids are resolved to node indices here,
// once. Build never fails.
func Build(cat *catalog.Catalog) *Graph {
	mods := cat.Modules()
	g := &Graph{
		Nodes: make([]Node, 0, len(mods)),
		index: make(map[string]int, len(mods)),
	}
	for _, m := range mods {
		g.index[m.ID] = len(g.Nodes)
		g.Nodes = append(g.Nodes, Node{
			ID:       m.ID,
			Title:    m.Title,
			Category: m.Category,
			Level:    m.Level,
		})
	}
	for _, m := range mods {
		for _, p := range m.Prerequisites {
			g.Edges = append(g.Edges, Edge{
				From:   p,
				To:     m.ID,
				Source: g.Index(p),
				Target: g.Index(m.ID),
			})
		}
	}
	return g
}

// Index returns the node index for id, or Unresolved.
func (g *Graph) Index(id string) int {
	if g == nil {
		return Unresolved
	}
	if i, ok := g.index[id]; ok {
		return i
	}
	return Unresolved
}

// Node returns the node for id.
func (g *Graph) Node(id string) (Node, bool) {
	i := g.Index(id)
	if i == Unresolved {
		return Node{}, false
	}
	return g.Nodes[i], true
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	if g == nil {
		return 0
	}
	return len(g.Nodes)
}

// Outgoing returns the indices of edges whose source is id.
func (g *Graph) Outgoing(id string) []int {
	var out []int
	for i, e := range g.Edges {
		if e.From == id {
			out = append(out, i)
		}
	}
	return out
}

// DanglingEdges returns the edges with an unresolved endpoint.
func (g *Graph) DanglingEdges() []Edge {
	var out []Edge
	for _, e := range g.Edges {
		if e.Dangling() {
			out = append(out, e)
		}
	}
	return out
}
