// Package dag provides a strict directed acyclic graph of modules for
// ordering work: topological study order, cycle detection at edge insertion,
// transitive prerequisite queries and independent track partitioning.
//
// Unlike the tolerant evaluators in prereq and depgraph, a DAG refuses
// edges that would break acyclicity, which makes it the right tool for
// reporting integrity problems and for producing a linear study order.
package dag

import (
	"errors"
	"fmt"
	"sort"
)

// ErrCycle is returned when an edge would introduce a cycle.
var ErrCycle = errors.New("cycle detected")

// ErrNodeNotFound is returned when an edge references a missing node.
var ErrNodeNotFound = errors.New("node not found")

// ErrDuplicateNode is returned when adding a node that already exists.
var ErrDuplicateNode = errors.New("duplicate node")

// ErrSelfEdge is returned when a node would require itself.
var ErrSelfEdge = errors.New("self-referencing edge")

// Node is a module in the DAG.
type Node struct {
	ID   string
	Rank int // lower ranks are studied first among otherwise equal nodes

	TrackID int // assigned by ComputeTracks
}

// DAG is a directed acyclic graph whose edges point from a module to the
// modules it requires: if B lists A as a prerequisite there is an edge
// B → A.
type DAG struct {
	nodes map[string]*Node
	// requires maps a module to the set of its prerequisites.
	requires map[string]map[string]bool
	// unlocks maps a module to the set of modules that require it.
	unlocks map[string]map[string]bool
}

// New creates an empty DAG.
func New() *DAG {
	return &DAG{
		nodes:    make(map[string]*Node),
		requires: make(map[string]map[string]bool),
		unlocks:  make(map[string]map[string]bool),
	}
}

// AddNode adds a module with the given rank.
func (d *DAG) AddNode(id string, rank int) error {
	if _, exists := d.nodes[id]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateNode, id)
	}
	d.nodes[id] = &Node{ID: id, Rank: rank}
	d.requires[id] = make(map[string]bool)
	d.unlocks[id] = make(map[string]bool)
	return nil
}

// AddEdge records that module requires prereq. Both must exist, and the
// edge must not close a cycle. Re-adding an existing edge is a no-op.
func (d *DAG) AddEdge(module, prereq string) error {
	if module == prereq {
		return fmt.Errorf("%w: %s", ErrSelfEdge, module)
	}
	if _, ok := d.nodes[module]; !ok {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, module)
	}
	if _, ok := d.nodes[prereq]; !ok {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, prereq)
	}
	if d.requires[module][prereq] {
		return nil
	}
	// prereq already (transitively) requiring module means the new edge
	// would close a loop.
	if d.hasPath(prereq, module) {
		return fmt.Errorf("%w: %s → %s", ErrCycle, module, prereq)
	}
	d.requires[module][prereq] = true
	d.unlocks[prereq][module] = true
	return nil
}

// Node returns the node with the given id, or nil.
func (d *DAG) Node(id string) *Node {
	return d.nodes[id]
}

// Nodes returns all node ids sorted alphabetically.
func (d *DAG) Nodes() []string {
	ids := make([]string, 0, len(d.nodes))
	for id := range d.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of nodes.
func (d *DAG) Len() int {
	return len(d.nodes)
}

// TopologicalSort returns ids with every prerequisite ahead of the modules
// that need it. Among nodes freed at the same time, lower rank comes first,
// then alphabetical id.
func (d *DAG) TopologicalSort() ([]string, error) {
	pending := make(map[string]int, len(d.nodes))
	var queue []string
	for id := range d.nodes {
		pending[id] = len(d.requires[id])
		if pending[id] == 0 {
			queue = append(queue, id)
		}
	}
	queue = d.rankSorted(queue)

	order := make([]string, 0, len(d.nodes))
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		order = append(order, id)

		var freed []string
		for next := range d.unlocks[id] {
			pending[next]--
			if pending[next] == 0 {
				freed = append(freed, next)
			}
		}
		queue = append(queue, d.rankSorted(freed)...)
	}

	if len(order) != len(d.nodes) {
		return nil, fmt.Errorf("%w: ordered %d of %d nodes", ErrCycle, len(order), len(d.nodes))
	}
	return order, nil
}

// Ancestors returns every module id transitively required by id, sorted.
func (d *DAG) Ancestors(id string) []string {
	return d.reach(id, d.requires)
}

// Descendants returns every module id that transitively requires id, sorted.
func (d *DAG) Descendants(id string) []string {
	return d.reach(id, d.unlocks)
}

func (d *DAG) reach(id string, edges map[string]map[string]bool) []string {
	if _, ok := d.nodes[id]; !ok {
		return nil
	}
	visited := make(map[string]bool)
	var walk func(string)
	walk = func(cur string) {
		for next := range edges[cur] {
			if !visited[next] {
				visited[next] = true
				walk(next)
			}
		}
	}
	walk(id)
	out := make([]string, 0, len(visited))
	for v := range visited {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// hasPath reports whether dst is reachable from src along requires edges.
func (d *DAG) hasPath(src, dst string) bool {
	visited := map[string]bool{src: true}
	queue := []string{src}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for next := range d.requires[cur] {
			if next == dst {
				return true
			}
			if !visited[next] {
				visited[next] = true
				queue = append(queue, next)
			}
		}
	}
	return false
}

func (d *DAG) rankSorted(ids []string) []string {
	sort.Slice(ids, func(i, j int) bool {
		ri, rj := d.nodes[ids[i]].Rank, d.nodes[ids[j]].Rank
		if ri != rj {
			return ri < rj
		}
		return ids[i] < ids[j]
	})
	return ids
}
