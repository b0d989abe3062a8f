// Package highlight tracks which module the user has selected and derives
// the role of every node and edge in the dependency graph from it.
package highlight

import (
	"slices"
	"sync"

	"github.com/papapumpkin/syllabus/internal/catalog"
	"github.com/papapumpkin/syllabus/internal/depgraph"
	"github.com/papapumpkin/syllabus/internal/prereq"
)

// Role is the part a node plays in the current selection.
type Role int

// Roles, from no part in the selection to the selected target and the
// modules around it.
const (
	RoleNone Role = iota
	RoleTarget
	RolePrerequisite
	RoleDependent
)

// Class returns the style class a node carries for the role.
func (r Role) Class() string {
	switch r {
	case RoleTarget:
		return "selected"
	case RolePrerequisite:
		return "prerequisite"
	case RoleDependent:
		return "dependent"
	default:
		return ""
	}
}

// String returns the role's class, or "none".
func (r Role) String() string {
	if r == RoleNone {
		return "none"
	}
	return r.Class()
}

// EdgeRole flags an edge. Both flags may be set at once.
type EdgeRole struct {
	Prerequisite bool // both endpoints lie on the target's path
	Dependent    bool // the edge leaves the target
}

// Classes returns the style classes for the edge.
func (e EdgeRole) Classes() []string {
	var out []string
	if e.Prerequisite {
		out = append(out, "prerequisite")
	}
	if e.Dependent {
		out = append(out, "dependent")
	}
	return out
}

// RoleOf recovers a node's role from the classes Decorate gave it.
func RoleOf(classes []string) Role {
	for _, r := range []Role{RoleTarget, RolePrerequisite, RoleDependent} {
		if slices.Contains(classes, r.Class()) {
			return r
		}
	}
	return RoleNone
}

// EdgeRoleOf recovers an edge's role from the classes Decorate gave it.
func EdgeRoleOf(classes []string) EdgeRole {
	return EdgeRole{
		Prerequisite: slices.Contains(classes, "prerequisite"),
		Dependent:    slices.Contains(classes, "dependent"),
	}
}

// GlowClass marks a node whose resting look glows.
const GlowClass = "glow"

// List-view card classes.
const (
	CardTarget       = "target-highlight"
	CardPrerequisite = "prerequisite-highlight"
)

// Controller holds the current selection for one catalog and graph.
type Controller struct {
	mu sync.RWMutex

	cat   *catalog.Catalog
	eval  *prereq.Evaluator
	graph *depgraph.Graph

	target     string
	chain      []string
	onPath     map[string]bool // target plus chain
	dependents map[string]bool
}

// New returns a Controller with nothing selected.
func New(cat *catalog.Catalog, g *depgraph.Graph) *Controller {
	return &Controller{
		cat:   cat,
		eval:  prereq.New(cat),
		graph: g,
	}
}

// Rebind switches to a new catalog and graph and clears the selection.
func (c *Controller) Rebind(cat *catalog.Catalog, g *depgraph.Graph) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cat, c.eval, c.graph = cat, prereq.New(cat), g
	c.reset()
}

// SelectTarget makes id the selection, replacing any previous one.
// Unknown ids leave the current selection in place and return false.
func (c *Controller) SelectTarget(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.cat.Has(id) {
		return false
	}
	c.reset()
	c.target = id
	c.chain = c.eval.PrerequisiteChain(id)
	c.onPath = make(map[string]bool, len(c.chain)+1)
	c.onPath[id] = true
	for _, p := range c.chain {
		c.onPath[p] = true
	}
	c.dependents = make(map[string]bool)
	for _, d := range c.eval.Dependents(id) {
		c.dependents[d] = true
	}
	return true
}

// ViewPrerequisites highlights the path to id for the list view. When
// nothing incomplete stands in the way the highlights are cleared instead.
func (c *Controller) ViewPrerequisites(id string) bool {
	c.mu.RLock()
	known := c.cat.Has(id)
	empty := known && len(c.eval.PrerequisiteChain(id)) == 0
	c.mu.RUnlock()
	if !known {
		return false
	}
	if empty {
		c.ClearHighlights()
		return false
	}
	return c.SelectTarget(id)
}

// ClearHighlights drops the selection. Calling it repeatedly is harmless.
func (c *Controller) ClearHighlights() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reset()
}

func (c *Controller) reset() {
	c.target = ""
	c.chain = nil
	c.onPath = nil
	c.dependents = nil
}

// Target returns the selected id.
func (c *Controller) Target() (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.target, c.target != ""
}

// Chain returns the incomplete prerequisites of the selection.
func (c *Controller) Chain() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]string(nil), c.chain...)
}

// NodeRole classifies id. A node matching several roles takes the first of
// target, prerequisite, dependent.
func (c *Controller) NodeRole(id string) Role {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.nodeRole(id)
}

func (c *Controller) nodeRole(id string) Role {
	switch {
	case c.target == "":
		return RoleNone
	case id == c.target:
		return RoleTarget
	case c.onPath[id]:
		return RolePrerequisite
	case c.dependents[id]:
		return RoleDependent
	default:
		return RoleNone
	}
}

// EdgeRole classifies the graph edge at index i.
func (c *Controller) EdgeRole(i int) EdgeRole {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.graph == nil || i < 0 || i >= len(c.graph.Edges) {
		return EdgeRole{}
	}
	return c.edgeRole(c.graph.Edges[i])
}

func (c *Controller) edgeRole(e depgraph.Edge) EdgeRole {
	if c.target == "" {
		return EdgeRole{}
	}
	return EdgeRole{
		Prerequisite: c.onPath[e.From] && c.onPath[e.To],
		Dependent:    e.From == c.target,
	}
}

// CardClass returns the list-view class for id, or "".
func (c *Controller) CardClass(id string) string {
	switch c.NodeRole(id) {
	case RoleTarget:
		return CardTarget
	case RolePrerequisite:
		return CardPrerequisite
	default:
		return ""
	}
}

// Decorate writes roles and base appearance into doc, which must have been
// built from the controller's graph.
func (c *Controller) Decorate(doc *depgraph.Document) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for i := range doc.Nodes {
		n := &doc.Nodes[i]
		a := c.appearance(n.ID)
		n.Fill, n.Stroke = a.Fill, a.Stroke
		n.Classes = nil
		if a.Glow {
			n.Classes = append(n.Classes, GlowClass)
		}
		if cls := c.nodeRole(n.ID).Class(); cls != "" {
			n.Classes = append(n.Classes, cls)
		}
	}
	if c.graph == nil {
		return
	}
	for i := range doc.Links {
		if i >= len(c.graph.Edges) {
			break
		}
		doc.Links[i].Classes = c.edgeRole(c.graph.Edges[i]).Classes()
	}
}
