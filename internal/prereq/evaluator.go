// Package prereq answers availability questions about a catalog: whether a
// module can be started, which unmet modules stand between a learner and a
// target, and which modules a target directly unlocks.
//
// Every function is a pure read of catalog state. Dangling prerequisite ids
// and prerequisite cycles never fail; they degrade to "unavailable" and
// "chain terminates".
package prereq

import (
	"slices"

	"github.com/papapumpkin/syllabus/internal/catalog"
	"github.com/papapumpkin/syllabus/internal/dag"
)

// Evaluator reads availability from a catalog.
type Evaluator struct {
	cat *catalog.Catalog
}

// New returns an evaluator over cat. A nil catalog behaves as empty.
func New(cat *catalog.Catalog) *Evaluator {
	return &Evaluator{cat: cat}
}

// IsAvailable reports whether m may be worked on: it is already completed
// or in progress, or every prerequisite resolves to a completed module.
func (e *Evaluator) IsAvailable(m catalog.Module) bool {
	if m.Status == catalog.StatusCompleted || m.Status == catalog.StatusInProgress {
		return true
	}
	return e.PrerequisitesMet(m)
}

// IsAvailableID is IsAvailable by id. Unknown ids are unavailable.
func (e *Evaluator) IsAvailableID(id string) bool {
	m, ok := e.cat.Get(id)
	if !ok {
		return false
	}
	return e.IsAvailable(m)
}

// PrerequisitesMet reports whether every direct prerequisite of m is
// completed. A missing prerequisite is never met.
func (e *Evaluator) PrerequisitesMet(m catalog.Module) bool {
	for _, id := range m.Prerequisites {
		p, ok := e.cat.Get(id)
		if !ok || p.Status != catalog.StatusCompleted {
			return false
		}
	}
	return true
}

// PrerequisiteChain returns every module, direct or transitive, that must
// still be finished before targetID: completed modules, missing ids and the
// target itself are excluded, and each id appears once. The traversal is
// depth-first; a module already visited is not expanded again, which bounds
// the walk on catalogs that contain a prerequisite loop.
func (e *Evaluator) PrerequisiteChain(targetID string) []string {
	visited := make(map[string]bool)
	seen := map[string]bool{targetID: true}
	var chain []string
	e.collect(targetID, visited, func(id string) {
		if !seen[id] {
			seen[id] = true
			chain = append(chain, id)
		}
	})
	return chain
}

func (e *Evaluator) collect(id string, visited map[string]bool, emit func(string)) {
	if visited[id] {
		return
	}
	visited[id] = true

	m, ok := e.cat.Get(id)
	if !ok {
		return
	}
	for _, pid := range m.Prerequisites {
		p, ok := e.cat.Get(pid)
		if !ok {
			continue
		}
		if p.Status != catalog.StatusCompleted {
			emit(pid)
		}
		e.collect(pid, visited, emit)
	}
}

// Dependents returns the ids of modules that list id as a direct
// prerequisite, in catalog order.
func (e *Evaluator) Dependents(id string) []string {
	var out []string
	for _, m := range e.cat.Modules() {
		if m.HasPrerequisite(id) {
			out = append(out, m.ID)
		}
	}
	return out
}

// Plan is an ordered route to a target module.
type Plan struct {
	TargetID string
	// Steps lists the unmet prerequisites and then the target, every
	// prerequisite ahead of the modules that need it.
	Steps []string
	// Minutes is the summed duration of Steps.
	Minutes int
	// Ordered is false when a prerequisite loop prevented a full
	// topological order and Steps fell back to chain order.
	Ordered bool
}

// StudyPlan orders the target's chain so that prerequisites come first,
// easier levels ahead of harder ones when both are free, and the target
// last. Unknown targets yield an empty plan.
func (e *Evaluator) StudyPlan(targetID string) Plan {
	plan := Plan{TargetID: targetID}
	if !e.cat.Has(targetID) {
		return plan
	}
	chain := e.PrerequisiteChain(targetID)

	members := append(append([]string(nil), chain...), targetID)
	d := dag.New()
	inPlan := make(map[string]bool, len(members))
	for _, id := range members {
		m, _ := e.cat.Get(id)
		_ = d.AddNode(id, m.Level.Rank())
		inPlan[id] = true
	}

	// Edges back into the target count too: a chain module that needs the
	// target closes a loop and the plan cannot be ordered.
	plan.Ordered = true
	for _, id := range members {
		m, _ := e.cat.Get(id)
		for _, pid := range m.Prerequisites {
			if !inPlan[pid] {
				continue
			}
			if err := d.AddEdge(id, pid); err != nil {
				plan.Ordered = false
			}
		}
	}

	order := chain
	if plan.Ordered {
		sorted, err := d.TopologicalSort()
		if err != nil {
			plan.Ordered = false
		} else {
			order = slices.DeleteFunc(sorted, func(id string) bool { return id == targetID })
		}
	}
	plan.Steps = append(append([]string(nil), order...), targetID)

	for _, id := range plan.Steps {
		m, _ := e.cat.Get(id)
		plan.Minutes += m.Duration
	}
	return plan
}
