package course

import (
	"math/rand/v2"

	"github.com/papapumpkin/syllabus/internal/depgraph"
	"github.com/papapumpkin/syllabus/internal/highlight"
	"github.com/papapumpkin/syllabus/internal/layout"
	"github.com/papapumpkin/syllabus/internal/telemetry"
)

// viewState is the graph view. It exists only while the view is active;
// every build bumps gen so ticks scheduled against an older build are
// dropped.
type viewState struct {
	active        bool
	width, height float64
	sim           *layout.Simulation
	gen           uint64
	settled       bool

	debounce  *layout.Debouncer
	seed      uint64
	onRebuild func(gen uint64)
}

// ActivateGraph shows the graph view at the given size and returns the
// generation of the new layout.
func (a *App) ActivateGraph(width, height float64) uint64 {
	a.mu.Lock()
	a.view.active = true
	a.view.width, a.view.height = width, height
	gen := a.rebuildLocked()
	a.mu.Unlock()

	a.afterRebuild(gen)
	return gen
}

// Resize records a new viewport size. The layout is rebuilt once the
// resizes stop for the debounce period. Resizes while the view is hidden
// only record the size.
func (a *App) Resize(width, height float64) {
	a.mu.Lock()
	a.view.width, a.view.height = width, height
	active := a.view.active
	a.mu.Unlock()
	if !active {
		return
	}
	a.view.debounce.Trigger(func() {
		a.mu.Lock()
		gen := a.rebuildLocked()
		a.mu.Unlock()
		a.afterRebuild(gen)
	})
}

// DeactivateGraph hides the graph view and disposes its layout. A pending
// rebuild is dropped.
func (a *App) DeactivateGraph() {
	a.view.debounce.Cancel()
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.view.sim != nil {
		a.view.sim.Dispose()
		a.view.sim = nil
	}
	a.view.active = false
	a.view.gen++
}

// GraphActive reports whether the graph view is shown.
func (a *App) GraphActive() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.view.active
}

// Generation returns the generation of the current layout.
func (a *App) Generation() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.view.gen
}

// Tick steps the layout of generation gen once and returns the positions.
// It returns false when gen is stale, the view is hidden or the layout has
// settled.
func (a *App) Tick(gen uint64) (map[string]layout.Point, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	sim := a.view.sim
	if sim == nil || gen != a.view.gen {
		return nil, false
	}
	if !sim.Tick() {
		if sim.State() == layout.StateSettled && !a.view.settled {
			a.view.settled = true
			_ = a.tel.Record(telemetry.KindLayoutSettled, "", map[string]uint64{"generation": gen})
		}
		return nil, false
	}
	a.view.settled = false
	return sim.Positions(), true
}

// Positions returns the current node positions, or nil when the view is
// hidden.
func (a *App) Positions() map[string]layout.Point {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.view.sim == nil {
		return nil
	}
	return a.view.sim.Positions()
}

// Viewport returns the size the layout was built for.
func (a *App) Viewport() (width, height float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.view.width, a.view.height
}

// NodeAt returns the module whose node lies under the point.
func (a *App) NodeAt(x, y float64) (string, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.view.sim == nil {
		return "", false
	}
	return a.view.sim.NodeAt(x, y)
}

// DragStart pins a node for dragging.
func (a *App) DragStart(id string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.view.sim != nil && a.view.sim.DragStart(id)
}

// DragMove moves a pinned node.
func (a *App) DragMove(id string, x, y float64) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.view.sim != nil && a.view.sim.DragMove(id, x, y)
}

// DragEnd releases a pinned node.
func (a *App) DragEnd(id string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.view.sim != nil && a.view.sim.DragEnd(id)
}

// Document renders the graph with the current highlight classes, base
// appearance and, when the view is active, node positions.
func (a *App) Document() *depgraph.Document {
	a.mu.Lock()
	defer a.mu.Unlock()
	doc := depgraph.NewDocument(a.graph)
	a.hl.Decorate(doc)
	if a.view.sim != nil {
		for i, n := range a.graph.Nodes {
			if p, ok := a.view.sim.Position(n.ID); ok {
				doc.SetPosition(i, p.X, p.Y)
			}
		}
	}
	return doc
}

// rebuildLocked replaces the layout wholesale and returns the new
// generation, or 0 when the view is hidden. Callers hold a.mu.
func (a *App) rebuildLocked() uint64 {
	if !a.view.active {
		return 0
	}
	if a.view.sim != nil {
		a.view.sim.Dispose()
	}
	a.view.gen++
	a.view.settled = false
	params := layout.DefaultParams(a.view.width, a.view.height)
	rng := rand.New(rand.NewPCG(a.view.seed, a.view.gen))
	sim := layout.New(a.graph, params, rng)
	if err := sim.Start(); err != nil {
		a.log.Error("layout start failed", "error", err)
	}
	a.view.sim = sim
	return a.view.gen
}

func (a *App) afterRebuild(gen uint64) {
	if gen == 0 {
		return
	}
	a.log.Debug("layout built", "generation", gen)
	_ = a.tel.Record(telemetry.KindLayoutBuilt, "", map[string]uint64{"generation": gen})
	if a.view.onRebuild != nil {
		a.view.onRebuild(gen)
	}
}

// Highlight accessors. They take the App lock because the controller reads
// module status from the shared catalog.

// SelectTarget highlights id with its prerequisite chain and dependents.
// Unknown ids are ignored.
func (a *App) SelectTarget(id string) bool {
	a.mu.Lock()
	ok := a.hl.SelectTarget(id)
	a.mu.Unlock()
	if ok {
		_ = a.tel.Record(telemetry.KindSelection, id, nil)
	}
	return ok
}

// ViewPrerequisites is the list view's "view prerequisites" action.
func (a *App) ViewPrerequisites(id string) bool {
	a.mu.Lock()
	ok := a.hl.ViewPrerequisites(id)
	a.mu.Unlock()
	if ok {
		_ = a.tel.Record(telemetry.KindSelection, id, map[string]string{"source": "list"})
	} else {
		a.notify.Notify(LevelInfo, "No outstanding prerequisites")
	}
	return ok
}

// ClearHighlights drops the selection.
func (a *App) ClearHighlights() {
	a.mu.Lock()
	a.hl.ClearHighlights()
	a.mu.Unlock()
	_ = a.tel.Record(telemetry.KindSelectionClear, "", nil)
}

// Interact routes a click: cards and nodes select their module, controls
// are left to their own handlers, and anything else clears the selection.
func (a *App) Interact(h Hit) {
	switch h.Kind {
	case HitCard, HitNode:
		a.SelectTarget(h.ModuleID)
	case HitControl:
	default:
		a.ClearHighlights()
	}
}

// Selection returns the selected module id.
func (a *App) Selection() (string, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.hl.Target()
}

// NodeRole returns the highlight role of a module.
func (a *App) NodeRole(id string) highlight.Role {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.hl.NodeRole(id)
}

// EdgeRole returns the highlight role of the edge at index i of Graph.
func (a *App) EdgeRole(i int) highlight.EdgeRole {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.hl.EdgeRole(i)
}

// CardClass returns the list-view class for a module card.
func (a *App) CardClass(id string) string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.hl.CardClass(id)
}

// Appearance returns the base fill, stroke and glow of a module's node.
func (a *App) Appearance(id string) highlight.Appearance {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.hl.Appearance(id)
}
