package layout

import (
	"errors"
	"math/rand/v2"
	"sync"

	"github.com/papapumpkin/syllabus/internal/depgraph"
)

// ErrDisposed is returned by operations on a disposed simulation.
var ErrDisposed = errors.New("layout: simulation disposed")

// State is the lifecycle phase of a simulation.
type State int

// Simulation states in lifecycle order.
const (
	StateUninitialized State = iota
	StateRunning
	StateSettled
	StateDisposed
)

// String returns the lower-case state name.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateRunning:
		return "running"
	case StateSettled:
		return "settled"
	case StateDisposed:
		return "disposed"
	default:
		return "unknown"
	}
}

type particle struct {
	id       string
	x, y     float64
	vx, vy   float64
	fx, fy   float64
	pinned   bool
	seeded   bool
	anchored bool
}

type link struct {
	source, target int
	bias           float64
}

// Simulation holds per-node physics state for one graph. All methods are
// safe for concurrent use.
type Simulation struct {
	mu sync.Mutex

	params Params
	rng    *rand.Rand

	nodes []particle
	index map[string]int
	links []link

	alpha       float64
	alphaTarget float64
	state       State
	dragging    int
}

// New prepares a simulation for g. Edges with an unresolved endpoint are
// skipped. A nil rng gets a fixed seed so runs are reproducible.
func New(g *depgraph.Graph, p Params, rng *rand.Rand) *Simulation {
	if rng == nil {
		rng = rand.New(rand.NewPCG(1, 2))
	}
	s := &Simulation{
		params: p,
		rng:    rng,
		index:  make(map[string]int, g.Len()),
	}
	if g != nil {
		for i, n := range g.Nodes {
			s.index[n.ID] = i
			s.nodes = append(s.nodes, particle{
				id:       n.ID,
				anchored: p.AnchorCategory != "" && n.Category == p.AnchorCategory,
			})
		}
		degree := make([]int, len(s.nodes))
		for _, e := range g.Edges {
			if e.Dangling() {
				continue
			}
			degree[e.Source]++
			degree[e.Target]++
			s.links = append(s.links, link{source: e.Source, target: e.Target})
		}
		for i := range s.links {
			l := &s.links[i]
			l.bias = float64(degree[l.source]) / float64(degree[l.source]+degree[l.target])
		}
	}
	return s
}

// Seed fixes the starting position of a node. It only has effect before
// Start; seeded nodes skip the initial bloom.
func (s *Simulation) Seed(id string, x, y float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[id]
	if !ok || s.state != StateUninitialized {
		return false
	}
	s.nodes[i].x, s.nodes[i].y = x, y
	s.nodes[i].seeded = true
	return true
}

// Start places every unseeded node at the anchor with a small uniform
// jitter and begins the run at full energy.
func (s *Simulation) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case StateDisposed:
		return ErrDisposed
	case StateRunning, StateSettled:
		return nil
	}
	a := s.params.Anchor()
	for i := range s.nodes {
		n := &s.nodes[i]
		if !n.seeded {
			n.x = a.X + (s.rng.Float64()-0.5)*s.params.Jitter
			n.y = a.Y + (s.rng.Float64()-0.5)*s.params.Jitter
		}
		n.vx, n.vy = 0, 0
	}
	s.alpha = s.params.AlphaStart
	s.state = StateRunning
	return nil
}

// Tick advances the simulation by one step. It reports whether the step
// was taken; settled, unstarted and disposed simulations do nothing.
func (s *Simulation) Tick() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateRunning {
		return false
	}

	s.alpha += (s.alphaTarget - s.alpha) * s.params.AlphaDecay

	dv := make([]Point, len(s.nodes))
	s.applyLink(s.alpha, dv)
	s.applyCharge(s.alpha, dv)
	s.applyCollide(dv)
	s.applyAnchor(s.alpha, dv)

	keep := 1 - s.params.VelocityDecay
	for i := range s.nodes {
		n := &s.nodes[i]
		if n.pinned {
			n.x, n.y = n.fx, n.fy
			n.vx, n.vy = 0, 0
			continue
		}
		n.vx = (n.vx + dv[i].X) * keep
		n.vy = (n.vy + dv[i].Y) * keep
		n.x += n.vx
		n.y += n.vy
	}
	s.applyCenter()

	if s.alpha < s.params.AlphaMin {
		s.state = StateSettled
	}
	return true
}

// Reheat raises alpha and resumes a settled simulation.
func (s *Simulation) Reheat(alpha float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateDisposed || s.state == StateUninitialized {
		return
	}
	s.alpha = alpha
	s.state = StateRunning
}

// DragStart pins id at its current position and keeps the simulation warm
// for the duration of the drag.
func (s *Simulation) DragStart(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[id]
	if !ok || s.state == StateDisposed || s.state == StateUninitialized {
		return false
	}
	n := &s.nodes[i]
	if !n.pinned {
		s.dragging++
		n.pinned = true
	}
	n.fx, n.fy = n.x, n.y
	s.alphaTarget = s.params.DragAlphaTarget
	if s.state == StateSettled {
		s.state = StateRunning
	}
	return true
}

// DragMove moves the pin of a dragged node.
func (s *Simulation) DragMove(id string, x, y float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[id]
	if !ok || s.state == StateDisposed || !s.nodes[i].pinned {
		return false
	}
	s.nodes[i].fx, s.nodes[i].fy = x, y
	return true
}

// DragEnd releases the node and lets the simulation cool once no drag
// remains active.
func (s *Simulation) DragEnd(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[id]
	if !ok || s.state == StateDisposed || !s.nodes[i].pinned {
		return false
	}
	s.nodes[i].pinned = false
	s.dragging--
	if s.dragging == 0 {
		s.alphaTarget = 0
	}
	return true
}

// Dispose stops the simulation for good. Later calls never mutate nodes.
func (s *Simulation) Dispose() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateDisposed
}

// State returns the lifecycle phase.
func (s *Simulation) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Alpha returns the current energy.
func (s *Simulation) Alpha() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.alpha
}

// Params returns the tuning the simulation was built with.
func (s *Simulation) Params() Params {
	return s.params
}

// Len returns the number of nodes.
func (s *Simulation) Len() int {
	return len(s.nodes)
}

// Position returns the current position of id.
func (s *Simulation) Position(id string) (Point, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[id]
	if !ok {
		return Point{}, false
	}
	return Point{X: s.nodes[i].x, Y: s.nodes[i].y}, true
}

// Positions returns a snapshot of every node position keyed by id.
func (s *Simulation) Positions() map[string]Point {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]Point, len(s.nodes))
	for _, n := range s.nodes {
		out[n.id] = Point{X: n.x, Y: n.y}
	}
	return out
}

// Pinned reports whether id is currently held by a drag.
func (s *Simulation) Pinned(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[id]
	return ok && s.nodes[i].pinned
}

// NodeAt returns the id of the node nearest to (x, y) within HitRadius.
func (s *Simulation) NodeAt(x, y float64) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	best, bestDist := -1, s.params.HitRadius*s.params.HitRadius
	for i, n := range s.nodes {
		dx, dy := n.x-x, n.y-y
		if d := dx*dx + dy*dy; d <= bestDist {
			best, bestDist = i, d
		}
	}
	if best < 0 {
		return "", false
	}
	return s.nodes[best].id, true
}
