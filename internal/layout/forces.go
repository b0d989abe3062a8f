package layout

import "math"

// Each force reads positions and velocities as they stood at the start of
// the tick and adds into dv, so no force sees another's contribution.

// applyLink pulls linked nodes toward LinkDistance. The correction is split
// by degree so that well-connected nodes move less.
func (s *Simulation) applyLink(alpha float64, dv []Point) {
	p := s.params
	for _, l := range s.links {
		src, dst := &s.nodes[l.source], &s.nodes[l.target]
		x := dst.x + dst.vx - src.x - src.vx
		y := dst.y + dst.vy - src.y - src.vy
		if x == 0 {
			x = s.jiggle()
		}
		if y == 0 {
			y = s.jiggle()
		}
		d := math.Sqrt(x*x + y*y)
		k := (d - p.LinkDistance) / d * alpha * p.LinkStrength
		x, y = x*k, y*k
		dv[l.target].X -= x * l.bias
		dv[l.target].Y -= y * l.bias
		dv[l.source].X += x * (1 - l.bias)
		dv[l.source].Y += y * (1 - l.bias)
	}
}

// applyCharge is pairwise repulsion limited to ChargeDistanceMax.
func (s *Simulation) applyCharge(alpha float64, dv []Point) {
	p := s.params
	maxSq := p.ChargeDistanceMax * p.ChargeDistanceMax
	minSq := p.ChargeDistanceMin * p.ChargeDistanceMin
	for i := range s.nodes {
		a := &s.nodes[i]
		for j := range s.nodes {
			if i == j {
				continue
			}
			b := &s.nodes[j]
			x, y := b.x-a.x, b.y-a.y
			l := x*x + y*y
			if l >= maxSq {
				continue
			}
			if x == 0 {
				x = s.jiggle()
				l += x * x
			}
			if y == 0 {
				y = s.jiggle()
				l += y * y
			}
			if l < minSq {
				l = math.Sqrt(minSq * l)
			}
			w := p.ChargeStrength * alpha / l
			dv[i].X += x * w
			dv[i].Y += y * w
		}
	}
}

// applyCollide pushes apart any pair closer than twice NodeRadius, using
// positions projected one step ahead.
func (s *Simulation) applyCollide(dv []Point) {
	p := s.params
	r := 2 * p.NodeRadius
	rSq := r * r
	for i := range s.nodes {
		a := &s.nodes[i]
		xi, yi := a.x+a.vx, a.y+a.vy
		for j := i + 1; j < len(s.nodes); j++ {
			b := &s.nodes[j]
			x := xi - b.x - b.vx
			y := yi - b.y - b.vy
			l := x*x + y*y
			if l >= rSq {
				continue
			}
			if x == 0 {
				x = s.jiggle()
				l += x * x
			}
			if y == 0 {
				y = s.jiggle()
				l += y * y
			}
			d := math.Sqrt(l)
			k := (r - d) / d * p.CollideStrength
			x, y = x*k, y*k
			// Equal radii: each node takes half the correction.
			dv[i].X += x * 0.5
			dv[i].Y += y * 0.5
			dv[j].X -= x * 0.5
			dv[j].Y -= y * 0.5
		}
	}
}

// applyAnchor pulls anchored nodes toward the bottom-center point. Nodes
// outside the anchor category have zero strength and are left alone.
func (s *Simulation) applyAnchor(alpha float64, dv []Point) {
	p := s.params
	target := p.Anchor()
	k := p.AnchorStrength * alpha
	for i := range s.nodes {
		n := &s.nodes[i]
		if !n.anchored {
			continue
		}
		dv[i].X += (target.X - n.x) * k
		dv[i].Y += (target.Y - n.y) * k
	}
}

// applyCenter translates free nodes so that their mean drifts toward the
// viewport center.
func (s *Simulation) applyCenter() {
	if len(s.nodes) == 0 || s.params.CenterStrength == 0 {
		return
	}
	var sx, sy float64
	for i := range s.nodes {
		sx += s.nodes[i].x
		sy += s.nodes[i].y
	}
	c := s.params.Center()
	n := float64(len(s.nodes))
	shiftX := (sx/n - c.X) * s.params.CenterStrength
	shiftY := (sy/n - c.Y) * s.params.CenterStrength
	for i := range s.nodes {
		if s.nodes[i].pinned {
			continue
		}
		s.nodes[i].x -= shiftX
		s.nodes[i].y -= shiftY
	}
}

func (s *Simulation) jiggle() float64 {
	return (s.rng.Float64() - 0.5) * 1e-6
}
