// Package layout positions a dependency graph with an iterative force
// simulation: many-body repulsion, link springs, weak centering, collision
// separation and an anchor that pulls core modules to the bottom of the
// view. Energy (alpha) decays geometrically every tick until the
// simulation settles.
package layout

import "github.com/papapumpkin/syllabus/internal/catalog"

// Params tunes the simulation. DefaultParams matches the course graph view.
type Params struct {
	Width  float64
	Height float64

	LinkDistance float64
	LinkStrength float64

	ChargeStrength    float64 // negative repels
	ChargeDistanceMin float64
	ChargeDistanceMax float64 // pairs farther apart do not interact

	CenterStrength float64

	NodeRadius      float64 // collision radius; centers stay 2×NodeRadius apart
	CollideStrength float64
	HitRadius       float64 // pointer hit-test radius

	AnchorCategory  string
	AnchorStrength  float64
	AnchorYFraction float64 // anchor y as a fraction of Height

	Jitter float64 // width of the uniform spread around the anchor at start

	AlphaStart      float64
	AlphaMin        float64
	AlphaDecay      float64
	VelocityDecay   float64
	DragAlphaTarget float64
}

// DefaultParams returns the tuning used by the graph view for a viewport of
// the given size.
func DefaultParams(width, height float64) Params {
	return Params{
		Width:  width,
		Height: height,

		LinkDistance: 150,
		LinkStrength: 0.5,

		ChargeStrength:    -600,
		ChargeDistanceMin: 1,
		ChargeDistanceMax: 300,

		CenterStrength: 0.02,

		NodeRadius:      45,
		CollideStrength: 0.8,
		HitRadius:       20,

		AnchorCategory:  catalog.CoreCategory,
		AnchorStrength:  0.3,
		AnchorYFraction: 0.8,

		Jitter: 20,

		AlphaStart:      1,
		AlphaMin:        0.001,
		AlphaDecay:      0.02,
		VelocityDecay:   0.4,
		DragAlphaTarget: 0.3,
	}
}

// Anchor returns the bottom-center point nodes bloom from and core nodes
// are pulled toward.
func (p Params) Anchor() Point {
	return Point{X: p.Width / 2, Y: p.Height * p.AnchorYFraction}
}

// Center returns the viewport center.
func (p Params) Center() Point {
	return Point{X: p.Width / 2, Y: p.Height / 2}
}

// Point is a 2-D position.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}
