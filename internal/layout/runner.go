package layout

import (
	"context"
	"time"
)

// TickFunc receives node positions after every simulation step.
type TickFunc func(positions map[string]Point)

// Runner drives a simulation from a frame clock. Frames arrive on a
// channel so callers choose the cadence (a time.Ticker, a UI frame loop or
// a test feeding frames by hand).
type Runner struct {
	sim    *Simulation
	onTick TickFunc
}

// NewRunner returns a Runner for sim. onTick may be nil.
func NewRunner(sim *Simulation, onTick TickFunc) *Runner {
	return &Runner{sim: sim, onTick: onTick}
}

// Simulation returns the driven simulation.
func (r *Runner) Simulation() *Simulation {
	return r.sim
}

// Run starts the simulation and steps it once per frame until ctx is
// cancelled, frames is closed or the simulation is disposed. A settled
// simulation stays idle but keeps listening so a drag can resume it.
func (r *Runner) Run(ctx context.Context, frames <-chan time.Time) error {
	if err := r.sim.Start(); err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case _, ok := <-frames:
			if !ok {
				return nil
			}
			if !r.sim.Tick() {
				if r.sim.State() == StateDisposed {
					return ErrDisposed
				}
				continue
			}
			if r.onTick != nil {
				r.onTick(r.sim.Positions())
			}
		}
	}
}

// Dispose stops the simulation; a pending Run returns at its next frame.
func (r *Runner) Dispose() {
	r.sim.Dispose()
}

// Settle runs the simulation synchronously until it settles or maxTicks
// steps have been taken, and returns the number of steps.
func Settle(sim *Simulation, maxTicks int) (int, error) {
	if err := sim.Start(); err != nil {
		return 0, err
	}
	n := 0
	for n < maxTicks && sim.Tick() {
		n++
	}
	if sim.State() == StateDisposed {
		return n, ErrDisposed
	}
	return n, nil
}
