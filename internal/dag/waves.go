package dag

import "fmt"

// Wave is a group of modules whose prerequisites all sit in earlier waves,
// so they can be studied side by side.
type Wave struct {
	Number  int      // 1-based
	NodeIDs []string // rank order, then id
}

// ComputeWaves groups modules into study waves with Kahn's algorithm.
// Wave 1 holds modules with no prerequisites, wave 2 those needing only
// wave 1, and so on.
func (d *DAG) ComputeWaves() ([]Wave, error) {
	pending := make(map[string]int, len(d.nodes))
	var current []string
	for id := range d.nodes {
		pending[id] = len(d.requires[id])
		if pending[id] == 0 {
			current = append(current, id)
		}
	}

	var waves []Wave
	placed := 0
	for len(current) > 0 {
		current = d.rankSorted(current)
		waves = append(waves, Wave{Number: len(waves) + 1, NodeIDs: current})
		placed += len(current)

		var next []string
		for _, id := range current {
			for dependent := range d.unlocks[id] {
				pending[dependent]--
				if pending[dependent] == 0 {
					next = append(next, dependent)
				}
			}
		}
		current = next
	}

	if placed != len(d.nodes) {
		return nil, fmt.Errorf("%w: placed %d of %d nodes in waves", ErrCycle, placed, len(d.nodes))
	}
	return waves, nil
}

// Requires returns the direct prerequisites of id, sorted.
func (d *DAG) Requires(id string) []string {
	return d.rankSorted(keys(d.requires[id]))
}

func keys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
