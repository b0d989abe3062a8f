package dag

import "sort"

// Track is a connected group of modules. Modules in different tracks share
// no prerequisites, so a learner can follow them in any interleaving.
type Track struct {
	ID int

	// ModuleIDs lists the track's modules in study order.
	ModuleIDs []string
}

// ComputeTracks partitions the DAG into tracks, assigns Node.TrackID and
// returns the tracks largest first (ties broken by first module id).
func (d *DAG) ComputeTracks() ([]Track, error) {
	if len(d.nodes) == 0 {
		return nil, nil
	}

	order, err := d.TopologicalSort()
	if err != nil {
		return nil, err
	}
	pos := make(map[string]int, len(order))
	for i, id := range order {
		pos[id] = i
	}

	sets := newUnionFind()
	for id := range d.nodes {
		sets.add(id)
	}
	for module, prereqs := range d.requires {
		for p := range prereqs {
			sets.union(module, p)
		}
	}

	groups := sets.components()
	tracks := make([]Track, 0, len(groups))
	for _, members := range groups {
		sort.Slice(members, func(i, j int) bool {
			return pos[members[i]] < pos[members[j]]
		})
		tracks = append(tracks, Track{ModuleIDs: members})
	}

	sort.Slice(tracks, func(i, j int) bool {
		if len(tracks[i].ModuleIDs) != len(tracks[j].ModuleIDs) {
			return len(tracks[i].ModuleIDs) > len(tracks[j].ModuleIDs)
		}
		return tracks[i].ModuleIDs[0] < tracks[j].ModuleIDs[0]
	})

	for i := range tracks {
		tracks[i].ID = i
		for _, id := range tracks[i].ModuleIDs {
			d.nodes[id].TrackID = i
		}
	}
	return tracks, nil
}
