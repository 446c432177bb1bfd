package graph

import "github.com/matzehuels/netforce/pkg/core/geom"

// ScaleTable maps distinct positions to node scales.
//
// Positions are compared by their exact IEEE-754 bit patterns ([geom.Key]):
// two positions that print the same but were reached through different
// arithmetic may be distinct keys, and 0 differs from -0. Setting an existing
// position overwrites its scale and keeps its original place in the order.
//
// The zero value is an empty table ready for use.
type ScaleTable struct {
	order  []geom.Key
	scales map[geom.Key]geom.Vec3
}

// Set records scale for pos. The last write for a position wins.
func (t *ScaleTable) Set(pos, scale geom.Vec3) {
	if t.scales == nil {
		t.scales = make(map[geom.Key]geom.Vec3)
	}
	k := geom.KeyOf(pos)
	if _, ok := t.scales[k]; !ok {
		t.order = append(t.order, k)
	}
	t.scales[k] = scale
}

// Get returns the scale recorded for pos.
func (t *ScaleTable) Get(pos geom.Vec3) (geom.Vec3, bool) {
	s, ok := t.scales[geom.KeyOf(pos)]
	return s, ok
}

// Len returns the number of distinct positions.
func (t *ScaleTable) Len() int { return len(t.order) }

// Positions returns the distinct positions in first-insertion order.
func (t *ScaleTable) Positions() []geom.Vec3 {
	out := make([]geom.Vec3, len(t.order))
	for i, k := range t.order {
		out[i] = k.Vec()
	}
	return out
}

// Scales returns the scales parallel to [ScaleTable.Positions].
func (t *ScaleTable) Scales() []geom.Vec3 {
	out := make([]geom.Vec3, len(t.order))
	for i, k := range t.order {
		out[i] = t.scales[k]
	}
	return out
}
