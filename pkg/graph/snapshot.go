package graph

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/netforce/pkg/core/geom"
	"github.com/matzehuels/netforce/pkg/core/layout"
)

// =============================================================================
// Export
// =============================================================================

// Export captures the current layout of st.
//
// Every participating edge contributes its endpoint positions to EdgeStart
// and EdgeEnd and both endpoints' scales to the scale table. Locked holds the
// locked node positions in rank order. The snapshot gets a fresh ID.
func Export(st *layout.State) *Snapshot {
	var table ScaleTable
	snap := &Snapshot{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		EdgeStart: make([]Vec, 0, len(st.Edges())),
		EdgeEnd:   make([]Vec, 0, len(st.Edges())),
		Locked:    vecsOf(st.LockedPositions()),
		Nodes:     make([]NodeState, st.Len()),
	}
	for _, e := range st.Edges() {
		a, b := e[0], e[1]
		snap.EdgeStart = append(snap.EdgeStart, VecOf(st.Pos[a]))
		snap.EdgeEnd = append(snap.EdgeEnd, VecOf(st.Pos[b]))
		table.Set(st.Pos[a], st.Scale[a])
		table.Set(st.Pos[b], st.Scale[b])
	}
	snap.Positions = vecsOf(table.Positions())
	snap.Scales = vecsOf(table.Scales())

	for i := range st.Len() {
		snap.Nodes[i] = NodeState{
			ID:       st.Node(i).ID,
			Position: VecOf(st.Pos[i]),
			Scale:    VecOf(st.Scale[i]),
			Locked:   st.IsLocked(i),
		}
	}
	return snap
}

// =============================================================================
// Import
// =============================================================================

// ScaleTableFrom rebuilds the position to scale table of a snapshot.
func ScaleTableFrom(snap *Snapshot) (*ScaleTable, error) {
	if err := snap.Validate(); err != nil {
		return nil, err
	}
	t := &ScaleTable{}
	for i, p := range snap.Positions {
		t.Set(p.Geom(), snap.Scales[i].Geom())
	}
	return t, nil
}

// ApplySnapshot copies node positions from snap into st and clears all
// velocities, so relaxation can resume from a saved layout. Nodes are matched
// by ID; snapshot entries for unknown nodes are ignored. It returns the
// number of nodes updated.
//
// Nothing is changed if any matched position is not finite.
func ApplySnapshot(st *layout.State, snap *Snapshot) (int, error) {
	type update struct {
		index int
		pos   geom.Vec3
	}
	var updates []update
	for _, ns := range snap.Nodes {
		i, ok := st.IndexOf(ns.ID)
		if !ok {
			continue
		}
		p := ns.Position.Geom()
		if !p.IsFinite() {
			return 0, fmt.Errorf("node %s: position %v is not finite", ns.ID, p)
		}
		updates = append(updates, update{i, p})
	}
	for _, u := range updates {
		st.Pos[u.index] = u.pos
	}
	st.ResetVelocities()
	return len(updates), nil
}
