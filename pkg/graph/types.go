package graph

import (
	"fmt"
	"time"

	"github.com/matzehuels/netforce/pkg/core/force"
	"github.com/matzehuels/netforce/pkg/core/geom"
)

// =============================================================================
// Vec - 3D Coordinate
// =============================================================================

// Vec is the serialized form of a 3D vector.
type Vec struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
	Z float64 `json:"z" bson:"z"`
}

// VecOf converts a geom vector.
func VecOf(v geom.Vec3) Vec { return Vec{v.X, v.Y, v.Z} }

// Geom converts back to a geom vector.
func (v Vec) Geom() geom.Vec3 { return geom.V(v.X, v.Y, v.Z) }

func vecsOf(vs []geom.Vec3) []Vec {
	out := make([]Vec, len(vs))
	for i, v := range vs {
		out[i] = VecOf(v)
	}
	return out
}

// =============================================================================
// Snapshot - Layout Export Format
// =============================================================================

// Snapshot is the serialized layout of a relaxed network.
//
// The first five fields form the layout contract: parallel edge endpoint
// sequences, a position to scale table given as two parallel sequences, and
// the positions of the locked nodes in rank order. Nodes, Stats and the
// identifying fields are extensions used to restore and track snapshots.
type Snapshot struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	SourceKey string    `json:"source_key,omitempty" bson:"source_key,omitempty"`

	EdgeStart []Vec `json:"edgeStartPosition" bson:"edgeStartPosition"`
	EdgeEnd   []Vec `json:"edgeEndPosition" bson:"edgeEndPosition"`
	Positions []Vec `json:"posSequence" bson:"posSequence"`
	Scales    []Vec `json:"scaleSequence" bson:"scaleSequence"`
	Locked    []Vec `json:"LockedLocations" bson:"LockedLocations"`

	Nodes []NodeState  `json:"nodes,omitempty" bson:"nodes,omitempty"`
	Stats *force.Stats `json:"stats,omitempty" bson:"stats,omitempty"`
}

// NodeState is the exported state of one participating node.
type NodeState struct {
	ID       string `json:"id" bson:"id"`
	Position Vec    `json:"position" bson:"position"`
	Scale    Vec    `json:"scale" bson:"scale"`
	Locked   bool   `json:"locked,omitempty" bson:"locked,omitempty"`
}

// Validate checks that the parallel sequences line up.
func (s *Snapshot) Validate() error {
	if len(s.EdgeStart) != len(s.EdgeEnd) {
		return fmt.Errorf("edge sequences differ in length: %d start, %d end", len(s.EdgeStart), len(s.EdgeEnd))
	}
	if len(s.Positions) != len(s.Scales) {
		return fmt.Errorf("scale table sequences differ in length: %d positions, %d scales", len(s.Positions), len(s.Scales))
	}
	return nil
}

// Summary is a short listing entry for a stored snapshot.
type Summary struct {
	ID        string    `json:"id" bson:"_id"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	Nodes     int       `json:"nodes" bson:"nodes"`
	Edges     int       `json:"edges" bson:"edges"`
}

// Summarize returns the listing entry for s.
func (s *Snapshot) Summarize() Summary {
	return Summary{ID: s.ID, CreatedAt: s.CreatedAt, Nodes: len(s.Nodes), Edges: len(s.EdgeStart)}
}
