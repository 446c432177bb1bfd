package graph

import (
	"math"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/matzehuels/netforce/pkg/core/geom"
	"github.com/matzehuels/netforce/pkg/core/layout"
	"github.com/matzehuels/netforce/pkg/core/network"
)

func triangle(t *testing.T) *layout.State {
	t.Helper()
	g := network.New()
	_, _ = g.AddNode(network.NodeData{ID: "a"}, geom.V(0, 0, 0))
	_, _ = g.AddNode(network.NodeData{ID: "b"}, geom.V(1, 0, 0))
	_, _ = g.AddNode(network.NodeData{ID: "c"}, geom.V(0, 1, 0))
	_, _ = g.AddNode(network.NodeData{ID: "lonely"}, geom.V(5, 5, 5))
	_, _ = g.AddEdge("ab", "a", "b")
	_, _ = g.AddEdge("bc", "b", "c")
	_, _ = g.AddEdge("ca", "c", "a")
	_, _ = g.AddEdge("ab2", "a", "b")
	st, err := layout.NewState(g, layout.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	return st
}

func TestScaleTableLastWriteWins(t *testing.T) {
	var tbl ScaleTable
	p, q := geom.V(1, 2, 3), geom.V(4, 5, 6)
	tbl.Set(p, geom.One)
	tbl.Set(q, geom.One.Scale(2))
	tbl.Set(p, geom.One.Scale(3))

	if tbl.Len() != 2 {
		t.Fatalf("Len = %d, want 2", tbl.Len())
	}
	if got := tbl.Positions(); !slices.Equal(got, []geom.Vec3{p, q}) {
		t.Errorf("Positions = %v, want first-insertion order", got)
	}
	if s, _ := tbl.Get(p); s != geom.One.Scale(3) {
		t.Errorf("Get(p) = %v, want last written scale", s)
	}
	if got := tbl.Scales(); got[1] != geom.One.Scale(2) {
		t.Errorf("Scales = %v", got)
	}
	if _, ok := tbl.Get(geom.V(7, 7, 7)); ok {
		t.Error("unknown position should be missing")
	}
}

func TestScaleTableBitPatternKeys(t *testing.T) {
	var tbl ScaleTable
	tbl.Set(geom.V(0, 0, 0), geom.One)
	tbl.Set(geom.V(math.Copysign(0, -1), 0, 0), geom.One)
	if tbl.Len() != 2 {
		t.Errorf("0 and -0 should be distinct keys, Len = %d", tbl.Len())
	}

	// Computed at run time, 0.1+0.2 and 0.3 differ in the last bit.
	a, b := 0.1, 0.2
	tbl.Set(geom.V(a+b, 0, 0), geom.One)
	tbl.Set(geom.V(0.3, 0, 0), geom.One)
	if tbl.Len() != 4 {
		t.Errorf("Len = %d, want 4", tbl.Len())
	}
}

func TestExport(t *testing.T) {
	st := triangle(t)
	snap := Export(st)

	if snap.ID == "" {
		t.Error("snapshot should get an ID")
	}
	if len(snap.EdgeStart) != 4 || len(snap.EdgeEnd) != 4 {
		t.Fatalf("edge sequences = %d/%d, want 4/4", len(snap.EdgeStart), len(snap.EdgeEnd))
	}
	if snap.EdgeStart[1] != (Vec{1, 0, 0}) || snap.EdgeEnd[1] != (Vec{0, 1, 0}) {
		t.Errorf("edge bc = %v -> %v", snap.EdgeStart[1], snap.EdgeEnd[1])
	}
	// The lonely node has no edge and so no scale table entry.
	if len(snap.Positions) != 3 || len(snap.Scales) != 3 {
		t.Errorf("scale table size = %d/%d, want 3", len(snap.Positions), len(snap.Scales))
	}
	// a has degree 3, the graph maximum, so it is locked and scaled 1.25.
	if len(snap.Locked) != 1 || snap.Locked[0] != (Vec{0, 0, 0}) {
		t.Errorf("Locked = %v", snap.Locked)
	}
	if snap.Scales[0] != (Vec{1.25, 1.25, 1.25}) {
		t.Errorf("scale of a = %v", snap.Scales[0])
	}
	if len(snap.Nodes) != 4 || !snap.Nodes[0].Locked || snap.Nodes[3].ID != "lonely" {
		t.Errorf("Nodes = %+v", snap.Nodes)
	}
}

func TestScaleTableRoundTrip(t *testing.T) {
	st := triangle(t)
	snap := Export(st)

	tbl, err := ScaleTableFrom(snap)
	if err != nil {
		t.Fatal(err)
	}
	for i := range st.Len() {
		if len(st.Connected(i)) == 0 {
			continue
		}
		got, ok := tbl.Get(st.Pos[i])
		if !ok || got != st.Scale[i] {
			t.Errorf("node %s: scale %v, %v; want %v", st.Node(i).ID, got, ok, st.Scale[i])
		}
	}

	snap.Scales = snap.Scales[:1]
	if _, err := ScaleTableFrom(snap); err == nil {
		t.Error("mismatched sequences should fail")
	}
}

func TestApplySnapshot(t *testing.T) {
	src := triangle(t)
	src.Pos[1] = geom.V(9, 9, 9)
	snap := Export(src)
	snap.Nodes = append(snap.Nodes, NodeState{ID: "not-here", Position: Vec{1, 1, 1}})

	dst := triangle(t)
	dst.Vel[2] = geom.V(1, 1, 1)
	n, err := ApplySnapshot(dst, snap)
	if err != nil {
		t.Fatal(err)
	}
	if n != 4 {
		t.Errorf("applied %d nodes, want 4", n)
	}
	if dst.Pos[1] != geom.V(9, 9, 9) {
		t.Errorf("position not restored: %v", dst.Pos[1])
	}
	if dst.Vel[2] != geom.Zero {
		t.Error("velocities should be cleared")
	}

	bad := Export(src)
	bad.Nodes[0].Position = Vec{math.NaN(), 0, 0}
	before := dst.Pos[1]
	dst.Pos[1] = geom.V(2, 2, 2)
	if _, err := ApplySnapshot(dst, bad); err == nil {
		t.Error("non-finite position should fail")
	}
	if dst.Pos[1] != geom.V(2, 2, 2) {
		t.Errorf("state changed on failure (was %v)", before)
	}
}

func TestSnapshotFileRoundTrip(t *testing.T) {
	snap := Export(triangle(t))
	path := filepath.Join(t.TempDir(), "layout.json")
	if err := WriteSnapshotFile(snap, path); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{`"edgeStartPosition"`, `"edgeEndPosition"`, `"posSequence"`, `"scaleSequence"`, `"LockedLocations"`} {
		if !strings.Contains(string(data), key) {
			t.Errorf("output is missing %s", key)
		}
	}

	got, err := ReadSnapshotFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != snap.ID || !slices.Equal(got.Positions, snap.Positions) || !slices.Equal(got.Locked, snap.Locked) {
		t.Error("round trip changed the snapshot")
	}
}

func TestReadSnapshotInvalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not json", "nope"},
		{"edge mismatch", `{"edgeStartPosition":[{"x":1,"y":1,"z":1}],"edgeEndPosition":[]}`},
		{"table mismatch", `{"posSequence":[{"x":1,"y":1,"z":1}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := UnmarshalSnapshot([]byte(tt.doc)); err == nil {
				t.Error("expected error")
			}
		})
	}
}
