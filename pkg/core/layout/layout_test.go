package layout

import (
	"math"
	"slices"
	"testing"

	"github.com/matzehuels/netforce/pkg/core/geom"
	"github.com/matzehuels/netforce/pkg/core/network"
)

// degreeGraph has degrees a=5, b=5, c=3, d=1.
func degreeGraph(t *testing.T) *network.Graph {
	t.Helper()
	g := network.New()
	for i, id := range []string{"a", "b", "c", "d"} {
		if _, err := g.AddNode(network.NodeData{ID: id}, geom.V(float64(i), 0, 0)); err != nil {
			t.Fatal(err)
		}
	}
	for _, e := range [][2]string{{"a", "b"}, {"a", "b"}, {"b", "a"}, {"a", "c"}, {"c", "a"}, {"b", "c"}, {"b", "d"}} {
		if _, err := g.AddEdge("", e[0], e[1]); err != nil {
			t.Fatal(err)
		}
	}
	return g
}

func TestRankTies(t *testing.T) {
	g := degreeGraph(t)
	if got := Rank(g, 2); !slices.Equal(got, []string{"a", "b"}) {
		t.Errorf("Rank(2) = %v, want [a b]", got)
	}
	if got := Rank(g, -1); !slices.Equal(got, []string{"a", "b", "c", "d"}) {
		t.Errorf("Rank(all) = %v", got)
	}
	if got := Rank(g, 0); len(got) != 0 {
		t.Errorf("Rank(0) = %v, want empty", got)
	}

	// Ties follow the current input order.
	if err := g.Reorder([]int{3, 1, 2, 0}); err != nil {
		t.Fatal(err)
	}
	if got := Rank(g, 2); !slices.Equal(got, []string{"b", "a"}) {
		t.Errorf("Rank(2) after reorder = %v, want [b a]", got)
	}
}

func TestRankNodesClamp(t *testing.T) {
	g := degreeGraph(t)
	if got := RankNodes(g.Nodes(), 10); len(got) != 4 {
		t.Errorf("RankNodes(10) returned %d indices, want 4", len(got))
	}
}

func TestNewStatePeers(t *testing.T) {
	g := degreeGraph(t)
	s, err := NewState(g, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if s.Len() != 4 {
		t.Fatalf("Len = %d", s.Len())
	}
	a, _ := s.IndexOf("a")
	if got := s.Connected(a); !slices.Equal(got, []int{1, 2}) {
		t.Errorf("Connected(a) = %v, want [1 2]", got)
	}
	if got := s.Disconnected(a); !slices.Equal(got, []int{3}) {
		t.Errorf("Disconnected(a) = %v, want [3]", got)
	}
	d, _ := s.IndexOf("d")
	if got := s.Disconnected(d); !slices.Equal(got, []int{0, 2}) {
		t.Errorf("Disconnected(d) = %v, want [0 2]", got)
	}
	for i := range s.Len() {
		if s.Vel[i] != geom.Zero {
			t.Errorf("node %d starts with velocity %v", i, s.Vel[i])
		}
		if s.Pos[i] != s.Node(i).Position {
			t.Errorf("random placement should keep seed position for node %d", i)
		}
	}
	if got := s.Locked(); !slices.Equal(got, []int{0}) {
		t.Errorf("Locked = %v, want [0]", got)
	}
	if !s.IsLocked(0) || s.IsLocked(1) {
		t.Error("IsLocked mismatch")
	}
}

func TestNewStateSelfLoop(t *testing.T) {
	g := network.New()
	_, _ = g.AddNode(network.NodeData{ID: "solo"}, geom.Zero)
	_, _ = g.AddEdge("loop", "solo", "solo")

	s, err := NewState(g, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if got := s.Connected(0); len(got) != 0 {
		t.Errorf("Connected(solo) = %v, want empty", got)
	}
	if got := s.Edges(); len(got) != 1 || got[0] != [2]int{0, 0} {
		t.Errorf("Edges = %v, want the loop kept for export", got)
	}
	if got := s.Disconnected(0); len(got) != 0 {
		t.Errorf("Disconnected(solo) = %v, want empty", got)
	}
}

func TestNewStateMaxNodes(t *testing.T) {
	g := degreeGraph(t)
	opts := DefaultOptions()
	opts.MaxNodes = 2
	s, err := NewState(g, opts)
	if err != nil {
		t.Fatal(err)
	}
	if s.Len() != 2 {
		t.Fatalf("Len = %d, want 2", s.Len())
	}
	if len(s.Edges()) != 3 {
		t.Errorf("participating edges = %d, want 3 (a-b only)", len(s.Edges()))
	}
	if _, ok := s.IndexOf("c"); ok {
		t.Error("c should not participate")
	}
	// Degree still counts all graph edges.
	if s.MaxDegree() != 5 {
		t.Errorf("MaxDegree = %d, want 5", s.MaxDegree())
	}
}

func TestNewStateInvalid(t *testing.T) {
	g := degreeGraph(t)
	tests := []struct {
		name string
		opts Options
	}{
		{"negative max nodes", Options{MaxNodes: -1}},
		{"negative locked", Options{LockedNodes: -2}},
		{"negative degree", Options{MaxDegree: -1}},
		{"bad placement", Options{Placement: "spiral"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewState(g, tt.opts); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLockedPositionsAndLength(t *testing.T) {
	g := network.New()
	_, _ = g.AddNode(network.NodeData{ID: "a"}, geom.V(0, 0, 0))
	_, _ = g.AddNode(network.NodeData{ID: "b"}, geom.V(3, 4, 0))
	_, _ = g.AddNode(network.NodeData{ID: "c"}, geom.V(3, 4, 2))
	_, _ = g.AddEdge("e1", "a", "b")
	_, _ = g.AddEdge("e2", "b", "c")

	opts := DefaultOptions()
	opts.LockedNodes = 2
	s, err := NewState(g, opts)
	if err != nil {
		t.Fatal(err)
	}
	if got := s.TotalEdgeLength(); got != 7 {
		t.Errorf("TotalEdgeLength = %v, want 7", got)
	}
	want := []geom.Vec3{geom.V(3, 4, 0), geom.V(0, 0, 0)}
	if got := s.LockedPositions(); !slices.Equal(got, want) {
		t.Errorf("LockedPositions = %v, want %v", got, want)
	}
}

func TestNodeScale(t *testing.T) {
	tests := []struct {
		degree, max int
		want        float64
	}{
		{0, 10, 0.25},
		{5, 10, 0.75},
		{10, 10, 1.25},
		{3, 0, 0.25},
	}
	for _, tt := range tests {
		got := NodeScale(tt.degree, tt.max, 1, DefaultMinNodeSize)
		if got != geom.One.Scale(tt.want) {
			t.Errorf("NodeScale(%d, %d) = %v, want %v", tt.degree, tt.max, got, tt.want)
		}
	}
	if got := NodeScale(5, 10, 2, 0.25); got.X != 1.5 {
		t.Errorf("base scale not applied: %v", got)
	}
}

func TestPlaceRing(t *testing.T) {
	g := degreeGraph(t)
	pos := PlaceRing(g.Nodes(), g.MaxDegree())

	// a and b have ratio 1 and sit on the axis.
	if pos[0] != geom.V(0, RingLift, 0) || pos[1] != geom.V(0, RingLift, 0) {
		t.Errorf("top-degree nodes = %v, %v", pos[0], pos[1])
	}
	// d: i=3 of 4, angle 3π/2, ratio 0.2.
	d := pos[3]
	if math.Abs(d.X) > 1e-9 || math.Abs(d.Z+RingRadius) > 1e-9 || math.Abs(d.Y-0.2*RingLift) > 1e-9 {
		t.Errorf("d = %v", d)
	}
}

func TestPlaceCone(t *testing.T) {
	g := degreeGraph(t)
	pos := PlaceCone(g.Nodes(), g.MaxDegree())
	if pos[0] != geom.V(0, ConeHeight, 0) {
		t.Errorf("ratio-1 node should reach the apex, got %v", pos[0])
	}
	// c: ratio 0.6, radial distance shrinks to 40% of the ring radius.
	c := pos[2]
	radial := math.Hypot(c.X, c.Z)
	if math.Abs(radial-0.4*RingRadius) > 1e-9 {
		t.Errorf("radial distance of c = %v, want %v", radial, 0.4*RingRadius)
	}
}

func TestNewStatePlacement(t *testing.T) {
	g := degreeGraph(t)
	opts := DefaultOptions()
	opts.Placement = PlacementRing
	s, err := NewState(g, opts)
	if err != nil {
		t.Fatal(err)
	}
	if s.Pos[0] != geom.V(0, RingLift, 0) {
		t.Errorf("ring placement not applied: %v", s.Pos[0])
	}
	if s.Node(0).Position != geom.V(0, 0, 0) {
		t.Error("placement must not modify the graph's seed positions")
	}
}

func TestParsePlacement(t *testing.T) {
	for _, p := range Placements {
		if got, err := ParsePlacement(string(p)); err != nil || got != p {
			t.Errorf("ParsePlacement(%q) = %q, %v", p, got, err)
		}
	}
	if got, _ := ParsePlacement(""); got != PlacementRandom {
		t.Errorf("empty placement = %q, want random", got)
	}
	if _, err := ParsePlacement("spiral"); err == nil {
		t.Error("expected error for unknown placement")
	}
}
