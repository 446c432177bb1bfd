package layout

import (
	"fmt"

	"github.com/matzehuels/netforce/pkg/core/geom"
	"github.com/matzehuels/netforce/pkg/core/network"
)

// Default values for [Options].
const (
	DefaultLockedNodes = 1
	DefaultMinNodeSize = 0.25
	DefaultBaseScale   = 1.0
)

// Options configures how a [State] is built from a graph.
type Options struct {
	// MaxNodes limits the participating nodes to the first MaxNodes of the
	// primary sequence. Zero, or a value above the node count, means all.
	MaxNodes int

	// LockedNodes is the number of top-degree nodes to lock. Clamped to the
	// number of participating nodes. Zero locks nothing.
	LockedNodes int

	// MaxDegree is the degree that maps to a ratio of 1 for scale and
	// placement. Zero means the highest degree in the graph.
	MaxDegree int

	// BaseScale is multiplied into every node scale. Zero means 1.
	BaseScale float64

	// MinNodeSize is added to the degree ratio when computing node scale.
	MinNodeSize float64

	// Placement selects the initial positions.
	Placement Placement
}

// DefaultOptions returns options with one locked node, random placement and
// the default node sizing.
func DefaultOptions() Options {
	return Options{
		LockedNodes: DefaultLockedNodes,
		BaseScale:   DefaultBaseScale,
		MinNodeSize: DefaultMinNodeSize,
		Placement:   PlacementRandom,
	}
}

// Validate checks option values.
func (o Options) Validate() error {
	if o.MaxNodes < 0 {
		return fmt.Errorf("max nodes must not be negative, got %d", o.MaxNodes)
	}
	if o.LockedNodes < 0 {
		return fmt.Errorf("locked nodes must not be negative, got %d", o.LockedNodes)
	}
	if o.MaxDegree < 0 {
		return fmt.Errorf("max degree must not be negative, got %d", o.MaxDegree)
	}
	if o.BaseScale < 0 || o.MinNodeSize < 0 {
		return fmt.Errorf("node sizes must not be negative")
	}
	if _, err := ParsePlacement(string(o.Placement)); err != nil {
		return err
	}
	return nil
}

// State is the per-node simulation state. Index i of every slice refers to
// the i-th participating node.
//
// The engine reads and writes Pos and Vel directly; everything else is fixed
// after [NewState].
type State struct {
	Pos   []geom.Vec3
	Vel   []geom.Vec3
	Scale []geom.Vec3

	nodes        []*network.Node
	edges        [][2]int
	edgeRefs     []*network.Edge
	index        map[string]int
	connected    [][]int
	disconnected [][]int
	locked       []int
	isLocked     []bool
	maxDegree    int
}

// NewState builds the simulation state for g.
func NewState(g *network.Graph, opts Options) (*State, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	nodes := g.Nodes()
	if opts.MaxNodes > 0 && opts.MaxNodes < len(nodes) {
		nodes = nodes[:opts.MaxNodes]
	}
	n := len(nodes)

	s := &State{
		Pos:          make([]geom.Vec3, n),
		Vel:          make([]geom.Vec3, n),
		Scale:        make([]geom.Vec3, n),
		nodes:        nodes,
		index:        make(map[string]int, n),
		connected:    make([][]int, n),
		disconnected: make([][]int, n),
		isLocked:     make([]bool, n),
		maxDegree:    opts.MaxDegree,
	}
	if s.maxDegree == 0 {
		s.maxDegree = g.MaxDegree()
	}
	for i, node := range nodes {
		s.index[node.ID] = i
	}

	for _, e := range g.Edges() {
		a, okA := s.index[e.Start().ID]
		b, okB := s.index[e.End().ID]
		if !okA || !okB {
			continue
		}
		s.edges = append(s.edges, [2]int{a, b})
		s.edgeRefs = append(s.edgeRefs, e)
	}
	s.buildPeers()

	switch opts.Placement {
	case PlacementRing:
		copy(s.Pos, PlaceRing(nodes, s.maxDegree))
	case PlacementCone:
		copy(s.Pos, PlaceCone(nodes, s.maxDegree))
	default:
		for i, node := range nodes {
			s.Pos[i] = node.Position
		}
	}

	base := opts.BaseScale
	if base == 0 {
		base = DefaultBaseScale
	}
	for i, node := range nodes {
		s.Scale[i] = NodeScale(node.Degree(), s.maxDegree, base, opts.MinNodeSize)
	}

	s.locked = RankNodes(nodes, opts.LockedNodes)
	for _, i := range s.locked {
		s.isLocked[i] = true
	}
	return s, nil
}

func (s *State) buildPeers() {
	n := len(s.nodes)
	linked := make([]map[int]bool, n)
	for i := range linked {
		linked[i] = make(map[int]bool)
	}
	for _, e := range s.edges {
		a, b := e[0], e[1]
		if a == b {
			continue
		}
		if !linked[a][b] {
			linked[a][b] = true
			s.connected[a] = append(s.connected[a], b)
		}
		if !linked[b][a] {
			linked[b][a] = true
			s.connected[b] = append(s.connected[b], a)
		}
	}
	for i := range n {
		others := make([]int, 0, max(0, n-1-len(s.connected[i])))
		for j := range n {
			if j != i && !linked[i][j] {
				others = append(others, j)
			}
		}
		s.disconnected[i] = others
	}
}

// Len returns the number of participating nodes.
func (s *State) Len() int { return len(s.nodes) }

// Node returns the i-th participating node.
func (s *State) Node(i int) *network.Node { return s.nodes[i] }

// IndexOf returns the state index of the node with the given ID.
func (s *State) IndexOf(id string) (int, bool) {
	i, ok := s.index[id]
	return i, ok
}

// Edges returns the participating edges as index pairs (start, end) in graph
// edge order. The slice must not be modified.
func (s *State) Edges() [][2]int { return s.edges }

// Edge returns the graph edge behind the i-th participating edge.
func (s *State) Edge(i int) *network.Edge { return s.edgeRefs[i] }

// Connected returns the distinct connected peers of node i in first-edge
// order. Self-loops add no peer. The slice must not be modified.
func (s *State) Connected(i int) []int { return s.connected[i] }

// Disconnected returns every other participating node that is not a
// connected peer of node i. The slice must not be modified.
func (s *State) Disconnected(i int) []int { return s.disconnected[i] }

// Locked returns the indices of the locked nodes, highest degree first.
func (s *State) Locked() []int { return s.locked }

// IsLocked reports whether node i is locked.
func (s *State) IsLocked(i int) bool { return s.isLocked[i] }

// LockedPositions returns the current positions of the locked nodes in rank
// order.
func (s *State) LockedPositions() []geom.Vec3 {
	out := make([]geom.Vec3, len(s.locked))
	for k, i := range s.locked {
		out[k] = s.Pos[i]
	}
	return out
}

// MaxDegree returns the degree that maps to a ratio of 1.
func (s *State) MaxDegree() int { return s.maxDegree }

// TotalEdgeLength returns the summed length of all participating edges.
func (s *State) TotalEdgeLength() float64 {
	var total float64
	for _, e := range s.edges {
		total += geom.Distance(s.Pos[e[0]], s.Pos[e[1]])
	}
	return total
}

// ResetVelocities sets every velocity to zero.
func (s *State) ResetVelocities() {
	clear(s.Vel)
}
