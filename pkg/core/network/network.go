package network

import (
	"errors"
	"fmt"
	"hash/fnv"
	"slices"

	"github.com/matzehuels/netforce/pkg/core/geom"
)

var (
	// ErrInvalidNodeID is returned by [Graph.AddNode] when the node ID is empty.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [Graph.AddNode] when a node with the
	// same ID already exists. Node IDs are unique within a graph.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrUnknownSourceNode is returned by [Graph.AddEdge] when the source node
	// has not been added yet.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned by [Graph.AddEdge] when the target node
	// has not been added yet.
	ErrUnknownTargetNode = errors.New("unknown target node")

	// ErrInvalidEdgeEndpoint is returned by [Graph.Validate] when an edge
	// references a node that is not part of the node sequence.
	ErrInvalidEdgeEndpoint = errors.New("invalid edge endpoint")

	// ErrUnknownRank is returned by [Graph.Reorder] when a rank does not match
	// any node's parse position.
	ErrUnknownRank = errors.New("no node with rank")

	// ErrDuplicateRank is returned by [Graph.Reorder] when a rank appears twice.
	ErrDuplicateRank = errors.New("duplicate rank")

	// ErrRankCount is returned by [Graph.Reorder] when the number of ranks
	// differs from the number of nodes.
	ErrRankCount = errors.New("rank count does not match node count")
)

// NodeData holds the descriptive attributes of a node as read from the source.
// None of these fields influence the layout.
type NodeData struct {
	ID                string
	Label             string
	Description       string
	LinkURL           string
	Category          string
	NumLikes          int
	TalkingAboutCount int
	UsersCanPost      bool
}

// Node is a vertex of the network.
//
// Position is the seed position assigned when the node was created; the
// layout engine copies it into its own state and never writes it back.
type Node struct {
	NodeData
	Position geom.Vec3

	rank     int
	incoming []*Edge
	outgoing []*Edge
}

// Rank returns the node's position in parse order. It never changes, even
// after [Graph.Reorder].
func (n *Node) Rank() int { return n.rank }

// Incoming returns the edges ending at n in insertion order.
// The slice must not be modified.
func (n *Node) Incoming() []*Edge { return n.incoming }

// Outgoing returns the edges starting at n in insertion order.
// The slice must not be modified.
func (n *Node) Outgoing() []*Edge { return n.outgoing }

// Degree is the total number of incident edges (incoming + outgoing).
// A self-loop counts twice.
func (n *Node) Degree() int { return len(n.incoming) + len(n.outgoing) }

// Edge is a directed connection between two nodes of the same graph.
type Edge struct {
	ID    string
	start *Node
	end   *Node
}

// Start returns the source node.
func (e *Edge) Start() *Node { return e.start }

// End returns the target node.
func (e *Edge) End() *Node { return e.end }

// IsSelfLoop reports whether the edge starts and ends at the same node.
func (e *Edge) IsSelfLoop() bool { return e.start == e.end }

// Other returns the endpoint opposite to n, or nil if n is not an endpoint.
func (e *Edge) Other(n *Node) *Node {
	switch n {
	case e.start:
		return e.end
	case e.end:
		return e.start
	}
	return nil
}

// Equal reports whether e and o join the same unordered pair of nodes.
// Direction and edge ID are ignored: edge(A,B) equals edge(B,A).
func (e *Edge) Equal(o *Edge) bool {
	if e == nil || o == nil {
		return e == o
	}
	return (e.start == o.start && e.end == o.end) ||
		(e.start == o.end && e.end == o.start)
}

// Hash returns a direction-independent hash consistent with [Edge.Equal]:
// the endpoint hashes are combined with addition, which commutes.
func (e *Edge) Hash() uint64 {
	return hashID(e.start.ID) + hashID(e.end.ID)
}

func hashID(id string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(id))
	return h.Sum64()
}

// Graph is a network of nodes and directed edges.
//
// Nodes keep their insertion order, which the layout state and the exporter
// use to correlate indices. Edges can only be added between nodes that already
// exist, so a graph is always built nodes first, edges second.
//
// The zero value is not usable; call [New]. A Graph is not safe for
// concurrent mutation.
type Graph struct {
	nodes []*Node
	byID  map[string]*Node
	edges []*Edge
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{byID: make(map[string]*Node)}
}

// AddNode appends a node with the given attributes and seed position.
// Returns ErrInvalidNodeID for an empty ID or ErrDuplicateNodeID when the ID
// is already taken.
func (g *Graph) AddNode(data NodeData, pos geom.Vec3) (*Node, error) {
	if data.ID == "" {
		return nil, ErrInvalidNodeID
	}
	if _, exists := g.byID[data.ID]; exists {
		return nil, ErrDuplicateNodeID
	}
	n := &Node{NodeData: data, Position: pos, rank: len(g.byID)}
	g.nodes = append(g.nodes, n)
	g.byID[n.ID] = n
	return n, nil
}

// AddEdge connects source to target. Both nodes must already exist.
// Returns ErrUnknownSourceNode or ErrUnknownTargetNode otherwise; the graph
// is unchanged in that case. Self-loops and parallel edges are allowed.
func (g *Graph) AddEdge(id, source, target string) (*Edge, error) {
	s, ok := g.byID[source]
	if !ok {
		return nil, ErrUnknownSourceNode
	}
	t, ok := g.byID[target]
	if !ok {
		return nil, ErrUnknownTargetNode
	}
	e := &Edge{ID: id, start: s, end: t}
	g.edges = append(g.edges, e)
	s.outgoing = append(s.outgoing, e)
	t.incoming = append(t.incoming, e)
	return e, nil
}

// Node returns the node with the given ID.
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.byID[id]
	return n, ok
}

// NodeAt returns the i-th node of the primary sequence.
func (g *Graph) NodeAt(i int) *Node { return g.nodes[i] }

// Nodes returns the primary node sequence. The slice is a copy; the nodes
// are shared with the graph.
func (g *Graph) Nodes() []*Node { return slices.Clone(g.nodes) }

// Edges returns all edges in insertion order. The slice is a copy.
func (g *Graph) Edges() []*Edge { return slices.Clone(g.edges) }

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// MaxDegree returns the highest node degree, or 0 for an empty graph.
func (g *Graph) MaxDegree() int {
	best := 0
	for _, n := range g.nodes {
		best = max(best, n.Degree())
	}
	return best
}

// FindEdge returns the first edge joining a and b in either direction.
func (g *Graph) FindEdge(a, b string) (*Edge, bool) {
	na, okA := g.byID[a]
	nb, okB := g.byID[b]
	if !okA || !okB {
		return nil, false
	}
	probe := &Edge{start: na, end: nb}
	for _, e := range na.outgoing {
		if e.Equal(probe) {
			return e, true
		}
	}
	for _, e := range na.incoming {
		if e.Equal(probe) {
			return e, true
		}
	}
	return nil, false
}

// Peers returns the distinct nodes joined to n by at least one edge, in the
// order their first edge was added. A node with a self-loop is its own peer.
func (g *Graph) Peers(n *Node) []*Node {
	seen := make(map[*Node]bool)
	var peers []*Node
	add := func(p *Node) {
		if !seen[p] {
			seen[p] = true
			peers = append(peers, p)
		}
	}
	for _, e := range g.edges {
		if o := e.Other(n); o != nil {
			add(o)
		}
	}
	return peers
}

// Reorder replaces the primary node sequence. ranks[i] is the parse rank
// ([Node.Rank]) of the node that should be at position i.
//
// ranks must be a permutation of 0..NodeCount()-1. On any error the graph is
// left unchanged. Identity and adjacency are never touched.
func (g *Graph) Reorder(ranks []int) error {
	if len(ranks) != len(g.nodes) {
		return fmt.Errorf("%w: got %d, want %d", ErrRankCount, len(ranks), len(g.nodes))
	}
	byRank := make(map[int]*Node, len(g.nodes))
	for _, n := range g.nodes {
		byRank[n.rank] = n
	}
	next := make([]*Node, len(ranks))
	used := make(map[int]bool, len(ranks))
	for i, r := range ranks {
		n, ok := byRank[r]
		if !ok {
			return fmt.Errorf("%w %d (position %d)", ErrUnknownRank, r, i)
		}
		if used[r] {
			return fmt.Errorf("%w %d (position %d)", ErrDuplicateRank, r, i)
		}
		used[r] = true
		next[i] = n
	}
	g.nodes = next
	return nil
}

// Validate checks that every edge endpoint belongs to the node sequence.
func (g *Graph) Validate() error {
	members := make(map[*Node]bool, len(g.nodes))
	for _, n := range g.nodes {
		members[n] = true
	}
	for _, e := range g.edges {
		if !members[e.start] || !members[e.end] {
			return fmt.Errorf("edge %s: %w", e.ID, ErrInvalidEdgeEndpoint)
		}
	}
	return nil
}

// NodeIDs extracts the ID of each node, preserving order.
func NodeIDs(nodes []*Node) []string {
	ids := make([]string, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
	}
	return ids
}
