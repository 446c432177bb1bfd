// Package network provides the node and edge model that the force layout
// operates on.
//
// # Overview
//
// A [Graph] holds an ordered sequence of [Node] values and a list of directed
// [Edge] values. Node order matters: it is the index space shared by the
// layout state, the locked-node ranking and the exported snapshot. Edge
// direction is kept for adjacency queries, but for layout purposes an edge is
// an unordered pair ([Edge.Equal], [Edge.Hash]).
//
// # Basic Usage
//
//	g := network.New()
//	g.AddNode(network.NodeData{ID: "a"}, geom.Zero)
//	g.AddNode(network.NodeData{ID: "b"}, geom.V(1, 0, 0))
//	g.AddEdge("e1", "a", "b")
//
// Every edge endpoint is a member of the node sequence; [Graph.AddEdge]
// rejects unknown endpoints and [Graph.Validate] checks the property after the
// fact.
//
// # Reordering
//
// [Graph.Reorder] replaces the primary node sequence with a permutation given
// as parse ranks ([Node.Rank]). Ranks are assigned once, in parse order, and
// survive reordering, so a stored order can be applied to a freshly parsed
// copy of the same source.
package network
