// Package layout holds the mutable simulation state of a network layout.
//
// # Overview
//
// A [State] is built once from a [network.Graph] and is then owned by a
// single relaxation engine. It keeps, per participating node:
//
//   - the current position (copied from the node's seed position or from a
//     placement strategy)
//   - the current velocity, starting at zero
//   - the display scale, derived from the node's degree
//   - the indices of its connected and disconnected peers
//
// Participating nodes are the first [Options.MaxNodes] nodes of the graph's
// primary sequence (all of them by default). Edges with an endpoint outside
// that set are ignored.
//
// # Locked Nodes
//
// [Rank] orders nodes by descending degree. Ties keep input order: the
// ranking repeatedly selects the first node with the highest remaining degree
// and removes it from consideration. The top [Options.LockedNodes] nodes are
// the locked nodes of the state. They are ranked once, at construction, and
// never re-ranked.
//
// # Placement
//
// [PlacementRandom] keeps the seed positions assigned by the loader.
// [PlacementRing] spreads nodes evenly on a ring of radius 30 and lifts each
// node by its degree ratio. [PlacementCone] additionally pulls high-degree
// nodes toward the vertical axis.
//
// [network.Graph]: github.com/matzehuels/netforce/pkg/core/network.Graph
package layout
