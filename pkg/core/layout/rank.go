package layout

import "github.com/matzehuels/netforce/pkg/core/network"

// Rank returns the IDs of the n highest-degree nodes of g's primary sequence.
// A negative n, or one above the node count, ranks every node.
func Rank(g *network.Graph, n int) []string {
	nodes := g.Nodes()
	idx := RankNodes(nodes, n)
	ids := make([]string, len(idx))
	for k, i := range idx {
		ids[k] = nodes[i].ID
	}
	return ids
}

// RankNodes selects up to n indices into nodes by descending degree.
//
// Each round picks the first remaining node with the highest degree and
// removes it, so equal degrees keep their input order. A negative n ranks
// every node.
func RankNodes(nodes []*network.Node, n int) []int {
	if n < 0 || n > len(nodes) {
		n = len(nodes)
	}
	taken := make([]bool, len(nodes))
	out := make([]int, 0, n)
	for range n {
		best := -1
		for i, node := range nodes {
			if taken[i] {
				continue
			}
			if best < 0 || node.Degree() > nodes[best].Degree() {
				best = i
			}
		}
		taken[best] = true
		out = append(out, best)
	}
	return out
}
