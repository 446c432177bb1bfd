package graph_test

import (
	"fmt"

	"github.com/matzehuels/netforce/pkg/core/geom"
	"github.com/matzehuels/netforce/pkg/graph"
)

func ExampleScaleTable() {
	var t graph.ScaleTable
	t.Set(geom.V(0, 0, 0), geom.One)
	t.Set(geom.V(1, 0, 0), geom.One.Scale(0.5))
	t.Set(geom.V(0, 0, 0), geom.One.Scale(2)) // same position: overwrite

	fmt.Println("Entries:", t.Len())
	s, _ := t.Get(geom.V(0, 0, 0))
	fmt.Println("Scale at origin:", s.X)
	// Output:
	// Entries: 2
	// Scale at origin: 2
}
