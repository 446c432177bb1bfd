package layout

import (
	"fmt"
	"math"

	"github.com/matzehuels/netforce/pkg/core/geom"
	"github.com/matzehuels/netforce/pkg/core/network"
)

// Placement names an initial position strategy.
type Placement string

// Supported placements.
const (
	PlacementRandom Placement = "random"
	PlacementRing   Placement = "ring"
	PlacementCone   Placement = "cone"
)

// Placements lists the supported placements.
var Placements = []Placement{PlacementRandom, PlacementRing, PlacementCone}

// Ring geometry.
const (
	RingRadius = 30.0
	RingLift   = 15.0
	ConeHeight = 30.0
)

// ParsePlacement validates a placement name. The empty string means random.
func ParsePlacement(s string) (Placement, error) {
	switch Placement(s) {
	case "", PlacementRandom:
		return PlacementRandom, nil
	case PlacementRing, PlacementCone:
		return Placement(s), nil
	}
	return "", fmt.Errorf("unknown placement %q (want random, ring or cone)", s)
}

// DegreeRatio maps a degree to [0, 1] relative to maxDegree. A non-positive
// maxDegree yields 0.
func DegreeRatio(degree, maxDegree int) float64 {
	if maxDegree <= 0 {
		return 0
	}
	return float64(degree) / float64(maxDegree)
}

// PlaceRing puts node i at angle 2πi/n on a horizontal ring and lifts it by
// its degree ratio. A node with ratio 1 goes to the ring's axis.
func PlaceRing(nodes []*network.Node, maxDegree int) []geom.Vec3 {
	out := make([]geom.Vec3, len(nodes))
	for i, node := range nodes {
		r := DegreeRatio(node.Degree(), maxDegree)
		if r == 1 {
			out[i] = geom.V(0, r*RingLift, 0)
			continue
		}
		out[i] = ringPoint(i, len(nodes), r)
	}
	return out
}

// PlaceCone starts from the ring position and moves each node toward the
// point (0, ratio*ConeHeight, 0) by its degree ratio.
func PlaceCone(nodes []*network.Node, maxDegree int) []geom.Vec3 {
	out := make([]geom.Vec3, len(nodes))
	for i, node := range nodes {
		r := DegreeRatio(node.Degree(), maxDegree)
		apex := geom.V(0, r*ConeHeight, 0)
		out[i] = geom.Lerp(ringPoint(i, len(nodes), r), apex, r)
	}
	return out
}

func ringPoint(i, n int, ratio float64) geom.Vec3 {
	angle := 2 * math.Pi * float64(i) / float64(n)
	return geom.V(math.Cos(angle)*RingRadius, ratio*RingLift, math.Sin(angle)*RingRadius)
}

// NodeScale returns the uniform display scale of a node:
// base × (degree/maxDegree + minSize) on every axis.
func NodeScale(degree, maxDegree int, base, minSize float64) geom.Vec3 {
	return geom.One.Scale(base * (DegreeRatio(degree, maxDegree) + minSize))
}
