package force

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/matzehuels/netforce/pkg/core/geom"
	"github.com/matzehuels/netforce/pkg/core/layout"
	"github.com/matzehuels/netforce/pkg/core/network"
)

type nodeSpec struct {
	id  string
	pos geom.Vec3
}

func newState(t *testing.T, nodes []nodeSpec, edges [][2]string, opts layout.Options) *layout.State {
	t.Helper()
	g := network.New()
	for _, n := range nodes {
		if _, err := g.AddNode(network.NodeData{ID: n.id}, n.pos); err != nil {
			t.Fatal(err)
		}
	}
	for _, e := range edges {
		if _, err := g.AddEdge(e[0]+e[1], e[0], e[1]); err != nil {
			t.Fatal(err)
		}
	}
	st, err := layout.NewState(g, opts)
	if err != nil {
		t.Fatal(err)
	}
	return st
}

func freeParams() Params {
	p := DefaultParams()
	p.Damping = 1
	p.PinLocked = false
	return p
}

func noLock() layout.Options {
	o := layout.DefaultOptions()
	o.LockedNodes = 0
	return o
}

func newEngine(t *testing.T, st *layout.State, p Params) *Engine {
	t.Helper()
	e, err := New(st, p)
	if err != nil {
		t.Fatal(err)
	}
	return e
}

func near(a, b, eps float64) bool { return math.Abs(a-b) <= eps }

func TestConnectedMagnitude(t *testing.T) {
	if got := ConnectedMagnitude(3, 2, 3); got != 0 {
		t.Errorf("at desired distance: got %v, want 0", got)
	}
	if got, want := ConnectedMagnitude(6, 2, 3), 2*math.Log10(2); !near(got, want, 1e-15) {
		t.Errorf("at twice desired distance: got %v, want %v", got, want)
	}
	if got := ConnectedMagnitude(1, 1, 3); got >= 0 {
		t.Errorf("closer than desired must be negative, got %v", got)
	}
}

func TestRepulsionMagnitude(t *testing.T) {
	if got := RepulsionMagnitude(2, 3); got != 0.75 {
		t.Errorf("got %v, want 0.75", got)
	}
	if got := RepulsionMagnitude(0, 3); got != 0 {
		t.Errorf("zero distance: got %v, want 0", got)
	}
}

func TestTickAtDesiredDistance(t *testing.T) {
	st := newState(t, []nodeSpec{{"a", geom.Zero}, {"b", geom.V(1, 0, 0)}}, [][2]string{{"a", "b"}}, noLock())
	e := newEngine(t, st, freeParams())
	e.Tick(0.1)

	for i := range st.Len() {
		if st.Vel[i] != geom.Zero {
			t.Errorf("node %d velocity = %v, want zero", i, st.Vel[i])
		}
	}
	if st.Pos[1] != geom.V(1, 0, 0) {
		t.Errorf("node b moved to %v", st.Pos[1])
	}
}

func TestTickAttractsAtTwiceDistance(t *testing.T) {
	st := newState(t, []nodeSpec{{"a", geom.Zero}, {"b", geom.V(2, 0, 0)}}, [][2]string{{"a", "b"}}, noLock())
	e := newEngine(t, st, freeParams())
	const dt = 0.1
	e.Tick(dt)

	want := math.Log10(2) * dt
	if !near(st.Vel[0].X, want, 1e-12) || st.Vel[0].Y != 0 || st.Vel[0].Z != 0 {
		t.Errorf("a velocity = %v, want (%v, 0, 0)", st.Vel[0], want)
	}
	if !near(st.Vel[1].X, -want, 1e-12) {
		t.Errorf("b velocity = %v, want (%v, 0, 0)", st.Vel[1], -want)
	}
	if !near(st.Pos[0].X, want*dt, 1e-12) {
		t.Errorf("a position = %v, want x=%v", st.Pos[0], want*dt)
	}
}

func TestTickRepulsion(t *testing.T) {
	st := newState(t, []nodeSpec{{"a", geom.Zero}, {"b", geom.V(0, 2, 0)}}, nil, noLock())
	p := freeParams()
	p.RepulsionForce = 3
	e := newEngine(t, st, p)
	const dt = 0.5
	e.Tick(dt)

	want := 3.0 / 4 * dt
	if !near(st.Vel[0].Y, -want, 1e-12) || !near(st.Vel[1].Y, want, 1e-12) {
		t.Errorf("velocities = %v, %v, want ±%v on y", st.Vel[0], st.Vel[1], want)
	}
}

func TestTickDegenerateGeometry(t *testing.T) {
	tests := []struct {
		name  string
		nodes []nodeSpec
		edges [][2]string
	}{
		{"coincident disconnected", []nodeSpec{{"a", geom.V(1, 1, 1)}, {"b", geom.V(1, 1, 1)}}, nil},
		{"coincident connected", []nodeSpec{{"a", geom.V(1, 1, 1)}, {"b", geom.V(1, 1, 1)}}, [][2]string{{"a", "b"}}},
		{"self loop", []nodeSpec{{"a", geom.V(1, 1, 1)}}, [][2]string{{"a", "a"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := newState(t, tt.nodes, tt.edges, noLock())
			e := newEngine(t, st, freeParams())
			for range 10 {
				e.Tick(0.1)
			}
			for i := range st.Len() {
				if st.Vel[i] != geom.Zero {
					t.Errorf("node %d velocity = %v, want zero", i, st.Vel[i])
				}
				if st.Pos[i] != geom.V(1, 1, 1) {
					t.Errorf("node %d position = %v", i, st.Pos[i])
				}
			}
		})
	}
}

func TestTickIsFinite(t *testing.T) {
	// Nearly coincident connected nodes produce a huge but finite push.
	st := newState(t, []nodeSpec{{"a", geom.Zero}, {"b", geom.V(1e-8, 0, 0)}, {"c", geom.V(5, 5, 5)}},
		[][2]string{{"a", "b"}, {"b", "c"}}, noLock())
	e := newEngine(t, st, DefaultParams())
	for range 100 {
		e.Tick(0.05)
	}
	for i := range st.Len() {
		if !st.Pos[i].IsFinite() || !st.Vel[i].IsFinite() {
			t.Fatalf("node %d has non-finite state: pos=%v vel=%v", i, st.Pos[i], st.Vel[i])
		}
	}
}

func TestPinLocked(t *testing.T) {
	nodes := []nodeSpec{{"hub", geom.Zero}, {"x", geom.V(3, 0, 0)}, {"y", geom.V(0, 3, 0)}}
	edges := [][2]string{{"hub", "x"}, {"hub", "y"}}

	st := newState(t, nodes, edges, layout.DefaultOptions())
	e := newEngine(t, st, DefaultParams())
	for range 50 {
		e.Tick(0.1)
	}
	if st.Pos[0] != geom.Zero || st.Vel[0] != geom.Zero {
		t.Errorf("pinned hub moved: pos=%v vel=%v", st.Pos[0], st.Vel[0])
	}
	if st.Pos[1] == geom.V(3, 0, 0) {
		t.Error("unlocked node did not move")
	}

	st = newState(t, nodes, edges, layout.DefaultOptions())
	p := DefaultParams()
	p.PinLocked = false
	e = newEngine(t, st, p)
	for range 50 {
		e.Tick(0.1)
	}
	if st.Pos[0] == geom.Zero {
		t.Error("with PinLocked=false the locked hub should move")
	}
}

func TestTickOrderIndependent(t *testing.T) {
	build := func(ranks []int) (*network.Graph, *layout.State) {
		g := network.New()
		for i, id := range []string{"a", "b", "c", "d"} {
			_, _ = g.AddNode(network.NodeData{ID: id}, geom.V(float64(i), float64(i*i)*0.3, -float64(i)))
		}
		_, _ = g.AddEdge("1", "a", "b")
		_, _ = g.AddEdge("2", "b", "c")
		_, _ = g.AddEdge("3", "a", "d")
		if err := g.Reorder(ranks); err != nil {
			t.Fatal(err)
		}
		st, err := layout.NewState(g, noLock())
		if err != nil {
			t.Fatal(err)
		}
		return g, st
	}
	_, s1 := build([]int{0, 1, 2, 3})
	_, s2 := build([]int{3, 1, 0, 2})
	e1 := newEngine(t, s1, DefaultParams())
	e2 := newEngine(t, s2, DefaultParams())
	for range 20 {
		e1.Tick(0.1)
		e2.Tick(0.1)
	}
	for i := range s1.Len() {
		j, _ := s2.IndexOf(s1.Node(i).ID)
		if geom.Distance(s1.Pos[i], s2.Pos[j]) > 1e-9 {
			t.Errorf("node %s: %v vs %v", s1.Node(i).ID, s1.Pos[i], s2.Pos[j])
		}
	}
}

func TestChainConverges(t *testing.T) {
	nodes := []nodeSpec{
		{"A", geom.V(0, 0, 0)},
		{"B", geom.V(1, 0.5, 0)},
		{"C", geom.V(2, 0, 0.5)},
		{"D", geom.V(3, 0.5, 0.5)},
	}
	edges := [][2]string{{"A", "B"}, {"B", "C"}, {"C", "D"}}
	st := newState(t, nodes, edges, layout.DefaultOptions())

	dist := func(a, b string) float64 {
		i, _ := st.IndexOf(a)
		j, _ := st.IndexOf(b)
		return geom.Distance(st.Pos[i], st.Pos[j])
	}
	far := [][2]string{{"A", "C"}, {"A", "D"}, {"B", "D"}}
	before := make([]float64, len(far))
	for k, pair := range far {
		before[k] = dist(pair[0], pair[1])
	}

	p := DefaultParams()
	p.ConnectionForce = 5
	p.RepulsionForce = 0.05
	p.DesiredDistance = 5
	e := newEngine(t, st, p)
	for range 5000 {
		e.Tick(0.1)
	}

	for _, pair := range edges {
		if d := dist(pair[0], pair[1]); !near(d, 5, 0.1) {
			t.Errorf("%s-%s distance = %v, want 5 ± 0.1", pair[0], pair[1], d)
		}
	}
	for k, pair := range far {
		if d := dist(pair[0], pair[1]); d <= before[k] {
			t.Errorf("%s-%s distance %v did not grow from %v", pair[0], pair[1], d, before[k])
		}
	}
	if s := e.Stats(); s.Ticks != 5000 || s.MeanEdgeError > 0.1 {
		t.Errorf("stats = %+v", s)
	}
}

func TestAdvancePause(t *testing.T) {
	st := newState(t, []nodeSpec{{"a", geom.Zero}, {"b", geom.V(4, 0, 0)}}, [][2]string{{"a", "b"}}, noLock())
	e := newEngine(t, st, DefaultParams())

	if !e.Advance(0.1) {
		t.Fatal("Advance should tick when running")
	}
	e.Pause()
	pos := st.Pos[0]
	if e.Advance(0.1) || e.Ticks() != 1 || st.Pos[0] != pos {
		t.Error("paused engine must not tick")
	}
	e.Resume()
	if !e.Advance(0.1) || e.Ticks() != 2 {
		t.Error("resumed engine should tick")
	}
}

func TestRunBatched(t *testing.T) {
	st := newState(t, []nodeSpec{{"a", geom.Zero}, {"b", geom.V(4, 0, 0)}}, [][2]string{{"a", "b"}}, noLock())
	e := newEngine(t, st, DefaultParams())

	var batches []int
	stats, err := e.RunBatched(context.Background(), Schedule{
		TicksPerBatch: 10,
		TickDuration:  0.05,
		MaxBatches:    3,
		OnBatch:       func(b int, _ Stats) { batches = append(batches, b) },
	})
	if err != nil {
		t.Fatal(err)
	}
	if stats.Ticks != 30 {
		t.Errorf("Ticks = %d, want 30", stats.Ticks)
	}
	if len(batches) != 3 || batches[2] != 2 {
		t.Errorf("batches = %v", batches)
	}
}

func TestRunBatchedConverges(t *testing.T) {
	st := newState(t, []nodeSpec{{"a", geom.Zero}, {"b", geom.V(4, 0, 0)}}, [][2]string{{"a", "b"}}, noLock())
	e := newEngine(t, st, DefaultParams())

	stats, err := e.RunBatched(context.Background(), Schedule{
		TicksPerBatch: 100,
		TickDuration:  0.1,
		Tolerance:     1e-3,
	})
	if err != nil {
		t.Fatal(err)
	}
	if !stats.Converged || stats.MaxSpeed >= 1e-3 {
		t.Errorf("stats = %+v, want converged", stats)
	}
}

func TestRunBatchedCancel(t *testing.T) {
	st := newState(t, []nodeSpec{{"a", geom.Zero}, {"b", geom.V(4, 0, 0)}}, [][2]string{{"a", "b"}}, noLock())
	e := newEngine(t, st, DefaultParams())

	ctx, cancel := context.WithCancel(context.Background())
	_, err := e.RunBatched(ctx, Schedule{
		TicksPerBatch: 1,
		TickDuration:  0.1,
		Interval:      time.Hour,
		MaxBatches:    10,
		OnBatch:       func(int, Stats) { cancel() },
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if e.Ticks() != 1 {
		t.Errorf("Ticks = %d, want 1", e.Ticks())
	}
}

func TestRunBatchedPaused(t *testing.T) {
	st := newState(t, []nodeSpec{{"a", geom.Zero}, {"b", geom.V(4, 0, 0)}}, [][2]string{{"a", "b"}}, noLock())
	e := newEngine(t, st, DefaultParams())
	e.Pause()

	stats, err := e.RunBatched(context.Background(), Schedule{TicksPerBatch: 5, TickDuration: 0.1, MaxBatches: 2})
	if err != nil {
		t.Fatal(err)
	}
	if stats.Ticks != 0 {
		t.Errorf("paused run applied %d ticks", stats.Ticks)
	}
}

func TestValidate(t *testing.T) {
	bad := []Params{
		{DesiredDistance: 0, Damping: 1},
		{DesiredDistance: 1, Damping: 0},
		{DesiredDistance: 1, Damping: 1.5},
		{DesiredDistance: 1, Damping: 1, ConnectionForce: -1},
		{DesiredDistance: math.NaN(), Damping: 1},
	}
	for _, p := range bad {
		if err := p.Validate(); err == nil {
			t.Errorf("Validate(%+v) = nil, want error", p)
		}
	}
	if err := DefaultParams().Validate(); err != nil {
		t.Errorf("defaults invalid: %v", err)
	}

	badSchedules := []Schedule{
		{TicksPerBatch: 0, TickDuration: 1, MaxBatches: 1},
		{TicksPerBatch: 1, TickDuration: 0, MaxBatches: 1},
		{TicksPerBatch: 1, TickDuration: 1},
	}
	for _, s := range badSchedules {
		if err := s.Validate(); err == nil {
			t.Errorf("Validate(%+v) = nil, want error", s)
		}
	}
}
