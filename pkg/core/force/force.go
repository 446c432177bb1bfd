package force

import (
	"fmt"
	"math"
	"sync/atomic"

	"github.com/matzehuels/netforce/pkg/core/geom"
	"github.com/matzehuels/netforce/pkg/core/layout"
)

// Default parameter values.
const (
	DefaultConnectionForce = 1.0
	DefaultRepulsionForce  = 1.0
	DefaultDesiredDistance = 1.0
	DefaultDamping         = 0.9
	DefaultMinDistance     = 1e-9
)

// Params holds the force constants.
type Params struct {
	ConnectionForce float64 // C, scales the logarithmic spring
	RepulsionForce  float64 // K, scales the inverse-square repulsion
	DesiredDistance float64 // D, rest length of a connection
	Damping         float64 // velocity retained per tick, in (0, 1]
	MinDistance     float64 // connected pairs closer than this contribute nothing
	PinLocked       bool    // locked nodes never move
}

// DefaultParams returns unit constants, 0.9 damping and pinned locked nodes.
func DefaultParams() Params {
	return Params{
		ConnectionForce: DefaultConnectionForce,
		RepulsionForce:  DefaultRepulsionForce,
		DesiredDistance: DefaultDesiredDistance,
		Damping:         DefaultDamping,
		MinDistance:     DefaultMinDistance,
		PinLocked:       true,
	}
}

// Validate checks that the constants describe a usable model.
func (p Params) Validate() error {
	switch {
	case !(p.DesiredDistance > 0) || math.IsInf(p.DesiredDistance, 0):
		return fmt.Errorf("desired distance must be positive and finite, got %v", p.DesiredDistance)
	case !(p.Damping > 0 && p.Damping <= 1):
		return fmt.Errorf("damping must be in (0, 1], got %v", p.Damping)
	case p.ConnectionForce < 0 || p.RepulsionForce < 0:
		return fmt.Errorf("force constants must not be negative")
	case p.MinDistance < 0:
		return fmt.Errorf("min distance must not be negative, got %v", p.MinDistance)
	}
	return nil
}

// ConnectedMagnitude returns C · log10(d / D). Positive values attract.
func ConnectedMagnitude(d, c, desired float64) float64 {
	return c * math.Log10(d/desired)
}

// RepulsionMagnitude returns K / d², or 0 when d is 0.
func RepulsionMagnitude(d, k float64) float64 {
	if d == 0 {
		return 0
	}
	return k / (d * d)
}

// Engine advances a layout state tick by tick.
type Engine struct {
	state  *layout.State
	params Params
	paused atomic.Bool
	ticks  atomic.Int64
	delta  []geom.Vec3
}

// New creates an engine for st. The engine takes ownership of st.
func New(st *layout.State, p Params) (*Engine, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{
		state:  st,
		params: p,
		delta:  make([]geom.Vec3, st.Len()),
	}
	if p.PinLocked {
		for _, i := range st.Locked() {
			st.Vel[i] = geom.Zero
		}
	}
	return e, nil
}

// State returns the state owned by the engine.
func (e *Engine) State() *layout.State { return e.state }

// Params returns the engine's constants.
func (e *Engine) Params() Params { return e.params }

// Pause stops ticking until Resume is called. Safe for concurrent use.
func (e *Engine) Pause() { e.paused.Store(true) }

// Resume undoes Pause. Safe for concurrent use.
func (e *Engine) Resume() { e.paused.Store(false) }

// Paused reports whether the engine is paused. Safe for concurrent use.
func (e *Engine) Paused() bool { return e.paused.Load() }

// Ticks returns the number of ticks applied so far. Safe for concurrent use.
func (e *Engine) Ticks() int { return int(e.ticks.Load()) }

// Advance applies one tick of duration dt unless the engine is paused.
// It reports whether a tick was applied.
func (e *Engine) Advance(dt float64) bool {
	if e.Paused() {
		return false
	}
	e.Tick(dt)
	return true
}

// Tick applies the force law to every node, then integrates positions.
// Tick ignores the pause flag.
func (e *Engine) Tick(dt float64) {
	st := e.state
	p := e.params

	for i := range st.Len() {
		if e.pinned(i) {
			e.delta[i] = geom.Zero
			continue
		}
		var dv geom.Vec3
		self := st.Pos[i]
		for _, j := range st.Connected(i) {
			diff := self.Sub(st.Pos[j])
			d := diff.Len()
			if d < p.MinDistance || d == 0 {
				continue
			}
			term := diff.Normalize().Scale(ConnectedMagnitude(d, p.ConnectionForce, p.DesiredDistance) * dt)
			if term.IsFinite() {
				dv = dv.Sub(term)
			}
		}
		for _, j := range st.Disconnected(i) {
			diff := self.Sub(st.Pos[j])
			d := diff.Len()
			if d == 0 {
				continue
			}
			term := diff.Normalize().Scale(RepulsionMagnitude(d, p.RepulsionForce) * dt)
			if term.IsFinite() {
				dv = dv.Add(term)
			}
		}
		e.delta[i] = dv
	}

	for i := range st.Len() {
		if e.pinned(i) {
			st.Vel[i] = geom.Zero
			continue
		}
		v := st.Vel[i].Add(e.delta[i]).Scale(p.Damping)
		next := st.Pos[i].Add(v.Scale(dt))
		if !next.IsFinite() {
			v = geom.Zero
			next = st.Pos[i]
		}
		st.Vel[i] = v
		st.Pos[i] = next
	}
	e.ticks.Add(1)
}

func (e *Engine) pinned(i int) bool {
	return e.params.PinLocked && e.state.IsLocked(i)
}

// Stats summarizes the current state of a relaxation.
type Stats struct {
	Ticks           int     `json:"ticks"`
	MaxSpeed        float64 `json:"max_speed"`
	MeanEdgeError   float64 `json:"mean_edge_error"`
	TotalEdgeLength float64 `json:"total_edge_length"`
	Converged       bool    `json:"converged"`
}

// Stats computes statistics for the current state. MeanEdgeError is the mean
// of |d - D| over participating edges, self-loops excluded.
func (e *Engine) Stats() Stats {
	st := e.state
	s := Stats{Ticks: e.Ticks(), TotalEdgeLength: st.TotalEdgeLength()}
	for _, v := range st.Vel {
		s.MaxSpeed = max(s.MaxSpeed, v.Len())
	}
	var sum float64
	var n int
	for _, edge := range st.Edges() {
		if edge[0] == edge[1] {
			continue
		}
		sum += math.Abs(geom.Distance(st.Pos[edge[0]], st.Pos[edge[1]]) - e.params.DesiredDistance)
		n++
	}
	if n > 0 {
		s.MeanEdgeError = sum / float64(n)
	}
	return s
}
