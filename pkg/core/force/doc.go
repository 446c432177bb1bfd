// Package force relaxes a [layout.State] with a spring and repulsion model.
//
// # Force Law
//
// For every node i and each connected peer j at distance d:
//
//	v_i -= C · log10(d / D) · dt · unit(p_i - p_j)
//
// where C is [Params.ConnectionForce] and D is [Params.DesiredDistance]. The
// term attracts when d > D, repels when d < D and vanishes at d == D.
//
// For each disconnected peer at distance d > 0:
//
//	v_i += K / d² · dt · unit(p_i - p_j)
//
// with K = [Params.RepulsionForce]. Degenerate pairs contribute nothing: a
// connected pair closer than [Params.MinDistance], a disconnected pair at
// exactly zero distance, and any term that is not finite. The engine never
// fails on bad geometry.
//
// # Ticks
//
// [Engine.Tick] computes every velocity update from the positions at the
// start of the tick, so the result does not depend on node order. Velocities
// are then multiplied by [Params.Damping] and positions advance by v·dt.
// With [Params.PinLocked] the locked nodes of the state keep zero velocity
// and never move.
//
// # Scheduling
//
// Two cadences drive the same tick:
//
//   - Continuous: the host calls [Engine.Advance] once per frame.
//   - Batched: [Engine.RunBatched] runs [Schedule.TicksPerBatch] ticks back
//     to back, then waits [Schedule.Interval] before the next batch.
//
// [Engine.Pause] and [Engine.Resume] take effect at tick granularity in both
// modes.
//
// An Engine exclusively owns its state. Use one engine per graph; engines
// share nothing and may run in separate goroutines.
//
// [layout.State]: github.com/matzehuels/netforce/pkg/core/layout.State
package force
