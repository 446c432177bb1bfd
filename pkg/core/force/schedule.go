package force

import (
	"context"
	"fmt"
	"time"
)

// Default schedule values.
const (
	DefaultTicksPerBatch = 100
	DefaultTickDuration  = 0.02
	DefaultInterval      = 500 * time.Millisecond

	pausePoll = 10 * time.Millisecond
)

// Schedule configures a batched run.
type Schedule struct {
	// TicksPerBatch is the number of ticks run back to back per batch.
	TicksPerBatch int

	// TickDuration is dt for every tick, in simulation seconds.
	TickDuration float64

	// Interval is the wall-clock wait between batches. Zero runs batches
	// back to back.
	Interval time.Duration

	// MaxBatches bounds the run. Zero runs until convergence or cancellation.
	MaxBatches int

	// Tolerance stops the run once the fastest node is slower than this
	// after a batch. Zero disables the check.
	Tolerance float64

	// OnBatch, if set, is called after every batch.
	OnBatch func(batch int, s Stats)
}

// DefaultSchedule returns 100 ticks of 0.02 per batch, 500ms apart.
func DefaultSchedule() Schedule {
	return Schedule{
		TicksPerBatch: DefaultTicksPerBatch,
		TickDuration:  DefaultTickDuration,
		Interval:      DefaultInterval,
	}
}

// Validate checks the schedule.
func (s Schedule) Validate() error {
	switch {
	case s.TicksPerBatch <= 0:
		return fmt.Errorf("ticks per batch must be positive, got %d", s.TicksPerBatch)
	case !(s.TickDuration > 0):
		return fmt.Errorf("tick duration must be positive, got %v", s.TickDuration)
	case s.Interval < 0 || s.MaxBatches < 0 || s.Tolerance < 0:
		return fmt.Errorf("interval, max batches and tolerance must not be negative")
	case s.MaxBatches == 0 && s.Tolerance == 0:
		return fmt.Errorf("schedule needs max batches or a tolerance to terminate")
	}
	return nil
}

// RunBatched relaxes the state in batches until MaxBatches is reached, the
// layout converges or ctx is done. A paused engine skips the remaining ticks
// of the current batch and keeps waiting between batches.
//
// On cancellation the state is consistent as of the last whole tick and
// ctx.Err() is returned alongside the statistics.
func (e *Engine) RunBatched(ctx context.Context, s Schedule) (Stats, error) {
	if err := s.Validate(); err != nil {
		return e.Stats(), err
	}
	for batch := 0; s.MaxBatches == 0 || batch < s.MaxBatches; batch++ {
		if err := ctx.Err(); err != nil {
			return e.Stats(), err
		}
		ran := 0
		for range s.TicksPerBatch {
			if !e.Advance(s.TickDuration) {
				break
			}
			ran++
		}

		stats := e.Stats()
		if s.OnBatch != nil {
			s.OnBatch(batch, stats)
		}
		if ran > 0 && s.Tolerance > 0 && stats.MaxSpeed < s.Tolerance {
			stats.Converged = true
			return stats, nil
		}

		wait := s.Interval
		if ran == 0 && wait == 0 {
			wait = pausePoll
		}
		last := s.MaxBatches > 0 && batch == s.MaxBatches-1
		if wait > 0 && !last {
			select {
			case <-ctx.Done():
				return e.Stats(), ctx.Err()
			case <-time.After(wait):
			}
		}
	}
	return e.Stats(), nil
}
