// Package pipeline provides the core relaxation pipeline for netforce.
//
// This package implements the complete parse → prepare → relax → export
// pipeline used by the CLI and the HTTP API, so both entry points apply the
// same defaults and the same caching.
//
// # Architecture
//
// The pipeline consists of four stages:
//
//  1. Parse: Read the XML source and select one graph section
//  2. Prepare: Apply an alternate node order and build the layout state
//  3. Relax: Run the force engine in batches
//  4. Export: Convert the relaxed state into a snapshot
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{Ticks: 2000, DesiredDistance: 5}
//	result, err := runner.Execute(ctx, src, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	_ = graph.WriteSnapshotFile(result.Snapshot, "out.layout.json")
//
// Run individual stages:
//
//	g, warnings, err := runner.Parse(ctx, src, opts)
//	st, err := runner.Prepare(g, opts)
//	stats, err := runner.Relax(ctx, st, opts)
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/netforce/pkg/cache"
	"github.com/matzehuels/netforce/pkg/core/force"
	"github.com/matzehuels/netforce/pkg/core/layout"
	"github.com/matzehuels/netforce/pkg/core/network"
	"github.com/matzehuels/netforce/pkg/errors"
	"github.com/matzehuels/netforce/pkg/graph"
	pkgio "github.com/matzehuels/netforce/pkg/io"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultSeed is the default random seed for reproducible seed positions.
	DefaultSeed = uint64(42)

	// DefaultTicks is the total number of ticks of a pipeline run.
	DefaultTicks = 2000

	// DefaultDesiredDistance is the rest length used by the pipeline. It is
	// larger than the engine's unit default so relaxed layouts fill the spawn
	// cube instead of collapsing into it.
	DefaultDesiredDistance = 5.0
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the relaxation pipeline.
// This struct supports JSON serialization for API requests and TOML decoding
// through [Config].
//
// A zero numeric field means "use the default" and is replaced by the
// Set*Defaults methods, so seed 0 or zero ticks cannot be requested.
// LockedNodes is a pointer because zero locked nodes is a meaningful layout.
type Options struct {
	// Parse options
	GraphIndex int     `json:"graph_index,omitempty"` // which graph section of the source to use
	Seed       uint64  `json:"seed,omitempty"`
	SpawnRange float64 `json:"spawn_range,omitempty"`
	Order      []int   `json:"order,omitempty"` // alternate node order as parse ranks

	// Layout options
	MaxNodes    int     `json:"max_nodes,omitempty"`
	LockedNodes *int    `json:"locked_nodes,omitempty"` // nil means layout.DefaultLockedNodes
	MaxDegree   int     `json:"max_degree,omitempty"`
	BaseScale   float64 `json:"base_scale,omitempty"`
	MinNodeSize float64 `json:"min_node_size,omitempty"`
	Placement   string  `json:"placement,omitempty"`

	// Force options
	ConnectionForce float64 `json:"connection_force,omitempty"`
	RepulsionForce  float64 `json:"repulsion_force,omitempty"`
	DesiredDistance float64 `json:"desired_distance,omitempty"`
	Damping         float64 `json:"damping,omitempty"`
	FreeLocked      bool    `json:"free_locked,omitempty"` // let locked nodes move

	// Schedule options
	Ticks         int           `json:"ticks,omitempty"`
	TicksPerBatch int           `json:"ticks_per_batch,omitempty"`
	TickDuration  float64       `json:"tick_duration,omitempty"`
	BatchInterval time.Duration `json:"batch_interval,omitempty"`
	Tolerance     float64       `json:"tolerance,omitempty"`

	// Refresh skips the cache lookup but still stores the fresh result.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// Progress, if set, is called after every relaxation batch.
	Progress func(batch int, s force.Stats) `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Graph is the parsed network. It is nil when the layout came from cache.
	Graph *network.Graph

	// SourceHash is the SHA-256 of the raw source.
	SourceHash string

	// Snapshot is the exported layout.
	Snapshot *graph.Snapshot

	// Warnings lists the recoverable problems found while parsing.
	Warnings []pkgio.Warning

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount int
	EdgeCount int
	ParseTime time.Duration
	RelaxTime time.Duration
	Relax     force.Stats
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool // Whether the snapshot came from cache
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults applies defaults for every stage and validates the
// result. This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	o.SetLoadDefaults()
	o.SetLayoutDefaults()
	o.SetForceDefaults()
	o.SetScheduleDefaults()

	if o.GraphIndex < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "graph index must not be negative, got %d", o.GraphIndex)
	}
	if err := o.LayoutOptions().Validate(); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "layout options")
	}
	if err := o.ForceParams().Validate(); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "force options")
	}
	if err := o.Schedule().Validate(); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "schedule options")
	}
	if o.Ticks < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "ticks must not be negative, got %d", o.Ticks)
	}
	o.validated = true
	return nil
}

// SetLoadDefaults sets default values for parsing.
func (o *Options) SetLoadDefaults() {
	if o.Seed == 0 {
		o.Seed = DefaultSeed
	}
	if o.SpawnRange == 0 {
		o.SpawnRange = pkgio.DefaultSpawnRange
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// SetLayoutDefaults sets default values for building the layout state.
func (o *Options) SetLayoutDefaults() {
	if o.LockedNodes == nil {
		n := layout.DefaultLockedNodes
		o.LockedNodes = &n
	}
	if o.BaseScale == 0 {
		o.BaseScale = layout.DefaultBaseScale
	}
	if o.MinNodeSize == 0 {
		o.MinNodeSize = layout.DefaultMinNodeSize
	}
	if o.Placement == "" {
		o.Placement = string(layout.PlacementRandom)
	}
}

// SetForceDefaults sets default values for the force constants.
func (o *Options) SetForceDefaults() {
	if o.ConnectionForce == 0 {
		o.ConnectionForce = force.DefaultConnectionForce
	}
	if o.RepulsionForce == 0 {
		o.RepulsionForce = force.DefaultRepulsionForce
	}
	if o.DesiredDistance == 0 {
		o.DesiredDistance = DefaultDesiredDistance
	}
	if o.Damping == 0 {
		o.Damping = force.DefaultDamping
	}
}

// SetScheduleDefaults sets default values for the batched run. The batch
// interval defaults to zero: pipeline runs are not animated.
func (o *Options) SetScheduleDefaults() {
	if o.Ticks == 0 {
		o.Ticks = DefaultTicks
	}
	if o.TicksPerBatch == 0 {
		o.TicksPerBatch = force.DefaultTicksPerBatch
	}
	if o.TickDuration == 0 {
		o.TickDuration = force.DefaultTickDuration
	}
}

// Locked returns the number of locked nodes after defaults.
func (o *Options) Locked() int {
	if o.LockedNodes == nil {
		return layout.DefaultLockedNodes
	}
	return *o.LockedNodes
}

// LoadOptions returns the XML loader options.
func (o *Options) LoadOptions() pkgio.LoadOptions {
	return pkgio.LoadOptions{
		Seed:       o.Seed,
		SpawnRange: o.SpawnRange,
		Logger:     o.Logger,
	}
}

// LayoutOptions returns the layout state options.
func (o *Options) LayoutOptions() layout.Options {
	return layout.Options{
		MaxNodes:    o.MaxNodes,
		LockedNodes: o.Locked(),
		MaxDegree:   o.MaxDegree,
		BaseScale:   o.BaseScale,
		MinNodeSize: o.MinNodeSize,
		Placement:   layout.Placement(o.Placement),
	}
}

// ForceParams returns the engine constants.
func (o *Options) ForceParams() force.Params {
	return force.Params{
		ConnectionForce: o.ConnectionForce,
		RepulsionForce:  o.RepulsionForce,
		DesiredDistance: o.DesiredDistance,
		Damping:         o.Damping,
		MinDistance:     force.DefaultMinDistance,
		PinLocked:       !o.FreeLocked,
	}
}

// Schedule returns the batched run schedule. Ticks is rounded up to whole
// batches; a run shorter than one batch becomes a single smaller batch.
func (o *Options) Schedule() force.Schedule {
	per := o.TicksPerBatch
	if o.Ticks > 0 && o.Ticks < per {
		per = o.Ticks
	}
	batches := 0
	if per > 0 {
		batches = (o.Ticks + per - 1) / per
	}
	return force.Schedule{
		TicksPerBatch: per,
		TickDuration:  o.TickDuration,
		Interval:      o.BatchInterval,
		MaxBatches:    batches,
		Tolerance:     o.Tolerance,
	}
}

// LayoutKeyOpts returns cache key options for the relaxed layout.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	s := o.Schedule()
	return cache.LayoutKeyOpts{
		GraphIndex:      o.GraphIndex,
		Seed:            o.Seed,
		SpawnRange:      o.SpawnRange,
		Order:           o.Order,
		MaxNodes:        o.MaxNodes,
		LockedNodes:     o.Locked(),
		MaxDegree:       o.MaxDegree,
		BaseScale:       o.BaseScale,
		MinNodeSize:     o.MinNodeSize,
		Placement:       o.Placement,
		ConnectionForce: o.ConnectionForce,
		RepulsionForce:  o.RepulsionForce,
		DesiredDistance: o.DesiredDistance,
		Damping:         o.Damping,
		PinLocked:       !o.FreeLocked,
		Ticks:           s.MaxBatches * s.TicksPerBatch,
		TicksPerBatch:   s.TicksPerBatch,
		TickDuration:    o.TickDuration,
		Tolerance:       o.Tolerance,
	}
}

// String summarizes the options that shape the layout, for logging.
func (o *Options) String() string {
	return fmt.Sprintf("graph=%d seed=%d placement=%s locked=%d ticks=%d dt=%g C=%g K=%g D=%g",
		o.GraphIndex, o.Seed, o.Placement, o.Locked(), o.Ticks, o.TickDuration,
		o.ConnectionForce, o.RepulsionForce, o.DesiredDistance)
}
