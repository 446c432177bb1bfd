package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/netforce/pkg/cache"
	"github.com/matzehuels/netforce/pkg/core/force"
	"github.com/matzehuels/netforce/pkg/core/layout"
	"github.com/matzehuels/netforce/pkg/core/network"
	"github.com/matzehuels/netforce/pkg/errors"
	"github.com/matzehuels/netforce/pkg/graph"
	pkgio "github.com/matzehuels/netforce/pkg/io"
	"github.com/matzehuels/netforce/pkg/observability"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can safely use the same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// cachedLayout is the cache payload of a relaxed layout.
type cachedLayout struct {
	Snapshot *graph.Snapshot `json:"snapshot"`
	Warnings []pkgio.Warning `json:"warnings,omitempty"`
	Nodes    int             `json:"nodes"`
	Edges    int             `json:"edges"`
}

// Execute runs the complete parse → prepare → relax → export pipeline with
// caching. The cache key covers the source bytes and every option that
// changes the result.
func (r *Runner) Execute(ctx context.Context, src []byte, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{SourceHash: cache.Hash(src)}
	cacheKey := r.Keyer.LayoutKey(result.SourceHash, opts.LayoutKeyOpts())

	if !opts.Refresh {
		if hit, ok := r.lookup(ctx, cacheKey); ok {
			result.Snapshot = hit.Snapshot
			result.Warnings = hit.Warnings
			result.Stats.NodeCount = hit.Nodes
			result.Stats.EdgeCount = hit.Edges
			if hit.Snapshot.Stats != nil {
				result.Stats.Relax = *hit.Snapshot.Stats
			}
			result.CacheInfo.LayoutHit = true
			r.Logger.Debug("layout cache hit", "key", cacheKey)
			return result, nil
		}
	}

	// Stage 1: Parse
	parseStart := time.Now()
	g, warnings, err := r.Parse(ctx, src, opts)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	result.Graph = g
	result.Warnings = warnings
	result.Stats.ParseTime = time.Since(parseStart)
	result.Stats.NodeCount = g.NodeCount()
	result.Stats.EdgeCount = g.EdgeCount()

	r.Logger.Info("parsed network",
		"nodes", g.NodeCount(),
		"edges", g.EdgeCount(),
		"warnings", len(warnings),
		"duration", result.Stats.ParseTime)

	// Stage 2: Prepare
	st, err := r.Prepare(g, opts)
	if err != nil {
		return nil, fmt.Errorf("prepare: %w", err)
	}

	// Stage 3: Relax
	relaxStart := time.Now()
	stats, err := r.Relax(ctx, st, opts)
	if err != nil {
		return nil, fmt.Errorf("relax: %w", err)
	}
	result.Stats.Relax = stats
	result.Stats.RelaxTime = time.Since(relaxStart)

	r.Logger.Info("relaxed layout",
		"ticks", stats.Ticks,
		"converged", stats.Converged,
		"edge_error", fmt.Sprintf("%.4f", stats.MeanEdgeError),
		"duration", result.Stats.RelaxTime)

	// Stage 4: Export
	result.Snapshot = r.Export(ctx, st, stats)
	result.Snapshot.SourceKey = result.SourceHash

	if data, err := json.Marshal(cachedLayout{
		Snapshot: result.Snapshot,
		Warnings: warnings,
		Nodes:    result.Stats.NodeCount,
		Edges:    result.Stats.EdgeCount,
	}); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, cache.LayoutTTL); err != nil {
			r.Logger.Warn("cache write failed", "error", err)
		}
	}
	return result, nil
}

func (r *Runner) lookup(ctx context.Context, key string) (cachedLayout, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "error", err)
		return cachedLayout{}, false
	}
	if !hit {
		return cachedLayout{}, false
	}
	var c cachedLayout
	if err := json.Unmarshal(data, &c); err != nil || c.Snapshot == nil || c.Snapshot.Validate() != nil {
		// Unreadable entry: fall through to recompute.
		return cachedLayout{}, false
	}
	return c, true
}

// Parse reads the XML source and returns the graph selected by
// opts.GraphIndex together with all loader warnings.
func (r *Runner) Parse(ctx context.Context, src []byte, opts Options) (g *network.Graph, warnings []pkgio.Warning, err error) {
	r.applyLogger(&opts)
	opts.SetLoadDefaults()

	start := time.Now()
	defer func() {
		nodes, edges := 0, 0
		if g != nil {
			nodes, edges = g.NodeCount(), g.EdgeCount()
		}
		observability.Relax().OnParseComplete(ctx, nodes, edges, len(warnings), time.Since(start), err)
	}()

	res, err := pkgio.ReadXML(bytes.NewReader(src), opts.LoadOptions())
	if err != nil {
		return nil, nil, err
	}
	if opts.GraphIndex < 0 || opts.GraphIndex >= len(res.Graphs) {
		return nil, nil, errors.New(errors.ErrCodeInvalidInput,
			"graph index %d out of range: source has %d graph(s)", opts.GraphIndex, len(res.Graphs))
	}
	return res.Graphs[opts.GraphIndex], res.Warnings, nil
}

// Prepare applies the alternate node order, if any, and builds the layout
// state. A bad order is a RANK_LOOKUP error and leaves g unchanged.
func (r *Runner) Prepare(g *network.Graph, opts Options) (*layout.State, error) {
	opts.SetLayoutDefaults()
	if len(opts.Order) > 0 {
		if err := pkgio.ApplyOrder(g, opts.Order); err != nil {
			return nil, err
		}
		r.Logger.Debug("applied alternate order", "nodes", len(opts.Order))
	}
	st, err := layout.NewState(g, opts.LayoutOptions())
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "build layout state")
	}
	r.Logger.Debug("prepared layout state",
		"participating", st.Len(),
		"edges", len(st.Edges()),
		"locked", len(st.Locked()))
	return st, nil
}

// Relax runs the batched schedule described by opts on st.
func (r *Runner) Relax(ctx context.Context, st *layout.State, opts Options) (stats force.Stats, err error) {
	r.applyLogger(&opts)
	opts.SetForceDefaults()
	opts.SetScheduleDefaults()

	engine, err := force.New(st, opts.ForceParams())
	if err != nil {
		return force.Stats{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "force options")
	}

	hooks := observability.Relax()
	hooks.OnRelaxStart(ctx, st.Len(), len(st.Edges()))
	start := time.Now()
	defer func() {
		hooks.OnRelaxComplete(ctx, stats.Ticks, time.Since(start), err)
	}()

	sched := opts.Schedule()
	sched.OnBatch = func(batch int, s force.Stats) {
		hooks.OnBatch(ctx, batch, s.MaxSpeed)
		opts.Logger.Debug("batch complete", "batch", batch, "ticks", s.Ticks, "max_speed", s.MaxSpeed)
		if opts.Progress != nil {
			opts.Progress(batch, s)
		}
	}
	return engine.RunBatched(ctx, sched)
}

// Export converts st into a snapshot carrying stats.
func (r *Runner) Export(ctx context.Context, st *layout.State, stats force.Stats) *graph.Snapshot {
	snap := graph.Export(st)
	snap.Stats = &stats
	observability.Relax().OnExport(ctx, len(snap.EdgeStart), len(snap.Locked))
	return snap
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
