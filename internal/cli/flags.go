package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/matzehuels/netforce/pkg/core/force"
	"github.com/matzehuels/netforce/pkg/core/layout"
	pkgio "github.com/matzehuels/netforce/pkg/io"
	"github.com/matzehuels/netforce/pkg/pipeline"
)

// optionFlags binds pipeline options to command flags. Only flags the user
// sets override the config file.
type optionFlags struct {
	opts   pipeline.Options
	locked int
	order  string
	config string
}

// optionOverlays copies one flag's value from the bound options onto the
// resolved ones, keyed by flag name.
var optionOverlays = map[string]func(dst, src *pipeline.Options){
	"graph":            func(d, s *pipeline.Options) { d.GraphIndex = s.GraphIndex },
	"seed":             func(d, s *pipeline.Options) { d.Seed = s.Seed },
	"spawn-range":      func(d, s *pipeline.Options) { d.SpawnRange = s.SpawnRange },
	"max-nodes":        func(d, s *pipeline.Options) { d.MaxNodes = s.MaxNodes },
	"max-degree":       func(d, s *pipeline.Options) { d.MaxDegree = s.MaxDegree },
	"base-scale":       func(d, s *pipeline.Options) { d.BaseScale = s.BaseScale },
	"min-node-size":    func(d, s *pipeline.Options) { d.MinNodeSize = s.MinNodeSize },
	"placement":        func(d, s *pipeline.Options) { d.Placement = s.Placement },
	"connection-force": func(d, s *pipeline.Options) { d.ConnectionForce = s.ConnectionForce },
	"repulsion-force":  func(d, s *pipeline.Options) { d.RepulsionForce = s.RepulsionForce },
	"desired-distance": func(d, s *pipeline.Options) { d.DesiredDistance = s.DesiredDistance },
	"damping":          func(d, s *pipeline.Options) { d.Damping = s.Damping },
	"free-locked":      func(d, s *pipeline.Options) { d.FreeLocked = s.FreeLocked },
	"ticks":            func(d, s *pipeline.Options) { d.Ticks = s.Ticks },
	"ticks-per-batch":  func(d, s *pipeline.Options) { d.TicksPerBatch = s.TicksPerBatch },
	"dt":               func(d, s *pipeline.Options) { d.TickDuration = s.TickDuration },
	"interval":         func(d, s *pipeline.Options) { d.BatchInterval = s.BatchInterval },
	"tolerance":        func(d, s *pipeline.Options) { d.Tolerance = s.Tolerance },
	"refresh":          func(d, s *pipeline.Options) { d.Refresh = s.Refresh },
}

// register adds the option flags to cmd. Schedule flags other than --dt are
// only added when batched is set.
func (f *optionFlags) register(cmd *cobra.Command, batched bool) {
	fs := cmd.Flags()
	o := &f.opts

	fs.StringVarP(&f.config, "config", "c", "", "TOML config file; flags override its values")
	fs.StringVar(&f.order, "order", "", "JSON file with an alternate node order (parse ranks)")

	// Parse flags
	fs.IntVarP(&o.GraphIndex, "graph", "g", 0, "index of the graph section to lay out")
	fs.Uint64Var(&o.Seed, "seed", pipeline.DefaultSeed, "random seed for the spawn positions")
	fs.Float64Var(&o.SpawnRange, "spawn-range", pkgio.DefaultSpawnRange, "half-width of the spawn cube")

	// Layout flags
	fs.IntVar(&o.MaxNodes, "max-nodes", 0, "lay out only the first N nodes (0 = all)")
	fs.IntVarP(&f.locked, "locked", "l", layout.DefaultLockedNodes, "number of highest-degree nodes to lock")
	fs.IntVar(&o.MaxDegree, "max-degree", 0, "degree that maps to full size (0 = graph maximum)")
	fs.Float64Var(&o.BaseScale, "base-scale", layout.DefaultBaseScale, "node scale of a maximum-degree node")
	fs.Float64Var(&o.MinNodeSize, "min-node-size", layout.DefaultMinNodeSize, "scale added to every node")
	fs.StringVar(&o.Placement, "placement", string(layout.PlacementRandom), "seed placement: random, ring, cone")

	// Force flags
	fs.Float64Var(&o.ConnectionForce, "connection-force", force.DefaultConnectionForce, "spring constant between connected nodes")
	fs.Float64Var(&o.RepulsionForce, "repulsion-force", force.DefaultRepulsionForce, "repulsion constant between disconnected nodes")
	fs.Float64Var(&o.DesiredDistance, "desired-distance", pipeline.DefaultDesiredDistance, "rest length of a connection")
	fs.Float64Var(&o.Damping, "damping", force.DefaultDamping, "velocity kept per tick, in (0, 1]")
	fs.BoolVar(&o.FreeLocked, "free-locked", false, "let locked nodes move")

	fs.Float64Var(&o.TickDuration, "dt", force.DefaultTickDuration, "simulation time per tick")
	if !batched {
		return
	}

	// Schedule flags
	fs.IntVarP(&o.Ticks, "ticks", "n", pipeline.DefaultTicks, "total number of ticks")
	fs.IntVar(&o.TicksPerBatch, "ticks-per-batch", force.DefaultTicksPerBatch, "ticks run back to back per batch")
	fs.DurationVar(&o.BatchInterval, "interval", 0, "wall-clock pause between batches")
	fs.Float64Var(&o.Tolerance, "tolerance", 0, "stop once the fastest node is slower than this (0 = never)")
	fs.BoolVar(&o.Refresh, "refresh", false, "recompute even when the layout is cached")
}

// resolve loads the config file, if any, and overlays the flags the user set.
// The alternate order is read from --order or the config's order_file.
func (f *optionFlags) resolve(cmd *cobra.Command) (pipeline.Options, *pipeline.Config, error) {
	cfg, err := loadConfig(f.config)
	if err != nil {
		return pipeline.Options{}, nil, err
	}
	opts := cfg.Options()
	cmd.Flags().Visit(func(fl *pflag.Flag) {
		if overlay, ok := optionOverlays[fl.Name]; ok {
			overlay(&opts, &f.opts)
		}
	})
	if cmd.Flags().Changed("locked") {
		n := f.locked
		opts.LockedNodes = &n
	}

	orderFile := cfg.Graph.OrderFile
	if f.order != "" {
		orderFile = f.order
	}
	if orderFile != "" {
		ranks, err := pkgio.ImportOrder(orderFile)
		if err != nil {
			return pipeline.Options{}, nil, err
		}
		opts.Order = ranks
	}
	return opts, cfg, nil
}
