package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/netforce/pkg/core/force"
	"github.com/matzehuels/netforce/pkg/graph"
	"github.com/matzehuels/netforce/pkg/pipeline"
	"github.com/matzehuels/netforce/pkg/store"
)

// maxPrintedWarnings bounds the warning lines printed after a run.
const maxPrintedWarnings = 5

// relaxCommand creates the relax command, the full batched pipeline.
func (c *CLI) relaxCommand() *cobra.Command {
	var (
		output   string
		flags    optionFlags
		backends backendFlags
	)

	cmd := &cobra.Command{
		Use:   "relax [graph.xml]",
		Short: "Lay out a network and write the relaxed snapshot",
		Long: `Lay out a network and write the relaxed snapshot.

The relax command parses the XML network, locks the highest-degree nodes,
runs the force simulation in batches and writes the layout snapshot: edge
endpoint positions, the position to scale table and the locked positions.

Results are cached locally for faster subsequent runs. Pass --store to also
save the snapshot in the snapshot store used by 'netforce serve'.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, cfg, err := flags.resolve(cmd)
			if err != nil {
				return err
			}
			backends.apply(cfg)
			return c.runRelax(cmd.Context(), args[0], opts, cfg, backends.store != "", output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	flags.register(cmd, true)
	backends.register(cmd, "also save the snapshot: file or mongo")

	return cmd
}

// runRelax executes the pipeline for input and writes the snapshot.
func (c *CLI) runRelax(ctx context.Context, input string, opts pipeline.Options, cfg *pipeline.Config, save bool, output string) error {
	src, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("read %s: %w", input, err)
	}

	runner, err := c.newRunner(ctx, cfg.Cache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Logger = loggerFromContext(ctx)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}
	sched := opts.Schedule()
	total := sched.MaxBatches * sched.TicksPerBatch

	prog := newProgress(opts.Logger)
	spinner := newSpinnerWithContext(ctx, "Relaxing layout...")
	opts.Progress = func(_ int, s force.Stats) {
		spinner.SetMessage("Relaxing layout... %d/%d ticks", s.Ticks, total)
	}
	spinner.Start()

	result, err := runner.Execute(ctx, src, opts)
	if err != nil {
		spinner.StopWithError("Relaxation failed")
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	outputPath := output
	if outputPath == "" {
		outputPath = defaultOutput(input)
	}
	if err := graph.WriteSnapshotFile(result.Snapshot, outputPath); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}
	prog.done(fmt.Sprintf("Relaxed %d nodes", len(result.Snapshot.Nodes)))

	printSuccess("Layout relaxed")
	printFile(outputPath)
	printStats(layoutStats{
		nodes:     result.Stats.NodeCount,
		edges:     len(result.Snapshot.EdgeStart),
		ticks:     result.Stats.Relax.Ticks,
		converged: result.Stats.Relax.Converged,
		cached:    result.CacheInfo.LayoutHit,
	})
	printWarnings(result)

	if save {
		id, err := saveSnapshot(ctx, cfg.Store, result.Snapshot)
		if err != nil {
			return err
		}
		printKeyValue("Snapshot", id)
	}

	printNewline()
	printNextStep("Watch it move", appName+" watch "+input)
	return nil
}

func printWarnings(result *pipeline.Result) {
	for i, w := range result.Warnings {
		if i == maxPrintedWarnings {
			printDetail("... %d more", len(result.Warnings)-maxPrintedWarnings)
			break
		}
		printWarning("%s", w.String())
	}
}

// saveSnapshot stores a copy of snap under a fresh ID and returns the ID.
func saveSnapshot(ctx context.Context, cfg pipeline.StoreConfig, snap *graph.Snapshot) (string, error) {
	st, err := openStore(ctx, cfg)
	if err != nil {
		return "", fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	rec := store.NewRecord(snap)
	if err := st.Put(ctx, rec); err != nil {
		return "", fmt.Errorf("save snapshot: %w", err)
	}
	return rec.ID, nil
}
