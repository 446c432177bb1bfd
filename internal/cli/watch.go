package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/netforce/pkg/core/force"
	"github.com/matzehuels/netforce/pkg/core/layout"
	"github.com/matzehuels/netforce/pkg/graph"
	"github.com/matzehuels/netforce/pkg/pipeline"
)

const defaultFPS = 30

var (
	watchLabelStyle  = lipgloss.NewStyle().Foreground(colorGray).Width(14)
	watchPausedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorYellow)
	watchRunStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorGreen)
	watchBoxStyle    = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorDim).
				Padding(0, 1)
)

// watchCommand creates the watch command, the interactive continuous mode.
func (c *CLI) watchCommand() *cobra.Command {
	var (
		output   string
		resume   string
		fps      int
		maxTicks int
		flags    optionFlags
	)

	cmd := &cobra.Command{
		Use:   "watch [graph.xml]",
		Short: "Relax a network interactively, one tick per frame",
		Long: `Relax a network interactively, one tick per frame.

The watch command runs the simulation in continuous mode: every frame applies
exactly one tick. Keys:

  p, space   pause or resume
  s          save the current snapshot
  r          reset all velocities
  q          quit

--resume restores node positions from an earlier snapshot before the first
frame.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, _, err := flags.resolve(cmd)
			if err != nil {
				return err
			}
			if fps <= 0 {
				return fmt.Errorf("fps must be positive, got %d", fps)
			}
			outputPath := output
			if outputPath == "" {
				outputPath = defaultOutput(args[0])
			}
			return c.runWatch(cmd.Context(), args[0], opts, watchSettings{
				output:   outputPath,
				resume:   resume,
				frame:    time.Second / time.Duration(fps),
				maxTicks: maxTicks,
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "snapshot file written by 's' (default: <input>.layout.json)")
	cmd.Flags().StringVar(&resume, "resume", "", "snapshot file to restore positions from")
	cmd.Flags().IntVar(&fps, "fps", defaultFPS, "frames (ticks) per second")
	cmd.Flags().IntVar(&maxTicks, "max-ticks", 0, "pause after this many ticks (0 = never)")
	flags.register(cmd, false)

	return cmd
}

type watchSettings struct {
	output   string
	resume   string
	frame    time.Duration
	maxTicks int
}

func (c *CLI) runWatch(ctx context.Context, input string, opts pipeline.Options, ws watchSettings) error {
	src, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("read %s: %w", input, err)
	}

	logger := loggerFromContext(ctx)
	opts.Logger = logger
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	runner := pipeline.NewRunner(nil, nil, logger)
	g, _, err := runner.Parse(ctx, src, opts)
	if err != nil {
		return err
	}
	st, err := runner.Prepare(g, opts)
	if err != nil {
		return err
	}
	if ws.resume != "" {
		snap, err := graph.ReadSnapshotFile(ws.resume)
		if err != nil {
			return fmt.Errorf("resume: %w", err)
		}
		n, err := graph.ApplySnapshot(st, snap)
		if err != nil {
			return fmt.Errorf("resume: %w", err)
		}
		logger.Debug("restored positions", "nodes", n, "snapshot", ws.resume)
	}
	engine, err := force.New(st, opts.ForceParams())
	if err != nil {
		return err
	}

	m := newWatchModel(engine, opts.TickDuration, ws)
	m.title = input
	if _, err := tea.NewProgram(m, tea.WithContext(ctx)).Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("watch: %w", err)
	}
	return nil
}

// =============================================================================
// watchModel - Continuous relaxation view
// =============================================================================

// frameMsg drives one simulation tick.
type frameMsg time.Time

type watchModel struct {
	engine   *force.Engine
	dt       float64
	frame    time.Duration
	maxTicks int
	output   string
	title    string

	stats       force.Stats
	status      string
	startLength float64
}

func newWatchModel(engine *force.Engine, dt float64, ws watchSettings) watchModel {
	return watchModel{
		engine:      engine,
		dt:          dt,
		frame:       ws.frame,
		maxTicks:    ws.maxTicks,
		output:      ws.output,
		stats:       engine.Stats(),
		startLength: engine.State().TotalEdgeLength(),
	}
}

func (m watchModel) nextFrame() tea.Cmd {
	return tea.Tick(m.frame, func(t time.Time) tea.Msg { return frameMsg(t) })
}

func (m watchModel) Init() tea.Cmd {
	return m.nextFrame()
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case frameMsg:
		if m.engine.Advance(m.dt) {
			m.stats = m.engine.Stats()
			if m.maxTicks > 0 && m.stats.Ticks >= m.maxTicks {
				m.engine.Pause()
				m.status = fmt.Sprintf("paused after %d ticks", m.stats.Ticks)
			}
		}
		return m, m.nextFrame()

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "p", " ":
			if m.engine.Paused() {
				m.engine.Resume()
				m.status = "resumed"
			} else {
				m.engine.Pause()
				m.status = "paused"
			}
		case "s":
			m = m.save()
		case "r":
			m.engine.State().ResetVelocities()
			m.stats = m.engine.Stats()
			m.status = "velocities reset"
		}
	}
	return m, nil
}

// save writes the current layout to the output file.
func (m watchModel) save() watchModel {
	snap := graph.Export(m.engine.State())
	stats := m.engine.Stats()
	snap.Stats = &stats
	if err := graph.WriteSnapshotFile(snap, m.output); err != nil {
		m.status = "save failed: " + err.Error()
		return m
	}
	m.status = fmt.Sprintf("saved %s (tick %d)", m.output, stats.Ticks)
	return m
}

func (m watchModel) View() string {
	var b strings.Builder
	st := m.engine.State()

	b.WriteString(StyleTitle.Render("netforce watch"))
	if m.title != "" {
		b.WriteString(StyleDim.Render("  " + m.title))
	}
	b.WriteString("\n\n")

	state := watchRunStyle.Render("running")
	if m.engine.Paused() {
		state = watchPausedStyle.Render("paused")
	}

	var body strings.Builder
	row := func(label, value string) {
		body.WriteString(watchLabelStyle.Render(label) + StyleValue.Render(value) + "\n")
	}
	row("state", state)
	row("ticks", fmt.Sprintf("%d", m.stats.Ticks))
	row("nodes", fmt.Sprintf("%d (%d locked)", st.Len(), len(st.Locked())))
	row("edges", fmt.Sprintf("%d", len(st.Edges())))
	row("max speed", fmt.Sprintf("%.4f", m.stats.MaxSpeed))
	row("edge error", fmt.Sprintf("%.4f", m.stats.MeanEdgeError))
	row("edge length", fmt.Sprintf("%.2f (start %.2f)", m.stats.TotalEdgeLength, m.startLength))
	for k, p := range st.LockedPositions() {
		if k == 3 {
			row("", fmt.Sprintf("... %d more", len(st.Locked())-3))
			break
		}
		row(fmt.Sprintf("locked #%d", k+1), fmt.Sprintf("%s (%.2f, %.2f, %.2f)", lockedID(st, k), p.X, p.Y, p.Z))
	}
	b.WriteString(watchBoxStyle.Render(strings.TrimRight(body.String(), "\n")))
	b.WriteString("\n")

	if m.status != "" {
		b.WriteString(StyleHighlight.Render(m.status) + "\n")
	}
	b.WriteString(StyleDim.Render("p/space pause  s save  r reset velocities  q quit"))
	b.WriteString("\n")
	return b.String()
}

func lockedID(st *layout.State, k int) string {
	return st.Node(st.Locked()[k]).ID
}
