package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/netforce/internal/api"
	"github.com/matzehuels/netforce/internal/metrics"
	"github.com/matzehuels/netforce/pkg/observability"
	"github.com/matzehuels/netforce/pkg/pipeline"
)

// serveCommand creates the serve command that runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		configPath string
		addr       string
		noMetrics  bool
		backends   backendFlags
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the HTTP API.

POST an XML network to /v1/layouts to relax it; the snapshot is stored and
returned with its ID. Query parameters override the layout defaults from the
config file, for example ?ticks=500&locked=2&placement=ring.

Prometheus metrics are exposed at /metrics unless --no-metrics is set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			backends.apply(cfg)
			if addr != "" {
				cfg.Server.Addr = addr
			}
			return c.runServe(cmd.Context(), cfg, !noMetrics)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "TOML config file")
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default "+pipeline.DefaultAddr+")")
	cmd.Flags().BoolVar(&noMetrics, "no-metrics", false, "disable the /metrics endpoint")
	backends.register(cmd, "snapshot store backend: file (default) or mongo")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, cfg *pipeline.Config, withMetrics bool) error {
	logger := loggerFromContext(ctx)

	var m *metrics.Metrics
	if withMetrics {
		m = metrics.New()
		m.Install()
		defer observability.Reset()
	}

	runner, err := c.newRunner(ctx, cfg.Cache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	st, err := openStore(ctx, cfg.Store)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	srv, err := api.New(api.Config{
		Runner:   runner,
		Store:    st,
		Metrics:  m,
		Logger:   logger,
		Defaults: cfg.Options(),
		Server:   cfg.Server,
	})
	if err != nil {
		return err
	}

	printInfo("Serving on %s", StyleHighlight.Render(serveAddr(cfg.Server.Addr)))
	return srv.ListenAndServe(ctx)
}

func serveAddr(addr string) string {
	if addr == "" {
		return pipeline.DefaultAddr
	}
	return addr
}
