// Package cli implements the netforce command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/netforce/pkg/buildinfo"
	"github.com/matzehuels/netforce/pkg/pipeline"
	"github.com/matzehuels/netforce/pkg/store"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "netforce"

	// snapshotDirName is the store directory below the data directory.
	snapshotDirName = "snapshots"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Netforce lays out networks with a force-directed simulation",
		Long: `Netforce reads networks from XML, places their nodes in 3D space and relaxes
the layout with spring attraction between connected nodes and inverse-square
repulsion between all others. The highest-degree nodes are locked as anchors.`,
		Version:      buildinfo.Get().Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.relaxCommand())
	root.AddCommand(c.rankCommand())
	root.AddCommand(c.watchCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Backends
// =============================================================================

// backendFlags are the cache and store flags shared by relax and serve.
type backendFlags struct {
	noCache  bool
	redis    string
	store    string
	storeDir string
	mongo    string
}

func (b *backendFlags) register(cmd *cobra.Command, storeHelp string) {
	cmd.Flags().BoolVar(&b.noCache, "no-cache", false, "disable caching")
	cmd.Flags().StringVar(&b.redis, "redis", "", "cache layouts in redis at this address (env "+pipeline.EnvRedisAddr+")")
	cmd.Flags().StringVar(&b.store, "store", "", storeHelp)
	cmd.Flags().StringVar(&b.storeDir, "store-dir", "", "snapshot directory for the file store (default: $XDG_DATA_HOME/netforce/snapshots)")
	cmd.Flags().StringVar(&b.mongo, "mongo", "", "MongoDB URI for the mongo store (env "+pipeline.EnvMongoURI+")")
}

// apply overlays the flags on the cache and store sections of cfg.
func (b *backendFlags) apply(cfg *pipeline.Config) {
	if b.redis != "" {
		cfg.Cache.Backend = pipeline.BackendRedis
		cfg.Cache.Redis.Addr = b.redis
	}
	if b.noCache {
		cfg.Cache.Backend = pipeline.BackendNone
	}
	if b.mongo != "" {
		cfg.Store.Mongo.URI = b.mongo
		if b.store == "" {
			b.store = pipeline.BackendMongo
		}
	}
	if b.store != "" {
		cfg.Store.Backend = b.store
	}
	if b.storeDir != "" {
		cfg.Store.Dir = b.storeDir
	}
}

// newRunner creates a pipeline runner for the cache section of cfg.
func (c *CLI) newRunner(ctx context.Context, cfg pipeline.CacheConfig) (*pipeline.Runner, error) {
	dir, err := cacheDir()
	if err != nil {
		c.Logger.Debug("no cache directory", "error", err)
	}
	if dir == "" && cfg.Dir == "" && (cfg.Backend == "" || cfg.Backend == pipeline.BackendFile) {
		cfg.Backend = pipeline.BackendNone
	}
	cc, keyer, err := pipeline.OpenCache(ctx, cfg, dir)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cc, keyer, c.Logger), nil
}

// openStore opens the snapshot store of cfg, using the data directory when
// the file store has no directory configured.
func openStore(ctx context.Context, cfg pipeline.StoreConfig) (store.Store, error) {
	dir := cfg.Dir
	if dir == "" && cfg.Backend != pipeline.BackendMongo {
		d, err := dataDir()
		if err != nil {
			return nil, fmt.Errorf("get data dir: %w", err)
		}
		dir = filepath.Join(d, snapshotDirName)
	}
	return pipeline.OpenStore(ctx, cfg, dir)
}

// loadConfig reads path, or returns an empty config when path is empty.
func loadConfig(path string) (*pipeline.Config, error) {
	if path == "" {
		cfg := &pipeline.Config{}
		cfg.ApplyEnv()
		return cfg, nil
	}
	return pipeline.LoadConfigFile(path)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/netforce/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// dataDir returns the data directory using XDG standard (~/.local/share/netforce/).
func dataDir() (string, error) {
	if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
		return filepath.Join(dataHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share", appName), nil
}

// defaultOutput derives "<base>.layout.json" from the input path.
func defaultOutput(input string) string {
	return strings.TrimSuffix(input, filepath.Ext(input)) + ".layout.json"
}
