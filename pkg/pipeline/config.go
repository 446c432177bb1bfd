package pipeline

import (
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/netforce/pkg/cache"
	"github.com/matzehuels/netforce/pkg/errors"
	"github.com/matzehuels/netforce/pkg/store"
)

// Environment variables consulted when the config leaves a backend address
// empty.
const (
	EnvRedisAddr = "NETFORCE_REDIS_ADDR"
	EnvMongoURI  = "NETFORCE_MONGO_URI"
)

// Backend names.
const (
	BackendNone  = "none"
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendMongo = "mongo"
)

// Default server settings.
const (
	DefaultAddr         = ":8080"
	DefaultMaxBodyBytes = 32 << 20
	DefaultReadTimeout  = 30 * time.Second
	DefaultWriteTimeout = 5 * time.Minute
	DefaultMaxTicks     = 100000
)

// Config is the on-disk configuration file.
//
//	[graph]
//	seed = 7
//
//	[force]
//	desired_distance = 5.0
//
//	[cache]
//	backend = "redis"
//	[cache.redis]
//	addr = "localhost:6379"
type Config struct {
	Graph    GraphConfig    `toml:"graph"`
	Layout   LayoutConfig   `toml:"layout"`
	Force    ForceConfig    `toml:"force"`
	Schedule ScheduleConfig `toml:"schedule"`
	Cache    CacheConfig    `toml:"cache"`
	Store    StoreConfig    `toml:"store"`
	Server   ServerConfig   `toml:"server"`
}

// GraphConfig holds the parse options.
type GraphConfig struct {
	Index      int     `toml:"index"`
	Seed       uint64  `toml:"seed"`
	SpawnRange float64 `toml:"spawn_range"`
	OrderFile  string  `toml:"order_file"`
}

// LayoutConfig holds the layout state options.
type LayoutConfig struct {
	MaxNodes    int     `toml:"max_nodes"`
	LockedNodes *int    `toml:"locked_nodes"`
	MaxDegree   int     `toml:"max_degree"`
	BaseScale   float64 `toml:"base_scale"`
	MinNodeSize float64 `toml:"min_node_size"`
	Placement   string  `toml:"placement"`
}

// ForceConfig holds the force constants.
type ForceConfig struct {
	ConnectionForce float64 `toml:"connection_force"`
	RepulsionForce  float64 `toml:"repulsion_force"`
	DesiredDistance float64 `toml:"desired_distance"`
	Damping         float64 `toml:"damping"`
	FreeLocked      bool    `toml:"free_locked"`
}

// ScheduleConfig holds the batched run settings.
type ScheduleConfig struct {
	Ticks         int           `toml:"ticks"`
	TicksPerBatch int           `toml:"ticks_per_batch"`
	TickDuration  float64       `toml:"tick_duration"`
	BatchInterval time.Duration `toml:"batch_interval"`
	Tolerance     float64       `toml:"tolerance"`
}

// CacheConfig selects the layout cache backend.
type CacheConfig struct {
	Backend string            `toml:"backend"` // none, file or redis
	Dir     string            `toml:"dir"`
	Prefix  string            `toml:"prefix"`
	Redis   cache.RedisConfig `toml:"redis"`
}

// StoreConfig selects the snapshot store backend.
type StoreConfig struct {
	Backend string            `toml:"backend"` // file or mongo
	Dir     string            `toml:"dir"`
	Mongo   store.MongoConfig `toml:"mongo"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr         string        `toml:"addr"`
	MaxBodyBytes int64         `toml:"max_body_bytes"`
	ReadTimeout  time.Duration `toml:"read_timeout"`
	WriteTimeout time.Duration `toml:"write_timeout"`
	MaxTicks     int           `toml:"max_ticks"`
}

// LoadConfigFile decodes a TOML config file. Unknown keys are rejected so
// that typos do not silently fall back to defaults.
func LoadConfigFile(path string) (*Config, error) {
	var cfg Config
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode config %s", path)
	}
	if undec := md.Undecoded(); len(undec) > 0 {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "config %s: unknown key %q", path, undec[0].String())
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ApplyEnv fills empty backend addresses from the environment.
func (c *Config) ApplyEnv() {
	if c.Cache.Redis.Addr == "" {
		c.Cache.Redis.Addr = os.Getenv(EnvRedisAddr)
	}
	if c.Store.Mongo.URI == "" {
		c.Store.Mongo.URI = os.Getenv(EnvMongoURI)
	}
}

// Validate checks backend names.
func (c *Config) Validate() error {
	switch c.Cache.Backend {
	case "", BackendNone, BackendFile, BackendRedis:
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown cache backend %q", c.Cache.Backend)
	}
	switch c.Store.Backend {
	case "", BackendFile, BackendMongo:
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown store backend %q", c.Store.Backend)
	}
	return nil
}

// Options converts the layout sections into pipeline options. The order file
// is not read here; callers load it with io.ImportOrder.
func (c *Config) Options() Options {
	return Options{
		GraphIndex:      c.Graph.Index,
		Seed:            c.Graph.Seed,
		SpawnRange:      c.Graph.SpawnRange,
		MaxNodes:        c.Layout.MaxNodes,
		LockedNodes:     c.Layout.LockedNodes,
		MaxDegree:       c.Layout.MaxDegree,
		BaseScale:       c.Layout.BaseScale,
		MinNodeSize:     c.Layout.MinNodeSize,
		Placement:       c.Layout.Placement,
		ConnectionForce: c.Force.ConnectionForce,
		RepulsionForce:  c.Force.RepulsionForce,
		DesiredDistance: c.Force.DesiredDistance,
		Damping:         c.Force.Damping,
		FreeLocked:      c.Force.FreeLocked,
		Ticks:           c.Schedule.Ticks,
		TicksPerBatch:   c.Schedule.TicksPerBatch,
		TickDuration:    c.Schedule.TickDuration,
		BatchInterval:   c.Schedule.BatchInterval,
		Tolerance:       c.Schedule.Tolerance,
	}
}

// SetServerDefaults fills empty server settings.
func (c *Config) SetServerDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Server.MaxBodyBytes == 0 {
		c.Server.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = DefaultReadTimeout
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = DefaultWriteTimeout
	}
	if c.Server.MaxTicks == 0 {
		c.Server.MaxTicks = DefaultMaxTicks
	}
}
