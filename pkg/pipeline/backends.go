package pipeline

import (
	"context"

	"github.com/matzehuels/netforce/pkg/cache"
	"github.com/matzehuels/netforce/pkg/errors"
	"github.com/matzehuels/netforce/pkg/store"
)

// OpenCache creates the cache backend named by cfg. An empty backend means
// file; an empty Dir falls back to defaultDir. A non-empty Prefix scopes all
// keys.
func OpenCache(ctx context.Context, cfg CacheConfig, defaultDir string) (cache.Cache, cache.Keyer, error) {
	keyer := cache.NewDefaultKeyer()
	if cfg.Prefix != "" {
		keyer = cache.NewScopedKeyer(keyer, cfg.Prefix)
	}

	switch cfg.Backend {
	case BackendNone:
		return cache.NewNullCache(), keyer, nil
	case BackendRedis:
		c, err := cache.NewRedisCache(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		return c, keyer, nil
	case "", BackendFile:
		dir := cfg.Dir
		if dir == "" {
			dir = defaultDir
		}
		if dir == "" {
			return nil, nil, errors.New(errors.ErrCodeInvalidConfig, "cache directory is empty")
		}
		c, err := cache.NewFileCache(dir)
		if err != nil {
			return nil, nil, err
		}
		return c, keyer, nil
	}
	return nil, nil, errors.New(errors.ErrCodeInvalidConfig, "unknown cache backend %q", cfg.Backend)
}

// OpenStore creates the snapshot store named by cfg. An empty backend means
// file; an empty Dir falls back to defaultDir.
func OpenStore(ctx context.Context, cfg StoreConfig, defaultDir string) (store.Store, error) {
	switch cfg.Backend {
	case BackendMongo:
		s, err := store.NewMongoStore(ctx, cfg.Mongo)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "", BackendFile:
		dir := cfg.Dir
		if dir == "" {
			dir = defaultDir
		}
		s, err := store.NewFileStore(dir)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown store backend %q", cfg.Backend)
}
