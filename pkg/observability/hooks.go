// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about relaxation runs, cache operations and snapshot
// storage.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// Hooks are registered by main, not by libraries, so library packages never
// import a metrics backend.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetRelaxHooks(&myRelaxHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Relax().OnRelaxStart(ctx, nodes, edges)
//	// ... run the engine ...
//	observability.Relax().OnRelaxComplete(ctx, ticks, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Relaxation Hooks
// =============================================================================

// RelaxHooks receives events from the layout pipeline.
type RelaxHooks interface {
	// Parse events
	OnParseComplete(ctx context.Context, nodes, edges, warnings int, duration time.Duration, err error)

	// Relaxation events
	OnRelaxStart(ctx context.Context, nodes, edges int)
	OnBatch(ctx context.Context, batch int, maxSpeed float64)
	OnRelaxComplete(ctx context.Context, ticks int, duration time.Duration, err error)

	// Export events
	OnExport(ctx context.Context, edges, lockedNodes int)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// Store Hooks
// =============================================================================

// StoreHooks receives events from snapshot store operations.
type StoreHooks interface {
	// OnStoreOp records one store call ("get", "put", "delete", "list").
	OnStoreOp(ctx context.Context, backend, op string, duration time.Duration, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopRelaxHooks is a no-op implementation of RelaxHooks.
type NoopRelaxHooks struct{}

func (NoopRelaxHooks) OnParseComplete(context.Context, int, int, int, time.Duration, error) {}
func (NoopRelaxHooks) OnRelaxStart(context.Context, int, int)                               {}
func (NoopRelaxHooks) OnBatch(context.Context, int, float64)                                {}
func (NoopRelaxHooks) OnRelaxComplete(context.Context, int, time.Duration, error)           {}
func (NoopRelaxHooks) OnExport(context.Context, int, int)                                   {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopStoreHooks is a no-op implementation of StoreHooks.
type NoopStoreHooks struct{}

func (NoopStoreHooks) OnStoreOp(context.Context, string, string, time.Duration, error) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	relaxHooks RelaxHooks = NoopRelaxHooks{}
	cacheHooks CacheHooks = NoopCacheHooks{}
	storeHooks StoreHooks = NoopStoreHooks{}
	hooksMu    sync.RWMutex
)

// SetRelaxHooks registers custom relaxation hooks.
// This should be called once at application startup before any pipeline operations.
func SetRelaxHooks(h RelaxHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		relaxHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetStoreHooks registers custom store hooks.
func SetStoreHooks(h StoreHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		storeHooks = h
	}
}

// Relax returns the registered relaxation hooks.
func Relax() RelaxHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return relaxHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Store returns the registered store hooks.
func Store() StoreHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return storeHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	relaxHooks = NoopRelaxHooks{}
	cacheHooks = NoopCacheHooks{}
	storeHooks = NoopStoreHooks{}
}
