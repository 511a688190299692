// Package observability provides hooks for metrics, tracing, and logging.
//
// The render core (derive, raster) must stay silent: it neither logs nor
// depends on an observability backend. Instead it reports events through the
// hook interfaces in this package, which default to no-ops. Consumers
// register their own implementations once at startup.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetDeriveHooks(&myDeriveHooks{})
//	    observability.SetRasterHooks(&myRasterHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Derive().OnDeriveStart(nodeCount, edgeCount)
//	// ... derive ...
//	observability.Derive().OnDeriveComplete(clusters, removed, duration, err)
//
// Hook methods are called synchronously on the caller's goroutine and must
// return quickly.
package observability

import (
	"sync"
	"time"
)

// =============================================================================
// Derive Hooks
// =============================================================================

// DeriveHooks receives events from the render graph deriver.
type DeriveHooks interface {
	// OnDeriveStart records the size of the source graph.
	OnDeriveStart(nodes, edges int)

	// OnDeriveComplete records the outcome of a derivation.
	OnDeriveComplete(clusters, removed int, duration time.Duration, err error)
}

// =============================================================================
// Raster Hooks
// =============================================================================

// RasterHooks receives events from the raster cache.
type RasterHooks interface {
	// OnRasterHit records a lookup served from the cache.
	OnRasterHit(key string)

	// OnRasterMiss records a lookup that ran the factory.
	OnRasterMiss(key string)

	// OnRescale records a scale change that regenerated entries.
	OnRescale(scale float64, entries int, duration time.Duration, err error)
}

// =============================================================================
// Pipeline Hooks
// =============================================================================

// PipelineHooks receives events from the recompute pipeline.
type PipelineHooks interface {
	// OnRecompute records a full derive, sort, segment and prewarm pass.
	OnRecompute(draws, runs int, duration time.Duration, err error)

	// OnArtifact records an artifact cache lookup.
	OnArtifact(kind string, hit bool)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopDeriveHooks is a no-op implementation of DeriveHooks.
type NoopDeriveHooks struct{}

func (NoopDeriveHooks) OnDeriveStart(int, int)                          {}
func (NoopDeriveHooks) OnDeriveComplete(int, int, time.Duration, error) {}

// NoopRasterHooks is a no-op implementation of RasterHooks.
type NoopRasterHooks struct{}

func (NoopRasterHooks) OnRasterHit(string)                           {}
func (NoopRasterHooks) OnRasterMiss(string)                          {}
func (NoopRasterHooks) OnRescale(float64, int, time.Duration, error) {}

// NoopPipelineHooks is a no-op implementation of PipelineHooks.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnRecompute(int, int, time.Duration, error) {}
func (NoopPipelineHooks) OnArtifact(string, bool)                    {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	deriveHooks   DeriveHooks   = NoopDeriveHooks{}
	rasterHooks   RasterHooks   = NoopRasterHooks{}
	pipelineHooks PipelineHooks = NoopPipelineHooks{}
	hooksMu       sync.RWMutex
)

// SetDeriveHooks registers custom derive hooks.
// This should be called once at application startup.
func SetDeriveHooks(h DeriveHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		deriveHooks = h
	}
}

// SetRasterHooks registers custom raster cache hooks.
// This should be called once at application startup.
func SetRasterHooks(h RasterHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		rasterHooks = h
	}
}

// SetPipelineHooks registers custom pipeline hooks.
// This should be called once at application startup.
func SetPipelineHooks(h PipelineHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		pipelineHooks = h
	}
}

// Derive returns the registered derive hooks.
func Derive() DeriveHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return deriveHooks
}

// Raster returns the registered raster hooks.
func Raster() RasterHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return rasterHooks
}

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return pipelineHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	deriveHooks = NoopDeriveHooks{}
	rasterHooks = NoopRasterHooks{}
	pipelineHooks = NoopPipelineHooks{}
}
