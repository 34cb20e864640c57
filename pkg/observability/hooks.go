// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard
// dependencies on specific observability backends. Consumers can register
// hooks at startup to receive events about ingestion runs, cache operations,
// and remote stream activity.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// This approach:
//   - Avoids import cycles (hooks are registered by main, not by libraries)
//   - Keeps the core library dependency-free from observability frameworks
//   - Allows different backends (OpenTelemetry, Prometheus, DataDog, etc.)
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetIngestHooks(&myIngestHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Ingest().OnIngestStart(ctx, source)
//	// ... run the pipeline ...
//	observability.Ingest().OnIngestComplete(ctx, source, count, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Ingest Hooks
// =============================================================================

// IngestHooks receives events from the ingestion pipeline.
type IngestHooks interface {
	// OnIngestStart records the start of an ingestion session.
	OnIngestStart(ctx context.Context, source string)

	// OnProgress records an emitted progress event.
	OnProgress(ctx context.Context, source string, fraction float64)

	// OnRecordSkipped records a malformed record that was skipped.
	OnRecordSkipped(ctx context.Context, source string, err error)

	// OnIngestComplete records the terminal outcome of a session.
	OnIngestComplete(ctx context.Context, source string, records int, duration time.Duration, err error)
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
// Stream Hooks
// =============================================================================

// StreamHooks receives events from the remote chunk transport.
type StreamHooks interface {
	// OnRequest records an outgoing stream request.
	OnRequest(ctx context.Context, method, path string)

	// OnChunk records one delivered chunk.
	OnChunk(ctx context.Context, path string, size int)

	// OnFinished records the terminal finished event.
	OnFinished(ctx context.Context, path string, duration time.Duration, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopIngestHooks is a no-op implementation of IngestHooks.
type NoopIngestHooks struct{}

func (NoopIngestHooks) OnIngestStart(context.Context, string)                               {}
func (NoopIngestHooks) OnProgress(context.Context, string, float64)                         {}
func (NoopIngestHooks) OnRecordSkipped(context.Context, string, error)                      {}
func (NoopIngestHooks) OnIngestComplete(context.Context, string, int, time.Duration, error) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopStreamHooks is a no-op implementation of StreamHooks.
type NoopStreamHooks struct{}

func (NoopStreamHooks) OnRequest(context.Context, string, string)                {}
func (NoopStreamHooks) OnChunk(context.Context, string, int)                     {}
func (NoopStreamHooks) OnFinished(context.Context, string, time.Duration, error) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	ingestHooks IngestHooks = NoopIngestHooks{}
	cacheHooks  CacheHooks  = NoopCacheHooks{}
	streamHooks StreamHooks = NoopStreamHooks{}
	hooksMu     sync.RWMutex
)

// SetIngestHooks registers custom ingest hooks.
// This should be called once at application startup before any pipeline runs.
func SetIngestHooks(h IngestHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		ingestHooks = h
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

// SetStreamHooks registers custom stream hooks.
// This should be called once at application startup before any stream requests.
func SetStreamHooks(h StreamHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		streamHooks = h
	}
}

// Ingest returns the registered ingest hooks.
func Ingest() IngestHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return ingestHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Stream returns the registered stream hooks.
func Stream() StreamHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return streamHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	ingestHooks = NoopIngestHooks{}
	cacheHooks = NoopCacheHooks{}
	streamHooks = NoopStreamHooks{}
}
