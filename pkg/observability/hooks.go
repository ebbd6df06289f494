// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about membership reconciliation, order assignment, and
// scene file reloads.
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
//   - Keeps the core library free of observability frameworks
//   - Allows different backends (frame profilers, Prometheus, etc.)
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetSortingHooks(&frameStats{})
//	    // ... run the frame loop
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Sorting().OnAssign(root, total, written, duration, err)
//
// Sorting hooks fire from inside the frame loop and take no context; they
// must return quickly.
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Sorting Hooks
// =============================================================================

// SortingHooks receives events from the sorting core.
type SortingHooks interface {
	// OnReconcile records one membership reconciliation of a group.
	OnReconcile(group string, added, pruned int, duration time.Duration)

	// OnAssign records one order assignment pass from a root group.
	OnAssign(root string, total, written int, duration time.Duration, err error)
}

// =============================================================================
// Watch Hooks
// =============================================================================

// WatchHooks receives events from the scene file watcher.
type WatchHooks interface {
	// OnReload records a scene file reload triggered by a change on disk.
	OnReload(ctx context.Context, path string, duration time.Duration, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopSortingHooks is a no-op implementation of SortingHooks.
type NoopSortingHooks struct{}

func (NoopSortingHooks) OnReconcile(string, int, int, time.Duration)     {}
func (NoopSortingHooks) OnAssign(string, int, int, time.Duration, error) {}

// NoopWatchHooks is a no-op implementation of WatchHooks.
type NoopWatchHooks struct{}

func (NoopWatchHooks) OnReload(context.Context, string, time.Duration, error) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	sortingHooks SortingHooks = NoopSortingHooks{}
	watchHooks   WatchHooks   = NoopWatchHooks{}
	hooksMu      sync.RWMutex
)

// SetSortingHooks registers custom sorting hooks.
// This should be called once at application startup before the first frame.
func SetSortingHooks(h SortingHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		sortingHooks = h
	}
}

// SetWatchHooks registers custom watch hooks.
func SetWatchHooks(h WatchHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		watchHooks = h
	}
}

// Sorting returns the registered sorting hooks.
func Sorting() SortingHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return sortingHooks
}

// Watch returns the registered watch hooks.
func Watch() WatchHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return watchHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	sortingHooks = NoopSortingHooks{}
	watchHooks = NoopWatchHooks{}
}
