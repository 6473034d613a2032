// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers register hooks at startup
// to receive events about graph mutations, snapshot storage, and HTTP requests.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// The graph store itself never calls hooks; the services built around it
// (the HTTP server, the CLI, the snapshot stores) do.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetMutationHooks(observability.NewLogHooks(logger))
//	    observability.SetSnapshotHooks(&mySnapshotMetrics{})
//	    // ... run application
//	}
//
// Services call hooks to emit events:
//
//	start := time.Now()
//	_, err := g.AddEdge(src, dst, e)
//	observability.Mutation().OnMutation(ctx, observability.OpAddEdge, e.ID, time.Since(start), err)
package observability

import (
	"context"
	"sync"
	"time"
)

// Mutation operation names passed to [MutationHooks.OnMutation].
const (
	OpAddNode    = "add_node"
	OpAddEdge    = "add_edge"
	OpRemoveNode = "remove_node"
	OpRemoveEdge = "remove_edge"
	OpRestore    = "restore"
)

// =============================================================================
// Mutation Hooks
// =============================================================================

// MutationHooks receives events for every graph mutation a service performs.
type MutationHooks interface {
	// OnMutation records a finished mutation. err is non-nil when the graph
	// rejected it.
	OnMutation(ctx context.Context, op, id string, duration time.Duration, err error)
}

// =============================================================================
// Snapshot Hooks
// =============================================================================

// SnapshotHooks receives events from snapshot stores.
type SnapshotHooks interface {
	// OnSave records a snapshot write.
	OnSave(ctx context.Context, backend, key string, size int, duration time.Duration, err error)

	// OnLoad records a snapshot read. size is zero when the read failed.
	OnLoad(ctx context.Context, backend, key string, size int, duration time.Duration, err error)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from the HTTP server.
type HTTPHooks interface {
	// OnRequest records a served request. route is the matched route pattern,
	// not the raw path.
	OnRequest(ctx context.Context, method, route string, statusCode int, duration time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopMutationHooks is a no-op implementation of MutationHooks.
type NoopMutationHooks struct{}

func (NoopMutationHooks) OnMutation(context.Context, string, string, time.Duration, error) {}

// NoopSnapshotHooks is a no-op implementation of SnapshotHooks.
type NoopSnapshotHooks struct{}

func (NoopSnapshotHooks) OnSave(context.Context, string, string, int, time.Duration, error) {}
func (NoopSnapshotHooks) OnLoad(context.Context, string, string, int, time.Duration, error) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, int, time.Duration) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	mutationHooks MutationHooks = NoopMutationHooks{}
	snapshotHooks SnapshotHooks = NoopSnapshotHooks{}
	httpHooks     HTTPHooks     = NoopHTTPHooks{}
	hooksMu       sync.RWMutex
)

// SetMutationHooks registers custom mutation hooks.
// This should be called once at application startup before any mutations.
func SetMutationHooks(h MutationHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		mutationHooks = h
	}
}

// SetSnapshotHooks registers custom snapshot hooks.
// This should be called once at application startup before any snapshot operations.
func SetSnapshotHooks(h SnapshotHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		snapshotHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks.
// This should be called once at application startup before serving.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Mutation returns the registered mutation hooks.
func Mutation() MutationHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return mutationHooks
}

// Snapshot returns the registered snapshot hooks.
func Snapshot() SnapshotHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return snapshotHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	mutationHooks = NoopMutationHooks{}
	snapshotHooks = NoopSnapshotHooks{}
	httpHooks = NoopHTTPHooks{}
}
