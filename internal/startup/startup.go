// ============================================================================
// Task Engine - Startup Work Registration
// ============================================================================
//
// Package: internal/startup
// File: startup.go
// Purpose: Registry.Register / Registry.Run: fire-once work registered
// before the host starts, drained sequentially on start, exceptions logged
// but not propagated. Treated as an external collaborator - startup-time
// fire-once work registration - so this is a thin ordered-list registry
// rather than part of the core engine.
//
// ============================================================================

package startup

import (
	"context"
	"log/slog"
	"sync"

	"github.com/ChuLiYu/taskengine/internal/registry"
)

// Work is one piece of startup-time work.
type Work func(ctx context.Context, services *registry.Registry) error

// Registry holds an ordered list of startup work.
type Registry struct {
	mu   sync.Mutex
	work []Work
}

// NewRegistry creates an empty startup-work registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register appends work to the ordered list.
func (r *Registry) Register(work Work) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.work = append(r.work, work)
}

// Run drains the registered work sequentially in registration order,
// awaiting each before starting the next. A failing entry is logged and
// skipped; it does not stop subsequent entries from running.
func (r *Registry) Run(ctx context.Context, services *registry.Registry, logger *slog.Logger) {
	r.mu.Lock()
	work := append([]Work(nil), r.work...)
	r.mu.Unlock()

	for i, w := range work {
		if err := w(ctx, services); err != nil {
			if logger != nil {
				logger.Error("startup work failed", "index", i, "error", err)
			}
		}
	}
}
