package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks writes every event as a structured log line. Successful events
// are logged at debug level, failures at warn level.
type LogHooks struct {
	Logger *log.Logger
}

// NewLogHooks returns hooks logging to l.
func NewLogHooks(l *log.Logger) *LogHooks {
	return &LogHooks{Logger: l}
}

var (
	_ MutationHooks = (*LogHooks)(nil)
	_ SnapshotHooks = (*LogHooks)(nil)
	_ HTTPHooks     = (*LogHooks)(nil)
)

func (h *LogHooks) OnMutation(_ context.Context, op, id string, duration time.Duration, err error) {
	if err != nil {
		h.Logger.Warn("mutation rejected", "op", op, "id", id, "err", err)
		return
	}
	h.Logger.Debug("mutation", "op", op, "id", id, "took", duration)
}

func (h *LogHooks) OnSave(_ context.Context, backend, key string, size int, duration time.Duration, err error) {
	if err != nil {
		h.Logger.Warn("snapshot save failed", "backend", backend, "key", key, "err", err)
		return
	}
	h.Logger.Debug("snapshot saved", "backend", backend, "key", key, "bytes", size, "took", duration)
}

func (h *LogHooks) OnLoad(_ context.Context, backend, key string, size int, duration time.Duration, err error) {
	if err != nil {
		h.Logger.Warn("snapshot load failed", "backend", backend, "key", key, "err", err)
		return
	}
	h.Logger.Debug("snapshot loaded", "backend", backend, "key", key, "bytes", size, "took", duration)
}

func (h *LogHooks) OnRequest(_ context.Context, method, route string, statusCode int, duration time.Duration) {
	if statusCode >= 500 {
		h.Logger.Warn("request", "method", method, "route", route, "status", statusCode, "took", duration)
		return
	}
	h.Logger.Debug("request", "method", method, "route", route, "status", statusCode, "took", duration)
}

// Install registers h for every hook category.
func (h *LogHooks) Install() {
	SetMutationHooks(h)
	SetSnapshotHooks(h)
	SetHTTPHooks(h)
}
