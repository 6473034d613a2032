package snapshot

import (
	"context"
	"time"

	"github.com/matzehuels/typegraph/pkg/observability"
)

// observed reports saves and loads of the wrapped store to the registered
// snapshot hooks.
type observed struct {
	Store
	backend string
}

// Observe wraps s so that Save and Load are reported to
// observability.Snapshot() under the given backend name.
func Observe(s Store, backend string) Store {
	return &observed{Store: s, backend: backend}
}

func (o *observed) Save(ctx context.Context, key string, data []byte) error {
	start := time.Now()
	err := o.Store.Save(ctx, key, data)
	observability.Snapshot().OnSave(ctx, o.backend, key, len(data), time.Since(start), err)
	return err
}

func (o *observed) Load(ctx context.Context, key string) ([]byte, error) {
	start := time.Now()
	data, err := o.Store.Load(ctx, key)
	observability.Snapshot().OnLoad(ctx, o.backend, key, len(data), time.Since(start), err)
	return data, err
}
