// Package snapshot stores serialized graph documents under string keys.
//
// A snapshot is the JSON document produced by package io. Stores treat it as
// opaque bytes; restoring a snapshot always goes back through the validating
// decoder, so a tampered snapshot cannot produce a graph its schema forbids.
//
// Backends:
//   - [FileStore]: one <key>.json file per snapshot, for the CLI
//   - [RedisStore]: keys under a common prefix, for shared deployments
//   - [MongoStore]: one document per snapshot
//   - [MemoryStore]: in-process, for tests and ephemeral servers
//
// Use [Open] to build the store named by a [Config]. Stores returned by Open
// report every save and load to the hooks registered with package
// observability.
package snapshot

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	errs "github.com/matzehuels/typegraph/pkg/errors"
)

// Backend names accepted by [Config.Backend].
const (
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
	BackendMemory = "memory"
)

// Store is the interface for snapshot storage backends.
type Store interface {
	// Save stores data under key, replacing any previous snapshot.
	Save(ctx context.Context, key string, data []byte) error

	// Load returns the snapshot stored under key.
	// Returns a NOT_FOUND error if there is none.
	Load(ctx context.Context, key string) ([]byte, error)

	// Delete removes the snapshot stored under key.
	// Returns a NOT_FOUND error if there is none.
	Delete(ctx context.Context, key string) error

	// List returns all keys in lexical order.
	List(ctx context.Context) ([]string, error)

	// Close releases the backend's connections.
	Close() error
}

// Config selects and configures a backend.
type Config struct {
	Backend string      `toml:"backend"`
	Dir     string      `toml:"dir"`
	Redis   RedisConfig `toml:"redis"`
	Mongo   MongoConfig `toml:"mongo"`
}

// Open connects to the backend named by cfg.Backend. An empty backend
// means the file store.
func Open(ctx context.Context, cfg Config) (Store, error) {
	var (
		s   Store
		err error
	)
	backend := cfg.Backend
	switch backend {
	case "", BackendFile:
		backend = BackendFile
		s, err = NewFileStore(cfg.Dir)
	case BackendRedis:
		s, err = NewRedisStore(ctx, cfg.Redis)
	case BackendMongo:
		s, err = NewMongoStore(ctx, cfg.Mongo)
	case BackendMemory:
		s = NewMemoryStore()
	default:
		return nil, errs.New(errs.ErrCodeUnsupported, "unknown snapshot backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", backend, err)
	}
	return Observe(s, backend), nil
}

// NewKey returns a fresh random snapshot key.
func NewKey() string {
	return uuid.NewString()
}

func notFound(key string) error {
	return errs.New(errs.ErrCodeNotFound, "snapshot %q not found", key)
}
