// Package config loads the typegraph configuration file.
//
// The file is TOML and lives at $XDG_CONFIG_HOME/typegraph/config.toml
// (~/.config/typegraph/config.toml when XDG_CONFIG_HOME is unset). Every
// field is optional; a missing file yields [Default].
//
//	[log]
//	level = "debug"
//
//	[snapshot]
//	backend = "redis"
//
//	[snapshot.redis]
//	addr = "cache.internal:6379"
//
//	[server]
//	addr = ":9090"
//
// A few environment variables override the file so deployments can switch
// backends without editing it: TYPEGRAPH_SNAPSHOT_BACKEND,
// TYPEGRAPH_REDIS_ADDR and TYPEGRAPH_MONGO_URI.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	errs "github.com/matzehuels/typegraph/pkg/errors"
	"github.com/matzehuels/typegraph/pkg/snapshot"
)

// AppName is used for configuration and data directories.
const AppName = "typegraph"

// Environment variables that override the configuration file.
const (
	EnvSnapshotBackend = "TYPEGRAPH_SNAPSHOT_BACKEND"
	EnvRedisAddr       = "TYPEGRAPH_REDIS_ADDR"
	EnvMongoURI        = "TYPEGRAPH_MONGO_URI"
)

// Config is the complete typegraph configuration.
type Config struct {
	Log      LogConfig       `toml:"log"`
	Snapshot snapshot.Config `toml:"snapshot"`
	Server   ServerConfig    `toml:"server"`
}

// LogConfig configures the CLI logger.
type LogConfig struct {
	Level string `toml:"level"`
}

// ServerConfig configures `typegraph serve`.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	dir, err := dataDir()
	if err == nil {
		dir = filepath.Join(dir, "snapshots")
	}
	return &Config{
		Log: LogConfig{Level: "info"},
		Snapshot: snapshot.Config{
			Backend: snapshot.BackendFile,
			Dir:     dir,
			Redis: snapshot.RedisConfig{
				Addr:   "localhost:6379",
				Prefix: "typegraph:snapshot:",
			},
			Mongo: snapshot.MongoConfig{
				URI:        "mongodb://localhost:27017",
				Database:   "typegraph",
				Collection: "snapshots",
			},
		},
		Server: ServerConfig{Addr: ":8080"},
	}
}

// Load reads the configuration at path on top of [Default]. An empty path
// means [DefaultPath]; a missing default file is not an error, a missing
// explicit one is.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			cfg.applyEnv()
			return cfg, nil
		}
		path = p
	}

	md, err := toml.DecodeFile(path, cfg)
	switch {
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	case err != nil:
		return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "load config %s", path)
	default:
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, errs.New(errs.ErrCodeInvalidInput, "config %s: unknown key %q", path, undecoded[0].String())
		}
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvSnapshotBackend); v != "" {
		c.Snapshot.Backend = v
	}
	if v := os.Getenv(EnvRedisAddr); v != "" {
		c.Snapshot.Redis.Addr = v
	}
	if v := os.Getenv(EnvMongoURI); v != "" {
		c.Snapshot.Mongo.URI = v
	}
}

// Validate rejects settings that cannot be acted on.
func (c *Config) Validate() error {
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	switch c.Snapshot.Backend {
	case "", snapshot.BackendFile, snapshot.BackendRedis, snapshot.BackendMongo, snapshot.BackendMemory:
	default:
		return errs.New(errs.ErrCodeInvalidInput, "unknown snapshot backend %q", c.Snapshot.Backend)
	}
	return nil
}

// LogLevel parses the configured log level.
func (c *Config) LogLevel() (log.Level, error) {
	if c.Log.Level == "" {
		return log.InfoLevel, nil
	}
	level, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.InfoLevel, errs.Wrap(errs.ErrCodeInvalidInput, err, "log level")
	}
	return level, nil
}

// =============================================================================
// Paths
// =============================================================================

// DefaultPath returns the configuration file location using the XDG standard
// (~/.config/typegraph/config.toml).
func DefaultPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

func configDir() (string, error) {
	return xdgDir("XDG_CONFIG_HOME", ".config")
}

func dataDir() (string, error) {
	return xdgDir("XDG_DATA_HOME", filepath.Join(".local", "share"))
}

func xdgDir(env, fallback string) (string, error) {
	if base := os.Getenv(env); base != "" {
		return filepath.Join(base, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, fallback, AppName), nil
}
