package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"

	errs "github.com/matzehuels/typegraph/pkg/errors"
	"github.com/matzehuels/typegraph/pkg/snapshot"
)

// isolate points the XDG directories at a temp dir and clears overrides.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	t.Setenv(EnvSnapshotBackend, "")
	t.Setenv(EnvRedisAddr, "")
	t.Setenv(EnvMongoURI, "")
	return dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestDefault(t *testing.T) {
	dir := isolate(t)
	cfg := Default()

	want := &Config{
		Log: LogConfig{Level: "info"},
		Snapshot: snapshot.Config{
			Backend: snapshot.BackendFile,
			Dir:     filepath.Join(dir, "data", AppName, "snapshots"),
			Redis:   snapshot.RedisConfig{Addr: "localhost:6379", Prefix: "typegraph:snapshot:"},
			Mongo: snapshot.MongoConfig{
				URI:        "mongodb://localhost:27017",
				Database:   "typegraph",
				Collection: "snapshots",
			},
		},
		Server: ServerConfig{Addr: ":8080"},
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("Default mismatch (-want +got):\n%s", diff)
	}
}

func TestDefaultPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "")
	path, err := DefaultPath()
	if err != nil {
		t.Fatalf("DefaultPath() error: %v", err)
	}
	home, _ := os.UserHomeDir()
	want := filepath.Join(home, ".config", AppName, "config.toml")
	if path != want {
		t.Errorf("DefaultPath() = %q, want %q", path, want)
	}
}

func TestDefaultPathXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/custom-config")
	path, err := DefaultPath()
	if err != nil {
		t.Fatalf("DefaultPath() error: %v", err)
	}
	if want := filepath.Join("/tmp/custom-config", AppName, "config.toml"); path != want {
		t.Errorf("DefaultPath() = %q, want %q", path, want)
	}
}

func TestDataDirFallsBackToHome(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "")
	dir, err := dataDir()
	if err != nil {
		t.Fatalf("dataDir() error: %v", err)
	}
	home, _ := os.UserHomeDir()
	if !strings.HasPrefix(dir, home) {
		t.Errorf("dataDir() = %q, should be under home %q", dir, home)
	}
	if !strings.HasSuffix(dir, filepath.Join(".local", "share", AppName)) {
		t.Errorf("dataDir() = %q, should end with .local/share/%s", dir, AppName)
	}
}

func TestLoadMissingDefaultFile(t *testing.T) {
	isolate(t)
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error: %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("Load without file should return defaults (-want +got):\n%s", diff)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	dir := isolate(t)
	if _, err := Load(filepath.Join(dir, "nope.toml")); !errs.Is(err, errs.ErrCodeInvalidInput) {
		t.Errorf("Load(missing) error = %v, want INVALID_INPUT", err)
	}
}

func TestLoadOverlaysFile(t *testing.T) {
	dir := isolate(t)
	path, _ := DefaultPath()
	writeFile(t, path, `
[log]
level = "debug"

[snapshot]
backend = "redis"

[snapshot.redis]
addr = "cache:6379"
db = 2

[server]
addr = ":9090"
`)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Snapshot.Backend != snapshot.BackendRedis {
		t.Errorf("Backend = %q, want redis", cfg.Snapshot.Backend)
	}
	if cfg.Snapshot.Redis.Addr != "cache:6379" || cfg.Snapshot.Redis.DB != 2 {
		t.Errorf("Redis = %+v", cfg.Snapshot.Redis)
	}
	// Unset keys keep their defaults.
	if cfg.Snapshot.Redis.Prefix != "typegraph:snapshot:" {
		t.Errorf("Redis.Prefix = %q, want default", cfg.Snapshot.Redis.Prefix)
	}
	if want := filepath.Join(dir, "data", AppName, "snapshots"); cfg.Snapshot.Dir != want {
		t.Errorf("Snapshot.Dir = %q, want %q", cfg.Snapshot.Dir, want)
	}
	if cfg.Server.Addr != ":9090" {
		t.Errorf("Server.Addr = %q, want :9090", cfg.Server.Addr)
	}
	if level, _ := cfg.LogLevel(); level != log.DebugLevel {
		t.Errorf("LogLevel = %v, want debug", level)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv(EnvSnapshotBackend, "mongo")
	t.Setenv(EnvRedisAddr, "redis.internal:6380")
	t.Setenv(EnvMongoURI, "mongodb://db.internal:27017")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Snapshot.Backend != "mongo" {
		t.Errorf("Backend = %q, want mongo", cfg.Snapshot.Backend)
	}
	if cfg.Snapshot.Redis.Addr != "redis.internal:6380" {
		t.Errorf("Redis.Addr = %q", cfg.Snapshot.Redis.Addr)
	}
	if cfg.Snapshot.Mongo.URI != "mongodb://db.internal:27017" {
		t.Errorf("Mongo.URI = %q", cfg.Snapshot.Mongo.URI)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		env     string
	}{
		{"syntax", "[log\nlevel = 1", ""},
		{"unknown key", "[server]\nport = 80", ""},
		{"bad level", "[log]\nlevel = \"loud\"", ""},
		{"bad backend", "[snapshot]\nbackend = \"tape\"", ""},
		{"bad backend from env", "", "tape"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := isolate(t)
			t.Setenv(EnvSnapshotBackend, tt.env)
			path := filepath.Join(dir, "config.toml")
			writeFile(t, path, tt.content)

			if _, err := Load(path); !errs.Is(err, errs.ErrCodeInvalidInput) {
				t.Errorf("Load error = %v, want INVALID_INPUT", err)
			}
		})
	}
}
