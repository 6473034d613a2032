package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/typegraph/internal/config"
	"github.com/matzehuels/typegraph/pkg/buildinfo"
	errs "github.com/matzehuels/typegraph/pkg/errors"
	"github.com/matzehuels/typegraph/pkg/graph"
	"github.com/matzehuels/typegraph/pkg/observability"
	"github.com/matzehuels/typegraph/pkg/record"
	"github.com/matzehuels/typegraph/pkg/snapshot"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = config.AppName

	// storeTimeout bounds connecting to a remote snapshot backend.
	storeTimeout = 10 * time.Second
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	cfg        *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Typegraph edits graphs whose shape is checked by a schema",
		Long:         `Typegraph is a CLI tool for building and inspecting directed graphs of typed nodes and edges. Every change is checked against a schema of allowed node types, edge types and edge multiplicities.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			// The config file may lower the level; --verbose is applied first.
			if level, err := cfg.LogLevel(); err == nil && level < c.Logger.GetLevel() {
				c.SetLogLevel(level)
			}
			observability.NewLogHooks(c.Logger).Install()
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/typegraph/config.toml)")

	// Register all subcommands
	root.AddCommand(c.initCommand())
	root.AddCommand(c.checkCommand())
	root.AddCommand(c.schemaCommand())
	root.AddCommand(c.nodeCommand())
	root.AddCommand(c.edgeCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.snapshotCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Configuration & Stores
// =============================================================================

// config loads the configuration once per process.
func (c *CLI) config() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	c.cfg = cfg
	return cfg, nil
}

// openStore connects to the configured snapshot backend.
func (c *CLI) openStore(ctx context.Context) (snapshot.Store, error) {
	cfg, err := c.config()
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	backend := cfg.Snapshot.Backend
	if backend == "" {
		backend = snapshot.BackendFile
	}
	c.Logger.Debug("opening snapshot store", "backend", backend)

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Connecting to %s store...", backend))
	spinner.Start()
	store, err := snapshot.Open(ctx, cfg.Snapshot)
	if err != nil {
		spinner.StopWithError("Could not open snapshot store")
		return nil, err
	}
	spinner.Stop()
	return store, nil
}

// =============================================================================
// Graph Files
// =============================================================================

// loadGraph reads a graph document, replaying every element through the
// schema it carries.
func (c *CLI) loadGraph(path string) (*record.Graph, error) {
	g, err := record.ImportJSON(path, graph.WithLogger(c.Logger))
	if err != nil {
		return nil, fmt.Errorf("load graph %s: %w", path, err)
	}
	c.Logger.Debug("loaded graph", "path", path, "nodes", g.NodeCount(), "edges", g.EdgeCount())
	return g, nil
}

// saveGraph writes g to path through a temporary file so that a failed
// write never leaves a truncated document behind.
func (c *CLI) saveGraph(g *record.Graph, path string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := record.WriteJSON(g, tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("write graph %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("write graph %s: %w", path, err)
	}
	c.Logger.Debug("saved graph", "path", path, "nodes", g.NodeCount(), "edges", g.EdgeCount())
	return nil
}

// =============================================================================
// Flag Helpers
// =============================================================================

// parseProps turns key=value flags into payload properties. Values that are
// valid JSON (numbers, booleans, quoted strings, arrays, objects) are decoded;
// anything else is kept as a plain string.
func parseProps(pairs []string) (record.Props, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	props := make(record.Props, len(pairs))
	for _, pair := range pairs {
		key, raw, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, errs.New(errs.ErrCodeInvalidInput, "property %q: want key=value", pair)
		}
		var v any
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			v = raw
		}
		props[key] = v
	}
	return props, nil
}
