package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/typegraph/pkg/graph"
	"github.com/matzehuels/typegraph/pkg/record"
	"github.com/matzehuels/typegraph/pkg/snapshot"
)

// snapshotCommand creates the snapshot management command.
func (c *CLI) snapshotCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Save and restore graph snapshots",
		Long: `Save and restore graph snapshots.

Snapshots are stored in the backend named by the [snapshot] section of the
config file: a local directory (default), Redis or MongoDB. Set
TYPEGRAPH_SNAPSHOT_BACKEND to switch backends without editing the file.`,
	}

	cmd.AddCommand(c.snapshotSaveCommand())
	cmd.AddCommand(c.snapshotLoadCommand())
	cmd.AddCommand(c.snapshotListCommand())
	cmd.AddCommand(c.snapshotRemoveCommand())

	return cmd
}

func (c *CLI) snapshotSaveCommand() *cobra.Command {
	var key string

	cmd := &cobra.Command{
		Use:   "save [graph.json]",
		Short: "Store a graph document as a snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), func(store snapshot.Store) error {
				return c.runSnapshotSave(cmd.Context(), store, args[0], key)
			})
		},
	}

	cmd.Flags().StringVarP(&key, "key", "k", "", "snapshot key (default: random UUID)")

	return cmd
}

func (c *CLI) runSnapshotSave(ctx context.Context, store snapshot.Store, path, key string) error {
	g, err := c.loadGraph(path)
	if err != nil {
		return err
	}
	data, err := record.Marshal(g)
	if err != nil {
		return err
	}
	if key == "" {
		key = snapshot.NewKey()
	}
	if err := store.Save(ctx, key, data); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}

	printSuccess("Saved snapshot %s", StyleHighlight.Render(key))
	printDetail("sha256 %s", snapshot.Hash(data)[:12])
	printStats(g.NodeCount(), g.EdgeCount())
	return nil
}

func (c *CLI) snapshotLoadCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "load [key]",
		Short: "Restore a snapshot into a graph document",
		Long: `Restore a snapshot into a graph document.

The snapshot is replayed through its schema before anything is written, so a
snapshot that no longer satisfies its rules is rejected.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), func(store snapshot.Store) error {
				return c.runSnapshotLoad(cmd.Context(), store, args[0], output)
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <key>.json)")

	return cmd
}

func (c *CLI) runSnapshotLoad(ctx context.Context, store snapshot.Store, key, output string) error {
	data, err := store.Load(ctx, key)
	if err != nil {
		return err
	}
	g, err := record.Unmarshal(data, graph.WithLogger(c.Logger))
	if err != nil {
		return fmt.Errorf("snapshot %s: %w", key, err)
	}
	if output == "" {
		output = key + ".json"
	}
	if err := c.saveGraph(g, output); err != nil {
		return err
	}

	printSuccess("Restored snapshot %s", StyleHighlight.Render(key))
	printFile(output)
	printStats(g.NodeCount(), g.EdgeCount())
	return nil
}

func (c *CLI) snapshotListCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List stored snapshots",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), func(store snapshot.Store) error {
				keys, err := store.List(cmd.Context())
				if err != nil {
					return err
				}
				if len(keys) == 0 {
					printInfo("No snapshots")
					return nil
				}
				for _, k := range keys {
					fmt.Fprintln(stdout, k)
				}
				return nil
			})
		},
	}
}

func (c *CLI) snapshotRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "rm [key]",
		Aliases: []string{"remove"},
		Short:   "Delete a snapshot",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), func(store snapshot.Store) error {
				if err := store.Delete(cmd.Context(), args[0]); err != nil {
					return err
				}
				printSuccess("Deleted snapshot %s", StyleHighlight.Render(args[0]))
				return nil
			})
		},
	}
}

// withStore opens the configured store, runs fn and closes the store.
func (c *CLI) withStore(ctx context.Context, fn func(snapshot.Store) error) error {
	store, err := c.openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}
