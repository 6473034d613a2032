package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/matzehuels/typegraph/internal/server"
	"github.com/matzehuels/typegraph/pkg/snapshot"
)

// serveCommand creates the serve command, which exposes a graph over HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr        string
		noSnapshots bool
		writeBack   bool
	)

	cmd := &cobra.Command{
		Use:   "serve [graph.json]",
		Short: "Serve a graph document over HTTP",
		Long: `Serve a graph document over HTTP.

The document is loaded once and kept in memory. All changes go through the
same schema checks as the node and edge commands. With --write-back the final
graph is written to the document when the server stops.

Routes:
  GET    /graph
  GET    /nodes                PUT /nodes
  GET    /nodes/{id}           DELETE /nodes/{id}
  GET    /nodes/{id}/edges     ?direction=out|in|both&type=T
  POST   /edges
  GET    /edges/{id}           DELETE /edges/{id}
  GET    /snapshots            POST /snapshots
  POST   /snapshots/{key}/restore`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				cfg, err := c.config()
				if err != nil {
					return err
				}
				addr = cfg.Server.Addr
			}
			return c.runServe(cmd.Context(), args[0], addr, !noSnapshots, writeBack)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().BoolVar(&noSnapshots, "no-snapshots", false, "disable the snapshot routes")
	cmd.Flags().BoolVar(&writeBack, "write-back", false, "write the graph back to the document on shutdown")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, path, addr string, snapshots, writeBack bool) error {
	g, err := c.loadGraph(path)
	if err != nil {
		return err
	}

	var store snapshot.Store
	if snapshots {
		store, err = c.openStore(ctx)
		if err != nil {
			return err
		}
		defer store.Close()
	}

	srv := server.New(g, store, server.WithLogger(c.Logger))
	printInfo("Serving %s on %s", StyleHighlight.Render(path), StyleValue.Render(addr))
	printStats(g.NodeCount(), g.EdgeCount())

	if err := srv.ListenAndServe(ctx, addr); err != nil {
		return err
	}

	if writeBack {
		final := srv.Graph()
		if err := c.saveGraph(final, path); err != nil {
			return err
		}
		printSuccess("Wrote graph back")
		printFile(path)
		printStats(final.NodeCount(), final.EdgeCount())
	}
	return nil
}
