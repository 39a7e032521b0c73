package main

import (
	"fmt"

	"github.com/aretw0/genson/internal/cli"
	"github.com/aretw0/genson/internal/presentation/graph"
	"github.com/aretw0/genson/pkg/domain"
	"github.com/spf13/cobra"
)

func newGraphCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Export the schema reference graph",
		Long: `Outputs a Mermaid diagram (graph TD) of the references between nodes.
With --trace N, one expansion N levels deep is run first and the nodes it
visited are highlighted.`,
		Args: cobra.NoArgs,
		RunE: runGraph,
	}
	cmd.Flags().Int("trace", 0, "Highlight the nodes visited by an expansion this many levels deep")
	return cmd
}

func runGraph(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := cli.CreateLogger(cfg.LogLevel)
	if err != nil {
		return err
	}

	visited := make(map[string]bool)
	var order []string
	hooks := domain.LifecycleHooks{
		OnNodeExpand: func(e *domain.NodeEvent) {
			if !visited[e.Key] {
				visited[e.Key] = true
				order = append(order, e.Key)
			}
		},
	}

	engine, err := cli.CreateEngine(cfg, logger, hooks)
	if err != nil {
		return err
	}

	var overlay *graph.GraphOverlay
	if trace, _ := cmd.Flags().GetInt("trace"); trace > 0 {
		if _, err := engine.Expand("", trace); err != nil {
			return fmt.Errorf("tracing expansion: %w", err)
		}
		overlay = &graph.GraphOverlay{VisitedNodes: order, Root: engine.Root()}
	}

	fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(engine.Schema(), overlay))
	return nil
}
