package main

import (
	"fmt"
	"io"

	"github.com/aretw0/genson"
	"github.com/aretw0/genson/internal/cli"
	"github.com/aretw0/genson/internal/presentation/tui"
	"github.com/aretw0/genson/pkg/domain"
	"github.com/aretw0/genson/pkg/observability"
	"github.com/spf13/cobra"
)

func newExpandCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "expand [key]",
		Short: "Expand a node into a generated tree",
		Long: `Describes the node (the root when no key is given) and expands it the
requested number of levels. Output is plain text, Markdown or JSON; auto
renders Markdown on a terminal and text otherwise.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runExpand,
	}
	cmd.Flags().IntP("depth", "d", 3, "Levels to expand below the node")
	cmd.Flags().StringP("format", "f", "auto", "Output format: auto, text, markdown, json")
	cmd.Flags().BoolP("watch", "w", false, "Re-expand whenever the schema changes")
	cmd.Flags().Bool("metrics", false, "Print expansion metrics (Prometheus text) to stderr")
	return cmd
}

func runExpand(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := cli.CreateLogger(cfg.LogLevel)
	if err != nil {
		return err
	}

	depth, _ := cmd.Flags().GetInt("depth")
	formatName, _ := cmd.Flags().GetString("format")
	watch, _ := cmd.Flags().GetBool("watch")
	withMetrics, _ := cmd.Flags().GetBool("metrics")

	format, err := tui.ParseFormat(formatName)
	if err != nil {
		return err
	}

	var key string
	if len(args) > 0 {
		key = args[0]
	}

	// 1. Observability
	var hooks domain.LifecycleHooks
	var metrics *observability.Metrics
	if withMetrics {
		if metrics, err = observability.NewMetrics(nil); err != nil {
			return err
		}
		hooks = metrics.Hooks()
	}

	// 2. Engine
	engine, err := cli.CreateEngine(cfg, logger, hooks)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	render := func() error {
		return expandTo(out, engine, key, depth, format)
	}

	// 3. Run
	if watch {
		tui.PrintBanner(cmd.ErrOrStderr(), genson.Version)
		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()
		err = cli.RunWatch(ctx, engine, logger, cmd.ErrOrStderr(), render)
	} else {
		err = render()
	}
	if err != nil {
		return err
	}

	if metrics != nil {
		return metrics.WriteText(cmd.ErrOrStderr())
	}
	return nil
}

func expandTo(w io.Writer, engine *genson.Engine, key string, depth int, format tui.Format) error {
	tree, err := engine.Expand(key, depth)
	if err != nil {
		return fmt.Errorf("expanding %q: %w", key, err)
	}
	return tui.Render(w, tree, format)
}
