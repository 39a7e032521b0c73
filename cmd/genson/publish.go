package main

import (
	"fmt"

	"github.com/aretw0/genson/internal/cli"
	"github.com/aretw0/genson/pkg/domain"
	"github.com/spf13/cobra"
)

func newPublishCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "publish",
		Short: "Publish a schema to Redis",
		Long: `Compiles the schema named by --schema and, when it is valid, copies every
node definition to Redis under --redis-prefix, replacing what was there.`,
		Args: cobra.NoArgs,
		RunE: runPublish,
	}
}

func runPublish(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.Schema == "" || cfg.Redis.Addr == "" {
		return fmt.Errorf("publish needs both --schema and --redis-addr")
	}
	logger, err := cli.CreateLogger(cfg.LogLevel)
	if err != nil {
		return err
	}

	// 1. Load & compile the source so broken schemas are never published
	source := cfg
	source.Redis.Addr = ""
	engine, err := cli.CreateEngine(source, logger, domain.LifecycleHooks{})
	if err != nil {
		return err
	}

	// 2. Publish
	target := cli.OpenRedis(cfg.Redis)
	defer target.Close()

	n, err := target.Publish(cmd.Context(), engine.Loader())
	if err != nil {
		return err
	}
	logger.Info("Schema published", "nodes", n, "addr", cfg.Redis.Addr)
	fmt.Fprintf(cmd.OutOrStdout(), "Published %d node(s) to %s\n", n, cfg.Redis.Addr)
	return nil
}
