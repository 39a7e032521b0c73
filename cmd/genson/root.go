package main

import (
	"fmt"
	"os"

	"github.com/aretw0/genson/internal/config"
	"github.com/spf13/cobra"
)

// newRootCmd assembles the command tree. Each call returns fresh flag state.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "genson",
		Short: "GenSON expands declarative schemas into generated trees",
		Long: `GenSON reads a schema of node definitions (a JSON or YAML file, a directory
of Markdown documents, or a Redis prefix) and expands it into a tree of
descriptors whose titles and lines are rendered with TGL.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Persistent flags (available to all commands)
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Configuration file (default genson.yaml when present)")
	flags.StringP("schema", "s", "", "Schema file or directory")
	flags.String("root", "", "Root node key (default: first key of the schema)")
	flags.Uint64("seed", 0, "Random seed for reproducible output")
	flags.Int("max-depth", 0, "Expansion and TGL recursion ceiling")
	flags.Int("max-iterations", 0, "Ceiling for TGL loops and computed repeat counts")
	flags.Int("continue-ceiling", 0, "Ceiling for continue loops")
	flags.String("line-mode", "", "Line exposure: raw or evaluated")
	flags.String("log-level", "", "Log level: debug, info, warn, error")
	flags.String("redis-addr", "", "Redis address holding a published schema")
	flags.String("redis-prefix", "", "Key prefix of the published schema")

	rootCmd.AddCommand(
		newExpandCmd(),
		newEvalCmd(),
		newValidateCmd(),
		newGraphCmd(),
		newPublishCmd(),
		newVersionCmd(),
	)
	return rootCmd
}

// Execute runs the CLI and exits non-zero on failure.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// resolveConfig reads the configuration file and applies explicit flags over it.
func resolveConfig(cmd *cobra.Command) (config.Config, error) {
	flags := cmd.Flags()

	path, _ := flags.GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}

	if flags.Changed("schema") {
		cfg.Schema, _ = flags.GetString("schema")
	}
	if flags.Changed("root") {
		cfg.Root, _ = flags.GetString("root")
	}
	if flags.Changed("seed") {
		seed, _ := flags.GetUint64("seed")
		cfg.Seed = &seed
	}
	if flags.Changed("max-depth") {
		cfg.MaxDepth, _ = flags.GetInt("max-depth")
	}
	if flags.Changed("max-iterations") {
		cfg.MaxIterations, _ = flags.GetInt("max-iterations")
	}
	if flags.Changed("continue-ceiling") {
		cfg.ContinueCeiling, _ = flags.GetInt("continue-ceiling")
	}
	if flags.Changed("line-mode") {
		cfg.LineMode, _ = flags.GetString("line-mode")
	}
	if flags.Changed("log-level") {
		cfg.LogLevel, _ = flags.GetString("log-level")
	}
	if flags.Changed("redis-addr") {
		cfg.Redis.Addr, _ = flags.GetString("redis-addr")
	}
	if flags.Changed("redis-prefix") {
		cfg.Redis.Prefix, _ = flags.GetString("redis-prefix")
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
