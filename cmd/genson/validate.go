package main

import (
	"encoding/json"
	"fmt"

	"github.com/aretw0/genson/internal/cli"
	"github.com/aretw0/genson/internal/validator"
	"github.com/aretw0/genson/pkg/domain"
	"github.com/spf13/cobra"
)

func newValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check the schema for consistency",
		Long: `Compiles every node definition, then crawls the schema from its root and
reports dangling references, unreachable nodes and recursive nodes.`,
		Args: cobra.NoArgs,
		RunE: runValidate,
	}
	cmd.Flags().Bool("json", false, "Print the report as JSON")
	return cmd
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := cli.CreateLogger(cfg.LogLevel)
	if err != nil {
		return err
	}

	// 1. Compile (definition errors surface here)
	engine, err := cli.CreateEngine(cfg, logger, domain.LifecycleHooks{})
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	// 2. Crawl
	report, crawlErr := validator.ValidateSchema(engine.Schema(), engine.Root())

	out := cmd.OutOrStdout()
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON && report != nil {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return err
		}
	} else if report != nil {
		fmt.Fprintf(out, "root: %s\n", report.Root)
		fmt.Fprintf(out, "reachable: %d node(s)\n", len(report.Reachable))
		for _, key := range report.Unreachable {
			fmt.Fprintf(out, "unreachable: %s\n", key)
		}
		for _, key := range report.Recursive {
			fmt.Fprintf(out, "recursive: %s\n", key)
		}
	}

	if crawlErr != nil {
		return fmt.Errorf("validation failed: %w", crawlErr)
	}
	fmt.Fprintln(out, "Schema is valid!")
	return nil
}
