package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/genson"
	"github.com/aretw0/genson/internal/cli"
	"github.com/aretw0/genson/pkg/domain"
	"github.com/aretw0/genson/pkg/tgl"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newEvalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eval FILE",
		Short: "Evaluate a TGL document",
		Long: `Reads a TGL node (JSON or YAML) and prints the rendered text. Variables
given with --var are visible to the expression as top-level names.`,
		Args: cobra.ExactArgs(1),
		RunE: runEval,
	}
	cmd.Flags().StringToString("var", nil, "Variables bound before evaluation (key=value)")
	cmd.Flags().IntP("count", "n", 1, "Number of renders, one per line")
	return cmd
}

func runEval(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := cli.CreateLogger(cfg.LogLevel)
	if err != nil {
		return err
	}

	node, err := readNode(args[0])
	if err != nil {
		return err
	}

	vars, _ := cmd.Flags().GetStringToString("var")
	count, _ := cmd.Flags().GetInt("count")

	opts, err := cli.EngineOptions(cfg, logger, domain.LifecycleHooks{})
	if err != nil {
		return err
	}
	bound := make(map[string]any, len(vars))
	for k, v := range vars {
		bound[k] = v
	}
	opts = append(opts, genson.WithSchema(domain.NewSchema()), genson.WithVars(bound))

	engine, err := genson.New("", opts...)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for i := 0; i < max(count, 1); i++ {
		text, err := engine.Evaluate(node)
		if err != nil {
			return fmt.Errorf("evaluating %s: %w", filepath.Base(args[0]), err)
		}
		fmt.Fprintln(out, text)
	}
	return nil
}

// readNode decodes a TGL document; YAML is chosen by extension.
func readNode(path string) (tgl.Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var raw any
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
		return tgl.Decode(tgl.Normalize(raw))
	}
	return tgl.DecodeJSON(data)
}
