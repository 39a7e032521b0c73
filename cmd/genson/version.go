package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/genson"
	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of genson",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "genson version %s\n", strings.TrimSpace(genson.Version))
		},
	}
}
