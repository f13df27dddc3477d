// Command gradebotctl is the operator CLI: it compiles the assignment map and
// prints the activity log without going through the HTTP server.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "gradebotctl",
		Short:         "Manage the grading catalog and inspect activity",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().String("config", "config.json", "path to the JSON configuration file")

	root.AddCommand(newCatalogCmd(), newActivityCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
