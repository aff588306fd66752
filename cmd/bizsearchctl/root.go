package main

import (
	"github.com/spf13/cobra"

	"github.com/kailas-cloud/bizsearch/internal/version"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "bizsearchctl",
		Short:         "Inspect and run business search queries",
		Long:          "bizsearchctl prepares query text the way the search API does\nand runs searches against the configured Solr core.",
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.SetVersionTemplate("bizsearchctl {{.Version}}\n")

	cmd.AddCommand(
		newPrepCmd(),
		newSearchCmd(),
	)

	return cmd
}
