package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/bizsearch/internal/db/solr"
	"github.com/kailas-cloud/bizsearch/internal/domain/search/dash"
)

// newPrepCmd creates the "bizsearchctl prep" subcommand.
func newPrepCmd() *cobra.Command {
	var (
		dashMode string
		noAnd    bool
	)

	cmd := &cobra.Command{
		Use:   "prep <text>",
		Short: "Print query text after Solr sanitizing",
		Long: `Lowercases, strips and escapes Solr syntax, and rewrites dashes.

Dash modes:
  none            - leave dashes alone (default)
  replace         - dash becomes a space
  remove          - dash is dropped
  pad             - a-b becomes a - b
  tighten         - a - b becomes a-b
  tighten-remove  - a - b becomes ab`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := dash.Parse(dashMode)
			if err != nil {
				return err
			}
			return runPrep(cmd.OutOrStdout(), strings.Join(args, " "), mode, !noAnd)
		},
	}

	cmd.Flags().StringVar(&dashMode, "dash", "none", "dash handling mode")
	cmd.Flags().BoolVar(&noAnd, "no-and", false, "keep & and + instead of rewriting them to \"and\"")

	return cmd
}

func runPrep(w io.Writer, text string, mode dash.Mode, replaceAnd bool) error {
	_, err := fmt.Fprintln(w, solr.PrepareQuery(text, mode, replaceAnd))
	return err
}
