package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/bizsearch/internal/app"
	"github.com/kailas-cloud/bizsearch/internal/config"
	"github.com/kailas-cloud/bizsearch/internal/db/solr"
	"github.com/kailas-cloud/bizsearch/internal/domain/search/dash"
	"github.com/kailas-cloud/bizsearch/internal/domain/search/request"
	logpkg "github.com/kailas-cloud/bizsearch/internal/logger"
	businessuc "github.com/kailas-cloud/bizsearch/internal/usecase/business"
)

type searchOpts struct {
	env     string
	start   int
	rows    int
	verbose bool
}

// newSearchCmd creates the "bizsearchctl search" subcommand.
func newSearchCmd() *cobra.Command {
	opts := searchOpts{}

	cmd := &cobra.Command{
		Use:   "search <text>",
		Short: "Run a business name/number search and print JSON",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.env == "" {
				opts.env = config.GetEnv()
			}
			return runSearch(cmd.Context(), cmd.OutOrStdout(), strings.Join(args, " "), opts)
		},
	}

	cmd.Flags().StringVar(&opts.env, "env", "", "config environment (default: $ENV or local)")
	cmd.Flags().IntVar(&opts.start, "start", 0, "result offset")
	cmd.Flags().IntVar(&opts.rows, "rows", 0, "page size (default: config search.default_rows)")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "log Solr retries to stderr")

	return cmd
}

func runSearch(ctx context.Context, w io.Writer, text string, opts searchOpts) error {
	cfg, err := config.Load(opts.env)
	if err != nil {
		return err
	}

	logger := zap.NewNop()
	if opts.verbose {
		if logger, err = logpkg.New("local", "debug"); err != nil {
			return err
		}
	}
	ctx = logpkg.ContextWithLogger(ctx, logger)

	a, err := app.New(cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	rows := opts.rows
	if rows <= 0 {
		rows = cfg.Search.DefaultRows
	}
	params, err := request.New(request.Input{
		Query:           map[string]string{request.ValueKey: text},
		FullQueryBoosts: request.NameBoosts(solr.PrepareQuery(text, dash.None, true)),
		Start:           opts.start,
		Rows:            min(rows, cfg.Search.MaxRows),
	}, a.Profile)
	if err != nil {
		return err
	}

	res, err := a.Search.Search(ctx, params)
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(businessuc.ToResult(res, params))
}
