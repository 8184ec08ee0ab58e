package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ZanzyTHEbar/file-lens/flens/aggregate"
	"github.com/ZanzyTHEbar/file-lens/flens/server"
	"github.com/ZanzyTHEbar/file-lens/flens/service"
	"github.com/ZanzyTHEbar/file-lens/flens/tabular"
)

func newStatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:       fmt.Sprintf("stats <%s>", strings.Join(aggregate.Statistics, "|")),
		Short:     "Print an aggregate view of the indexed root as JSON",
		Args:      cobra.ExactArgs(1),
		ValidArgs: aggregate.Statistics,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			engine, err := store.Engine()
			if err != nil {
				return err
			}
			stat, err := engine.Statistic(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), stat)
		},
	}
}

func newColumnsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "columns <file>",
		Short: "List the columns of a tabular file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := a.openFile(args[0])
			if err != nil {
				return err
			}
			cols, err := f.Columns()
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), cols)
		},
	}
}

func newValuesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "values <file> <column>",
		Short: "List the distinct values of one column",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := a.openFile(args[0])
			if err != nil {
				return err
			}
			set, err := f.DistinctValues(args[1])
			if err != nil {
				return err
			}
			values := set.ToSlice()
			tabular.SortValues(values)
			return printJSON(cmd.OutOrStdout(), values)
		},
	}
}

func newFilterCmd(a *app) *cobra.Command {
	var (
		where      []string
		combinator string
	)
	cmd := &cobra.Command{
		Use:   "filter <file>",
		Short: "Print the rows of a tabular file that match --where predicates",
		Example: `  flens filter sales.csv --where region=north,south --where year=2024
  flens filter sales.parquet --where region=north --where year=2024 --combinator OR`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, err := parseWhere(where)
			if err != nil {
				return err
			}
			comb, err := tabular.ParseCombinator(combinator)
			if err != nil {
				return err
			}
			f, err := a.openFile(args[0])
			if err != nil {
				return err
			}
			tbl, err := f.Filter(spec, comb)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), tbl.Records())
		},
	}
	cmd.Flags().StringArrayVar(&where, "where", nil, "column=value[,value...]; repeat for more columns")
	cmd.Flags().StringVar(&combinator, "combinator", string(tabular.And), "AND or OR")
	return cmd
}

// parseWhere turns col=v1,v2 arguments into a filter spec. Raw values are
// typed the way CSV cells are.
func parseWhere(args []string) (tabular.FilterSpec, error) {
	spec := make(tabular.FilterSpec, len(args))
	for _, arg := range args {
		column, raw, ok := strings.Cut(arg, "=")
		column = strings.TrimSpace(column)
		if !ok || column == "" {
			return nil, fmt.Errorf("invalid --where %q: want column=value[,value...]", arg)
		}
		for _, part := range strings.Split(raw, ",") {
			spec[column] = append(spec[column], tabular.ParseValue(part))
		}
	}
	return spec, nil
}

func newServeCmd(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve statistics and filters over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = a.cfg.Server.Addr
			}

			metrics := server.NewMetrics()
			store, err := a.newStore(service.OnReindex(metrics.ObserveReindex))
			if err != nil {
				return err
			}
			if _, err := store.Reindex(cmd.Context()); err != nil {
				return err
			}

			srv := server.New(store, server.WithMetrics(metrics), server.WithLogger(a.logger))
			return srv.ListenAndServe(cmd.Context(), addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from server.addr)")
	return cmd
}
