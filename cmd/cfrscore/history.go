package main

import (
	"errors"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dshills/cfrscore/internal/history"
	"github.com/dshills/cfrscore/internal/render"
)

func newHistoryCmd(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List saved evaluations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openHistory(cmd, a)
			if err != nil {
				return err
			}
			defer store.Close()

			records, err := store.List(cmd.Context(), limit)
			if err != nil {
				return exitError(exitGeneric, "%v", err)
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tDATE\tSCORE\tRATING\tDOCUMENT\tHEADING")
			for _, r := range records {
				fmt.Fprintf(w, "%d\t%s\t%d\t%s\t%s\t%s\n",
					r.ID, r.CreatedAt.Format("2006-01-02 15:04"), r.Score, r.Rating, r.Document, r.Heading)
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of evaluations to list (0 for all)")

	var format string
	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Re-render a saved evaluation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return exitError(exitInput, "invalid id %q", args[0])
			}
			store, err := openHistory(cmd, a)
			if err != nil {
				return err
			}
			defer store.Close()

			rec, err := store.Get(cmd.Context(), id)
			if errors.Is(err, history.ErrNotFound) {
				return exitError(exitInput, "%v", err)
			}
			if err != nil {
				return exitError(exitGeneric, "%v", err)
			}
			if !cmd.Flags().Changed("format") {
				format = a.cfg.Output.Format
			}
			out, err := render.Render(rec.Result, format)
			if err != nil {
				return exitError(exitInput, "%v", err)
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
	show.Flags().StringVar(&format, "format", "", "Output format: json, md, html or text (default from config)")
	cmd.AddCommand(show)
	return cmd
}

func openHistory(cmd *cobra.Command, a *app) (*history.Store, error) {
	store, err := history.Open(cmd.Context(), history.Driver(a.cfg.History.Driver), a.cfg.History.DSN)
	if err != nil {
		return nil, exitError(exitGeneric, "failed to open history: %v", err)
	}
	return store, nil
}
