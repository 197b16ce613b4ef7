package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/geotagx/gtx-builder/internal/history"
)

func newHistoryCmd(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history SLUG",
		Short: "List the latest builds of a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if a.cfg.Database.URL == "" {
				return fmt.Errorf("build history is only kept across runs when GTX_DATABASE_URL is set")
			}

			store, closeStore, err := a.historyStore(ctx)
			if err != nil {
				return err
			}
			defer closeStore()

			records, err := store.Recent(ctx, args[0], limit)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "no builds recorded for %s\n", args[0])
				return nil
			}
			return printRecords(cmd, records)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", history.DefaultLimit, "number of builds to list")
	return cmd
}

func printRecords(cmd *cobra.Command, records []history.Record) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "WHEN\tOUTCOME\tDURATION\tDIGEST\tERROR")
	for _, r := range records {
		digest := r.Digest
		if len(digest) > 12 {
			digest = digest[:12]
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			r.BuiltAt.Local().Format(time.DateTime), r.Outcome, r.Duration.Round(time.Millisecond), digest, r.Error)
	}
	return w.Flush()
}
