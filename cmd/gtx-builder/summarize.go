package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/geotagx/gtx-builder/internal/project"
	"github.com/geotagx/gtx-builder/internal/summary"
)

func newSummarizeCmd(a *app) *cobra.Command {
	var xlsx string
	cmd := &cobra.Command{
		Use:   "summarize PATH...",
		Short: "Print an overview of the projects located in the given directories",
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.MinimumNArgs(1)(cmd, args); err != nil {
				return err
			}
			if xlsx != "" && len(args) > 1 {
				return fmt.Errorf("--xlsx exports a single project, got %d paths", len(args))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			var errs []error
			for i, path := range args {
				p, err := project.Load(a.fs, path)
				if err != nil {
					slog.Error("could not load project", "project", path, "error", err)
					errs = append(errs, fmt.Errorf("%s: %w", path, err))
					continue
				}
				if i > 0 {
					fmt.Fprintln(out)
				}
				if err := summary.Text(out, p); err != nil {
					return err
				}
				if xlsx != "" {
					if err := summary.WriteWorkbook(p, xlsx); err != nil {
						return err
					}
					slog.Info("workbook written", "path", xlsx)
				}
			}
			return errors.Join(errs...)
		},
	}
	cmd.Flags().StringVar(&xlsx, "xlsx", "", "export the questionnaire to the spreadsheet `FILE`")
	return cmd
}
