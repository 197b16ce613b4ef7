package main

import (
	"io"
	"log/slog"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/geotagx/gtx-builder/internal/platform/config"
	"github.com/geotagx/gtx-builder/internal/platform/logging"
)

// app holds what every command shares.
type app struct {
	cfg    *config.Config
	fs     afero.Fs
	stderr io.Writer

	quiet   bool
	verbose bool
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "gtx-builder",
		Short:         "Build GeoTag-X task presenters and tutorials",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			a.setupLogging()
		},
	}
	root.PersistentFlags().BoolVarP(&a.quiet, "quiet", "q", false, "only log errors")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log debug messages")
	root.MarkFlagsMutuallyExclusive("quiet", "verbose")

	root.AddCommand(
		newBuildCmd(a),
		newSummarizeCmd(a),
		newHistoryCmd(a),
	)
	return root
}

func (a *app) setupLogging() {
	level := logging.ParseLevel(a.cfg.Log.Level)
	switch {
	case a.quiet:
		level = slog.LevelError
	case a.verbose:
		level = slog.LevelDebug
	}
	logging.Setup(a.stderr, level, a.cfg.Log.Format)
}
