// Command gtx-builder builds the task presenters and tutorials of GeoTag-X
// projects.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/afero"

	"github.com/geotagx/gtx-builder/internal/platform/config"
	"github.com/geotagx/gtx-builder/internal/platform/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], afero.NewOsFs(), os.Stdout, os.Stderr))
}

// run executes the command line and returns the process exit code.
func run(ctx context.Context, args []string, fsys afero.Fs, stdout, stderr io.Writer) int {
	cfg, err := config.Load()
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		logging.New(stderr, slog.LevelError, logging.FormatText).Error("failed to load config", "error", err)
		return 1
	}

	root := newRootCmd(&app{cfg: cfg, fs: fsys, stderr: stderr})
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return 1
	}
	return 0
}
