package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/geotagx/gtx-builder/internal/build"
	"github.com/geotagx/gtx-builder/internal/history"
	"github.com/geotagx/gtx-builder/internal/platform/cache"
	"github.com/geotagx/gtx-builder/internal/platform/database"
	"github.com/geotagx/gtx-builder/internal/render"
	"github.com/geotagx/gtx-builder/internal/summary"
)

type buildFlags struct {
	compress  bool
	force     bool
	summarize bool
	theme     string
}

func newBuildCmd(a *app) *cobra.Command {
	var flags buildFlags
	cmd := &cobra.Command{
		Use:   "build PATH...",
		Short: "Build the projects located in the given directories",
		Long: "Build writes template.html and, when the project has a tutorial, tutorial.html\n" +
			"to each project directory. Existing pages are only replaced with --force,\n" +
			"or when a fingerprint cache shows they were written by a previous build.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runBuild(cmd, args, flags)
		},
	}
	cmd.Flags().BoolVarP(&flags.compress, "compress", "c", false, "minify the generated pages")
	cmd.Flags().BoolVarP(&flags.force, "force", "f", false, "overwrite existing pages")
	cmd.Flags().BoolVarP(&flags.summarize, "summarize", "s", false, "print an overview of each project")
	cmd.Flags().StringVarP(&flags.theme, "theme", "t", "", "use the theme located in `DIR`")
	return cmd
}

func (a *app) runBuild(cmd *cobra.Command, paths []string, flags buildFlags) error {
	ctx := cmd.Context()

	theme, err := a.theme(flags.theme)
	if err != nil {
		return err
	}
	writer, err := render.NewWriter(theme)
	if err != nil {
		return err
	}

	fingerprints, closeCache := a.fingerprints(ctx)
	defer closeCache()

	// A build never fails because its history cannot be kept.
	store, closeStore, err := a.historyStore(ctx)
	if err != nil {
		slog.Warn("build history unavailable, keeping it in memory", "error", err)
		store, closeStore = history.NewMemoryStore(), func() {}
	}
	defer closeStore()

	builder := build.New(a.fs, writer, fingerprints, store, build.Options{
		Force:    flags.force,
		Compress: flags.compress || a.cfg.Build.Compress,
		Workers:  a.cfg.Build.Workers,
	})
	report := builder.Build(ctx, paths)

	out := cmd.OutOrStdout()
	if flags.summarize {
		for _, res := range report.Results {
			if res.Project == nil {
				continue
			}
			if err := summary.Text(out, res.Project); err != nil {
				return err
			}
			fmt.Fprintln(out)
		}
	}
	if !a.quiet {
		fmt.Fprintf(out, "%d built, %d skipped, %d failed\n",
			report.Count(history.Built), report.Count(history.Skipped), report.Failed())
	}

	if n := report.Failed(); n > 0 {
		return fmt.Errorf("%d of %d projects failed to build", n, len(report.Results))
	}
	return nil
}

func (a *app) theme(flag string) (render.Theme, error) {
	dir := flag
	if dir == "" {
		dir = a.cfg.Build.ThemePath
	}
	if dir == "" {
		return render.DefaultTheme(), nil
	}
	slog.Debug("using custom theme", "path", dir)
	return render.LoadTheme(a.fs, dir)
}

// fingerprints returns the configured fingerprint cache and a function
// releasing it. It returns nil, so that every project is rebuilt, when no
// cache is configured or the cache cannot be reached.
func (a *app) fingerprints(ctx context.Context) (cache.Fingerprints, func()) {
	if a.cfg.Cache.URL == "" {
		return nil, func() {}
	}
	c, err := cache.New(ctx, a.cfg.Cache.URL, time.Duration(a.cfg.Cache.TTLHours)*time.Hour)
	if err != nil {
		slog.Warn("fingerprint cache unavailable, rebuilding every project", "error", err)
		return nil, func() {}
	}
	return c, func() { c.Close() }
}

// historyStore returns the configured history store and a function releasing it.
func (a *app) historyStore(ctx context.Context) (history.Store, func(), error) {
	if a.cfg.Database.URL == "" {
		return history.NewMemoryStore(), func() {}, nil
	}

	db, err := database.New(ctx, a.cfg.Database.URL, a.cfg.Database.MaxConns, a.cfg.Database.MinConns)
	if err != nil {
		return nil, nil, err
	}
	store, err := history.NewPostgresStore(db.Pool)
	if err == nil {
		err = store.Migrate(ctx)
	}
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	return store, db.Close, nil
}
