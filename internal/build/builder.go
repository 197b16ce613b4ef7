// Package build builds batches of projects.
package build

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/geotagx/gtx-builder/internal/history"
	"github.com/geotagx/gtx-builder/internal/platform/cache"
	"github.com/geotagx/gtx-builder/internal/project"
	"github.com/geotagx/gtx-builder/internal/render"
)

// Options controls a batch build.
type Options struct {
	// Force overwrites existing pages.
	Force bool
	// Compress minifies the pages.
	Compress bool
	// Workers bounds the number of projects built concurrently.
	Workers int
}

// Result is the outcome of building one project.
type Result struct {
	Path    string
	Slug    string
	Outcome history.Outcome
	Digest  string
	Pages   []string
	// Project is nil when the project could not be loaded.
	Project  *project.Project
	Err      error
	Duration time.Duration
}

// Report lists the results of a batch build, in input order.
type Report struct {
	Results []Result
}

// Failed returns the number of projects that could not be built.
func (r Report) Failed() int {
	n := 0
	for _, res := range r.Results {
		if res.Outcome == history.Failed {
			n++
		}
	}
	return n
}

// Count returns the number of results with the given outcome.
func (r Report) Count(outcome history.Outcome) int {
	n := 0
	for _, res := range r.Results {
		if res.Outcome == outcome {
			n++
		}
	}
	return n
}

// Builder loads, validates and renders projects.
type Builder struct {
	fs           afero.Fs
	writer       *render.Writer
	fingerprints cache.Fingerprints
	history      history.Store
	opts         Options
}

// New creates a builder. fingerprints may be nil, in which case every
// project is rebuilt. A nil store keeps the history in memory.
func New(fsys afero.Fs, writer *render.Writer, fingerprints cache.Fingerprints, store history.Store, opts Options) *Builder {
	if store == nil {
		store = history.NewMemoryStore()
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Builder{fs: fsys, writer: writer, fingerprints: fingerprints, history: store, opts: opts}
}

// Build builds the projects located in paths. Paths resolving to the same
// directory are built once. A project that fails to build never prevents the
// others from being built.
func (b *Builder) Build(ctx context.Context, paths []string) Report {
	dirs := b.dedupe(paths)
	results := make([]Result, len(dirs))

	var done atomic.Int32
	g := new(errgroup.Group)
	g.SetLimit(b.opts.Workers)
	for i, dir := range dirs {
		g.Go(func() error {
			results[i] = b.buildOne(ctx, dir)
			slog.Debug("build progress", "done", done.Add(1), "total", len(dirs))
			return nil
		})
	}
	_ = g.Wait()

	return Report{Results: results}
}

func (b *Builder) buildOne(ctx context.Context, dir string) Result {
	start := time.Now()
	res := Result{Path: dir, Slug: filepath.Base(dir)}

	res.Outcome, res.Err = b.run(ctx, &res)
	res.Duration = time.Since(start)

	logger := slog.With("project", dir, "slug", res.Slug, "duration", res.Duration)
	switch res.Outcome {
	case history.Failed:
		logger.Error("build failed", "error", res.Err)
	case history.Skipped:
		logger.Info("project unchanged, skipping")
	default:
		logger.Info("project built", "pages", len(res.Pages))
	}

	b.record(ctx, res)
	return res
}

func (b *Builder) run(ctx context.Context, res *Result) (history.Outcome, error) {
	if err := ctx.Err(); err != nil {
		return history.Failed, err
	}

	p, err := project.Load(b.fs, res.Path)
	if err != nil {
		return history.Failed, err
	}
	res.Project = p
	res.Slug = p.ShortName

	res.Digest, err = Fingerprint(b.fs, res.Path, b.writer.Theme(), b.opts.Compress)
	if err != nil {
		return history.Failed, fmt.Errorf("fingerprinting: %w", err)
	}

	force := b.opts.Force
	if b.fingerprints != nil {
		previous, ok, err := b.fingerprints.Get(ctx, res.Path)
		if err != nil {
			slog.Warn("fingerprint cache unavailable", "project", res.Path, "error", err)
		}
		if ok && previous == res.Digest && !b.opts.Force && b.outputsExist(p) {
			return history.Skipped, nil
		}
		// Pages recorded in the cache were written by a previous build.
		force = force || ok
	}

	res.Pages, err = b.writer.Write(b.fs, p, render.Options{Force: force, Compress: b.opts.Compress})
	if err != nil {
		return history.Failed, err
	}

	if b.fingerprints != nil {
		if err := b.fingerprints.Set(ctx, res.Path, res.Digest); err != nil {
			slog.Warn("could not record fingerprint", "project", res.Path, "error", err)
		}
	}
	return history.Built, nil
}

func (b *Builder) outputsExist(p *project.Project) bool {
	for _, name := range render.PageNames(p) {
		if ok, err := afero.Exists(b.fs, filepath.Join(p.Path, name)); err != nil || !ok {
			return false
		}
	}
	return true
}

func (b *Builder) record(ctx context.Context, res Result) {
	r := history.Record{
		Project:  res.Path,
		Slug:     res.Slug,
		Outcome:  res.Outcome,
		Digest:   res.Digest,
		Pages:    res.Pages,
		Duration: res.Duration,
		BuiltAt:  time.Now(),
	}
	if res.Err != nil {
		r.Error = res.Err.Error()
	}
	if err := b.history.Record(context.WithoutCancel(ctx), r); err != nil {
		slog.Warn("could not record build history", "project", res.Path, "error", err)
	}
}

// dedupe returns the canonical form of each distinct path, in input order.
func (b *Builder) dedupe(paths []string) []string {
	seen := make(map[string]bool, len(paths))
	dirs := make([]string, 0, len(paths))
	for _, path := range paths {
		dir := b.canonical(path)
		if seen[dir] {
			slog.Debug("skipping duplicate project path", "path", path, "resolved", dir)
			continue
		}
		seen[dir] = true
		dirs = append(dirs, dir)
	}
	return dirs
}

// canonical resolves path to an absolute path, following symbolic links on
// the operating system's file system.
func (b *Builder) canonical(path string) string {
	dir, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	if _, ok := b.fs.(*afero.OsFs); ok {
		if real, err := filepath.EvalSymlinks(dir); err == nil {
			return real
		} else if !errors.Is(err, fs.ErrNotExist) {
			slog.Debug("could not resolve path", "path", dir, "error", err)
		}
	}
	return dir
}
