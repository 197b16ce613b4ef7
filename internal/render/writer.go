package render

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"path"
	"path/filepath"

	"github.com/Masterminds/sprig/v3"
	"github.com/spf13/afero"
	"github.com/tdewolff/minify/v2"

	"github.com/geotagx/gtx-builder/internal/locale"
	"github.com/geotagx/gtx-builder/internal/project"
	"github.com/geotagx/gtx-builder/internal/questionnaire"
	"github.com/geotagx/gtx-builder/internal/tutorial"
)

// Output file names, written to the project directory.
const (
	PresenterFile = "template.html"
	TutorialFile  = "tutorial.html"
)

// ErrOutputExists is returned when a page would overwrite an existing file
// and overwriting was not requested.
var ErrOutputExists = errors.New("output already exists")

// Options controls how pages are written.
type Options struct {
	// Force overwrites existing pages.
	Force bool
	// Compress minifies the pages and their inlined assets.
	Compress bool
}

// Page is a rendered HTML page.
type Page struct {
	Name string
	HTML []byte
}

// Writer renders projects with a theme. It is safe for concurrent use.
type Writer struct {
	theme     Theme
	presenter *template.Template
	tutorial  *template.Template
	minifier  *minify.M
}

// NewWriter parses the theme's page templates.
func NewWriter(theme Theme) (*Writer, error) {
	presenter, err := parsePage(theme, "presenter.html")
	if err != nil {
		return nil, err
	}
	tut, err := parsePage(theme, "tutorial.html")
	if err != nil {
		return nil, err
	}
	return &Writer{theme: theme, presenter: presenter, tutorial: tut, minifier: newMinifier()}, nil
}

// Theme returns the writer's theme.
func (w *Writer) Theme() Theme {
	return w.theme
}

func parsePage(theme Theme, name string) (*template.Template, error) {
	funcs := sprig.FuncMap()
	funcs["localize"] = func(locale.Text) string { return "" }
	funcs["safeHTML"] = func(s string) template.HTML { return template.HTML(s) }
	funcs["safeCSS"] = func(s string) template.CSS { return template.CSS(s) }
	funcs["safeJS"] = func(s string) template.JS { return template.JS(s) }

	t, err := template.New(name).Funcs(funcs).ParseFS(theme.FS,
		path.Join(templateDir, "base.html"),
		path.Join(templateDir, name))
	if err != nil {
		return nil, fmt.Errorf("parsing theme %s: %w", theme.Name, err)
	}
	return t, nil
}

type localeEntry struct {
	Code string
	Name string
}

// pageData is the data a page template is executed with.
type pageData struct {
	Page         string
	Project      *project.Project
	Locale       string
	Locales      []localeEntry
	Multilingual bool
	Questions    []*questionnaire.Question
	Flow         questionnaire.Flow
	Exercises    []tutorial.Exercise
	Assets       Assets
}

// Render renders the task presenter and, when the project has a tutorial,
// the tutorial page.
func (w *Writer) Render(p *project.Project, compress bool) ([]Page, error) {
	bundles := p.AssetBundles()
	assets, err := CollectAssets(w.theme, p, bundles)
	if err != nil {
		return nil, err
	}

	data := pageData{
		Page:         "presenter",
		Project:      p,
		Locale:       p.Locale.Default,
		Multilingual: p.Locale.IsMultilingual(),
		Questions:    p.Questionnaire.Questions(),
		Flow:         p.Questionnaire.FlowTable(),
		Assets:       assets,
	}
	for _, code := range p.Locale.Codes() {
		data.Locales = append(data.Locales, localeEntry{Code: code, Name: p.Locale.Available[code]})
	}

	presenter, err := w.execute(w.presenter, p, data, compress)
	if err != nil {
		return nil, fmt.Errorf("rendering %s: %w", PresenterFile, err)
	}
	pages := []Page{{Name: PresenterFile, HTML: presenter}}

	if p.Tutorial == nil {
		return pages, nil
	}
	data.Page = "tutorial"
	data.Exercises = p.Tutorial.Exercises()
	if data.Assets, err = CollectAssets(w.theme, p, append(bundles, BundleTutorial)); err != nil {
		return nil, err
	}
	tut, err := w.execute(w.tutorial, p, data, compress)
	if err != nil {
		return nil, fmt.Errorf("rendering %s: %w", TutorialFile, err)
	}
	return append(pages, Page{Name: TutorialFile, HTML: tut}), nil
}

func (w *Writer) execute(page *template.Template, p *project.Project, data pageData, compress bool) ([]byte, error) {
	t, err := page.Clone()
	if err != nil {
		return nil, err
	}
	t.Funcs(template.FuncMap{"localize": p.Localize})

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "base", data); err != nil {
		return nil, err
	}
	if !compress {
		return buf.Bytes(), nil
	}

	var out bytes.Buffer
	if err := w.minifier.Minify("text/html", &out, &buf); err != nil {
		return nil, fmt.Errorf("minifying: %w", err)
	}
	return out.Bytes(), nil
}

// Write renders the project's pages to its directory and returns the paths
// written. Without opts.Force, existing pages are left untouched and
// ErrOutputExists is returned.
func (w *Writer) Write(fsys afero.Fs, p *project.Project, opts Options) ([]string, error) {
	if !opts.Force {
		for _, name := range PageNames(p) {
			target := filepath.Join(p.Path, name)
			exists, err := afero.Exists(fsys, target)
			if err != nil {
				return nil, fmt.Errorf("checking %s: %w", target, err)
			}
			if exists {
				return nil, fmt.Errorf("the directory '%s' already contains %s; set the force flag to overwrite it: %w", p.Path, name, ErrOutputExists)
			}
		}
	}

	pages, err := w.Render(p, opts.Compress)
	if err != nil {
		return nil, err
	}

	written := make([]string, 0, len(pages))
	for _, page := range pages {
		target := filepath.Join(p.Path, page.Name)
		if err := afero.WriteFile(fsys, target, page.HTML, 0o644); err != nil {
			return written, fmt.Errorf("writing %s: %w", target, err)
		}
		slog.Debug("page written", "path", target, "bytes", len(page.HTML))
		written = append(written, target)
	}

	if opts.Force && p.Tutorial == nil {
		stale := filepath.Join(p.Path, TutorialFile)
		if err := fsys.Remove(stale); err == nil {
			slog.Info("removed tutorial page of a project without a tutorial", "path", stale)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return written, fmt.Errorf("removing %s: %w", stale, err)
		}
	}
	return written, nil
}

// PageNames returns the names of the pages rendered for p.
func PageNames(p *project.Project) []string {
	if p.Tutorial == nil {
		return []string{PresenterFile}
	}
	return []string{PresenterFile, TutorialFile}
}
