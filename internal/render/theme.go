// Package render writes a project's task presenter and tutorial pages.
package render

import (
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"

	"github.com/spf13/afero"
)

//go:embed theme
var embeddedTheme embed.FS

// Theme file layout.
const (
	templateDir = "templates"
	bundleDir   = "bundles"
)

var themeTemplates = []string{"base.html", "presenter.html", "tutorial.html"}

// Theme is a set of page templates and asset bundles.
type Theme struct {
	// Name identifies the theme in logs and build fingerprints.
	Name string
	FS   fs.FS
}

// DefaultTheme returns the theme compiled into the binary.
func DefaultTheme() Theme {
	sub, err := fs.Sub(embeddedTheme, "theme")
	if err != nil {
		panic(err)
	}
	return Theme{Name: "default", FS: sub}
}

// LoadTheme returns the theme located in dir. The directory must provide
// every page template; bundles are looked up when a page is rendered.
func LoadTheme(fsys afero.Fs, dir string) (Theme, error) {
	t := Theme{Name: dir, FS: afero.NewIOFS(afero.NewBasePathFs(fsys, dir))}
	for _, name := range themeTemplates {
		if _, err := fs.Stat(t.FS, path.Join(templateDir, name)); err != nil {
			return Theme{}, fmt.Errorf("theme %s: %w", dir, err)
		}
	}
	return t, nil
}

// Digest writes the path and content of every theme file to w in lexical
// order, so that hashing w identifies the theme's content.
func (t Theme) Digest(w io.Writer) error {
	return fs.WalkDir(t.FS, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := fs.ReadFile(t.FS, p)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\x00%d\x00", p, len(data))
		_, err = w.Write(data)
		return err
	})
}

// bundle returns the content of bundles/<name>.<ext>, or an empty string if
// the theme does not provide it.
func (t Theme) bundle(name, ext string) (string, error) {
	data, err := fs.ReadFile(t.FS, path.Join(bundleDir, name+"."+ext))
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading bundle %s.%s: %w", name, ext, err)
	}
	return string(data), nil
}
