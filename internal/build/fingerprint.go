package build

import (
	"encoding/hex"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/afero"
	"golang.org/x/crypto/blake2b"

	"github.com/geotagx/gtx-builder/internal/project"
	"github.com/geotagx/gtx-builder/internal/render"
)

// fingerprintVersion changes whenever the rendered output of identical
// inputs may change.
const fingerprintVersion = "gtx-builder/1"

// Fingerprint digests everything a build of the project in dir depends on:
// its input files, the theme and the compression flag.
func Fingerprint(fsys afero.Fs, dir string, theme render.Theme, compress bool) (string, error) {
	h, err := blake2b.New256(nil)
	if err != nil {
		return "", err
	}
	fmt.Fprintf(h, "%s\x00compress=%t\x00theme=%s\x00", fingerprintVersion, compress, theme.Name)
	if err := theme.Digest(h); err != nil {
		return "", fmt.Errorf("digesting theme: %w", err)
	}

	sources, err := project.Sources(fsys, dir)
	if err != nil {
		return "", err
	}
	for _, path := range sources {
		if err := digestFile(h, fsys, dir, path); err != nil {
			return "", err
		}
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func digestFile(w io.Writer, fsys afero.Fs, dir, path string) error {
	f, err := fsys.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	rel, err := filepath.Rel(dir, path)
	if err != nil {
		rel = path
	}
	fmt.Fprintf(w, "%s\x00", filepath.ToSlash(rel))
	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	_, err = w.Write([]byte{0})
	return err
}
