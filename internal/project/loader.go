package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/geotagx/gtx-builder/internal/validation"
)

// Configuration file names, in lookup order.
var (
	ProjectFiles  = []string{"project.json", "project.yaml", "project.yml"}
	TutorialFiles = []string{"tutorial.json", "tutorial.yaml", "tutorial.yml"}
)

const (
	helpDir = "help"
	cssFile = "project.css"
	jsFile  = "project.js"
)

// Load reads, validates and returns the project located in dir. Help files
// found in dir/help are attached to the question whose key matches the file name.
func Load(fsys afero.Fs, dir string) (*Project, error) {
	info, err := fsys.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("opening project directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("the path '%s' does not point to a directory", dir)
	}

	configFile, raw, err := readConfiguration(fsys, dir, ProjectFiles)
	if err != nil {
		return nil, err
	}
	if configFile == "" {
		return nil, fmt.Errorf("the directory '%s' does not contain a project configuration file: %w", dir, fs.ErrNotExist)
	}
	config, ok := raw.(map[string]any)
	if !ok {
		return nil, validation.Errorf("project", "the configuration in %s must be a dictionary", configFile)
	}
	if err := CheckSchema(config); err != nil {
		return nil, err
	}

	tutorialConfig, err := loadTutorialConfiguration(fsys, dir)
	if err != nil {
		return nil, err
	}

	p, err := New(dir, config, tutorialConfig)
	if err != nil {
		return nil, err
	}
	p.ConfigFile = configFile

	if err := attachHelp(fsys, dir, p); err != nil {
		return nil, err
	}
	if p.CSS, err = readOptional(fsys, filepath.Join(dir, cssFile)); err != nil {
		return nil, err
	}
	if p.JS, err = readOptional(fsys, filepath.Join(dir, jsFile)); err != nil {
		return nil, err
	}
	return p, nil
}

// Sources returns the paths of every file Load reads for the project in dir,
// in a stable order.
func Sources(fsys afero.Fs, dir string) ([]string, error) {
	var sources []string
	for _, name := range append(append(append([]string{}, ProjectFiles...), TutorialFiles...), cssFile, jsFile) {
		path := filepath.Join(dir, name)
		if ok, err := afero.Exists(fsys, path); err != nil {
			return nil, err
		} else if ok {
			sources = append(sources, path)
		}
	}

	entries, err := afero.ReadDir(fsys, filepath.Join(dir, helpDir))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("reading help directory: %w", err)
	}
	for _, e := range entries {
		if !e.IsDir() && isHelpFile(e.Name()) {
			sources = append(sources, filepath.Join(dir, helpDir, e.Name()))
		}
	}
	return sources, nil
}

func loadTutorialConfiguration(fsys afero.Fs, dir string) (any, error) {
	file, raw, err := readConfiguration(fsys, dir, TutorialFiles)
	if err != nil || file == "" {
		return nil, err
	}
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, validation.Errorf("tutorial", "the configuration in %s must be a dictionary", file)
	}
	for _, key := range []string{"exercises", "tutorial"} {
		if exercises, ok := m[key]; ok {
			if exercises == nil {
				return []any{}, nil
			}
			return exercises, nil
		}
	}
	return nil, validation.Errorf("tutorial", "%s has no 'exercises' field", file)
}

// readConfiguration decodes the first existing file among names. It returns
// an empty file name if none exists.
func readConfiguration(fsys afero.Fs, dir string, names []string) (string, any, error) {
	for _, name := range names {
		path := filepath.Join(dir, name)
		data, err := afero.ReadFile(fsys, path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return "", nil, fmt.Errorf("reading %s: %w", path, err)
		}

		v, err := decode(name, data)
		if err != nil {
			return "", nil, validation.Errorf(name, "%v", err)
		}
		slog.Debug("configuration loaded", "path", path)
		return name, v, nil
	}
	return "", nil, nil
}

func decode(name string, data []byte) (any, error) {
	var v any
	switch filepath.Ext(name) {
	case ".json":
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("parsing JSON: %w", err)
		}
		return v, nil
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("parsing YAML: %w", err)
		}
		return plain(v), nil
	}
	return nil, fmt.Errorf("could not find a suitable configuration file parser for the extension '%s'", filepath.Ext(name))
}

// plain converts YAML mappings with non-string keys into map[string]any, so
// that decoded YAML has the same shape as decoded JSON.
func plain(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, val := range t {
			t[k] = plain(val)
		}
		return t
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, val := range t {
			m[fmt.Sprint(k)] = plain(val)
		}
		return m
	case []any:
		for i, val := range t {
			t[i] = plain(val)
		}
		return t
	}
	return v
}

func attachHelp(fsys afero.Fs, dir string, p *Project) error {
	entries, err := afero.ReadDir(fsys, filepath.Join(dir, helpDir))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading help directory: %w", err)
	}

	for _, e := range entries {
		if e.IsDir() || !isHelpFile(e.Name()) {
			continue
		}
		path := filepath.Join(dir, helpDir, e.Name())
		data, err := afero.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("reading help: %w", err)
		}
		key := strings.TrimSuffix(e.Name(), ".html")
		if !p.Questionnaire.AttachHelp(key, string(data)) {
			slog.Warn("skipping help file", "path", path, "key", key)
		}
	}
	return nil
}

func isHelpFile(name string) bool {
	return strings.HasSuffix(name, ".html") && len(name) > len(".html")
}

// readOptional returns the content of path, or an empty string if it does not exist.
func readOptional(fsys afero.Fs, path string) (string, error) {
	data, err := afero.ReadFile(fsys, path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return strings.TrimSpace(string(data)), nil
}
