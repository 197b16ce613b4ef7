// Package project builds a validated project from its configuration: the
// metadata, the questionnaire and the optional tutorial.
package project

import (
	"regexp"
	"strings"

	"github.com/gosimple/slug"

	"github.com/geotagx/gtx-builder/internal/locale"
	"github.com/geotagx/gtx-builder/internal/questionnaire"
	"github.com/geotagx/gtx-builder/internal/tutorial"
	"github.com/geotagx/gtx-builder/internal/validation"
)

var slugPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

var requiredFields = []string{"name", "short_name", "description", "why", "questionnaire"}

// SubjectType is the kind of media contributors analyze.
type SubjectType string

const (
	SubjectImage SubjectType = "image"
	SubjectPDF   SubjectType = "pdf"
)

// Name returns the human-readable name of the subject type.
func (s SubjectType) Name() string {
	switch s {
	case SubjectImage:
		return "Image"
	case SubjectPDF:
		return "Portable Document Format (PDF)"
	}
	return "Unknown"
}

// Project is a validated project, ready to be rendered.
type Project struct {
	// Path is the project directory.
	Path string
	// ConfigFile is the name of the configuration file the project was read from.
	ConfigFile    string
	Name          string
	ShortName     string
	Description   string
	Why           locale.Text
	Locale        Locales
	Subject       SubjectType
	Questionnaire *questionnaire.Questionnaire
	// Tutorial is nil when the project has none.
	Tutorial *tutorial.Tutorial
	// CSS and JS are the project's custom stylesheet and script.
	CSS string
	JS  string
}

// New validates a project configuration and the optional tutorial
// configuration. A nil tutorialConfig means the project has no tutorial.
func New(path string, config map[string]any, tutorialConfig any) (*Project, error) {
	for _, field := range requiredFields {
		if _, ok := config[field]; !ok {
			return nil, validation.Errorf(field, "the project configuration is missing the field '%s'", field)
		}
	}

	p := &Project{Path: path}

	var err error
	if p.Name, err = requiredString(config, "name"); err != nil {
		return nil, err
	}
	if p.ShortName, err = requiredString(config, "short_name"); err != nil {
		return nil, err
	}
	if !slugPattern.MatchString(p.ShortName) {
		return nil, validation.Errorf("short_name", "the short name '%s' may only contain letters, numbers, hyphens and underscores, e.g. '%s'", p.ShortName, slug.Make(p.ShortName))
	}
	if p.Description, err = requiredString(config, "description"); err != nil {
		return nil, err
	}

	rawLocale, ok := config["locale"]
	if !ok {
		rawLocale = config["language"]
	}
	if p.Locale, err = parseLocales(rawLocale); err != nil {
		return nil, err
	}

	p.Why, err = locale.Normalize(config["why"], p.Locale.Default)
	if err != nil {
		return nil, validation.Errorf("why", "%v", err)
	}
	if p.Why == nil {
		return nil, validation.Errorf("why", "the project must explain why contributions matter")
	}

	if p.Subject, err = parseSubjectType(config["subject-type"]); err != nil {
		return nil, err
	}

	entries, err := questionnaireEntries(config["questionnaire"])
	if err != nil {
		return nil, err
	}
	if p.Questionnaire, err = questionnaire.New(entries, p.Locale.Default); err != nil {
		return nil, err
	}

	if tutorialConfig != nil {
		if p.Tutorial, err = tutorial.New(tutorialConfig, p.Questionnaire, p.Locale.Default); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Localize returns the translation of text for the project's default locale.
func (p *Project) Localize(text locale.Text) string {
	return text.Pick(p.Locale.Default)
}

func requiredString(config map[string]any, field string) (string, error) {
	s, ok := config[field].(string)
	s = strings.TrimSpace(s)
	if !ok || s == "" {
		return "", validation.Errorf(field, "the project's %s must be a non-empty string", strings.ReplaceAll(field, "_", " "))
	}
	return s, nil
}

func parseSubjectType(raw any) (SubjectType, error) {
	if raw == nil {
		return SubjectImage, nil
	}
	s, _ := raw.(string)
	switch st := SubjectType(strings.TrimSpace(s)); st {
	case SubjectImage, SubjectPDF:
		return st, nil
	}
	return "", validation.Errorf("subject-type", "the subject type '%v' is not supported; use '%s' or '%s'", raw, SubjectImage, SubjectPDF)
}

// questionnaireEntries accepts either a list of entries or a mapping with a
// 'questions' list.
func questionnaireEntries(raw any) ([]any, error) {
	switch t := raw.(type) {
	case []any:
		return t, nil
	case map[string]any:
		if entries, ok := t["questions"].([]any); ok {
			return entries, nil
		}
	}
	return nil, validation.Errorf("questionnaire", "the questionnaire must be a list of questions, got %T", raw)
}
