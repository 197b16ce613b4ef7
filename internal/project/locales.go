package project

import (
	"sort"
	"strings"

	"github.com/geotagx/gtx-builder/internal/locale"
	"github.com/geotagx/gtx-builder/internal/validation"
)

// DefaultLocale is used when a project does not configure its locales.
const DefaultLocale = "en"

// Locales is a project's locale configuration.
type Locales struct {
	Default string
	// Available maps locale identifiers to human-readable names.
	Available map[string]string
}

// Codes returns the available locale identifiers, the default first.
func (l Locales) Codes() []string {
	codes := make([]string, 0, len(l.Available))
	for code := range l.Available {
		if code != l.Default {
			codes = append(codes, code)
		}
	}
	sort.Strings(codes)
	return append([]string{l.Default}, codes...)
}

// IsMultilingual reports whether more than one locale is available.
func (l Locales) IsMultilingual() bool {
	return len(l.Available) > 1
}

// parseLocales reads a {default, available} configuration. The available
// locales are either a mapping of identifiers to names, or a list of
// identifiers whose names are looked up.
func parseLocales(raw any) (Locales, error) {
	if raw == nil {
		return Locales{
			Default:   DefaultLocale,
			Available: map[string]string{DefaultLocale: locale.DisplayName(DefaultLocale)},
		}, nil
	}

	m, ok := raw.(map[string]any)
	if !ok {
		return Locales{}, validation.Errorf("locale", "the locale configuration must be a dictionary, got %T", raw)
	}

	def, _ := m["default"].(string)
	def = strings.TrimSpace(def)
	if def == "" {
		def = DefaultLocale
	}
	if !locale.IsLocaleIdentifier(def) {
		return Locales{}, validation.Errorf("locale", "the default locale '%s' is not a valid locale identifier", def)
	}

	available := make(map[string]string)
	switch t := m["available"].(type) {
	case nil:
		available[def] = locale.DisplayName(def)
	case []any:
		for _, item := range t {
			code, _ := item.(string)
			available[strings.TrimSpace(code)] = locale.DisplayName(strings.TrimSpace(code))
		}
	case map[string]any:
		for code, name := range t {
			s, _ := name.(string)
			available[code] = strings.TrimSpace(s)
		}
	default:
		return Locales{}, validation.Errorf("locale", "the available locales must be a list or a dictionary, got %T", t)
	}

	codes := make([]string, 0, len(available))
	for code := range available {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	for _, code := range codes {
		if !locale.IsLocaleIdentifier(code) {
			return Locales{}, validation.Errorf("locale", "the available locale '%s' is not a valid locale identifier", code)
		}
		if available[code] == "" {
			return Locales{}, validation.Errorf("locale", "the available locale '%s' has no name", code)
		}
	}
	if _, ok := available[def]; !ok {
		return Locales{}, validation.Errorf("locale", "the default locale '%s' is not one of the available locales %s", def, strings.Join(codes, ", "))
	}
	return Locales{Default: def, Available: available}, nil
}
