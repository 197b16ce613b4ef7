// Package locale validates locale identifiers and localized strings.
//
// A localized string (Text) maps locale identifiers such as "en" or "en-GB" to
// a translation. Plain strings found in configuration files are wrapped under
// the project's default locale.
package locale

import (
	"errors"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"github.com/geotagx/gtx-builder/internal/rawconfig"
)

var identifierPattern = regexp.MustCompile(`^[a-z]{2,3}(-[A-Z]+)?$`)

// Text maps locale identifiers to translations of the same string.
type Text map[string]string

// Validator reports why a value is unacceptable, or returns nil.
type Validator func(v any) error

// IsLocaleIdentifier reports whether code is a two or three letter lowercase
// language subtag, optionally followed by an uppercase region subtag.
func IsLocaleIdentifier(code string) bool {
	return identifierPattern.MatchString(code)
}

// NonEmptyString accepts strings that contain at least one non-whitespace character.
func NonEmptyString(v any) error {
	s, ok := v.(string)
	if !ok {
		return fmt.Errorf("expected a string, got %T", v)
	}
	if strings.TrimSpace(s) == "" {
		return errors.New("the string must not be empty")
	}
	return nil
}

// CheckLocalized returns nil if v is a non-empty mapping whose keys are locale
// identifiers and whose values are accepted by elem. Otherwise the returned
// error describes the first problem found, in key order.
func CheckLocalized(v any, elem Validator) error {
	m, ok := asMap(v)
	if !ok {
		return fmt.Errorf("expected a mapping of locale identifiers to strings, got %T", v)
	}
	if len(m) == 0 {
		return errors.New("no translation is specified")
	}

	for _, code := range slices.Sorted(maps.Keys(m)) {
		if !IsLocaleIdentifier(code) {
			return fmt.Errorf("the locale identifier %q is not valid", code)
		}
		if elem == nil {
			continue
		}
		if err := elem(m[code]); err != nil {
			return fmt.Errorf("translation %q: %w", code, err)
		}
	}
	return nil
}

// Normalize converts v into a Text. A plain string is trimmed and assigned to
// defaultLocale; a blank string or nil yields a nil Text. Mappings are
// validated and returned unchanged.
func Normalize(v any, defaultLocale string) (Text, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return nil, nil
		}
		if !IsLocaleIdentifier(defaultLocale) {
			return nil, fmt.Errorf("the locale identifier %q is not valid", defaultLocale)
		}
		return Text{defaultLocale: s}, nil
	}

	m, ok := asMap(v)
	if !ok {
		return nil, fmt.Errorf("expected a string or a mapping of locale identifiers to strings, got %T", v)
	}
	if err := CheckLocalized(m, NonEmptyString); err != nil {
		return nil, err
	}

	text := make(Text, len(m))
	for code, s := range m {
		text[code] = s.(string)
	}
	return text, nil
}

// Locales returns the text's locale identifiers in sorted order.
func (t Text) Locales() []string {
	return slices.Sorted(maps.Keys(t))
}

// Pick returns the translation for code. It falls back to the primary
// language subtag of code, then to the first translation in locale order.
func (t Text) Pick(code string) string {
	if len(t) == 0 {
		return ""
	}
	if s, ok := t[code]; ok {
		return s
	}
	if i := strings.IndexByte(code, '-'); i > 0 {
		if s, ok := t[code[:i]]; ok {
			return s
		}
	}
	return t[t.Locales()[0]]
}

// Lower lower-cases s for case-insensitive comparisons of answers and conditions.
func Lower(s string) string {
	// Casers are stateful, so one is created per call.
	return cases.Lower(language.Und).String(s)
}

// DisplayName returns the English name of the language identified by code,
// or an empty string if the name is unknown.
func DisplayName(code string) string {
	tag, err := language.Parse(code)
	if err != nil {
		return ""
	}
	return display.English.Tags().Name(tag)
}

// asMap accepts the mappings rawconfig.Map accepts as well as already
// localized text.
func asMap(v any) (map[string]any, bool) {
	var m map[string]any
	switch t := v.(type) {
	case Text:
		m = make(map[string]any, len(t))
		for k, s := range t {
			m[k] = s
		}
	case map[string]string:
		m = make(map[string]any, len(t))
		for k, s := range t {
			m[k] = s
		}
	default:
		return rawconfig.Map(v)
	}
	return m, true
}
