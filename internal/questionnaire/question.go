package questionnaire

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/geotagx/gtx-builder/internal/locale"
	"github.com/geotagx/gtx-builder/internal/rawconfig"
	"github.com/geotagx/gtx-builder/internal/validation"
)

// End is the branch target that terminates the questionnaire.
const End = "end"

var keyPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Keys used by the task presenter itself.
var reservedKeys = map[string]bool{
	End:               true,
	"photoVisible":    true,
	"photoAccessible": true,
}

// Parameters holds a question's type-specific settings.
type Parameters map[string]any

// Option is one of the choices offered by a select, dropdown-list, checklist
// or illustrative-checklist question.
type Option struct {
	Value string      `json:"value"`
	Label locale.Text `json:"label"`
	Image string      `json:"image,omitempty"`
}

// Options returns the question options, or nil if none were configured.
func (p Parameters) Options() []Option {
	opts, _ := p["options"].([]Option)
	return opts
}

// Question is a single validated questionnaire entry.
type Question struct {
	Key        string
	Type       Type
	Prompt     locale.Text
	Hint       locale.Text
	Help       string
	Parameters Parameters
}

// CheckKey returns an error if key cannot identify a question.
func CheckKey(key string) error {
	switch {
	case key == "":
		return validation.Errorf("key", "a question key must be a non-empty string")
	case !keyPattern.MatchString(key):
		return validation.Errorf("key", "the key '%s' contains an illegal character. A key may only contain letters (a-z, A-Z), numbers (0-9), hyphens (-), and underscores (_). It must not contain any whitespace", key)
	case reservedKeys[key]:
		return validation.Errorf("key", "the string '%s' is reserved for internal use and can not be used as a question key", key)
	}
	return nil
}

// NewQuestion validates a raw questionnaire entry and builds the question
// identified by key. Plain strings are localized under defaultLocale.
func NewQuestion(key string, entry map[string]any, defaultLocale string) (*Question, error) {
	if err := CheckKey(key); err != nil {
		return nil, err
	}

	rawType, _ := entry["type"].(string)
	rawType = strings.TrimSpace(rawType)
	if rawType == "" {
		return nil, validation.Errorf("type", "the question '%s' has no type", key)
	}
	typ, err := ParseType(rawType)
	if err != nil {
		return nil, validation.Errorf("type", "question '%s': %v", key, err)
	}

	prompt, err := locale.Normalize(entry["question"], defaultLocale)
	if err != nil {
		return nil, validation.Errorf("question", "question '%s': %v", key, err)
	}
	if prompt == nil {
		return nil, validation.Errorf("question", "question '%s': a question must be a non-empty string", key)
	}

	hint, err := locale.Normalize(entry["hint"], defaultLocale)
	if err != nil {
		return nil, validation.Errorf("hint", "question '%s': %v", key, err)
	}

	params, err := buildParameters(typ, entry["parameters"], defaultLocale)
	if err != nil {
		return nil, validation.Errorf("parameters", "question '%s': %v", key, err)
	}

	return &Question{
		Key:        key,
		Type:       typ,
		Prompt:     prompt,
		Hint:       hint,
		Parameters: params,
	}, nil
}

// OptionValues returns the values of the question's options.
func (q *Question) OptionValues() []string {
	opts := q.Parameters.Options()
	values := make([]string, len(opts))
	for i, o := range opts {
		values[i] = o.Value
	}
	return values
}

// buildParameters merges the configured parameters over the type defaults.
// Only non-null configured values replace a default.
func buildParameters(typ Type, raw any, defaultLocale string) (Parameters, error) {
	params := DefaultParameters(typ)
	if raw != nil {
		configured, ok := rawconfig.Map(raw)
		if !ok {
			return nil, fmt.Errorf("question parameters must be a dictionary, got %T", raw)
		}
		for name, v := range configured {
			if v != nil {
				params[name] = v
			}
		}
	}

	for _, name := range []string{"prompt", "placeholder"} {
		v, ok := params[name]
		if !ok || v == nil {
			continue
		}
		text, err := locale.Normalize(v, defaultLocale)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		if text == nil {
			params[name] = nil
			continue
		}
		params[name] = text
	}

	if v := params["options"]; v != nil {
		opts, err := buildOptions(v, defaultLocale)
		if err != nil {
			return nil, fmt.Errorf("options: %w", err)
		}
		params["options"] = opts
	}
	return params, nil
}

func buildOptions(raw any, defaultLocale string) ([]Option, error) {
	list, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("expected a list of options, got %T", raw)
	}

	opts := make([]Option, 0, len(list))
	seen := make(map[string]bool, len(list))
	for i, item := range list {
		m, ok := rawconfig.Map(item)
		if !ok {
			return nil, fmt.Errorf("option %d is not a mapping", i+1)
		}
		value, ok := rawconfig.Scalar(m["value"])
		value = strings.TrimSpace(value)
		if !ok || value == "" {
			return nil, fmt.Errorf("option %d has no value", i+1)
		}
		if seen[value] {
			return nil, fmt.Errorf("the option value '%s' is used more than once", value)
		}
		seen[value] = true

		label, err := locale.Normalize(m["label"], defaultLocale)
		if err != nil {
			return nil, fmt.Errorf("option '%s' label: %w", value, err)
		}
		if label == nil {
			label = locale.Text{defaultLocale: value}
		}
		image, _ := m["image"].(string)

		opts = append(opts, Option{Value: value, Label: label, Image: strings.TrimSpace(image)})
	}
	return opts, nil
}
