package questionnaire_test

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/geotagx/gtx-builder/internal/locale"
	"github.com/geotagx/gtx-builder/internal/questionnaire"
	"github.com/geotagx/gtx-builder/internal/validation"
)

func TestCheckKey(t *testing.T) {
	tests := []struct {
		key     string
		wantErr bool
	}{
		{"q1", false},
		{"water_level-2", false},
		{"", true},
		{"has space", true},
		{"dots.are.bad", true},
		{"end", true},
		{"photoVisible", true},
		{"photoAccessible", true},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			err := questionnaire.CheckKey(tt.key)
			if (err != nil) != tt.wantErr {
				t.Errorf("CheckKey(%q) error = %v, wantErr %v", tt.key, err, tt.wantErr)
			}
		})
	}
}

func TestNewQuestion(t *testing.T) {
	q, err := questionnaire.NewQuestion("q1", map[string]any{
		"type":     "binary",
		"question": "Is water visible?",
		"hint":     map[string]any{"en": "Look closely", "fr": "Regardez bien"},
	}, "en")
	if err != nil {
		t.Fatalf("NewQuestion() error = %v", err)
	}

	if q.Type != questionnaire.Binary {
		t.Errorf("Type = %q, want binary", q.Type)
	}
	if !reflect.DeepEqual(q.Prompt, locale.Text{"en": "Is water visible?"}) {
		t.Errorf("Prompt = %v, want wrapped under en", q.Prompt)
	}
	if q.Hint["fr"] != "Regardez bien" {
		t.Errorf("Hint[fr] = %q, want Regardez bien", q.Hint["fr"])
	}
	if q.Help != "" {
		t.Errorf("Help = %q, want empty", q.Help)
	}
}

func TestNewQuestion_Errors(t *testing.T) {
	tests := []struct {
		name      string
		key       string
		entry     map[string]any
		wantField string
		wantText  string
	}{
		{
			name:      "reserved key",
			key:       "end",
			entry:     map[string]any{"type": "text", "question": "Why?"},
			wantField: "key",
		},
		{
			name:      "missing type",
			key:       "q1",
			entry:     map[string]any{"question": "Why?"},
			wantField: "type",
		},
		{
			name:      "deprecated type",
			key:       "q1",
			entry:     map[string]any{"type": "textarea", "question": "Why?"},
			wantField: "type",
			wantText:  "longtext",
		},
		{
			name:      "unknown type",
			key:       "q1",
			entry:     map[string]any{"type": "slider", "question": "Why?"},
			wantField: "type",
			wantText:  "not recognized",
		},
		{
			name:      "blank question",
			key:       "q1",
			entry:     map[string]any{"type": "text", "question": "  "},
			wantField: "question",
		},
		{
			name:      "empty translation",
			key:       "q1",
			entry:     map[string]any{"type": "text", "question": map[string]any{"en": "Why?", "fr": ""}},
			wantField: "question",
			wantText:  "fr",
		},
		{
			name:      "invalid hint",
			key:       "q1",
			entry:     map[string]any{"type": "text", "question": "Why?", "hint": map[string]any{"EN": "x"}},
			wantField: "hint",
		},
		{
			name:      "parameters not a mapping",
			key:       "q1",
			entry:     map[string]any{"type": "text", "question": "Why?", "parameters": []any{"maxlength"}},
			wantField: "parameters",
		},
		{
			name: "option without value",
			key:  "q1",
			entry: map[string]any{"type": "select", "question": "Which?", "parameters": map[string]any{
				"options": []any{map[string]any{"label": "Flood"}},
			}},
			wantField: "parameters",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := questionnaire.NewQuestion(tt.key, tt.entry, "en")
			var ce *validation.ConfigurationError
			if !errors.As(err, &ce) {
				t.Fatalf("NewQuestion() error = %v, want ConfigurationError", err)
			}
			if ce.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", ce.Field, tt.wantField)
			}
			if tt.wantText != "" && !strings.Contains(err.Error(), tt.wantText) {
				t.Errorf("error = %q, want it to contain %q", err, tt.wantText)
			}
		})
	}
}

func TestNewQuestion_DeprecatedTypes(t *testing.T) {
	replacements := map[string]string{
		"single_choice":               "select",
		"multiple_choice":             "checklist",
		"illustrated_multiple_choice": "illustrative-checklist",
		"textinput":                   "text",
		"textarea":                    "longtext",
	}
	for deprecated, replacement := range replacements {
		_, err := questionnaire.NewQuestion("q", map[string]any{"type": deprecated, "question": "?"}, "en")
		if err == nil {
			t.Fatalf("NewQuestion(type=%s) should fail", deprecated)
		}
		if !strings.Contains(err.Error(), "'"+replacement+"'") {
			t.Errorf("error = %q, want it to name %q", err, replacement)
		}
	}
}

func TestParameters_Defaults(t *testing.T) {
	tests := []struct {
		typ   string
		param string
		want  any
	}{
		{"text", "maxlength", 128},
		{"longtext", "maxlength", 512},
		{"number", "maxlength", 256},
		{"url", "maxlength", 2000},
		{"select", "size", 8},
		{"dropdown-list", "size", 1},
		{"checklist", "size", 8},
	}

	for _, tt := range tests {
		t.Run(tt.typ, func(t *testing.T) {
			q, err := questionnaire.NewQuestion("q", map[string]any{"type": tt.typ, "question": "?"}, "en")
			if err != nil {
				t.Fatalf("NewQuestion() error = %v", err)
			}
			if got := q.Parameters[tt.param]; got != tt.want {
				t.Errorf("Parameters[%s] = %v, want %v", tt.param, got, tt.want)
			}
		})
	}
}

func TestParameters_Deterministic(t *testing.T) {
	for _, typ := range questionnaire.AllTypes() {
		entry := map[string]any{"type": string(typ), "question": "?"}
		a, err := questionnaire.NewQuestion("a", entry, "en")
		if err != nil {
			t.Fatalf("NewQuestion(%s) error = %v", typ, err)
		}
		b, err := questionnaire.NewQuestion("b", entry, "en")
		if err != nil {
			t.Fatalf("NewQuestion(%s) error = %v", typ, err)
		}
		if !reflect.DeepEqual(a.Parameters, b.Parameters) {
			t.Errorf("%s parameters differ: %v vs %v", typ, a.Parameters, b.Parameters)
		}

		// Mutating one question's parameters must not leak into the defaults.
		a.Parameters["injected"] = true
		if _, ok := questionnaire.DefaultParameters(typ)["injected"]; ok {
			t.Errorf("%s default parameters were modified through a question", typ)
		}
	}
}

func TestParameters_Overrides(t *testing.T) {
	q, err := questionnaire.NewQuestion("q", map[string]any{
		"type":     "text",
		"question": "?",
		"parameters": map[string]any{
			"maxlength":   64,
			"placeholder": nil,
			"pattern":     "[a-z]+",
		},
	}, "en")
	if err != nil {
		t.Fatalf("NewQuestion() error = %v", err)
	}
	if got := q.Parameters["maxlength"]; got != 64 {
		t.Errorf("maxlength = %v, want 64", got)
	}
	if got := q.Parameters["pattern"]; got != "[a-z]+" {
		t.Errorf("pattern = %v, want [a-z]+", got)
	}

	q, err = questionnaire.NewQuestion("q", map[string]any{
		"type":       "number",
		"question":   "?",
		"parameters": map[string]any{"maxlength": nil, "placeholder": nil},
	}, "en")
	if err != nil {
		t.Fatalf("NewQuestion() error = %v", err)
	}
	if got := q.Parameters["maxlength"]; got != 256 {
		t.Errorf("maxlength = %v, want default 256 when null is given", got)
	}
	if got, ok := q.Parameters["placeholder"].(locale.Text); !ok || got["en"] != "Please enter a number" {
		t.Errorf("placeholder = %v, want the localized default", q.Parameters["placeholder"])
	}
}

func TestParameters_Options(t *testing.T) {
	q, err := questionnaire.NewQuestion("q", map[string]any{
		"type":     "select",
		"question": "What kind of damage?",
		"parameters": map[string]any{
			"options": []any{
				map[string]any{"value": "flood", "label": map[string]any{"en": "Flood", "fr": "Inondation"}},
				map[string]any{"value": "fire"},
			},
		},
	}, "en")
	if err != nil {
		t.Fatalf("NewQuestion() error = %v", err)
	}

	opts := q.Parameters.Options()
	if len(opts) != 2 {
		t.Fatalf("Options() = %d, want 2", len(opts))
	}
	if opts[0].Label["fr"] != "Inondation" {
		t.Errorf("Options()[0].Label = %v", opts[0].Label)
	}
	if opts[1].Label["en"] != "fire" {
		t.Errorf("Options()[1].Label = %v, want the value as label", opts[1].Label)
	}
	if got := q.OptionValues(); !reflect.DeepEqual(got, []string{"flood", "fire"}) {
		t.Errorf("OptionValues() = %v", got)
	}
}

func TestParseType_UnknownListsTypes(t *testing.T) {
	_, err := questionnaire.ParseType("slider")
	if err == nil {
		t.Fatal("ParseType(slider) should fail")
	}
	want := "use one of binary, checklist, custom, date, datetime, dropdown-list, geotagging, illustrative-checklist, longtext, number, select, text, url"
	if !strings.Contains(err.Error(), want) {
		t.Errorf("error = %q, want it to contain %q", err, want)
	}
}
