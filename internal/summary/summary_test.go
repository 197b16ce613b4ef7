package summary_test

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/geotagx/gtx-builder/internal/project"
	"github.com/geotagx/gtx-builder/internal/summary"
)

func newProject(t *testing.T) *project.Project {
	t.Helper()
	config := map[string]any{
		"name":        "Flooding",
		"short_name":  "flooding",
		"description": "Analyse photos of floods.",
		"why":         map[string]any{"en": "Relief workers need to know.", "fr": "Les secours doivent savoir."},
		"locale":      map[string]any{"default": "en", "available": []any{"en", "fr"}},
		"questionnaire": []any{
			map[string]any{
				"key": "water", "type": "binary",
				"question": map[string]any{"en": "Is water visible?", "fr": "Voit-on de l'eau ?"},
				"branch":   map[string]any{"no": "end"},
			},
			map[string]any{
				"key": "depth", "type": "select", "question": "How deep?",
				"parameters": map[string]any{"options": []any{
					map[string]any{"value": "knee", "label": map[string]any{"en": "Knee", "fr": "Genou"}},
				}},
			},
		},
	}
	p, err := project.New("/projects/flooding", config, nil)
	if err != nil {
		t.Fatalf("project.New() error = %v", err)
	}
	return p
}

func TestText(t *testing.T) {
	var b strings.Builder
	if err := summary.Text(&b, newProject(t)); err != nil {
		t.Fatalf("Text() error = %v", err)
	}

	got := b.String()
	for _, want := range []string{
		"Flooding\n--------\n",
		"Short name: flooding\n",
		"Why: Relief workers need to know.\n",
		"Subject type: Image\n",
		"Locales: English (en), French (fr)\n",
		"Asset bundles: core, multilanguage\n",
		"Tutorial included: No\n",
		"1. (en) Is water visible? [water]\n",
		"   (fr) Voit-on de l'eau ?\n",
		"2. (en) How deep? [depth]\n",
		"Branches:\n  water: \"no\" → end\n",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Text() does not contain %q\n%s", want, got)
		}
	}
}

func TestWriteWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flooding.xlsx")
	if err := summary.WriteWorkbook(newProject(t), path); err != nil {
		t.Fatalf("WriteWorkbook() error = %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile() error = %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(summary.QuestionSheet)
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	// Header plus two questions in two locales.
	if len(rows) != 5 {
		t.Fatalf("rows = %d, want 5", len(rows))
	}
	want := []string{"1", "water", "binary", "fr", "Voit-on de l'eau ?", "", "\"no\" → end"}
	if strings.Join(rows[2], "|") != strings.Join(want, "|") {
		t.Errorf("row 3 = %q, want %q", rows[2], want)
	}
	// Trailing blank cells are not returned.
	if untranslated := rows[4]; len(untranslated) > 4 && untranslated[4] != "" {
		t.Errorf("untranslated question = %q, want blank", untranslated[4])
	}

	options, err := f.GetRows(summary.OptionSheet)
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	if len(options) != 3 || options[2][3] != "Genou" {
		t.Errorf("options = %q, want the French label on row 3", options)
	}
}
