package questionnaire_test

import (
	"encoding/json"
	"testing"

	"github.com/geotagx/gtx-builder/internal/questionnaire"
)

func TestNext_BinaryNoCondition(t *testing.T) {
	q := mustNew(t,
		entry("q1", "binary", "Water visible?", "branch", map[string]any{"no": "q3"}),
		entry("q2", "text", "Describe"),
		entry("q3", "text", "Why not?"),
	)

	tests := []struct {
		answer any
		want   string
	}{
		{"yes", "q2"},
		{"no", "q3"},
		{"maybe", "q2"},
		{"NO", "q3"},
		{" No ", "q3"},
		{nil, "q2"},
		{[]any{"no"}, "q2"},
	}
	for _, tt := range tests {
		got, err := q.Next("q1", tt.answer)
		if err != nil {
			t.Fatalf("Next(q1, %v) error = %v", tt.answer, err)
		}
		if got != tt.want {
			t.Errorf("Next(q1, %v) = %q, want %q", tt.answer, got, tt.want)
		}
	}
}

func TestNext_CaseInsensitiveCondition(t *testing.T) {
	q := mustNew(t,
		entry("q1", "binary", "Water visible?", "branch", map[string]any{"No": "qX"}),
		entry("q2", "text", "Describe"),
		entry("qX", "text", "Why not?"),
	)

	for _, answer := range []string{"no", "NO", "No"} {
		if got, _ := q.Next("q1", answer); got != "qX" {
			t.Errorf("Next(q1, %q) = %q, want qX", answer, got)
		}
	}
	for _, answer := range []string{"yes", "unknown", ""} {
		if got, _ := q.Next("q1", answer); got != "q2" {
			t.Errorf("Next(q1, %q) = %q, want q2", answer, got)
		}
	}
}

func TestNext_UnconditionalEnd(t *testing.T) {
	q := mustNew(t, entry("x", "select", "Pick one", "branch", "end"))

	for _, answer := range []any{"a", "", 3, nil} {
		got, err := q.Next("x", answer)
		if err != nil {
			t.Fatalf("Next() error = %v", err)
		}
		if got != questionnaire.End {
			t.Errorf("Next(x, %v) = %q, want end", answer, got)
		}
	}
}

func TestNext_DefaultOrder(t *testing.T) {
	q := mustNew(t,
		entry("q1", "text", "First"),
		entry("q2", "text", "Second"),
	)

	if got, _ := q.Next("q1", "anything"); got != "q2" {
		t.Errorf("Next(q1) = %q, want q2", got)
	}
	if got, _ := q.Next("q2", "anything"); got != questionnaire.End {
		t.Errorf("Next(q2) = %q, want end for the last question", got)
	}
	if _, err := q.Next("q9", "anything"); err == nil {
		t.Error("Next(q9) should fail for an unknown question")
	}
}

func TestNext_UnconditionalIgnoresAnswer(t *testing.T) {
	q := mustNew(t,
		entry("q1", "text", "First", "branch", "q3"),
		entry("q2", "text", "Second"),
		entry("q3", "text", "Third"),
	)
	if got, _ := q.Next("q1", "no"); got != "q3" {
		t.Errorf("Next(q1) = %q, want q3", got)
	}
}

func TestNext_NumericAnswersAndTargets(t *testing.T) {
	q := mustNew(t,
		entry("q1", "number", "How many people?", "branch", map[string]any{"0": 2, "1": "end"}),
		entry("q2", "text", "Describe them"),
		entry("q3", "text", "Anything else?"),
	)

	tests := []struct {
		answer any
		want   string
	}{
		{0, "q3"},
		{"0", "q3"},
		{1.0, questionnaire.End},
		{7, "q2"},
	}
	for _, tt := range tests {
		if got, _ := q.Next("q1", tt.answer); got != tt.want {
			t.Errorf("Next(q1, %v) = %q, want %q", tt.answer, got, tt.want)
		}
	}
}

func TestNextIndex(t *testing.T) {
	q := mustNew(t,
		entry("q1", "binary", "Water visible?", "branch", map[string]any{"yes": "end"}),
		entry("q2", "text", "Describe"),
	)

	if got := q.NextIndex(0, "YES"); got != 2 {
		t.Errorf("NextIndex(0, YES) = %d, want 2", got)
	}
	if got := q.NextIndex(0, "no"); got != 1 {
		t.Errorf("NextIndex(0, no) = %d, want 1", got)
	}
	if got := q.NextIndex(-1, nil); got != q.Len() {
		t.Errorf("NextIndex(-1) = %d, want %d", got, q.Len())
	}
}

func TestFlowTable_JSON(t *testing.T) {
	q := mustNew(t,
		entry("q1", "binary", "Water visible?", "branch", map[string]any{"No": "q3"}),
		entry("q2", "text", "Describe", "branch", 2),
		entry("q3", "text", "Why not?"),
	)

	data, err := json.Marshal(q.FlowTable())
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	want := `{"order":["q1","q2","q3"],"branches":{"q1":{"conditions":{"no":"q3"}},"q2":{"target":2}}}`
	if string(data) != want {
		t.Errorf("FlowTable() = %s, want %s", data, want)
	}
}

func TestNext_NestedConditionProceedsInOrder(t *testing.T) {
	q := mustNew(t,
		entry("q1", "binary", "Water visible?", "branch", map[string]any{
			"no":  map[string]any{"x": "q3"},
			"yes": "q3",
		}),
		entry("q2", "text", "Describe"),
		entry("q3", "text", "Why?"),
	)

	tests := []struct {
		answer string
		want   string
	}{
		{"yes", "q3"},
		{"no", "q2"},
		{"x", "q2"},
	}
	for _, tt := range tests {
		got, err := q.Next("q1", tt.answer)
		if err != nil {
			t.Fatalf("Next(q1, %q) error = %v", tt.answer, err)
		}
		if got != tt.want {
			t.Errorf("Next(q1, %q) = %q, want %q", tt.answer, got, tt.want)
		}
	}

	data, err := json.Marshal(q.FlowTable())
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	want := `{"order":["q1","q2","q3"],"branches":{"q1":{"conditions":{"no":{"x":"q3"},"yes":"q3"}}}}`
	if string(data) != want {
		t.Errorf("FlowTable() = %s, want %s", data, want)
	}
}
