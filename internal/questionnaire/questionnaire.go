// Package questionnaire validates questionnaire configurations and compiles
// their branches into a flow table.
package questionnaire

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/geotagx/gtx-builder/internal/rawconfig"
	"github.com/geotagx/gtx-builder/internal/validation"
)

// Questionnaire is an ordered collection of questions with their branches.
type Questionnaire struct {
	order     []string
	positions map[string]int
	questions map[string]*Question
	branches  map[string]*Branch
	types     map[Type]struct{}
}

// New builds a questionnaire from raw entries, in order. The first invalid
// entry aborts construction.
func New(entries []any, defaultLocale string) (*Questionnaire, error) {
	if len(entries) == 0 {
		return nil, validation.Errorf("questionnaire", "a questionnaire requires one or more questions")
	}

	q := &Questionnaire{
		order:     make([]string, 0, len(entries)),
		positions: make(map[string]int, len(entries)),
		questions: make(map[string]*Question, len(entries)),
		branches:  make(map[string]*Branch),
		types:     make(map[Type]struct{}),
	}

	for i, raw := range entries {
		entry, ok := rawconfig.Map(raw)
		if !ok {
			return nil, validation.Errorf("questionnaire", "entry %d must be a dictionary", i+1)
		}
		for _, field := range []string{"key", "type", "question"} {
			if _, ok := entry[field]; !ok {
				return nil, validation.Errorf(field, "questionnaire entry %d is missing the field '%s'", i+1, field)
			}
		}

		key, ok := entry["key"].(string)
		if !ok {
			return nil, validation.Errorf("key", "questionnaire entry %d: a question key must be a non-empty string", i+1)
		}
		key = strings.TrimSpace(key)

		question, err := NewQuestion(key, entry, defaultLocale)
		if err != nil {
			return nil, err
		}
		if existing, dup := q.questions[key]; dup {
			return nil, validation.Errorf("key", "the key '%s' is used to identify the following questions:\n    - %s\n    - %s\nPlease make sure each question has a unique key",
				key, existing.Prompt.Pick(defaultLocale), question.Prompt.Pick(defaultLocale))
		}

		branch, err := parseBranch(key, entry["branch"])
		if err != nil {
			return nil, err
		}

		q.positions[key] = len(q.order)
		q.order = append(q.order, key)
		q.questions[key] = question
		if branch != nil {
			q.branches[key] = branch
		}
		q.types[question.Type] = struct{}{}
	}

	if err := q.checkReferences(); err != nil {
		return nil, err
	}
	return q, nil
}

// checkReferences makes sure every branch target, including those of nested
// mappings, is a question, End, or a question index within [0, Len()].
func (q *Questionnaire) checkReferences() error {
	for _, key := range q.order {
		var targets []Target
		for _, t := range q.branches[key].Targets() {
			targets = append(targets, t.leaves()...)
		}
		for _, target := range targets {
			switch {
			case target.IsIndex():
				if target.Index > len(q.order) {
					return &validation.ReferentialIntegrityError{Key: strconv.Itoa(target.Index), Referrer: key}
				}
			case target.Key == End:
			default:
				if _, ok := q.questions[target.Key]; !ok {
					return &validation.ReferentialIntegrityError{Key: target.Key, Referrer: key}
				}
			}
		}
	}
	return nil
}

// Len returns the number of questions.
func (q *Questionnaire) Len() int {
	return len(q.order)
}

// Keys returns the question keys in order.
func (q *Questionnaire) Keys() []string {
	return slices.Clone(q.order)
}

// Questions returns the questions in order.
func (q *Questionnaire) Questions() []*Question {
	out := make([]*Question, len(q.order))
	for i, key := range q.order {
		out[i] = q.questions[key]
	}
	return out
}

// Question returns the question identified by key.
func (q *Questionnaire) Question(key string) (*Question, bool) {
	question, ok := q.questions[key]
	return question, ok
}

// Branch returns the branch declared by the question identified by key, or nil.
func (q *Questionnaire) Branch(key string) *Branch {
	return q.branches[key]
}

// Types returns the distinct question types, in lexical order.
func (q *Questionnaire) Types() []Type {
	types := make([]Type, 0, len(q.types))
	for t := range q.types {
		types = append(types, t)
	}
	slices.Sort(types)
	return types
}

// HasType reports whether at least one question is of type t.
func (q *Questionnaire) HasType(t Type) bool {
	_, ok := q.types[t]
	return ok
}

// AttachHelp sets the help text of the question identified by key. It returns
// false if there is no such question or the text is blank.
func (q *Questionnaire) AttachHelp(key, text string) bool {
	question, ok := q.questions[key]
	text = strings.TrimSpace(text)
	if !ok || text == "" {
		return false
	}
	question.Help = text
	return true
}

// String lists the questions with all their translations.
func (q *Questionnaire) String() string {
	var b strings.Builder
	for i, question := range q.Questions() {
		codes := question.Prompt.Locales()
		fmt.Fprintf(&b, "%d. (%s) %s [%s]\n", i+1, codes[0], question.Prompt[codes[0]], question.Key)

		indent := strings.Repeat(" ", int(math.Log10(float64(i+1)))+1)
		for _, code := range codes[1:] {
			fmt.Fprintf(&b, "%s  (%s) %s\n", indent, code, question.Prompt[code])
		}
	}
	return strings.TrimSuffix(b.String(), "\n")
}
