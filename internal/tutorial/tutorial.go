// Package tutorial validates a project's tutorial: exercises pairing an image
// with the answers a contributor is expected to give.
package tutorial

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/geotagx/gtx-builder/internal/locale"
	"github.com/geotagx/gtx-builder/internal/questionnaire"
	"github.com/geotagx/gtx-builder/internal/rawconfig"
	"github.com/geotagx/gtx-builder/internal/validation"
)

// Assertion is the expected answer to one question of an exercise, with the
// feedback shown to the contributor.
type Assertion struct {
	Expects        string                 `json:"expects"`
	DefaultMessage locale.Text            `json:"default_message"`
	Messages       map[string]locale.Text `json:"messages,omitempty"`
}

// Exercise is an image and the assertions about it, keyed by question key.
type Exercise struct {
	Image       string               `json:"image"`
	ImageSource string               `json:"image_source,omitempty"`
	Assertions  map[string]Assertion `json:"assertions"`
}

// Tutorial is an ordered list of exercises.
type Tutorial struct {
	exercises []Exercise
}

// New validates raw exercises against the questionnaire they exercise. Plain
// feedback strings are localized under defaultLocale.
func New(raw any, q *questionnaire.Questionnaire, defaultLocale string) (*Tutorial, error) {
	list, ok := raw.([]any)
	if !ok || len(list) == 0 {
		return nil, validation.Errorf("tutorial", "a tutorial requires one or more exercises")
	}

	t := &Tutorial{exercises: make([]Exercise, 0, len(list))}
	for i, item := range list {
		ex, err := newExercise(i+1, item, q, defaultLocale)
		if err != nil {
			return nil, err
		}
		t.exercises = append(t.exercises, ex)
	}
	return t, nil
}

// Len returns the number of exercises.
func (t *Tutorial) Len() int {
	if t == nil {
		return 0
	}
	return len(t.exercises)
}

// Exercises returns the exercises in order.
func (t *Tutorial) Exercises() []Exercise {
	return slices.Clone(t.exercises)
}

func newExercise(n int, raw any, q *questionnaire.Questionnaire, defaultLocale string) (Exercise, error) {
	m, ok := rawconfig.Map(raw)
	if !ok {
		return Exercise{}, validation.Errorf("tutorial", "exercise %d must be a dictionary", n)
	}

	image, _ := m["image"].(string)
	image = strings.TrimSpace(image)
	if image == "" {
		return Exercise{}, validation.Errorf("image", "exercise %d has no image", n)
	}
	source, _ := m["image_source"].(string)

	rawAssertions, ok := rawconfig.Map(m["assertions"])
	if !ok || len(rawAssertions) == 0 {
		return Exercise{}, validation.Errorf("assertions", "exercise %d requires one or more assertions", n)
	}

	ex := Exercise{
		Image:       image,
		ImageSource: strings.TrimSpace(source),
		Assertions:  make(map[string]Assertion, len(rawAssertions)),
	}
	for _, key := range slices.Sorted(maps.Keys(rawAssertions)) {
		question, ok := q.Question(key)
		if !ok {
			return Exercise{}, &validation.ReferentialIntegrityError{Key: key, Referrer: fmt.Sprintf("tutorial exercise %d", n)}
		}
		a, err := newAssertion(rawAssertions[key], question, defaultLocale)
		if err != nil {
			return Exercise{}, validation.Errorf("assertions", "exercise %d, question '%s': %v", n, key, err)
		}
		ex.Assertions[key] = a
	}
	return ex, nil
}

func newAssertion(raw any, question *questionnaire.Question, defaultLocale string) (Assertion, error) {
	m, ok := rawconfig.Map(raw)
	if !ok {
		return Assertion{}, fmt.Errorf("an assertion must be a dictionary")
	}

	expects, ok := rawconfig.Scalar(m["expects"])
	expects = locale.Lower(strings.TrimSpace(expects))
	if !ok || expects == "" {
		return Assertion{}, fmt.Errorf("an assertion requires an expected answer")
	}
	if err := checkAnswerDomain(question, expects); err != nil {
		return Assertion{}, err
	}

	def, err := locale.Normalize(m["default_message"], defaultLocale)
	if err != nil {
		return Assertion{}, fmt.Errorf("default_message: %w", err)
	}
	if def == nil {
		return Assertion{}, fmt.Errorf("an assertion requires a default_message")
	}
	a := Assertion{Expects: expects, DefaultMessage: def}

	if rawMessages := m["messages"]; rawMessages != nil {
		messages, ok := rawconfig.Map(rawMessages)
		if !ok {
			return Assertion{}, fmt.Errorf("messages must be a dictionary")
		}
		a.Messages = make(map[string]locale.Text, len(messages))
		declared := make(map[string]string, len(messages))
		for _, answer := range slices.Sorted(maps.Keys(messages)) {
			folded := locale.Lower(strings.TrimSpace(answer))
			if previous, dup := declared[folded]; dup {
				return Assertion{}, fmt.Errorf("the messages for '%s' and '%s' are the same answer when case is ignored", previous, answer)
			}
			text, err := locale.Normalize(messages[answer], defaultLocale)
			if err != nil {
				return Assertion{}, fmt.Errorf("message for '%s': %w", answer, err)
			}
			if text == nil {
				return Assertion{}, fmt.Errorf("the message for '%s' is empty", answer)
			}
			declared[folded] = answer
			a.Messages[folded] = text
		}
	}
	return a, nil
}

// checkAnswerDomain rejects expected answers a contributor could never give.
func checkAnswerDomain(question *questionnaire.Question, expects string) error {
	switch {
	case question.Type == questionnaire.Binary:
		if expects != "yes" && expects != "no" {
			return fmt.Errorf("the expected answer to a binary question must be 'yes' or 'no', got '%s'", expects)
		}
	case question.Type.HasOptions():
		values := question.OptionValues()
		if len(values) == 0 {
			return nil
		}
		for _, v := range values {
			if locale.Lower(v) == expects {
				return nil
			}
		}
		return fmt.Errorf("the expected answer '%s' is not one of the options %s", expects, strings.Join(values, ", "))
	}
	return nil
}
