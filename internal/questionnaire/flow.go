package questionnaire

import (
	"fmt"
	"strings"

	"github.com/geotagx/gtx-builder/internal/locale"
	"github.com/geotagx/gtx-builder/internal/rawconfig"
)

// Flow is the serializable form of a questionnaire's control flow. The task
// presenter script evaluates it with the same rules as Next.
type Flow struct {
	Order    []string           `json:"order"`
	Branches map[string]*Branch `json:"branches"`
}

// FlowTable returns the questionnaire's control flow as data.
func (q *Questionnaire) FlowTable() Flow {
	branches := make(map[string]*Branch, len(q.branches))
	for key, b := range q.branches {
		branches[key] = b
	}
	return Flow{Order: q.Keys(), Branches: branches}
}

// Next returns the key of the question that follows the question identified
// by key when it is answered with answer, or End.
func (q *Questionnaire) Next(key string, answer any) (string, error) {
	i, ok := q.positions[key]
	if !ok {
		return "", fmt.Errorf("unknown question '%s'", key)
	}
	next := q.NextIndex(i, answer)
	if next >= len(q.order) {
		return End, nil
	}
	return q.order[next], nil
}

// NextIndex is the index-based form of Next. Len() denotes the end of the
// questionnaire, which is also returned for out of range indexes.
//
// A question without a branch proceeds to the next question in order. An
// unconditional branch ignores the answer. A conditional branch is taken
// when the answer equals one of its conditions, ignoring case; otherwise the
// questionnaire proceeds in order. A condition whose target is a nested
// mapping never routes an answer, so it proceeds in order as well.
func (q *Questionnaire) NextIndex(i int, answer any) int {
	if i < 0 || i >= len(q.order) {
		return len(q.order)
	}

	fallthroughIndex := i + 1
	b := q.branches[q.order[i]]
	switch {
	case b == nil:
		return fallthroughIndex
	case b.Target != nil:
		return q.resolve(*b.Target)
	}

	s, ok := rawconfig.Scalar(answer)
	if !ok {
		return fallthroughIndex
	}
	if target, ok := b.Conditions[locale.Lower(strings.TrimSpace(s))]; ok && !target.IsNested() {
		return q.resolve(target)
	}
	return fallthroughIndex
}

func (q *Questionnaire) resolve(t Target) int {
	switch {
	case t.IsIndex():
		return t.Index
	case t.Key == End:
		return len(q.order)
	}
	return q.positions[t.Key]
}
