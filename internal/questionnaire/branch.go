package questionnaire

import (
	"encoding/json"
	"fmt"
	"maps"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/geotagx/gtx-builder/internal/locale"
	"github.com/geotagx/gtx-builder/internal/rawconfig"
	"github.com/geotagx/gtx-builder/internal/validation"
)

// Target is the destination of a branch: a question key, End, or a literal
// question index when Key is empty. A target may also be a nested mapping of
// conditions; its targets are validated but never taken.
type Target struct {
	Key    string
	Index  int
	Nested map[string]Target
}

// IsIndex reports whether the target is a literal question index.
func (t Target) IsIndex() bool {
	return t.Key == "" && t.Nested == nil
}

// IsNested reports whether the target is a nested mapping of conditions.
func (t Target) IsNested() bool {
	return t.Nested != nil
}

func (t Target) String() string {
	switch {
	case t.IsNested():
		return "{" + conditionsString(t.Nested) + "}"
	case t.IsIndex():
		return "#" + strconv.Itoa(t.Index)
	}
	return t.Key
}

// MarshalJSON encodes keys as strings, literal indexes as numbers and nested
// mappings as objects.
func (t Target) MarshalJSON() ([]byte, error) {
	switch {
	case t.IsNested():
		return json.Marshal(t.Nested)
	case t.IsIndex():
		return json.Marshal(t.Index)
	}
	return json.Marshal(t.Key)
}

// leaves returns the question keys and indexes t refers to, descending into
// nested mappings in condition order.
func (t Target) leaves() []Target {
	if !t.IsNested() {
		return []Target{t}
	}
	var out []Target
	for _, c := range slices.Sorted(maps.Keys(t.Nested)) {
		out = append(out, t.Nested[c].leaves()...)
	}
	return out
}

// Branch overrides the default progression to the next question in order.
// Exactly one of Target and Conditions is set.
type Branch struct {
	// Target is an unconditional jump.
	Target *Target `json:"target,omitempty"`
	// Conditions maps lower-cased answers to targets.
	Conditions map[string]Target `json:"conditions,omitempty"`
}

// IsConditional reports whether the branch depends on the answer.
func (b *Branch) IsConditional() bool {
	return b != nil && b.Conditions != nil
}

// Targets returns every target of the branch, conditional ones in condition order.
func (b *Branch) Targets() []Target {
	if b == nil {
		return nil
	}
	if b.Target != nil {
		return []Target{*b.Target}
	}
	targets := make([]Target, 0, len(b.Conditions))
	for _, c := range b.ConditionKeys() {
		targets = append(targets, b.Conditions[c])
	}
	return targets
}

// ConditionKeys returns the branch conditions in lexical order.
func (b *Branch) ConditionKeys() []string {
	if b == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(b.Conditions))
}

func (b *Branch) String() string {
	if b == nil {
		return ""
	}
	if b.Target != nil {
		return "→ " + b.Target.String()
	}
	return conditionsString(b.Conditions)
}

func conditionsString(conditions map[string]Target) string {
	parts := make([]string, 0, len(conditions))
	for _, c := range slices.Sorted(maps.Keys(conditions)) {
		parts = append(parts, fmt.Sprintf("%q → %s", c, conditions[c]))
	}
	return strings.Join(parts, ", ")
}

// parseBranch reads the branch declared by the question identified by key.
// Condition strings are lower-cased so answers can be compared without regard to case.
func parseBranch(key string, raw any) (*Branch, error) {
	if raw == nil {
		return nil, nil
	}

	conditions, ok := rawconfig.Map(raw)
	if !ok {
		target, err := parseTarget(raw)
		if err != nil {
			return nil, validation.Errorf("branch", "question '%s': %v", key, err)
		}
		return &Branch{Target: &target}, nil
	}

	parsed, err := parseConditions(conditions)
	if err != nil {
		return nil, validation.Errorf("branch", "question '%s': %v", key, err)
	}
	return &Branch{Conditions: parsed}, nil
}

// parseConditions lower-cases the conditions of a conditional mapping and
// parses their targets, descending into nested mappings.
func parseConditions(conditions map[string]any) (map[string]Target, error) {
	if len(conditions) == 0 {
		return nil, fmt.Errorf("a conditional branch must declare at least one condition")
	}

	parsed := make(map[string]Target, len(conditions))
	declared := make(map[string]string, len(conditions))
	for _, condition := range slices.Sorted(maps.Keys(conditions)) {
		folded := locale.Lower(strings.TrimSpace(condition))
		if folded == "" {
			return nil, fmt.Errorf("a branch condition must not be empty")
		}
		if previous, dup := declared[folded]; dup {
			return nil, fmt.Errorf("the conditions '%s' and '%s' are the same when case is ignored", previous, condition)
		}
		target, err := parseTarget(conditions[condition])
		if err != nil {
			return nil, fmt.Errorf("condition '%s': %w", condition, err)
		}
		declared[folded] = condition
		parsed[folded] = target
	}
	return parsed, nil
}

func parseTarget(raw any) (Target, error) {
	switch t := raw.(type) {
	case string:
		key := strings.TrimSpace(t)
		if key == "" {
			return Target{}, fmt.Errorf("a branch target must not be empty")
		}
		return Target{Key: key}, nil
	case int:
		return indexTarget(int64(t))
	case int64:
		return indexTarget(t)
	case uint64:
		if t > math.MaxInt32 {
			return Target{}, fmt.Errorf("the question index %d is out of range", t)
		}
		return indexTarget(int64(t))
	case float64:
		if t != math.Trunc(t) {
			return Target{}, fmt.Errorf("the question index %v is not an integer", t)
		}
		return indexTarget(int64(t))
	}
	if m, ok := rawconfig.Map(raw); ok {
		nested, err := parseConditions(m)
		if err != nil {
			return Target{}, err
		}
		return Target{Nested: nested}, nil
	}
	return Target{}, fmt.Errorf("a branch target must be a question key or index, got %T", raw)
}

func indexTarget(i int64) (Target, error) {
	if i < 0 || i > math.MaxInt32 {
		return Target{}, fmt.Errorf("the question index %d is out of range", i)
	}
	return Target{Index: int(i)}, nil
}
