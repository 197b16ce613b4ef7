package questionnaire

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Type identifies how a question is presented and answered.
type Type string

const (
	Binary                Type = "binary"
	DropdownList          Type = "dropdown-list"
	Select                Type = "select"
	Checklist             Type = "checklist"
	IllustrativeChecklist Type = "illustrative-checklist"
	Text                  Type = "text"
	LongText              Type = "longtext"
	Number                Type = "number"
	DateTime              Type = "datetime"
	Date                  Type = "date"
	URL                   Type = "url"
	Geotagging            Type = "geotagging"
	Custom                Type = "custom"
)

// typeSpec describes a question type: the parameters injected when a
// configuration leaves them unset, and whether answers come from a list of options.
type typeSpec struct {
	defaults   Parameters
	hasOptions bool
}

var typeSpecs = map[Type]typeSpec{
	Binary: {defaults: Parameters{}},
	DropdownList: {
		defaults:   Parameters{"options": nil, "prompt": "Please select an option", "size": 1},
		hasOptions: true,
	},
	Select: {
		defaults:   Parameters{"options": nil, "size": 8},
		hasOptions: true,
	},
	Checklist: {
		defaults:   Parameters{"options": nil, "size": 8},
		hasOptions: true,
	},
	IllustrativeChecklist: {
		defaults:   Parameters{"options": nil},
		hasOptions: true,
	},
	Text:     {defaults: Parameters{"placeholder": nil, "maxlength": 128}},
	LongText: {defaults: Parameters{"placeholder": nil, "maxlength": 512}},
	Number: {defaults: Parameters{
		"placeholder": "Please enter a number",
		"min":         nil,
		"max":         nil,
		"maxlength":   256,
	}},
	DateTime: {defaults: Parameters{"mindate": nil, "maxdate": nil, "mintime": nil, "maxtime": nil}},
	Date:     {defaults: Parameters{"min": nil, "max": nil}},
	URL: {defaults: Parameters{
		"placeholder": "Please enter a URL e.g. http://www.example.com",
		"maxlength":   2000,
	}},
	Geotagging: {defaults: Parameters{"location": nil}},
	Custom:     {defaults: Parameters{}},
}

// Question types that were renamed. Configurations still using them are
// rejected so that authors migrate explicitly.
var deprecatedTypes = map[string]Type{
	"single_choice":               Select,
	"multiple_choice":             Checklist,
	"illustrated_multiple_choice": IllustrativeChecklist,
	"textinput":                   Text,
	"textarea":                    LongText,
}

// ParseType returns the Type named by s.
func ParseType(s string) (Type, error) {
	t := Type(s)
	if _, ok := typeSpecs[t]; ok {
		return t, nil
	}
	if replacement, ok := deprecatedTypes[s]; ok {
		return "", fmt.Errorf("the question type '%s' is deprecated and has been replaced with '%s'", s, replacement)
	}
	return "", fmt.Errorf("the question type '%s' is not recognized; use one of %s", s, typeList())
}

// AllTypes returns every recognized question type in lexical order.
func AllTypes() []Type {
	return slices.Sorted(maps.Keys(typeSpecs))
}

func typeList() string {
	types := AllTypes()
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}

// HasOptions reports whether answers to questions of this type are picked from options.
func (t Type) HasOptions() bool {
	return typeSpecs[t].hasOptions
}

// DefaultParameters returns a fresh copy of the default parameters for t.
func DefaultParameters(t Type) Parameters {
	return maps.Clone(typeSpecs[t].defaults)
}
