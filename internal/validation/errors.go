// Package validation defines the errors raised when project configuration is rejected.
package validation

import (
	"errors"
	"fmt"
)

// ConfigurationError reports a question, questionnaire, tutorial or project
// configuration that cannot be built. Field names the offending configuration
// field when one applies.
type ConfigurationError struct {
	Field   string
	Message string
}

func (e *ConfigurationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Errorf returns a ConfigurationError for the given field.
func Errorf(field, format string, args ...any) error {
	return &ConfigurationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// ReferentialIntegrityError reports a reference to a question that does not exist.
type ReferentialIntegrityError struct {
	// Key is the missing target.
	Key string
	// Referrer is the question (or tutorial assertion) holding the reference.
	Referrer string
}

func (e *ReferentialIntegrityError) Error() string {
	return fmt.Sprintf("question %q refers to %q which does not correspond to a question", e.Referrer, e.Key)
}

// IsConfiguration reports whether err is caused by invalid configuration,
// including dangling references.
func IsConfiguration(err error) bool {
	var ce *ConfigurationError
	var re *ReferentialIntegrityError
	return errors.As(err, &ce) || errors.As(err, &re)
}
