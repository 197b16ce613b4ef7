package project

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	"github.com/geotagx/gtx-builder/internal/validation"
)

//go:embed schema/project.schema.json
var projectSchemaJSON []byte

var projectSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewBytesLoader(projectSchemaJSON))
})

// CheckSchema validates the shape of a decoded project configuration. Field
// values are validated by New.
func CheckSchema(config map[string]any) error {
	schema, err := projectSchema()
	if err != nil {
		return fmt.Errorf("loading project schema: %w", err)
	}

	result, err := schema.Validate(gojsonschema.NewGoLoader(config))
	if err != nil {
		return fmt.Errorf("validating project configuration: %w", err)
	}
	if result.Valid() {
		return nil
	}

	errs := result.Errors()
	messages := make([]string, len(errs))
	for i, e := range errs {
		messages[i] = e.String()
	}
	return validation.Errorf(errs[0].Field(), "the project configuration is invalid: %s", strings.Join(messages, "; "))
}
