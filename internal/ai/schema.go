package ai

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Schema validates oracle answers against a JSON schema.
type Schema struct {
	name   string
	schema *gojsonschema.Schema
}

// MustSchema compiles src and panics on an invalid schema. It is meant for
// schemas embedded in the binary.
func MustSchema(name, src string) *Schema {
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic(fmt.Sprintf("compile %s schema: %v", name, err))
	}
	return &Schema{name: name, schema: compiled}
}

// Validate checks document and reports violations as *MalformedResponseError.
func (s *Schema) Validate(document string) error {
	result, err := s.schema.Validate(gojsonschema.NewStringLoader(document))
	if err != nil {
		return &MalformedResponseError{Reason: fmt.Sprintf("%s: not a JSON document: %v", s.name, err), Raw: document}
	}
	if result.Valid() {
		return nil
	}

	violations := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		violations = append(violations, fmt.Sprintf("%s: %s", e.Field(), e.Description()))
	}

	return &MalformedResponseError{
		Reason: fmt.Sprintf("%s: %s", s.name, strings.Join(violations, "; ")),
		Raw:    document,
	}
}
