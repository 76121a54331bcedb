// Package validation checks job variables and reference data against JSON
// schemas.
package validation

import (
	"encoding/json"
	"fmt"
	"strings"

	"enrichment-workers/internal/common/errors"

	"github.com/xeipuuv/gojsonschema"
)

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Summary joins the errors into one line, e.g. for an error Details field.
func (r *ValidationResult) Summary() string {
	parts := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		parts = append(parts, fmt.Sprintf("%s: %s", e.Field, e.Message))
	}
	return strings.Join(parts, "; ")
}

// Schema is a compiled JSON schema. It is safe for concurrent use.
type Schema struct {
	name   string
	schema *gojsonschema.Schema
}

// Compile parses a JSON schema document.
func Compile(name string, raw []byte) (*Schema, error) {
	s, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", name, err)
	}
	return &Schema{name: name, schema: s}, nil
}

// MustCompile is Compile for schemas embedded at build time.
func MustCompile(name, raw string) *Schema {
	s, err := Compile(name, []byte(raw))
	if err != nil {
		panic(err)
	}
	return s
}

func (s *Schema) Name() string {
	return s.name
}

// ValidateBytes validates a raw JSON document. The error is only set when
// the document cannot be parsed at all.
func (s *Schema) ValidateBytes(doc []byte) (*ValidationResult, error) {
	return s.validate(gojsonschema.NewBytesLoader(doc))
}

// ValidateObject validates an already decoded value.
func (s *Schema) ValidateObject(v interface{}) (*ValidationResult, error) {
	return s.validate(gojsonschema.NewGoLoader(v))
}

func (s *Schema) validate(doc gojsonschema.JSONLoader) (*ValidationResult, error) {
	result, err := s.schema.Validate(doc)
	if err != nil {
		return nil, fmt.Errorf("validate against %s: %w", s.name, err)
	}

	out := &ValidationResult{Valid: result.Valid()}
	for _, desc := range result.Errors() {
		out.Errors = append(out.Errors, ValidationError{
			Field:   desc.Field(),
			Message: desc.Description(),
			Code:    strings.ToUpper(desc.Type()),
		})
	}
	return out, nil
}

// DecodeJobVariables validates raw job variables against s and decodes them
// into T. Parse and schema failures are returned as invalid input errors.
func DecodeJobVariables[T any](s *Schema, variables string) (*T, error) {
	doc := []byte(variables)
	result, err := s.ValidateBytes(doc)
	if err != nil {
		return nil, errors.NewInvalidEnrichmentInputError(err.Error())
	}
	if !result.Valid {
		return nil, errors.NewInvalidEnrichmentInputError(result.Summary()).
			WithMetadata("schema", s.name)
	}

	var out T
	if err := json.Unmarshal(doc, &out); err != nil {
		return nil, errors.NewInvalidEnrichmentInputError(fmt.Sprintf("decode variables: %v", err))
	}
	return &out, nil
}
