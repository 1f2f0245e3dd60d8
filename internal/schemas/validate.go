// Package schemas guards the shape of persisted documents with JSON Schema.
package schemas

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	"github.com/cloo-solutions/hirelens/internal/domain"
)

//go:embed evaluation.schema.json
var evaluationSchema string

// FieldError is a single violation at a JSON path.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError lists every violation found in a document.
type ValidationError struct {
	Errors []FieldError
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("validation failed:")
	for i, err := range ve.Errors {
		fmt.Fprintf(&sb, "\n  %d. %s: %s", i+1, err.Field, err.Message)
	}
	return sb.String()
}

var loadEvaluationSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewStringLoader(evaluationSchema))
})

// ValidateEvaluation checks a canonical evaluation against the embedded schema.
func ValidateEvaluation(e *domain.Evaluation) error {
	if e == nil {
		return &ValidationError{Errors: []FieldError{{Field: "(root)", Message: "evaluation is nil"}}}
	}
	doc, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode evaluation: %w", err)
	}
	return ValidateEvaluationJSON(doc)
}

// ValidateEvaluationJSON checks raw JSON against the evaluation schema.
func ValidateEvaluationJSON(doc []byte) error {
	schema, err := loadEvaluationSchema()
	if err != nil {
		return fmt.Errorf("load evaluation schema: %w", err)
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return fmt.Errorf("validate evaluation: %w", err)
	}
	if result.Valid() {
		return nil
	}

	ve := &ValidationError{Errors: make([]FieldError, 0, len(result.Errors()))}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		ve.Errors = append(ve.Errors, FieldError{Field: field, Message: desc.Description()})
	}
	return ve
}
