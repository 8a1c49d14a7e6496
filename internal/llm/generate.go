package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jonathan/cv-tailor/internal/schemas"
)

// Generator is the narrow seam the pipeline depends on: produce a
// structured object from a prompt and a JSON schema. Every returned
// object has already been validated against the schema; a schema
// violation is reported as an error, never passed through.
type Generator interface {
	GenerateStructured(ctx context.Context, prompt, schema string, tier ModelTier, out any) error
}

// GenerationError indicates the provider call itself failed or returned
// unparsable output.
type GenerationError struct {
	Message string
	Cause   error
}

func (e *GenerationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("generation failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("generation failed: %s", e.Message)
}

func (e *GenerationError) Unwrap() error { return e.Cause }

// SchemaViolationError indicates the provider returned parsable JSON
// that does not satisfy the expected schema. Callers treat this the
// same as a provider failure.
type SchemaViolationError struct {
	Cause error
}

func (e *SchemaViolationError) Error() string {
	return fmt.Sprintf("generated output violates schema: %v", e.Cause)
}

func (e *SchemaViolationError) Unwrap() error { return e.Cause }

// SchemaGenerator implements Generator on top of a Client, validating
// every response with JSON Schema before unmarshalling.
type SchemaGenerator struct {
	client Client
}

// NewSchemaGenerator wraps a client in the schema-validated seam.
func NewSchemaGenerator(client Client) *SchemaGenerator {
	return &SchemaGenerator{client: client}
}

// GenerateStructured generates JSON from the prompt, validates it
// against schema, and unmarshals it into out.
func (g *SchemaGenerator) GenerateStructured(ctx context.Context, prompt, schema string, tier ModelTier, out any) error {
	raw, err := g.client.GenerateJSON(ctx, prompt, tier)
	if err != nil {
		return &GenerationError{Message: "provider call failed", Cause: err}
	}

	raw = CleanJSONBlock(raw)

	if err := schemas.ValidateJSONString(schema, raw); err != nil {
		return &SchemaViolationError{Cause: err}
	}

	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return &GenerationError{Message: "failed to parse JSON response", Cause: err}
	}

	return nil
}
