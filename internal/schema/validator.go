// Package schema validates operation arguments and import payloads against
// JSON schemas before anything reaches the store.
package schema

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

// Validator checks JSON documents against schemas, caching compiled schemas
// keyed by their serialized form.
type Validator struct {
	cache sync.Map // map[string]*gojsonschema.Schema
}

// NewValidator creates an empty validator.
func NewValidator() *Validator {
	return &Validator{}
}

// Validate checks rawJSON against schemaData (a map, struct or JSON string
// describing a JSON schema). A nil error means the document conforms.
func (v *Validator) Validate(schemaData any, rawJSON string) error {
	compiled, err := v.compile(schemaData)
	if err != nil {
		return fmt.Errorf("invalid schema definition: %w", err)
	}

	result, err := compiled.Validate(gojsonschema.NewStringLoader(rawJSON))
	if err != nil {
		return fmt.Errorf("validation failed to run: %w", err)
	}
	if result.Valid() {
		return nil
	}

	var errs []string
	for _, desc := range result.Errors() {
		errs = append(errs, desc.String())
	}
	return fmt.Errorf("invalid arguments: %s", renderErrors(errs))
}

func (v *Validator) compile(schemaData any) (*gojsonschema.Schema, error) {
	jsonBytes, err := json.Marshal(schemaData)
	if err != nil {
		return nil, err
	}
	key := string(jsonBytes)

	if cached, ok := v.cache.Load(key); ok {
		return cached.(*gojsonschema.Schema), nil
	}

	compiled, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(jsonBytes))
	if err != nil {
		return nil, err
	}
	v.cache.Store(key, compiled)
	return compiled, nil
}

// renderErrors keeps messages readable: at most three violations, the rest
// summarized.
func renderErrors(errs []string) string {
	const max = 3
	extra := ""
	if len(errs) > max {
		extra = fmt.Sprintf(" (and %d more)", len(errs)-max)
		errs = errs[:max]
	}
	return strings.Join(errs, "; ") + extra
}
