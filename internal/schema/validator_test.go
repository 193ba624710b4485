package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"key":   map[string]any{"type": "string", "minLength": 1},
		"limit": map[string]any{"type": "integer", "minimum": 1},
	},
	"required":             []string{"key"},
	"additionalProperties": false,
}

func TestValidate_Conforming(t *testing.T) {
	v := NewValidator()
	assert.NoError(t, v.Validate(testSchema, `{"key":"k","limit":5}`))
	assert.NoError(t, v.Validate(testSchema, `{"key":"k"}`))
}

func TestValidate_Violations(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name string
		doc  string
	}{
		{"missing required", `{"limit":5}`},
		{"wrong type", `{"key":123}`},
		{"empty key", `{"key":""}`},
		{"unknown field", `{"key":"k","bogus":true}`},
		{"limit below minimum", `{"key":"k","limit":0}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(testSchema, tt.doc)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid arguments")
		})
	}
}

func TestValidate_ReusesCompiledSchemas(t *testing.T) {
	v := NewValidator()
	require.NoError(t, v.Validate(testSchema, `{"key":"a"}`))
	require.NoError(t, v.Validate(testSchema, `{"key":"b"}`))

	count := 0
	v.cache.Range(func(_, _ any) bool {
		count++
		return true
	})
	assert.Equal(t, 1, count, "identical schemas compile once")
}

func TestValidate_BadSchemaDefinition(t *testing.T) {
	v := NewValidator()
	err := v.Validate(map[string]any{"type": 42}, `{}`)
	assert.Error(t, err)
}
