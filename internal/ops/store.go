package ops

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jeanpaul/mnemo/internal/store"
)

// StoreOp upserts a single record.
type StoreOp struct {
	Store *store.Store
}

type storeArgs struct {
	Namespace  string   `json:"namespace,omitempty"`
	Key        string   `json:"key"`
	Value      string   `json:"value"`
	Tags       []string `json:"tags,omitempty"`
	TTLSeconds *int64   `json:"ttl_seconds,omitempty"`
}

func (o *StoreOp) Name() string { return "memory_store" }

func (o *StoreOp) Description() string {
	return "Store a memory under a key. Re-storing an existing key in the same namespace overwrites it (tags and TTL are replaced, not merged). Optional ttl_seconds makes the memory expire."
}

func (o *StoreOp) Parameters() any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"namespace":   map[string]any{"type": "string", "description": "Logical partition (default: 'default')"},
			"key":         map[string]any{"type": "string", "minLength": 1, "description": "Identifier, unique within its namespace"},
			"value":       map[string]any{"type": "string", "minLength": 1, "description": "Text payload to remember"},
			"tags":        map[string]any{"type": "array", "items": map[string]any{"type": "string"}, "description": "Labels for filtering and relatedness"},
			"ttl_seconds": map[string]any{"type": "integer", "minimum": 0, "description": "Seconds until the memory expires (omit for no expiry)"},
		},
		"required":             []string{"key", "value"},
		"additionalProperties": false,
	}
}

func (o *StoreOp) Execute(_ context.Context, rawArgs string) (Result, error) {
	var args storeArgs
	if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
		return errResult("invalid arguments: " + err.Error()), nil
	}

	rec, created, err := o.Store.Put(args.Namespace, args.Key, args.Value, args.Tags, args.TTLSeconds)
	if err != nil {
		return Result{}, err
	}

	verb := "Updated"
	if created {
		verb = "Stored"
	}
	out := fmt.Sprintf("%s %q in namespace %q", verb, rec.Key, rec.Namespace)
	if len(rec.Tags) > 0 {
		out += fmt.Sprintf(" (tags: %v)", rec.Tags)
	}
	if rec.ExpiresAt != 0 {
		out += fmt.Sprintf(", expires at %d", rec.ExpiresAt)
	}
	return Result{Output: out}, nil
}
