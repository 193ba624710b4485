package ops

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jeanpaul/mnemo/internal/store"
)

// BulkStoreOp upserts a batch of records with one shared timestamp and one
// save at the end.
type BulkStoreOp struct {
	Store *store.Store
}

type bulkStoreArgs struct {
	Entries []store.BulkEntry `json:"entries"`
}

func (o *BulkStoreOp) Name() string { return "memory_bulk_store" }

func (o *BulkStoreOp) Description() string {
	return "Store several memories at once. All entries share one timestamp and the store is saved once for the whole batch."
}

func (o *BulkStoreOp) Parameters() any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"entries": map[string]any{
				"type":     "array",
				"minItems": 1,
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"namespace": map[string]any{"type": "string"},
						"key":       map[string]any{"type": "string", "minLength": 1},
						"value":     map[string]any{"type": "string", "minLength": 1},
						"tags":      map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
					},
					"required":             []string{"key", "value"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []string{"entries"},
		"additionalProperties": false,
	}
}

func (o *BulkStoreOp) Execute(_ context.Context, rawArgs string) (Result, error) {
	var args bulkStoreArgs
	if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
		return errResult("invalid arguments: " + err.Error()), nil
	}

	n, err := o.Store.BulkPut(args.Entries)
	if err != nil {
		return Result{}, err
	}
	return Result{Output: fmt.Sprintf("Stored %d memories", n)}, nil
}

// BulkDeleteOp removes every record matching a namespace and/or a glob
// pattern over the bare key.
type BulkDeleteOp struct {
	Store *store.Store
}

type bulkDeleteArgs struct {
	Namespace  string `json:"namespace,omitempty"`
	KeyPattern string `json:"key_pattern,omitempty"`
}

func (o *BulkDeleteOp) Name() string { return "memory_bulk_delete" }

func (o *BulkDeleteOp) Description() string {
	return "Delete memories in bulk by namespace and/or a glob pattern over keys (e.g. 'draft-*'). At least one selector is required."
}

func (o *BulkDeleteOp) Parameters() any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"namespace":   map[string]any{"type": "string", "description": "Delete everything in this namespace"},
			"key_pattern": map[string]any{"type": "string", "description": "Glob matched against bare keys ('*' wildcard)"},
		},
		"additionalProperties": false,
	}
}

func (o *BulkDeleteOp) Execute(_ context.Context, rawArgs string) (Result, error) {
	var args bulkDeleteArgs
	if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
		return errResult("invalid arguments: " + err.Error()), nil
	}

	n, err := o.Store.BulkDelete(args.Namespace, args.KeyPattern)
	if err != nil {
		return Result{}, err
	}
	return Result{Output: fmt.Sprintf("Deleted %d memories", n)}, nil
}
