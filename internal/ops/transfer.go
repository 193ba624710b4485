package ops

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jeanpaul/mnemo/internal/store"
)

// ExportOp serializes live records into a transportable snapshot.
type ExportOp struct {
	Store *store.Store
}

type exportArgs struct {
	Namespace string `json:"namespace,omitempty"`
}

func (o *ExportOp) Name() string { return "memory_export" }

func (o *ExportOp) Description() string {
	return "Export live memories as a snapshot for backup or migration. Optionally restricted to one namespace; the store is not modified."
}

func (o *ExportOp) Parameters() any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"namespace": map[string]any{"type": "string", "description": "Export only this namespace"},
		},
		"additionalProperties": false,
	}
}

func (o *ExportOp) Execute(_ context.Context, rawArgs string) (Result, error) {
	var args exportArgs
	if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
		return errResult("invalid arguments: " + err.Error()), nil
	}

	snap, err := o.Store.Export(args.Namespace)
	if err != nil {
		return Result{}, err
	}

	out, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return Result{}, err
	}
	return Result{Output: string(out)}, nil
}

// ImportOp replays a snapshot into the store. The snapshot rides inside the
// arguments, so the registry's schema pass rejects malformed payloads before
// the store is touched; the store itself still refuses partial imports.
type ImportOp struct {
	Store *store.Store
}

type importArgs struct {
	Snapshot  json.RawMessage `json:"snapshot"`
	Overwrite bool            `json:"overwrite,omitempty"`
}

func (o *ImportOp) Name() string { return "memory_import" }

func (o *ImportOp) Description() string {
	return "Import a previously exported snapshot. Existing keys are skipped unless overwrite is true; imported timestamps and tags are preserved verbatim."
}

func (o *ImportOp) Parameters() any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"snapshot": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"version":    map[string]any{"type": "integer"},
					"snapshotId": map[string]any{"type": "string"},
					"exportedAt": map[string]any{"type": "integer"},
					"records": map[string]any{
						"type": "array",
						"items": map[string]any{
							"type": "object",
							"properties": map[string]any{
								"key":       map[string]any{"type": "string", "minLength": 1},
								"namespace": map[string]any{"type": "string"},
								"value":     map[string]any{"type": "string", "minLength": 1},
								"tags":      map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
								"createdAt": map[string]any{"type": "integer"},
								"updatedAt": map[string]any{"type": "integer"},
								"expiresAt": map[string]any{"type": "integer"},
							},
							"required": []string{"key", "value"},
						},
					},
				},
				"required": []string{"records"},
			},
			"overwrite": map[string]any{"type": "boolean", "description": "Overwrite existing keys instead of skipping them"},
		},
		"required":             []string{"snapshot"},
		"additionalProperties": false,
	}
}

func (o *ImportOp) Execute(_ context.Context, rawArgs string) (Result, error) {
	var args importArgs
	if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
		return errResult("invalid arguments: " + err.Error()), nil
	}

	imported, skipped, err := o.Store.Import(args.Snapshot, args.Overwrite)
	if err != nil {
		return Result{}, err
	}
	return Result{Output: fmt.Sprintf("Imported %d memories, skipped %d", imported, skipped)}, nil
}
