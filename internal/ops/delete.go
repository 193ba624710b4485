package ops

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jeanpaul/mnemo/internal/store"
)

// DeleteOp removes a single record.
type DeleteOp struct {
	Store *store.Store
}

type deleteArgs struct {
	Namespace string `json:"namespace,omitempty"`
	Key       string `json:"key"`
}

func (o *DeleteOp) Name() string { return "memory_delete" }

func (o *DeleteOp) Description() string {
	return "Delete a memory by key. Deleting a missing key is not an error."
}

func (o *DeleteOp) Parameters() any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"namespace": map[string]any{"type": "string", "description": "Logical partition (default: 'default')"},
			"key":       map[string]any{"type": "string", "minLength": 1, "description": "Key to delete"},
		},
		"required":             []string{"key"},
		"additionalProperties": false,
	}
}

func (o *DeleteOp) Execute(_ context.Context, rawArgs string) (Result, error) {
	var args deleteArgs
	if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
		return errResult("invalid arguments: " + err.Error()), nil
	}

	ns := args.Namespace
	if ns == "" {
		ns = store.DefaultNamespace
	}

	deleted, err := o.Store.Delete(args.Namespace, args.Key)
	if err != nil {
		return Result{}, err
	}
	if !deleted {
		return Result{Output: fmt.Sprintf("No memory to delete for %q in namespace %q", args.Key, ns)}, nil
	}
	return Result{Output: fmt.Sprintf("Deleted %q from namespace %q", args.Key, ns)}, nil
}
