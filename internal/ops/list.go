package ops

import (
	"context"
	"encoding/json"

	"github.com/jeanpaul/mnemo/internal/store"
)

// ListOp returns keys grouped by namespace, with no payloads. This is the
// cheap full-namespace view, independent of the search path.
type ListOp struct {
	Store *store.Store
}

type listArgs struct {
	Namespace string   `json:"namespace,omitempty"`
	Tags      []string `json:"tags,omitempty"`
}

func (o *ListOp) Name() string { return "memory_list" }

func (o *ListOp) Description() string {
	return "List memory keys grouped by namespace. Optional namespace and tag filters; tags use AND semantics."
}

func (o *ListOp) Parameters() any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"namespace": map[string]any{"type": "string", "description": "Restrict to one namespace"},
			"tags":      map[string]any{"type": "array", "items": map[string]any{"type": "string"}, "description": "Every listed tag must be present"},
		},
		"additionalProperties": false,
	}
}

func (o *ListOp) Execute(_ context.Context, rawArgs string) (Result, error) {
	var args listArgs
	if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
		return errResult("invalid arguments: " + err.Error()), nil
	}

	listing, err := o.Store.List(args.Namespace, args.Tags)
	if err != nil {
		return Result{}, err
	}

	out, err := json.MarshalIndent(listing, "", "  ")
	if err != nil {
		return Result{}, err
	}
	return Result{Output: string(out)}, nil
}
