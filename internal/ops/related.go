package ops

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jeanpaul/mnemo/internal/store"
)

// RelatedOp scores other live records against an anchor record.
type RelatedOp struct {
	Store *store.Store
}

type relatedArgs struct {
	Namespace string `json:"namespace,omitempty"`
	Key       string `json:"key"`
	Limit     int    `json:"limit,omitempty"`
}

type relatedResult struct {
	Anchor  string          `json:"anchor"`
	Count   int             `json:"count"`
	Related []store.Related `json:"related"`
}

func (o *RelatedOp) Name() string { return "memory_related" }

func (o *RelatedOp) Description() string {
	return "Find memories related to an anchor memory, scored by shared namespace, shared tags, shared key tokens and creation-time proximity. Unrelated records are excluded entirely."
}

func (o *RelatedOp) Parameters() any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"namespace": map[string]any{"type": "string", "description": "Anchor namespace (default: 'default')"},
			"key":       map[string]any{"type": "string", "minLength": 1, "description": "Anchor key"},
			"limit":     map[string]any{"type": "integer", "minimum": 1, "description": "Maximum results (default 10)"},
		},
		"required":             []string{"key"},
		"additionalProperties": false,
	}
}

func (o *RelatedOp) Execute(_ context.Context, rawArgs string) (Result, error) {
	var args relatedArgs
	if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
		return errResult("invalid arguments: " + err.Error()), nil
	}

	related, err := o.Store.FindRelated(args.Namespace, args.Key, args.Limit)
	if errors.Is(err, store.ErrNotFound) {
		ns := args.Namespace
		if ns == "" {
			ns = store.DefaultNamespace
		}
		return Result{Output: fmt.Sprintf("No memory found for %q in namespace %q", args.Key, ns)}, nil
	}
	if err != nil {
		return Result{}, err
	}
	if related == nil {
		related = []store.Related{}
	}

	out, err := json.MarshalIndent(relatedResult{
		Anchor:  store.CompositeKey(args.Namespace, args.Key),
		Count:   len(related),
		Related: related,
	}, "", "  ")
	if err != nil {
		return Result{}, err
	}
	return Result{Output: string(out)}, nil
}
