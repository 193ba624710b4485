package ops

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jeanpaul/mnemo/internal/store"
)

// RecallOp fetches one record by (namespace, key). A miss is a successful
// "not found" answer, not an error; callers asking the store a question
// should get a sentence back, not an exception.
type RecallOp struct {
	Store *store.Store
}

type recallArgs struct {
	Namespace string `json:"namespace,omitempty"`
	Key       string `json:"key"`
}

// recallView is the record plus the derived reporting fields recall adds.
type recallView struct {
	*store.Record
	AgeSeconds      int64 `json:"ageSeconds"`
	EstimatedTokens int   `json:"estimatedTokens"`
}

func (o *RecallOp) Name() string { return "memory_recall" }

func (o *RecallOp) Description() string {
	return "Recall a memory by key. Expired memories are indistinguishable from missing ones."
}

func (o *RecallOp) Parameters() any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"namespace": map[string]any{"type": "string", "description": "Logical partition (default: 'default')"},
			"key":       map[string]any{"type": "string", "minLength": 1, "description": "Key to look up"},
		},
		"required":             []string{"key"},
		"additionalProperties": false,
	}
}

func (o *RecallOp) Execute(_ context.Context, rawArgs string) (Result, error) {
	var args recallArgs
	if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
		return errResult("invalid arguments: " + err.Error()), nil
	}

	rec, err := o.Store.Get(args.Namespace, args.Key)
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

	view := recallView{
		Record:          rec,
		AgeSeconds:      (time.Now().UnixMilli() - rec.CreatedAt) / 1000,
		EstimatedTokens: store.EstimateTokens(rec.Value),
	}
	out, err := json.MarshalIndent(view, "", "  ")
	if err != nil {
		return Result{}, err
	}
	return Result{Output: string(out)}, nil
}
