package ops

import (
	"context"
	"encoding/json"

	"github.com/jeanpaul/mnemo/internal/store"
)

// SearchOp runs keyword/namespace/tag filtered search.
type SearchOp struct {
	Store *store.Store
}

type searchArgs struct {
	Query     string   `json:"query,omitempty"`
	Namespace string   `json:"namespace,omitempty"`
	Tags      []string `json:"tags,omitempty"`
	Limit     int      `json:"limit,omitempty"`
	SortBy    string   `json:"sort_by,omitempty"`
}

type searchResult struct {
	Count   int             `json:"count"`
	Records []*store.Record `json:"records"`
}

func (o *SearchOp) Name() string { return "memory_search" }

func (o *SearchOp) Description() string {
	return "Search memories. The query matches key or value case-insensitively; tags filter with AND semantics. Sort by 'recency' (default) or 'relevance' (exact key match first, then partial)."
}

func (o *SearchOp) Parameters() any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"query":     map[string]any{"type": "string", "description": "Substring to match against keys and values"},
			"namespace": map[string]any{"type": "string", "description": "Restrict to one namespace"},
			"tags":      map[string]any{"type": "array", "items": map[string]any{"type": "string"}, "description": "Every listed tag must be present"},
			"limit":     map[string]any{"type": "integer", "minimum": 1, "description": "Maximum results (default 10)"},
			"sort_by":   map[string]any{"type": "string", "enum": []string{store.SortRecency, store.SortRelevance}},
		},
		"additionalProperties": false,
	}
}

func (o *SearchOp) Execute(_ context.Context, rawArgs string) (Result, error) {
	var args searchArgs
	if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
		return errResult("invalid arguments: " + err.Error()), nil
	}

	records, err := o.Store.Search(store.SearchOptions{
		Query:     args.Query,
		Namespace: args.Namespace,
		Tags:      args.Tags,
		Limit:     args.Limit,
		SortBy:    args.SortBy,
	})
	if err != nil {
		return Result{}, err
	}
	if records == nil {
		records = []*store.Record{}
	}

	out, err := json.MarshalIndent(searchResult{Count: len(records), Records: records}, "", "  ")
	if err != nil {
		return Result{}, err
	}
	return Result{Output: string(out)}, nil
}
