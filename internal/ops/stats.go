package ops

import (
	"context"
	"encoding/json"

	"github.com/jeanpaul/mnemo/internal/store"
)

// StatsOp reports aggregate metrics over live records.
type StatsOp struct {
	Store *store.Store
}

func (o *StatsOp) Name() string { return "memory_stats" }

func (o *StatsOp) Description() string {
	return "Summarize the store: counts by namespace and tag, oldest and newest memories, memories expiring within 24h, on-disk size and estimated token total."
}

func (o *StatsOp) Parameters() any {
	return map[string]any{
		"type":                 "object",
		"properties":           map[string]any{},
		"additionalProperties": false,
	}
}

func (o *StatsOp) Execute(_ context.Context, _ string) (Result, error) {
	stats, err := o.Store.Stats()
	if err != nil {
		return Result{}, err
	}

	out, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return Result{}, err
	}
	return Result{Output: string(out)}, nil
}
