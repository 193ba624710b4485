package ops

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/jeanpaul/mnemo/internal/schema"
	"github.com/jeanpaul/mnemo/internal/store"
)

// Registry holds every registered operation and validates arguments against
// each operation's schema before dispatching.
type Registry struct {
	ops       map[string]Op
	validator *schema.Validator
	log       *slog.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(log *slog.Logger) *Registry {
	if log == nil {
		log = slog.Default()
	}
	return &Registry{
		ops:       make(map[string]Op),
		validator: schema.NewValidator(),
		log:       log,
	}
}

// NewDefaultRegistry builds a registry with every memory operation wired to
// the given store.
func NewDefaultRegistry(s *store.Store, log *slog.Logger) *Registry {
	r := NewRegistry(log)
	r.Register(&StoreOp{Store: s})
	r.Register(&RecallOp{Store: s})
	r.Register(&SearchOp{Store: s})
	r.Register(&ListOp{Store: s})
	r.Register(&DeleteOp{Store: s})
	r.Register(&BulkStoreOp{Store: s})
	r.Register(&BulkDeleteOp{Store: s})
	r.Register(&RelatedOp{Store: s})
	r.Register(&StatsOp{Store: s})
	r.Register(&ExportOp{Store: s})
	r.Register(&ImportOp{Store: s})
	return r
}

// Register adds an operation, replacing any previous one with the same name.
func (r *Registry) Register(op Op) {
	r.ops[op.Name()] = op
}

// Get looks an operation up by name.
func (r *Registry) Get(name string) (Op, bool) {
	op, ok := r.ops[name]
	return op, ok
}

// Names returns every registered operation name, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.ops))
	for name := range r.ops {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Execute validates rawArgs against the operation's schema, then runs it.
// Unknown operations and schema violations come back in Result.Error, so the
// caller always gets a structured answer through one channel.
func (r *Registry) Execute(ctx context.Context, name, rawArgs string) (Result, error) {
	op, ok := r.ops[name]
	if !ok {
		return errResult(fmt.Sprintf("unknown operation: %s", name)), nil
	}
	if rawArgs == "" {
		rawArgs = "{}"
	}

	if err := r.validator.Validate(op.Parameters(), rawArgs); err != nil {
		r.log.Debug("argument validation failed", "op", name, "error", err)
		return errResult(err.Error()), nil
	}

	res, err := op.Execute(ctx, rawArgs)
	if err != nil {
		// Argument-shaped failures the schema can't express (e.g. neither
		// selector on bulk delete) stay soft; real I/O failures stay hard.
		var verr *store.ValidationError
		var perr *store.ParseError
		if errors.As(err, &verr) || errors.As(err, &perr) {
			return errResult(err.Error()), nil
		}
		r.log.Error("operation failed", "op", name, "error", err)
		return Result{}, err
	}
	return res, nil
}
