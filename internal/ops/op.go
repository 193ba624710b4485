// Package ops exposes the store as a set of named operations, each with its
// own typed arguments and JSON schema. This is the boundary an RPC or tool
// protocol layer calls into; the transport itself lives elsewhere.
package ops

import "context"

// Result is what an operation hands back across the boundary. Exactly one of
// Output and Error is meaningful; both are human-readable, never raw stack
// traces.
type Result struct {
	Output string
	Error  string
}

// Op is a single boundary-exposed operation.
type Op interface {
	Name() string
	Description() string
	// Parameters returns the JSON schema for the operation's arguments.
	Parameters() any
	// Execute runs the operation. Argument-level problems come back inside
	// Result.Error; only infrastructure failures (I/O) surface as an error.
	Execute(ctx context.Context, rawArgs string) (Result, error)
}

func errResult(msg string) Result { return Result{Error: msg} }
