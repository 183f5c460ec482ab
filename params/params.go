package params

import (
	"context"

	"github.com/cschleiden/go-taskmapper/core"
)

// Resolver materializes the input bindings of a workflow task against the state of a workflow run.
type Resolver interface {
	// Resolve returns the resolved input. bindings must not be modified. def may be nil.
	Resolve(ctx context.Context, bindings map[string]any, wf *core.Workflow, def *core.TaskDefinition, taskID string) (map[string]any, error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(ctx context.Context, bindings map[string]any, wf *core.Workflow, def *core.TaskDefinition, taskID string) (map[string]any, error)

func (f ResolverFunc) Resolve(ctx context.Context, bindings map[string]any, wf *core.Workflow, def *core.TaskDefinition, taskID string) (map[string]any, error) {
	return f(ctx, bindings, wf, def, taskID)
}
