package mapper

import (
	"context"

	"github.com/cschleiden/go-taskmapper/core"
)

// TaskMapper turns a workflow task of a single task type into the tasks to schedule for it.
type TaskMapper interface {
	// Type returns the task type tag handled by this mapper.
	Type() string

	// Map returns the tasks to schedule, in order. It must not have side effects and must not return partial
	// results together with an error.
	Map(ctx context.Context, mctx *Context) ([]*core.Task, error)
}

// SubtaskMapper maps workflow tasks nested in structural tasks such as decisions, forks and loops.
type SubtaskMapper interface {
	MapSubtask(ctx context.Context, parent *Context, wt *core.WorkflowTask) ([]*core.Task, error)
}

// MapFunc adapts a function to the TaskMapper interface.
type MapFunc func(ctx context.Context, mctx *Context) ([]*core.Task, error)

type funcMapper struct {
	taskType string
	fn       MapFunc
}

// Func returns a TaskMapper for the given task type backed by fn.
func Func(taskType string, fn MapFunc) TaskMapper {
	return &funcMapper{taskType: taskType, fn: fn}
}

func (m *funcMapper) Type() string {
	return m.taskType
}

func (m *funcMapper) Map(ctx context.Context, mctx *Context) ([]*core.Task, error) {
	return m.fn(ctx, mctx)
}
