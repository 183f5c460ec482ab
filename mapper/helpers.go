package mapper

import (
	"context"
	"strconv"
	"strings"

	"github.com/cschleiden/go-taskmapper/core"
	"github.com/cschleiden/go-taskmapper/params"
)

// requireTaskDefinition returns the definition embedded in the workflow task. Worker tasks cannot be mapped
// without one.
func requireTaskDefinition(mctx *Context) (*core.TaskDefinition, error) {
	wt := mctx.WorkflowTask()
	if wt.TaskDefinition == nil {
		return nil, missingTaskDefinition(wt)
	}

	return wt.TaskDefinition, nil
}

// taskDefinition returns the pre-resolved definition of the context, falling back to the one embedded in the
// workflow task. Returns nil if neither is set.
func taskDefinition(mctx *Context) *core.TaskDefinition {
	if def := mctx.TaskDefinition(); def != nil {
		return def
	}

	return mctx.WorkflowTask().TaskDefinition
}

// resolveInput resolves the input bindings of the workflow task.
func resolveInput(ctx context.Context, resolver params.Resolver, mctx *Context, def *core.TaskDefinition) (map[string]any, error) {
	wt := mctx.WorkflowTask()

	input, err := resolver.Resolve(ctx, wt.InputParameters, mctx.Workflow(), def, mctx.TaskID())
	if err != nil {
		return nil, inputResolutionFailure(wt, err)
	}

	if input == nil {
		input = map[string]any{}
	}

	return input, nil
}

// taskInput returns the pre-resolved input of the context, or resolves the input bindings if there is none.
func taskInput(ctx context.Context, resolver params.Resolver, mctx *Context, def *core.TaskDefinition) (map[string]any, error) {
	if input := mctx.TaskInput(); input != nil {
		return input, nil
	}

	return resolveInput(ctx, resolver, mctx, def)
}

// schedule applies the scheduling policy of the workflow task, the context and the optional definition.
func schedule(t *core.Task, mctx *Context, def *core.TaskDefinition) {
	wt := mctx.WorkflowTask()

	t.Status = core.TaskStatusScheduled
	t.StartDelayInSeconds = wt.StartDelay
	t.CallbackAfterSeconds = int64(wt.StartDelay)
	t.RetryCount = mctx.RetryCount()
	t.RetriedTaskID = mctx.RetriedTaskID()

	if def != nil {
		t.ResponseTimeoutSeconds = def.ResponseTimeoutSeconds
		t.RateLimitPerFrequency = def.RateLimitPerFrequency
		t.RateLimitFrequencyInSeconds = def.RateLimitFrequencyInSeconds
		t.IsolationGroupID = def.IsolationGroupID
		t.ExecutionNameSpace = def.ExecutionNameSpace
	}
}

// workerTask maps a task executed by external workers. The runtime type is the task name, workers poll for it.
func workerTask(ctx context.Context, resolver params.Resolver, mctx *Context, def *core.TaskDefinition) ([]*core.Task, error) {
	input, err := resolveInput(ctx, resolver, mctx, def)
	if err != nil {
		return nil, err
	}

	t := mctx.NewTask()
	t.TaskType = mctx.WorkflowTask().Name
	t.InputData = input
	schedule(t, mctx, def)

	return []*core.Task{t}, nil
}

// systemTask maps a task executed by the engine itself. The definition is optional.
func systemTask(ctx context.Context, resolver params.Resolver, mctx *Context, taskType string) (*core.Task, error) {
	def := taskDefinition(mctx)

	input, err := taskInput(ctx, resolver, mctx, def)
	if err != nil {
		return nil, err
	}

	t := mctx.NewTask()
	t.TaskType = taskType
	t.InputData = input
	schedule(t, mctx, def)

	return t, nil
}

// requireInput makes sure the given input parameters are present and not empty.
func requireInput(wt *core.WorkflowTask, input map[string]any, keys ...string) error {
	for _, k := range keys {
		v, ok := input[k]
		if !ok || v == nil {
			return invalidTemplate(wt, "missing input parameter %q", k)
		}

		if s, ok := v.(string); ok && strings.TrimSpace(s) == "" {
			return invalidTemplate(wt, "input parameter %q is empty", k)
		}
	}

	return nil
}

// WithIteration marks tasks as belonging to the given loop iteration, suffixing their reference names.
func WithIteration(tasks []*core.Task, iteration int) []*core.Task {
	suffix := core.IterationSeparator + strconv.Itoa(iteration)

	for _, t := range tasks {
		if !strings.HasSuffix(t.ReferenceTaskName, suffix) {
			t.ReferenceTaskName += suffix
		}
		t.Iteration = iteration
	}

	return tasks
}
