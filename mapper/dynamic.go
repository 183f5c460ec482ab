package mapper

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cschleiden/go-taskmapper/core"
	"github.com/cschleiden/go-taskmapper/params"
	"github.com/cschleiden/go-taskmapper/taskdef"
)

// DynamicTaskMapper maps DYNAMIC tasks. The name of the task to schedule is read from the input parameter named
// by dynamicTaskNameParam, its definition is looked up by that name.
type DynamicTaskMapper struct {
	resolver params.Resolver
	defs     taskdef.Getter
}

var _ TaskMapper = (*DynamicTaskMapper)(nil)

// NewDynamicTaskMapper creates a new mapper. defs may be nil, in which case only definitions embedded in the
// workflow task are used.
func NewDynamicTaskMapper(resolver params.Resolver, defs taskdef.Getter) *DynamicTaskMapper {
	return &DynamicTaskMapper{resolver: resolver, defs: defs}
}

func (m *DynamicTaskMapper) Type() string {
	return core.TaskTypeDynamic
}

func (m *DynamicTaskMapper) Map(ctx context.Context, mctx *Context) ([]*core.Task, error) {
	wt := mctx.WorkflowTask()

	if wt.DynamicTaskNameParam == "" {
		return nil, invalidTemplate(wt, "dynamic task is missing dynamicTaskNameParam")
	}

	input, err := taskInput(ctx, m.resolver, mctx, nil)
	if err != nil {
		return nil, err
	}

	name, _ := input[wt.DynamicTaskNameParam].(string)
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalidTemplate(wt, "cannot map a dynamic task based on parameter %q, input %v", wt.DynamicTaskNameParam, input)
	}

	def, err := m.definition(ctx, wt, name)
	if err != nil {
		return nil, err
	}

	// Map as if the resolved task had been declared in the workflow definition.
	resolved := wt.Clone()
	resolved.Name = name
	resolved.TaskDefinition = def

	dctx := &Context{
		workflowTask:  resolved,
		workflow:      mctx.Workflow(),
		taskID:        mctx.TaskID(),
		retryCount:    mctx.RetryCount(),
		retriedTaskID: mctx.RetriedTaskID(),
		clock:         mctx.Clock(),
	}

	input, err = resolveInput(ctx, m.resolver, dctx, def)
	if err != nil {
		return nil, err
	}

	t := dctx.NewTask()
	t.TaskType = name
	t.TaskDefName = name
	t.InputData = input
	schedule(t, dctx, def)

	return []*core.Task{t}, nil
}

func (m *DynamicTaskMapper) definition(ctx context.Context, wt *core.WorkflowTask, name string) (*core.TaskDefinition, error) {
	if wt.TaskDefinition != nil && wt.TaskDefinition.Name == name {
		return wt.TaskDefinition, nil
	}

	if m.defs == nil {
		return nil, missingDynamicDefinition(wt, name)
	}

	def, err := m.defs.GetTaskDef(ctx, name)
	if err != nil {
		if errors.Is(err, taskdef.ErrNotFound) {
			return nil, missingDynamicDefinition(wt, name)
		}

		return nil, fmt.Errorf("getting task definition %q: %w", name, err)
	}

	return def, nil
}

func missingDynamicDefinition(wt *core.WorkflowTask, name string) *Error {
	err := missingTaskDefinition(wt)
	err.Detail = fmt.Sprintf("%s resolved to task %s which does not have a definition", describe(wt), name)

	return err
}
