package mapper

import (
	"context"
	"maps"

	"github.com/cschleiden/go-taskmapper/core"
	"github.com/cschleiden/go-taskmapper/params"
	"github.com/cschleiden/go-taskmapper/taskdef"
	"github.com/go-viper/mapstructure/v2"
)

// Input parameters of the fork task produced for FORK_JOIN_DYNAMIC tasks.
const (
	ForkedTasksInput      = "forkedTasks"
	ForkedTaskInputsInput = "forkedTaskInputs"
)

// ForkJoinDynamicTaskMapper maps FORK_JOIN_DYNAMIC tasks. The tasks to fork are read from the input parameter
// named by dynamicForkTasksParam, their inputs from the parameter named by dynamicForkTasksInputParamName, keyed
// by reference name.
type ForkJoinDynamicTaskMapper struct {
	resolver params.Resolver
	sub      SubtaskMapper
	defs     taskdef.Getter
}

var _ TaskMapper = (*ForkJoinDynamicTaskMapper)(nil)

// NewForkJoinDynamicTaskMapper creates a new mapper. defs is used to look up definitions of forked tasks that do
// not embed one and may be nil.
func NewForkJoinDynamicTaskMapper(resolver params.Resolver, sub SubtaskMapper, defs taskdef.Getter) *ForkJoinDynamicTaskMapper {
	return &ForkJoinDynamicTaskMapper{resolver: resolver, sub: sub, defs: defs}
}

func (m *ForkJoinDynamicTaskMapper) Type() string {
	return core.TaskTypeForkJoinDynamic
}

func (m *ForkJoinDynamicTaskMapper) Map(ctx context.Context, mctx *Context) ([]*core.Task, error) {
	wt := mctx.WorkflowTask()

	if wt.DynamicForkTasksParam == "" {
		return nil, invalidTemplate(wt, "dynamic fork task is missing dynamicForkTasksParam")
	}

	input, err := taskInput(ctx, m.resolver, mctx, nil)
	if err != nil {
		return nil, err
	}

	forked, err := m.forkedTasks(ctx, wt, input)
	if err != nil {
		return nil, err
	}

	forkedInputs := map[string]any{}
	if wt.DynamicForkTasksInputParamName != "" {
		v, ok := input[wt.DynamicForkTasksInputParamName].(map[string]any)
		if !ok {
			return nil, invalidTemplate(wt, "input to the dynamically forked tasks is not a map, found %T", input[wt.DynamicForkTasksInputParamName])
		}
		forkedInputs = v
	}

	join, err := followingJoin(mctx)
	if err != nil {
		return nil, err
	}

	refs := make([]string, 0, len(forked))
	for i := range forked {
		refs = append(refs, forked[i].TaskReferenceName)
	}

	fork := mctx.NewTask()
	fork.TaskType = core.TaskTypeFork
	fork.InputData = map[string]any{
		ForkedTasksInput:      refs,
		ForkedTaskInputsInput: forkedInputs,
	}
	schedule(fork, mctx, taskDefinition(mctx))

	tasks := []*core.Task{fork}

	for i := range forked {
		f := &forked[i]

		forkedTasks, err := m.sub.MapSubtask(ctx, mctx, f)
		if err != nil {
			return nil, err
		}

		if in, ok := forkedInputs[f.TaskReferenceName].(map[string]any); ok {
			for _, t := range forkedTasks {
				if t.ReferenceTaskName != f.TaskReferenceName {
					continue
				}

				if t.InputData == nil {
					t.InputData = map[string]any{}
				}
				maps.Copy(t.InputData, core.CloneMap(in))
			}
		}

		tasks = append(tasks, forkedTasks...)
	}

	jctx := mctx.WithWorkflowTask(join, SubtaskID(mctx.TaskID(), join.TaskReferenceName))
	jt := jctx.NewTask()
	jt.TaskType = core.TaskTypeJoin
	jt.InputData = map[string]any{JoinOnInput: refs}
	schedule(jt, jctx, nil)

	return append(tasks, jt), nil
}

// forkedTasks decodes the workflow tasks to fork and embeds their definitions.
func (m *ForkJoinDynamicTaskMapper) forkedTasks(ctx context.Context, wt *core.WorkflowTask, input map[string]any) ([]core.WorkflowTask, error) {
	raw, ok := input[wt.DynamicForkTasksParam]
	if !ok || raw == nil {
		return nil, invalidTemplate(wt, "missing input parameter %q", wt.DynamicForkTasksParam)
	}

	var forked []core.WorkflowTask
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &forked,
		TagName:          "json",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, err
	}

	if err := decoder.Decode(raw); err != nil {
		return nil, invalidTemplate(wt, "decoding dynamically forked tasks: %v", err)
	}

	seen := make(map[string]bool, len(forked))
	for i := range forked {
		f := &forked[i]

		if f.TaskReferenceName == "" {
			return nil, invalidTemplate(wt, "dynamically forked task %d has no reference name", i)
		}

		if seen[f.TaskReferenceName] {
			return nil, invalidTemplate(wt, "duplicate dynamically forked task reference %q", f.TaskReferenceName)
		}
		seen[f.TaskReferenceName] = true

		if m.defs != nil {
			if err := taskdef.PopulateTask(ctx, m.defs, f); err != nil {
				return nil, err
			}
		}
	}

	return forked, nil
}
