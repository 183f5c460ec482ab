package mapper

import (
	"context"
	"errors"
	"testing"

	"github.com/cschleiden/go-taskmapper/core"
	"github.com/cschleiden/go-taskmapper/params"
	"github.com/stretchr/testify/require"
)

func exclusiveTemplate() *core.WorkflowTask {
	return &core.WorkflowTask{
		Name:              "exclusive_task",
		TaskReferenceName: "exclusive_task",
		Type:              core.TaskTypeExclusive,
		TaskDefinition: &core.TaskDefinition{
			Name:                        "exclusive_task",
			ResponseTimeoutSeconds:      30,
			RateLimitPerFrequency:       1,
			RateLimitFrequencyInSeconds: 60,
		},
		StartDelay: 0,
	}
}

func TestExclusiveTaskMapper_Map(t *testing.T) {
	wt := exclusiveTemplate()
	wf := testWorkflow(*wt)

	m := NewExclusiveTaskMapper(params.NewTemplateResolver())
	require.Equal(t, core.TaskTypeExclusive, m.Type())

	mctx := newTestContext(t, wt, wf, func(p *ContextParams) {
		p.RetryCount = 0
		p.RetriedTaskID = "r1"
	})

	tasks, err := m.Map(context.Background(), mctx)
	require.NoError(t, err)
	require.Len(t, tasks, 1)

	task := tasks[0]
	require.Equal(t, "exclusive_task", task.TaskType)
	require.Equal(t, core.TaskStatusScheduled, task.Status)
	require.Equal(t, int64(30), task.ResponseTimeoutSeconds)
	require.Equal(t, 1, task.RateLimitPerFrequency)
	require.Equal(t, 60, task.RateLimitFrequencyInSeconds)
	require.Equal(t, "r1", task.RetriedTaskID)
	require.Equal(t, 0, task.RetryCount)
	require.Equal(t, "task-1", task.TaskID)
	require.Equal(t, "exclusive_task", task.ReferenceTaskName)
	require.Equal(t, "wf-1", task.WorkflowInstanceID)
	require.Equal(t, "test_workflow", task.WorkflowType)
	require.Equal(t, "corr-1", task.CorrelationID)
}

func TestExclusiveTaskMapper_MissingTaskDefinition(t *testing.T) {
	wt := exclusiveTemplate()
	wt.TaskDefinition = nil

	resolverCalled := false
	resolver := params.ResolverFunc(func(context.Context, map[string]any, *core.Workflow, *core.TaskDefinition, string) (map[string]any, error) {
		resolverCalled = true
		return map[string]any{}, nil
	})

	m := NewExclusiveTaskMapper(resolver)

	tasks, err := m.Map(context.Background(), newTestContext(t, wt, testWorkflow(*wt)))
	require.Nil(t, tasks)
	require.ErrorIs(t, err, ErrMissingTaskDefinition)
	require.Contains(t, err.Error(), "exclusive_task")
	require.False(t, resolverCalled, "must fail before resolving input")
}

func TestExclusiveTaskMapper_InputResolutionFailure(t *testing.T) {
	wt := exclusiveTemplate()
	cause := errors.New("resolver unavailable")

	m := NewExclusiveTaskMapper(params.ResolverFunc(func(context.Context, map[string]any, *core.Workflow, *core.TaskDefinition, string) (map[string]any, error) {
		return nil, cause
	}))

	tasks, err := m.Map(context.Background(), newTestContext(t, wt, testWorkflow(*wt)))
	require.Nil(t, tasks)
	require.ErrorIs(t, err, ErrInputResolutionFailure)
	require.ErrorIs(t, err, cause)
}

func TestWorkerTaskMappers_Properties(t *testing.T) {
	resolver := params.NewTemplateResolver()

	mappers := []TaskMapper{
		NewSimpleTaskMapper(resolver),
		NewExclusiveTaskMapper(resolver),
		NewUserDefinedTaskMapper(resolver),
	}

	tests := []struct {
		name          string
		startDelay    int
		retryCount    int
		retriedTaskID string
	}{
		{"first attempt", 0, 0, ""},
		{"retry", 0, 2, "previous"},
		{"delayed", 15, 0, ""},
		{"delayed retry", 5, 1, "previous"},
	}

	for _, m := range mappers {
		for _, tt := range tests {
			t.Run(m.Type()+" "+tt.name, func(t *testing.T) {
				wt := &core.WorkflowTask{
					Name:              "worker_task",
					TaskReferenceName: "worker_ref",
					Type:              m.Type(),
					StartDelay:        tt.startDelay,
					TaskDefinition:    taskDef("worker_task"),
					InputParameters: map[string]any{
						"order": "${workflow.input.orderId}",
					},
				}

				mctx := newTestContext(t, wt, testWorkflow(*wt), func(p *ContextParams) {
					p.RetryCount = tt.retryCount
					p.RetriedTaskID = tt.retriedTaskID
				})

				tasks, err := m.Map(context.Background(), mctx)
				require.NoError(t, err)
				require.Len(t, tasks, 1)

				task := tasks[0]
				require.Equal(t, core.TaskStatusScheduled, task.Status)
				require.Equal(t, "worker_task", task.TaskType)
				require.Equal(t, int64(task.StartDelayInSeconds), task.CallbackAfterSeconds)
				require.Equal(t, tt.startDelay, task.StartDelayInSeconds)
				require.Equal(t, tt.retryCount, task.RetryCount)
				require.Equal(t, tt.retriedTaskID, task.RetriedTaskID)
				require.Equal(t, map[string]any{"order": "o-1"}, task.InputData)

				// Mapping the same context again yields the same task.
				again, err := m.Map(context.Background(), mctx)
				require.NoError(t, err)
				require.Equal(t, tasks, again)
			})
		}
	}
}

func TestUserDefinedTaskMapper_DefinitionFromContext(t *testing.T) {
	wt := &core.WorkflowTask{Name: "ud", TaskReferenceName: "ud", Type: core.TaskTypeUserDefined}

	m := NewUserDefinedTaskMapper(params.NewTemplateResolver())

	_, err := m.Map(context.Background(), newTestContext(t, wt, testWorkflow(*wt)))
	require.ErrorIs(t, err, ErrMissingTaskDefinition)

	def := taskDef("ud")
	def.RateLimitPerFrequency = 5
	def.RateLimitFrequencyInSeconds = 10

	tasks, err := m.Map(context.Background(), newTestContext(t, wt, testWorkflow(*wt), func(p *ContextParams) {
		p.TaskDefinition = def
	}))
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	require.Equal(t, 5, tasks[0].RateLimitPerFrequency)
	require.Equal(t, 10, tasks[0].RateLimitFrequencyInSeconds)
}

func TestSimpleTaskMapper_InputTemplate(t *testing.T) {
	def := taskDef("simple")
	def.InputTemplate = map[string]any{"region": "eu", "order": "unset"}

	wt := &core.WorkflowTask{
		Name:              "simple",
		TaskReferenceName: "simple",
		TaskDefinition:    def,
		InputParameters:   map[string]any{"order": "${workflow.input.orderId}"},
	}

	tasks, err := NewSimpleTaskMapper(params.NewTemplateResolver()).Map(context.Background(), newTestContext(t, wt, testWorkflow(*wt)))
	require.NoError(t, err)
	require.Equal(t, map[string]any{"region": "eu", "order": "o-1"}, tasks[0].InputData)
}
