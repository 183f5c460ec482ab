package mapper

import (
	"context"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/cschleiden/go-taskmapper/core"
	"github.com/stretchr/testify/require"
)

func Test_SystemTaskMappers(t *testing.T) {
	tests := []struct {
		name    string
		wt      core.WorkflowTask
		input   map[string]any
		wantErr ErrorKind
		check   func(t *testing.T, task *core.Task)
	}{
		{
			name: "event",
			wt: core.WorkflowTask{
				Type:            core.TaskTypeEvent,
				Sink:            " conductor:orders ",
				InputParameters: map[string]any{"order": "${workflow.input.orderId}"},
			},
			check: func(t *testing.T, task *core.Task) {
				require.Equal(t, core.TaskTypeEvent, task.TaskType)
				require.Equal(t, map[string]any{"order": "o-1", "sink": "conductor:orders"}, task.InputData)
			},
		},
		{
			name:    "event without sink",
			wt:      core.WorkflowTask{Type: core.TaskTypeEvent},
			wantErr: InvalidTemplate,
		},
		{
			name: "wait for signal",
			wt:   core.WorkflowTask{Type: core.TaskTypeWait},
			check: func(t *testing.T, task *core.Task) {
				require.Equal(t, core.TaskTypeWait, task.TaskType)
				require.True(t, task.WaitTimeout.IsZero())
			},
		},
		{
			name: "wait duration",
			wt: core.WorkflowTask{
				Type:            core.TaskTypeWait,
				InputParameters: map[string]any{WaitDurationInput: "1d 2h"},
			},
			check: func(t *testing.T, task *core.Task) {
				require.Equal(t, clock.NewMock().Now().Add(26*time.Hour), task.WaitTimeout)
			},
		},
		{
			name: "wait until",
			wt: core.WorkflowTask{
				Type:            core.TaskTypeWait,
				InputParameters: map[string]any{WaitUntilInput: "2024-05-01 10:30 UTC"},
			},
			check: func(t *testing.T, task *core.Task) {
				require.True(t, time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC).Equal(task.WaitTimeout))
			},
		},
		{
			name: "wait duration and until",
			wt: core.WorkflowTask{
				Type:            core.TaskTypeWait,
				InputParameters: map[string]any{WaitDurationInput: "1h", WaitUntilInput: "2024-05-01"},
			},
			wantErr: InvalidTemplate,
		},
		{
			name: "wait invalid duration",
			wt: core.WorkflowTask{
				Type:            core.TaskTypeWait,
				InputParameters: map[string]any{WaitDurationInput: "soon"},
			},
			wantErr: InvalidTemplate,
		},
		{
			name: "inline cel",
			wt: core.WorkflowTask{
				Type: core.TaskTypeInline,
				InputParameters: map[string]any{
					"evaluatorType": EvaluatorCEL,
					"expression":    "input.value > 1",
					"value":         "${workflow.input.amount}",
				},
			},
			check: func(t *testing.T, task *core.Task) {
				require.Equal(t, core.TaskTypeInline, task.TaskType)
				require.Equal(t, int64(42), task.InputData["value"])
			},
		},
		{
			name: "inline broken cel",
			wt: core.WorkflowTask{
				Type:            core.TaskTypeInline,
				InputParameters: map[string]any{"evaluatorType": EvaluatorCEL, "expression": "input.value >"},
			},
			wantErr: InvalidTemplate,
		},
		{
			name:    "inline without expression",
			wt:      core.WorkflowTask{Type: core.TaskTypeInline, InputParameters: map[string]any{"evaluatorType": "javascript"}},
			wantErr: InvalidTemplate,
		},
		{
			name: "lambda",
			wt: core.WorkflowTask{
				Type:            core.TaskTypeLambda,
				InputParameters: map[string]any{"scriptExpression": "return 1"},
			},
		},
		{
			name:    "lambda without script",
			wt:      core.WorkflowTask{Type: core.TaskTypeLambda},
			wantErr: InvalidTemplate,
		},
		{
			name: "json jq transform",
			wt: core.WorkflowTask{
				Type:            core.TaskTypeJSONJQTransform,
				InputParameters: map[string]any{"queryExpression": ".a", "a": 1},
			},
		},
		{
			name:    "json jq transform without query",
			wt:      core.WorkflowTask{Type: core.TaskTypeJSONJQTransform, InputParameters: map[string]any{"queryExpression": "  "}},
			wantErr: InvalidTemplate,
		},
		{
			name: "terminate",
			wt: core.WorkflowTask{
				Type:            core.TaskTypeTerminate,
				InputParameters: map[string]any{TerminationStatusInput: "FAILED"},
			},
		},
		{
			name: "terminate invalid status",
			wt: core.WorkflowTask{
				Type:            core.TaskTypeTerminate,
				InputParameters: map[string]any{TerminationStatusInput: "RUNNING"},
			},
			wantErr: InvalidTemplate,
		},
		{
			name: "start workflow",
			wt: core.WorkflowTask{
				Type: core.TaskTypeStartWorkflow,
				InputParameters: map[string]any{StartWorkflowInput: map[string]any{
					"name":  "other",
					"input": map[string]any{"order": "${workflow.input.orderId}"},
				}},
			},
			check: func(t *testing.T, task *core.Task) {
				req := task.InputData[StartWorkflowInput].(map[string]any)
				require.Equal(t, map[string]any{"order": "o-1"}, req["input"])
			},
		},
		{
			name: "start workflow without name",
			wt: core.WorkflowTask{
				Type:            core.TaskTypeStartWorkflow,
				InputParameters: map[string]any{StartWorkflowInput: map[string]any{"version": 1}},
			},
			wantErr: InvalidTemplate,
		},
		{
			name: "http",
			wt: core.WorkflowTask{
				Type:            core.TaskTypeHTTP,
				InputParameters: map[string]any{"uri": "https://example.com/orders/${workflow.input.orderId}"},
			},
			check: func(t *testing.T, task *core.Task) {
				require.Equal(t, core.TaskTypeHTTP, task.TaskType)
				require.Equal(t, "https://example.com/orders/o-1", task.InputData["uri"])
				require.Zero(t, task.RateLimitPerFrequency)
			},
		},
		{
			name: "http with definition",
			wt: core.WorkflowTask{
				Type:            core.TaskTypeHTTP,
				InputParameters: map[string]any{"http_request": map[string]any{"method": "GET"}},
				TaskDefinition: &core.TaskDefinition{
					Name:                        "http",
					RateLimitPerFrequency:       10,
					RateLimitFrequencyInSeconds: 1,
				},
			},
			check: func(t *testing.T, task *core.Task) {
				require.Equal(t, 10, task.RateLimitPerFrequency)
				require.Equal(t, 1, task.RateLimitFrequencyInSeconds)
			},
		},
		{
			name:    "http without request",
			wt:      core.WorkflowTask{Type: core.TaskTypeHTTP},
			wantErr: InvalidTemplate,
		},
		{
			name: "kafka publish",
			wt: core.WorkflowTask{
				Type:            core.TaskTypeKafkaPublish,
				InputParameters: map[string]any{"kafka_request": map[string]any{"topic": "orders"}},
			},
			check: func(t *testing.T, task *core.Task) {
				require.Equal(t, core.TaskTypeKafkaPublish, task.TaskType)
			},
		},
		{
			name:    "kafka publish without request",
			wt:      core.WorkflowTask{Type: core.TaskTypeKafkaPublish},
			wantErr: InvalidTemplate,
		},
		{
			name: "human",
			wt:   core.WorkflowTask{Type: core.TaskTypeHuman},
		},
		{
			name: "noop",
			wt:   core.WorkflowTask{Type: core.TaskTypeNoop},
		},
		{
			name: "set variable",
			wt: core.WorkflowTask{
				Type:            core.TaskTypeSetVariable,
				InputParameters: map[string]any{"total": "${workflow.input.amount}"},
			},
			check: func(t *testing.T, task *core.Task) {
				require.Equal(t, map[string]any{"total": int64(42)}, task.InputData)
			},
		},
		{
			name: "pre-resolved input",
			wt: core.WorkflowTask{
				Type:            core.TaskTypeSetVariable,
				InputParameters: map[string]any{"total": "${workflow.input.amount}"},
			},
			input: map[string]any{"total": 1},
			check: func(t *testing.T, task *core.Task) {
				require.Equal(t, map[string]any{"total": 1}, task.InputData)
			},
		},
		{
			name: "sub workflow",
			wt: core.WorkflowTask{
				Type: core.TaskTypeSubWorkflow,
				SubWorkflowParam: &core.SubWorkflowParams{
					Name:         "${workflow.input.orderId}_flow",
					Version:      "2",
					TaskToDomain: map[string]string{"*": "blue"},
				},
				InputParameters: map[string]any{"order": "${workflow.input.orderId}"},
			},
			check: func(t *testing.T, task *core.Task) {
				require.Equal(t, core.TaskTypeSubWorkflow, task.TaskType)
				require.Equal(t, "o-1_flow", task.InputData[SubWorkflowNameInput])
				require.Equal(t, 2, task.InputData[SubWorkflowVersionInput])
				require.Equal(t, map[string]string{"*": "blue"}, task.InputData[SubWorkflowTaskToDomainInput])
				require.Equal(t, map[string]any{"order": "o-1"}, task.InputData[WorkflowInputInput])
			},
		},
		{
			name: "sub workflow with embedded definition",
			wt: core.WorkflowTask{
				Type: core.TaskTypeSubWorkflow,
				SubWorkflowParam: &core.SubWorkflowParams{
					WorkflowDefinition: &core.WorkflowDefinition{Name: "inline_flow"},
				},
			},
			check: func(t *testing.T, task *core.Task) {
				require.Equal(t, "inline_flow", task.InputData[SubWorkflowNameInput])
				require.Equal(t, 0, task.InputData[SubWorkflowVersionInput])
				require.NotNil(t, task.InputData[SubWorkflowDefinitionInput])
			},
		},
		{
			name:    "sub workflow without params",
			wt:      core.WorkflowTask{Type: core.TaskTypeSubWorkflow},
			wantErr: InvalidTemplate,
		},
		{
			name: "sub workflow negative version",
			wt: core.WorkflowTask{
				Type:             core.TaskTypeSubWorkflow,
				SubWorkflowParam: &core.SubWorkflowParams{Name: "flow", Version: -1},
			},
			wantErr: InvalidTemplate,
		},
	}

	r := newTestRegistry(t)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wt := tt.wt
			wt.Name = "system_task"
			wt.TaskReferenceName = "system_ref"
			wt.StartDelay = 3

			mctx := newTestContext(t, &wt, testWorkflow(wt), func(p *ContextParams) {
				p.TaskInput = tt.input
			})

			tasks, err := r.Dispatch(context.Background(), mctx)
			if tt.wantErr != 0 {
				require.Nil(t, tasks)
				require.True(t, IsKind(err, tt.wantErr), "got %v", err)
				require.Contains(t, err.Error(), "system_ref")
				return
			}

			require.NoError(t, err)
			require.Len(t, tasks, 1)

			task := tasks[0]
			require.Equal(t, core.TaskStatusScheduled, task.Status)
			require.Equal(t, "system_ref", task.ReferenceTaskName)
			require.Equal(t, "task-1", task.TaskID)
			require.Equal(t, 3, task.StartDelayInSeconds)
			require.Equal(t, int64(3), task.CallbackAfterSeconds)
			require.NotNil(t, task.InputData)

			if tt.check != nil {
				tt.check(t, task)
			}
		})
	}
}

func Test_SystemTaskMappers_Domain(t *testing.T) {
	wt := core.WorkflowTask{Name: "noop", TaskReferenceName: "noop", Type: core.TaskTypeNoop}

	tests := []struct {
		name         string
		taskToDomain map[string]string
		want         string
	}{
		{"none", nil, ""},
		{"by name", map[string]string{"noop": "green", "*": "blue"}, "green"},
		{"wildcard", map[string]string{"*": "blue"}, "blue"},
	}

	r := newTestRegistry(t)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wf := testWorkflow(wt)
			wf.TaskToDomain = tt.taskToDomain

			tasks, err := r.Dispatch(context.Background(), newTestContext(t, &wt, wf))
			require.NoError(t, err)
			require.Equal(t, tt.want, tasks[0].Domain)
		})
	}
}

func Test_SubWorkflowTaskMapper_DoesNotShareTemplate(t *testing.T) {
	wt := core.WorkflowTask{
		Name:              "child",
		TaskReferenceName: "child",
		Type:              core.TaskTypeSubWorkflow,
		SubWorkflowParam: &core.SubWorkflowParams{
			TaskToDomain: map[string]string{"a": "blue"},
			WorkflowDefinition: &core.WorkflowDefinition{
				Name:  "inline_flow",
				Tasks: []core.WorkflowTask{{Name: "step", TaskReferenceName: "step"}},
			},
		},
	}

	r := newTestRegistry(t)

	tasks, err := r.Dispatch(context.Background(), newTestContext(t, &wt, testWorkflow(wt)))
	require.NoError(t, err)
	require.Len(t, tasks, 1)

	tasks[0].InputData[SubWorkflowTaskToDomainInput].(map[string]string)["a"] = "changed"
	def := tasks[0].InputData[SubWorkflowDefinitionInput].(*core.WorkflowDefinition)
	def.Name = "changed"
	def.Tasks[0].Name = "changed"

	require.Equal(t, map[string]string{"a": "blue"}, wt.SubWorkflowParam.TaskToDomain)
	require.Equal(t, "inline_flow", wt.SubWorkflowParam.WorkflowDefinition.Name)
	require.Equal(t, "step", wt.SubWorkflowParam.WorkflowDefinition.Tasks[0].Name)
}
