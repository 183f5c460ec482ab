package core

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func simple(ref string) WorkflowTask {
	return WorkflowTask{Name: ref, TaskReferenceName: ref}
}

func testDefinition() *WorkflowDefinition {
	return &WorkflowDefinition{
		Name:    "order",
		Version: 2,
		Tasks: []WorkflowTask{
			simple("validate"),
			{
				Name:              "fork",
				TaskReferenceName: "fork",
				Type:              TaskTypeForkJoin,
				ForkTasks: [][]WorkflowTask{
					{simple("a1"), simple("a2")},
					{simple("b1")},
				},
			},
			{Name: "join", TaskReferenceName: "join", Type: TaskTypeJoin, JoinOn: []string{"a2", "b1"}},
			{
				Name:              "decide",
				TaskReferenceName: "decide",
				Type:              TaskTypeSwitch,
				DecisionCases: map[string][]WorkflowTask{
					"express": {simple("ship_fast")},
				},
				DefaultCase: []WorkflowTask{simple("ship_slow"), simple("notify")},
			},
			{
				Name:              "loop",
				TaskReferenceName: "loop",
				Type:              TaskTypeDoWhile,
				LoopCondition:     "iteration < 3",
				LoopOver:          []WorkflowTask{simple("poll"), simple("wait")},
			},
			simple("done"),
		},
	}
}

func Test_WorkflowDefinition_NextTask(t *testing.T) {
	def := testDefinition()

	tests := []struct {
		ref  string
		want string
	}{
		{"validate", "fork"},
		{"fork", "join"},
		{"a1", "a2"},
		{"a2", "join"},
		{"b1", "join"},
		{"join", "decide"},
		{"ship_fast", "loop"},
		{"ship_slow", "notify"},
		{"notify", "loop"},
		{"decide", "loop"},
		{"poll", "wait"},
		{"wait", "loop"},
		{"loop", "done"},
		{"done", ""},
		{"unknown", ""},
	}

	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			next := def.NextTask(tt.ref)
			if tt.want == "" {
				require.Nil(t, next)
				return
			}

			require.NotNil(t, next)
			require.Equal(t, tt.want, next.TaskReferenceName)
		})
	}
}

func Test_WorkflowDefinition_TaskByRef(t *testing.T) {
	def := testDefinition()

	require.Equal(t, TaskTypeDoWhile, def.TaskByRef("loop").Type)
	require.Equal(t, "b1", def.TaskByRef("b1").Name)
	require.Equal(t, "notify", def.TaskByRef("notify").Name)
	require.Nil(t, def.TaskByRef("missing"))
}

func Test_WorkflowDefinition_AllTasks(t *testing.T) {
	def := testDefinition()

	refs := []string{}
	for _, wt := range def.AllTasks() {
		refs = append(refs, wt.TaskReferenceName)
	}

	require.Equal(t, []string{
		"validate",
		"fork", "a1", "a2", "b1",
		"join",
		"decide", "ship_fast", "ship_slow", "notify",
		"loop", "poll", "wait",
		"done",
	}, refs)
}

func Test_Workflow(t *testing.T) {
	wf := NewWorkflow("wf-1", testDefinition(), map[string]any{"a": 1})

	require.Equal(t, WorkflowStatusRunning, wf.Status)
	require.Equal(t, "order", wf.Name())
	require.Equal(t, 2, wf.Version())
	require.NotNil(t, wf.Variables)
	require.False(t, wf.IsSubWorkflow())

	wf.Tasks = []*Task{
		{TaskID: "1", ReferenceTaskName: "validate", Status: TaskStatusFailed},
		{TaskID: "2", ReferenceTaskName: "validate", Status: TaskStatusCompleted},
	}
	require.Equal(t, "2", wf.TaskByRef("validate").TaskID)
	require.Nil(t, wf.TaskByRef("fork"))

	var empty Workflow
	require.Empty(t, empty.Name())
	require.Zero(t, empty.Version())
}
