package test

import (
	"context"
	"testing"

	"github.com/cschleiden/go-taskmapper/core"
	"github.com/cschleiden/go-taskmapper/taskdef"
	"github.com/stretchr/testify/require"
)

// StoreTest runs the conformance tests every task definition store has to pass. setup is called for every test
// and must return an empty store.
func StoreTest(t *testing.T, setup func(t *testing.T) taskdef.Store, teardown func(s taskdef.Store)) {
	tests := []struct {
		name string
		f    func(t *testing.T, ctx context.Context, s taskdef.Store)
	}{
		{
			name: "GetTaskDef_ReturnsNotFound",
			f: func(t *testing.T, ctx context.Context, s taskdef.Store) {
				def, err := s.GetTaskDef(ctx, "does_not_exist")
				require.Nil(t, def)
				require.ErrorIs(t, err, taskdef.ErrNotFound)
			},
		},
		{
			name: "PutTaskDef_RoundTrip",
			f: func(t *testing.T, ctx context.Context, s taskdef.Store) {
				def := fullDefinition("charge_card")
				require.NoError(t, s.PutTaskDef(ctx, def))

				got, err := s.GetTaskDef(ctx, "charge_card")
				require.NoError(t, err)
				require.Equal(t, def, got)
			},
		},
		{
			name: "PutTaskDef_Overwrites",
			f: func(t *testing.T, ctx context.Context, s taskdef.Store) {
				def := core.NewTaskDefinition("charge_card")
				require.NoError(t, s.PutTaskDef(ctx, def))

				updated := core.NewTaskDefinition("charge_card")
				updated.RateLimitPerFrequency = 5
				updated.RateLimitFrequencyInSeconds = 1
				require.NoError(t, s.PutTaskDef(ctx, updated))

				got, err := s.GetTaskDef(ctx, "charge_card")
				require.NoError(t, err)
				require.Equal(t, 5, got.RateLimitPerFrequency)

				defs, err := s.ListTaskDefs(ctx)
				require.NoError(t, err)
				require.Len(t, defs, 1)
			},
		},
		{
			name: "PutTaskDef_RejectsInvalid",
			f: func(t *testing.T, ctx context.Context, s taskdef.Store) {
				require.Error(t, s.PutTaskDef(ctx, &core.TaskDefinition{}))
				require.Error(t, s.PutTaskDef(ctx, nil))

				defs, err := s.ListTaskDefs(ctx)
				require.NoError(t, err)
				require.Empty(t, defs)
			},
		},
		{
			name: "PutTaskDef_StoresCopy",
			f: func(t *testing.T, ctx context.Context, s taskdef.Store) {
				def := core.NewTaskDefinition("charge_card")
				require.NoError(t, s.PutTaskDef(ctx, def))

				def.ResponseTimeoutSeconds = 1

				got, err := s.GetTaskDef(ctx, "charge_card")
				require.NoError(t, err)
				require.Equal(t, int64(core.DefaultResponseTimeoutSeconds), got.ResponseTimeoutSeconds)
			},
		},
		{
			name: "ListTaskDefs_OrderedByName",
			f: func(t *testing.T, ctx context.Context, s taskdef.Store) {
				for _, name := range []string{"c", "a", "b"} {
					require.NoError(t, s.PutTaskDef(ctx, core.NewTaskDefinition(name)))
				}

				defs, err := s.ListTaskDefs(ctx)
				require.NoError(t, err)

				names := []string{}
				for _, d := range defs {
					names = append(names, d.Name)
				}
				require.Equal(t, []string{"a", "b", "c"}, names)
			},
		},
		{
			name: "ListTaskDefs_Empty",
			f: func(t *testing.T, ctx context.Context, s taskdef.Store) {
				defs, err := s.ListTaskDefs(ctx)
				require.NoError(t, err)
				require.Empty(t, defs)
			},
		},
		{
			name: "DeleteTaskDef",
			f: func(t *testing.T, ctx context.Context, s taskdef.Store) {
				require.NoError(t, s.PutTaskDef(ctx, core.NewTaskDefinition("charge_card")))
				require.NoError(t, s.DeleteTaskDef(ctx, "charge_card"))

				_, err := s.GetTaskDef(ctx, "charge_card")
				require.ErrorIs(t, err, taskdef.ErrNotFound)

				require.ErrorIs(t, s.DeleteTaskDef(ctx, "charge_card"), taskdef.ErrNotFound)
			},
		},
		{
			name: "Populate",
			f: func(t *testing.T, ctx context.Context, s taskdef.Store) {
				require.NoError(t, s.PutTaskDef(ctx, core.NewTaskDefinition("charge_card")))

				def := &core.WorkflowDefinition{
					Name: "order",
					Tasks: []core.WorkflowTask{
						{
							Name:              "fork",
							TaskReferenceName: "fork",
							Type:              core.TaskTypeForkJoin,
							ForkTasks: [][]core.WorkflowTask{
								{{Name: "charge_card", TaskReferenceName: "charge"}},
								{{Name: "unknown", TaskReferenceName: "unknown"}},
							},
						},
					},
				}

				require.NoError(t, taskdef.Populate(ctx, s, def))
				require.NotNil(t, def.TaskByRef("charge").TaskDefinition)
				require.Nil(t, def.TaskByRef("unknown").TaskDefinition)
				require.Nil(t, def.TaskByRef("fork").TaskDefinition)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := setup(t)
			ctx := context.Background()
			tt.f(t, ctx, s)
			if teardown != nil {
				teardown(s)
			}
		})
	}
}

func fullDefinition(name string) *core.TaskDefinition {
	def := core.NewTaskDefinition(name)
	def.Description = "charges the card on file"
	def.RetryCount = 3
	def.RetryLogic = core.RetryLogicExponentialBackoff
	def.RetryDelaySeconds = 5
	def.TimeoutSeconds = 7200
	def.TimeoutPolicy = core.TimeoutPolicyRetry
	def.PollTimeoutSeconds = 10
	def.RateLimitPerFrequency = 1
	def.RateLimitFrequencyInSeconds = 60
	def.ConcurrentExecLimit = 2
	def.InputKeys = []string{"amount"}
	def.OutputKeys = []string{"receipt"}
	def.InputTemplate = map[string]any{
		"currency": "EUR",
		"nested":   map[string]any{"enabled": true, "tags": []any{"a", "b"}},
	}
	def.IsolationGroupID = "payments"
	def.ExecutionNameSpace = "billing"
	def.OwnerEmail = "payments@example.com"

	return def
}
