package core

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_TaskDefinition_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mod     func(td *TaskDefinition)
		wantErr bool
	}{
		{"valid", func(td *TaskDefinition) {}, false},
		{"empty name", func(td *TaskDefinition) { td.Name = "" }, true},
		{"invalid name", func(td *TaskDefinition) { td.Name = "has space" }, true},
		{"negative retry count", func(td *TaskDefinition) { td.RetryCount = -1 }, true},
		{"unknown retry logic", func(td *TaskDefinition) { td.RetryLogic = "RANDOM" }, true},
		{"unknown timeout policy", func(td *TaskDefinition) { td.TimeoutPolicy = "IGNORE" }, true},
		{"invalid owner email", func(td *TaskDefinition) { td.OwnerEmail = "nope" }, true},
		{"response timeout above timeout", func(td *TaskDefinition) { td.TimeoutSeconds = 10 }, true},
		{"response timeout below timeout", func(td *TaskDefinition) { td.TimeoutSeconds = 7200 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			td := NewTaskDefinition("charge_card")
			tt.mod(td)

			err := td.Validate()
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}

	var nilDef *TaskDefinition
	require.Error(t, nilDef.Validate())
}

func Test_TaskDefinition_Defaults(t *testing.T) {
	td := NewTaskDefinition("a")

	require.Equal(t, int64(DefaultResponseTimeoutSeconds), td.ResponseTimeoutSeconds)
	require.Equal(t, RetryLogicFixed, td.RetryLogic)
	require.Equal(t, TimeoutPolicyTimeOutWF, td.TimeoutPolicy)
	require.False(t, td.RateLimited())

	td.RateLimitPerFrequency = 1
	td.RateLimitFrequencyInSeconds = 60
	require.True(t, td.RateLimited())
}

func Test_TaskDefinition_Clone(t *testing.T) {
	td := NewTaskDefinition("a")
	td.InputKeys = []string{"x"}
	td.InputTemplate = map[string]any{"nested": map[string]any{"k": "v"}}

	c := td.Clone()
	require.Equal(t, td, c)

	c.InputKeys[0] = "y"
	c.InputTemplate["nested"].(map[string]any)["k"] = "w"

	require.Equal(t, "x", td.InputKeys[0])
	require.Equal(t, "v", td.InputTemplate["nested"].(map[string]any)["k"])
}
