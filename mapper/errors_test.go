package mapper

import (
	"errors"
	"fmt"
	"testing"

	"github.com/cschleiden/go-taskmapper/core"
	"github.com/stretchr/testify/require"
)

func Test_Error(t *testing.T) {
	wt := &core.WorkflowTask{Name: "charge", TaskReferenceName: "charge_ref", Type: core.TaskTypeExclusive}

	tests := []struct {
		name     string
		err      *Error
		kind     ErrorKind
		contains []string
	}{
		{
			name:     "missing task definition",
			err:      missingTaskDefinition(wt),
			kind:     MissingTaskDefinition,
			contains: []string{"charge", "charge_ref", "does not have a definition"},
		},
		{
			name:     "unknown task type",
			err:      unknownTaskType(wt, "FOO"),
			kind:     UnknownTaskType,
			contains: []string{"FOO", "charge_ref"},
		},
		{
			name:     "input resolution failure",
			err:      inputResolutionFailure(wt, errors.New("bad reference")),
			kind:     InputResolutionFailure,
			contains: []string{"charge_ref", "bad reference"},
		},
		{
			name:     "invalid template",
			err:      invalidTemplate(wt, "missing %q", "sink"),
			kind:     InvalidTemplate,
			contains: []string{"charge_ref", `missing "sink"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.kind, tt.err.Kind)
			require.Equal(t, core.TaskTypeExclusive, tt.err.TaskType)
			require.Equal(t, "charge_ref", tt.err.Reference)
			require.Equal(t, "charge", tt.err.Name)
			require.NotEmpty(t, tt.err.Stack())

			for _, s := range tt.contains {
				require.Contains(t, tt.err.Error(), s)
			}

			wrapped := fmt.Errorf("planning: %w", tt.err)
			require.True(t, IsKind(wrapped, tt.kind))

			for _, other := range []*Error{ErrMissingTaskDefinition, ErrUnknownTaskType, ErrInputResolutionFailure, ErrInvalidTemplate} {
				require.Equal(t, other.Kind == tt.kind, errors.Is(wrapped, other))
			}
		})
	}
}

func Test_Error_Unwrap(t *testing.T) {
	cause := errors.New("cause")
	err := inputResolutionFailure(nil, cause)

	require.ErrorIs(t, err, cause)
	require.Equal(t, "could not resolve input of task: cause", err.Error())
}

func Test_MissingTaskDefinition_Message(t *testing.T) {
	tests := []struct {
		wt   *core.WorkflowTask
		want string
	}{
		{&core.WorkflowTask{Name: "exclusive_task", TaskReferenceName: "exclusive_task"}, "task exclusive_task does not have a definition"},
		{&core.WorkflowTask{Name: "charge", TaskReferenceName: "charge_ref"}, "task charge (reference charge_ref) does not have a definition"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			require.Equal(t, tt.want, missingTaskDefinition(tt.wt).Error())
		})
	}
}

func Test_ErrorKind_String(t *testing.T) {
	require.Equal(t, "MissingTaskDefinition", MissingTaskDefinition.String())
	require.Equal(t, "UnknownTaskType", UnknownTaskType.String())
	require.Equal(t, "InputResolutionFailure", InputResolutionFailure.String())
	require.Equal(t, "InvalidTemplate", InvalidTemplate.String())
	require.Equal(t, "Unknown", ErrorKind(0).String())
	require.False(t, IsKind(errors.New("plain"), InvalidTemplate))
}

func Test_describe(t *testing.T) {
	require.Equal(t, "task a", describe(&core.WorkflowTask{Name: "a", TaskReferenceName: "a"}))
	require.Equal(t, "task a", describe(&core.WorkflowTask{Name: "a"}))
	require.Equal(t, "task a (reference b)", describe(&core.WorkflowTask{Name: "a", TaskReferenceName: "b"}))
	require.Equal(t, "task", describe(nil))
}
