package mapper

import (
	"context"

	"github.com/cschleiden/go-taskmapper/core"
	"github.com/cschleiden/go-taskmapper/params"
)

const TerminationStatusInput = "terminationStatus"

// TerminateTaskMapper maps TERMINATE tasks, which end the workflow with the given status.
type TerminateTaskMapper struct {
	resolver params.Resolver
}

var _ TaskMapper = (*TerminateTaskMapper)(nil)

func NewTerminateTaskMapper(resolver params.Resolver) *TerminateTaskMapper {
	return &TerminateTaskMapper{resolver: resolver}
}

func (m *TerminateTaskMapper) Type() string {
	return core.TaskTypeTerminate
}

func (m *TerminateTaskMapper) Map(ctx context.Context, mctx *Context) ([]*core.Task, error) {
	wt := mctx.WorkflowTask()

	t, err := systemTask(ctx, m.resolver, mctx, core.TaskTypeTerminate)
	if err != nil {
		return nil, err
	}

	status, _ := t.InputData[TerminationStatusInput].(string)
	switch core.WorkflowStatus(status) {
	case core.WorkflowStatusCompleted, core.WorkflowStatusFailed, core.WorkflowStatusTerminated:
	default:
		return nil, invalidTemplate(wt, "%s must be one of COMPLETED, FAILED or TERMINATED, got %q", TerminationStatusInput, status)
	}

	return []*core.Task{t}, nil
}
