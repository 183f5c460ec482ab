package mapper

import (
	"context"

	"github.com/cschleiden/go-taskmapper/core"
	"github.com/cschleiden/go-taskmapper/params"
)

const StartWorkflowInput = "startWorkflow"

// StartWorkflowTaskMapper maps START_WORKFLOW tasks, which start an unrelated workflow and do not wait for it.
type StartWorkflowTaskMapper struct {
	resolver params.Resolver
}

var _ TaskMapper = (*StartWorkflowTaskMapper)(nil)

func NewStartWorkflowTaskMapper(resolver params.Resolver) *StartWorkflowTaskMapper {
	return &StartWorkflowTaskMapper{resolver: resolver}
}

func (m *StartWorkflowTaskMapper) Type() string {
	return core.TaskTypeStartWorkflow
}

func (m *StartWorkflowTaskMapper) Map(ctx context.Context, mctx *Context) ([]*core.Task, error) {
	wt := mctx.WorkflowTask()

	t, err := systemTask(ctx, m.resolver, mctx, core.TaskTypeStartWorkflow)
	if err != nil {
		return nil, err
	}

	req, ok := t.InputData[StartWorkflowInput].(map[string]any)
	if !ok {
		return nil, invalidTemplate(wt, "missing input parameter %q", StartWorkflowInput)
	}

	if err := requireInput(wt, req, "name"); err != nil {
		return nil, err
	}

	return []*core.Task{t}, nil
}
