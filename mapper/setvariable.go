package mapper

import (
	"context"

	"github.com/cschleiden/go-taskmapper/core"
	"github.com/cschleiden/go-taskmapper/params"
)

// SetVariableTaskMapper maps SET_VARIABLE tasks. Their input is written to the workflow variables when they run.
type SetVariableTaskMapper struct {
	resolver params.Resolver
}

var _ TaskMapper = (*SetVariableTaskMapper)(nil)

func NewSetVariableTaskMapper(resolver params.Resolver) *SetVariableTaskMapper {
	return &SetVariableTaskMapper{resolver: resolver}
}

func (m *SetVariableTaskMapper) Type() string {
	return core.TaskTypeSetVariable
}

func (m *SetVariableTaskMapper) Map(ctx context.Context, mctx *Context) ([]*core.Task, error) {
	t, err := systemTask(ctx, m.resolver, mctx, core.TaskTypeSetVariable)
	if err != nil {
		return nil, err
	}

	return []*core.Task{t}, nil
}
