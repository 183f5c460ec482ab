package mapper

import (
	"context"

	"github.com/cschleiden/go-taskmapper/core"
	"github.com/cschleiden/go-taskmapper/params"
)

// SimpleTaskMapper maps SIMPLE tasks, the default for workflow tasks without a type. The task definition has to
// be embedded in the workflow task before mapping.
type SimpleTaskMapper struct {
	resolver params.Resolver
}

var _ TaskMapper = (*SimpleTaskMapper)(nil)

func NewSimpleTaskMapper(resolver params.Resolver) *SimpleTaskMapper {
	return &SimpleTaskMapper{resolver: resolver}
}

func (m *SimpleTaskMapper) Type() string {
	return core.TaskTypeSimple
}

func (m *SimpleTaskMapper) Map(ctx context.Context, mctx *Context) ([]*core.Task, error) {
	def, err := requireTaskDefinition(mctx)
	if err != nil {
		return nil, err
	}

	return workerTask(ctx, m.resolver, mctx, def)
}
