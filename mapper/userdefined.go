package mapper

import (
	"context"

	"github.com/cschleiden/go-taskmapper/core"
	"github.com/cschleiden/go-taskmapper/params"
)

// UserDefinedTaskMapper maps USER_DEFINED tasks. Unlike SIMPLE tasks the definition may also be supplied by the
// caller through the context.
type UserDefinedTaskMapper struct {
	resolver params.Resolver
}

var _ TaskMapper = (*UserDefinedTaskMapper)(nil)

func NewUserDefinedTaskMapper(resolver params.Resolver) *UserDefinedTaskMapper {
	return &UserDefinedTaskMapper{resolver: resolver}
}

func (m *UserDefinedTaskMapper) Type() string {
	return core.TaskTypeUserDefined
}

func (m *UserDefinedTaskMapper) Map(ctx context.Context, mctx *Context) ([]*core.Task, error) {
	def := taskDefinition(mctx)
	if def == nil {
		return nil, missingTaskDefinition(mctx.WorkflowTask())
	}

	return workerTask(ctx, m.resolver, mctx, def)
}
