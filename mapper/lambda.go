package mapper

import (
	"context"

	"github.com/cschleiden/go-taskmapper/core"
	"github.com/cschleiden/go-taskmapper/params"
)

type LambdaTaskMapper struct {
	resolver params.Resolver
}

var _ TaskMapper = (*LambdaTaskMapper)(nil)

func NewLambdaTaskMapper(resolver params.Resolver) *LambdaTaskMapper {
	return &LambdaTaskMapper{resolver: resolver}
}

func (m *LambdaTaskMapper) Type() string {
	return core.TaskTypeLambda
}

func (m *LambdaTaskMapper) Map(ctx context.Context, mctx *Context) ([]*core.Task, error) {
	t, err := systemTask(ctx, m.resolver, mctx, core.TaskTypeLambda)
	if err != nil {
		return nil, err
	}

	if err := requireInput(mctx.WorkflowTask(), t.InputData, "scriptExpression"); err != nil {
		return nil, err
	}

	return []*core.Task{t}, nil
}
