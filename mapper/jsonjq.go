package mapper

import (
	"context"

	"github.com/cschleiden/go-taskmapper/core"
	"github.com/cschleiden/go-taskmapper/params"
)

type JSONJQTransformTaskMapper struct {
	resolver params.Resolver
}

var _ TaskMapper = (*JSONJQTransformTaskMapper)(nil)

func NewJSONJQTransformTaskMapper(resolver params.Resolver) *JSONJQTransformTaskMapper {
	return &JSONJQTransformTaskMapper{resolver: resolver}
}

func (m *JSONJQTransformTaskMapper) Type() string {
	return core.TaskTypeJSONJQTransform
}

func (m *JSONJQTransformTaskMapper) Map(ctx context.Context, mctx *Context) ([]*core.Task, error) {
	t, err := systemTask(ctx, m.resolver, mctx, core.TaskTypeJSONJQTransform)
	if err != nil {
		return nil, err
	}

	if err := requireInput(mctx.WorkflowTask(), t.InputData, "queryExpression"); err != nil {
		return nil, err
	}

	return []*core.Task{t}, nil
}
