package mapper

import (
	"context"

	"github.com/cschleiden/go-taskmapper/core"
	"github.com/cschleiden/go-taskmapper/params"
)

type NoopTaskMapper struct {
	resolver params.Resolver
}

var _ TaskMapper = (*NoopTaskMapper)(nil)

func NewNoopTaskMapper(resolver params.Resolver) *NoopTaskMapper {
	return &NoopTaskMapper{resolver: resolver}
}

func (m *NoopTaskMapper) Type() string {
	return core.TaskTypeNoop
}

func (m *NoopTaskMapper) Map(ctx context.Context, mctx *Context) ([]*core.Task, error) {
	t, err := systemTask(ctx, m.resolver, mctx, core.TaskTypeNoop)
	if err != nil {
		return nil, err
	}

	return []*core.Task{t}, nil
}
