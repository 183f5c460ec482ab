package mapper

import (
	"context"

	"github.com/cschleiden/go-taskmapper/core"
	"github.com/cschleiden/go-taskmapper/params"
)

type HumanTaskMapper struct {
	resolver params.Resolver
}

var _ TaskMapper = (*HumanTaskMapper)(nil)

func NewHumanTaskMapper(resolver params.Resolver) *HumanTaskMapper {
	return &HumanTaskMapper{resolver: resolver}
}

func (m *HumanTaskMapper) Type() string {
	return core.TaskTypeHuman
}

func (m *HumanTaskMapper) Map(ctx context.Context, mctx *Context) ([]*core.Task, error) {
	t, err := systemTask(ctx, m.resolver, mctx, core.TaskTypeHuman)
	if err != nil {
		return nil, err
	}

	return []*core.Task{t}, nil
}
