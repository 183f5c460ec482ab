package mapper

import (
	"context"
	"slices"

	"github.com/cschleiden/go-taskmapper/core"
	"github.com/cschleiden/go-taskmapper/params"
)

const JoinOnInput = "joinOn"

// JoinTaskMapper maps JOIN tasks. The task waits for the tasks listed in joinOn.
type JoinTaskMapper struct {
	resolver params.Resolver
}

var _ TaskMapper = (*JoinTaskMapper)(nil)

func NewJoinTaskMapper(resolver params.Resolver) *JoinTaskMapper {
	return &JoinTaskMapper{resolver: resolver}
}

func (m *JoinTaskMapper) Type() string {
	return core.TaskTypeJoin
}

func (m *JoinTaskMapper) Map(ctx context.Context, mctx *Context) ([]*core.Task, error) {
	t, err := systemTask(ctx, m.resolver, mctx, core.TaskTypeJoin)
	if err != nil {
		return nil, err
	}

	// Joins following dynamic forks get the forked references through the pre-resolved input.
	if _, ok := t.InputData[JoinOnInput]; !ok {
		t.InputData[JoinOnInput] = slices.Clone(mctx.WorkflowTask().JoinOn)
	}

	return []*core.Task{t}, nil
}
