package mapper

import (
	"context"

	"github.com/cschleiden/go-taskmapper/core"
	"github.com/cschleiden/go-taskmapper/params"
)

// ExclusiveTaskMapper maps EXCLUSIVE tasks. Exclusive tasks are worker tasks of which only one instance may be
// in flight, which is enforced through the rate limit of their task definition.
type ExclusiveTaskMapper struct {
	resolver params.Resolver
}

var _ TaskMapper = (*ExclusiveTaskMapper)(nil)

func NewExclusiveTaskMapper(resolver params.Resolver) *ExclusiveTaskMapper {
	return &ExclusiveTaskMapper{resolver: resolver}
}

func (m *ExclusiveTaskMapper) Type() string {
	return core.TaskTypeExclusive
}

func (m *ExclusiveTaskMapper) Map(ctx context.Context, mctx *Context) ([]*core.Task, error) {
	def, err := requireTaskDefinition(mctx)
	if err != nil {
		return nil, err
	}

	return workerTask(ctx, m.resolver, mctx, def)
}
