package mapper

import (
	"context"

	"github.com/cschleiden/go-taskmapper/core"
	"github.com/cschleiden/go-taskmapper/params"
)

// ForkJoinTaskMapper maps FORK_JOIN tasks. It returns the fork task, the tasks of the first task of every branch
// in branch order and the JOIN task that has to follow the fork in the workflow definition.
type ForkJoinTaskMapper struct {
	resolver params.Resolver
	sub      SubtaskMapper
}

var _ TaskMapper = (*ForkJoinTaskMapper)(nil)

func NewForkJoinTaskMapper(resolver params.Resolver, sub SubtaskMapper) *ForkJoinTaskMapper {
	return &ForkJoinTaskMapper{resolver: resolver, sub: sub}
}

func (m *ForkJoinTaskMapper) Type() string {
	return core.TaskTypeForkJoin
}

func (m *ForkJoinTaskMapper) Map(ctx context.Context, mctx *Context) ([]*core.Task, error) {
	wt := mctx.WorkflowTask()

	if len(wt.ForkTasks) == 0 {
		return nil, invalidTemplate(wt, "fork task has no branches")
	}

	join, err := followingJoin(mctx)
	if err != nil {
		return nil, err
	}

	fork, err := systemTask(ctx, m.resolver, mctx, core.TaskTypeFork)
	if err != nil {
		return nil, err
	}

	tasks := []*core.Task{fork}

	for i, branch := range wt.ForkTasks {
		if len(branch) == 0 {
			return nil, invalidTemplate(wt, "fork branch %d is empty", i)
		}

		branchTasks, err := m.sub.MapSubtask(ctx, mctx, &branch[0])
		if err != nil {
			return nil, err
		}

		tasks = append(tasks, branchTasks...)
	}

	joinTasks, err := m.sub.MapSubtask(ctx, mctx, join)
	if err != nil {
		return nil, err
	}

	return append(tasks, joinTasks...), nil
}

// followingJoin returns the JOIN task following the fork task of the context in the workflow definition.
func followingJoin(mctx *Context) (*core.WorkflowTask, error) {
	wt := mctx.WorkflowTask()

	def := mctx.Workflow().Definition
	if def == nil {
		return nil, invalidTemplate(wt, "workflow has no definition to find the join task in")
	}

	join := def.NextTask(wt.TaskReferenceName)
	if join == nil || join.TypeOrDefault() != core.TaskTypeJoin {
		return nil, invalidTemplate(wt, "fork task is not followed by a join task")
	}

	return join, nil
}
