package mapper

import (
	"context"

	"github.com/cschleiden/go-taskmapper/core"
	"github.com/cschleiden/go-taskmapper/params"
)

// DoWhileTaskMapper maps DO_WHILE tasks. It returns the loop task in its first iteration followed by the tasks of
// the first task of the loop body. Tasks of an iteration carry the iteration in their reference name.
type DoWhileTaskMapper struct {
	resolver params.Resolver
	sub      SubtaskMapper
}

var _ TaskMapper = (*DoWhileTaskMapper)(nil)

func NewDoWhileTaskMapper(resolver params.Resolver, sub SubtaskMapper) *DoWhileTaskMapper {
	return &DoWhileTaskMapper{resolver: resolver, sub: sub}
}

func (m *DoWhileTaskMapper) Type() string {
	return core.TaskTypeDoWhile
}

func (m *DoWhileTaskMapper) Map(ctx context.Context, mctx *Context) ([]*core.Task, error) {
	wt := mctx.WorkflowTask()

	if err := validateLoop(wt); err != nil {
		return nil, err
	}

	loop, err := systemTask(ctx, m.resolver, mctx, core.TaskTypeDoWhile)
	if err != nil {
		return nil, err
	}
	loop.Iteration = 1

	body, err := m.MapIteration(ctx, mctx, 1)
	if err != nil {
		return nil, err
	}

	return append([]*core.Task{loop}, body...), nil
}

// MapIteration returns the tasks for the first task of the loop body in the given iteration. The context is
// the one of the loop task.
func (m *DoWhileTaskMapper) MapIteration(ctx context.Context, mctx *Context, iteration int) ([]*core.Task, error) {
	wt := mctx.WorkflowTask()

	if err := validateLoop(wt); err != nil {
		return nil, err
	}

	first := wt.LoopOver[0].Clone()
	first.TaskReferenceName = core.AppendIteration(first.TaskReferenceName, iteration)

	tasks, err := m.sub.MapSubtask(ctx, mctx, first)
	if err != nil {
		return nil, err
	}

	return WithIteration(tasks, iteration), nil
}

func validateLoop(wt *core.WorkflowTask) error {
	if len(wt.LoopOver) == 0 {
		return invalidTemplate(wt, "loop task has no tasks to loop over")
	}

	if wt.LoopCondition == "" {
		return invalidTemplate(wt, "loop task has no loop condition")
	}

	if _, err := compileExpression(wt.LoopCondition); err != nil {
		return invalidTemplate(wt, "compiling loop condition: %v", err)
	}

	return nil
}
