package mapper

import (
	"context"

	"github.com/cschleiden/go-taskmapper/core"
	"github.com/cschleiden/go-taskmapper/params"
)

// InlineTaskMapper maps INLINE tasks, which evaluate an expression inside the engine. CEL expressions are
// compiled while mapping so that a broken expression fails the workflow early.
type InlineTaskMapper struct {
	resolver params.Resolver
}

var _ TaskMapper = (*InlineTaskMapper)(nil)

func NewInlineTaskMapper(resolver params.Resolver) *InlineTaskMapper {
	return &InlineTaskMapper{resolver: resolver}
}

func (m *InlineTaskMapper) Type() string {
	return core.TaskTypeInline
}

func (m *InlineTaskMapper) Map(ctx context.Context, mctx *Context) ([]*core.Task, error) {
	wt := mctx.WorkflowTask()

	t, err := systemTask(ctx, m.resolver, mctx, core.TaskTypeInline)
	if err != nil {
		return nil, err
	}

	if err := requireInput(wt, t.InputData, "evaluatorType", "expression"); err != nil {
		return nil, err
	}

	if t.InputData["evaluatorType"] == EvaluatorCEL {
		expr, ok := t.InputData["expression"].(string)
		if !ok {
			return nil, invalidTemplate(wt, "expression must be a string")
		}

		if _, err := compileExpression(expr); err != nil {
			return nil, invalidTemplate(wt, "compiling expression: %v", err)
		}
	}

	return []*core.Task{t}, nil
}
