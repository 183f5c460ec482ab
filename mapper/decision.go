package mapper

import (
	"context"

	"github.com/cschleiden/go-taskmapper/core"
	"github.com/cschleiden/go-taskmapper/params"
)

// DecisionTaskMapper maps DECISION tasks. The case is selected by caseExpression, a CEL expression, or by the
// value of the input parameter named by caseValueParam.
type DecisionTaskMapper struct {
	resolver params.Resolver
	sub      SubtaskMapper
}

var _ TaskMapper = (*DecisionTaskMapper)(nil)

func NewDecisionTaskMapper(resolver params.Resolver, sub SubtaskMapper) *DecisionTaskMapper {
	return &DecisionTaskMapper{resolver: resolver, sub: sub}
}

func (m *DecisionTaskMapper) Type() string {
	return core.TaskTypeDecision
}

func (m *DecisionTaskMapper) Map(ctx context.Context, mctx *Context) ([]*core.Task, error) {
	wt := mctx.WorkflowTask()

	t, err := systemTask(ctx, m.resolver, mctx, core.TaskTypeDecision)
	if err != nil {
		return nil, err
	}

	var selected string
	switch {
	case wt.CaseExpression != "":
		v, err := evaluate(wt.CaseExpression, expressionVars(mctx.Workflow(), t.InputData, 0))
		if err != nil {
			return nil, invalidTemplate(wt, "evaluating case expression: %v", err)
		}
		selected = caseValue(v)

	case wt.CaseValueParam != "":
		selected = caseValue(t.InputData[wt.CaseValueParam])

	default:
		return nil, invalidTemplate(wt, "decision task needs caseValueParam or caseExpression")
	}

	t.InputData["case"] = selected
	t.OutputData = map[string]any{"caseOutput": []any{selected}}

	return mapCase(ctx, m.sub, mctx, t, selected)
}

// mapCase returns the decision task followed by the tasks scheduled for the first task of the selected case. The
// default case is used when no case matches.
func mapCase(ctx context.Context, sub SubtaskMapper, mctx *Context, t *core.Task, selected string) ([]*core.Task, error) {
	wt := mctx.WorkflowTask()

	tasks, ok := wt.DecisionCases[selected]
	if !ok || len(tasks) == 0 {
		tasks = wt.DefaultCase
	}

	result := []*core.Task{t}
	if len(tasks) == 0 {
		return result, nil
	}

	t.InputData["hasChildren"] = true

	children, err := sub.MapSubtask(ctx, mctx, &tasks[0])
	if err != nil {
		return nil, err
	}

	return append(result, children...), nil
}
