package mapper

import (
	"context"

	"github.com/cschleiden/go-taskmapper/core"
	"github.com/cschleiden/go-taskmapper/params"
)

// SwitchTaskMapper maps SWITCH tasks. The expression is evaluated with the evaluator named by evaluatorType.
type SwitchTaskMapper struct {
	resolver params.Resolver
	sub      SubtaskMapper
}

var _ TaskMapper = (*SwitchTaskMapper)(nil)

func NewSwitchTaskMapper(resolver params.Resolver, sub SubtaskMapper) *SwitchTaskMapper {
	return &SwitchTaskMapper{resolver: resolver, sub: sub}
}

func (m *SwitchTaskMapper) Type() string {
	return core.TaskTypeSwitch
}

func (m *SwitchTaskMapper) Map(ctx context.Context, mctx *Context) ([]*core.Task, error) {
	wt := mctx.WorkflowTask()

	if wt.Expression == "" {
		return nil, invalidTemplate(wt, "switch task is missing expression")
	}

	t, err := systemTask(ctx, m.resolver, mctx, core.TaskTypeSwitch)
	if err != nil {
		return nil, err
	}

	var selected string
	switch wt.EvaluatorType {
	case EvaluatorValueParam, "":
		selected = caseValue(t.InputData[wt.Expression])

	case EvaluatorCEL:
		v, err := evaluate(wt.Expression, expressionVars(mctx.Workflow(), t.InputData, 0))
		if err != nil {
			return nil, invalidTemplate(wt, "evaluating expression: %v", err)
		}
		selected = caseValue(v)

	default:
		return nil, invalidTemplate(wt, "unsupported evaluator type %q", wt.EvaluatorType)
	}

	t.InputData["case"] = selected
	t.OutputData = map[string]any{"evaluationResult": []any{selected}}

	return mapCase(ctx, m.sub, mctx, t, selected)
}
