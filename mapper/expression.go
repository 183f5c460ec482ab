package mapper

import (
	"fmt"
	"sync"

	"github.com/cschleiden/go-taskmapper/core"
	"github.com/google/cel-go/cel"
	"github.com/jellydator/ttlcache/v3"
)

// EvaluatorCEL selects CEL expressions for SWITCH and INLINE tasks.
const EvaluatorCEL = "cel"

// EvaluatorValueParam selects the input parameter named by the expression as the SWITCH case.
const EvaluatorValueParam = "value-param"

var (
	envOnce sync.Once
	env     *cel.Env
	envErr  error

	programs = ttlcache.New(ttlcache.WithCapacity[string, cel.Program](maxCachedPrograms))
)

// INLINE expressions come from task input, the number of distinct expressions is not limited by the definitions.
const maxCachedPrograms = 1024

// Expressions can refer to the resolved task input, the workflow and the tasks of the run by reference name.
// Loop conditions additionally see the current iteration.
func expressionEnv() (*cel.Env, error) {
	envOnce.Do(func() {
		env, envErr = cel.NewEnv(
			cel.Variable("input", cel.DynType),
			cel.Variable("workflow", cel.DynType),
			cel.Variable("tasks", cel.DynType),
			cel.Variable("iteration", cel.IntType),
			cel.CrossTypeNumericComparisons(true),
		)
	})

	return env, envErr
}

func compileExpression(expr string) (cel.Program, error) {
	if item := programs.Get(expr); item != nil {
		return item.Value(), nil
	}

	e, err := expressionEnv()
	if err != nil {
		return nil, err
	}

	ast, iss := e.Compile(expr)
	if iss != nil && iss.Err() != nil {
		return nil, iss.Err()
	}

	prg, err := e.Program(ast)
	if err != nil {
		return nil, err
	}

	programs.Set(expr, prg, ttlcache.NoTTL)

	return prg, nil
}

func evaluate(expr string, vars map[string]any) (any, error) {
	prg, err := compileExpression(expr)
	if err != nil {
		return nil, err
	}

	out, _, err := prg.Eval(vars)
	if err != nil {
		return nil, err
	}

	return out.Value(), nil
}

func expressionVars(wf *core.Workflow, input map[string]any, iteration int) map[string]any {
	tasks := make(map[string]any, len(wf.Tasks))
	for _, t := range wf.Tasks {
		td := map[string]any{
			"status":    string(t.Status),
			"input":     orEmpty(t.InputData),
			"output":    orEmpty(t.OutputData),
			"iteration": t.Iteration,
		}

		tasks[t.ReferenceTaskName] = td
		if t.Iteration > 0 {
			tasks[core.RemoveIteration(t.ReferenceTaskName)] = td
		}
	}

	return map[string]any{
		"input": orEmpty(input),
		"workflow": map[string]any{
			"workflowId": wf.WorkflowID,
			"input":      orEmpty(wf.Input),
			"variables":  orEmpty(wf.Variables),
		},
		"tasks":     tasks,
		"iteration": iteration,
	}
}

func orEmpty(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}

	return m
}

// EvaluateLoopCondition returns true if the DO_WHILE task should run another iteration after the given one
// has completed.
func EvaluateLoopCondition(wt *core.WorkflowTask, wf *core.Workflow, input map[string]any, iteration int) (bool, error) {
	v, err := evaluate(wt.LoopCondition, expressionVars(wf, input, iteration))
	if err != nil {
		return false, invalidTemplate(wt, "evaluating loop condition: %v", err)
	}

	b, ok := v.(bool)
	if !ok {
		return false, invalidTemplate(wt, "loop condition evaluated to %v, expected a boolean", v)
	}

	return b, nil
}

func caseValue(v any) string {
	if v == nil {
		return ""
	}

	return fmt.Sprint(v)
}
