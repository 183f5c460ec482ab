package planner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cschleiden/go-taskmapper/core"
	"github.com/cschleiden/go-taskmapper/internal/tracing"
	"github.com/cschleiden/go-taskmapper/log"
	"github.com/cschleiden/go-taskmapper/mapper"
	"github.com/cschleiden/go-taskmapper/taskdef"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

const TracerName = "go-taskmapper/planner"

var (
	ErrNoDefinition     = errors.New("workflow has no definition")
	ErrNoTasks          = errors.New("workflow definition has no tasks")
	ErrUnknownTask      = errors.New("unknown task")
	ErrTaskNotTerminal  = errors.New("task has not reached a terminal status")
	ErrTaskNotRetriable = errors.New("task status cannot be retried")
)

// Planner decides which template of a workflow is mapped next and maps it. It hydrates task definitions from
// a store and assigns task ids.
type Planner struct {
	registry *mapper.Registry
	defs     taskdef.Getter
	options  Options
	tracer   trace.Tracer
}

// New returns a planner dispatching to registry. defs may be nil, templates then have to carry their
// definitions.
func New(registry *mapper.Registry, defs taskdef.Getter, opts ...Option) *Planner {
	options := ApplyOptions(opts...)

	p := &Planner{
		registry: registry,
		options:  options,
		tracer:   options.TracerProvider.Tracer(TracerName),
	}

	if defs != nil {
		p.defs = &retryingGetter{getter: defs, options: &p.options}
	}

	return p
}

// Plan maps a single template of the workflow in its first attempt.
func (p *Planner) Plan(ctx context.Context, wf *core.Workflow, wt *core.WorkflowTask) ([]*core.Task, error) {
	return p.plan(ctx, wf, wt, 0, "")
}

// PlanStart maps the first template of the workflow definition.
func (p *Planner) PlanStart(ctx context.Context, wf *core.Workflow) ([]*core.Task, error) {
	if wf.Definition == nil {
		return nil, ErrNoDefinition
	}

	if len(wf.Definition.Tasks) == 0 {
		return nil, ErrNoTasks
	}

	return p.Plan(ctx, wf, &wf.Definition.Tasks[0])
}

// PlanNext maps whatever follows the completed task with the given reference name. Returns no tasks when the
// workflow has nothing left to schedule after it, or when the following task has already been scheduled.
func (p *Planner) PlanNext(ctx context.Context, wf *core.Workflow, completedRef string) ([]*core.Task, error) {
	def := wf.Definition
	if def == nil {
		return nil, ErrNoDefinition
	}

	completed := wf.TaskByRef(completedRef)
	if completed == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTask, completedRef)
	}

	ref := core.RemoveIteration(completedRef)
	if completed.Iteration == 0 {
		ref = completedRef
	}

	wt := def.TaskByRef(ref)
	if wt == nil {
		return nil, fmt.Errorf("%w: %q is not part of workflow %q", ErrUnknownTask, ref, def.Name)
	}

	if scheduledNested(wf, wt) {
		return nil, nil
	}

	next := def.NextTask(ref)
	if next == nil {
		return nil, nil
	}

	if completed.Iteration > 0 {
		if next.TypeOrDefault() == core.TaskTypeDoWhile && next.Has(ref) {
			return p.planLoop(ctx, wf, next, completed.Iteration)
		}

		iterated := next.Clone()
		iterated.TaskReferenceName = core.AppendIteration(next.TaskReferenceName, completed.Iteration)

		if wf.TaskByRef(iterated.TaskReferenceName) != nil {
			return nil, nil
		}

		tasks, err := p.Plan(ctx, wf, iterated)
		if err != nil {
			return nil, err
		}

		return mapper.WithIteration(tasks, completed.Iteration), nil
	}

	if wf.TaskByRef(next.TaskReferenceName) != nil {
		return nil, nil
	}

	return p.Plan(ctx, wf, next)
}

// PlanRetry maps the template of a failed task again, linking the new task to the failed one.
func (p *Planner) PlanRetry(ctx context.Context, wf *core.Workflow, failed *core.Task) ([]*core.Task, error) {
	if !failed.Status.IsTerminal() {
		return nil, fmt.Errorf("%w: %v is %v", ErrTaskNotTerminal, failed.ReferenceTaskName, failed.Status)
	}

	if !failed.Status.IsRetriable() {
		return nil, fmt.Errorf("%w: %v is %v", ErrTaskNotRetriable, failed.ReferenceTaskName, failed.Status)
	}

	wt := failed.WorkflowTask
	if wt == nil {
		if wf.Definition == nil {
			return nil, ErrNoDefinition
		}

		wt = wf.Definition.TaskByRef(core.RemoveIteration(failed.ReferenceTaskName))
		if wt == nil {
			return nil, fmt.Errorf("%w: %q", ErrUnknownTask, failed.ReferenceTaskName)
		}
	}

	wt = wt.Clone()
	wt.TaskReferenceName = failed.ReferenceTaskName

	p.options.Logger.DebugContext(ctx, "Planning retry",
		slog.String(log.RetriedTaskIDKey, failed.TaskID),
		slog.Int(log.RetryCountKey, failed.RetryCount+1),
	)

	tasks, err := p.plan(ctx, wf, wt, failed.RetryCount+1, failed.TaskID)
	if err != nil {
		return nil, err
	}

	if failed.Iteration > 0 {
		tasks = mapper.WithIteration(tasks, failed.Iteration)
	}

	return tasks, nil
}

// PlanAll maps independent templates concurrently. Tasks are returned in the order of the templates. If any
// template fails to map, no tasks are returned.
func (p *Planner) PlanAll(ctx context.Context, wf *core.Workflow, templates []*core.WorkflowTask) ([]*core.Task, error) {
	results := make([][]*core.Task, len(templates))

	g, gctx := errgroup.WithContext(ctx)
	if p.options.MaxConcurrency > 0 {
		g.SetLimit(p.options.MaxConcurrency)
	}

	for i, wt := range templates {
		g.Go(func() error {
			tasks, err := p.Plan(gctx, wf, wt)
			if err != nil {
				return err
			}

			results[i] = tasks
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var tasks []*core.Task
	for _, r := range results {
		tasks = append(tasks, r...)
	}

	return tasks, nil
}

func (p *Planner) plan(ctx context.Context, wf *core.Workflow, wt *core.WorkflowTask, retryCount int, retriedTaskID string) ([]*core.Task, error) {
	if wt == nil {
		return nil, errors.New("workflow task is nil")
	}

	ctx, span := p.tracer.Start(ctx, "Plan", trace.WithAttributes(
		attribute.String(tracing.WorkflowID, wf.WorkflowID),
		attribute.String(tracing.WorkflowName, wf.Name()),
		attribute.String(tracing.TaskRef, wt.TaskReferenceName),
	))
	defer span.End()

	wt, err := p.hydrate(ctx, wt)
	if err != nil {
		return nil, tracing.WithSpanError(span, err)
	}

	mctx, err := mapper.NewContext(mapper.ContextParams{
		WorkflowTask:  wt,
		Workflow:      wf,
		TaskID:        p.options.TaskID(),
		RetryCount:    retryCount,
		RetriedTaskID: retriedTaskID,
		Clock:         p.options.Clock,
	})
	if err != nil {
		return nil, tracing.WithSpanError(span, err)
	}

	tasks, err := p.registry.Dispatch(ctx, mctx)
	if err != nil {
		return nil, tracing.WithSpanError(span, err)
	}

	return tasks, nil
}

// hydrate returns a copy of the template carrying its registered task definitions, including those of
// nested templates.
func (p *Planner) hydrate(ctx context.Context, wt *core.WorkflowTask) (*core.WorkflowTask, error) {
	if p.defs == nil {
		return wt, nil
	}

	wt = wt.Clone()

	var err error
	wt.Walk(func(t *core.WorkflowTask) bool {
		err = taskdef.PopulateTask(ctx, p.defs, t)
		return err == nil
	})

	return wt, err
}

// planLoop decides whether the loop runs another iteration after the given one has completed. If it does, the
// first task of the loop body is mapped for the next iteration, otherwise whatever follows the loop.
func (p *Planner) planLoop(ctx context.Context, wf *core.Workflow, loop *core.WorkflowTask, iteration int) ([]*core.Task, error) {
	loopTask := wf.TaskByRef(loop.TaskReferenceName)
	if loopTask == nil {
		return nil, fmt.Errorf("%w: loop task %q has not been scheduled", ErrUnknownTask, loop.TaskReferenceName)
	}

	again, err := mapper.EvaluateLoopCondition(loop, wf, loopTask.InputData, iteration)
	if err != nil {
		return nil, err
	}

	if !again {
		p.options.Logger.DebugContext(ctx, "Loop finished",
			slog.String(log.TaskRefKey, loop.TaskReferenceName),
			slog.Int(log.IterationKey, iteration),
		)

		next := wf.Definition.NextTask(loop.TaskReferenceName)
		if next == nil || wf.TaskByRef(next.TaskReferenceName) != nil {
			return nil, nil
		}

		return p.Plan(ctx, wf, next)
	}

	m, ok := p.registry.Get(core.TaskTypeDoWhile)
	if !ok {
		return nil, fmt.Errorf("no mapper registered for %v", core.TaskTypeDoWhile)
	}

	dw, ok := m.(*mapper.DoWhileTaskMapper)
	if !ok {
		return nil, fmt.Errorf("mapper for %v cannot map loop iterations", core.TaskTypeDoWhile)
	}

	hydrated, err := p.hydrate(ctx, loop)
	if err != nil {
		return nil, err
	}

	mctx, err := mapper.NewContext(mapper.ContextParams{
		WorkflowTask: hydrated,
		Workflow:     wf,
		TaskID:       loopTask.TaskID,
		RetryCount:   loopTask.RetryCount,
		Clock:        p.options.Clock,
	})
	if err != nil {
		return nil, err
	}

	return dw.MapIteration(ctx, mctx, iteration+1)
}

// scheduledNested returns true for decisions and forks whose nested tasks were scheduled together with them.
// What follows them is planned once their nested tasks complete.
func scheduledNested(wf *core.Workflow, wt *core.WorkflowTask) bool {
	switch wt.TypeOrDefault() {
	case core.TaskTypeForkJoin, core.TaskTypeForkJoinDynamic:
		return true
	case core.TaskTypeDecision, core.TaskTypeSwitch:
	default:
		return false
	}

	for _, t := range wf.Tasks {
		ref := core.RemoveIteration(t.ReferenceTaskName)
		if ref != wt.TaskReferenceName && wt.Has(ref) {
			return true
		}
	}

	return false
}
