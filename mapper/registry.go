package mapper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"

	"github.com/cschleiden/go-taskmapper/core"
	mi "github.com/cschleiden/go-taskmapper/internal/metrics"
	"github.com/cschleiden/go-taskmapper/internal/metrickeys"
	"github.com/cschleiden/go-taskmapper/internal/tracing"
	"github.com/cschleiden/go-taskmapper/log"
	"github.com/cschleiden/go-taskmapper/metrics"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type ErrMapperAlreadyRegistered struct {
	msg string
}

func (e *ErrMapperAlreadyRegistered) Error() string {
	return e.msg
}

type ErrInvalidMapper struct {
	msg string
}

func (e *ErrInvalidMapper) Error() string {
	return e.msg
}

// Registry maps task type tags to their mappers and dispatches mapping calls.
type Registry struct {
	mu sync.RWMutex

	mappers map[string]TaskMapper

	options Options
	tracer  trace.Tracer
}

var _ SubtaskMapper = (*Registry)(nil)

// NewRegistry creates an empty registry.
func NewRegistry(opts ...Option) *Registry {
	options := ApplyOptions(opts...)

	return &Registry{
		mappers: make(map[string]TaskMapper),
		options: options,
		tracer:  options.TracerProvider.Tracer(TracerName),
	}
}

func (r *Registry) Register(m TaskMapper) error {
	if m == nil {
		return &ErrInvalidMapper{"mapper is nil"}
	}

	taskType := m.Type()
	if taskType == "" {
		return &ErrInvalidMapper{"mapper does not declare a task type"}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.mappers[taskType]; ok {
		return &ErrMapperAlreadyRegistered{fmt.Sprintf("mapper for task type %q already registered", taskType)}
	}
	r.mappers[taskType] = m

	return nil
}

// Get returns the mapper registered for the given task type.
func (r *Registry) Get(taskType string) (TaskMapper, bool) {
	if taskType == "" {
		taskType = core.TaskTypeSimple
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.mappers[taskType]
	return m, ok
}

// Types returns the registered task types in sorted order.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Sorted(maps.Keys(r.mappers))
}

// Dispatch maps the workflow task of the given context with the mapper registered for its type.
func (r *Registry) Dispatch(ctx context.Context, mctx *Context) ([]*core.Task, error) {
	if mctx == nil {
		return nil, errors.New("mapper context is nil")
	}

	wt := mctx.WorkflowTask()
	taskType := wt.TypeOrDefault()

	ctx, span := r.tracer.Start(ctx, "Map: "+taskType, trace.WithAttributes(
		attribute.String(tracing.TaskType, taskType),
		attribute.String(tracing.TaskRef, wt.TaskReferenceName),
		attribute.String(tracing.TaskID, mctx.TaskID()),
		attribute.String(tracing.WorkflowID, mctx.Workflow().WorkflowID),
		attribute.Int(tracing.RetryCount, mctx.RetryCount()),
	))
	defer span.End()

	logger := r.options.Logger.With(
		slog.String(log.TaskTypeKey, taskType),
		slog.String(log.TaskRefKey, wt.TaskReferenceName),
		slog.String(log.TaskIDKey, mctx.TaskID()),
		slog.String(log.WorkflowIDKey, mctx.Workflow().WorkflowID),
	)

	m, ok := r.Get(taskType)
	if !ok {
		err := unknownTaskType(wt, taskType)
		r.failed(logger, taskType, err)
		return nil, tracing.WithSpanError(span, err)
	}

	logger.DebugContext(ctx, "Mapping task", slog.Int(log.RetryCountKey, mctx.RetryCount()))

	timer := mi.NewTimer(r.options.Metrics, r.options.Clock, metrickeys.MappingLatency, metrics.Tags{metrickeys.TaskType: taskType})
	tasks, err := m.Map(ctx, mctx)
	timer.Stop()

	if err != nil {
		err = attributeError(err, wt)
		r.failed(logger, taskType, err)
		return nil, tracing.WithSpanError(span, err)
	}

	span.SetAttributes(attribute.Int(tracing.MappedTasks, len(tasks)))
	r.options.Metrics.Counter(metrickeys.TasksMapped, metrics.Tags{metrickeys.TaskType: taskType}, int64(len(tasks)))
	logger.DebugContext(ctx, "Mapped task", slog.Int(log.MappedTasksKey, len(tasks)))

	return tasks, nil
}

// MapSubtask maps a workflow task nested in the task of the parent context.
func (r *Registry) MapSubtask(ctx context.Context, parent *Context, wt *core.WorkflowTask) ([]*core.Task, error) {
	if wt == nil {
		return nil, invalidTemplate(parent.WorkflowTask(), "nested task is nil")
	}

	return r.Dispatch(ctx, parent.WithWorkflowTask(wt, SubtaskID(parent.TaskID(), wt.TaskReferenceName)))
}

func (r *Registry) failed(logger *slog.Logger, taskType string, err error) {
	kind := "other"
	var me *Error
	if errors.As(err, &me) {
		kind = me.Kind.String()
	}

	r.options.Metrics.Counter(metrickeys.MappingFailed, metrics.Tags{
		metrickeys.TaskType:  taskType,
		metrickeys.ErrorKind: kind,
	}, 1)

	logger.Error("Could not map task", slog.String(log.ErrorKindKey, kind), "error", err)
}

// attributeError makes sure errors returned by mappers name the workflow task they were raised for.
func attributeError(err error, wt *core.WorkflowTask) error {
	if me, ok := err.(*Error); ok {
		if me.Reference != "" || me.Name != "" {
			return err
		}

		// Copy, the error might be one of the shared sentinels
		c := *me
		c.TaskType = wt.TypeOrDefault()
		c.Reference = wt.TaskReferenceName
		c.Name = wt.Name
		if c.Detail == "" {
			c.Detail = fmt.Sprintf("%v: %s", c.Kind, describe(wt))
		}

		return &c
	}

	var me *Error
	if errors.As(err, &me) {
		return err
	}

	return fmt.Errorf("mapping %s: %w", describe(wt), err)
}
