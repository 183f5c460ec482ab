package mapper

import (
	"context"
	"strings"

	"github.com/cschleiden/go-taskmapper/core"
	"github.com/cschleiden/go-taskmapper/params"
)

// EventTaskMapper maps EVENT tasks, which publish their input to the sink configured on the workflow task.
type EventTaskMapper struct {
	resolver params.Resolver
}

var _ TaskMapper = (*EventTaskMapper)(nil)

func NewEventTaskMapper(resolver params.Resolver) *EventTaskMapper {
	return &EventTaskMapper{resolver: resolver}
}

func (m *EventTaskMapper) Type() string {
	return core.TaskTypeEvent
}

func (m *EventTaskMapper) Map(ctx context.Context, mctx *Context) ([]*core.Task, error) {
	wt := mctx.WorkflowTask()

	sink := strings.TrimSpace(wt.Sink)
	if sink == "" {
		return nil, invalidTemplate(wt, "event task has no sink")
	}

	t, err := systemTask(ctx, m.resolver, mctx, core.TaskTypeEvent)
	if err != nil {
		return nil, err
	}

	t.InputData["sink"] = sink

	return []*core.Task{t}, nil
}
