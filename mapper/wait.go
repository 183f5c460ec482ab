package mapper

import (
	"context"
	"strings"
	"time"

	"github.com/cschleiden/go-taskmapper/core"
	"github.com/cschleiden/go-taskmapper/params"
	str2duration "github.com/xhit/go-str2duration/v2"
)

const (
	// WaitDurationInput is a duration such as "30s" or "1d12h" after which a WAIT task completes.
	WaitDurationInput = "duration"

	// WaitUntilInput is the point in time at which a WAIT task completes.
	WaitUntilInput = "until"
)

var untilLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04 MST",
	"2006-01-02 15:04",
	"2006-01-02",
}

// WaitTaskMapper maps WAIT tasks. Without duration or until input the task waits for an external signal.
type WaitTaskMapper struct {
	resolver params.Resolver
}

var _ TaskMapper = (*WaitTaskMapper)(nil)

func NewWaitTaskMapper(resolver params.Resolver) *WaitTaskMapper {
	return &WaitTaskMapper{resolver: resolver}
}

func (m *WaitTaskMapper) Type() string {
	return core.TaskTypeWait
}

func (m *WaitTaskMapper) Map(ctx context.Context, mctx *Context) ([]*core.Task, error) {
	wt := mctx.WorkflowTask()

	t, err := systemTask(ctx, m.resolver, mctx, core.TaskTypeWait)
	if err != nil {
		return nil, err
	}

	duration, hasDuration := stringInput(t.InputData, WaitDurationInput)
	until, hasUntil := stringInput(t.InputData, WaitUntilInput)

	switch {
	case hasDuration && hasUntil:
		return nil, invalidTemplate(wt, "both %q and %q are set", WaitDurationInput, WaitUntilInput)

	case hasDuration:
		d, err := str2duration.ParseDuration(strings.ReplaceAll(duration, " ", ""))
		if err != nil || d < 0 {
			return nil, invalidTemplate(wt, "invalid wait duration %q", duration)
		}

		t.WaitTimeout = mctx.Clock().Now().Add(d)

	case hasUntil:
		ts, ok := parseUntil(until)
		if !ok {
			return nil, invalidTemplate(wt, "invalid wait until %q", until)
		}

		t.WaitTimeout = ts
	}

	return []*core.Task{t}, nil
}

func stringInput(input map[string]any, key string) (string, bool) {
	s, ok := input[key].(string)
	if !ok || strings.TrimSpace(s) == "" {
		return "", false
	}

	return strings.TrimSpace(s), true
}

func parseUntil(s string) (time.Time, bool) {
	for _, layout := range untilLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, true
		}
	}

	return time.Time{}, false
}
