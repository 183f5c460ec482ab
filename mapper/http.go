package mapper

import (
	"context"

	"github.com/cschleiden/go-taskmapper/core"
	"github.com/cschleiden/go-taskmapper/params"
)

// HTTPTaskMapper maps HTTP tasks. A task definition is optional, when present its rate limits and timeouts apply.
type HTTPTaskMapper struct {
	resolver params.Resolver
}

var _ TaskMapper = (*HTTPTaskMapper)(nil)

func NewHTTPTaskMapper(resolver params.Resolver) *HTTPTaskMapper {
	return &HTTPTaskMapper{resolver: resolver}
}

func (m *HTTPTaskMapper) Type() string {
	return core.TaskTypeHTTP
}

func (m *HTTPTaskMapper) Map(ctx context.Context, mctx *Context) ([]*core.Task, error) {
	def := taskDefinition(mctx)

	// HTTP tasks always resolve their bindings, the definition may carry an input template for the request.
	input, err := resolveInput(ctx, m.resolver, mctx, def)
	if err != nil {
		return nil, err
	}

	_, hasRequest := input["http_request"]
	_, hasURI := input["uri"]
	if !hasRequest && !hasURI {
		return nil, invalidTemplate(mctx.WorkflowTask(), "missing input parameter %q or %q", "http_request", "uri")
	}

	t := mctx.NewTask()
	t.TaskType = core.TaskTypeHTTP
	t.InputData = input
	schedule(t, mctx, def)

	return []*core.Task{t}, nil
}
