package mapper

import (
	"github.com/cschleiden/go-taskmapper/params"
	"github.com/cschleiden/go-taskmapper/taskdef"
)

// NewDefaultRegistry returns a registry with mappers for all built-in task types. defs is used by the mappers
// of dynamic task types to look up definitions and may be nil.
func NewDefaultRegistry(resolver params.Resolver, defs taskdef.Getter, opts ...Option) (*Registry, error) {
	if resolver == nil {
		resolver = params.NewTemplateResolver()
	}

	r := NewRegistry(opts...)

	mappers := []TaskMapper{
		NewSimpleTaskMapper(resolver),
		NewExclusiveTaskMapper(resolver),
		NewUserDefinedTaskMapper(resolver),
		NewHTTPTaskMapper(resolver),
		NewKafkaPublishTaskMapper(resolver),
		NewEventTaskMapper(resolver),
		NewWaitTaskMapper(resolver),
		NewHumanTaskMapper(resolver),
		NewInlineTaskMapper(resolver),
		NewLambdaTaskMapper(resolver),
		NewJSONJQTransformTaskMapper(resolver),
		NewSetVariableTaskMapper(resolver),
		NewNoopTaskMapper(resolver),
		NewTerminateTaskMapper(resolver),
		NewStartWorkflowTaskMapper(resolver),
		NewSubWorkflowTaskMapper(resolver),
		NewDynamicTaskMapper(resolver, defs),
		NewDecisionTaskMapper(resolver, r),
		NewSwitchTaskMapper(resolver, r),
		NewForkJoinTaskMapper(resolver, r),
		NewJoinTaskMapper(resolver),
		NewForkJoinDynamicTaskMapper(resolver, r, defs),
		NewDoWhileTaskMapper(resolver, r),
	}

	for _, m := range mappers {
		if err := r.Register(m); err != nil {
			return nil, err
		}
	}

	return r, nil
}
