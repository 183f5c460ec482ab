package mapper

import (
	"context"

	"github.com/cschleiden/go-taskmapper/core"
	"github.com/cschleiden/go-taskmapper/params"
)

type KafkaPublishTaskMapper struct {
	resolver params.Resolver
}

var _ TaskMapper = (*KafkaPublishTaskMapper)(nil)

func NewKafkaPublishTaskMapper(resolver params.Resolver) *KafkaPublishTaskMapper {
	return &KafkaPublishTaskMapper{resolver: resolver}
}

func (m *KafkaPublishTaskMapper) Type() string {
	return core.TaskTypeKafkaPublish
}

func (m *KafkaPublishTaskMapper) Map(ctx context.Context, mctx *Context) ([]*core.Task, error) {
	def := taskDefinition(mctx)

	input, err := resolveInput(ctx, m.resolver, mctx, def)
	if err != nil {
		return nil, err
	}

	if err := requireInput(mctx.WorkflowTask(), input, "kafka_request"); err != nil {
		return nil, err
	}

	t := mctx.NewTask()
	t.TaskType = core.TaskTypeKafkaPublish
	t.InputData = input
	schedule(t, mctx, def)

	return []*core.Task{t}, nil
}
