package mapper

import (
	"context"
	"maps"
	"strings"

	"github.com/cschleiden/go-taskmapper/core"
	"github.com/cschleiden/go-taskmapper/params"
	"github.com/go-viper/mapstructure/v2"
)

// Input parameters added to SUB_WORKFLOW tasks.
const (
	SubWorkflowNameInput         = "subWorkflowName"
	SubWorkflowVersionInput      = "subWorkflowVersion"
	SubWorkflowTaskToDomainInput = "subWorkflowTaskToDomain"
	SubWorkflowDefinitionInput   = "subWorkflowDefinition"
	WorkflowInputInput           = "workflowInput"
)

// SubWorkflowTaskMapper maps SUB_WORKFLOW tasks. Name and version of the sub workflow may be bound to
// expressions, they are resolved against the parent workflow.
type SubWorkflowTaskMapper struct {
	resolver params.Resolver
}

var _ TaskMapper = (*SubWorkflowTaskMapper)(nil)

func NewSubWorkflowTaskMapper(resolver params.Resolver) *SubWorkflowTaskMapper {
	return &SubWorkflowTaskMapper{resolver: resolver}
}

func (m *SubWorkflowTaskMapper) Type() string {
	return core.TaskTypeSubWorkflow
}

type subWorkflowRef struct {
	Name    string `mapstructure:"name"`
	Version int    `mapstructure:"version"`
}

func (m *SubWorkflowTaskMapper) Map(ctx context.Context, mctx *Context) ([]*core.Task, error) {
	wt := mctx.WorkflowTask()

	swp := wt.SubWorkflowParam
	if swp == nil {
		return nil, invalidTemplate(wt, "sub workflow task is missing subWorkflowParam")
	}

	ref, err := m.resolveRef(ctx, mctx, swp)
	if err != nil {
		return nil, err
	}

	t, err := systemTask(ctx, m.resolver, mctx, core.TaskTypeSubWorkflow)
	if err != nil {
		return nil, err
	}

	workflowInput := core.CloneMap(t.InputData)

	t.InputData[SubWorkflowNameInput] = ref.Name
	t.InputData[SubWorkflowVersionInput] = ref.Version
	t.InputData[WorkflowInputInput] = workflowInput

	if len(swp.TaskToDomain) > 0 {
		t.InputData[SubWorkflowTaskToDomainInput] = maps.Clone(swp.TaskToDomain)
	}

	if swp.WorkflowDefinition != nil {
		t.InputData[SubWorkflowDefinitionInput] = swp.WorkflowDefinition.Clone()
	}

	return []*core.Task{t}, nil
}

// resolveRef resolves name and version of the sub workflow. A missing version selects the latest.
func (m *SubWorkflowTaskMapper) resolveRef(ctx context.Context, mctx *Context, swp *core.SubWorkflowParams) (*subWorkflowRef, error) {
	wt := mctx.WorkflowTask()

	bindings := map[string]any{"name": swp.Name}
	if swp.Version != nil {
		bindings["version"] = swp.Version
	}

	resolved, err := m.resolver.Resolve(ctx, bindings, mctx.Workflow(), nil, mctx.TaskID())
	if err != nil {
		return nil, inputResolutionFailure(wt, err)
	}

	var ref subWorkflowRef
	if err := mapstructure.WeakDecode(resolved, &ref); err != nil {
		return nil, invalidTemplate(wt, "invalid sub workflow reference: %v", err)
	}

	ref.Name = strings.TrimSpace(ref.Name)
	if ref.Name == "" {
		if swp.WorkflowDefinition == nil {
			return nil, invalidTemplate(wt, "sub workflow name is empty")
		}

		ref.Name = swp.WorkflowDefinition.Name
	}

	if ref.Version < 0 {
		return nil, invalidTemplate(wt, "invalid sub workflow version %d", ref.Version)
	}

	return &ref, nil
}
