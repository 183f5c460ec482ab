package core

import (
	"slices"
	"time"
)

// WorkflowDefinition is the static blueprint of a workflow.
type WorkflowDefinition struct {
	Name             string         `json:"name" yaml:"name"`
	Version          int            `json:"version,omitempty" yaml:"version,omitempty"`
	Description      string         `json:"description,omitempty" yaml:"description,omitempty"`
	Tasks            []WorkflowTask `json:"tasks" yaml:"tasks"`
	InputParameters  []string       `json:"inputParameters,omitempty" yaml:"inputParameters,omitempty"`
	OutputParameters map[string]any `json:"outputParameters,omitempty" yaml:"outputParameters,omitempty"`
	SchemaVersion    int            `json:"schemaVersion,omitempty" yaml:"schemaVersion,omitempty"`
	TimeoutSeconds   int64          `json:"timeoutSeconds,omitempty" yaml:"timeoutSeconds,omitempty"`
}

func (wd *WorkflowDefinition) Clone() *WorkflowDefinition {
	if wd == nil {
		return nil
	}

	c := *wd
	c.Tasks = cloneTasks(wd.Tasks)
	c.InputParameters = slices.Clone(wd.InputParameters)
	c.OutputParameters = CloneMap(wd.OutputParameters)

	return &c
}

// TaskByRef finds a task anywhere in the definition, including nested tasks.
func (wd *WorkflowDefinition) TaskByRef(ref string) *WorkflowTask {
	var result *WorkflowTask

	for i := range wd.Tasks {
		wd.Tasks[i].Walk(func(t *WorkflowTask) bool {
			if t.TaskReferenceName == ref {
				result = t
				return false
			}
			return true
		})

		if result != nil {
			break
		}
	}

	return result
}

// AllTasks returns every task of the definition, depth first in definition order.
func (wd *WorkflowDefinition) AllTasks() []*WorkflowTask {
	var tasks []*WorkflowTask

	for i := range wd.Tasks {
		wd.Tasks[i].Walk(func(t *WorkflowTask) bool {
			tasks = append(tasks, t)
			return true
		})
	}

	return tasks
}

// NextTask returns the task that follows ref in the definition graph. The last task of a fork branch or
// decision case is followed by whatever follows the fork or decision. The last task of a loop body is followed
// by the loop task itself. Returns nil when nothing follows.
func (wd *WorkflowDefinition) NextTask(ref string) *WorkflowTask {
	n, _ := nextTask(wd.Tasks, ref)
	return n
}

func nextTask(list []WorkflowTask, ref string) (*WorkflowTask, bool) {
	for i := range list {
		t := &list[i]

		if t.TaskReferenceName == ref {
			if i+1 < len(list) {
				return &list[i+1], true
			}

			return nil, true
		}

		for _, children := range t.Children() {
			n, found := nextTask(children, ref)
			if !found {
				continue
			}

			if n != nil {
				return n, true
			}

			if t.TypeOrDefault() == TaskTypeDoWhile {
				return t, true
			}

			if i+1 < len(list) {
				return &list[i+1], true
			}

			return nil, true
		}
	}

	return nil, false
}

type WorkflowStatus string

const (
	WorkflowStatusRunning    WorkflowStatus = "RUNNING"
	WorkflowStatusCompleted  WorkflowStatus = "COMPLETED"
	WorkflowStatusFailed     WorkflowStatus = "FAILED"
	WorkflowStatusTimedOut   WorkflowStatus = "TIMED_OUT"
	WorkflowStatusTerminated WorkflowStatus = "TERMINATED"
	WorkflowStatusPaused     WorkflowStatus = "PAUSED"
)

// Workflow is the live state of a single workflow run. Mappers only read it.
type Workflow struct {
	WorkflowID    string `json:"workflowId" yaml:"workflowId"`
	CorrelationID string `json:"correlationId,omitempty" yaml:"correlationId,omitempty"`
	Priority      int    `json:"priority,omitempty" yaml:"priority,omitempty"`

	Status WorkflowStatus `json:"status,omitempty" yaml:"status,omitempty"`

	Definition *WorkflowDefinition `json:"workflowDefinition,omitempty" yaml:"workflowDefinition,omitempty"`

	Input     map[string]any `json:"input,omitempty" yaml:"input,omitempty"`
	Output    map[string]any `json:"output,omitempty" yaml:"output,omitempty"`
	Variables map[string]any `json:"variables,omitempty" yaml:"variables,omitempty"`

	ParentWorkflowID     string            `json:"parentWorkflowId,omitempty" yaml:"parentWorkflowId,omitempty"`
	ParentWorkflowTaskID string            `json:"parentWorkflowTaskId,omitempty" yaml:"parentWorkflowTaskId,omitempty"`
	TaskToDomain         map[string]string `json:"taskToDomain,omitempty" yaml:"taskToDomain,omitempty"`

	Tasks []*Task `json:"tasks,omitempty" yaml:"tasks,omitempty"`

	CreateTime time.Time `json:"createTime,omitempty" yaml:"createTime,omitempty"`
}

func NewWorkflow(workflowID string, def *WorkflowDefinition, input map[string]any) *Workflow {
	return &Workflow{
		WorkflowID: workflowID,
		Status:     WorkflowStatusRunning,
		Definition: def,
		Input:      input,
		Variables:  map[string]any{},
	}
}

// Name returns the workflow type name.
func (w *Workflow) Name() string {
	if w.Definition == nil {
		return ""
	}

	return w.Definition.Name
}

func (w *Workflow) Version() int {
	if w.Definition == nil {
		return 0
	}

	return w.Definition.Version
}

// TaskByRef returns the most recent task with the given reference name.
func (w *Workflow) TaskByRef(ref string) *Task {
	for i := len(w.Tasks) - 1; i >= 0; i-- {
		if w.Tasks[i].ReferenceTaskName == ref {
			return w.Tasks[i]
		}
	}

	return nil
}

// IsSubWorkflow returns true if the workflow was started by a SUB_WORKFLOW task.
func (w *Workflow) IsSubWorkflow() bool {
	return w.ParentWorkflowID != ""
}
