package core

import (
	"maps"
	"slices"
)

// SubWorkflowParams identifies the workflow started by a SUB_WORKFLOW task. Name and Version may be bound
// to expressions which are resolved at mapping time.
type SubWorkflowParams struct {
	Name               any                 `json:"name,omitempty" yaml:"name,omitempty"`
	Version            any                 `json:"version,omitempty" yaml:"version,omitempty"`
	TaskToDomain       map[string]string   `json:"taskToDomain,omitempty" yaml:"taskToDomain,omitempty"`
	WorkflowDefinition *WorkflowDefinition `json:"workflowDefinition,omitempty" yaml:"workflowDefinition,omitempty"`
}

// WorkflowTask is a single node of a workflow definition. It references a task definition by name and carries
// the per-use overrides for it.
type WorkflowTask struct {
	Name              string `json:"name" yaml:"name"`
	TaskReferenceName string `json:"taskReferenceName" yaml:"taskReferenceName"`
	Description       string `json:"description,omitempty" yaml:"description,omitempty"`

	// Type is the task type tag. An empty type is treated as SIMPLE.
	Type string `json:"type,omitempty" yaml:"type,omitempty"`

	// InputParameters are the unresolved input bindings of the task.
	InputParameters map[string]any `json:"inputParameters,omitempty" yaml:"inputParameters,omitempty"`

	StartDelay int `json:"startDelay,omitempty" yaml:"startDelay,omitempty"`

	// TaskDefinition overrides the definition registered under Name.
	TaskDefinition *TaskDefinition `json:"taskDefinition,omitempty" yaml:"taskDefinition,omitempty"`

	Optional      bool `json:"optional,omitempty" yaml:"optional,omitempty"`
	AsyncComplete bool `json:"asyncComplete,omitempty" yaml:"asyncComplete,omitempty"`
	RetryCount    *int `json:"retryCount,omitempty" yaml:"retryCount,omitempty"`

	// EVENT
	Sink string `json:"sink,omitempty" yaml:"sink,omitempty"`

	// DECISION and SWITCH
	CaseValueParam string                    `json:"caseValueParam,omitempty" yaml:"caseValueParam,omitempty"`
	CaseExpression string                    `json:"caseExpression,omitempty" yaml:"caseExpression,omitempty"`
	EvaluatorType  string                    `json:"evaluatorType,omitempty" yaml:"evaluatorType,omitempty"`
	Expression     string                    `json:"expression,omitempty" yaml:"expression,omitempty"`
	DecisionCases  map[string][]WorkflowTask `json:"decisionCases,omitempty" yaml:"decisionCases,omitempty"`
	DefaultCase    []WorkflowTask            `json:"defaultCase,omitempty" yaml:"defaultCase,omitempty"`

	// FORK_JOIN and JOIN
	ForkTasks [][]WorkflowTask `json:"forkTasks,omitempty" yaml:"forkTasks,omitempty"`
	JoinOn    []string         `json:"joinOn,omitempty" yaml:"joinOn,omitempty"`

	// FORK_JOIN_DYNAMIC
	DynamicForkTasksParam          string `json:"dynamicForkTasksParam,omitempty" yaml:"dynamicForkTasksParam,omitempty"`
	DynamicForkTasksInputParamName string `json:"dynamicForkTasksInputParamName,omitempty" yaml:"dynamicForkTasksInputParamName,omitempty"`

	// DYNAMIC
	DynamicTaskNameParam string `json:"dynamicTaskNameParam,omitempty" yaml:"dynamicTaskNameParam,omitempty"`

	// DO_WHILE
	LoopCondition string         `json:"loopCondition,omitempty" yaml:"loopCondition,omitempty"`
	LoopOver      []WorkflowTask `json:"loopOver,omitempty" yaml:"loopOver,omitempty"`

	// SUB_WORKFLOW
	SubWorkflowParam *SubWorkflowParams `json:"subWorkflowParam,omitempty" yaml:"subWorkflowParam,omitempty"`
}

// TypeOrDefault returns the task type tag, defaulting to SIMPLE.
func (wt *WorkflowTask) TypeOrDefault() string {
	if wt.Type == "" {
		return TaskTypeSimple
	}

	return wt.Type
}

// Ref returns the reference name, falling back to the task name for templates without one.
func (wt *WorkflowTask) Ref() string {
	if wt.TaskReferenceName != "" {
		return wt.TaskReferenceName
	}

	return wt.Name
}

// Children returns the directly nested task lists of structural tasks in definition order.
func (wt *WorkflowTask) Children() [][]WorkflowTask {
	var children [][]WorkflowTask

	switch wt.TypeOrDefault() {
	case TaskTypeDecision, TaskTypeSwitch:
		for _, k := range slices.Sorted(maps.Keys(wt.DecisionCases)) {
			children = append(children, wt.DecisionCases[k])
		}
		if len(wt.DefaultCase) > 0 {
			children = append(children, wt.DefaultCase)
		}
	case TaskTypeForkJoin:
		children = append(children, wt.ForkTasks...)
	case TaskTypeDoWhile:
		children = append(children, wt.LoopOver)
	}

	return children
}

// Walk calls fn for the task and every nested task, depth first. Walking stops when fn returns false.
func (wt *WorkflowTask) Walk(fn func(t *WorkflowTask) bool) bool {
	if !fn(wt) {
		return false
	}

	for _, list := range wt.Children() {
		for i := range list {
			if !list[i].Walk(fn) {
				return false
			}
		}
	}

	return true
}

// Has returns true if the reference name belongs to this task or any task nested in it.
func (wt *WorkflowTask) Has(ref string) bool {
	found := false
	wt.Walk(func(t *WorkflowTask) bool {
		if t.TaskReferenceName == ref {
			found = true
			return false
		}
		return true
	})

	return found
}

func (wt *WorkflowTask) Clone() *WorkflowTask {
	if wt == nil {
		return nil
	}

	c := *wt
	c.InputParameters = CloneMap(wt.InputParameters)
	c.TaskDefinition = wt.TaskDefinition.Clone()
	c.JoinOn = slices.Clone(wt.JoinOn)
	c.DefaultCase = cloneTasks(wt.DefaultCase)
	c.LoopOver = cloneTasks(wt.LoopOver)

	if wt.RetryCount != nil {
		rc := *wt.RetryCount
		c.RetryCount = &rc
	}

	if wt.DecisionCases != nil {
		c.DecisionCases = make(map[string][]WorkflowTask, len(wt.DecisionCases))
		for k, v := range wt.DecisionCases {
			c.DecisionCases[k] = cloneTasks(v)
		}
	}

	if wt.ForkTasks != nil {
		c.ForkTasks = make([][]WorkflowTask, len(wt.ForkTasks))
		for i, branch := range wt.ForkTasks {
			c.ForkTasks[i] = cloneTasks(branch)
		}
	}

	if wt.SubWorkflowParam != nil {
		swp := *wt.SubWorkflowParam
		swp.TaskToDomain = maps.Clone(wt.SubWorkflowParam.TaskToDomain)
		swp.WorkflowDefinition = wt.SubWorkflowParam.WorkflowDefinition.Clone()
		c.SubWorkflowParam = &swp
	}

	return &c
}

func cloneTasks(tasks []WorkflowTask) []WorkflowTask {
	if tasks == nil {
		return nil
	}

	c := make([]WorkflowTask, len(tasks))
	for i := range tasks {
		c[i] = *tasks[i].Clone()
	}

	return c
}
