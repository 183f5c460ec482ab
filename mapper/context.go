package mapper

import (
	"fmt"

	"github.com/benbjohnson/clock"
	"github.com/cschleiden/go-taskmapper/core"
	"github.com/google/uuid"
)

// ContextParams holds everything needed to build a Context.
type ContextParams struct {
	WorkflowTask *core.WorkflowTask `validate:"required,structonly"`
	Workflow     *core.Workflow     `validate:"required,structonly"`

	// TaskID is the id assigned to the task created for WorkflowTask.
	TaskID string `validate:"required"`

	RetryCount int `validate:"gte=0"`

	// RetriedTaskID is the id of the task being retried, empty for the first attempt.
	RetriedTaskID string

	// TaskDefinition is an optional pre-resolved task definition.
	TaskDefinition *core.TaskDefinition `validate:"-"`

	// TaskInput is an optional pre-resolved input. Mappers for system tasks use it instead of resolving the
	// input parameters of the workflow task.
	TaskInput map[string]any `validate:"-"`

	// Clock is used to timestamp created tasks. Defaults to the wall clock.
	Clock clock.Clock `validate:"-"`
}

// Context is the immutable input of a single mapping call.
type Context struct {
	workflowTask   *core.WorkflowTask
	workflow       *core.Workflow
	taskID         string
	retryCount     int
	retriedTaskID  string
	taskDefinition *core.TaskDefinition
	taskInput      map[string]any
	clock          clock.Clock
}

// NewContext validates the given parameters and returns a new mapping context.
func NewContext(p ContextParams) (*Context, error) {
	if err := core.Validator().Struct(p); err != nil {
		return nil, fmt.Errorf("invalid mapper context: %w", err)
	}

	c := p.Clock
	if c == nil {
		c = clock.New()
	}

	return &Context{
		workflowTask:   p.WorkflowTask,
		workflow:       p.Workflow,
		taskID:         p.TaskID,
		retryCount:     p.RetryCount,
		retriedTaskID:  p.RetriedTaskID,
		taskDefinition: p.TaskDefinition,
		taskInput:      core.CloneMap(p.TaskInput),
		clock:          c,
	}, nil
}

func (c *Context) WorkflowTask() *core.WorkflowTask {
	return c.workflowTask
}

func (c *Context) Workflow() *core.Workflow {
	return c.workflow
}

func (c *Context) TaskID() string {
	return c.taskID
}

func (c *Context) RetryCount() int {
	return c.retryCount
}

func (c *Context) RetriedTaskID() string {
	return c.retriedTaskID
}

// TaskDefinition returns the pre-resolved task definition, if any.
func (c *Context) TaskDefinition() *core.TaskDefinition {
	return c.taskDefinition
}

// TaskInput returns a copy of the pre-resolved input, or nil if none was given.
func (c *Context) TaskInput() map[string]any {
	return core.CloneMap(c.taskInput)
}

func (c *Context) Clock() clock.Clock {
	return c.clock
}

// NewTask returns a task pre-populated with the identity of this context. Mappers override type specific
// fields.
func (c *Context) NewTask() *core.Task {
	wt := c.workflowTask
	wf := c.workflow

	t := &core.Task{
		TaskType:           wt.TypeOrDefault(),
		Status:             core.TaskStatusScheduled,
		TaskID:             c.taskID,
		ReferenceTaskName:  wt.TaskReferenceName,
		TaskDefName:        wt.Name,
		WorkflowInstanceID: wf.WorkflowID,
		WorkflowType:       wf.Name(),
		CorrelationID:      wf.CorrelationID,
		WorkflowPriority:   wf.Priority,
		ScheduledTime:      c.clock.Now(),
		WorkflowTask:       wt.Clone(),
	}

	if domain, ok := wf.TaskToDomain[wt.Name]; ok {
		t.Domain = domain
	} else if domain, ok := wf.TaskToDomain["*"]; ok {
		t.Domain = domain
	}

	return t
}

// WithWorkflowTask derives the context used to map a task nested in the current one. The nested task shares the
// workflow, clock and retry count. Pre-resolved definition and input are not inherited.
func (c *Context) WithWorkflowTask(wt *core.WorkflowTask, taskID string) *Context {
	return &Context{
		workflowTask: wt,
		workflow:     c.workflow,
		taskID:       taskID,
		retryCount:   c.retryCount,
		clock:        c.clock,
	}
}

// SubtaskID derives a stable id for a task nested in the task with the given id, so that mapping the same context
// twice yields the same ids.
func SubtaskID(parentID, ref string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(parentID+"/"+ref)).String()
}
