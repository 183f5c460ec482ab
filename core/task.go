package core

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

type TaskStatus string

//	┌─────────┐
//	│SCHEDULED│ (created by mappers)
//	└─────────┘
//	     ▼
//	┌───────────┐
//	│IN_PROGRESS│
//	└───────────┘
//	     ▼
//	┌────────────────────────────────────────────────┐
//	│COMPLETED, FAILED, TIMED_OUT, CANCELED, SKIPPED..│
//	└────────────────────────────────────────────────┘
const (
	TaskStatusScheduled               TaskStatus = "SCHEDULED"
	TaskStatusInProgress              TaskStatus = "IN_PROGRESS"
	TaskStatusCompleted               TaskStatus = "COMPLETED"
	TaskStatusCompletedWithErrors     TaskStatus = "COMPLETED_WITH_ERRORS"
	TaskStatusFailed                  TaskStatus = "FAILED"
	TaskStatusFailedWithTerminalError TaskStatus = "FAILED_WITH_TERMINAL_ERROR"
	TaskStatusTimedOut                TaskStatus = "TIMED_OUT"
	TaskStatusCanceled                TaskStatus = "CANCELED"
	TaskStatusSkipped                 TaskStatus = "SKIPPED"
)

// IsTerminal returns true once the task can no longer change state.
func (s TaskStatus) IsTerminal() bool {
	switch s {
	case TaskStatusScheduled, TaskStatusInProgress:
		return false
	}

	return true
}

// IsSuccessful returns true for statuses that let the workflow move on.
func (s TaskStatus) IsSuccessful() bool {
	switch s {
	case TaskStatusCompleted, TaskStatusCompletedWithErrors, TaskStatusSkipped:
		return true
	}

	return false
}

// IsRetriable returns true for terminal statuses a retry can be scheduled for.
func (s TaskStatus) IsRetriable() bool {
	switch s {
	case TaskStatusFailed, TaskStatusTimedOut:
		return true
	}

	return false
}

// Task is a scheduled unit of work produced by a mapper.
type Task struct {
	TaskType string     `json:"taskType" yaml:"taskType"`
	Status   TaskStatus `json:"status" yaml:"status"`

	TaskID            string `json:"taskId" yaml:"taskId"`
	ReferenceTaskName string `json:"referenceTaskName" yaml:"referenceTaskName"`
	TaskDefName       string `json:"taskDefName,omitempty" yaml:"taskDefName,omitempty"`

	WorkflowInstanceID string `json:"workflowInstanceId" yaml:"workflowInstanceId"`
	WorkflowType       string `json:"workflowType,omitempty" yaml:"workflowType,omitempty"`
	CorrelationID      string `json:"correlationId,omitempty" yaml:"correlationId,omitempty"`
	WorkflowPriority   int    `json:"workflowPriority,omitempty" yaml:"workflowPriority,omitempty"`

	ScheduledTime time.Time `json:"scheduledTime" yaml:"scheduledTime"`

	InputData  map[string]any `json:"inputData,omitempty" yaml:"inputData,omitempty"`
	OutputData map[string]any `json:"outputData,omitempty" yaml:"outputData,omitempty"`

	StartDelayInSeconds    int   `json:"startDelayInSeconds,omitempty" yaml:"startDelayInSeconds,omitempty"`
	CallbackAfterSeconds   int64 `json:"callbackAfterSeconds,omitempty" yaml:"callbackAfterSeconds,omitempty"`
	ResponseTimeoutSeconds int64 `json:"responseTimeoutSeconds,omitempty" yaml:"responseTimeoutSeconds,omitempty"`

	RetryCount    int    `json:"retryCount" yaml:"retryCount"`
	RetriedTaskID string `json:"retriedTaskId,omitempty" yaml:"retriedTaskId,omitempty"`

	RateLimitPerFrequency       int `json:"rateLimitPerFrequency,omitempty" yaml:"rateLimitPerFrequency,omitempty"`
	RateLimitFrequencyInSeconds int `json:"rateLimitFrequencyInSeconds,omitempty" yaml:"rateLimitFrequencyInSeconds,omitempty"`

	IsolationGroupID   string `json:"isolationGroupId,omitempty" yaml:"isolationGroupId,omitempty"`
	ExecutionNameSpace string `json:"executionNameSpace,omitempty" yaml:"executionNameSpace,omitempty"`
	Domain             string `json:"domain,omitempty" yaml:"domain,omitempty"`

	// Iteration is the loop iteration for tasks scheduled inside a DO_WHILE, zero otherwise.
	Iteration int `json:"iteration,omitempty" yaml:"iteration,omitempty"`

	// WaitTimeout is the point in time a WAIT task completes on its own. Zero if it waits for a signal.
	WaitTimeout time.Time `json:"waitTimeout,omitempty" yaml:"waitTimeout,omitempty"`

	SubWorkflowID string `json:"subWorkflowId,omitempty" yaml:"subWorkflowId,omitempty"`

	// WorkflowTask is the template the task was created from.
	WorkflowTask *WorkflowTask `json:"workflowTask,omitempty" yaml:"workflowTask,omitempty"`
}

func (t *Task) String() string {
	return fmt.Sprintf("%s[%s](%s)", t.ReferenceTaskName, t.TaskType, t.Status)
}

// IterationSeparator joins a loop task's reference name and iteration.
const IterationSeparator = "__"

// AppendIteration returns the reference name used for the given loop iteration.
func AppendIteration(ref string, iteration int) string {
	return fmt.Sprintf("%s%s%d", ref, IterationSeparator, iteration)
}

// RemoveIteration strips a loop iteration suffix from a reference name.
func RemoveIteration(ref string) string {
	i := strings.LastIndex(ref, IterationSeparator)
	if i <= 0 {
		return ref
	}

	if _, err := strconv.Atoi(ref[i+len(IterationSeparator):]); err != nil {
		return ref
	}

	return ref[:i]
}
