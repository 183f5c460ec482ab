package tracing

const (
	WorkflowID   = "workflow.id"
	WorkflowName = "workflow.name"

	TaskID        = "task.id"
	TaskType      = "task.type"
	TaskRef       = "task.reference"
	RetryCount    = "task.retry_count"
	MappedTasks   = "task.mapped"
	TaskDefName   = "taskdef.name"
	TaskDefSource = "taskdef.source"
)
