package log

const (
	NamespaceKey = "taskmapper"

	TaskIDKey        = NamespaceKey + ".task.id"
	TaskTypeKey      = NamespaceKey + ".task.type"
	TaskRefKey       = NamespaceKey + ".task.reference"
	TaskDefNameKey   = NamespaceKey + ".task.def_name"
	RetryCountKey    = NamespaceKey + ".task.retry_count"
	RetriedTaskIDKey = NamespaceKey + ".task.retried_task_id"
	MappedTasksKey   = NamespaceKey + ".task.mapped"
	IterationKey     = NamespaceKey + ".task.iteration"

	WorkflowIDKey   = NamespaceKey + ".workflow.id"
	WorkflowNameKey = NamespaceKey + ".workflow.name"

	StoreKey     = NamespaceKey + ".store"
	ErrorKindKey = NamespaceKey + ".error.kind"

	AttemptKey  = NamespaceKey + ".attempt"
	DurationKey = NamespaceKey + ".duration_ms"
)
