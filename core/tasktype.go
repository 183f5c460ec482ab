package core

// Task type tags understood by the mapper family.
const (
	TaskTypeSimple          = "SIMPLE"
	TaskTypeExclusive       = "EXCLUSIVE"
	TaskTypeUserDefined     = "USER_DEFINED"
	TaskTypeHTTP            = "HTTP"
	TaskTypeKafkaPublish    = "KAFKA_PUBLISH"
	TaskTypeEvent           = "EVENT"
	TaskTypeWait            = "WAIT"
	TaskTypeHuman           = "HUMAN"
	TaskTypeInline          = "INLINE"
	TaskTypeLambda          = "LAMBDA"
	TaskTypeJSONJQTransform = "JSON_JQ_TRANSFORM"
	TaskTypeSetVariable     = "SET_VARIABLE"
	TaskTypeNoop            = "NOOP"
	TaskTypeTerminate       = "TERMINATE"
	TaskTypeStartWorkflow   = "START_WORKFLOW"
	TaskTypeSubWorkflow     = "SUB_WORKFLOW"
	TaskTypeDynamic         = "DYNAMIC"
	TaskTypeDecision        = "DECISION"
	TaskTypeSwitch          = "SWITCH"
	TaskTypeForkJoin        = "FORK_JOIN"
	TaskTypeForkJoinDynamic = "FORK_JOIN_DYNAMIC"
	TaskTypeJoin            = "JOIN"
	TaskTypeDoWhile         = "DO_WHILE"
)

// TaskTypeFork is the runtime type of the task produced for FORK_JOIN and FORK_JOIN_DYNAMIC templates.
const TaskTypeFork = "FORK"

// RequiresTaskDefinition returns true for task types that cannot be mapped without a task definition.
func RequiresTaskDefinition(taskType string) bool {
	switch taskType {
	case TaskTypeSimple, TaskTypeExclusive, TaskTypeUserDefined, "":
		return true
	}

	return false
}

// UsesTaskDefinition returns true for task types that pick up policy from a task definition when one exists.
func UsesTaskDefinition(taskType string) bool {
	if RequiresTaskDefinition(taskType) {
		return true
	}

	switch taskType {
	case TaskTypeHTTP, TaskTypeKafkaPublish:
		return true
	}

	return false
}
