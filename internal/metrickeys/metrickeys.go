package metrickeys

const (
	Prefix = "taskmapper."

	// Mapping
	TasksMapped    = Prefix + "mapping.tasks"
	MappingFailed  = Prefix + "mapping.failed"
	MappingLatency = Prefix + "mapping.latency"

	// Planner
	PlanRetries = Prefix + "planner.retries"

	// Task definition cache
	TaskDefCacheSize     = Prefix + "taskdef.cache.size"
	TaskDefCacheHit      = Prefix + "taskdef.cache.hit"
	TaskDefCacheMiss     = Prefix + "taskdef.cache.miss"
	TaskDefCacheEviction = Prefix + "taskdef.cache.eviction"
)

// Tag names
const (
	// TaskType is the task type tag of the mapped template
	TaskType = "type"

	// ErrorKind of a failed mapping
	ErrorKind = "kind"

	// Reason for evicting an entry from the task definition cache
	EvictionReason = "reason"

	// Store backing the task definitions
	Store = "store"
)
