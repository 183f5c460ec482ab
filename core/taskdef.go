package core

import (
	"fmt"
	"maps"
	"regexp"
	"slices"
	"sync"

	"github.com/go-playground/validator/v10"
)

type RetryLogic string

const (
	RetryLogicFixed              RetryLogic = "FIXED"
	RetryLogicExponentialBackoff RetryLogic = "EXPONENTIAL_BACKOFF"
	RetryLogicLinearBackoff      RetryLogic = "LINEAR_BACKOFF"
)

type TimeoutPolicy string

const (
	TimeoutPolicyRetry     TimeoutPolicy = "RETRY"
	TimeoutPolicyTimeOutWF TimeoutPolicy = "TIME_OUT_WF"
	TimeoutPolicyAlertOnly TimeoutPolicy = "ALERT_ONLY"
)

// DefaultResponseTimeoutSeconds is applied by NewTaskDefinition.
const DefaultResponseTimeoutSeconds = 3600

// TaskDefinition is the static, named policy shared across all uses of a task.
type TaskDefinition struct {
	Name        string `json:"name" yaml:"name" validate:"required,taskname"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	RetryCount        int        `json:"retryCount,omitempty" yaml:"retryCount,omitempty" validate:"gte=0"`
	RetryLogic        RetryLogic `json:"retryLogic,omitempty" yaml:"retryLogic,omitempty" validate:"omitempty,oneof=FIXED EXPONENTIAL_BACKOFF LINEAR_BACKOFF"`
	RetryDelaySeconds int        `json:"retryDelaySeconds,omitempty" yaml:"retryDelaySeconds,omitempty" validate:"gte=0"`

	TimeoutSeconds         int64         `json:"timeoutSeconds,omitempty" yaml:"timeoutSeconds,omitempty" validate:"gte=0"`
	TimeoutPolicy          TimeoutPolicy `json:"timeoutPolicy,omitempty" yaml:"timeoutPolicy,omitempty" validate:"omitempty,oneof=RETRY TIME_OUT_WF ALERT_ONLY"`
	ResponseTimeoutSeconds int64         `json:"responseTimeoutSeconds,omitempty" yaml:"responseTimeoutSeconds,omitempty" validate:"gte=0"`
	PollTimeoutSeconds     int           `json:"pollTimeoutSeconds,omitempty" yaml:"pollTimeoutSeconds,omitempty" validate:"gte=0"`

	// RateLimitPerFrequency is the number of tasks that may be handed out per RateLimitFrequencyInSeconds window.
	// Zero disables rate limiting.
	RateLimitPerFrequency       int `json:"rateLimitPerFrequency,omitempty" yaml:"rateLimitPerFrequency,omitempty" validate:"gte=0"`
	RateLimitFrequencyInSeconds int `json:"rateLimitFrequencyInSeconds,omitempty" yaml:"rateLimitFrequencyInSeconds,omitempty" validate:"gte=0"`
	ConcurrentExecLimit         int `json:"concurrentExecLimit,omitempty" yaml:"concurrentExecLimit,omitempty" validate:"gte=0"`

	InputKeys  []string `json:"inputKeys,omitempty" yaml:"inputKeys,omitempty"`
	OutputKeys []string `json:"outputKeys,omitempty" yaml:"outputKeys,omitempty"`

	// InputTemplate provides default values for input parameters not bound by the workflow task.
	InputTemplate map[string]any `json:"inputTemplate,omitempty" yaml:"inputTemplate,omitempty"`

	IsolationGroupID   string `json:"isolationGroupId,omitempty" yaml:"isolationGroupId,omitempty"`
	ExecutionNameSpace string `json:"executionNameSpace,omitempty" yaml:"executionNameSpace,omitempty"`
	OwnerEmail         string `json:"ownerEmail,omitempty" yaml:"ownerEmail,omitempty" validate:"omitempty,email"`
}

func NewTaskDefinition(name string) *TaskDefinition {
	return &TaskDefinition{
		Name:                   name,
		RetryLogic:             RetryLogicFixed,
		TimeoutPolicy:          TimeoutPolicyTimeOutWF,
		ResponseTimeoutSeconds: DefaultResponseTimeoutSeconds,
	}
}

var validTaskName = regexp.MustCompile(`^[a-zA-Z0-9_.:-]{1,255}$`)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// Validator returns the shared struct validator with the custom tags used by this module registered.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		_ = validate.RegisterValidation("taskname", func(fl validator.FieldLevel) bool {
			return validTaskName.MatchString(fl.Field().String())
		})
	})

	return validate
}

// Validate ensures the definition is well formed before it is stored.
func (td *TaskDefinition) Validate() error {
	if td == nil {
		return fmt.Errorf("task definition is nil")
	}

	if err := Validator().Struct(td); err != nil {
		return fmt.Errorf("invalid task definition %q: %w", td.Name, err)
	}

	if td.ResponseTimeoutSeconds > 0 && td.TimeoutSeconds > 0 && td.ResponseTimeoutSeconds > td.TimeoutSeconds {
		return fmt.Errorf("invalid task definition %q: responseTimeoutSeconds must be less than timeoutSeconds", td.Name)
	}

	return nil
}

// RateLimited returns true if both rate limit settings are configured.
func (td *TaskDefinition) RateLimited() bool {
	return td.RateLimitPerFrequency > 0 && td.RateLimitFrequencyInSeconds > 0
}

func (td *TaskDefinition) Clone() *TaskDefinition {
	if td == nil {
		return nil
	}

	c := *td
	c.InputKeys = slices.Clone(td.InputKeys)
	c.OutputKeys = slices.Clone(td.OutputKeys)
	c.InputTemplate = CloneMap(td.InputTemplate)

	return &c
}

// CloneMap deep copies nested maps and slices of decoded JSON or YAML values.
func CloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}

	c := make(map[string]any, len(m))
	for k, v := range m {
		c[k] = cloneValue(v)
	}

	return c
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return CloneMap(t)
	case []any:
		s := make([]any, len(t))
		for i := range t {
			s[i] = cloneValue(t[i])
		}
		return s
	case map[string]string:
		return maps.Clone(t)
	case []string:
		return slices.Clone(t)
	default:
		return v
	}
}
