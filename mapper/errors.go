package mapper

import (
	"errors"
	"fmt"

	"github.com/cschleiden/go-taskmapper/core"
	goerrors "github.com/go-errors/errors"
)

type ErrorKind int

const (
	_ ErrorKind = iota

	// MissingTaskDefinition is returned when a task type requires a task definition and none is available.
	MissingTaskDefinition

	// UnknownTaskType is returned when no mapper is registered for a task type.
	UnknownTaskType

	// InputResolutionFailure wraps errors returned by the input resolver.
	InputResolutionFailure

	// InvalidTemplate is returned for workflow tasks missing type specific configuration.
	InvalidTemplate
)

func (k ErrorKind) String() string {
	switch k {
	case MissingTaskDefinition:
		return "MissingTaskDefinition"
	case UnknownTaskType:
		return "UnknownTaskType"
	case InputResolutionFailure:
		return "InputResolutionFailure"
	case InvalidTemplate:
		return "InvalidTemplate"
	default:
		return "Unknown"
	}
}

// Error is a terminal mapping error. It always aborts the mapping pass that produced it.
type Error struct {
	Kind ErrorKind

	// TaskType is the type tag of the workflow task that failed to map.
	TaskType string

	// Reference is the reference name of the workflow task that failed to map.
	Reference string

	// Name is the task name of the workflow task that failed to map.
	Name string

	Detail string

	Cause error

	stack string
}

var _ error = (*Error)(nil)

// Sentinels for use with errors.Is. Only the kind is compared.
var (
	ErrMissingTaskDefinition  = &Error{Kind: MissingTaskDefinition}
	ErrUnknownTaskType        = &Error{Kind: UnknownTaskType}
	ErrInputResolutionFailure = &Error{Kind: InputResolutionFailure}
	ErrInvalidTemplate        = &Error{Kind: InvalidTemplate}
)

func newError(kind ErrorKind, wt *core.WorkflowTask, detail string, cause error) *Error {
	e := &Error{
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}

	if wt != nil {
		e.TaskType = wt.TypeOrDefault()
		e.Reference = wt.TaskReferenceName
		e.Name = wt.Name
	}

	e.stack = string(goerrors.Wrap(detail, 2).Stack())

	return e
}

func missingTaskDefinition(wt *core.WorkflowTask) *Error {
	return newError(MissingTaskDefinition, wt, fmt.Sprintf("%s does not have a definition", describe(wt)), nil)
}

func unknownTaskType(wt *core.WorkflowTask, taskType string) *Error {
	return newError(UnknownTaskType, wt, fmt.Sprintf("no mapper registered for task type %q of %s", taskType, describe(wt)), nil)
}

func inputResolutionFailure(wt *core.WorkflowTask, cause error) *Error {
	return newError(InputResolutionFailure, wt, fmt.Sprintf("could not resolve input of %s", describe(wt)), cause)
}

func invalidTemplate(wt *core.WorkflowTask, format string, args ...any) *Error {
	return newError(InvalidTemplate, wt, fmt.Sprintf("invalid %s: %s", describe(wt), fmt.Sprintf(format, args...)), nil)
}

func describe(wt *core.WorkflowTask) string {
	if wt == nil {
		return "task"
	}

	if wt.TaskReferenceName == "" || wt.TaskReferenceName == wt.Name {
		return fmt.Sprintf("task %s", wt.Ref())
	}

	return fmt.Sprintf("task %s (reference %s)", wt.Name, wt.TaskReferenceName)
}

func (e *Error) Error() string {
	msg := e.Detail
	if msg == "" {
		msg = e.Kind.String()
	}

	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}

	return msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches any *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	return t.Kind == e.Kind
}

// Stack returns the stack trace captured when the error was created.
func (e *Error) Stack() string {
	return e.stack
}

// IsKind returns true if err is or wraps a mapping error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}

	return false
}
