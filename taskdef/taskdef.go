package taskdef

import (
	"context"
	"errors"
	"fmt"

	"github.com/cschleiden/go-taskmapper/core"
)

var ErrNotFound = errors.New("task definition not found")

// Getter looks up task definitions by name.
type Getter interface {
	// GetTaskDef returns the definition with the given name, or ErrNotFound.
	GetTaskDef(ctx context.Context, name string) (*core.TaskDefinition, error)
}

// Store persists task definitions.
type Store interface {
	Getter

	// PutTaskDef creates or replaces a definition. Definitions are validated before they are stored.
	PutTaskDef(ctx context.Context, def *core.TaskDefinition) error

	// DeleteTaskDef removes a definition. Returns ErrNotFound if it does not exist.
	DeleteTaskDef(ctx context.Context, name string) error

	// ListTaskDefs returns all definitions ordered by name.
	ListTaskDefs(ctx context.Context) ([]*core.TaskDefinition, error)
}

// GetterFunc adapts a function to the Getter interface.
type GetterFunc func(ctx context.Context, name string) (*core.TaskDefinition, error)

func (f GetterFunc) GetTaskDef(ctx context.Context, name string) (*core.TaskDefinition, error) {
	return f(ctx, name)
}

// Populate embeds the registered task definition into every task of the workflow definition that uses one and
// does not already carry it, including nested tasks. Tasks whose definition is not registered are left as they
// are, mapping them reports the missing definition.
func Populate(ctx context.Context, getter Getter, def *core.WorkflowDefinition) error {
	for _, wt := range def.AllTasks() {
		if err := PopulateTask(ctx, getter, wt); err != nil {
			return err
		}
	}

	return nil
}

// PopulateTask embeds the registered task definition into a single workflow task.
func PopulateTask(ctx context.Context, getter Getter, wt *core.WorkflowTask) error {
	if wt.TaskDefinition != nil || !core.UsesTaskDefinition(wt.Type) || wt.Name == "" {
		return nil
	}

	td, err := getter.GetTaskDef(ctx, wt.Name)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}

		return fmt.Errorf("getting task definition %q: %w", wt.Name, err)
	}

	wt.TaskDefinition = td

	return nil
}
