package memory

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/cschleiden/go-taskmapper/core"
	"github.com/cschleiden/go-taskmapper/taskdef"
)

type memoryStore struct {
	mu   sync.RWMutex
	defs map[string]*core.TaskDefinition
}

var _ taskdef.Store = (*memoryStore)(nil)

// NewMemoryStore returns a store keeping task definitions in memory. Definitions are copied on the way in and
// out.
func NewMemoryStore(defs ...*core.TaskDefinition) (*memoryStore, error) {
	s := &memoryStore{
		defs: make(map[string]*core.TaskDefinition),
	}

	for _, def := range defs {
		if err := s.PutTaskDef(context.Background(), def); err != nil {
			return nil, err
		}
	}

	return s, nil
}

func (s *memoryStore) GetTaskDef(_ context.Context, name string) (*core.TaskDefinition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	def, ok := s.defs[name]
	if !ok {
		return nil, taskdef.ErrNotFound
	}

	return def.Clone(), nil
}

func (s *memoryStore) PutTaskDef(_ context.Context, def *core.TaskDefinition) error {
	if err := def.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.defs[def.Name] = def.Clone()

	return nil
}

func (s *memoryStore) DeleteTaskDef(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.defs[name]; !ok {
		return taskdef.ErrNotFound
	}

	delete(s.defs, name)

	return nil
}

func (s *memoryStore) ListTaskDefs(_ context.Context) ([]*core.TaskDefinition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	defs := make([]*core.TaskDefinition, 0, len(s.defs))
	for _, name := range slices.Sorted(maps.Keys(s.defs)) {
		defs = append(defs, s.defs[name].Clone())
	}

	return defs, nil
}
