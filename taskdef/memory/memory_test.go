package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/cschleiden/go-taskmapper/core"
	"github.com/cschleiden/go-taskmapper/taskdef"
	"github.com/cschleiden/go-taskmapper/taskdef/test"
	"github.com/stretchr/testify/require"
)

func Test_MemoryStore(t *testing.T) {
	test.StoreTest(t, func(t *testing.T) taskdef.Store {
		s, err := NewMemoryStore()
		require.NoError(t, err)

		return s
	}, nil)
}

func Test_NewMemoryStore_Seeds(t *testing.T) {
	s, err := NewMemoryStore(core.NewTaskDefinition("a"), core.NewTaskDefinition("b"))
	require.NoError(t, err)

	defs, err := s.ListTaskDefs(context.Background())
	require.NoError(t, err)
	require.Len(t, defs, 2)

	_, err = NewMemoryStore(&core.TaskDefinition{})
	require.Error(t, err)
}

func Test_MemoryStore_Concurrent(t *testing.T) {
	s, err := NewMemoryStore()
	require.NoError(t, err)

	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = s.PutTaskDef(ctx, core.NewTaskDefinition("a"))
		}()
		go func() {
			defer wg.Done()
			_, _ = s.GetTaskDef(ctx, "a")
			_, _ = s.ListTaskDefs(ctx)
		}()
	}
	wg.Wait()

	def, err := s.GetTaskDef(ctx, "a")
	require.NoError(t, err)
	require.Equal(t, "a", def.Name)
}
