package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/cschleiden/go-taskmapper/core"
	"github.com/cschleiden/go-taskmapper/taskdef"
	"github.com/cschleiden/go-taskmapper/taskdef/test"
	"github.com/stretchr/testify/require"
)

func Test_SqliteStore(t *testing.T) {
	test.StoreTest(t, func(t *testing.T) taskdef.Store {
		s, err := NewInMemoryStore()
		require.NoError(t, err)

		return s
	}, func(s taskdef.Store) {
		if err := s.(*sqliteStore).Close(); err != nil {
			panic(err)
		}
	})
}

func Test_SqliteStore_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taskdefs.sqlite")
	ctx := context.Background()

	s, err := NewSqliteStore(path)
	require.NoError(t, err)
	require.NoError(t, s.PutTaskDef(ctx, core.NewTaskDefinition("charge_card")))
	require.NoError(t, s.Close())

	// Reopening applies no further migrations and sees the stored definition
	s, err = NewSqliteStore(path)
	require.NoError(t, err)
	defer s.Close()

	def, err := s.GetTaskDef(ctx, "charge_card")
	require.NoError(t, err)
	require.Equal(t, "charge_card", def.Name)
}

func Test_SqliteStore_WithDB(t *testing.T) {
	db, err := sql.Open("sqlite", "file::memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	defer db.Close()

	_, err = NewSqliteStoreWithDB(db)
	require.NoError(t, err)

	// Without migrations the table does not exist
	_, err = db.Exec("SELECT 1 FROM `task_definitions`")
	require.Error(t, err)

	s, err := NewSqliteStoreWithDB(db, WithApplyMigrations(true))
	require.NoError(t, err)
	require.NoError(t, s.PutTaskDef(context.Background(), core.NewTaskDefinition("a")))

	// Closing the store leaves the connection open
	require.NoError(t, s.Close())
	require.NoError(t, db.Ping())
}
