package mysql

import (
	"database/sql"
	"fmt"
	"strings"
	"testing"

	"github.com/cschleiden/go-taskmapper/taskdef"
	"github.com/cschleiden/go-taskmapper/taskdef/test"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

const testUser = "root"
const testPassword = "root"

// Every test gets its own database, dropped again in teardown.

func Test_MysqlStore(t *testing.T) {
	if testing.Short() {
		t.Skip()
	}

	var dbName string

	test.StoreTest(t, func(t *testing.T) taskdef.Store {
		db, err := sql.Open("mysql", fmt.Sprintf("%s:%s@/?parseTime=true&interpolateParams=true", testUser, testPassword))
		require.NoError(t, err)

		dbName = "test_" + strings.ReplaceAll(uuid.NewString(), "-", "")
		_, err = db.Exec("CREATE DATABASE " + dbName)
		require.NoError(t, err)
		require.NoError(t, db.Close())

		s, err := NewMysqlStore("localhost", 3306, testUser, testPassword, dbName)
		require.NoError(t, err)

		return s
	}, func(s taskdef.Store) {
		if err := s.(*mysqlStore).Close(); err != nil {
			panic(err)
		}

		db, err := sql.Open("mysql", fmt.Sprintf("%s:%s@/?parseTime=true&interpolateParams=true", testUser, testPassword))
		if err != nil {
			panic(err)
		}

		if _, err := db.Exec("DROP DATABASE IF EXISTS " + dbName); err != nil {
			panic(fmt.Errorf("dropping database: %w", err))
		}

		if err := db.Close(); err != nil {
			panic(err)
		}
	})
}
