package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func Test_Load_Defaults(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)

	require.Equal(t, StoreMemory, c.Store)
	require.Equal(t, []string{"localhost:6379"}, c.Redis.Addrs)
	require.Equal(t, 3306, c.MySQL.Port)
	require.Equal(t, "info", c.Log.Level)
	require.Equal(t, "none", c.Tracing.Exporter)
	require.Zero(t, c.Cache.TTL)
	require.Equal(t, uint64(3), c.LookupRetries)
}

func Test_Load_Environment(t *testing.T) {
	t.Setenv("TASKMAPPER_STORE", "redis")
	t.Setenv("TASKMAPPER_REDIS_ADDRS", "a:6379,b:6379")
	t.Setenv("TASKMAPPER_REDIS_KEY_PREFIX", "tm:")
	t.Setenv("TASKMAPPER_CACHE_TTL", "30s")
	t.Setenv("TASKMAPPER_LOG_FORMAT", "json")

	c, err := Load()
	require.NoError(t, err)

	require.Equal(t, StoreRedis, c.Store)
	require.Equal(t, []string{"a:6379", "b:6379"}, c.Redis.Addrs)
	require.Equal(t, "tm:", c.Redis.KeyPrefix)
	require.Equal(t, 30*time.Second, c.Cache.TTL)
	require.Equal(t, "json", c.Log.Format)
}

func Test_Load_DotEnv(t *testing.T) {
	dir := t.TempDir()
	f := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(f, []byte("TASKMAPPER_STORE=sqlite\nTASKMAPPER_SQLITE_PATH=defs.db\nTASKMAPPER_LOG_LEVEL=debug\n"), 0o600))

	// The environment wins over the file
	t.Setenv("TASKMAPPER_LOG_LEVEL", "warn")

	// godotenv sets variables for the whole process
	t.Setenv("TASKMAPPER_STORE", "")
	t.Setenv("TASKMAPPER_SQLITE_PATH", "")
	os.Unsetenv("TASKMAPPER_STORE")
	os.Unsetenv("TASKMAPPER_SQLITE_PATH")

	c, err := Load(filepath.Join(dir, "missing.env"), f)
	require.NoError(t, err)

	require.Equal(t, StoreSqlite, c.Store)
	require.Equal(t, "defs.db", c.Sqlite.Path)
	require.Equal(t, "warn", c.Log.Level)
}

func Test_Load_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "store", env: map[string]string{"TASKMAPPER_STORE": "postgres"}},
		{name: "exporter", env: map[string]string{"TASKMAPPER_TRACING_EXPORTER": "jaeger"}},
		{name: "log format", env: map[string]string{"TASKMAPPER_LOG_FORMAT": "xml"}},
		{name: "cache size", env: map[string]string{"TASKMAPPER_CACHE_TTL": "1m", "TASKMAPPER_CACHE_SIZE": "0"}},
		{name: "port", env: map[string]string{"TASKMAPPER_MYSQL_PORT": "abc"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			require.Error(t, err)
		})
	}
}
