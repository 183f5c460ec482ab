package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/cschleiden/go-taskmapper/core"
	"github.com/cschleiden/go-taskmapper/taskdef"
	"github.com/cschleiden/go-taskmapper/taskdef/test"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T) (*miniredis.Miniredis, redis.UniversalClient) {
	t.Helper()

	mr := miniredis.RunT(t)

	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs: []string{mr.Addr()},
	})
	t.Cleanup(func() { _ = client.Close() })

	return mr, client
}

func Test_RedisStore(t *testing.T) {
	test.StoreTest(t, func(t *testing.T) taskdef.Store {
		_, client := newClient(t)

		s, err := NewRedisStore(client, WithKeyPrefix("test:"))
		require.NoError(t, err)

		return s
	}, nil)
}

func Test_RedisStore_KeyPrefix(t *testing.T) {
	mr, client := newClient(t)
	ctx := context.Background()

	a, err := NewRedisStore(client, WithKeyPrefix("a:"))
	require.NoError(t, err)
	b, err := NewRedisStore(client, WithKeyPrefix("b:"))
	require.NoError(t, err)

	require.NoError(t, a.PutTaskDef(ctx, core.NewTaskDefinition("charge_card")))

	require.True(t, mr.Exists("a:taskdef:charge_card"))
	members, err := mr.Members("a:taskdefs")
	require.NoError(t, err)
	require.Equal(t, []string{"charge_card"}, members)

	_, err = b.GetTaskDef(ctx, "charge_card")
	require.ErrorIs(t, err, taskdef.ErrNotFound)

	defs, err := b.ListTaskDefs(ctx)
	require.NoError(t, err)
	require.Empty(t, defs)
}

func Test_RedisStore_ListSkipsMissingDocuments(t *testing.T) {
	mr, client := newClient(t)
	ctx := context.Background()

	s, err := NewRedisStore(client)
	require.NoError(t, err)

	require.NoError(t, s.PutTaskDef(ctx, core.NewTaskDefinition("a")))
	require.NoError(t, s.PutTaskDef(ctx, core.NewTaskDefinition("b")))

	mr.Del("taskdef:a")

	defs, err := s.ListTaskDefs(ctx)
	require.NoError(t, err)
	require.Len(t, defs, 1)
	require.Equal(t, "b", defs[0].Name)
}

func Test_RedisStore_ConnectionError(t *testing.T) {
	mr, client := newClient(t)

	s, err := NewRedisStore(client)
	require.NoError(t, err)

	mr.Close()

	_, err = s.GetTaskDef(context.Background(), "a")
	require.Error(t, err)
	require.NotErrorIs(t, err, taskdef.ErrNotFound)
}

func Test_NewRedisStore_NilClient(t *testing.T) {
	_, err := NewRedisStore(nil)
	require.Error(t, err)
}
