package redis

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/cschleiden/go-taskmapper/core"
	"github.com/cschleiden/go-taskmapper/taskdef"
	"github.com/redis/go-redis/v9"
)

type redisStore struct {
	rdb     redis.UniversalClient
	options *RedisOptions
}

var _ taskdef.Store = (*redisStore)(nil)

// NewRedisStore returns a store keeping every definition as a JSON document under its own key.
func NewRedisStore(client redis.UniversalClient, opts ...RedisStoreOption) (*redisStore, error) {
	if client == nil {
		return nil, errors.New("redis client is nil")
	}

	options := &RedisOptions{
		Options: taskdef.ApplyOptions(),
	}

	for _, opt := range opts {
		opt(options)
	}

	return &redisStore{
		rdb:     client,
		options: options,
	}, nil
}

func (s *redisStore) GetTaskDef(ctx context.Context, name string) (*core.TaskDefinition, error) {
	data, err := s.rdb.Get(ctx, taskDefKey(s.options.KeyPrefix, name)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, taskdef.ErrNotFound
		}

		return nil, fmt.Errorf("getting task definition %q: %w", name, err)
	}

	return taskdef.Unmarshal(data)
}

func (s *redisStore) PutTaskDef(ctx context.Context, def *core.TaskDefinition) error {
	if err := def.Validate(); err != nil {
		return err
	}

	data, err := taskdef.Marshal(def)
	if err != nil {
		return err
	}

	if _, err := s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, taskDefKey(s.options.KeyPrefix, def.Name), data, 0)
		p.SAdd(ctx, taskDefNamesKey(s.options.KeyPrefix), def.Name)
		return nil
	}); err != nil {
		return fmt.Errorf("storing task definition %q: %w", def.Name, err)
	}

	return nil
}

func (s *redisStore) DeleteTaskDef(ctx context.Context, name string) error {
	var del *redis.IntCmd

	if _, err := s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		del = p.Del(ctx, taskDefKey(s.options.KeyPrefix, name))
		p.SRem(ctx, taskDefNamesKey(s.options.KeyPrefix), name)
		return nil
	}); err != nil {
		return fmt.Errorf("deleting task definition %q: %w", name, err)
	}

	if del.Val() == 0 {
		return taskdef.ErrNotFound
	}

	return nil
}

func (s *redisStore) ListTaskDefs(ctx context.Context) ([]*core.TaskDefinition, error) {
	names, err := s.rdb.SMembers(ctx, taskDefNamesKey(s.options.KeyPrefix)).Result()
	if err != nil {
		return nil, fmt.Errorf("listing task definitions: %w", err)
	}

	defs := make([]*core.TaskDefinition, 0, len(names))
	if len(names) == 0 {
		return defs, nil
	}

	slices.Sort(names)

	keys := make([]string, 0, len(names))
	for _, name := range names {
		keys = append(keys, taskDefKey(s.options.KeyPrefix, name))
	}

	values, err := s.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("getting task definitions: %w", err)
	}

	for _, v := range values {
		// Deleted between reading the names and the definitions
		data, ok := v.(string)
		if !ok {
			continue
		}

		def, err := taskdef.Unmarshal([]byte(data))
		if err != nil {
			return nil, err
		}

		defs = append(defs, def)
	}

	return defs, nil
}
