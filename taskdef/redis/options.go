package redis

import (
	"github.com/cschleiden/go-taskmapper/taskdef"
)

type RedisOptions struct {
	*taskdef.Options

	KeyPrefix string
}

type RedisStoreOption func(*RedisOptions)

// WithKeyPrefix namespaces all keys written by the store.
func WithKeyPrefix(keyPrefix string) RedisStoreOption {
	return func(o *RedisOptions) {
		o.KeyPrefix = keyPrefix
	}
}

func WithStoreOptions(opts ...taskdef.Option) RedisStoreOption {
	return func(o *RedisOptions) {
		for _, opt := range opts {
			opt(o.Options)
		}
	}
}
