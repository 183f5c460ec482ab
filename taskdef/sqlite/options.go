package sqlite

import (
	"github.com/cschleiden/go-taskmapper/taskdef"
)

type options struct {
	*taskdef.Options

	// ApplyMigrations automatically applies database migrations when the store is created.
	ApplyMigrations bool
}

type option func(*options)

// WithApplyMigrations automatically applies database migrations when the store is created.
func WithApplyMigrations(applyMigrations bool) option {
	return func(o *options) {
		o.ApplyMigrations = applyMigrations
	}
}

// WithStoreOptions allows to pass generic store options.
func WithStoreOptions(opts ...taskdef.Option) option {
	return func(o *options) {
		for _, opt := range opts {
			opt(o.Options)
		}
	}
}
