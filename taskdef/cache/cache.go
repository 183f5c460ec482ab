package cache

import (
	"context"
	"time"

	"github.com/cschleiden/go-taskmapper/core"
	"github.com/cschleiden/go-taskmapper/internal/metrickeys"
	"github.com/cschleiden/go-taskmapper/metrics"
	"github.com/cschleiden/go-taskmapper/taskdef"
	"github.com/jellydator/ttlcache/v3"
)

type cachedStore struct {
	store   taskdef.Store
	c       *ttlcache.Cache[string, *core.TaskDefinition]
	metrics metrics.Client
}

var _ taskdef.Store = (*cachedStore)(nil)

// NewCachedStore wraps store with a read-through cache holding up to size definitions for the given
// expiration. Writes go to the store and invalidate the cached entry.
func NewCachedStore(store taskdef.Store, size int, expiration time.Duration, opts ...taskdef.Option) *cachedStore {
	options := taskdef.ApplyOptions(opts...)

	c := ttlcache.New(
		ttlcache.WithCapacity[string, *core.TaskDefinition](uint64(size)),
		ttlcache.WithTTL[string, *core.TaskDefinition](expiration),
	)

	m := options.Metrics.WithTags(metrics.Tags{metrickeys.Store: "cache"})

	c.OnEviction(func(ctx context.Context, er ttlcache.EvictionReason, i *ttlcache.Item[string, *core.TaskDefinition]) {
		m.Counter(metrickeys.TaskDefCacheEviction, metrics.Tags{metrickeys.EvictionReason: evictionReason(er)}, 1)
	})

	return &cachedStore{
		store:   store,
		c:       c,
		metrics: m,
	}
}

func (cs *cachedStore) GetTaskDef(ctx context.Context, name string) (*core.TaskDefinition, error) {
	if i := cs.c.Get(name); i != nil {
		cs.metrics.Counter(metrickeys.TaskDefCacheHit, metrics.Tags{}, 1)
		return i.Value().Clone(), nil
	}

	cs.metrics.Counter(metrickeys.TaskDefCacheMiss, metrics.Tags{}, 1)

	def, err := cs.store.GetTaskDef(ctx, name)
	if err != nil {
		return nil, err
	}

	cs.c.Set(name, def.Clone(), ttlcache.DefaultTTL)
	cs.metrics.Gauge(metrickeys.TaskDefCacheSize, metrics.Tags{}, int64(cs.c.Len()))

	return def, nil
}

func (cs *cachedStore) PutTaskDef(ctx context.Context, def *core.TaskDefinition) error {
	if err := cs.store.PutTaskDef(ctx, def); err != nil {
		return err
	}

	cs.c.Delete(def.Name)

	return nil
}

func (cs *cachedStore) DeleteTaskDef(ctx context.Context, name string) error {
	cs.c.Delete(name)

	return cs.store.DeleteTaskDef(ctx, name)
}

// ListTaskDefs always reads from the underlying store.
func (cs *cachedStore) ListTaskDefs(ctx context.Context) ([]*core.TaskDefinition, error) {
	return cs.store.ListTaskDefs(ctx)
}

// StartEviction removes expired entries in the background until ctx is canceled.
func (cs *cachedStore) StartEviction(ctx context.Context) {
	go cs.c.Start()

	<-ctx.Done()

	cs.c.Stop()
}

func evictionReason(er ttlcache.EvictionReason) string {
	switch er {
	case ttlcache.EvictionReasonCapacityReached:
		return "capacity"
	case ttlcache.EvictionReasonExpired:
		return "expired"
	case ttlcache.EvictionReasonDeleted:
		return "deleted"
	default:
		return "unknown"
	}
}
