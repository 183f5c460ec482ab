package planner

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/cschleiden/go-taskmapper/core"
	"github.com/cschleiden/go-taskmapper/internal/metrickeys"
	"github.com/cschleiden/go-taskmapper/log"
	"github.com/cschleiden/go-taskmapper/metrics"
	"github.com/cschleiden/go-taskmapper/taskdef"
)

// retryingGetter retries failed lookups with exponential backoff. ErrNotFound is returned right away.
type retryingGetter struct {
	getter  taskdef.Getter
	options *Options
}

var _ taskdef.Getter = (*retryingGetter)(nil)

func (g *retryingGetter) GetTaskDef(ctx context.Context, name string) (*core.TaskDefinition, error) {
	b := &backoff.ExponentialBackOff{
		InitialInterval:     g.options.LookupBackoff,
		MaxInterval:         time.Second * 1,
		Multiplier:          1.5,
		RandomizationFactor: 0.5,
		Stop:                backoff.Stop,
		Clock:               g.options.Clock,
	}
	b.Reset()

	var def *core.TaskDefinition
	attempt := 0

	err := backoff.RetryNotify(func() error {
		attempt++

		var err error
		def, err = g.getter.GetTaskDef(ctx, name)
		if errors.Is(err, taskdef.ErrNotFound) {
			return backoff.Permanent(err)
		}

		return err
	}, backoff.WithContext(backoff.WithMaxRetries(b, g.options.LookupRetries), ctx), func(err error, d time.Duration) {
		g.options.Metrics.Counter(metrickeys.PlanRetries, metrics.Tags{}, 1)
		g.options.Logger.WarnContext(ctx, "Retrying task definition lookup",
			slog.String(log.TaskDefNameKey, name),
			slog.Int(log.AttemptKey, attempt),
			slog.Int64(log.DurationKey, d.Milliseconds()),
			"error", err,
		)
	})

	return def, err
}
