package planner

import (
	"log/slog"
	"time"

	"github.com/benbjohnson/clock"
	mi "github.com/cschleiden/go-taskmapper/internal/metrics"
	"github.com/cschleiden/go-taskmapper/metrics"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

type Options struct {
	Logger *slog.Logger

	Metrics metrics.Client

	TracerProvider trace.TracerProvider

	// Clock timestamps planned tasks.
	Clock clock.Clock

	// TaskID generates the ids of planned tasks. Ids of tasks nested in structural tasks are derived from it.
	TaskID func() string

	// LookupRetries is the number of times a failed task definition lookup is retried. Missing definitions are
	// never retried.
	LookupRetries uint64

	// LookupBackoff is the initial wait between lookup attempts.
	LookupBackoff time.Duration

	// MaxConcurrency limits the number of tasks PlanAll maps at the same time. Zero means no limit.
	MaxConcurrency int
}

var DefaultOptions = Options{
	Logger:         slog.Default(),
	Metrics:        mi.NewNoopMetricsClient(),
	TracerProvider: noop.NewTracerProvider(),
	Clock:          clock.New(),
	TaskID:         uuid.NewString,
	LookupRetries:  3,
	LookupBackoff:  10 * time.Millisecond,
}

type Option func(*Options)

func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

func WithMetrics(client metrics.Client) Option {
	return func(o *Options) {
		o.Metrics = client
	}
}

func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *Options) {
		o.TracerProvider = tp
	}
}

func WithClock(c clock.Clock) Option {
	return func(o *Options) {
		o.Clock = c
	}
}

func WithTaskIDGenerator(fn func() string) Option {
	return func(o *Options) {
		o.TaskID = fn
	}
}

func WithLookupRetries(retries uint64, initialBackoff time.Duration) Option {
	return func(o *Options) {
		o.LookupRetries = retries
		o.LookupBackoff = initialBackoff
	}
}

func WithMaxConcurrency(n int) Option {
	return func(o *Options) {
		o.MaxConcurrency = n
	}
}

func ApplyOptions(opts ...Option) Options {
	options := DefaultOptions

	for _, opt := range opts {
		opt(&options)
	}

	if options.Logger == nil {
		options.Logger = slog.Default()
	}

	if options.Metrics == nil {
		options.Metrics = mi.NewNoopMetricsClient()
	}

	if options.TracerProvider == nil {
		options.TracerProvider = noop.NewTracerProvider()
	}

	if options.Clock == nil {
		options.Clock = clock.New()
	}

	if options.TaskID == nil {
		options.TaskID = uuid.NewString
	}

	return options
}
