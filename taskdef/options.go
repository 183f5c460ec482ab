package taskdef

import (
	"log/slog"

	mi "github.com/cschleiden/go-taskmapper/internal/metrics"
	"github.com/cschleiden/go-taskmapper/metrics"
)

// Options are shared by all store implementations.
type Options struct {
	Logger *slog.Logger

	Metrics metrics.Client
}

var DefaultOptions Options = Options{
	Logger:  slog.Default(),
	Metrics: mi.NewNoopMetricsClient(),
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

func ApplyOptions(opts ...Option) *Options {
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

	return &options
}
