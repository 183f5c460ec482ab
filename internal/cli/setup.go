package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	charmlog "github.com/charmbracelet/log"
	"github.com/cschleiden/go-taskmapper/internal/config"
	"github.com/cschleiden/go-taskmapper/log"
	"github.com/cschleiden/go-taskmapper/metrics"
	mprom "github.com/cschleiden/go-taskmapper/metrics/prometheus"
	"github.com/cschleiden/go-taskmapper/taskdef"
	"github.com/cschleiden/go-taskmapper/taskdef/cache"
	"github.com/cschleiden/go-taskmapper/taskdef/memory"
	"github.com/cschleiden/go-taskmapper/taskdef/mysql"
	tdredis "github.com/cschleiden/go-taskmapper/taskdef/redis"
	"github.com/cschleiden/go-taskmapper/taskdef/sqlite"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// env bundles everything commands need. It is built from the configuration before a command runs and closed
// afterwards.
type env struct {
	cfg *config.Config

	logger         *slog.Logger
	metrics        metrics.Client
	registry       *prometheus.Registry
	tracerProvider trace.TracerProvider

	store taskdef.Store

	closers []func(ctx context.Context) error
}

func newEnv(ctx context.Context, cfg *config.Config, stderr io.Writer) (*env, error) {
	e := &env{
		cfg:      cfg,
		logger:   newLogger(cfg.Log, stderr),
		registry: prometheus.NewRegistry(),
	}
	e.metrics = mprom.NewClient(e.registry)

	tp, err := e.newTracerProvider(ctx, stderr)
	if err != nil {
		return nil, err
	}
	e.tracerProvider = tp

	store, err := e.newStore(ctx)
	if err != nil {
		_ = e.close(ctx)
		return nil, err
	}
	e.store = store

	return e, nil
}

func (e *env) close(ctx context.Context) error {
	var errs []error

	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}

	if e.cfg.MetricsFile != "" {
		if err := prometheus.WriteToTextfile(e.cfg.MetricsFile, e.registry); err != nil {
			errs = append(errs, fmt.Errorf("writing metrics: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("closing: %v", errs)
	}

	return nil
}

func newLogger(cfg config.Log, w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}

	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
	}

	h := charmlog.NewWithOptions(w, charmlog.Options{
		Level:           charmlog.Level(level),
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
		Prefix:          log.NamespaceKey,
	})

	return slog.New(h)
}

func (e *env) newTracerProvider(ctx context.Context, stderr io.Writer) (trace.TracerProvider, error) {
	var opt sdktrace.TracerProviderOption

	switch e.cfg.Tracing.Exporter {
	case "stdout":
		exp, err := stdouttrace.New(stdouttrace.WithWriter(stderr), stdouttrace.WithPrettyPrint())
		if err != nil {
			return nil, fmt.Errorf("creating stdout exporter: %w", err)
		}
		opt = sdktrace.WithSyncer(exp)

	case "otlp":
		opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(e.cfg.Tracing.Endpoint)}
		if e.cfg.Tracing.Insecure {
			opts = append(opts, otlptracehttp.WithInsecure())
		}

		exp, err := otlptrace.New(ctx, otlptracehttp.NewClient(opts...))
		if err != nil {
			return nil, fmt.Errorf("creating otlp exporter: %w", err)
		}
		opt = sdktrace.WithBatcher(exp)

	default:
		return noop.NewTracerProvider(), nil
	}

	tp := sdktrace.NewTracerProvider(
		opt,
		sdktrace.WithResource(resource.NewSchemaless(
			attribute.String("service.name", "taskmapper"),
		)),
	)
	e.closers = append(e.closers, tp.Shutdown)

	return tp, nil
}

func (e *env) newStore(ctx context.Context) (taskdef.Store, error) {
	storeOpts := []taskdef.Option{taskdef.WithLogger(e.logger), taskdef.WithMetrics(e.metrics)}

	var store taskdef.Store

	switch e.cfg.Store {
	case config.StoreSqlite:
		var s interface {
			taskdef.Store
			Close() error
		}
		var err error

		if e.cfg.Sqlite.Path == "" {
			s, err = sqlite.NewInMemoryStore(sqlite.WithStoreOptions(storeOpts...))
		} else {
			s, err = sqlite.NewSqliteStore(e.cfg.Sqlite.Path, sqlite.WithStoreOptions(storeOpts...))
		}
		if err != nil {
			return nil, fmt.Errorf("opening sqlite store: %w", err)
		}

		e.closers = append(e.closers, func(context.Context) error { return s.Close() })
		store = s

	case config.StoreMySQL:
		c := e.cfg.MySQL
		s, err := mysql.NewMysqlStore(c.Host, c.Port, c.User, c.Password, c.Database, mysql.WithStoreOptions(storeOpts...))
		if err != nil {
			return nil, fmt.Errorf("opening mysql store: %w", err)
		}

		e.closers = append(e.closers, func(context.Context) error { return s.Close() })
		store = s

	case config.StoreRedis:
		c := e.cfg.Redis
		client := redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs:    c.Addrs,
			Password: c.Password,
			DB:       c.DB,
		})
		e.closers = append(e.closers, func(context.Context) error { return client.Close() })

		if err := client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("connecting to redis at %v: %w", strings.Join(c.Addrs, ","), err)
		}

		s, err := tdredis.NewRedisStore(client, tdredis.WithKeyPrefix(c.KeyPrefix), tdredis.WithStoreOptions(storeOpts...))
		if err != nil {
			return nil, err
		}
		store = s

	default:
		s, err := memory.NewMemoryStore()
		if err != nil {
			return nil, err
		}
		store = s
	}

	e.logger.DebugContext(ctx, "Opened task definition store", slog.String(log.StoreKey, string(e.cfg.Store)))

	if e.cfg.Cache.TTL > 0 {
		store = cache.NewCachedStore(store, e.cfg.Cache.Size, e.cfg.Cache.TTL, storeOpts...)
	}

	return store, nil
}
