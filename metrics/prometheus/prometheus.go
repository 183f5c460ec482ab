package prometheus

import (
	"errors"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/cschleiden/go-taskmapper/metrics"
	prom "github.com/prometheus/client_golang/prometheus"
)

type collectors struct {
	mu sync.Mutex

	reg prom.Registerer

	counters   map[string]*prom.CounterVec
	gauges     map[string]*prom.GaugeVec
	histograms map[string]*prom.HistogramVec
	labels     map[string][]string
}

type client struct {
	c    *collectors
	tags metrics.Tags
}

var _ metrics.Client = (*client)(nil)

// NewClient returns a metrics client registering its collectors with reg. Metric names are converted to the
// prometheus format, counters get a _total suffix and timings are recorded in seconds. The label names of a
// metric are fixed by its first use, later tags not among them are dropped.
func NewClient(reg prom.Registerer) *client {
	return &client{
		c: &collectors{
			reg:        reg,
			counters:   map[string]*prom.CounterVec{},
			gauges:     map[string]*prom.GaugeVec{},
			histograms: map[string]*prom.HistogramVec{},
			labels:     map[string][]string{},
		},
	}
}

func (pc *client) Counter(name string, tags metrics.Tags, value int64) {
	name = metricName(name) + "_total"
	tags = pc.merge(tags)

	pc.c.mu.Lock()
	vec, ok := pc.c.counters[name]
	if !ok {
		vec = prom.NewCounterVec(prom.CounterOpts{Name: name}, pc.c.labelNames(name, tags))
		vec = register(pc.c.reg, vec)
		pc.c.counters[name] = vec
	}
	labels := pc.c.labelValues(name, tags)
	pc.c.mu.Unlock()

	vec.With(labels).Add(float64(value))
}

func (pc *client) Distribution(name string, tags metrics.Tags, value float64) {
	pc.observe(metricName(name), tags, value)
}

func (pc *client) Gauge(name string, tags metrics.Tags, value int64) {
	name = metricName(name)
	tags = pc.merge(tags)

	pc.c.mu.Lock()
	vec, ok := pc.c.gauges[name]
	if !ok {
		vec = prom.NewGaugeVec(prom.GaugeOpts{Name: name}, pc.c.labelNames(name, tags))
		vec = register(pc.c.reg, vec)
		pc.c.gauges[name] = vec
	}
	labels := pc.c.labelValues(name, tags)
	pc.c.mu.Unlock()

	vec.With(labels).Set(float64(value))
}

func (pc *client) Timing(name string, tags metrics.Tags, duration time.Duration) {
	pc.observe(metricName(name)+"_seconds", tags, duration.Seconds())
}

func (pc *client) WithTags(tags metrics.Tags) metrics.Client {
	return &client{
		c:    pc.c,
		tags: pc.merge(tags),
	}
}

func (pc *client) observe(name string, tags metrics.Tags, value float64) {
	tags = pc.merge(tags)

	pc.c.mu.Lock()
	vec, ok := pc.c.histograms[name]
	if !ok {
		vec = prom.NewHistogramVec(prom.HistogramOpts{Name: name, Buckets: prom.DefBuckets}, pc.c.labelNames(name, tags))
		vec = register(pc.c.reg, vec)
		pc.c.histograms[name] = vec
	}
	labels := pc.c.labelValues(name, tags)
	pc.c.mu.Unlock()

	vec.With(labels).Observe(value)
}

func (pc *client) merge(tags metrics.Tags) metrics.Tags {
	if len(pc.tags) == 0 {
		return tags
	}

	merged := maps.Clone(pc.tags)
	maps.Copy(merged, tags)

	return merged
}

// register returns the collector already registered under the same descriptor, if any. Collectors that cannot
// be registered are still usable but not exported.
func register[T prom.Collector](reg prom.Registerer, c T) T {
	if err := reg.Register(c); err != nil {
		var are prom.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing
			}
		}
	}

	return c
}

func (c *collectors) labelNames(name string, tags metrics.Tags) []string {
	names := slices.Sorted(maps.Keys(tags))
	for i, n := range names {
		names[i] = metricName(n)
	}

	c.labels[name] = names

	return names
}

func (c *collectors) labelValues(name string, tags metrics.Tags) prom.Labels {
	labels := prom.Labels{}
	for _, n := range c.labels[name] {
		labels[n] = ""
	}

	for k, v := range tags {
		k = metricName(k)
		if _, ok := labels[k]; ok {
			labels[k] = v
		}
	}

	return labels
}

func metricName(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
}
