package prometheus

import (
	"testing"
	"time"

	"github.com/cschleiden/go-taskmapper/metrics"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
)

func find(t *testing.T, reg *prom.Registry, name string, labels map[string]string) *dto.Metric {
	t.Helper()

	families, err := reg.Gather()
	require.NoError(t, err)

	for _, f := range families {
		if f.GetName() != name {
			continue
		}

		for _, m := range f.GetMetric() {
			got := map[string]string{}
			for _, lp := range m.GetLabel() {
				got[lp.GetName()] = lp.GetValue()
			}

			if len(got) == len(labels) {
				match := true
				for k, v := range labels {
					if got[k] != v {
						match = false
					}
				}

				if match {
					return m
				}
			}
		}
	}

	t.Fatalf("metric %v%v not found", name, labels)
	return nil
}

func Test_Client_Counter(t *testing.T) {
	reg := prom.NewRegistry()
	c := NewClient(reg)

	c.Counter("taskmapper.mapping.tasks", metrics.Tags{"type": "SIMPLE"}, 2)
	c.Counter("taskmapper.mapping.tasks", metrics.Tags{"type": "SIMPLE"}, 1)
	c.Counter("taskmapper.mapping.tasks", metrics.Tags{"type": "HTTP"}, 1)

	require.Equal(t, 3.0, find(t, reg, "taskmapper_mapping_tasks_total", map[string]string{"type": "SIMPLE"}).GetCounter().GetValue())
	require.Equal(t, 1.0, find(t, reg, "taskmapper_mapping_tasks_total", map[string]string{"type": "HTTP"}).GetCounter().GetValue())
}

func Test_Client_WithTags(t *testing.T) {
	reg := prom.NewRegistry()
	c := NewClient(reg).WithTags(metrics.Tags{"store": "cache"})

	c.Gauge("taskmapper.taskdef.cache.size", metrics.Tags{}, 4)
	c.Gauge("taskmapper.taskdef.cache.size", metrics.Tags{}, 3)

	// Labels not known from the first use are dropped
	c.Gauge("taskmapper.taskdef.cache.size", metrics.Tags{"extra": "x"}, 5)

	m := find(t, reg, "taskmapper_taskdef_cache_size", map[string]string{"store": "cache"})
	require.Equal(t, 5.0, m.GetGauge().GetValue())
}

func Test_Client_Histograms(t *testing.T) {
	reg := prom.NewRegistry()
	c := NewClient(reg)

	c.Timing("taskmapper.mapping.latency", metrics.Tags{"type": "SIMPLE"}, 20*time.Millisecond)
	c.Timing("taskmapper.mapping.latency", metrics.Tags{"type": "SIMPLE"}, 30*time.Millisecond)
	c.Distribution("taskmapper.fork.size", metrics.Tags{}, 3)

	count, err := testutil.GatherAndCount(reg, "taskmapper_mapping_latency_seconds", "taskmapper_fork_size")
	require.NoError(t, err)
	require.Equal(t, 2, count)

	h := find(t, reg, "taskmapper_mapping_latency_seconds", map[string]string{"type": "SIMPLE"}).GetHistogram()
	require.Equal(t, uint64(2), h.GetSampleCount())
	require.InDelta(t, 0.05, h.GetSampleSum(), 0.0001)
}

func Test_Client_SharedRegistry(t *testing.T) {
	reg := prom.NewRegistry()

	NewClient(reg).Counter("taskmapper.mapping.failed", metrics.Tags{"kind": "UnknownTaskType"}, 1)
	NewClient(reg).Counter("taskmapper.mapping.failed", metrics.Tags{"kind": "UnknownTaskType"}, 1)

	m := find(t, reg, "taskmapper_mapping_failed_total", map[string]string{"kind": "UnknownTaskType"})
	require.Equal(t, 2.0, m.GetCounter().GetValue())
}

func Test_metricName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"taskmapper.mapping.tasks", "taskmapper_mapping_tasks"},
		{"a-b c", "a_b_c"},
		{"already_ok", "already_ok"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			require.Equal(t, tt.want, metricName(tt.in))
		})
	}
}
