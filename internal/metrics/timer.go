package metrics

import (
	"time"

	"github.com/benbjohnson/clock"
	"github.com/cschleiden/go-taskmapper/metrics"
)

type Timer struct {
	client metrics.Client
	clock  clock.Clock
	start  time.Time
	name   string
	tags   metrics.Tags
}

func NewTimer(client metrics.Client, clock clock.Clock, name string, tags metrics.Tags) *Timer {
	return &Timer{
		client: client,
		clock:  clock,
		start:  clock.Now(),
		name:   name,
		tags:   tags,
	}
}

// Stop the timer and send the elapsed time as milliseconds as a distribution metric
func (t *Timer) Stop() {
	elapsed := t.clock.Since(t.start)
	t.client.Distribution(t.name, t.tags, float64(elapsed/time.Millisecond))
}
