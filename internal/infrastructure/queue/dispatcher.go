package queue

import (
	"context"
	"hash/fnv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/bwils5/cloudbooks-manager/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// Metrics carries the instrumentation hooks the dispatcher reports into.
// The caller wires the actual collectors; any nil field is skipped, so the
// zero value disables instrumentation entirely.
type Metrics struct {
	Recorded prometheus.Counter
	Dropped  prometheus.Counter
	Depth    prometheus.Gauge
}

// Dispatcher persists activity entries asynchronously through a fixed set of
// workers, sharded by action label so entries for the same action stay
// ordered. Enqueue never blocks and never fails: when a worker channel is
// full the entry is dropped and counted, because activity recording must not
// slow down or fail the operation that produced it.
type Dispatcher struct {
	workers []chan ports.ActivityEntry
	service ports.ActivityService
	metrics Metrics
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, service ports.ActivityService, m Metrics, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan ports.ActivityEntry, numWorkers),
		service: service,
		metrics: m,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.ActivityEntry, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue hands an entry to the worker responsible for its action label.
func (d *Dispatcher) Enqueue(entry ports.ActivityEntry) {
	ch := d.workers[d.shardIndex(entry.Action)]
	select {
	case ch <- entry:
		if d.metrics.Depth != nil {
			d.metrics.Depth.Set(float64(len(ch)))
		}
	default:
		if d.metrics.Dropped != nil {
			d.metrics.Dropped.Inc()
		}
		d.log.Warn().Str("action", entry.Action).Msg("activity queue full, entry dropped")
	}
}

// shardIndex maps an action label deterministically to a worker index.
func (d *Dispatcher) shardIndex(action string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(action))
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.ActivityEntry) {
	for {
		select {
		case <-ctx.Done():
			return
		case entry, ok := <-ch:
			if !ok {
				return
			}
			// Record already logs persistence failures; they are
			// swallowed here so a storage outage cannot surface to
			// the request that enqueued the entry.
			if err := d.service.Record(ctx, entry.Action, entry.Detail); err != nil {
				d.log.Error().Err(err).
					Str("action", entry.Action).
					Int("worker_id", id).
					Msg("activity record failed")
			} else if d.metrics.Recorded != nil {
				d.metrics.Recorded.Inc()
			}
		}
	}
}
