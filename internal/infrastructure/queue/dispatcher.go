package queue

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/thorsignia/visitor-system/internal/core/domain"
	"github.com/thorsignia/visitor-system/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
	recordTimeout  = 5 * time.Second
	drainTimeout   = 5 * time.Second
)

// Dispatcher feeds visit events to a fixed set of audit workers. Events are
// sharded by visit ID so each visit's events are recorded in order.
type Dispatcher struct {
	workers []chan domain.VisitEvent
	auditor ports.VisitAuditor
	log     zerolog.Logger
	wg      sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, auditor ports.VisitAuditor, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan domain.VisitEvent, numWorkers),
		auditor: auditor,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.VisitEvent, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. When ctx is cancelled each worker
// records the events still buffered for it, for at most drainTimeout, then stops.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Wait blocks until every worker has stopped.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Publish hands event to the worker owning its visit. A full queue drops the
// event with a warning instead of blocking the request.
func (d *Dispatcher) Publish(event domain.VisitEvent) {
	select {
	case d.workers[d.shardIndex(event.VisitID)] <- event:
	default:
		d.log.Warn().
			Str("visit_id", event.VisitID).
			Str("event", string(event.Type)).
			Msg("audit queue full, event dropped")
	}
}

func (d *Dispatcher) shardIndex(visitID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(visitID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.VisitEvent) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			d.drain(ctx, id, ch)
			return
		case event := <-ch:
			d.record(ctx, id, event)
		}
	}
}

func (d *Dispatcher) drain(ctx context.Context, id int, ch <-chan domain.VisitEvent) {
	deadline := time.Now().Add(drainTimeout)
	for time.Now().Before(deadline) {
		select {
		case event := <-ch:
			d.record(ctx, id, event)
		default:
			return
		}
	}
	if n := len(ch); n > 0 {
		d.log.Warn().Int("worker_id", id).Int("dropped", n).Msg("audit drain timed out")
	}
}

// record runs detached from ctx so an event taken off the queue is still
// written during shutdown.
func (d *Dispatcher) record(ctx context.Context, id int, event domain.VisitEvent) {
	rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
	defer cancel()
	if err := d.auditor.Record(rctx, event); err != nil {
		d.log.Error().Err(err).
			Str("visit_id", event.VisitID).
			Str("event", string(event.Type)).
			Int("worker_id", id).
			Msg("audit record failed")
	}
}

// Discard is the publisher used when no audit store is configured.
type Discard struct{}

func (Discard) Publish(domain.VisitEvent) {}
