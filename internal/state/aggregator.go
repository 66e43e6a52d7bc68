package state

import (
	"context"

	"github.com/rileyhilliard/hostwatch/internal/errors"
	"github.com/rileyhilliard/hostwatch/internal/event"
	"github.com/rileyhilliard/hostwatch/internal/instrument"
	"github.com/rileyhilliard/hostwatch/internal/logger"
)

// Aggregator is the single consumer of the event bus. It applies events to
// the store in arrival order and reports errors to the side log.
type Aggregator struct {
	bus     *event.Bus
	store   *Store
	log     logger.Logger
	metrics *instrument.Metrics
}

// NewAggregator creates an aggregator. log and m may be nil.
func NewAggregator(bus *event.Bus, store *Store, log logger.Logger, m *instrument.Metrics) *Aggregator {
	if log == nil {
		log = logger.Noop()
	}
	return &Aggregator{bus: bus, store: store, log: log, metrics: m}
}

// Run blocks applying events until ctx is cancelled or the bus is closed.
// Events still buffered at that point are drained before returning.
func (a *Aggregator) Run(ctx context.Context) error {
	for {
		select {
		case ev := <-a.bus.Events():
			a.handle(ev)
		case <-ctx.Done():
			a.Drain()
			return nil
		case <-a.bus.Done():
			a.Drain()
			return nil
		}
	}
}

// Drain applies every event currently buffered without blocking and returns
// how many were applied.
func (a *Aggregator) Drain() int {
	n := 0
	for {
		select {
		case ev := <-a.bus.Events():
			a.handle(ev)
			n++
		default:
			return n
		}
	}
}

func (a *Aggregator) handle(ev event.Event) {
	a.store.Apply(ev)
	a.metrics.SetBusDepth(a.bus.Len())

	if ev.IsError() {
		kind := ""
		if ev.HasKind {
			kind = ev.Kind.String()
		}
		a.metrics.ObserveError(ev.Host, kind, ev.Err)
		if ev.HasKind {
			a.log.Warn("[%s][%s] %s", ev.Host, ev.Kind.Label(), errors.Brief(ev.Err))
		} else {
			a.log.Warn("[%s] %s", ev.Host, errors.Brief(ev.Err))
		}
		return
	}
	a.metrics.ObserveSample(ev.Host, ev.Sample)
	a.log.Debug("[%s][%s] sample stored", ev.Host, ev.Kind.Label())
}
