// Package event carries sampler results to the aggregator over a bounded,
// multi-producer single-consumer bus.
package event

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rileyhilliard/hostwatch/internal/metrics"
)

// DefaultCapacity is the bus buffer size used when none is configured.
const DefaultCapacity = 100

// Event is either a parsed sample or a sampling error for one host.
// Exactly one of Sample and Err is set. Connection errors are not tied to a
// metric kind and have HasKind false.
type Event struct {
	Host    string
	Kind    metrics.Kind
	HasKind bool
	Sample  metrics.Sample
	Err     error
	At      time.Time
}

// NewSample builds a sample event.
func NewSample(host string, s metrics.Sample) Event {
	return Event{Host: host, Kind: s.Kind(), HasKind: true, Sample: s, At: time.Now()}
}

// NewError builds an error event for one metric kind.
func NewError(host string, kind metrics.Kind, err error) Event {
	return Event{Host: host, Kind: kind, HasKind: true, Err: err, At: time.Now()}
}

// NewHostError builds an error event that concerns the host as a whole,
// such as a failed connection.
func NewHostError(host string, err error) Event {
	return Event{Host: host, Err: err, At: time.Now()}
}

// IsError reports whether the event carries an error instead of a sample.
func (e Event) IsError() bool {
	return e.Err != nil
}

func (e Event) String() string {
	if e.IsError() {
		if !e.HasKind {
			return fmt.Sprintf("[%s] error: %v", e.Host, e.Err)
		}
		return fmt.Sprintf("[%s][%s] error: %v", e.Host, e.Kind.Label(), e.Err)
	}
	return fmt.Sprintf("[%s][%s] sample", e.Host, e.Kind.Label())
}

// Bus is a bounded FIFO channel of events. Publish blocks when the buffer is
// full, applying backpressure to samplers. Close is idempotent.
type Bus struct {
	ch        chan Event
	closeOnce sync.Once
	done      chan struct{}
}

// NewBus creates a bus with the given buffer capacity.
// A non-positive capacity falls back to DefaultCapacity.
func NewBus(capacity int) *Bus {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Bus{
		ch:   make(chan Event, capacity),
		done: make(chan struct{}),
	}
}

// Publish sends ev, blocking while the bus is full. It returns ctx.Err() if
// the context ends first, or ErrClosed if the bus was closed.
func (b *Bus) Publish(ctx context.Context, ev Event) error {
	select {
	case <-b.done:
		return ErrClosed
	default:
	}
	select {
	case b.ch <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-b.done:
		return ErrClosed
	}
}

// Events returns the receive side of the bus. It is never closed; consumers
// stop on context cancellation or Done.
func (b *Bus) Events() <-chan Event {
	return b.ch
}

// Done is closed once Close has been called.
func (b *Bus) Done() <-chan struct{} {
	return b.done
}

// Close stops accepting new events. Safe to call more than once.
func (b *Bus) Close() {
	b.closeOnce.Do(func() { close(b.done) })
}

// Len returns the number of buffered events.
func (b *Bus) Len() int {
	return len(b.ch)
}

// Cap returns the buffer capacity.
func (b *Bus) Cap() int {
	return cap(b.ch)
}
