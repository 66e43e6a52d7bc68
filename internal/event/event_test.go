package event

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rileyhilliard/hostwatch/internal/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSample(t *testing.T) {
	s := &metrics.MemInfo{TotalKB: 10, FreeKB: 5}
	ev := NewSample("web-1", s)

	assert.Equal(t, "web-1", ev.Host)
	assert.Equal(t, metrics.KindMem, ev.Kind)
	assert.False(t, ev.IsError())
	assert.False(t, ev.At.IsZero())
	assert.Equal(t, "[web-1][MEM] sample", ev.String())
}

func TestNewError(t *testing.T) {
	ev := NewError("db", metrics.KindDisk, errors.New("df: not found"))

	assert.True(t, ev.IsError())
	assert.Nil(t, ev.Sample)
	assert.Equal(t, metrics.KindDisk, ev.Kind)
	assert.True(t, ev.HasKind)
	assert.Equal(t, "[db][DISK] error: df: not found", ev.String())
}

func TestNewHostError(t *testing.T) {
	ev := NewHostError("db", errors.New("connection refused"))

	assert.True(t, ev.IsError())
	assert.False(t, ev.HasKind)
	assert.Equal(t, "[db] error: connection refused", ev.String())
}

func TestNewBus_Capacity(t *testing.T) {
	tests := []struct {
		name     string
		capacity int
		expected int
	}{
		{name: "explicit", capacity: 5, expected: 5},
		{name: "zero uses default", capacity: 0, expected: DefaultCapacity},
		{name: "negative uses default", capacity: -3, expected: DefaultCapacity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NewBus(tt.capacity).Cap())
		})
	}
}

func TestBus_FIFO(t *testing.T) {
	bus := NewBus(10)
	ctx := context.Background()

	for _, host := range []string{"a", "b", "c"} {
		require.NoError(t, bus.Publish(ctx, NewError(host, metrics.KindCPU, errors.New("x"))))
	}
	assert.Equal(t, 3, bus.Len())

	for _, want := range []string{"a", "b", "c"} {
		ev := <-bus.Events()
		assert.Equal(t, want, ev.Host)
	}
}

func TestBus_PublishBlocksWhenFull(t *testing.T) {
	bus := NewBus(1)
	require.NoError(t, bus.Publish(context.Background(), NewError("a", metrics.KindMem, errors.New("x"))))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := bus.Publish(ctx, NewError("b", metrics.KindMem, errors.New("x")))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, bus.Len())
}

func TestBus_PublishUnblocksOnReceive(t *testing.T) {
	bus := NewBus(1)
	ctx := context.Background()
	require.NoError(t, bus.Publish(ctx, NewError("a", metrics.KindMem, errors.New("x"))))

	done := make(chan error, 1)
	go func() {
		done <- bus.Publish(ctx, NewError("b", metrics.KindMem, errors.New("x")))
	}()

	assert.Equal(t, "a", (<-bus.Events()).Host)
	require.NoError(t, <-done)
	assert.Equal(t, "b", (<-bus.Events()).Host)
}

func TestBus_Close(t *testing.T) {
	bus := NewBus(1)
	bus.Close()
	bus.Close() // idempotent

	select {
	case <-bus.Done():
	default:
		t.Fatal("Done should be closed")
	}

	err := bus.Publish(context.Background(), NewError("a", metrics.KindMem, errors.New("x")))
	assert.ErrorIs(t, err, ErrClosed)
}

func TestBus_CloseUnblocksPublisher(t *testing.T) {
	bus := NewBus(1)
	require.NoError(t, bus.Publish(context.Background(), NewError("a", metrics.KindMem, errors.New("x"))))

	done := make(chan error, 1)
	go func() {
		done <- bus.Publish(context.Background(), NewError("b", metrics.KindMem, errors.New("x")))
	}()

	bus.Close()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, ErrClosed)
	case <-time.After(time.Second):
		t.Fatal("publisher did not unblock after Close")
	}
}

func TestBus_ConcurrentPublishers(t *testing.T) {
	bus := NewBus(4)
	ctx := context.Background()
	const producers, perProducer = 8, 25

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				_ = bus.Publish(ctx, NewError("h", metrics.KindNet, errors.New("x")))
			}
		}()
	}

	received := 0
	doneProducing := make(chan struct{})
	go func() {
		wg.Wait()
		close(doneProducing)
	}()

	for received < producers*perProducer {
		select {
		case <-bus.Events():
			received++
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out after %d events", received)
		}
	}
	<-doneProducing
	assert.Equal(t, producers*perProducer, received)
}
