// Package sampler runs one polling loop per monitored host. Each loop keeps
// an SSH session open, runs the metric commands in order, publishes the
// parsed samples (or errors) on the event bus, and sleeps until the next
// round. Connection failures are retried every interval; only context
// cancellation ends a loop.
package sampler

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rileyhilliard/hostwatch/internal/errors"
	"github.com/rileyhilliard/hostwatch/internal/event"
	"github.com/rileyhilliard/hostwatch/internal/instrument"
	"github.com/rileyhilliard/hostwatch/internal/logger"
	"github.com/rileyhilliard/hostwatch/internal/metrics"
	"github.com/rileyhilliard/hostwatch/pkg/sshutil"
)

// State is the phase a sampler loop is in.
type State int32

const (
	StateConnecting State = iota
	StatePolling
	StateSleeping
	StateShuttingDown
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StatePolling:
		return "polling"
	case StateSleeping:
		return "sleeping"
	case StateShuttingDown:
		return "shutting down"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Target is one host to sample. It is not modified after construction.
type Target struct {
	Name     string
	Dial     sshutil.DialOptions
	Kinds    []metrics.Kind
	Interval time.Duration
}

// Dialer opens a session to a host.
type Dialer interface {
	Dial(ctx context.Context, opts sshutil.DialOptions) (sshutil.SSHClient, error)
}

// DialerFunc adapts a function to the Dialer interface.
type DialerFunc func(ctx context.Context, opts sshutil.DialOptions) (sshutil.SSHClient, error)

// Dial calls f.
func (f DialerFunc) Dial(ctx context.Context, opts sshutil.DialOptions) (sshutil.SSHClient, error) {
	return f(ctx, opts)
}

// SSHDialer dials real SSH connections.
var SSHDialer Dialer = DialerFunc(func(ctx context.Context, opts sshutil.DialOptions) (sshutil.SSHClient, error) {
	client, err := sshutil.Dial(ctx, opts)
	if err != nil {
		return nil, err
	}
	return client, nil
})

// Sampler polls a single Target.
type Sampler struct {
	target  Target
	dialer  Dialer
	bus     *event.Bus
	log     logger.Logger
	metrics *instrument.Metrics
	state   atomic.Int32
}

// New creates a sampler. log and m may be nil.
func New(target Target, dialer Dialer, bus *event.Bus, log logger.Logger, m *instrument.Metrics) *Sampler {
	if log == nil {
		log = logger.Noop()
	}
	if dialer == nil {
		dialer = SSHDialer
	}
	s := &Sampler{target: target, dialer: dialer, bus: bus, log: log, metrics: m}
	s.state.Store(int32(StateConnecting))
	return s
}

// Name returns the target's host name.
func (s *Sampler) Name() string {
	return s.target.Name
}

// State returns the current phase of the loop.
func (s *Sampler) State() State {
	return State(s.state.Load())
}

func (s *Sampler) setState(st State) {
	s.state.Store(int32(st))
}

// Run polls until ctx is cancelled. It always returns nil; failures are
// published as error events instead.
func (s *Sampler) Run(ctx context.Context) error {
	var client sshutil.SSHClient
	defer func() {
		if client != nil {
			client.Close()
		}
		s.setState(StateShuttingDown)
		s.log.Debug("[%s] sampler stopped", s.target.Name)
	}()

	for {
		if ctx.Err() != nil {
			return nil
		}

		if client == nil {
			s.setState(StateConnecting)
			c, err := s.connect(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				if !s.publish(ctx, event.NewHostError(s.target.Name, err)) {
					return nil
				}
			} else {
				client = c
			}
		}

		if client != nil {
			s.setState(StatePolling)
			healthy, ok := s.poll(ctx, client)
			if !ok {
				return nil
			}
			if !healthy {
				client.Close()
				client = nil
			}
		}

		s.setState(StateSleeping)
		if !sleepWithContext(ctx, s.target.Interval) {
			return nil
		}
	}
}

func (s *Sampler) connect(ctx context.Context) (sshutil.SSHClient, error) {
	s.log.Debug("[%s] connecting to %s", s.target.Name, s.target.Dial.Host)
	client, err := s.dialer.Dial(ctx, s.target.Dial)
	s.metrics.ObserveConnect(s.target.Name, err == nil)
	if err != nil {
		return nil, err
	}
	s.log.Info("[%s] connected to %s", s.target.Name, client.GetAddress())
	return client, nil
}

// poll runs every configured kind once. healthy is false when the transport
// failed and the session should be reopened; ok is false when the loop
// should stop.
func (s *Sampler) poll(ctx context.Context, client sshutil.SSHClient) (healthy, ok bool) {
	for _, kind := range s.target.Kinds {
		ev, transportErr := s.sample(ctx, client, kind)
		if ctx.Err() != nil {
			return true, false
		}
		if !s.publish(ctx, ev) {
			return true, false
		}
		if transportErr {
			return false, true
		}
	}
	return true, true
}

// sample runs one kind's command and turns the outcome into an event.
func (s *Sampler) sample(ctx context.Context, client sshutil.SSHClient, kind metrics.Kind) (ev event.Event, transportErr bool) {
	start := time.Now()
	stdout, stderr, exitCode, err := client.ExecContext(ctx, metrics.Command(kind))
	s.metrics.ObserveExec(s.target.Name, kind, time.Since(start))

	if err != nil {
		return event.NewError(s.target.Name, kind, errors.WrapWithCode(err, errors.ErrExec,
			fmt.Sprintf("%s command failed on %s", kind.Label(), s.target.Name),
			"The connection will be reopened on the next round.")), true
	}

	if exitCode != 0 {
		exitErr := errors.NewExitError(exitCode)
		exitErr.Stderr = strings.TrimSpace(string(stderr))
		return event.NewError(s.target.Name, kind, errors.WrapWithCode(exitErr, errors.ErrCommand,
			fmt.Sprintf("%s command exited with code %d", kind.Label(), exitCode),
			"Check the command exists on the remote host.")), false
	}

	sample, err := metrics.Parse(kind, string(stdout))
	if err != nil {
		return event.NewError(s.target.Name, kind, err), false
	}
	return event.NewSample(s.target.Name, sample), false
}

// publish blocks on bus capacity. It returns false if the sampler should stop.
func (s *Sampler) publish(ctx context.Context, ev event.Event) bool {
	if err := s.bus.Publish(ctx, ev); err != nil {
		return false
	}
	return true
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// RunAll runs every sampler until ctx is cancelled and waits for all of
// them to stop.
func RunAll(ctx context.Context, samplers []*Sampler) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, s := range samplers {
		s := s
		g.Go(func() error {
			return s.Run(gctx)
		})
	}
	return g.Wait()
}
