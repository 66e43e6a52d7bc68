// Package dashboard wires the telemetry pipeline together: one sampler per
// host publishing on the event bus, the aggregator folding events into the
// store, the presentation loop reading it, and the optional metrics endpoint.
// A single context is the shutdown broadcast for all of them.
package dashboard

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/rileyhilliard/hostwatch/internal/config"
	"github.com/rileyhilliard/hostwatch/internal/event"
	"github.com/rileyhilliard/hostwatch/internal/instrument"
	"github.com/rileyhilliard/hostwatch/internal/logger"
	"github.com/rileyhilliard/hostwatch/internal/monitor"
	"github.com/rileyhilliard/hostwatch/internal/sampler"
	"github.com/rileyhilliard/hostwatch/internal/state"
)

// Options configures a dashboard run.
type Options struct {
	Global  config.GlobalConfig
	Servers []config.Server

	// Dialer defaults to real SSH.
	Dialer sampler.Dialer
	// Log defaults to a no-op logger.
	Log logger.Logger
	// Output receives plain-mode frames. Defaults to os.Stdout.
	Output io.Writer
	// ProgramOptions are appended to the TUI program options.
	ProgramOptions []tea.ProgramOption
}

// Dashboard is one assembled pipeline.
type Dashboard struct {
	opts       Options
	bus        *event.Bus
	store      *state.Store
	metrics    *instrument.Metrics
	samplers   []*sampler.Sampler
	aggregator *state.Aggregator
}

// New builds the pipeline from already validated settings.
func New(opts Options) (*Dashboard, error) {
	if opts.Log == nil {
		opts.Log = logger.Noop()
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	m := instrument.New()
	bus := event.NewBus(opts.Global.BusCapacity)

	names := make([]string, 0, len(opts.Servers))
	samplers := make([]*sampler.Sampler, 0, len(opts.Servers))
	for _, s := range opts.Servers {
		kinds, err := s.Kinds()
		if err != nil {
			return nil, err
		}
		target := sampler.Target{
			Name:     s.Name,
			Dial:     s.DialOptions(opts.Global),
			Kinds:    kinds,
			Interval: s.PollInterval(opts.Global),
		}
		names = append(names, s.Name)
		samplers = append(samplers, sampler.New(target, opts.Dialer, bus, opts.Log, m))
	}

	store := state.NewStore(names...)

	return &Dashboard{
		opts:       opts,
		bus:        bus,
		store:      store,
		metrics:    m,
		samplers:   samplers,
		aggregator: state.NewAggregator(bus, store, opts.Log, m),
	}, nil
}

// Store returns the shared state.
func (d *Dashboard) Store() *state.Store {
	return d.store
}

// Metrics returns the instrumentation registry holder.
func (d *Dashboard) Metrics() *instrument.Metrics {
	return d.metrics
}

// Run starts every task and blocks until the user quits, an interrupt
// arrives, or ctx is cancelled. It returns once all samplers have stopped.
func (d *Dashboard) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	log := d.opts.Log
	log.Info("starting dashboard for %d host(s), display=%s", len(d.samplers), d.opts.Global.Display)
	start := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return sampler.RunAll(gctx, d.samplers)
	})
	g.Go(func() error {
		return d.aggregator.Run(gctx)
	})
	if addr := d.opts.Global.MetricsAddr; addr != "" {
		g.Go(func() error {
			return instrument.Serve(gctx, addr, d.metrics, log)
		})
	}
	g.Go(func() error {
		// the presentation loop ending always ends the run
		defer cancel()
		return d.present(gctx, cancel)
	})

	err := g.Wait()
	d.bus.Close()
	log.Info("dashboard stopped after %s", time.Since(start).Round(time.Millisecond))

	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func (d *Dashboard) present(ctx context.Context, cancel context.CancelFunc) error {
	refresh := d.opts.Global.Refresh
	if d.opts.Global.Display == config.DisplayPlain {
		return monitor.RunPlain(ctx, d.store, refresh, d.opts.Output)
	}
	return monitor.Run(ctx, d.store, refresh, cancel, d.opts.ProgramOptions...)
}
