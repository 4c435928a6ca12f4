// Package app validates run options and drives a single moving average run:
// load events, compute averages, write the result.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/zoobzio/clockz"

	"github.com/chrisconley/movingavg/internal"
	"github.com/chrisconley/movingavg/internal/infra"
	"github.com/chrisconley/movingavg/internal/sink"
	"github.com/chrisconley/movingavg/internal/source"
	"github.com/chrisconley/movingavg/specs"
)

type Options struct {
	InputFile       string
	WindowSize      int
	TimestampLayout string
}

// Result describes a finished run.
type Result struct {
	RunID    string
	Location string
	Points   []specs.AveragePointSpec
	Elapsed  time.Duration
}

// Validate checks the window size, then the input file.
func Validate(opts Options) error {
	if _, err := internal.NewWindowSize(opts.WindowSize); err != nil {
		return err
	}
	return source.Exists(opts.InputFile)
}

type Runner struct {
	sink   sink.Sink
	bus    *infra.Bus
	clock  clockz.Clock
	logger *slog.Logger
	newID  func() string
}

type Option func(*Runner)

func WithClock(clock clockz.Clock) Option {
	return func(r *Runner) { r.clock = clock }
}

func WithBus(bus *infra.Bus) Option {
	return func(r *Runner) { r.bus = bus }
}

func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) { r.logger = logger }
}

func WithRunIDs(newID func() string) Option {
	return func(r *Runner) { r.newID = newID }
}

func NewRunner(s sink.Sink, opts ...Option) *Runner {
	r := &Runner{
		sink:   s,
		bus:    infra.NewBus(),
		clock:  clockz.RealClock,
		logger: slog.Default(),
		newID:  func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(r)
	}
	subscribeLogger(r.bus, r.logger)
	return r
}

// Bus returns the bus lifecycle events are published on.
func (r *Runner) Bus() *infra.Bus {
	return r.bus
}

func (r *Runner) Run(ctx context.Context, opts Options) (Result, error) {
	runID := r.newID()
	started := r.clock.Now()

	if err := Validate(opts); err != nil {
		return Result{}, r.fail(runID, "validate", err)
	}

	events, err := source.Load(ctx, opts.InputFile, opts.TimestampLayout)
	if err != nil {
		return Result{}, r.fail(runID, "load", err)
	}
	r.bus.Publish(infra.EventsLoadedEvent{RunID: runID, Source: opts.InputFile, Count: len(events)})

	points, err := internal.MovingAverage(events, specs.MovingAverageConfigSpec{WindowSize: opts.WindowSize})
	if err != nil {
		return Result{}, r.fail(runID, "aggregate", err)
	}
	computed := infra.AveragesComputedEvent{RunID: runID, WindowSize: opts.WindowSize, Points: len(points)}
	if len(points) > 0 {
		computed.First = points[0].Date
		computed.Last = points[len(points)-1].Date
	}
	r.bus.Publish(computed)

	location, err := r.sink.Write(ctx, sink.Batch{
		RunID:      runID,
		Source:     opts.InputFile,
		WindowSize: opts.WindowSize,
		Points:     points,
	})
	if err != nil {
		return Result{}, r.fail(runID, "write", err)
	}

	elapsed := r.clock.Now().Sub(started)
	r.bus.Publish(infra.ResultWrittenEvent{RunID: runID, Location: location, Elapsed: elapsed})

	return Result{
		RunID:    runID,
		Location: location,
		Points:   points,
		Elapsed:  elapsed,
	}, nil
}

func (r *Runner) fail(runID, stage string, err error) error {
	r.bus.Publish(infra.RunFailedEvent{RunID: runID, Stage: stage, Err: err})
	return fmt.Errorf("%s: %w", stage, err)
}

func subscribeLogger(bus *infra.Bus, logger *slog.Logger) {
	bus.SubscribeAll(func(e infra.Event) {
		switch ev := e.(type) {
		case infra.EventsLoadedEvent:
			logger.Info("events loaded", "run_id", ev.RunID, "source", ev.Source, "count", ev.Count)
		case infra.AveragesComputedEvent:
			logger.Info("moving average computed",
				"run_id", ev.RunID,
				"window_size", ev.WindowSize,
				"points", ev.Points,
				"first", ev.First,
				"last", ev.Last)
		case infra.ResultWrittenEvent:
			logger.Info("result written", "run_id", ev.RunID, "location", ev.Location, "elapsed", ev.Elapsed)
		case infra.RunFailedEvent:
			logger.Error("run failed", "run_id", ev.RunID, "stage", ev.Stage, "error", ev.Err)
		}
	})
}
