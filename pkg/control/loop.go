package control

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/avishur/go-fixate/pkg/frame"
	"github.com/avishur/go-fixate/pkg/policy"
	"github.com/avishur/go-fixate/pkg/uncertainty"
	"github.com/avishur/go-fixate/pkg/vision"
)

// FrameSource produces frames, one per tick. io.EOF signals a clean end
// of stream and shuts the loop down.
type FrameSource interface {
	Next(ctx context.Context) (frame.Frame, error)
}

// Sink applies a chosen action to the world: a software camera-parameter
// call or a physical pan-tilt command. Apply is fire-and-forget from the
// loop's perspective; dwell ticks approximate settle time.
type Sink interface {
	Apply(ctx context.Context, a policy.Action) error
}

// Loop runs the single-threaded tick cycle: acquire frame, perceive,
// estimate uncertainty, decide, actuate. Each tick runs to completion
// before the next starts; the stop signal is checked once per tick.
type Loop struct {
	cfg     Config
	source  FrameSource
	oracle  vision.Oracle
	meter   vision.Meter
	est     *uncertainty.Estimator
	space   *policy.Space
	machine *Machine
	sink    Sink
	emitter Emitter
	log     *slog.Logger

	tick uint64
}

// NewLoop wires the loop together. emitter may be nil.
func NewLoop(cfg Config, source FrameSource, oracle vision.Oracle, meter vision.Meter,
	est *uncertainty.Estimator, space *policy.Space, sink Sink,
	emitter Emitter, logger *slog.Logger) *Loop {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loop{
		cfg:     cfg,
		source:  source,
		oracle:  oracle,
		meter:   meter,
		est:     est,
		space:   space,
		machine: NewMachine(cfg, space),
		sink:    sink,
		emitter: emitter,
		log:     logger,
	}
}

// Machine exposes the state machine for inspection.
func (l *Loop) Machine() *Machine {
	return l.machine
}

// Run executes ticks until the context is cancelled or the frame source
// reports end of stream. No error from a collaborator is fatal: invalid
// frames are skipped, oracle outages count as maximal uncertainty, and
// actuation failures become failure samples for the attempted candidate.
func (l *Loop) Run(ctx context.Context) error {
	var pace <-chan time.Time
	if l.cfg.Interval > 0 {
		ticker := time.NewTicker(l.cfg.Interval)
		defer ticker.Stop()
		pace = ticker.C
	}

	l.log.Info("control loop started",
		"threshold", l.cfg.RecoveryThreshold,
		"debounce", l.cfg.DebounceTicks,
		"dwell", l.cfg.DwellTicks,
		"candidates", l.space.Len())

	for {
		select {
		case <-ctx.Done():
			l.log.Info("control loop stopped", "tick", l.tick)
			return nil
		default:
		}

		if err := l.step(ctx); err != nil {
			if errors.Is(err, io.EOF) {
				l.log.Info("frame source ended", "tick", l.tick)
				return nil
			}
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return err
		}

		if pace != nil {
			select {
			case <-ctx.Done():
			case <-pace:
			}
		}
	}
}

// step runs exactly one tick.
func (l *Loop) step(ctx context.Context) error {
	f, err := l.source.Next(ctx)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		l.log.Warn("frame acquisition failed, skipping tick", "tick", l.tick, "err", err)
		l.tick++
		return nil
	}

	crop := l.machine.CropFraction()

	meas, err := l.meter.Estimate(f)
	if err != nil {
		// Malformed sensor input: log, skip the frame, no state change.
		l.log.Warn("invalid frame, skipping", "tick", l.tick, "seq", f.Seq, "err", err)
		l.tick++
		return nil
	}

	var reading uncertainty.Reading
	det, derr := l.oracle.Detect(f, crop)
	switch {
	case derr == nil:
		reading = l.est.Update(f.Seq, det.Detected, meas.Sharpness)
	case errors.Is(derr, vision.ErrInvalidFrame):
		l.log.Warn("oracle rejected frame, skipping", "tick", l.tick, "seq", f.Seq, "err", derr)
		l.tick++
		return nil
	default:
		// Oracle outage: a strong signal, not a crash.
		l.log.Warn("perception unavailable", "tick", l.tick, "err", derr)
		det = vision.Detection{}
		reading = l.est.Unavailable(f.Seq)
	}

	res := l.machine.Tick(Input{
		Seq:        l.tick,
		Detected:   det.Detected,
		Sharpness:  meas.Sharpness,
		Brightness: meas.Brightness,
		Raw:        reading.Raw,
		Smoothed:   reading.Smoothed,
	})

	if res.Apply != nil {
		if err := l.sink.Apply(ctx, *res.Apply); err != nil {
			// Count the miss against the candidate and keep going.
			l.space.RecordOutcome(res.Apply.Index, false, 0)
			l.log.Warn("actuation failed",
				"tick", l.tick, "action", res.Apply.ID(), "err", err)
		} else {
			l.log.Debug("applied action", "tick", l.tick, "action", res.Apply.ID())
		}
	}

	if res.Incident != nil {
		l.log.Warn("incident unrecoverable, holding best-known candidate",
			"incident", res.Incident.ID,
			"cycles", res.Incident.Cycles,
			"action", l.space.Current().ID())
	}

	l.emit(det, reading, res)
	l.tick++
	return nil
}

func (l *Loop) emit(det vision.Detection, reading uncertainty.Reading, res Result) {
	if l.emitter == nil {
		return
	}
	// Sample after every SampleEvery ticks, so the first heartbeat lands
	// once a full period has elapsed rather than on tick zero.
	sampled := l.cfg.SampleEvery > 0 && (l.tick+1)%uint64(l.cfg.SampleEvery) == 0
	if !res.Transitioned && res.Incident == nil && !sampled {
		return
	}
	l.emitter.Emit(Event{
		Tick:          l.tick,
		State:         res.State.String(),
		Action:        l.space.Current().ID(),
		Raw:           reading.Raw,
		Smoothed:      reading.Smoothed,
		Detected:      det.Detected,
		Transition:    res.Transitioned,
		Incident:      l.machine.IncidentID(),
		Unrecoverable: res.Incident != nil,
	})
}
