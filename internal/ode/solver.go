package ode

import (
	"context"
	"fmt"
	"log/slog"
	"math"
)

// Solver owns the integration state of one system and marches it forward with
// a Stepper. The stepper decides how stage derivatives are produced; the
// solver only keeps y, t and the step size and decides when to stop.
type Solver[F any] struct {
	stepper Stepper[F]
	fn      F
	y       State
	t       float64
	set     bool
	h       float64
	steps   int
	logger  *slog.Logger
}

func New[F any](stepper Stepper[F], opts ...Option) (*Solver[F], error) {
	cfg := settings{stepSize: DefaultStepSize}
	for _, opt := range opts {
		opt(&cfg)
	}
	if !validStepSize(cfg.stepSize) {
		return nil, fmt.Errorf("%w, got %g", ErrStepSize, cfg.stepSize)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	return &Solver[F]{
		stepper: stepper,
		h:       cfg.stepSize,
		logger:  cfg.logger,
	}, nil
}

// SetFunc installs the callback used by subsequent steps. Shape problems are
// reported when the callback is first evaluated.
func (s *Solver[F]) SetFunc(f F) {
	s.fn = f
}

// SetState replaces the current state with a copy of y at time t.
func (s *Solver[F]) SetState(y State, t float64) error {
	if len(y) == 0 || !y.IsValid() {
		return ErrInvalidState
	}
	if math.IsNaN(t) || math.IsInf(t, 0) {
		return fmt.Errorf("%w: t=%g", ErrInvalidState, t)
	}
	s.y = y.Clone()
	s.t = t
	s.set = true
	return nil
}

// SetStepSize changes the step size used from the next step on.
func (s *Solver[F]) SetStepSize(h float64) error {
	if !validStepSize(h) {
		return fmt.Errorf("%w, got %g", ErrStepSize, h)
	}
	s.h = h
	return nil
}

func (s *Solver[F]) StepSize() float64 { return s.h }

// Steps returns the number of successful steps taken by this solver.
func (s *Solver[F]) Steps() int { return s.steps }

// State returns a copy of the current state and time. ok is false before
// SetState has been called.
func (s *Solver[F]) State() (y State, t float64, ok bool) {
	if !s.set {
		return nil, 0, false
	}
	return s.y.Clone(), s.t, true
}

// Step advances the state by exactly one step and returns the new state and
// time. On failure the state is left as it was before the call.
func (s *Solver[F]) Step() (State, float64, error) {
	if !s.set {
		return nil, 0, ErrStateUnset
	}
	if !validStepSize(s.h) {
		return nil, 0, fmt.Errorf("%w, got %g", ErrStepSize, s.h)
	}
	if !advances(s.t, s.h) {
		return nil, 0, fmt.Errorf("%w: h=%g does not advance t=%g", ErrStepSize, s.h, s.t)
	}
	next, err := s.stepper.Step(s.fn, s.y, s.t, s.h)
	if err != nil {
		return nil, 0, &StepError{Step: s.steps, Time: s.t, Wrapped: err}
	}
	if len(next) != len(s.y) {
		return nil, 0, &StepError{Step: s.steps, Time: s.t, Wrapped: ErrDimensionMismatch}
	}
	s.y = next
	s.t += s.h
	s.steps++
	return s.y.Clone(), s.t, nil
}

// SolveTimes applies the overrides in opts and then marches to each of times,
// see March. Overrides stay in effect after the call.
func (s *Solver[F]) SolveTimes(ctx context.Context, times []float64, opts ...SolveOption[F]) (*Result, error) {
	var o solveOverrides[F]
	for _, opt := range opts {
		opt(&o)
	}

	// nothing is applied until every override has been checked
	if o.stepSize != nil && !validStepSize(*o.stepSize) {
		return nil, fmt.Errorf("%w, got %g", ErrStepSize, *o.stepSize)
	}
	if o.y0 != nil && (len(o.y0) == 0 || !o.y0.IsValid()) {
		return nil, ErrInvalidState
	}
	if o.t0 != nil {
		if math.IsNaN(*o.t0) || math.IsInf(*o.t0, 0) {
			return nil, fmt.Errorf("%w: t=%g", ErrInvalidState, *o.t0)
		}
		if o.y0 == nil && !s.set {
			return nil, ErrStateUnset
		}
	}

	if o.fn != nil {
		s.fn = *o.fn
	}
	if o.stepSize != nil {
		s.h = *o.stepSize
	}
	if o.y0 != nil {
		s.y = o.y0.Clone()
		s.set = true
	}
	if o.t0 != nil {
		s.t = *o.t0
	}
	return s.March(ctx, times)
}

// March integrates to each of times in order and records the state at the
// first step that reaches or passes each one. There is no interpolation back
// to the requested time, so a recorded time may overshoot its target by less
// than one step. Time never rewinds: a target earlier than the current time
// records the current state.
//
// When a step fails the rows recorded so far are returned with the error.
func (s *Solver[F]) March(ctx context.Context, times []float64) (*Result, error) {
	if !s.set {
		return nil, ErrStateUnset
	}
	if !validStepSize(s.h) {
		return nil, fmt.Errorf("%w, got %g", ErrStepSize, s.h)
	}
	for i, target := range times {
		if math.IsNaN(target) || math.IsInf(target, 1) {
			return nil, fmt.Errorf("%w: times[%d]=%g", ErrInvalidTime, i, target)
		}
		if target > s.t && !advances(s.t, s.h) {
			return nil, fmt.Errorf("%w: h=%g does not advance t=%g", ErrStepSize, s.h, s.t)
		}
	}

	result := &Result{
		Requested: append([]float64(nil), times...),
		Times:     make([]float64, 0, len(times)),
		States:    make([]State, 0, len(times)),
	}

	s.logger.Debug("march", "targets", len(times), "t0", s.t, "h", s.h)

	start := s.steps
	for _, target := range times {
		for s.t < target {
			select {
			case <-ctx.Done():
				result.StepsTaken = s.steps - start
				return result, fmt.Errorf("%w: %w", ErrCanceled, ctx.Err())
			default:
			}
			if _, _, err := s.Step(); err != nil {
				result.StepsTaken = s.steps - start
				return result, err
			}
		}
		result.Times = append(result.Times, s.t)
		result.States = append(result.States, s.y.Clone())
	}
	result.StepsTaken = s.steps - start

	s.logger.Debug("march done", "steps", result.StepsTaken, "t", s.t)
	return result, nil
}

// advances reports whether t+h is representable as a time later than t.
func advances(t, h float64) bool {
	return t+h > t
}

var _ Driver = (*Solver[Func])(nil)
