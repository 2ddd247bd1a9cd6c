package ode

import "log/slog"

// DefaultStepSize is used when no step size option is given.
const DefaultStepSize = 1e-5

type settings struct {
	stepSize float64
	logger   *slog.Logger
}

// Option configures a Solver at construction.
type Option func(*settings)

func WithStepSize(h float64) Option {
	return func(s *settings) { s.stepSize = h }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *settings) { s.logger = l }
}

type solveOverrides[F any] struct {
	fn       *F
	y0       State
	t0       *float64
	stepSize *float64
}

// SolveOption overrides part of the solver configuration before SolveTimes
// starts marching. Overrides persist on the solver afterwards.
type SolveOption[F any] func(*solveOverrides[F])

func WithFunc[F any](f F) SolveOption[F] {
	return func(o *solveOverrides[F]) { o.fn = &f }
}

func WithInitialState[F any](y0 State) SolveOption[F] {
	return func(o *solveOverrides[F]) { o.y0 = y0 }
}

func WithInitialTime[F any](t0 float64) SolveOption[F] {
	return func(o *solveOverrides[F]) { o.t0 = &t0 }
}

func WithSolveStepSize[F any](h float64) SolveOption[F] {
	return func(o *solveOverrides[F]) { o.stepSize = &h }
}
