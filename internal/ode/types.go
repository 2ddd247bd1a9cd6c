package ode

import (
	"context"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	return floats.Norm(s, 2)
}

// Sub returns s - other. It panics if the lengths differ.
func (s State) Sub(other State) State {
	return floats.SubTo(make(State, len(s)), s, other)
}

// Func is the right-hand side of an explicit system dy/dt = f(y, t). The
// returned vector must have the same length as y.
type Func func(y State, t float64) State

// CoefficientFunc returns A(t) for a linear system dy/dt = A(t)y. The matrix
// must be D×D for a state of dimension D.
type CoefficientFunc func(t float64) mat.Matrix

// Stepper advances y by one step of size h starting at time t. F is the
// callback type the method consumes. Implementations must not modify y.
type Stepper[F any] interface {
	Step(f F, y State, t, h float64) (State, error)
}

// Combine returns y + h*Σ_s weights[s]*k[s]. The weighted sum is accumulated
// in ascending stage order before scaling by h; only the first len(weights)
// rows of k are read.
func Combine(y State, h float64, weights []float64, k [][]float64) State {
	next := y.Clone()
	if len(weights) == 0 {
		return next
	}
	acc := make([]float64, len(y))
	for s, w := range weights {
		floats.AddScaled(acc, w, k[s])
	}
	floats.AddScaled(next, h, acc)
	return next
}

// Driver is the part of a Solver that does not depend on the callback type.
type Driver interface {
	Step() (State, float64, error)
	March(ctx context.Context, times []float64) (*Result, error)
	SetState(y State, t float64) error
	SetStepSize(h float64) error
	StepSize() float64
	State() (State, float64, bool)
	Steps() int
}

// Result holds one row per requested time. Times[i] is the solver time at
// which States[i] was recorded.
type Result struct {
	Requested  []float64
	Times      []float64
	States     []State
	StepsTaken int
}

func validStepSize(h float64) bool {
	return h > 0 && !math.IsInf(h, 1)
}
