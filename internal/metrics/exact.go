package metrics

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/rungekutta/internal/ode"
)

// Solution gives the exact state at t of the trajectory through y0 at t0, or
// nil where no closed form exists.
type Solution interface {
	Solution(y0 ode.State, t0, t float64) ode.State
}

// ExactError is the largest infinity-norm distance between a recorded row and
// the exact solution at the row's time.
type ExactError struct {
	sol    Solution
	y0     ode.State
	t0     float64
	maxErr float64
}

func NewExactError(sol Solution, y0 ode.State, t0 float64) *ExactError {
	return &ExactError{sol: sol, y0: y0.Clone(), t0: t0}
}

func (e *ExactError) Name() string { return "exact_error" }

func (e *ExactError) Observe(y ode.State, t float64) {
	// floats.Distance skips NaN components
	if !y.IsValid() {
		e.maxErr = math.Inf(1)
		return
	}
	want := e.sol.Solution(e.y0, e.t0, t)
	if len(want) != len(y) {
		return
	}
	e.maxErr = math.Max(e.maxErr, floats.Distance(y, want, math.Inf(1)))
}

func (e *ExactError) Value() float64 { return e.maxErr }

func (e *ExactError) Reset() { e.maxErr = 0 }
