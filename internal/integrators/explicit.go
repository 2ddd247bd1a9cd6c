package integrators

import (
	"fmt"

	"github.com/san-kum/rungekutta/internal/ode"
	"github.com/san-kum/rungekutta/internal/tableau"
)

// Explicit implements the explicit Runge-Kutta stage recurrence for any
// tableau. Only the strictly lower triangle of the matrix is read; callers
// are responsible for passing an explicit tableau.
//
// An Explicit keeps stage buffers between steps and must not be shared by
// solvers running concurrently.
type Explicit struct {
	tab tableau.Tableau
	k   [][]float64
}

func NewExplicit(tab tableau.Tableau) (*Explicit, error) {
	if err := tab.Validate(); err != nil {
		return nil, err
	}
	return &Explicit{tab: tab}, nil
}

// NewExplicitSolver wires an Explicit stepper into a driver.
func NewExplicitSolver(tab tableau.Tableau, opts ...ode.Option) (*ode.Solver[ode.Func], error) {
	e, err := NewExplicit(tab)
	if err != nil {
		return nil, err
	}
	return ode.New[ode.Func](e, opts...)
}

func (e *Explicit) Tableau() tableau.Tableau { return e.tab }

func (e *Explicit) ensureScratch(n int) {
	if len(e.k) != e.tab.Stages() || len(e.k[0]) != n {
		e.k = makeRectangular(e.tab.Stages(), n)
	}
}

func (e *Explicit) Step(f ode.Func, y ode.State, t, h float64) (ode.State, error) {
	if f == nil {
		return nil, ode.ErrFuncUnset
	}
	n := len(y)
	e.ensureScratch(n)

	for s := 0; s < e.tab.Stages(); s++ {
		ys := ode.Combine(y, h, e.tab.Row(s, s), e.k)
		ks := f(ys, t+h*e.tab.Node(s))
		if len(ks) != n {
			return nil, fmt.Errorf("%w: stage %d returned %d values for state of %d",
				ode.ErrDimensionMismatch, s, len(ks), n)
		}
		copy(e.k[s], ks)
	}

	return ode.Combine(y, h, e.tab.Weights(), e.k), nil
}
