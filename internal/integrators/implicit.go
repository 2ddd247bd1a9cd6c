package integrators

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/rungekutta/internal/ode"
	"github.com/san-kum/rungekutta/internal/tableau"
)

// Implicit implements a generic implicit Runge-Kutta method for linear systems
// dy/dt = A(t)y. All stage derivatives of a step are coupled, so for every
// state component the N stage values are found together by solving an N×N
// linear system:
//
//	Σ_j (h a_ij r_i[n] - δ_ij) k_j[n] = -(A(t_i) y)[n]
//
// where t_i = t + h c_i and r_i = A(t_i)·1 broadcasts the coupling over the
// component. The system differs per component through r_i[n], so it is
// assembled and factorised once per component. Components are independent and
// may be solved on several goroutines.
type Implicit struct {
	tab      tableau.Tableau
	workers  int
	minChunk int
}

type ImplicitOption func(*Implicit)

// WithWorkers sets how many goroutines share the per-component solves.
// Values <= 0 use GOMAXPROCS. The default is 1.
func WithWorkers(n int) ImplicitOption {
	return func(im *Implicit) { im.workers = n }
}

// WithMinChunk sets the smallest number of components handed to one worker.
func WithMinChunk(n int) ImplicitOption {
	return func(im *Implicit) { im.minChunk = n }
}

func NewImplicit(tab tableau.Tableau, opts ...ImplicitOption) (*Implicit, error) {
	if err := tab.Validate(); err != nil {
		return nil, err
	}
	im := &Implicit{tab: tab, workers: 1, minChunk: 64}
	for _, opt := range opts {
		opt(im)
	}
	return im, nil
}

// NewImplicitSolver wires an Implicit stepper into a driver.
func NewImplicitSolver(tab tableau.Tableau, opts []ImplicitOption, solverOpts ...ode.Option) (*ode.Solver[ode.CoefficientFunc], error) {
	im, err := NewImplicit(tab, opts...)
	if err != nil {
		return nil, err
	}
	return ode.New[ode.CoefficientFunc](im, solverOpts...)
}

func (im *Implicit) Tableau() tableau.Tableau { return im.tab }

func (im *Implicit) Step(f ode.CoefficientFunc, y ode.State, t, h float64) (ode.State, error) {
	if f == nil {
		return nil, ode.ErrFuncUnset
	}
	n := len(y)
	stages := im.tab.Stages()

	yv := mat.NewVecDense(n, y.Clone())
	ones := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		ones.SetVec(i, 1)
	}

	rowSums := make([]*mat.VecDense, stages)
	ay := make([]*mat.VecDense, stages)
	for i := 0; i < stages; i++ {
		a := f(t + h*im.tab.Node(i))
		if a == nil {
			return nil, fmt.Errorf("%w: stage %d returned no matrix", ode.ErrDimensionMismatch, i)
		}
		if r, c := a.Dims(); r != n || c != n {
			return nil, fmt.Errorf("%w: stage %d returned %dx%d matrix for state of %d",
				ode.ErrDimensionMismatch, i, r, c, n)
		}
		rowSums[i] = mat.NewVecDense(n, nil)
		rowSums[i].MulVec(a, ones)
		ay[i] = mat.NewVecDense(n, nil)
		ay[i].MulVec(a, yv)
	}

	k := makeRectangular(stages, n)
	err := ode.ParallelFor(n, im.minChunk, im.workers, func(start, end int) error {
		for comp := start; comp < end; comp++ {
			if err := im.solveComponent(comp, h, rowSums, ay, k); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return ode.Combine(y, h, im.tab.Weights(), k), nil
}

func (im *Implicit) solveComponent(comp int, h float64, rowSums, ay []*mat.VecDense, k [][]float64) error {
	stages := im.tab.Stages()
	sys := mat.NewDense(stages, stages, nil)
	rhs := mat.NewVecDense(stages, nil)

	for i := 0; i < stages; i++ {
		r := rowSums[i].AtVec(comp)
		for j := 0; j < stages; j++ {
			sys.Set(i, j, h*im.tab.A(i, j)*r)
		}
		sys.Set(i, i, sys.At(i, i)-1)
		rhs.SetVec(i, -ay[i].AtVec(comp))
	}

	var lu mat.LU
	lu.Factorize(sys)
	if lu.Det() == 0 {
		return fmt.Errorf("%w: component %d", ode.ErrSingular, comp)
	}

	var x mat.VecDense
	if err := lu.SolveVecTo(&x, false, rhs); err != nil {
		var cond mat.Condition
		if errors.As(err, &cond) {
			return fmt.Errorf("%w: component %d (condition number %g)", ode.ErrSingular, comp, float64(cond))
		}
		return err
	}

	for i := 0; i < stages; i++ {
		k[i][comp] = x.AtVec(i)
	}
	return nil
}
