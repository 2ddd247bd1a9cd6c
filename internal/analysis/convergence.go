package analysis

import (
	"context"
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/rungekutta/internal/integrators"
	"github.com/san-kum/rungekutta/internal/models"
	"github.com/san-kum/rungekutta/internal/ode"
	"github.com/san-kum/rungekutta/internal/tableau"
)

var (
	ErrTooFewSamples = errors.New("analysis: need at least two samples")
	ErrSampleLength  = errors.New("analysis: step sizes and errors differ in length")
	ErrNonPositive   = errors.New("analysis: step sizes and errors must be positive and finite")
)

// ConvergenceOrder fits log(err) = intercept + order*log(h) by least squares.
func ConvergenceOrder(hs, errs []float64) (order, intercept float64, err error) {
	if len(hs) != len(errs) {
		return 0, 0, fmt.Errorf("%w: %d vs %d", ErrSampleLength, len(hs), len(errs))
	}
	if len(hs) < 2 {
		return 0, 0, ErrTooFewSamples
	}

	logH := make([]float64, len(hs))
	logErr := make([]float64, len(errs))
	for i := range hs {
		if !positive(hs[i]) || !positive(errs[i]) {
			return 0, 0, fmt.Errorf("%w: sample %d (h=%g, err=%g)", ErrNonPositive, i, hs[i], errs[i])
		}
		logH[i] = math.Log(hs[i])
		logErr[i] = math.Log(errs[i])
	}

	intercept, order = stat.LinearRegression(logH, logErr, nil, false)
	return order, intercept, nil
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 1)
}

// MaxAbsError is the infinity norm of a-b. It panics if the lengths differ.
func MaxAbsError(a, b ode.State) float64 {
	return floats.Distance(a, b, math.Inf(1))
}

// Sample is one integration of a convergence study.
type Sample struct {
	StepSize float64
	Steps    int
	Time     float64
	Error    float64
}

// Convergence is the outcome of a Study.
type Convergence struct {
	Method    string
	Samples   []Sample
	Order     float64
	Intercept float64
}

// Study integrates dy/dt = -y from y(0) = 1 to t = 1 once per step size and
// fits the convergence order of tab. Each sample is measured against the
// exact solution at the time actually reached, so step sizes that do not
// divide 1 still give a fair error.
func Study(ctx context.Context, tab tableau.Tableau, hs []float64) (*Convergence, error) {
	samples := make([]Sample, len(hs))
	err := ode.ParallelFor(len(hs), 1, 0, func(start, end int) error {
		for i := start; i < end; i++ {
			s, err := sample(ctx, tab, hs[i])
			if err != nil {
				return fmt.Errorf("h=%g: %w", hs[i], err)
			}
			samples[i] = s
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	errs := make([]float64, len(samples))
	for i, s := range samples {
		errs[i] = s.Error
	}
	order, intercept, err := ConvergenceOrder(hs, errs)
	if err != nil {
		return nil, err
	}

	return &Convergence{
		Method:    tab.Name(),
		Samples:   samples,
		Order:     order,
		Intercept: intercept,
	}, nil
}

func sample(ctx context.Context, tab tableau.Tableau, h float64) (Sample, error) {
	sys := models.NewDecay()
	y0 := ode.State{1}

	d, err := integrators.ForSystem(tab, sys, nil, ode.WithStepSize(h))
	if err != nil {
		return Sample{}, err
	}
	if err := d.SetState(y0, 0); err != nil {
		return Sample{}, err
	}
	res, err := d.March(ctx, []float64{1})
	if err != nil {
		return Sample{}, err
	}

	t := res.Times[0]
	return Sample{
		StepSize: h,
		Steps:    res.StepsTaken,
		Time:     t,
		Error:    MaxAbsError(res.States[0], sys.Solution(y0, 0, t)),
	}, nil
}
