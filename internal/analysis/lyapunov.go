package analysis

import (
	"context"
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/rungekutta/internal/integrators"
	"github.com/san-kum/rungekutta/internal/models"
	"github.com/san-kum/rungekutta/internal/ode"
	"github.com/san-kum/rungekutta/internal/tableau"
)

var ErrBadPerturbation = errors.New("analysis: perturbation must be positive and finite")

// LyapunovExponent estimates the largest Lyapunov exponent of sys by
// following a reference trajectory and a companion started perturbation away
// along the first component. After every step the companion is pulled back to
// distance perturbation along the current separation and the log growth is
// accumulated:
//
//	lambda = (1/T) * sum ln(|dy_k| / d0)
//
// A positive value indicates chaos.
func LyapunovExponent(
	ctx context.Context,
	tab tableau.Tableau,
	sys models.System,
	y0 ode.State,
	h, duration, perturbation float64,
) (float64, error) {
	if !positive(perturbation) {
		return 0, fmt.Errorf("%w: %g", ErrBadPerturbation, perturbation)
	}

	ref, err := integrators.ForSystem(tab, sys, nil, ode.WithStepSize(h))
	if err != nil {
		return 0, err
	}
	comp, err := integrators.ForSystem(tab, sys, nil, ode.WithStepSize(h))
	if err != nil {
		return 0, err
	}

	yp := y0.Clone()
	if len(yp) > 0 {
		yp[0] += perturbation
	}
	if err := ref.SetState(y0, 0); err != nil {
		return 0, err
	}
	if err := comp.SetState(yp, 0); err != nil {
		return 0, err
	}

	var sumLog float64
	t := 0.0
	for t < duration {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		y, tNext, err := ref.Step()
		if err != nil {
			return 0, err
		}
		yc, _, err := comp.Step()
		if err != nil {
			return 0, err
		}
		t = tNext

		sep := floats.Distance(yc, y, 2)
		if sep == 0 || math.IsNaN(sep) || math.IsInf(sep, 0) {
			return 0, fmt.Errorf("analysis: trajectories degenerate at t=%g (separation %g)", t, sep)
		}
		sumLog += math.Log(sep / perturbation)

		// renormalise: yc = y + (yc-y)*d0/sep
		floats.Sub(yc, y)
		floats.AddScaled(y, perturbation/sep, yc)
		if err := comp.SetState(y, t); err != nil {
			return 0, err
		}
	}

	if t == 0 {
		return 0, nil
	}
	return sumLog / t, nil
}
