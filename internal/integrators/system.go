package integrators

import (
	"errors"
	"fmt"

	"github.com/san-kum/rungekutta/internal/models"
	"github.com/san-kum/rungekutta/internal/ode"
	"github.com/san-kum/rungekutta/internal/tableau"
)

// ErrNotLinear is returned when an implicit tableau is paired with a system
// that does not expose A(t).
var ErrNotLinear = errors.New("integrators: implicit methods require a linear system")

// ForSystem builds a driver for sys. A strictly lower triangular tableau gets
// the explicit stepper on sys.Derive; any other tableau gets the implicit
// stepper on the system's coefficient matrix.
func ForSystem(tab tableau.Tableau, sys models.System, implicitOpts []ImplicitOption, opts ...ode.Option) (ode.Driver, error) {
	if tab.IsExplicit() {
		s, err := NewExplicitSolver(tab, opts...)
		if err != nil {
			return nil, err
		}
		s.SetFunc(sys.Derive)
		return s, nil
	}

	lin, ok := sys.(models.Linear)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotLinear, tab.Name())
	}
	s, err := NewImplicitSolver(tab, implicitOpts, opts...)
	if err != nil {
		return nil, err
	}
	s.SetFunc(lin.Coefficients)
	return s, nil
}
