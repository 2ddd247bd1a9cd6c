// Package models provides right-hand sides for the integrators: nonlinear
// systems usable with explicit methods, and linear systems dy/dt = A(t)y that
// also expose A(t) for implicit methods.
package models

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/rungekutta/internal/ode"
)

var (
	// ErrUnknownParam indicates a parameter name the model does not define.
	ErrUnknownParam = errors.New("models: unknown parameter")

	// ErrParameterBounds indicates a parameter value is outside valid range.
	ErrParameterBounds = errors.New("models: parameter out of valid bounds")

	// ErrUnknownModel indicates a model name that is not registered.
	ErrUnknownModel = errors.New("models: unknown model")
)

type System interface {
	Derive(y ode.State, t float64) ode.State
	StateDim() int
	DefaultState() ode.State
	GetParams() map[string]float64
	SetParam(name string, value float64) error
}

// Linear is a system of the form dy/dt = A(t)y.
type Linear interface {
	System
	Coefficients(t float64) mat.Matrix
}

// Exact is implemented by systems with a closed form solution.
type Exact interface {
	Solution(y0 ode.State, t0, t float64) ode.State
}

// ApplyParams sets every entry of params on sys.
func ApplyParams(sys System, params map[string]float64) error {
	for name, v := range params {
		if err := sys.SetParam(name, v); err != nil {
			return err
		}
	}
	return nil
}

func linearDerive(a mat.Matrix, y ode.State) ode.State {
	r, _ := a.Dims()
	out := mat.NewVecDense(r, nil)
	out.MulVec(a, mat.NewVecDense(len(y), y))
	return ode.State(out.RawVector().Data)
}

func unknownParam(model, name string) error {
	return fmt.Errorf("%w: %s has no parameter %q", ErrUnknownParam, model, name)
}

func outOfBounds(name string, v float64) error {
	return fmt.Errorf("%w: %s=%g", ErrParameterBounds, name, v)
}
