package models

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/rungekutta/internal/ode"
)

// Oscillator is a damped harmonic oscillator.
// State: [x, v]
//
//	dx/dt = v
//	dv/dt = -ω²x - c·v
type Oscillator struct {
	omega   float64
	damping float64
}

func NewOscillator() *Oscillator {
	return &Oscillator{omega: 1.0}
}

func (o *Oscillator) StateDim() int           { return 2 }
func (o *Oscillator) DefaultState() ode.State { return ode.State{1.0, 0.0} }

func (o *Oscillator) Derive(y ode.State, _ float64) ode.State {
	return ode.State{y[1], -o.omega*o.omega*y[0] - o.damping*y[1]}
}

func (o *Oscillator) Coefficients(_ float64) mat.Matrix {
	return mat.NewDense(2, 2, []float64{
		0, 1,
		-o.omega * o.omega, -o.damping,
	})
}

func (o *Oscillator) Energy(y ode.State) float64 {
	return 0.5 * (o.omega*o.omega*y[0]*y[0] + y[1]*y[1])
}

// Solution is only defined for the undamped oscillator; with damping it
// returns nil.
func (o *Oscillator) Solution(y0 ode.State, t0, t float64) ode.State {
	if o.damping != 0 {
		return nil
	}
	w := o.omega
	s, c := math.Sincos(w * (t - t0))
	return ode.State{
		y0[0]*c + y0[1]/w*s,
		-y0[0]*w*s + y0[1]*c,
	}
}

func (o *Oscillator) GetParams() map[string]float64 {
	return map[string]float64{"omega": o.omega, "damping": o.damping}
}

func (o *Oscillator) SetParam(name string, value float64) error {
	switch name {
	case "omega":
		if value <= 0 {
			return outOfBounds(name, value)
		}
		o.omega = value
	case "damping":
		if value < 0 {
			return outOfBounds(name, value)
		}
		o.damping = value
	default:
		return unknownParam("oscillator", name)
	}
	return nil
}
