package models

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/rungekutta/internal/ode"
)

// Decay is the scalar test equation dy/dt = -rate*y.
type Decay struct {
	rate float64
}

func NewDecay() *Decay { return &Decay{rate: 1.0} }

func (d *Decay) StateDim() int           { return 1 }
func (d *Decay) DefaultState() ode.State { return ode.State{1.0} }

func (d *Decay) Derive(y ode.State, _ float64) ode.State {
	return ode.State{-d.rate * y[0]}
}

func (d *Decay) Coefficients(_ float64) mat.Matrix {
	return mat.NewDense(1, 1, []float64{-d.rate})
}

func (d *Decay) Solution(y0 ode.State, t0, t float64) ode.State {
	return ode.State{y0[0] * math.Exp(-d.rate*(t-t0))}
}

func (d *Decay) GetParams() map[string]float64 {
	return map[string]float64{"rate": d.rate}
}

func (d *Decay) SetParam(name string, value float64) error {
	if name != "rate" {
		return unknownParam("decay", name)
	}
	d.rate = value
	return nil
}

// TimeVaryingDecay is dy/dt = -rate*t*y with solution
// y0*exp(-rate*(t^2 - t0^2)/2).
type TimeVaryingDecay struct {
	rate float64
}

func NewTimeVaryingDecay() *TimeVaryingDecay { return &TimeVaryingDecay{rate: 2.0} }

func (d *TimeVaryingDecay) StateDim() int           { return 1 }
func (d *TimeVaryingDecay) DefaultState() ode.State { return ode.State{1.0} }

func (d *TimeVaryingDecay) Derive(y ode.State, t float64) ode.State {
	return ode.State{-d.rate * t * y[0]}
}

func (d *TimeVaryingDecay) Coefficients(t float64) mat.Matrix {
	return mat.NewDense(1, 1, []float64{-d.rate * t})
}

func (d *TimeVaryingDecay) Solution(y0 ode.State, t0, t float64) ode.State {
	return ode.State{y0[0] * math.Exp(-d.rate*(t*t-t0*t0)/2)}
}

func (d *TimeVaryingDecay) GetParams() map[string]float64 {
	return map[string]float64{"rate": d.rate}
}

func (d *TimeVaryingDecay) SetParam(name string, value float64) error {
	if name != "rate" {
		return unknownParam("tv_decay", name)
	}
	d.rate = value
	return nil
}
