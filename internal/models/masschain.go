package models

import (
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/rungekutta/internal/ode"
)

// MassChain implements a chain of masses connected by springs between two
// fixed walls. The system is linear, so A is assembled once per parameter
// change.
// State: [x1, v1, x2, v2, ..., xN, vN] where x is displacement, v is velocity
type MassChain struct {
	n       int     // Number of masses
	k       float64 // Spring constant
	m       float64 // Mass of each particle
	damping float64 // Damping coefficient
	a       *mat.Dense
}

func NewMassChain(n int) *MassChain {
	mc := &MassChain{
		n:       n,
		k:       100.0,
		m:       1.0,
		damping: 0.1,
	}
	mc.assemble()
	return mc
}

func (mc *MassChain) StateDim() int { return mc.n * 2 }

func (mc *MassChain) assemble() {
	dim := mc.n * 2
	a := mat.NewDense(dim, dim, nil)
	for i := 0; i < mc.n; i++ {
		x, v := i*2, i*2+1

		a.Set(x, v, 1)

		// both neighbours pull, walls at either end
		a.Set(v, x, -2*mc.k/mc.m)
		if i > 0 {
			a.Set(v, (i-1)*2, mc.k/mc.m)
		}
		if i < mc.n-1 {
			a.Set(v, (i+1)*2, mc.k/mc.m)
		}
		a.Set(v, v, -mc.damping/mc.m)
	}
	mc.a = a
}

func (mc *MassChain) Coefficients(_ float64) mat.Matrix {
	return mc.a
}

func (mc *MassChain) Derive(state ode.State, _ float64) ode.State {
	return linearDerive(mc.a, state)
}

func (mc *MassChain) DefaultState() ode.State {
	state := make(ode.State, mc.n*2)
	// Initial pulse - displace first few masses
	if mc.n > 0 {
		state[0] = 1.0
	}
	if mc.n > 2 {
		state[2] = 0.5
	}
	return state
}

func (mc *MassChain) GetParams() map[string]float64 {
	return map[string]float64{
		"k":       mc.k,
		"mass":    mc.m,
		"damping": mc.damping,
		"masses":  float64(mc.n),
	}
}

func (mc *MassChain) SetParam(name string, value float64) error {
	switch name {
	case "k":
		mc.k = value
	case "mass":
		if value <= 0 {
			return outOfBounds(name, value)
		}
		mc.m = value
	case "damping":
		mc.damping = value
	case "masses":
		if value < 1 {
			return outOfBounds(name, value)
		}
		mc.n = int(value)
	default:
		return unknownParam("mass_chain", name)
	}
	mc.assemble()
	return nil
}
