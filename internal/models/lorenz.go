package models

import "github.com/san-kum/rungekutta/internal/ode"

type Lorenz struct{ sigma, rho, beta float64 }

func NewLorenz() *Lorenz                  { return &Lorenz{10.0, 28.0, 8.0 / 3.0} }
func (l *Lorenz) StateDim() int           { return 3 }
func (l *Lorenz) DefaultState() ode.State { return ode.State{1.0, 1.0, 1.0} }

// Derive calculates the Lorenz attractor derivatives.
func (l *Lorenz) Derive(s ode.State, _ float64) ode.State {
	return ode.State{l.sigma * (s[1] - s[0]), s[0]*(l.rho-s[2]) - s[1], s[0]*s[1] - l.beta*s[2]}
}

func (l *Lorenz) GetParams() map[string]float64 {
	return map[string]float64{"sigma": l.sigma, "rho": l.rho, "beta": l.beta}
}

func (l *Lorenz) SetParam(n string, v float64) error {
	switch n {
	case "sigma":
		l.sigma = v
	case "rho":
		l.rho = v
	case "beta":
		l.beta = v
	default:
		return unknownParam("lorenz", n)
	}
	return nil
}
