// Package metrics summarises the rows recorded by a run.
package metrics

import "github.com/san-kum/rungekutta/internal/ode"

// Metric folds recorded states into a single number.
type Metric interface {
	Name() string
	Observe(y ode.State, t float64)
	Value() float64
	Reset()
}

// Hamiltonian is implemented by systems with a conserved energy.
type Hamiltonian interface {
	Energy(y ode.State) float64
}

// Observe feeds every row of res to each metric and collects the values.
func Observe(res *ode.Result, ms ...Metric) map[string]float64 {
	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		m.Reset()
		for i, y := range res.States {
			m.Observe(y, res.Times[i])
		}
		out[m.Name()] = m.Value()
	}
	return out
}
