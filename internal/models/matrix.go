package models

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/rungekutta/internal/ode"
)

// MatrixSystem is a constant coefficient system dy/dt = Ay with A supplied
// by the caller, typically from a config file.
type MatrixSystem struct {
	a *mat.Dense
}

// NewMatrixSystem copies rows into a square matrix.
func NewMatrixSystem(rows [][]float64) (*MatrixSystem, error) {
	n := len(rows)
	if n == 0 {
		return nil, fmt.Errorf("%w: empty matrix", ode.ErrDimensionMismatch)
	}
	a := mat.NewDense(n, n, nil)
	for i, row := range rows {
		if len(row) != n {
			return nil, fmt.Errorf("%w: row %d has %d entries, want %d", ode.ErrDimensionMismatch, i, len(row), n)
		}
		a.SetRow(i, row)
	}
	return &MatrixSystem{a: a}, nil
}

func (m *MatrixSystem) StateDim() int {
	r, _ := m.a.Dims()
	return r
}

func (m *MatrixSystem) DefaultState() ode.State {
	y := make(ode.State, m.StateDim())
	for i := range y {
		y[i] = 1
	}
	return y
}

func (m *MatrixSystem) Derive(y ode.State, _ float64) ode.State {
	return linearDerive(m.a, y)
}

func (m *MatrixSystem) Coefficients(_ float64) mat.Matrix {
	return m.a
}

// Solution evaluates exp(A(t-t0))·y0.
func (m *MatrixSystem) Solution(y0 ode.State, t0, t float64) ode.State {
	var scaled, e mat.Dense
	scaled.Scale(t-t0, m.a)
	e.Exp(&scaled)
	return linearDerive(&e, y0)
}

func (m *MatrixSystem) GetParams() map[string]float64 { return map[string]float64{} }

func (m *MatrixSystem) SetParam(name string, _ float64) error {
	return unknownParam("linear", name)
}
