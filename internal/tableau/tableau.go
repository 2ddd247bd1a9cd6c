// Package tableau holds Butcher tableaux: the nodes, weights and coupling
// matrix that define a Runge-Kutta method.
package tableau

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrShape indicates nodes, weights and matrix do not share the stage count.
	ErrShape = errors.New("tableau: shape mismatch")

	// ErrEmpty indicates a tableau without stages.
	ErrEmpty = errors.New("tableau: no stages")

	// ErrNotFinite indicates a coefficient that is NaN or Inf.
	ErrNotFinite = errors.New("tableau: coefficient is NaN or Inf")

	// ErrUnknown indicates a preset name that is not registered.
	ErrUnknown = errors.New("tableau: unknown method")
)

type Kind string

const (
	Explicit Kind = "explicit"
	Implicit Kind = "implicit"
)

// Tableau is immutable once built by New: every accessor returns a copy.
type Tableau struct {
	name    string
	order   int
	nodes   []float64
	weights []float64
	matrix  [][]float64
}

// New validates and copies the coefficients. nodes and weights must both
// have length N and matrix must be N×N.
func New(name string, order int, nodes, weights []float64, matrix [][]float64) (Tableau, error) {
	n := len(nodes)
	if n == 0 {
		return Tableau{}, ErrEmpty
	}
	if len(weights) != n {
		return Tableau{}, fmt.Errorf("%w: %d nodes, %d weights", ErrShape, n, len(weights))
	}
	if len(matrix) != n {
		return Tableau{}, fmt.Errorf("%w: %d stages, matrix has %d rows", ErrShape, n, len(matrix))
	}
	for i, row := range matrix {
		if len(row) != n {
			return Tableau{}, fmt.Errorf("%w: matrix row %d has %d columns, want %d", ErrShape, i, len(row), n)
		}
		if !finite(row) {
			return Tableau{}, fmt.Errorf("%w: matrix row %d", ErrNotFinite, i)
		}
	}
	if !finite(nodes) || !finite(weights) {
		return Tableau{}, ErrNotFinite
	}

	return Tableau{
		name:    name,
		order:   order,
		nodes:   clone(nodes),
		weights: clone(weights),
		matrix:  cloneMatrix(matrix),
	}, nil
}

// MustNew is New for coefficient literals known to be well formed.
func MustNew(name string, order int, nodes, weights []float64, matrix [][]float64) Tableau {
	t, err := New(name, order, nodes, weights, matrix)
	if err != nil {
		panic(err)
	}
	return t
}

func (t Tableau) Name() string         { return t.name }
func (t Tableau) Order() int           { return t.order }
func (t Tableau) Stages() int          { return len(t.nodes) }
func (t Tableau) Nodes() []float64     { return clone(t.nodes) }
func (t Tableau) Weights() []float64   { return clone(t.weights) }
func (t Tableau) Matrix() [][]float64  { return cloneMatrix(t.matrix) }
func (t Tableau) Node(s int) float64   { return t.nodes[s] }
func (t Tableau) Weight(s int) float64 { return t.weights[s] }
func (t Tableau) A(i, j int) float64   { return t.matrix[i][j] }

// Row returns a copy of the first n coefficients of matrix row i.
func (t Tableau) Row(i, n int) []float64 {
	return clone(t.matrix[i][:n])
}

// Validate reports whether t was built through New. The zero Tableau is
// invalid.
func (t Tableau) Validate() error {
	if len(t.nodes) == 0 {
		return ErrEmpty
	}
	if len(t.weights) != len(t.nodes) || len(t.matrix) != len(t.nodes) {
		return ErrShape
	}
	return nil
}

// IsExplicit reports whether the matrix is strictly lower triangular, i.e.
// no stage depends on itself or a later stage.
func (t Tableau) IsExplicit() bool {
	for i, row := range t.matrix {
		for j := i; j < len(row); j++ {
			if row[j] != 0 {
				return false
			}
		}
	}
	return true
}

func (t Tableau) Kind() Kind {
	if t.IsExplicit() {
		return Explicit
	}
	return Implicit
}

func (t Tableau) String() string {
	name := t.name
	if name == "" {
		name = "custom"
	}
	return fmt.Sprintf("%s (%s, %d stages, order %d)", name, t.Kind(), t.Stages(), t.order)
}

func finite(v []float64) bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

func clone(v []float64) []float64 {
	c := make([]float64, len(v))
	copy(c, v)
	return c
}

func cloneMatrix(m [][]float64) [][]float64 {
	c := make([][]float64, len(m))
	for i, row := range m {
		c[i] = clone(row)
	}
	return c
}
