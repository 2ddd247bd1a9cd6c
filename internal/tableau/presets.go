package tableau

import (
	"fmt"
	"math"
	"sort"
)

var (
	sqrt3  = math.Sqrt(3)
	sqrt15 = math.Sqrt(15)
)

var presets = map[string]func() Tableau{
	"forward_euler":     ForwardEuler,
	"explicit_midpoint": ExplicitMidpoint,
	"rk4":               RK4,
	"dormand_prince":    DormandPrince,
	"backward_euler":    BackwardEuler,
	"implicit_midpoint": ImplicitMidpoint,
	"crank_nicolson":    CrankNicolson,
	"gauss_legendre4":   GaussLegendre4,
	"gauss_legendre6":   GaussLegendre6,
}

func ForwardEuler() Tableau {
	return MustNew("forward_euler", 1, []float64{0}, []float64{1}, [][]float64{{0}})
}

func ExplicitMidpoint() Tableau {
	return MustNew("explicit_midpoint", 2,
		[]float64{0, 0.5},
		[]float64{0, 1},
		[][]float64{{0, 0}, {0.5, 0}})
}

// RK4 is the classic fourth-order method.
func RK4() Tableau {
	return MustNew("rk4", 4,
		[]float64{0, 0.5, 0.5, 1},
		[]float64{1.0 / 6, 1.0 / 3, 1.0 / 3, 1.0 / 6},
		[][]float64{
			{0, 0, 0, 0},
			{0.5, 0, 0, 0},
			{0, 0.5, 0, 0},
			{0, 0, 1, 0},
		})
}

// DormandPrince is the fifth-order solution of the Dormand-Prince pair. The
// seventh stage repeats the weights (first same as last) and carries zero
// weight itself.
func DormandPrince() Tableau {
	return MustNew("dormand_prince", 5,
		[]float64{0, 1.0 / 5, 3.0 / 10, 4.0 / 5, 8.0 / 9, 1, 1},
		[]float64{35.0 / 384, 0, 500.0 / 1113, 125.0 / 192, -2187.0 / 6784, 11.0 / 84, 0},
		[][]float64{
			{0, 0, 0, 0, 0, 0, 0},
			{1.0 / 5, 0, 0, 0, 0, 0, 0},
			{3.0 / 40, 9.0 / 40, 0, 0, 0, 0, 0},
			{44.0 / 45, -56.0 / 15, 32.0 / 9, 0, 0, 0, 0},
			{19372.0 / 6561, -25360.0 / 2187, 64448.0 / 6561, -212.0 / 729, 0, 0, 0},
			{9017.0 / 3168, -355.0 / 33, 46732.0 / 5247, 49.0 / 176, -5103.0 / 18656, 0, 0},
			{35.0 / 384, 0, 500.0 / 1113, 125.0 / 192, -2187.0 / 6784, 11.0 / 84, 0},
		})
}

func BackwardEuler() Tableau {
	return MustNew("backward_euler", 1, []float64{1}, []float64{1}, [][]float64{{1}})
}

func ImplicitMidpoint() Tableau {
	return MustNew("implicit_midpoint", 2, []float64{0.5}, []float64{1}, [][]float64{{0.5}})
}

// CrankNicolson is the trapezoidal rule written as a two-stage method.
func CrankNicolson() Tableau {
	return MustNew("crank_nicolson", 2,
		[]float64{0, 1},
		[]float64{0.5, 0.5},
		[][]float64{{0, 0}, {0.5, 0.5}})
}

func GaussLegendre4() Tableau {
	return MustNew("gauss_legendre4", 4,
		[]float64{0.5 - sqrt3/6, 0.5 + sqrt3/6},
		[]float64{0.5, 0.5},
		[][]float64{
			{0.25, 0.25 - sqrt3/6},
			{0.25 + sqrt3/6, 0.25},
		})
}

func GaussLegendre6() Tableau {
	return MustNew("gauss_legendre6", 6,
		[]float64{0.5 - sqrt15/10, 0.5, 0.5 + sqrt15/10},
		[]float64{5.0 / 18, 4.0 / 9, 5.0 / 18},
		[][]float64{
			{5.0 / 36, 2.0/9 - sqrt15/15, 5.0/36 - sqrt15/30},
			{5.0/36 + sqrt15/24, 2.0 / 9, 5.0/36 - sqrt15/24},
			{5.0/36 + sqrt15/30, 2.0/9 + sqrt15/15, 5.0 / 36},
		})
}

func Get(name string) (Tableau, error) {
	fn, ok := presets[name]
	if !ok {
		return Tableau{}, fmt.Errorf("%w: %s", ErrUnknown, name)
	}
	return fn(), nil
}

// List returns the preset names in sorted order.
func List() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
