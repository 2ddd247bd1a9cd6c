package models

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/rungekutta/internal/ode"
)

func TestLinearDeriveMatchesCoefficients(t *testing.T) {
	for _, name := range List() {
		sys, err := Get(name, nil)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		lin, ok := sys.(Linear)
		if !ok {
			continue
		}

		y := sys.DefaultState()
		for i := range y {
			y[i] += 0.1 * float64(i+1)
		}
		tt := 0.7

		dy := sys.Derive(y, tt)
		var want mat.VecDense
		want.MulVec(lin.Coefficients(tt), mat.NewVecDense(len(y), y.Clone()))
		for i := range dy {
			if math.Abs(dy[i]-want.AtVec(i)) > 1e-12 {
				t.Errorf("%s: component %d: Derive=%f, A·y=%f", name, i, dy[i], want.AtVec(i))
			}
		}
	}
}

func TestDimensions(t *testing.T) {
	tests := []struct {
		model    string
		expected int
	}{
		{"decay", 1},
		{"tv_decay", 1},
		{"oscillator", 2},
		{"pendulum", 2},
		{"vanderpol", 2},
		{"lorenz", 3},
		{"mass_chain", 10},
	}

	for _, tt := range tests {
		sys, err := Get(tt.model, nil)
		if err != nil {
			t.Fatalf("%s: %v", tt.model, err)
		}
		if sys.StateDim() != tt.expected {
			t.Errorf("%s: expected dim %d, got %d", tt.model, tt.expected, sys.StateDim())
		}
		if len(sys.DefaultState()) != tt.expected {
			t.Errorf("%s: default state has %d entries", tt.model, len(sys.DefaultState()))
		}
		if got := len(sys.Derive(sys.DefaultState(), 0)); got != tt.expected {
			t.Errorf("%s: derivative has %d entries", tt.model, got)
		}
	}
}

func TestLinearClassification(t *testing.T) {
	linear := map[string]bool{
		"decay": true, "tv_decay": true, "oscillator": true, "mass_chain": true,
		"pendulum": false, "vanderpol": false, "lorenz": false,
	}
	for name, want := range linear {
		sys, _ := Get(name, nil)
		if IsLinear(sys) != want {
			t.Errorf("%s: expected linear=%v", name, want)
		}
	}
}

func TestGetParams(t *testing.T) {
	sys, err := Get("oscillator", map[string]float64{"omega": 2, "damping": 0.5})
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	params := sys.GetParams()
	if params["omega"] != 2 || params["damping"] != 0.5 {
		t.Errorf("params not applied: %v", params)
	}

	if _, err := Get("oscillator", map[string]float64{"bogus": 1}); !errors.Is(err, ErrUnknownParam) {
		t.Errorf("expected ErrUnknownParam, got %v", err)
	}
	if _, err := Get("oscillator", map[string]float64{"omega": -1}); !errors.Is(err, ErrParameterBounds) {
		t.Errorf("expected ErrParameterBounds, got %v", err)
	}
	if _, err := Get("nonexistent", nil); !errors.Is(err, ErrUnknownModel) {
		t.Errorf("expected ErrUnknownModel, got %v", err)
	}
}

func TestPendulumEquilibrium(t *testing.T) {
	p := NewPendulum()
	p.Damping = 0

	dx := p.Derive(ode.State{0, 0}, 0)

	if math.Abs(dx[0]) > 1e-10 || math.Abs(dx[1]) > 1e-10 {
		t.Errorf("expected zero derivative at equilibrium, got %v", dx)
	}
}

func TestPendulumGravity(t *testing.T) {
	p := NewPendulum()
	p.Damping = 0

	dx := p.Derive(ode.State{math.Pi / 2, 0}, 0)

	expectedAccel := -p.Gravity / p.Length
	if math.Abs(dx[1]-expectedAccel) > 1e-6 {
		t.Errorf("expected acceleration %f, got %f", expectedAccel, dx[1])
	}
}

func TestOscillatorSolution(t *testing.T) {
	o := NewOscillator()
	y := o.Solution(ode.State{1, 0}, 0, math.Pi/2)
	if math.Abs(y[0]) > 1e-12 || math.Abs(y[1]+1) > 1e-12 {
		t.Errorf("expected [0 -1], got %v", y)
	}
	if math.Abs(o.Energy(y)-0.5) > 1e-12 {
		t.Errorf("energy should be conserved, got %f", o.Energy(y))
	}

	_ = o.SetParam("damping", 0.1)
	if o.Solution(ode.State{1, 0}, 0, 1) != nil {
		t.Error("damped oscillator has no closed form here")
	}
}

func TestMatrixSystemSolution(t *testing.T) {
	m, err := NewMatrixSystem([][]float64{{-1, 0}, {0, -2}})
	if err != nil {
		t.Fatalf("new failed: %v", err)
	}
	y := m.Solution(ode.State{1, 1}, 0, 1)
	if math.Abs(y[0]-math.Exp(-1)) > 1e-12 || math.Abs(y[1]-math.Exp(-2)) > 1e-12 {
		t.Errorf("unexpected solution %v", y)
	}

	if _, err := NewMatrixSystem([][]float64{{1, 2}}); !errors.Is(err, ode.ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestMassChainResize(t *testing.T) {
	mc := NewMassChain(5)
	if err := mc.SetParam("masses", 3); err != nil {
		t.Fatalf("set masses: %v", err)
	}
	if mc.StateDim() != 6 {
		t.Errorf("expected dim 6, got %d", mc.StateDim())
	}
	r, c := mc.Coefficients(0).Dims()
	if r != 6 || c != 6 {
		t.Errorf("expected 6x6 matrix, got %dx%d", r, c)
	}

	dx := mc.Derive(make(ode.State, 6), 0)
	for i, v := range dx {
		if v != 0 {
			t.Errorf("derivative[%d] at equilibrium should be 0, got %f", i, v)
		}
	}
}
