package integrators

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/rungekutta/internal/models"
	"github.com/san-kum/rungekutta/internal/ode"
	"github.com/san-kum/rungekutta/internal/tableau"
)

func TestForSystemPicksStepper(t *testing.T) {
	tests := []struct {
		method string
		model  string
		err    error
	}{
		{"rk4", "decay", nil},
		{"rk4", "lorenz", nil},
		{"crank_nicolson", "oscillator", nil},
		{"gauss_legendre4", "mass_chain", nil},
		{"backward_euler", "pendulum", ErrNotLinear},
		{"implicit_midpoint", "vanderpol", ErrNotLinear},
	}

	for _, tt := range tests {
		t.Run(tt.method+"/"+tt.model, func(t *testing.T) {
			tab, err := tableau.Get(tt.method)
			if err != nil {
				t.Fatal(err)
			}
			sys, err := models.Get(tt.model, nil)
			if err != nil {
				t.Fatal(err)
			}

			d, err := ForSystem(tab, sys, nil, ode.WithStepSize(0.01))
			if tt.err != nil {
				if !errors.Is(err, tt.err) {
					t.Fatalf("expected %v, got %v", tt.err, err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if err := d.SetState(sys.DefaultState(), 0); err != nil {
				t.Fatal(err)
			}
			y, _, err := d.Step()
			if err != nil {
				t.Fatal(err)
			}
			if len(y) != sys.StateDim() {
				t.Errorf("expected dim %d, got %d", sys.StateDim(), len(y))
			}
		})
	}
}

func TestForSystemMatchesExact(t *testing.T) {
	tab, _ := tableau.Get("gauss_legendre4")
	sys := models.NewDecay()
	d, err := ForSystem(tab, sys, nil, ode.WithStepSize(1.0/16))
	if err != nil {
		t.Fatal(err)
	}
	if err := d.SetState(ode.State{1}, 0); err != nil {
		t.Fatal(err)
	}

	res, err := d.March(t.Context(), []float64{1})
	if err != nil {
		t.Fatal(err)
	}
	want := sys.Solution(ode.State{1}, 0, res.Times[0])
	if diff := math.Abs(res.States[0][0] - want[0]); diff > 1e-8 {
		t.Errorf("error %g too large", diff)
	}
}
