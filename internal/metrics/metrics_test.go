package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/rungekutta/internal/models"
	"github.com/san-kum/rungekutta/internal/ode"
)

func TestEnergyDrift(t *testing.T) {
	osc := models.NewOscillator()
	m := NewEnergyDrift(osc)

	m.Observe(ode.State{1, 0}, 0)
	m.Observe(ode.State{0, 1}, 1)
	if m.Value() != 0 {
		t.Errorf("expected no drift on the energy shell, got %g", m.Value())
	}

	m.Observe(ode.State{0, math.Sqrt(1.1)}, 2)
	if math.Abs(m.Value()-0.1) > 1e-12 {
		t.Errorf("expected drift 0.1, got %g", m.Value())
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero drift after reset")
	}
}

func TestStability(t *testing.T) {
	m := NewStability(10)
	if m.Value() != 1 {
		t.Errorf("expected 1 before any samples, got %g", m.Value())
	}

	m.Observe(ode.State{1, 2}, 0)
	m.Observe(ode.State{1, 20}, 1)
	m.Observe(ode.State{math.NaN(), 0}, 2)
	m.Observe(ode.State{-3, 0}, 3)
	if m.Value() != 0.5 {
		t.Errorf("expected 0.5, got %g", m.Value())
	}
}

func TestExactError(t *testing.T) {
	decay := models.NewDecay()
	m := NewExactError(decay, ode.State{1}, 0)

	m.Observe(ode.State{1}, 0)
	if m.Value() != 0 {
		t.Errorf("expected 0 at t0, got %g", m.Value())
	}
	m.Observe(ode.State{math.Exp(-1) + 1e-3}, 1)
	if math.Abs(m.Value()-1e-3) > 1e-12 {
		t.Errorf("expected 1e-3, got %g", m.Value())
	}
	m.Observe(ode.State{math.NaN()}, 2)
	if !math.IsInf(m.Value(), 1) {
		t.Errorf("expected +Inf after a NaN row, got %g", m.Value())
	}
}

func TestExactErrorPartlyInvalidRow(t *testing.T) {
	osc := models.NewOscillator()
	for _, row := range []ode.State{{math.NaN(), 0}, {0, math.Inf(-1)}} {
		m := NewExactError(osc, ode.State{1, 0}, 0)
		m.Observe(ode.State{1, 0}, 0)
		m.Observe(row, 0)
		if !math.IsInf(m.Value(), 1) {
			t.Errorf("%v: expected +Inf, got %g", row, m.Value())
		}
	}
}

func TestObserve(t *testing.T) {
	res := &ode.Result{
		Times:  []float64{0, 1},
		States: []ode.State{{1, 0}, {0, 1}},
	}
	got := Observe(res, NewStability(0.5), NewEnergyDrift(models.NewOscillator()))
	if got["stability"] != 0 {
		t.Errorf("expected stability 0, got %g", got["stability"])
	}
	if got["energy_drift"] != 0 {
		t.Errorf("expected drift 0, got %g", got["energy_drift"])
	}
}
