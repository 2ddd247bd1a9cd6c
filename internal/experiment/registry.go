package experiment

import (
	"errors"
	"fmt"

	"github.com/san-kum/rungekutta/internal/config"
	"github.com/san-kum/rungekutta/internal/metrics"
	"github.com/san-kum/rungekutta/internal/models"
	"github.com/san-kum/rungekutta/internal/ode"
	"github.com/san-kum/rungekutta/internal/tableau"
)

var ErrStateDim = errors.New("experiment: initial state does not match model dimension")

// ResolveTableau returns the custom tableau of cfg if it has one, otherwise
// the named preset.
func ResolveTableau(cfg *config.Config) (tableau.Tableau, error) {
	if cfg.Tableau != nil {
		def := *cfg.Tableau
		if def.Name == "" {
			def.Name = "custom"
		}
		return def.Build()
	}
	return tableau.Get(cfg.Method)
}

// ResolveModel builds the model named by cfg with its parameters applied.
func ResolveModel(cfg *config.Config) (models.System, error) {
	if cfg.Linear != nil {
		m, err := models.NewMatrixSystem(cfg.Linear.Matrix)
		if err != nil {
			return nil, err
		}
		return m, nil
	}
	return models.Get(cfg.Model, cfg.Params)
}

// InitialState is cfg.Y0 when given, otherwise the model's default state.
func InitialState(cfg *config.Config, sys models.System) (ode.State, error) {
	y0 := ode.State(cfg.Y0)
	if len(y0) == 0 {
		y0 = sys.DefaultState()
	}
	if len(y0) != sys.StateDim() {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrStateDim, len(y0), sys.StateDim())
	}
	return y0.Clone(), nil
}

// DefaultMetrics returns the metrics that make sense for sys.
func DefaultMetrics(sys models.System, y0 ode.State, t0 float64) []metrics.Metric {
	ms := []metrics.Metric{metrics.NewStability(1e6)}
	if h, ok := sys.(metrics.Hamiltonian); ok {
		ms = append(ms, metrics.NewEnergyDrift(h))
	}
	if sol, ok := sys.(metrics.Solution); ok && sol.Solution(y0, t0, t0) != nil {
		ms = append(ms, metrics.NewExactError(sol, y0, t0))
	}
	return ms
}
