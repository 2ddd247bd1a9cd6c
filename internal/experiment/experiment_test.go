package experiment

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/san-kum/rungekutta/internal/config"
	"github.com/san-kum/rungekutta/internal/integrators"
	"github.com/san-kum/rungekutta/internal/models"
	"github.com/san-kum/rungekutta/internal/ode"
	"github.com/san-kum/rungekutta/internal/tableau"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestRunDefault(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Span = config.SpanConfig{Stop: 1, Count: 5}

	run, err := New(cfg, WithLogger(quiet)).Run(t.Context())
	if err != nil {
		t.Fatal(err)
	}
	if run.Method != "rk4" || run.Kind != tableau.Explicit || run.Model != "oscillator" {
		t.Errorf("unexpected run header %+v", run)
	}
	if len(run.Result.States) != 5 {
		t.Fatalf("expected 5 rows, got %d", len(run.Result.States))
	}
	if run.Metrics["exact_error"] > 1e-8 {
		t.Errorf("rk4 error too large: %g", run.Metrics["exact_error"])
	}
	if run.Metrics["energy_drift"] > 1e-8 {
		t.Errorf("rk4 drift too large: %g", run.Metrics["energy_drift"])
	}
	if run.Metrics["stability"] != 1 {
		t.Errorf("expected stable run, got %g", run.Metrics["stability"])
	}
}

func TestRunImplicitPreset(t *testing.T) {
	cfg := config.GetPreset("decay", "stiff")

	run, err := New(cfg, WithLogger(quiet)).Run(t.Context())
	if err != nil {
		t.Fatal(err)
	}
	if run.Kind != tableau.Implicit {
		t.Errorf("expected implicit run, got %s", run.Kind)
	}
	// backward Euler with h*rate = 5 damps by 1/6 per step
	last := run.Result.States[len(run.Result.States)-1][0]
	want := math.Pow(1.0/6, float64(run.Result.StepsTaken))
	if math.Abs(last-want) > 1e-12 {
		t.Errorf("expected %g, got %g", want, last)
	}
}

func TestRunStiffExplicitDiverges(t *testing.T) {
	cfg := config.GetPreset("decay", "stiff")
	cfg.Method = "rk4"
	cfg.StepSize = 0.2
	cfg.Span = config.SpanConfig{Stop: 400, Count: 2}

	run, err := New(cfg, WithLogger(quiet)).Run(t.Context())
	if !errors.Is(err, ErrDiverged) {
		t.Fatalf("expected ErrDiverged, got %v", err)
	}
	if run == nil || run.Metrics["stability"] == 1 {
		t.Error("expected the run record with an unstable metric")
	}
}

func TestRunCustomTableauAndMatrix(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Method = ""
	cfg.Tableau = &tableau.Definition{
		Nodes:   []float64{0, 1},
		Weights: []float64{0.5, 0.5},
		Matrix:  [][]float64{{0, 0}, {0.5, 0.5}},
	}
	cfg.Model = config.MatrixModel
	cfg.Linear = &config.LinearConfig{Matrix: [][]float64{{-1, 0}, {0, -2}}}
	cfg.Y0 = []float64{1, 1}
	cfg.StepSize = 1.0 / 64
	cfg.Span = config.SpanConfig{Stop: 1, Count: 2}

	e := New(cfg, WithLogger(quiet))
	run, err := e.Run(t.Context())
	if err != nil {
		t.Fatal(err)
	}
	if run.Method != "custom" || run.Kind != tableau.Implicit {
		t.Errorf("expected custom implicit run, got %s %s", run.Method, run.Kind)
	}
	// the trapezoidal rule is second order
	if run.Metrics["exact_error"] > 1e-4 {
		t.Errorf("error too large: %g", run.Metrics["exact_error"])
	}
	if _, ok := e.System().(*models.MatrixSystem); !ok {
		t.Errorf("expected a matrix system, got %T", e.System())
	}
}

func TestSetupErrors(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*config.Config)
		want   error
	}{
		{"invalid", func(c *config.Config) { c.StepSize = -1 }, config.ErrInvalid},
		{"unknown method", func(c *config.Config) { c.Method = "rk99" }, tableau.ErrUnknown},
		{"unknown model", func(c *config.Config) { c.Model = "teapot" }, models.ErrUnknownModel},
		{"bad param", func(c *config.Config) { c.Params = map[string]float64{"nope": 1} }, models.ErrUnknownParam},
		{"state dim", func(c *config.Config) { c.Y0 = []float64{1} }, ErrStateDim},
		{"nonlinear implicit", func(c *config.Config) { c.Model = "lorenz"; c.Method = "gauss_legendre4" }, integrators.ErrNotLinear},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			tt.modify(cfg)
			err := New(cfg, WithLogger(quiet)).Setup()
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestRunCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	run, err := New(config.DefaultConfig(), WithLogger(quiet)).Run(ctx)
	if !errors.Is(err, ode.ErrCanceled) {
		t.Fatalf("expected ErrCanceled, got %v", err)
	}
	if run == nil || run.Result == nil {
		t.Fatal("expected partial run")
	}
	// the first output time is t0, which needs no step
	if len(run.Result.States) != 1 {
		t.Errorf("expected only the t0 row, got %d", len(run.Result.States))
	}
}

func TestNewCopiesConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	e := New(cfg, WithLogger(quiet))
	cfg.StepSize = -1
	if err := e.Setup(); err != nil {
		t.Errorf("experiment should hold its own config: %v", err)
	}
	if e.Driver() == nil || e.Tableau().Name() != "rk4" {
		t.Error("expected driver and tableau after setup")
	}
}
