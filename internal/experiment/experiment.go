package experiment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/san-kum/rungekutta/internal/config"
	"github.com/san-kum/rungekutta/internal/integrators"
	"github.com/san-kum/rungekutta/internal/metrics"
	"github.com/san-kum/rungekutta/internal/models"
	"github.com/san-kum/rungekutta/internal/ode"
	"github.com/san-kum/rungekutta/internal/tableau"
)

// ErrDiverged is returned when a run records a NaN or infinite state.
var ErrDiverged = errors.New("experiment: state diverged")

// Run is the record of one integration.
type Run struct {
	Config  *config.Config
	Method  string
	Kind    tableau.Kind
	Model   string
	Result  *ode.Result
	Metrics map[string]float64
	Elapsed time.Duration
}

type Experiment struct {
	cfg    *config.Config
	logger *slog.Logger

	tab    tableau.Tableau
	sys    models.System
	y0     ode.State
	driver ode.Driver
}

type Option func(*Experiment)

func WithLogger(l *slog.Logger) Option {
	return func(e *Experiment) { e.logger = l }
}

func New(cfg *config.Config, opts ...Option) *Experiment {
	e := &Experiment{cfg: cfg.Clone(), logger: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Setup resolves the configuration into a tableau, a model and a driver
// holding the initial state. Run calls it when needed.
func (e *Experiment) Setup() error {
	if err := e.cfg.Validate(); err != nil {
		return err
	}
	tab, err := ResolveTableau(e.cfg)
	if err != nil {
		return err
	}
	sys, err := ResolveModel(e.cfg)
	if err != nil {
		return err
	}
	y0, err := InitialState(e.cfg, sys)
	if err != nil {
		return err
	}

	var implicitOpts []integrators.ImplicitOption
	if e.cfg.Workers != 0 {
		implicitOpts = append(implicitOpts, integrators.WithWorkers(e.cfg.Workers))
	}
	d, err := integrators.ForSystem(tab, sys, implicitOpts,
		ode.WithStepSize(e.cfg.StepSize), ode.WithLogger(e.logger))
	if err != nil {
		return err
	}
	if err := d.SetState(y0, e.cfg.T0); err != nil {
		return err
	}

	e.tab, e.sys, e.y0, e.driver = tab, sys, y0, d
	return nil
}

// Run integrates to every output time of the configuration. A failed run
// returns the rows recorded so far together with the error.
func (e *Experiment) Run(ctx context.Context) (*Run, error) {
	if e.driver == nil {
		if err := e.Setup(); err != nil {
			return nil, err
		}
	}

	e.logger.Info("run starting",
		"method", e.tab.Name(),
		"kind", e.tab.Kind(),
		"model", e.cfg.Model,
		"h", e.cfg.StepSize)

	start := time.Now()
	res, err := e.driver.March(ctx, e.cfg.OutputTimes())
	run := &Run{
		Config:  e.cfg,
		Method:  e.tab.Name(),
		Kind:    e.tab.Kind(),
		Model:   e.cfg.Model,
		Result:  res,
		Elapsed: time.Since(start),
	}
	if err != nil {
		return run, err
	}

	run.Metrics = metrics.Observe(res, DefaultMetrics(e.sys, e.y0, e.cfg.T0)...)
	for i, y := range res.States {
		if !y.IsValid() {
			return run, fmt.Errorf("%w at t=%g (row %d)", ErrDiverged, res.Times[i], i)
		}
	}

	e.logger.Info("run complete",
		"steps", res.StepsTaken,
		"rows", len(res.States),
		"elapsed", run.Elapsed)
	return run, nil
}

// Driver returns the driver built by Setup, or nil before Setup.
func (e *Experiment) Driver() ode.Driver { return e.driver }

func (e *Experiment) System() models.System { return e.sys }

func (e *Experiment) Tableau() tableau.Tableau { return e.tab }
