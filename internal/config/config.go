package config

import (
	"errors"
	"fmt"
	"maps"
	"math"
	"os"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/rungekutta/internal/tableau"
)

const (
	DefaultMethod   = "rk4"
	DefaultModel    = "oscillator"
	DefaultStepSize = 0.01
	DefaultStop     = 10.0
	DefaultCount    = 101
	DefaultWorkers  = 1

	// MatrixModel is the model name for systems given by linear.matrix.
	MatrixModel = "matrix"
)

var ErrInvalid = errors.New("config: invalid")

type Config struct {
	Method   string              `yaml:"method"`
	Tableau  *tableau.Definition `yaml:"tableau,omitempty"`
	Model    string              `yaml:"model"`
	Params   map[string]float64  `yaml:"params,omitempty"`
	Linear   *LinearConfig       `yaml:"linear,omitempty"`
	StepSize float64             `yaml:"step_size"`
	T0       float64             `yaml:"t0"`
	Y0       []float64           `yaml:"y0,omitempty"`
	Times    []float64           `yaml:"times,omitempty"`
	Span     SpanConfig          `yaml:"span"`
	Workers  int                 `yaml:"workers"`
}

// LinearConfig describes a constant coefficient system dy/dt = A y.
type LinearConfig struct {
	Matrix [][]float64 `yaml:"matrix"`
}

// SpanConfig describes Count evenly spaced output times from Start to Stop.
// It is used when Times is empty.
type SpanConfig struct {
	Start float64 `yaml:"start"`
	Stop  float64 `yaml:"stop"`
	Count int     `yaml:"count"`
}

func DefaultConfig() *Config {
	return &Config{
		Method:   DefaultMethod,
		Model:    DefaultModel,
		StepSize: DefaultStepSize,
		Span: SpanConfig{
			Stop:  DefaultStop,
			Count: DefaultCount,
		},
		Workers: DefaultWorkers,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	if cfg.Linear != nil && cfg.Model == DefaultModel {
		cfg.Model = MatrixModel
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Clone returns a deep copy of c.
func (c *Config) Clone() *Config {
	out := *c
	out.Params = maps.Clone(c.Params)
	out.Y0 = slices.Clone(c.Y0)
	out.Times = slices.Clone(c.Times)
	if c.Tableau != nil {
		def := *c.Tableau
		def.Nodes = slices.Clone(def.Nodes)
		def.Weights = slices.Clone(def.Weights)
		def.Matrix = cloneRows(def.Matrix)
		out.Tableau = &def
	}
	if c.Linear != nil {
		out.Linear = &LinearConfig{Matrix: cloneRows(c.Linear.Matrix)}
	}
	return &out
}

func cloneRows(rows [][]float64) [][]float64 {
	if rows == nil {
		return nil
	}
	out := make([][]float64, len(rows))
	for i, r := range rows {
		out[i] = slices.Clone(r)
	}
	return out
}

// MethodName is the tableau name a run will report.
func (c *Config) MethodName() string {
	if c.Tableau != nil && c.Tableau.Name != "" {
		return c.Tableau.Name
	}
	if c.Tableau != nil {
		return "custom"
	}
	return c.Method
}

// Validate checks the fields that do not need the model or tableau to be
// resolved. Unknown names are reported when the run is built.
func (c *Config) Validate() error {
	if c.Method == "" && c.Tableau == nil {
		return fmt.Errorf("%w: method or tableau required", ErrInvalid)
	}
	if c.Linear == nil && c.Model == "" {
		return fmt.Errorf("%w: model required", ErrInvalid)
	}
	if c.Linear != nil && c.Model != MatrixModel {
		return fmt.Errorf("%w: linear.matrix requires model %q, got %q", ErrInvalid, MatrixModel, c.Model)
	}
	if c.Linear == nil && c.Model == MatrixModel {
		return fmt.Errorf("%w: model %q requires linear.matrix", ErrInvalid, MatrixModel)
	}
	if !(c.StepSize > 0) || math.IsInf(c.StepSize, 1) {
		return fmt.Errorf("%w: step_size must be positive and finite, got %g", ErrInvalid, c.StepSize)
	}
	if !finite(c.T0) {
		return fmt.Errorf("%w: t0 must be finite", ErrInvalid)
	}
	for i, v := range c.Y0 {
		if !finite(v) {
			return fmt.Errorf("%w: y0[%d] is %g", ErrInvalid, i, v)
		}
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must not be negative", ErrInvalid)
	}
	if len(c.Times) > 0 {
		for i, v := range c.Times {
			if !finite(v) {
				return fmt.Errorf("%w: times[%d] is %g", ErrInvalid, i, v)
			}
		}
		return nil
	}
	if c.Span.Count < 1 {
		return fmt.Errorf("%w: span.count must be at least 1", ErrInvalid)
	}
	if !finite(c.Span.Start) || !finite(c.Span.Stop) || c.Span.Stop < c.Span.Start {
		return fmt.Errorf("%w: span [%g, %g]", ErrInvalid, c.Span.Start, c.Span.Stop)
	}
	return nil
}

// OutputTimes returns the requested output times: Times if given, otherwise
// the span expanded to Count evenly spaced points. A span of one point is
// its stop time.
func (c *Config) OutputTimes() []float64 {
	if len(c.Times) > 0 {
		return slices.Clone(c.Times)
	}
	if c.Span.Count <= 1 {
		return []float64{c.Span.Stop}
	}
	return floats.Span(make([]float64, c.Span.Count), c.Span.Start, c.Span.Stop)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
