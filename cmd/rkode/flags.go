package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/san-kum/rungekutta/internal/config"
)

// runFlags are shared by every command that builds a run configuration.
// Precedence is preset, then config file, then flags that were set.
type runFlags struct {
	configFile string
	preset     string
	method     string
	step       float64
	t0         float64
	stop       float64
	count      int
	times      []float64
	y0         []float64
	params     map[string]string
	workers    int
}

func addRunFlags(cmd *cobra.Command, f *runFlags) {
	fl := cmd.Flags()
	fl.StringVar(&f.configFile, "config", "", "config file path (yaml)")
	fl.StringVar(&f.preset, "preset", "", "use preset configuration")
	fl.StringVar(&f.method, "method", config.DefaultMethod, "tableau name (see methods)")
	fl.Float64Var(&f.step, "step", config.DefaultStepSize, "step size")
	fl.Float64Var(&f.t0, "t0", 0, "initial time")
	fl.Float64Var(&f.stop, "stop", config.DefaultStop, "last output time")
	fl.IntVar(&f.count, "count", config.DefaultCount, "number of evenly spaced output times")
	fl.Float64SliceVar(&f.times, "times", nil, "explicit output times (overrides stop/count)")
	fl.Float64SliceVar(&f.y0, "y0", nil, "initial state")
	fl.StringToStringVar(&f.params, "param", nil, "model parameter name=value")
	fl.IntVar(&f.workers, "workers", config.DefaultWorkers, "parallel workers for implicit solves")
}

func (f *runFlags) resolve(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.DefaultConfig()

	model := ""
	if len(args) > 0 {
		model = args[0]
	}

	if f.preset != "" {
		if model == "" {
			return nil, fmt.Errorf("preset %s needs a model argument", f.preset)
		}
		p := config.GetPreset(model, f.preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", f.preset, config.ListPresets(model))
		}
		cfg = p
	}

	if f.configFile != "" {
		loaded, err := config.Load(f.configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	if model != "" {
		cfg.Model = model
	}

	fl := cmd.Flags()
	if fl.Changed("method") {
		cfg.Method = f.method
		cfg.Tableau = nil
	}
	if fl.Changed("step") {
		cfg.StepSize = f.step
	}
	if fl.Changed("t0") {
		cfg.T0 = f.t0
		cfg.Span.Start = f.t0
	}
	if fl.Changed("stop") {
		cfg.Span.Stop = f.stop
	}
	if fl.Changed("count") {
		cfg.Span.Count = f.count
	}
	if fl.Changed("times") {
		cfg.Times = f.times
	}
	if fl.Changed("y0") {
		cfg.Y0 = f.y0
	}
	if fl.Changed("workers") {
		cfg.Workers = f.workers
	}
	for name, raw := range f.params {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("param %s: %w", name, err)
		}
		if cfg.Params == nil {
			cfg.Params = make(map[string]float64)
		}
		cfg.Params[name] = v
	}

	return cfg, cfg.Validate()
}
