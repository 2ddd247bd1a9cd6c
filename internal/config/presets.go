package config

import "sort"

// Presets holds ready made runs keyed by model and then by preset name.
var Presets = map[string]map[string]*Config{
	"decay": {
		"smooth": {
			Model: "decay", Method: "rk4", StepSize: 0.1,
			Span: SpanConfig{Stop: 5, Count: 51},
		},
		"stiff": {
			Model: "decay", Method: "backward_euler", StepSize: 0.1,
			Params: map[string]float64{"rate": 50},
			Span:   SpanConfig{Stop: 2, Count: 21},
		},
	},
	"matrix": {
		"diagonal": {
			Model: MatrixModel, Method: "gauss_legendre6", StepSize: 0.05,
			Linear: &LinearConfig{Matrix: [][]float64{{-1, 0, 0}, {0, -10, 0}, {0, 0, -100}}},
			Span:   SpanConfig{Stop: 2, Count: 41},
		},
	},
	"tv_decay": {
		"gaussian": {
			Model: "tv_decay", Method: "gauss_legendre4", StepSize: 0.05,
			Span: SpanConfig{Stop: 3, Count: 61},
		},
	},
	"oscillator": {
		"rk4": {
			Model: "oscillator", Method: "rk4", StepSize: 0.01,
			Span: SpanConfig{Stop: 20, Count: 201},
		},
		"midpoint": {
			Model: "oscillator", Method: "explicit_midpoint", StepSize: 0.05,
			Span: SpanConfig{Stop: 100, Count: 201},
		},
		"damped": {
			Model: "oscillator", Method: "dormand_prince", StepSize: 0.05,
			Params: map[string]float64{"damping": 0.3},
			Span:   SpanConfig{Stop: 30, Count: 301},
		},
	},
	"mass_chain": {
		"wave": {
			Model: "mass_chain", Method: "rk4", StepSize: 0.02,
			Params: map[string]float64{"masses": 8, "k": 4},
			Span:   SpanConfig{Stop: 20, Count: 201},
		},
	},
	"pendulum": {
		"small": {
			Model: "pendulum", Method: "rk4", StepSize: 0.01,
			Y0:   []float64{0.2, 0},
			Span: SpanConfig{Stop: 20, Count: 201},
		},
		"large": {
			Model: "pendulum", Method: "dormand_prince", StepSize: 0.01,
			Y0:   []float64{2.5, 0},
			Span: SpanConfig{Stop: 20, Count: 201},
		},
	},
	"vanderpol": {
		"relaxation": {
			Model: "vanderpol", Method: "dormand_prince", StepSize: 0.005,
			Params: map[string]float64{"mu": 5},
			Span:   SpanConfig{Stop: 40, Count: 401},
		},
	},
	"lorenz": {
		"chaos": {
			Model: "lorenz", Method: "rk4", StepSize: 0.005,
			Span: SpanConfig{Stop: 40, Count: 801},
		},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(model, preset string) *Config {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	cfg, ok := modelPresets[preset]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets(model string) []string {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(modelPresets))
	for name := range modelPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
