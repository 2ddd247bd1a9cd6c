package models

import (
	"fmt"
	"sort"
)

var factories = map[string]func() System{
	"decay":      func() System { return NewDecay() },
	"tv_decay":   func() System { return NewTimeVaryingDecay() },
	"oscillator": func() System { return NewOscillator() },
	"mass_chain": func() System { return NewMassChain(5) },
	"pendulum":   func() System { return NewPendulum() },
	"vanderpol":  func() System { return NewVanDerPol() },
	"lorenz":     func() System { return NewLorenz() },
}

// Get builds the named model and applies params to it.
func Get(name string, params map[string]float64) (System, error) {
	fn, ok := factories[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownModel, name)
	}
	sys := fn()
	if err := ApplyParams(sys, params); err != nil {
		return nil, err
	}
	return sys, nil
}

func List() []string {
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsLinear reports whether sys exposes A(t) and can be used with implicit
// methods.
func IsLinear(sys System) bool {
	_, ok := sys.(Linear)
	return ok
}
