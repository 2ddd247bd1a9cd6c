package metrics

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/rungekutta/internal/ode"
)

// Stability is the fraction of rows whose largest component stays within
// threshold and is finite.
type Stability struct {
	threshold  float64
	violations int
	samples    int
}

func NewStability(threshold float64) *Stability {
	return &Stability{threshold: threshold}
}

func (s *Stability) Name() string { return "stability" }

func (s *Stability) Observe(y ode.State, _ float64) {
	s.samples++
	if !y.IsValid() || floats.Norm(y, math.Inf(1)) > s.threshold {
		s.violations++
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}
