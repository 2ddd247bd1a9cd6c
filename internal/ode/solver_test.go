package ode_test

import (
	"context"
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/rungekutta/internal/ode"
)

// euler is the smallest Stepper: y + h*f(y, t).
type euler struct {
	calls  int
	failAt int
	short  bool
}

var errBoom = errors.New("boom")

func (e *euler) Step(f ode.Func, y ode.State, t, h float64) (ode.State, error) {
	e.calls++
	if e.failAt > 0 && e.calls == e.failAt {
		return nil, errBoom
	}
	if e.short {
		return ode.State{}, nil
	}
	dy := f(y, t)
	next := make(ode.State, len(y))
	for i := range y {
		next[i] = y[i] + h*dy[i]
	}
	return next, nil
}

func decay(y ode.State, t float64) ode.State  { return ode.State{-y[0]} }
func growth(y ode.State, t float64) ode.State { return ode.State{y[0]} }

var _ = Describe("Solver", func() {
	var (
		stepper *euler
		s       *ode.Solver[ode.Func]
		ctx     context.Context
	)

	BeforeEach(func() {
		var err error
		ctx = context.Background()
		stepper = &euler{}
		s, err = ode.New[ode.Func](stepper, ode.WithStepSize(0.25))
		Expect(err).NotTo(HaveOccurred())
		s.SetFunc(decay)
	})

	Describe("construction", func() {
		It("defaults the step size", func() {
			d, err := ode.New[ode.Func](stepper)
			Expect(err).NotTo(HaveOccurred())
			Expect(d.StepSize()).To(Equal(ode.DefaultStepSize))
		})

		DescribeTable("rejects invalid step sizes",
			func(h float64) {
				_, err := ode.New[ode.Func](stepper, ode.WithStepSize(h))
				Expect(err).To(MatchError(ode.ErrStepSize))
			},
			Entry("zero", 0.0),
			Entry("negative", -0.1),
			Entry("NaN", math.NaN()),
			Entry("infinite", math.Inf(1)),
		)
	})

	Describe("state", func() {
		It("reports unset state", func() {
			_, _, ok := s.State()
			Expect(ok).To(BeFalse())

			_, _, err := s.Step()
			Expect(err).To(MatchError(ode.ErrStateUnset))
			Expect(stepper.calls).To(BeZero())
		})

		It("copies the caller's vector", func() {
			y := ode.State{1, 2}
			Expect(s.SetState(y, 3)).To(Succeed())
			y[0] = 99

			got, t, ok := s.State()
			Expect(ok).To(BeTrue())
			Expect(got).To(Equal(ode.State{1, 2}))
			Expect(t).To(Equal(3.0))
		})

		It("rejects empty and non-finite vectors", func() {
			Expect(s.SetState(ode.State{}, 0)).To(MatchError(ode.ErrInvalidState))
			Expect(s.SetState(ode.State{math.NaN()}, 0)).To(MatchError(ode.ErrInvalidState))
			Expect(s.SetState(ode.State{1}, math.Inf(-1))).To(MatchError(ode.ErrInvalidState))
		})
	})

	Describe("Step", func() {
		BeforeEach(func() {
			Expect(s.SetState(ode.State{1}, 0)).To(Succeed())
		})

		It("advances by exactly one step", func() {
			y, t, err := s.Step()
			Expect(err).NotTo(HaveOccurred())
			Expect(y).To(Equal(ode.State{0.75}))
			Expect(t).To(Equal(0.25))
			Expect(s.Steps()).To(Equal(1))
		})

		It("returns a copy of the state", func() {
			y, _, err := s.Step()
			Expect(err).NotTo(HaveOccurred())
			y[0] = 42

			got, _, _ := s.State()
			Expect(got).To(Equal(ode.State{0.75}))
		})

		It("applies a new step size immediately", func() {
			_, _, err := s.Step()
			Expect(err).NotTo(HaveOccurred())
			Expect(s.SetStepSize(0.5)).To(Succeed())

			_, t, err := s.Step()
			Expect(err).NotTo(HaveOccurred())
			Expect(t).To(Equal(0.75))
		})

		It("rejects a non-positive step size and keeps the old one", func() {
			Expect(s.SetStepSize(0)).To(MatchError(ode.ErrStepSize))
			Expect(s.SetStepSize(-1)).To(MatchError(ode.ErrStepSize))
			Expect(s.StepSize()).To(Equal(0.25))
		})

		It("leaves state untouched when the stepper fails", func() {
			stepper.failAt = 2
			_, _, err := s.Step()
			Expect(err).NotTo(HaveOccurred())

			_, _, err = s.Step()
			Expect(err).To(MatchError(errBoom))

			var stepErr *ode.StepError
			Expect(errors.As(err, &stepErr)).To(BeTrue())
			Expect(stepErr.Step).To(Equal(1))
			Expect(stepErr.Time).To(Equal(0.25))

			y, t, _ := s.State()
			Expect(y).To(Equal(ode.State{0.75}))
			Expect(t).To(Equal(0.25))
			Expect(s.Steps()).To(Equal(1))
		})

		It("rejects a stepper result of the wrong length", func() {
			stepper.short = true
			_, _, err := s.Step()
			Expect(err).To(MatchError(ode.ErrDimensionMismatch))

			_, t, _ := s.State()
			Expect(t).To(BeZero())
		})
	})

	Describe("SolveTimes", func() {
		BeforeEach(func() {
			Expect(s.SetState(ode.State{1}, 0)).To(Succeed())
		})

		It("records one row per target within one step past it", func() {
			targets := []float64{0.1, 0.5, 0.6, 1.3}
			res, err := s.SolveTimes(ctx, targets)
			Expect(err).NotTo(HaveOccurred())

			Expect(res.States).To(HaveLen(len(targets)))
			Expect(res.Times).To(Equal([]float64{0.25, 0.5, 0.75, 1.5}))
			Expect(res.Requested).To(Equal(targets))
			for i, target := range targets {
				Expect(res.Times[i]).To(BeNumerically(">=", target))
				Expect(res.Times[i]).To(BeNumerically("<", target+s.StepSize()))
			}
			Expect(res.StepsTaken).To(Equal(6))
			Expect(res.States[1]).To(Equal(ode.State{0.5625}))
		})

		It("records the current state for a target already reached", func() {
			res, err := s.SolveTimes(ctx, []float64{0, 1, 0.5})
			Expect(err).NotTo(HaveOccurred())

			Expect(res.Times).To(Equal([]float64{0, 1, 1}))
			Expect(res.States[0]).To(Equal(ode.State{1}))
			Expect(res.States[2]).To(Equal(res.States[1]))
		})

		It("applies overrides and keeps them", func() {
			res, err := s.SolveTimes(ctx, []float64{1.5},
				ode.WithFunc[ode.Func](growth),
				ode.WithInitialState[ode.Func](ode.State{2}),
				ode.WithInitialTime[ode.Func](1),
				ode.WithSolveStepSize[ode.Func](0.5),
			)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.States[0]).To(Equal(ode.State{3}))
			Expect(res.Times[0]).To(Equal(1.5))
			Expect(s.StepSize()).To(Equal(0.5))

			_, _, err = s.Step()
			Expect(err).NotTo(HaveOccurred())
			y, _, _ := s.State()
			Expect(y).To(Equal(ode.State{4.5}))
		})

		It("moves the clock without touching the vector", func() {
			res, err := s.SolveTimes(ctx, []float64{10.25}, ode.WithInitialTime[ode.Func](10))
			Expect(err).NotTo(HaveOccurred())
			Expect(res.StepsTaken).To(Equal(1))
			Expect(res.States[0]).To(Equal(ode.State{0.75}))
		})

		It("requires state before an initial time override", func() {
			fresh, _ := ode.New[ode.Func](&euler{}, ode.WithStepSize(0.1))
			_, err := fresh.SolveTimes(ctx, []float64{1}, ode.WithInitialTime[ode.Func](0))
			Expect(err).To(MatchError(ode.ErrStateUnset))
		})

		It("rejects invalid overrides before stepping", func() {
			_, err := s.SolveTimes(ctx, []float64{1}, ode.WithSolveStepSize[ode.Func](-0.5))
			Expect(err).To(MatchError(ode.ErrStepSize))
			Expect(stepper.calls).To(BeZero())
		})

		It("leaves the solver untouched when an override is invalid", func() {
			_, err := s.SolveTimes(ctx, []float64{1},
				ode.WithFunc[ode.Func](growth),
				ode.WithSolveStepSize[ode.Func](0.5),
				ode.WithInitialState[ode.Func](ode.State{math.NaN()}),
			)
			Expect(err).To(MatchError(ode.ErrInvalidState))
			Expect(s.StepSize()).To(Equal(0.25))

			y, t, err := s.Step()
			Expect(err).NotTo(HaveOccurred())
			Expect(t).To(Equal(0.25))
			Expect(y).To(Equal(ode.State{0.75}))
		})

		DescribeTable("rejects a step size that cannot move the clock",
			func(t0, h float64) {
				Expect(s.SetState(ode.State{1}, t0)).To(Succeed())
				Expect(s.SetStepSize(h)).To(Succeed())

				_, err := s.SolveTimes(ctx, []float64{t0 + 1000})
				Expect(err).To(MatchError(ode.ErrStepSize))
				_, _, err = s.Step()
				Expect(err).To(MatchError(ode.ErrStepSize))
				Expect(stepper.calls).To(BeZero())

				y, t, _ := s.State()
				Expect(t).To(Equal(t0))
				Expect(y).To(Equal(ode.State{1}))
			},
			Entry("large time, default step", 1e17, ode.DefaultStepSize),
			Entry("large time, step below one ulp", 1e17, 4.0),
			Entry("moderate time, tiny step", 1.0, 1e-17),
		)

		It("records targets already reached even when h cannot advance t", func() {
			Expect(s.SetState(ode.State{1}, 1e17)).To(Succeed())
			res, err := s.SolveTimes(ctx, []float64{1e17})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.States).To(Equal([]ode.State{{1}}))
		})

		It("rejects NaN and +Inf targets", func() {
			_, err := s.SolveTimes(ctx, []float64{1, math.NaN()})
			Expect(err).To(MatchError(ode.ErrInvalidTime))
			_, err = s.SolveTimes(ctx, []float64{math.Inf(1)})
			Expect(err).To(MatchError(ode.ErrInvalidTime))
			Expect(stepper.calls).To(BeZero())
		})

		It("stops on a canceled context", func() {
			canceled, cancel := context.WithCancel(ctx)
			cancel()

			res, err := s.SolveTimes(canceled, []float64{1})
			Expect(err).To(MatchError(ode.ErrCanceled))
			Expect(errors.Is(err, context.Canceled)).To(BeTrue())
			Expect(res.States).To(BeEmpty())
		})

		It("returns rows recorded before a failing step", func() {
			stepper.failAt = 3
			res, err := s.SolveTimes(ctx, []float64{0.25, 1})
			Expect(err).To(MatchError(errBoom))
			Expect(res.States).To(HaveLen(1))
			Expect(res.StepsTaken).To(Equal(2))
		})

		It("marches through the Driver interface", func() {
			var d ode.Driver = s
			res, err := d.March(ctx, []float64{0.5})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Times).To(Equal([]float64{0.5}))
			Expect(d.Steps()).To(Equal(res.StepsTaken))
		})

		It("converges as the step size shrinks", func() {
			errFor := func(h float64) float64 {
				Expect(s.SetStepSize(h)).To(Succeed())
				res, err := s.SolveTimes(ctx, []float64{1},
					ode.WithInitialState[ode.Func](ode.State{1}),
					ode.WithInitialTime[ode.Func](0))
				Expect(err).NotTo(HaveOccurred())
				return math.Abs(res.States[0][0] - math.Exp(-1))
			}

			coarse := errFor(1.0 / 8)
			fine := errFor(1.0 / 64)
			Expect(fine).To(BeNumerically("<", coarse/4))
		})
	})
})
