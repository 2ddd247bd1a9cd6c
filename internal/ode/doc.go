// Package ode provides the integration state and time-marching driver shared
// by every Runge-Kutta stepper.
//
// The package defines:
//
//   - [State]: vector representing the value of the system at one instant
//   - [Func]: right-hand side dy/dt = f(y, t) consumed by explicit steppers
//   - [CoefficientFunc]: coefficient matrix A(t) for linear systems dy/dt = A(t)y
//   - [Stepper]: single-step capability implemented by concrete methods
//   - [Solver]: owns y, t and the step size and marches to target times
//
// # Example
//
//	stepper, _ := integrators.NewExplicit(tableau.RK4())
//	s, _ := ode.New[ode.Func](stepper, ode.WithStepSize(0.01))
//	s.SetFunc(func(y ode.State, t float64) ode.State { return ode.State{-y[0]} })
//	_ = s.SetState(ode.State{1}, 0)
//	res, _ := s.SolveTimes(ctx, []float64{0.5, 1})
//
// # Thread Safety
//
// Solver instances are NOT thread-safe. Integrate independent systems with one
// Solver per system.
package ode
