// Package dynamo provides the core primitives shared by every rollout
// component.
//
// The package defines the vocabulary types and capability interfaces:
//
//   - [State], [Control]: plain vectors
//   - [Space], [PhaseSpace]: state manifolds with retraction and difference
//   - [Dynamics]: second-order forward dynamics a = f(q, v, u)
//   - [Explicit], [Implicit]: one-step discrete integrators
//   - [Trajectory]: the output of a rollout
//
// # Example
//
//	model := physics.UR5()
//	dyn, _ := physics.NewFreeFwdDynamics(model, nil)
//	integ, _ := integrators.NewRK2(dyn, 0.01)
//	traj, err := rollout.Rollout(ctx, integ, x0, control.Zeros(500, dyn.NU()))
//
// # Errors
//
// Every failure is classified by one of [ErrInvalidArgument],
// [ErrNonConvergence] or [ErrDomain]; rollouts wrap step failures in a
// [StepError] carrying the failing index.
package dynamo
