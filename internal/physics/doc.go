// Package physics provides continuous second-order dynamics models.
//
// Each model implements [dynamo.Dynamics], returning the generalized
// acceleration for a state and control:
//
//   - [FreeFwdDynamics]: a serial-chain [Model] (e.g. [UR5]) driven through
//     an actuation matrix, solved with recursive Newton-Euler and Cholesky
//   - [Pendulum], [MassChain], [DoubleWell]: small analytic models
//
// [LinearDiscrete] is the exception: it is already discrete and satisfies
// [dynamo.Explicit] without an integrator.
//
// Models also implement [dynamo.Hamiltonian] for energy diagnostics and,
// for the analytic ones, [dynamo.Configurable]:
//
//	dyn, _ := physics.NewFreeFwdDynamics(physics.UR5(), nil)
//	energy := dyn.Energy(x)
package physics
