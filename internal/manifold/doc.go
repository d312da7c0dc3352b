// Package manifold implements the state spaces rollouts move on.
//
// [VectorSpace] is plain R^n. [Multibody] is the phase space of a serial
// joint chain: revolute joints are Euclidean, continuous joints live on the
// unit circle and are retracted by rotation, so midpoint interpolation
// between two states never leaves the manifold.
package manifold
