// Package control builds open-loop control sequences for rollouts.
//
//	us := control.Zeros(500, 6)
//	us := control.Sine(500, 1, 0.01, 2.0, 0.5)
//
// Configuration files name a sequence with a [Spec].
package control
