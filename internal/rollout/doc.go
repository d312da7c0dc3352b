// Package rollout runs discrete integrators over open-loop control
// sequences.
//
// A rollout of n controls returns n+1 states starting at x0. Inputs are
// validated before the first step; any step failure aborts the whole rollout
// with a [dynamo.StepError] and no partial trajectory. The engine draws no
// random numbers, so repeated rollouts are bit-identical.
package rollout
