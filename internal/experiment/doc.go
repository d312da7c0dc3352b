// Package experiment wires a configuration to the model and integrator
// registries and runs every configured integrator side by side.
package experiment
