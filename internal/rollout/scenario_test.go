package rollout_test

import (
	"context"
	"errors"
	"math"
	"math/rand"

	"github.com/google/go-cmp/cmp"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/trajsim/internal/control"
	"github.com/san-kum/trajsim/internal/dynamo"
	"github.com/san-kum/trajsim/internal/integrators"
	"github.com/san-kum/trajsim/internal/metrics"
	"github.com/san-kum/trajsim/internal/physics"
	"github.com/san-kum/trajsim/internal/rollout"
	"github.com/san-kum/trajsim/internal/solver"
)

var _ = Describe("UR5 free fall", Ordered, func() {
	const (
		nsteps = 500
		dt     = 0.01
	)

	var (
		dyn     *physics.FreeFwdDynamics
		x0      dynamo.State
		us      []dynamo.Control
		rk2Traj *dynamo.Trajectory
		midTraj *dynamo.Trajectory
	)

	BeforeAll(func() {
		var err error
		dyn, err = physics.NewFreeFwdDynamics(physics.UR5(), nil)
		Expect(err).NotTo(HaveOccurred())

		x0 = dyn.Space().Rand(rand.New(rand.NewSource(20240611)))
		us = control.Zeros(nsteps, dyn.NU())

		rk2, err := integrators.NewRK2(dyn, dt)
		Expect(err).NotTo(HaveOccurred())
		rk2Traj, err = rollout.Rollout(context.Background(), rk2, x0, us)
		Expect(err).NotTo(HaveOccurred())

		mid, err := integrators.NewMidpoint(dyn, dt)
		Expect(err).NotTo(HaveOccurred())
		midTraj, err = rollout.RolloutImplicit(context.Background(), dyn.Space(), mid, x0, us)
		Expect(err).NotTo(HaveOccurred())
	})

	It("returns one more state than controls", func() {
		Expect(rk2Traj.States).To(HaveLen(nsteps + 1))
		Expect(midTraj.States).To(HaveLen(nsteps + 1))
		Expect(metrics.TimeGrid(nsteps, dt)).To(HaveLen(nsteps + 1))
	})

	It("keeps mechanical energy bounded for both schemes", func() {
		rk2E := metrics.EnergySeries(dyn, rk2Traj)
		midE := metrics.EnergySeries(dyn, midTraj)

		e0 := rk2E[0]
		Expect(midE[0]).To(Equal(e0))
		bound := 0.1 * math.Max(math.Abs(e0), 10)

		for _, e := range rk2E {
			Expect(math.IsNaN(e) || math.IsInf(e, 0)).To(BeFalse())
		}
		Expect(metrics.Summarize(rk2E).MaxDrift).To(BeNumerically("<=", bound))
		Expect(metrics.Summarize(midE).MaxDrift).To(BeNumerically("<=", bound))
		Expect(rk2E[nsteps]).To(BeNumerically("~", midE[nsteps], bound))
	})

	It("computes the energy series idempotently", func() {
		Expect(cmp.Equal(metrics.EnergySeries(dyn, midTraj), metrics.EnergySeries(dyn, midTraj))).To(BeTrue())
	})

	It("reproduces the rollout bit for bit", func() {
		rk2, err := integrators.NewRK2(dyn, dt)
		Expect(err).NotTo(HaveOccurred())
		again, err := rollout.Rollout(context.Background(), rk2, x0, us)
		Expect(err).NotTo(HaveOccurred())
		Expect(cmp.Diff(rk2Traj, again)).To(BeEmpty())
	})
})

var _ = Describe("Invalid timestep", func() {
	It("is rejected before any step runs", func() {
		_, err := integrators.NewRK2(physics.NewPendulum(), -0.01)
		Expect(errors.Is(err, dynamo.ErrInvalidArgument)).To(BeTrue())

		_, err = integrators.NewMidpoint(physics.NewPendulum(), -0.01)
		Expect(errors.Is(err, dynamo.ErrInvalidArgument)).To(BeTrue())
	})
})

var _ = Describe("Stiff oscillator", func() {
	const (
		stiffness = 1e4
		dt        = 0.1
	)

	var (
		dyn *physics.MassChain
		mid *integrators.Midpoint
		x0  dynamo.State
		us  []dynamo.Control
	)

	BeforeEach(func() {
		var err error
		dyn = physics.NewStiffOscillator(stiffness)
		mid, err = integrators.NewMidpoint(dyn, dt)
		Expect(err).NotTo(HaveOccurred())
		x0 = dynamo.State{1, 0}
		us = control.Zeros(10, 1)
	})

	Context("with fixed-point iteration", func() {
		var engine *rollout.Engine

		BeforeEach(func() {
			engine = rollout.New(rollout.WithSolver(solver.Options{
				Method:        solver.FixedPoint,
				MaxIterations: 20,
				Tolerance:     1e-9,
			}))
		})

		It("fails to converge at the first step", func() {
			traj, err := engine.Implicit(context.Background(), dyn.Space(), mid, x0, us)
			Expect(traj).To(BeNil())
			Expect(errors.Is(err, dynamo.ErrNonConvergence)).To(BeTrue())

			var se *dynamo.StepError
			Expect(errors.As(err, &se)).To(BeTrue())
			Expect(se.Step).To(Equal(0))

			var nc *dynamo.NonConvergenceError
			Expect(errors.As(err, &nc)).To(BeTrue())
			Expect(nc.Iterations).To(Equal(20))
		})

		It("fails the same way every time", func() {
			_, first := engine.Implicit(context.Background(), dyn.Space(), mid, x0, us)
			_, second := engine.Implicit(context.Background(), dyn.Space(), mid, x0, us)
			Expect(second.Error()).To(Equal(first.Error()))
		})
	})

	Context("with Newton iteration", func() {
		It("converges and conserves the quadratic energy", func() {
			traj, err := rollout.New().Implicit(context.Background(), dyn.Space(), mid, x0, us)
			Expect(err).NotTo(HaveOccurred())

			series := metrics.EnergySeries(dyn, traj)
			Expect(metrics.Summarize(series).RelDrift).To(BeNumerically("<", 1e-6))
			for _, it := range traj.SolverIterations {
				Expect(it).To(BeNumerically("<=", solver.DefaultOptions().MaxIterations))
			}
		})
	})
})
