package physics

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/trajsim/internal/dynamo"
	"github.com/san-kum/trajsim/internal/manifold"
)

// Inertia is the mass distribution of one link, expressed in the link frame.
type Inertia struct {
	Mass float64
	COM  mgl64.Vec3
	// Tensor is taken about the center of mass.
	Tensor mgl64.Mat3
}

// JointSpec describes one joint of a serial chain and the link it carries.
// The joint frame is the parent frame translated by Origin, rotated by RPY
// (roll about x, then pitch about y, then yaw about z) and finally rotated
// by the joint angle about Axis. The child link is rigidly attached to it.
type JointSpec struct {
	Name    string
	Link    string
	Kind    manifold.JointKind
	Origin  mgl64.Vec3
	RPY     mgl64.Vec3
	Axis    mgl64.Vec3
	Lower   float64
	Upper   float64
	Inertia Inertia
}

// Model is a serial-chain rigid-body model with a fixed base.
type Model struct {
	name    string
	joints  []JointSpec
	gravity mgl64.Vec3
	space   *manifold.Multibody
	fixed   []mgl64.Mat3
}

func NewModel(name string, gravity mgl64.Vec3, joints []JointSpec) (*Model, error) {
	if len(joints) == 0 {
		return nil, fmt.Errorf("%w: model %q has no joints", dynamo.ErrInvalidArgument, name)
	}

	m := &Model{
		name:    name,
		gravity: gravity,
		joints:  make([]JointSpec, len(joints)),
		fixed:   make([]mgl64.Mat3, len(joints)),
	}
	mj := make([]manifold.Joint, len(joints))

	for i, j := range joints {
		if j.Axis.Len() == 0 {
			return nil, fmt.Errorf("%w: joint %q has a zero axis", dynamo.ErrInvalidArgument, j.Name)
		}
		if j.Inertia.Mass < 0 {
			return nil, fmt.Errorf("%w: link %q has negative mass", dynamo.ErrInvalidArgument, j.Link)
		}
		j.Axis = j.Axis.Normalize()
		m.joints[i] = j
		m.fixed[i] = rpyToMat(j.RPY)
		mj[i] = manifold.Joint{Kind: j.Kind, Lower: j.Lower, Upper: j.Upper}
	}

	m.space = manifold.NewMultibody(mj...)
	return m, nil
}

func (m *Model) Name() string               { return m.name }
func (m *Model) NV() int                    { return len(m.joints) }
func (m *Model) Joints() []JointSpec        { return m.joints }
func (m *Model) Gravity() mgl64.Vec3        { return m.gravity }
func (m *Model) Space() *manifold.Multibody { return m.space }

func rpyToMat(rpy mgl64.Vec3) mgl64.Mat3 {
	return mgl64.Rotate3DZ(rpy.Z()).Mul3(mgl64.Rotate3DY(rpy.Y())).Mul3(mgl64.Rotate3DX(rpy.X()))
}

// rotations returns, per joint, the rotation taking joint-frame coordinates
// to parent-frame coordinates.
func (m *Model) rotations(q []float64) []mgl64.Mat3 {
	angles := m.space.Angles(q)
	rs := make([]mgl64.Mat3, len(m.joints))
	for i, j := range m.joints {
		rs[i] = m.fixed[i].Mul3(mgl64.QuatRotate(angles[i], j.Axis).Mat4().Mat3())
	}
	return rs
}

// rnea is the recursive Newton-Euler algorithm in link coordinates. Gravity
// enters as a fictitious upward acceleration of the base.
func (m *Model) rnea(rs []mgl64.Mat3, v, a []float64, gravity mgl64.Vec3) []float64 {
	n := len(m.joints)
	forces := make([]mgl64.Vec3, n)
	moments := make([]mgl64.Vec3, n)

	var w, dw mgl64.Vec3
	acc := gravity.Mul(-1)

	for i, j := range m.joints {
		rt := rs[i].Transpose()
		z := j.Axis
		p := j.Origin

		wp := rt.Mul3x1(w)
		wi := wp.Add(z.Mul(v[i]))
		dwi := rt.Mul3x1(dw).Add(wp.Cross(z.Mul(v[i]))).Add(z.Mul(a[i]))
		acc = rt.Mul3x1(acc.Add(dw.Cross(p)).Add(w.Cross(w.Cross(p))))

		c := j.Inertia.COM
		ac := acc.Add(dwi.Cross(c)).Add(wi.Cross(wi.Cross(c)))
		inertia := j.Inertia.Tensor

		forces[i] = ac.Mul(j.Inertia.Mass)
		moments[i] = inertia.Mul3x1(dwi).Add(wi.Cross(inertia.Mul3x1(wi)))

		w, dw = wi, dwi
	}

	tau := make([]float64, n)
	var f, nm mgl64.Vec3
	for i := n - 1; i >= 0; i-- {
		fi := forces[i]
		ni := moments[i].Add(m.joints[i].Inertia.COM.Cross(forces[i]))
		if i+1 < n {
			fc := rs[i+1].Mul3x1(f)
			fi = fi.Add(fc)
			ni = ni.Add(rs[i+1].Mul3x1(nm)).Add(m.joints[i+1].Origin.Cross(fc))
		}
		tau[i] = ni.Dot(m.joints[i].Axis)
		f, nm = fi, ni
	}
	return tau
}

// InverseDynamics returns the joint torques producing acceleration a at x.
func (m *Model) InverseDynamics(x dynamo.State, a []float64) []float64 {
	q, v := manifold.Split(m.space, x)
	return m.rnea(m.rotations(q), v, a, m.gravity)
}

// MassMatrix returns the joint-space inertia matrix M(q).
func (m *Model) MassMatrix(q []float64) *mat.SymDense {
	return m.massMatrix(m.rotations(q))
}

func (m *Model) massMatrix(rs []mgl64.Mat3) *mat.SymDense {
	n := len(m.joints)
	zero := make([]float64, n)
	unit := make([]float64, n)
	cols := make([][]float64, n)
	for k := range cols {
		unit[k] = 1
		cols[k] = m.rnea(rs, zero, unit, mgl64.Vec3{})
		unit[k] = 0
	}

	M := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for k := i; k < n; k++ {
			M.SetSym(i, k, 0.5*(cols[k][i]+cols[i][k]))
		}
	}
	return M
}

// Bias returns the Coriolis, centrifugal and gravity torques b(q, v).
func (m *Model) Bias(x dynamo.State) []float64 {
	q, v := manifold.Split(m.space, x)
	return m.rnea(m.rotations(q), v, make([]float64, len(v)), m.gravity)
}

// FramePositions returns the world position of the base followed by the
// origin of every joint frame.
func (m *Model) FramePositions(q []float64) []mgl64.Vec3 {
	rs := m.rotations(q)
	out := make([]mgl64.Vec3, 0, len(m.joints)+1)
	var pos mgl64.Vec3
	rot := mgl64.Ident3()
	out = append(out, pos)
	for i, j := range m.joints {
		pos = pos.Add(rot.Mul3x1(j.Origin))
		rot = rot.Mul3(rs[i])
		out = append(out, pos)
	}
	return out
}

// Energy returns kinetic plus gravitational potential energy, with the
// potential measured from the base origin.
func (m *Model) Energy(x dynamo.State) float64 {
	q, v := manifold.Split(m.space, x)
	rs := m.rotations(q)

	var w, vel, pos mgl64.Vec3
	rot := mgl64.Ident3()
	ke, pe := 0.0, 0.0

	for i, j := range m.joints {
		rt := rs[i].Transpose()
		vel = rt.Mul3x1(vel.Add(w.Cross(j.Origin)))
		w = rt.Mul3x1(w).Add(j.Axis.Mul(v[i]))
		pos = pos.Add(rot.Mul3x1(j.Origin))
		rot = rot.Mul3(rs[i])

		c := j.Inertia.COM
		vc := vel.Add(w.Cross(c))
		ke += 0.5 * (j.Inertia.Mass*vc.Dot(vc) + w.Dot(j.Inertia.Tensor.Mul3x1(w)))
		pe -= j.Inertia.Mass * m.gravity.Dot(pos.Add(rot.Mul3x1(c)))
	}
	return ke + pe
}
