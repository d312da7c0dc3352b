package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/trajsim/internal/manifold"
)

// StandardGravity points down the world z axis.
var StandardGravity = mgl64.Vec3{0, 0, -9.81}

// UR5 returns the six-joint Universal Robots UR5 arm.
func UR5() *Model {
	limit := 2 * math.Pi
	wrist := mgl64.Diag3(mgl64.Vec3{0.111172755531, 0.111172755531, 0.21942})

	joints := []JointSpec{
		{
			Name:   "shoulder_pan_joint",
			Link:   "shoulder_link",
			Origin: mgl64.Vec3{0, 0, 0.089159},
			Axis:   mgl64.Vec3{0, 0, 1},
			Lower:  -limit,
			Upper:  limit,
			Inertia: Inertia{
				Mass:   3.7,
				Tensor: mgl64.Diag3(mgl64.Vec3{0.010267495893, 0.010267495893, 0.00666}),
			},
		},
		{
			Name:   "shoulder_lift_joint",
			Link:   "upper_arm_link",
			Origin: mgl64.Vec3{0, 0.13585, 0},
			RPY:    mgl64.Vec3{0, math.Pi / 2, 0},
			Axis:   mgl64.Vec3{0, 1, 0},
			Lower:  -limit,
			Upper:  limit,
			Inertia: Inertia{
				Mass:   8.393,
				COM:    mgl64.Vec3{0, 0, 0.28},
				Tensor: mgl64.Diag3(mgl64.Vec3{0.22689067591, 0.22689067591, 0.0151074}),
			},
		},
		{
			Name:   "elbow_joint",
			Link:   "forearm_link",
			Origin: mgl64.Vec3{0, -0.1197, 0.425},
			Axis:   mgl64.Vec3{0, 1, 0},
			Lower:  -math.Pi,
			Upper:  math.Pi,
			Inertia: Inertia{
				Mass:   2.275,
				COM:    mgl64.Vec3{0, 0, 0.25},
				Tensor: mgl64.Diag3(mgl64.Vec3{0.049443313556, 0.049443313556, 0.004095}),
			},
		},
		{
			Name:    "wrist_1_joint",
			Link:    "wrist_1_link",
			Origin:  mgl64.Vec3{0, 0, 0.39225},
			RPY:     mgl64.Vec3{0, math.Pi / 2, 0},
			Axis:    mgl64.Vec3{0, 1, 0},
			Lower:   -limit,
			Upper:   limit,
			Inertia: Inertia{Mass: 1.219, Tensor: wrist},
		},
		{
			Name:    "wrist_2_joint",
			Link:    "wrist_2_link",
			Origin:  mgl64.Vec3{0, 0.093, 0},
			Axis:    mgl64.Vec3{0, 0, 1},
			Lower:   -limit,
			Upper:   limit,
			Inertia: Inertia{Mass: 1.219, Tensor: wrist},
		},
		{
			Name:   "wrist_3_joint",
			Link:   "wrist_3_link",
			Origin: mgl64.Vec3{0, 0, 0.09465},
			Axis:   mgl64.Vec3{0, 1, 0},
			Lower:  -limit,
			Upper:  limit,
			Inertia: Inertia{
				Mass:   0.1879,
				Tensor: mgl64.Diag3(mgl64.Vec3{0.0171364731454, 0.0171364731454, 0.033822}),
			},
		},
	}

	for i := range joints {
		joints[i].Kind = manifold.Revolute
	}

	m, err := NewModel("ur5", StandardGravity, joints)
	if err != nil {
		panic(err)
	}
	return m
}
