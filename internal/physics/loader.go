package physics

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/trajsim/internal/manifold"
)

// ErrNoModelInformation is returned for empty model files.
var ErrNoModelInformation = errors.New("no model information")

// ModelFile is the on-disk description of a serial-chain model. The same
// layout is accepted as JSON and YAML.
type ModelFile struct {
	Name    string        `json:"name" yaml:"name"`
	Gravity []float64     `json:"gravity,omitempty" yaml:"gravity,omitempty"`
	Joints  []JointConfig `json:"joints" yaml:"joints"`
}

type JointConfig struct {
	Name   string       `json:"name" yaml:"name"`
	Type   string       `json:"type,omitempty" yaml:"type,omitempty"`
	Origin OriginConfig `json:"origin" yaml:"origin"`
	Axis   []float64    `json:"axis" yaml:"axis"`
	Limit  *LimitConfig `json:"limit,omitempty" yaml:"limit,omitempty"`
	Link   LinkConfig   `json:"link" yaml:"link"`
}

type OriginConfig struct {
	XYZ []float64 `json:"xyz,omitempty" yaml:"xyz,omitempty"`
	RPY []float64 `json:"rpy,omitempty" yaml:"rpy,omitempty"`
}

type LimitConfig struct {
	Lower float64 `json:"lower" yaml:"lower"`
	Upper float64 `json:"upper" yaml:"upper"`
}

type LinkConfig struct {
	Name    string        `json:"name" yaml:"name"`
	Mass    float64       `json:"mass" yaml:"mass"`
	COM     []float64     `json:"com,omitempty" yaml:"com,omitempty"`
	Inertia InertiaConfig `json:"inertia" yaml:"inertia"`
}

type InertiaConfig struct {
	IXX float64 `json:"ixx" yaml:"ixx"`
	IXY float64 `json:"ixy,omitempty" yaml:"ixy,omitempty"`
	IXZ float64 `json:"ixz,omitempty" yaml:"ixz,omitempty"`
	IYY float64 `json:"iyy" yaml:"iyy"`
	IYZ float64 `json:"iyz,omitempty" yaml:"iyz,omitempty"`
	IZZ float64 `json:"izz" yaml:"izz"`
}

// UnmarshalModelJSON parses a JSON model file.
func UnmarshalModelJSON(data []byte) (*Model, error) {
	if len(data) == 0 {
		return nil, ErrNoModelInformation
	}
	var mf ModelFile
	if err := json.Unmarshal(data, &mf); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal json model")
	}
	return mf.Build()
}

// UnmarshalModelYAML parses a YAML model file.
func UnmarshalModelYAML(data []byte) (*Model, error) {
	if len(data) == 0 {
		return nil, ErrNoModelInformation
	}
	var mf ModelFile
	if err := yaml.Unmarshal(data, &mf); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal yaml model")
	}
	return mf.Build()
}

// LoadModelFile reads a model file, choosing the decoder by extension.
func LoadModelFile(path string) (*Model, error) {
	//nolint:gosec
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read model file")
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return UnmarshalModelJSON(data)
	case ".yaml", ".yml":
		return UnmarshalModelYAML(data)
	default:
		return nil, errors.Errorf("unsupported model file extension %q", filepath.Ext(path))
	}
}

// Build converts the file description into a Model.
func (mf *ModelFile) Build() (*Model, error) {
	gravity, err := toVec3("gravity", mf.Gravity, StandardGravity)
	if err != nil {
		return nil, err
	}

	joints := make([]JointSpec, 0, len(mf.Joints))
	for _, jc := range mf.Joints {
		js, err := jc.spec()
		if err != nil {
			return nil, errors.Wrapf(err, "joint %q", jc.Name)
		}
		joints = append(joints, js)
	}

	return NewModel(mf.Name, gravity, joints)
}

func (jc JointConfig) spec() (JointSpec, error) {
	kind, err := manifold.ParseJointKind(jc.Type)
	if err != nil {
		return JointSpec{}, err
	}
	origin, err := toVec3("origin.xyz", jc.Origin.XYZ, mgl64.Vec3{})
	if err != nil {
		return JointSpec{}, err
	}
	rpy, err := toVec3("origin.rpy", jc.Origin.RPY, mgl64.Vec3{})
	if err != nil {
		return JointSpec{}, err
	}
	axis, err := toVec3("axis", jc.Axis, mgl64.Vec3{0, 0, 1})
	if err != nil {
		return JointSpec{}, err
	}
	com, err := toVec3("link.com", jc.Link.COM, mgl64.Vec3{})
	if err != nil {
		return JointSpec{}, err
	}

	in := jc.Link.Inertia
	js := JointSpec{
		Name:   jc.Name,
		Link:   jc.Link.Name,
		Kind:   kind,
		Origin: origin,
		RPY:    rpy,
		Axis:   axis,
		Inertia: Inertia{
			Mass: jc.Link.Mass,
			COM:  com,
			// mgl64 matrices are column-major.
			Tensor: mgl64.Mat3{
				in.IXX, in.IXY, in.IXZ,
				in.IXY, in.IYY, in.IYZ,
				in.IXZ, in.IYZ, in.IZZ,
			},
		},
	}
	if jc.Limit != nil {
		js.Lower, js.Upper = jc.Limit.Lower, jc.Limit.Upper
	}
	return js, nil
}

func toVec3(field string, v []float64, def mgl64.Vec3) (mgl64.Vec3, error) {
	switch len(v) {
	case 0:
		return def, nil
	case 3:
		return mgl64.Vec3{v[0], v[1], v[2]}, nil
	default:
		return mgl64.Vec3{}, errors.Errorf("%s must have 3 components, got %d", field, len(v))
	}
}

// File converts m back into its on-disk description.
func (m *Model) File() *ModelFile {
	mf := &ModelFile{
		Name:    m.name,
		Gravity: []float64{m.gravity.X(), m.gravity.Y(), m.gravity.Z()},
		Joints:  make([]JointConfig, len(m.joints)),
	}
	for i, j := range m.joints {
		t := j.Inertia.Tensor
		jc := JointConfig{
			Name: j.Name,
			Type: j.Kind.String(),
			Origin: OriginConfig{
				XYZ: []float64{j.Origin.X(), j.Origin.Y(), j.Origin.Z()},
				RPY: []float64{j.RPY.X(), j.RPY.Y(), j.RPY.Z()},
			},
			Axis: []float64{j.Axis.X(), j.Axis.Y(), j.Axis.Z()},
			Link: LinkConfig{
				Name: j.Link,
				Mass: j.Inertia.Mass,
				COM:  []float64{j.Inertia.COM.X(), j.Inertia.COM.Y(), j.Inertia.COM.Z()},
				Inertia: InertiaConfig{
					IXX: t.At(0, 0), IXY: t.At(0, 1), IXZ: t.At(0, 2),
					IYY: t.At(1, 1), IYZ: t.At(1, 2), IZZ: t.At(2, 2),
				},
			},
		}
		if j.Lower < j.Upper {
			jc.Limit = &LimitConfig{Lower: j.Lower, Upper: j.Upper}
		}
		mf.Joints[i] = jc
	}
	return mf
}
