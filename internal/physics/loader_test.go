package physics

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/trajsim/internal/dynamo"
)

const twoLinkJSON = `{
  "name": "two_link",
  "gravity": [0, 0, -9.81],
  "joints": [
    {
      "name": "j0",
      "type": "continuous",
      "axis": [0, 1, 0],
      "link": {"name": "l0", "mass": 1.0, "com": [0, 0, -0.5], "inertia": {"ixx": 0.01, "iyy": 0.01, "izz": 0.01}}
    },
    {
      "name": "j1",
      "origin": {"xyz": [0, 0, -1]},
      "axis": [0, 1, 0],
      "limit": {"lower": -1.5, "upper": 1.5},
      "link": {"name": "l1", "mass": 0.5, "com": [0, 0, -0.5], "inertia": {"ixx": 0.01, "iyy": 0.01, "izz": 0.01}}
    }
  ]
}`

func TestUnmarshalModelJSON(t *testing.T) {
	m, err := UnmarshalModelJSON([]byte(twoLinkJSON))
	if err != nil {
		t.Fatalf("UnmarshalModelJSON: %v", err)
	}

	if m.Name() != "two_link" || m.NV() != 2 {
		t.Errorf("got name %q nv %d", m.Name(), m.NV())
	}
	// continuous joint stores (cos, sin)
	if got := m.Space().NQ(); got != 3 {
		t.Errorf("NQ() = %d, want 3", got)
	}
	if j := m.Joints()[1]; j.Lower != -1.5 || j.Upper != 1.5 {
		t.Errorf("limits = [%f, %f]", j.Lower, j.Upper)
	}
}

func TestUnmarshalModelErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{"bad json", `{"name": `, "failed to unmarshal json model"},
		{"bad joint type", `{"name": "x", "joints": [{"name": "j", "type": "prismatic"}]}`, "prismatic"},
		{"short axis", `{"name": "x", "joints": [{"name": "j", "axis": [1, 0]}]}`, "axis must have 3 components"},
		{"no joints", `{"name": "x"}`, "no joints"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnmarshalModelJSON([]byte(tt.data))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want it to contain %q", err, tt.want)
			}
		})
	}

	if _, err := UnmarshalModelYAML(nil); !errors.Is(err, ErrNoModelInformation) {
		t.Errorf("empty yaml: got %v", err)
	}
	if _, err := UnmarshalModelJSON([]byte(`{"name": "x", "joints": [{"name": "j", "type": "ball"}]}`)); !errors.Is(err, dynamo.ErrInvalidArgument) {
		t.Errorf("wrapped error lost its class: %v", err)
	}
}

func TestModelFileRoundTrip(t *testing.T) {
	ur5 := UR5()
	data, err := yaml.Marshal(ur5.File())
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "ur5.yaml")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	loaded, err := LoadModelFile(path)
	if err != nil {
		t.Fatalf("LoadModelFile: %v", err)
	}

	q := []float64{0.1, -0.4, 0.9, 0.2, -1.1, 0.5}
	want, got := ur5.MassMatrix(q), loaded.MassMatrix(q)
	for i := 0; i < 6; i++ {
		for j := 0; j < 6; j++ {
			if math.Abs(want.At(i, j)-got.At(i, j)) > 1e-12 {
				t.Fatalf("M[%d][%d] = %g, want %g", i, j, got.At(i, j), want.At(i, j))
			}
		}
	}
}

func TestLoadModelFileExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.toml")
	if err := os.WriteFile(path, []byte("name = 'x'"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadModelFile(path); err == nil {
		t.Error("expected error for unsupported extension")
	}
	if _, err := LoadModelFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}
