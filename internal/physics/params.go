package physics

import (
	"fmt"

	"github.com/san-kum/trajsim/internal/dynamo"
)

// param binds a public parameter name to a model field.
type param struct {
	name string
	ptr  *float64
}

type paramTable []param

func (t paramTable) get() map[string]float64 {
	out := make(map[string]float64, len(t))
	for _, p := range t {
		out[p.name] = *p.ptr
	}
	return out
}

func (t paramTable) set(name string, value float64) error {
	for _, p := range t {
		if p.name == name {
			*p.ptr = value
			return nil
		}
	}
	return fmt.Errorf("%w: unknown param %q", dynamo.ErrInvalidArgument, name)
}

// SetParams applies every entry of params to m, stopping at the first
// unknown name.
func SetParams(m dynamo.Configurable, params map[string]float64) error {
	for name, v := range params {
		if err := m.SetParam(name, v); err != nil {
			return err
		}
	}
	return nil
}
