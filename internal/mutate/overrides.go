package mutate

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/scenewire/scenewire/internal/graph"
	"github.com/scenewire/scenewire/internal/wire"
)

// ApplyFunc writes a native value to a target through a dedicated,
// class-specific operation instead of the generic reflected setter.
type ApplyFunc func(target any, native any) error

type overrideKey struct {
	class string
	field string
}

// Overrides maps (class, field) pairs to dedicated write operations. Some
// fields cannot be written through reflection alone because only the
// class's own assignment path triggers the downstream invalidation the
// renderer depends on.
type Overrides struct {
	m map[overrideKey]ApplyFunc
}

func NewOverrides() *Overrides {
	return &Overrides{m: make(map[overrideKey]ApplyFunc)}
}

func (o *Overrides) Register(class, field string, fn ApplyFunc) {
	o.m[overrideKey{class: class, field: strings.ToLower(field)}] = fn
}

func (o *Overrides) Lookup(class, field string) (ApplyFunc, bool) {
	fn, ok := o.m[overrideKey{class: class, field: strings.ToLower(field)}]
	return fn, ok
}

// StandardOverrides routes mesh assignment on the mesh-bearing primitive
// through MeshComponent.SetMesh; the generic setter would leave its render
// state stale.
func StandardOverrides() *Overrides {
	o := NewOverrides()
	o.Register("MeshComponent", "Mesh", func(target any, native any) error {
		c, ok := target.(*graph.MeshComponent)
		if !ok {
			return errors.Errorf("mesh override: unexpected target %T", target)
		}
		ref, ok := native.(wire.ObjectRef)
		if !ok {
			return errors.Errorf("mesh override: unexpected value %T", native)
		}
		c.SetMesh(ref)
		return nil
	})
	return o
}
