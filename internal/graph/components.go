package graph

import (
	"github.com/scenewire/scenewire/internal/meta"
	"github.com/scenewire/scenewire/internal/wire"
)

// Actor carries the entity-level reflected fields shared by the standard
// entity classes.
type Actor struct {
	Mobility string `scene:"enum=Static|Stationary|Movable,category=Actor"`
	Hidden   bool   `scene:"category=Actor"`
}

// TransformComponent places its owner in the world.
type TransformComponent struct {
	Location wire.Vector3 `scene:"category=Transform"`
	Rotation wire.Rotator `scene:"category=Transform"`
	Scale    wire.Vector3 `scene:"category=Transform"`
}

// LightComponent is a light emitter.
type LightComponent struct {
	Intensity   float64    `scene:"category=Light"`
	Color       wire.Color `scene:"category=Light"`
	Brightness  []float64  `scene:"category=Light"`
	CastShadows bool       `scene:"category=Light"`
}

// defaultBoundsRadius stands in for bounds derived from mesh geometry, which
// the reference host does not model.
const defaultBoundsRadius = 50

// MeshComponent is the mesh-bearing visual primitive. Its Mesh field must be
// written through SetMesh: the generic reflected setter does not refresh
// render state, and stale render state is exactly the bug the dedicated path
// exists to prevent.
type MeshComponent struct {
	Mesh         wire.ObjectRef   `scene:"category=Rendering"`
	Materials    []wire.ObjectRef `scene:"category=Rendering"`
	Visible      bool             `scene:"category=Rendering"`
	BoundsRadius float64          `scene:"readonly,category=Rendering"`

	renderEpoch int
}

// SetMesh assigns the mesh reference and refreshes render state and bounds.
func (c *MeshComponent) SetMesh(ref wire.ObjectRef) {
	c.Mesh = ref
	c.InvalidateRenderState()
}

func (c *MeshComponent) InvalidateRenderState() {
	c.renderEpoch++
	if c.Mesh.IsNone() {
		c.BoundsRadius = 0
	} else {
		c.BoundsRadius = defaultBoundsRadius
	}
}

// RenderStateEpoch counts render state refreshes; it only moves when the
// dedicated paths run.
func (c *MeshComponent) RenderStateEpoch() int { return c.renderEpoch }

// RegisterStandardClasses registers the built-in entity and component
// classes with a metadata registry.
func RegisterStandardClasses(reg *meta.Registry) error {
	for name, proto := range map[string]any{
		"Actor":              &Actor{},
		"TransformComponent": &TransformComponent{},
		"LightComponent":     &LightComponent{},
		"MeshComponent":      &MeshComponent{},
	} {
		if err := reg.Register(name, proto); err != nil {
			return err
		}
	}
	return nil
}

// AssetTable is a fixed path→object table backing object-reference loads in
// scene files and tests.
type AssetTable map[string]any

func (t AssetTable) LoadObject(path string) any { return t[path] }
