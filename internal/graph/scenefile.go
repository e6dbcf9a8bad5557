package graph

import (
	"io"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/scenewire/scenewire/internal/meta"
	"github.com/scenewire/scenewire/internal/wire"
)

// SceneFile is the on-disk description of a world: an asset table for
// object references plus the entity list. Property values use the same wire
// shapes the automation protocol accepts.
type SceneFile struct {
	Assets   []string      `json:"assets,omitempty"`
	Entities []SceneEntity `json:"entities"`
}

type SceneEntity struct {
	Path       string           `json:"path"`
	Label      string           `json:"label,omitempty"`
	GUID       string           `json:"guid,omitempty"`
	Class      string           `json:"class,omitempty"`
	Tags       []string         `json:"tags,omitempty"`
	Selected   bool             `json:"selected,omitempty"`
	Document   string           `json:"document,omitempty"`
	Props      map[string]any   `json:"props,omitempty"`
	Components []SceneComponent `json:"components,omitempty"`
}

type SceneComponent struct {
	Name  string         `json:"name"`
	Class string         `json:"class"`
	Root  bool           `json:"root,omitempty"`
	Props map[string]any `json:"props,omitempty"`
}

// LoadScene decodes a scene document and builds the live world from it.
// The returned asset table backs object-reference resolution for the
// session.
func LoadScene(r io.Reader, reg *meta.Registry) (*World, AssetTable, error) {
	var doc SceneFile
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, nil, errors.Wrap(err, "decode scene")
	}
	return BuildWorld(&doc, reg)
}

// BuildWorld instantiates every entity and component in the document,
// applying props through the wire marshaller so scene files and automation
// writes share one conversion path.
func BuildWorld(doc *SceneFile, reg *meta.Registry) (*World, AssetTable, error) {
	assets := AssetTable{}
	for _, p := range doc.Assets {
		assets[p] = p
	}
	m := &wire.Marshaller{Loader: assets}

	world := NewWorld()
	for i := range doc.Entities {
		spec := &doc.Entities[i]
		class := spec.Class
		if class == "" {
			class = "Actor"
		}
		props, err := instantiate(reg, m, class, spec.Props)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "entity %s", spec.Path)
		}
		e := &Entity{
			Path:     spec.Path,
			Label:    spec.Label,
			Class:    class,
			Tags:     spec.Tags,
			Selected: spec.Selected,
			Document: spec.Document,
			Props:    props,
		}
		if spec.GUID != "" {
			g, err := uuid.Parse(spec.GUID)
			if err != nil {
				return nil, nil, errors.Wrapf(err, "entity %s: guid", spec.Path)
			}
			e.GUID = g
		}
		for _, cs := range spec.Components {
			if e.Sub(cs.Name) != nil {
				return nil, nil, errors.Errorf("entity %s: duplicate component name %q", spec.Path, cs.Name)
			}
			comp, err := instantiate(reg, m, cs.Class, cs.Props)
			if err != nil {
				return nil, nil, errors.Wrapf(err, "entity %s: component %s", spec.Path, cs.Name)
			}
			e.Subs = append(e.Subs, &SubEntity{Name: cs.Name, Class: cs.Class, Root: cs.Root, Props: comp})
		}
		if err := world.Add(e); err != nil {
			return nil, nil, err
		}
	}
	return world, assets, nil
}

func instantiate(reg *meta.Registry, m *wire.Marshaller, class string, props map[string]any) (any, error) {
	obj, ok := reg.New(class)
	if !ok {
		return nil, errors.Errorf("unknown class %q", class)
	}
	for key, raw := range props {
		desc, ok := reg.Field(obj, key)
		if !ok {
			return nil, errors.Errorf("class %s has no field %q", class, key)
		}
		native, ferr := m.FromWire(raw, desc.Type)
		if ferr != nil {
			return nil, errors.Wrapf(ferr, "field %s", key)
		}
		if err := reg.Set(obj, desc.Name, native); err != nil {
			return nil, errors.Wrapf(err, "field %s", key)
		}
	}
	return obj, nil
}
