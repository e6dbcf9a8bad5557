package graph

import "github.com/pkg/errors"

// World owns the live entity list. Enumeration order is insertion order and
// is stable across calls with no intervening mutation; resolvers depend on
// that for their first-match semantics.
type World struct {
	entities []*Entity
	byPath   map[string]*Entity
}

func NewWorld() *World {
	return &World{byPath: make(map[string]*Entity)}
}

// Add appends e to the enumeration order. Persistent paths are unique.
func (w *World) Add(e *Entity) error {
	if e.Path == "" {
		return errors.New("entity has no persistent path")
	}
	if _, exists := w.byPath[e.Path]; exists {
		return errors.Errorf("duplicate entity path %q", e.Path)
	}
	w.entities = append(w.entities, e)
	w.byPath[e.Path] = e
	return nil
}

// Remove drops the entity with the given path, preserving the order of the
// remaining entities.
func (w *World) Remove(path string) bool {
	e, ok := w.byPath[path]
	if !ok {
		return false
	}
	delete(w.byPath, path)
	for i, cur := range w.entities {
		if cur == e {
			w.entities = append(w.entities[:i], w.entities[i+1:]...)
			break
		}
	}
	return true
}

// Entities returns the live entities in stable enumeration order. The slice
// is shared; callers must not mutate it.
func (w *World) Entities() []*Entity {
	return w.entities
}

func (w *World) ByPath(path string) (*Entity, bool) {
	e, ok := w.byPath[path]
	return e, ok
}

func (w *World) Len() int { return len(w.entities) }
