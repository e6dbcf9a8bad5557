// Package graph models the live, mutable object graph the automation core
// operates on: entities composed of named sub-entities, the world that owns
// them, and the editor session context threaded through every call.
package graph

import "github.com/google/uuid"

// SubEntity is a component owned exclusively by one Entity. Its name is
// unique within the owner and its lifetime is bounded by the owner's.
type SubEntity struct {
	Name  string
	Class string
	Root  bool
	Props any // pointer to the component struct carrying the reflected fields
}

// Entity is a top-level addressable node in the live graph.
type Entity struct {
	Path     string    // persistent path, unique in the world
	Label    string    // display label, may collide
	GUID     uuid.UUID // uuid.Nil when the entity carries no GUID
	Class    string
	Tags     []string
	Selected bool
	Document string // owning document, marked needs-save after mutations
	Props    any    // entity-level reflected fields
	Subs     []*SubEntity
}

// Sub returns the owned sub-entity with the exact given name.
func (e *Entity) Sub(name string) *SubEntity {
	for _, s := range e.Subs {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// SubNames lists owned sub-entity names in enumeration order.
func (e *Entity) SubNames() []string {
	out := make([]string, len(e.Subs))
	for i, s := range e.Subs {
		out[i] = s.Name
	}
	return out
}

// RootSub returns the first sub-entity flagged as default/root, or nil.
func (e *Entity) RootSub() *SubEntity {
	for _, s := range e.Subs {
		if s.Root {
			return s
		}
	}
	return nil
}

func (e *Entity) HasTag(tag string) bool {
	for _, t := range e.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
