// Package resolve locates live entities by loosely-specified identifiers
// and matches them against wildcard/tag query criteria. Resolution is
// read-only and recomputed per request; nothing here holds onto an entity
// across calls.
package resolve

import (
	"strings"

	"github.com/google/uuid"

	"github.com/scenewire/scenewire/internal/fault"
	"github.com/scenewire/scenewire/internal/graph"
)

// Identifier carries up to four optional discriminators for one entity.
type Identifier struct {
	Path  string
	Label string
	GUID  string
	Tag   string
}

func (id Identifier) Empty() bool {
	return id.Path == "" && id.Label == "" && id.GUID == "" && id.Tag == ""
}

func (id Identifier) String() string {
	var parts []string
	if id.Path != "" {
		parts = append(parts, "path="+id.Path)
	}
	if id.Label != "" {
		parts = append(parts, "label="+id.Label)
	}
	if id.GUID != "" {
		parts = append(parts, "guid="+id.GUID)
	}
	if id.Tag != "" {
		parts = append(parts, "tag="+id.Tag)
	}
	if len(parts) == 0 {
		return "(empty identifier)"
	}
	return strings.Join(parts, " ")
}

// Resolve scans the live entities in stable enumeration order and returns
// the first one matching any populated discriminator, checked per candidate
// as: path equality, label equality, GUID equality, tag membership. Label
// collisions therefore resolve to the first-enumerated entity; callers
// needing determinism should prefer path or GUID.
func Resolve(s *graph.Session, id Identifier) (*graph.Entity, *fault.Error) {
	if id.Empty() {
		return nil, fault.New(fault.InvalidIdentifier,
			"identifier needs at least one of path, label, guid or tag")
	}
	// A GUID that fails to parse never matches anything; it is not an error.
	var wantGUID uuid.UUID
	if id.GUID != "" {
		if g, err := uuid.Parse(id.GUID); err == nil {
			wantGUID = g
		}
	}
	for _, e := range s.World.Entities() {
		switch {
		case id.Path != "" && e.Path == id.Path:
			return e, nil
		case id.Label != "" && e.Label == id.Label:
			return e, nil
		case wantGUID != uuid.Nil && e.GUID == wantGUID:
			return e, nil
		case id.Tag != "" && e.HasTag(id.Tag):
			return e, nil
		}
	}
	return nil, fault.New(fault.NotFound, "no entity matches %s", id).
		With("identifier", id.String())
}
