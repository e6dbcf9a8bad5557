// Package path resolves "sub-entity.field[index]" property paths against a
// live entity into an ephemeral target tuple. Failures carry the candidates
// a caller needs to self-correct: owned sub-entity names, available field
// names, and fuzzy sub-entity-qualified suggestions.
package path

import (
	"strconv"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/scenewire/scenewire/internal/fault"
	"github.com/scenewire/scenewire/internal/graph"
	"github.com/scenewire/scenewire/internal/meta"
	"github.com/scenewire/scenewire/internal/wire"
)

const (
	maxListedFields = 20
	maxSuggestions  = 5
	suggestDistance = 2
)

// Target is the ephemeral product of path resolution: the object owning the
// field, its descriptor, and the optional array index. Targets are
// recomputed on every request and never cached.
type Target struct {
	Object     any
	Sub        *graph.SubEntity // nil when the entity itself owns the field
	Descriptor meta.FieldDescriptor
	Index      int
	HasIndex   bool
}

// Resolve determines the exact target for a property path on e. When
// explicitSub is non-empty it names the owning sub-entity and the whole path
// is the field part; otherwise a path containing a dot is split on the
// first dot into sub-entity name and field part. A bare field name targets
// the entity itself, with a fallback search across its sub-entities when the
// entity's class does not carry the field.
func Resolve(provider meta.Provider, e *graph.Entity, p string, explicitSub string) (Target, *fault.Error) {
	var sub *graph.SubEntity
	fieldPath := p
	bare := false
	switch {
	case explicitSub != "":
		if sub = e.Sub(explicitSub); sub == nil {
			return Target{}, subNotFound(e, explicitSub)
		}
	case strings.Contains(p, "."):
		name, rest, _ := strings.Cut(p, ".")
		if sub = e.Sub(name); sub == nil {
			return Target{}, subNotFound(e, name)
		}
		fieldPath = rest
	default:
		bare = true
	}

	fieldName, index, hasIndex, ferr := splitIndex(fieldPath)
	if ferr != nil {
		return Target{}, ferr
	}

	nominal := objectOf(e, sub)
	obj := nominal
	desc, found := provider.Field(obj, fieldName)
	if !found && bare {
		// Bare field names may omit the owning sub-entity; the first
		// sub-entity carrying the field, in enumeration order, wins.
		for _, cand := range e.Subs {
			if d, ok := provider.Field(cand.Props, fieldName); ok {
				sub, obj, desc, found = cand, cand.Props, d, true
				break
			}
		}
	}
	if !found {
		return Target{}, fieldNotFound(provider, e, nominal, bare, fieldName)
	}

	if hasIndex {
		if desc.Type.Tag != wire.TagArray {
			return Target{}, fault.New(fault.NotAnArray, "field %s is %s, not an array", desc.Name, desc.Type).
				With("field", desc.Name).
				With("type", desc.Type.String())
		}
	}
	return Target{Object: obj, Sub: sub, Descriptor: desc, Index: index, HasIndex: hasIndex}, nil
}

func objectOf(e *graph.Entity, sub *graph.SubEntity) any {
	if sub != nil {
		return sub.Props
	}
	return e.Props
}

// splitIndex parses a trailing [N] suffix. The grammar is strict: the only
// accepted form is name[digits]. Anything else containing a bracket fails
// INVALID_VALUE instead of silently defaulting.
func splitIndex(field string) (string, int, bool, *fault.Error) {
	if !strings.ContainsAny(field, "[]") {
		return field, 0, false, nil
	}
	malformed := func() *fault.Error {
		return fault.New(fault.InvalidValue, "malformed array index in %q: use Field[N]", field).
			With("path", field)
	}
	open := strings.Index(field, "[")
	if open <= 0 || !strings.HasSuffix(field, "]") {
		return "", 0, false, malformed()
	}
	inner := field[open+1 : len(field)-1]
	if inner == "" || strings.ContainsAny(inner, "[]") {
		return "", 0, false, malformed()
	}
	n, err := strconv.Atoi(inner)
	if err != nil || n < 0 {
		return "", 0, false, malformed()
	}
	return field[:open], n, true, nil
}

func subNotFound(e *graph.Entity, name string) *fault.Error {
	return fault.New(fault.SubEntityNotFound, "entity %s has no sub-entity %q", e.Path, name).
		With("sub_entity", name).
		With("sub_entities", e.SubNames())
}

func fieldNotFound(provider meta.Provider, e *graph.Entity, nominal any, searchedEntity bool, name string) *fault.Error {
	err := fault.New(fault.FieldNotFound, "no field %q on %s", name, provider.ClassName(nominal)).
		With("field", name)

	var names []string
	for _, d := range provider.ListFields(nominal, true) {
		names = append(names, d.Name)
		if len(names) >= maxListedFields {
			break
		}
	}
	err.With("available_fields", names)

	if searchedEntity {
		var suggestions []string
		for _, sub := range e.Subs {
			for _, d := range provider.ListFields(sub.Props, true) {
				if len(suggestions) >= maxSuggestions {
					break
				}
				if fuzzyMatch(name, d.Name) {
					suggestions = append(suggestions, sub.Name+"."+d.Name)
				}
			}
		}
		if len(suggestions) > 0 {
			err.With("suggestions", suggestions)
		}
	}
	return err
}

func fuzzyMatch(query, candidate string) bool {
	q := strings.ToLower(query)
	c := strings.ToLower(candidate)
	if strings.Contains(c, q) || strings.Contains(q, c) {
		return true
	}
	return levenshtein.ComputeDistance(q, c) <= suggestDistance
}
