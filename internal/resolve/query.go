package resolve

import (
	"strings"

	"github.com/scenewire/scenewire/internal/graph"
)

// DefaultMaxResults caps query results when the criteria does not set a
// limit.
const DefaultMaxResults = 100

// Criteria is an immutable, request-scoped entity filter.
type Criteria struct {
	Class        string // wildcard pattern over the class name
	Label        string // wildcard pattern over the display label
	SelectedOnly bool
	RequireTags  []string
	ExcludeTags  []string
	MaxResults   int // <= 0 means DefaultMaxResults
}

// MatchWildcard supports four pattern shapes, all case-insensitive:
// *substring* (contains), *suffix (ends-with), prefix* (starts-with), and
// exact literal when no asterisk is present. The empty pattern matches
// everything.
func MatchWildcard(pattern, value string) bool {
	if pattern == "" {
		return true
	}
	p := strings.ToLower(pattern)
	v := strings.ToLower(value)
	leading := strings.HasPrefix(p, "*")
	trailing := strings.HasSuffix(p, "*")
	core := strings.TrimSuffix(strings.TrimPrefix(p, "*"), "*")
	switch {
	case leading && trailing:
		return strings.Contains(v, core)
	case leading:
		return strings.HasSuffix(v, core)
	case trailing:
		return strings.HasPrefix(v, core)
	default:
		return v == p
	}
}

// Match reports whether e satisfies every populated part of c.
func Match(e *graph.Entity, c Criteria) bool {
	if !MatchWildcard(c.Class, e.Class) {
		return false
	}
	if !MatchWildcard(c.Label, e.Label) {
		return false
	}
	if c.SelectedOnly && !e.Selected {
		return false
	}
	for _, tag := range c.RequireTags {
		if !e.HasTag(tag) {
			return false
		}
	}
	for _, tag := range c.ExcludeTags {
		if e.HasTag(tag) {
			return false
		}
	}
	return true
}

// Query enumerates the live entities in stable order, keeping those that
// match and stopping once the result cap is reached.
func Query(s *graph.Session, c Criteria) []*graph.Entity {
	limit := c.MaxResults
	if limit <= 0 {
		limit = DefaultMaxResults
	}
	var out []*graph.Entity
	for _, e := range s.World.Entities() {
		if !Match(e, c) {
			continue
		}
		out = append(out, e)
		if len(out) >= limit {
			break
		}
	}
	return out
}
