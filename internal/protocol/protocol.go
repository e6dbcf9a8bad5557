// Package protocol defines the JSON contract between automation clients and
// the editing core: request and response envelopes, and the dispatcher that
// maps decoded requests onto the resolution and mutation pipelines.
//
// Every failure is in-band: the response carries success=false, a stable
// error_code from the taxonomy, a human-readable message, and a details
// payload with correction hints. Nothing propagates as a fault across the
// request boundary.
package protocol

import (
	"github.com/google/uuid"

	"github.com/scenewire/scenewire/internal/fault"
	"github.com/scenewire/scenewire/internal/graph"
	"github.com/scenewire/scenewire/internal/resolve"
)

// Operation names accepted in the request envelope.
const (
	OpGetProperty    = "get_property"
	OpSetProperty    = "set_property"
	OpQueryEntities  = "query_entities"
	OpDescribeEntity = "describe_entity"
)

// EntityRef is the wire form of an entity identifier.
type EntityRef struct {
	Path  string `json:"path,omitempty"`
	Label string `json:"label,omitempty"`
	GUID  string `json:"guid,omitempty"`
	Tag   string `json:"tag,omitempty"`
}

func (r EntityRef) Identifier() resolve.Identifier {
	return resolve.Identifier{Path: r.Path, Label: r.Label, GUID: r.GUID, Tag: r.Tag}
}

// CriteriaSpec is the wire form of query criteria.
type CriteriaSpec struct {
	Class        string   `json:"class,omitempty"`
	Label        string   `json:"label,omitempty"`
	SelectedOnly bool     `json:"selected_only,omitempty"`
	RequireTags  []string `json:"require_tags,omitempty"`
	ExcludeTags  []string `json:"exclude_tags,omitempty"`
	MaxResults   int      `json:"max_results,omitempty"`
}

func (c *CriteriaSpec) Criteria() resolve.Criteria {
	if c == nil {
		return resolve.Criteria{}
	}
	return resolve.Criteria{
		Class:        c.Class,
		Label:        c.Label,
		SelectedOnly: c.SelectedOnly,
		RequireTags:  c.RequireTags,
		ExcludeTags:  c.ExcludeTags,
		MaxResults:   c.MaxResults,
	}
}

// Request is the envelope delivered by the transport layer.
type Request struct {
	Op        string        `json:"op"`
	Entity    EntityRef     `json:"entity"`
	Path      string        `json:"path,omitempty"`
	Component string        `json:"component,omitempty"`
	Value     any           `json:"value,omitempty"`
	Criteria  *CriteriaSpec `json:"criteria,omitempty"`
}

// Response is the envelope returned to the transport layer.
type Response struct {
	Success        bool            `json:"success"`
	ErrorCode      string          `json:"error_code,omitempty"`
	Error          string          `json:"error,omitempty"`
	Details        map[string]any  `json:"details,omitempty"`
	Value          any             `json:"value,omitempty"`
	ConfirmedValue any             `json:"confirmed_value,omitempty"`
	Entities       []EntitySummary `json:"entities,omitempty"`
	Entity         *EntityDetail   `json:"entity,omitempty"`
}

// Failure converts a taxonomy error into a response envelope.
func Failure(err *fault.Error) Response {
	return Response{
		Success:   false,
		ErrorCode: string(err.Kind),
		Error:     err.Message,
		Details:   err.Details,
	}
}

// EntitySummary is one query result row.
type EntitySummary struct {
	Path     string   `json:"path"`
	Label    string   `json:"label,omitempty"`
	Class    string   `json:"class,omitempty"`
	GUID     string   `json:"guid,omitempty"`
	Tags     []string `json:"tags,omitempty"`
	Selected bool     `json:"selected,omitempty"`
}

// FieldSpec is the wire form of a field descriptor.
type FieldSpec struct {
	Name     string   `json:"name"`
	Type     string   `json:"type"`
	Category string   `json:"category,omitempty"`
	ReadOnly bool     `json:"read_only,omitempty"`
	Enum     []string `json:"enum,omitempty"`
}

// ComponentDetail describes one owned sub-entity.
type ComponentDetail struct {
	Name   string      `json:"name"`
	Class  string      `json:"class"`
	Root   bool        `json:"root,omitempty"`
	Fields []FieldSpec `json:"fields,omitempty"`
}

// EntityDetail is the describe_entity payload.
type EntityDetail struct {
	EntitySummary
	Document   string            `json:"document,omitempty"`
	Fields     []FieldSpec       `json:"fields,omitempty"`
	Components []ComponentDetail `json:"components,omitempty"`
}

func summarize(e *graph.Entity) EntitySummary {
	s := EntitySummary{
		Path:     e.Path,
		Label:    e.Label,
		Class:    e.Class,
		Tags:     e.Tags,
		Selected: e.Selected,
	}
	if e.GUID != uuid.Nil {
		s.GUID = e.GUID.String()
	}
	return s
}
