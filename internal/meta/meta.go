// Package meta is the reflection metadata surface of the automation core.
// Field descriptors are derived once per registered class and cached; they
// describe a class, never an instance.
package meta

import "github.com/scenewire/scenewire/internal/wire"

// FieldDescriptor describes one reflected attribute of an entity or
// sub-entity class: its name, marshalling type, category label and
// mutability.
type FieldDescriptor struct {
	Name     string
	Type     wire.Type
	Category string
	ReadOnly bool
}

// Provider enumerates reflected metadata for live objects. The mutation core
// consumes this as a capability; Registry is the in-process implementation.
type Provider interface {
	// ClassName reports the class name of obj. Unregistered objects fall
	// back to their Go type name.
	ClassName(obj any) string

	// ListFields returns the field descriptors of obj's class in declaration
	// order. When includeInherited is false, fields promoted from embedded
	// classes are skipped.
	ListFields(obj any, includeInherited bool) []FieldDescriptor

	// Field looks up a single descriptor by name, case-insensitively.
	Field(obj any, name string) (FieldDescriptor, bool)
}
