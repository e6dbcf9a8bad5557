package fault

import "fmt"

// Kind identifies a failure category. Kinds are stable wire values: they are
// serialized verbatim into the error_code field of automation responses.
type Kind string

const (
	InvalidIdentifier Kind = "INVALID_IDENTIFIER"
	NotFound          Kind = "NOT_FOUND"
	SubEntityNotFound Kind = "SUBENTITY_NOT_FOUND"
	FieldNotFound     Kind = "FIELD_NOT_FOUND"
	NotAnArray        Kind = "NOT_AN_ARRAY"
	FieldReadOnly     Kind = "FIELD_READONLY"
	InvalidValue      Kind = "INVALID_VALUE"
	ReferenceNotFound Kind = "REFERENCE_NOT_FOUND"
	MutationFailed    Kind = "MUTATION_FAILED"
)

// Error is a recoverable, structured failure produced by resolution or
// marshalling. Details carries correction hints (candidate field names,
// expected wire shapes) that the automation client can act on.
type Error struct {
	Kind    Kind
	Message string
	Details map[string]any
}

func (e *Error) Error() string {
	return string(e.Kind) + ": " + e.Message
}

// New creates an Error of the given kind with a formatted message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// With attaches one detail entry and returns e for chaining.
func (e *Error) With(key string, value any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}
