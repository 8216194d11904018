package validation

import (
	"sort"
	"strings"
)

// FailureKind classifies why a field failed validation.
type FailureKind string

const (
	KindRequired   FailureKind = "required"
	KindType       FailureKind = "type"
	KindFormat     FailureKind = "format"
	KindRange      FailureKind = "range"
	KindLength     FailureKind = "length"
	KindNotAllowed FailureKind = "not_allowed"
	KindUnresolved FailureKind = "unresolved"
	KindInvalid    FailureKind = "invalid"
)

// FieldError is a single validation failure attached to a form field.
type FieldError struct {
	Field   string      `json:"field"`
	Kind    FailureKind `json:"kind"`
	Message string      `json:"message"`
}

// FieldErrors maps a field name to its validation failure. Only the first
// failure recorded for a field is kept.
type FieldErrors map[string]FieldError

// Add records a failure for field unless one is already present.
func (e FieldErrors) Add(field string, kind FailureKind, message string) {
	if _, exists := e[field]; exists {
		return
	}
	e[field] = FieldError{Field: field, Kind: kind, Message: message}
}

// Has reports whether field has a recorded failure.
func (e FieldErrors) Has(field string) bool {
	_, ok := e[field]
	return ok
}

// Kind returns the failure kind recorded for field, or "" when the field is valid.
func (e FieldErrors) Kind(field string) FailureKind {
	return e[field].Kind
}

// Fields returns the failing field names in sorted order.
func (e FieldErrors) Fields() []string {
	fields := make([]string, 0, len(e))
	for field := range e {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fields
}

// Messages flattens the map into field -> message, the shape form inputs render.
func (e FieldErrors) Messages() map[string]string {
	messages := make(map[string]string, len(e))
	for field, fe := range e {
		messages[field] = fe.Message
	}
	return messages
}

// Clone returns an independent copy. A nil receiver yields an empty map.
func (e FieldErrors) Clone() FieldErrors {
	out := make(FieldErrors, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}

func (e FieldErrors) Error() string {
	parts := make([]string, 0, len(e))
	for _, field := range e.Fields() {
		parts = append(parts, field+": "+e[field].Message)
	}
	return strings.Join(parts, "; ")
}
