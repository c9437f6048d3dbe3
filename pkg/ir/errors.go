package ir

import (
	"errors"
	"fmt"
	"strings"
)

// Conversion and emission failures. Every one of them aborts the whole call;
// there is no partial result.
var (
	// ErrUnsupportedReferenceFormat is a $ref outside the supported pointer grammars.
	ErrUnsupportedReferenceFormat = errors.New("unsupported reference format")
	// ErrUnresolvedReference is a reference whose target name is not defined.
	ErrUnresolvedReference = errors.New("unresolved reference")
	// ErrCircularTypeReference is a type that expands into itself without structural indirection.
	ErrCircularTypeReference = errors.New("circular type reference")
	// ErrDuplicateSchemaName is two definitions sharing one name.
	ErrDuplicateSchemaName = errors.New("duplicate schema name")
	// ErrInvalidType is a node that breaks a structural invariant of the IR.
	ErrInvalidType = errors.New("invalid IR type")
)

// Error locates a failure inside a document.
type Error struct {
	// Err is one of the sentinel errors above, or an underlying cause.
	Err error
	// Schema is the registry entry being processed, if any.
	Schema string
	// Path is a JSON pointer to the offending node, e.g. #/components/schemas/Pet/properties/owner.
	Path string
	// Detail is the offending value (a $ref string, a name, a cycle).
	Detail string
}

func (e *Error) Error() string {
	b := &strings.Builder{}
	b.WriteString(e.Err.Error())
	if e.Detail != "" {
		fmt.Fprintf(b, " %s", e.Detail)
	}
	switch {
	case e.Path != "":
		fmt.Fprintf(b, " at %s", e.Path)
	case e.Schema != "":
		fmt.Fprintf(b, " in schema %q", e.Schema)
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// NewError builds an *Error for err located at path.
func NewError(err error, schema, path, detail string) *Error {
	return &Error{Err: err, Schema: schema, Path: path, Detail: detail}
}

// Warning codes
const (
	WarnAnyOfApproximated    = "anyof_approximated"
	WarnNotUnsupported       = "not_unsupported"
	WarnTypeInferred         = "type_inferred"
	WarnNullableIgnored      = "nullable_ignored"
	WarnDialectMismatch      = "dialect_mismatch"
	WarnDiscriminatorDropped = "discriminator_dropped"
	WarnUnsupportedLiteral   = "unsupported_literal"
	WarnRefSiblingsIgnored   = "ref_siblings_ignored"
)

// Warning is a non-fatal conversion note returned alongside a successful result.
type Warning struct {
	Code    string
	Schema  string
	Path    string
	Message string
}

func (w Warning) String() string {
	if w.Path != "" {
		return fmt.Sprintf("%s at %s: %s", w.Code, w.Path, w.Message)
	}
	return fmt.Sprintf("%s: %s", w.Code, w.Message)
}
