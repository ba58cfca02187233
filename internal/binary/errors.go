package binary

import (
	"errors"
	"fmt"
)

// Kind categorizes a decode failure
type Kind string

const (
	TagMismatch        Kind = "tag_mismatch"         // Expected literal bytes not found at the cursor
	InsufficientInput  Kind = "insufficient_input"   // Fewer bytes remain than a field requires
	InvalidText        Kind = "invalid_text"         // Text bytes rejected by the text codec
	UnknownNodeVariant Kind = "unknown_node_variant" // No navigation node prefix matched
)

func (k Kind) String() string {
	switch k {
	case TagMismatch:
		return "tag mismatch"
	case InsufficientInput:
		return "insufficient input"
	case InvalidText:
		return "invalid text"
	case UnknownNodeVariant:
		return "unknown node variant"
	}
	return string(k)
}

// Common errors. Match with errors.Is; any *Error of the same Kind matches.
var (
	ErrTagMismatch        = &Error{Kind: TagMismatch}
	ErrInsufficientInput  = &Error{Kind: InsufficientInput}
	ErrInvalidText        = &Error{Kind: InvalidText}
	ErrUnknownNodeVariant = &Error{Kind: UnknownNodeVariant}
)

// ErrOutOfRange reports an offset or size, taken from a decoded header,
// that points outside the file. Decoders never return it; the file-level
// readers that seek to decoded offsets do.
var ErrOutOfRange = errors.New("offset out of range")

// Error is a failure of a single field decode
type Error struct {
	Kind    Kind
	Field   string // Field being decoded when the failure happened
	Offset  int    // Offset of the field within the decoded view
	Message string // Extra detail, may be empty
	Want    []byte // Expected literal (tag mismatches)
	Got     []byte // Offending bytes (tag mismatches, unknown node variants)
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Field != "" {
		msg = fmt.Sprintf("%s: %s at offset %d", e.Field, msg, e.Offset)
	}
	if e.Want != nil {
		msg += fmt.Sprintf(": want % x, got % x", e.Want, e.Got)
	} else if e.Got != nil {
		msg += fmt.Sprintf(": got % x", e.Got)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

// Is reports whether target is an *Error of the same kind
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// FieldError wraps the failure of a nested decode (a sub-record or one
// element of a counted sequence) with the enclosing field's identity.
type FieldError struct {
	Field  string
	Index  int // Element index within a sequence, -1 for a single nested record
	Offset int // Offset where the nested value started
	Err    error
}

func (e *FieldError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("decode %s at offset %d: %v", e.Field, e.Offset, e.Err)
	}
	return fmt.Sprintf("decode %s[%d] at offset %d: %v", e.Field, e.Index, e.Offset, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of the innermost decode failure in err's chain,
// or "" if err is not a decode failure.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}
