package core

import (
	"errors"
	"fmt"

	"github.com/arthur-debert/sandboxfs/pkg/sandboxfs/env"
	"github.com/pelletier/go-toml/v2"
)

// Kind classifies an Error. The set is closed.
type Kind int

const (
	// KindUnknown is a failure that fits no other category.
	KindUnknown Kind = iota
	// KindIO wraps a host I/O failure.
	KindIO
	// KindPolicy is a sandbox escape or readonly violation. It never has a cause.
	KindPolicy
	// KindWorkerPool is reserved for failures of the dispatching worker pool.
	KindWorkerPool
	// KindDeserialization wraps a config decoding failure.
	KindDeserialization
	// KindSerialization wraps a config encoding failure.
	KindSerialization
	// KindEnvironment wraps an environment variable lookup failure.
	KindEnvironment
)

// String returns the stable short label of the kind.
func (k Kind) String() string {
	switch k {
	case KindIO:
		return "IO"
	case KindPolicy:
		return "Policy"
	case KindWorkerPool:
		return "WorkerPool"
	case KindDeserialization:
		return "Deserialization"
	case KindSerialization:
		return "Serialization"
	case KindEnvironment:
		return "Environment"
	default:
		return "Unknown"
	}
}

// category is the human form used in messages.
func (k Kind) category() string {
	switch k {
	case KindIO:
		return "IO"
	case KindPolicy:
		return "Policy"
	case KindWorkerPool:
		return "Worker pool"
	case KindDeserialization:
		return "Deserialization"
	case KindSerialization:
		return "Serialization"
	case KindEnvironment:
		return "Environment variable"
	default:
		return "Unknown"
	}
}

// wrapsCause reports whether errors of this kind carry a lower-level cause.
func (k Kind) wrapsCause() bool {
	switch k {
	case KindIO, KindDeserialization, KindSerialization, KindEnvironment:
		return true
	default:
		return false
	}
}

// Sentinels for errors.Is. An *Error matches the sentinel of its kind.
var (
	ErrIO              = &Error{Kind: KindIO, Description: "io failure"}
	ErrPolicyViolation = &Error{Kind: KindPolicy, Description: "policy violation"}
	ErrUnknown         = &Error{Kind: KindUnknown, Description: "unknown failure"}
	ErrWorkerPool      = &Error{Kind: KindWorkerPool, Description: "worker pool failure"}
	ErrDeserialization = &Error{Kind: KindDeserialization, Description: "deserialization failure"}
	ErrSerialization   = &Error{Kind: KindSerialization, Description: "serialization failure"}
	ErrEnvironment     = &Error{Kind: KindEnvironment, Description: "environment failure"}
)

// Error is the single error type returned by sandboxfs operations.
// Values are built at the failure site and never mutated afterwards.
type Error struct {
	Kind        Kind
	Description string
	Err         error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s error: %s", e.Kind.category(), e.Description)
}

// Unwrap returns the wrapped cause, if any.
func (e *Error) Unwrap() error {
	return e.Err
}

// Cause is an alias of Unwrap kept for callers that walk chains explicitly.
func (e *Error) Cause() error {
	return e.Err
}

// Is matches any *Error of the same kind, so the package sentinels work with
// errors.Is regardless of description or cause.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func newError(kind Kind, description string, cause error) *Error {
	if !kind.wrapsCause() {
		cause = nil
	}
	return &Error{Kind: kind, Description: description, Err: cause}
}

// NewIOError wraps a host I/O failure.
func NewIOError(description string, cause error) *Error {
	return newError(KindIO, description, cause)
}

// NewPolicyError reports a rejected sandbox escape or readonly mutation.
func NewPolicyError(description string) *Error {
	return newError(KindPolicy, description, nil)
}

// NewUnknownError reports a failure with no better category.
func NewUnknownError(description string) *Error {
	return newError(KindUnknown, description, nil)
}

// NewWorkerPoolError reports a failure of the worker pool that dispatches
// filesystem calls.
func NewWorkerPoolError(description string) *Error {
	return newError(KindWorkerPool, description, nil)
}

// NewDeserializationError wraps a config decoding failure.
func NewDeserializationError(description string, cause error) *Error {
	return newError(KindDeserialization, description, cause)
}

// NewSerializationError wraps a config encoding failure.
func NewSerializationError(description string, cause error) *Error {
	return newError(KindSerialization, description, cause)
}

// NewEnvironmentError wraps an environment lookup failure.
func NewEnvironmentError(description string, cause error) *Error {
	return newError(KindEnvironment, description, cause)
}

// FromIO converts an I/O error. It returns nil for a nil err.
func FromIO(err error) error {
	if err == nil {
		return nil
	}
	return NewIOError("error while dealing with file", err)
}

// FromDecode converts a TOML decoding error. It returns nil for a nil err.
func FromDecode(err error) error {
	if err == nil {
		return nil
	}
	return NewDeserializationError("error while deserializing a TOML file", err)
}

// FromEncode converts a TOML encoding error. It returns nil for a nil err.
func FromEncode(err error) error {
	if err == nil {
		return nil
	}
	return NewSerializationError("error while serializing a TOML file", err)
}

// FromEnv converts an environment lookup error. It returns nil for a nil err.
func FromEnv(err error) error {
	if err == nil {
		return nil
	}
	return NewEnvironmentError("error while reading an environment variable", err)
}

// Wrap converts err into an *Error, picking the kind from the cause type.
// Errors that are already *Error pass through unchanged; anything that is not
// a decode or environment error is treated as I/O.
func Wrap(err error) error {
	if err == nil {
		return nil
	}

	var sandboxErr *Error
	if errors.As(err, &sandboxErr) {
		return err
	}

	var decodeErr *toml.DecodeError
	var strictErr *toml.StrictMissingError
	if errors.As(err, &decodeErr) || errors.As(err, &strictErr) {
		return FromDecode(err)
	}

	var varErr *env.VarError
	if errors.As(err, &varErr) {
		return FromEnv(err)
	}

	return FromIO(err)
}

// KindOf returns the kind of the first *Error in err's chain, or false when
// there is none.
func KindOf(err error) (Kind, bool) {
	var sandboxErr *Error
	if errors.As(err, &sandboxErr) {
		return sandboxErr.Kind, true
	}
	return KindUnknown, false
}

// Chain returns err followed by each cause reached through Unwrap.
// Joined errors are not expanded; only the single-cause chain is followed.
func Chain(err error) []error {
	var chain []error
	for err != nil {
		chain = append(chain, err)
		err = errors.Unwrap(err)
	}
	return chain
}
