// Package env reads process environment variables and reports lookup
// failures as typed errors, so callers can tell a missing variable from a
// malformed one.
package env

import (
	"errors"
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/spf13/cast"
)

var (
	// ErrNotPresent is returned when the variable is not set.
	ErrNotPresent = errors.New("environment variable not found")
	// ErrNotUnicode is returned when the variable holds invalid UTF-8.
	ErrNotUnicode = errors.New("environment variable was not valid unicode")
)

// VarError describes a failed lookup of a single variable.
type VarError struct {
	Name string
	Err  error
}

func (e *VarError) Error() string {
	return fmt.Sprintf("%s: %v", e.Name, e.Err)
}

func (e *VarError) Unwrap() error {
	return e.Err
}

// Lookup returns the value of the named variable.
func Lookup(name string) (string, error) {
	value, ok := os.LookupEnv(name)
	if !ok {
		return "", &VarError{Name: name, Err: ErrNotPresent}
	}
	if !utf8.ValidString(value) {
		return "", &VarError{Name: name, Err: ErrNotUnicode}
	}
	return value, nil
}

// Bool looks up the named variable and parses it as a boolean
// ("1", "true", "FALSE", ...).
func Bool(name string) (bool, error) {
	value, err := Lookup(name)
	if err != nil {
		return false, err
	}
	b, err := cast.ToBoolE(value)
	if err != nil {
		return false, &VarError{Name: name, Err: err}
	}
	return b, nil
}

// IsNotPresent reports whether err means the variable was unset.
func IsNotPresent(err error) bool {
	return errors.Is(err, ErrNotPresent)
}
