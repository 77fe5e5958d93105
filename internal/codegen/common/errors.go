package common

import (
	"errors"
	"fmt"
)

// Sentinels matched by the typed errors below through errors.Is.
var (
	ErrConfiguration = errors.New("configuration error")
	ErrIO            = errors.New("i/o error")
	ErrInvalidName   = errors.New("invalid collection name")
	ErrStale         = errors.New("generated file is out of date")
)

// ConfigurationError reports a required setting that is unset or malformed.
type ConfigurationError struct {
	Field   string
	Message string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration: %s: %s", e.Field, e.Message)
}

func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

// IOError wraps a failed filesystem operation.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

func (e *IOError) Is(target error) bool {
	return target == ErrIO
}

// NameError reports a header file whose name does not yield a usable type name.
type NameError struct {
	File   string
	Reason string
}

func (e *NameError) Error() string {
	return fmt.Sprintf("collection header %q: %s", e.File, e.Reason)
}

func (e *NameError) Is(target error) bool {
	return target == ErrInvalidName
}

// StaleError is returned in check mode when the file on disk differs from
// what would be generated.
type StaleError struct {
	Path   string
	Reason string
}

func (e *StaleError) Error() string {
	return fmt.Sprintf("%s is out of date: %s", e.Path, e.Reason)
}

func (e *StaleError) Is(target error) bool {
	return target == ErrStale
}
