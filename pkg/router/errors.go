package router

import (
	"errors"
	"fmt"
)

// Sentinel errors matched by the typed errors below through errors.Is.
var (
	ErrConfiguration    = errors.New("invalid route table")
	ErrUnknownRoute     = errors.New("unknown route")
	ErrMissingParameter = errors.New("missing route parameter")
	ErrInvalidParameter = errors.New("invalid route parameter")
	ErrNotFound         = errors.New("no route matches path")
)

// ConfigurationError reports an invalid route table. It is raised when the
// table is built and is fatal for the application.
type ConfigurationError struct {
	// Index is the position of the offending route in the input.
	Index int

	// Name and Path identify the offending route.
	Name string
	Path string

	// Reason describes the problem.
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("route #%d (name %q, path %q): %s", e.Index, e.Name, e.Path, e.Reason)
}

// Is reports whether target is ErrConfiguration.
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

// UnknownRouteError is returned when a route name is not registered.
type UnknownRouteError struct {
	Name string
}

func (e *UnknownRouteError) Error() string {
	return fmt.Sprintf("unknown route %q", e.Name)
}

// Is reports whether target is ErrUnknownRoute.
func (e *UnknownRouteError) Is(target error) bool {
	return target == ErrUnknownRoute
}

// MissingParameterError is returned when building a path without a value
// for one of the route's captures.
type MissingParameterError struct {
	Route string
	Param string
}

func (e *MissingParameterError) Error() string {
	return fmt.Sprintf("route %q: missing parameter %q", e.Route, e.Param)
}

// Is reports whether target is ErrMissingParameter.
func (e *MissingParameterError) Is(target error) bool {
	return target == ErrMissingParameter
}

// InvalidParameterError is returned when a parameter value does not satisfy
// the capture's type constraint.
type InvalidParameterError struct {
	Route string
	Param string
	Value string
	Type  string
	Err   error
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("route %q: parameter %q: %v", e.Route, e.Param, e.Err)
}

// Is reports whether target is ErrInvalidParameter.
func (e *InvalidParameterError) Is(target error) bool {
	return target == ErrInvalidParameter
}

// Unwrap returns the validation error.
func (e *InvalidParameterError) Unwrap() error {
	return e.Err
}

// NotFoundError is returned by the navigator when a path matches no route.
// Resolve itself reports NotFound through its boolean result.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no route matches %q", e.Path)
}

// Is reports whether target is ErrNotFound.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}
