package errors

import (
	"bufio"
	stderrors "errors"
	"fmt"
	"os"

	"github.com/ledgerdash/ledgerdash/pkg/router"
)

// Category represents the type of error.
type Category string

const (
	CategoryConfig  Category = "config"
	CategoryRouting Category = "routing"
	CategoryServer  Category = "server"
	CategoryCLI     Category = "cli"
)

// Location represents a position in a source file.
type Location struct {
	File   string
	Line   int
	Column int
}

// String returns the location as file:line[:column].
func (l *Location) String() string {
	if l == nil {
		return ""
	}
	if l.Column > 0 {
		return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
	}
	return fmt.Sprintf("%s:%d", l.File, l.Line)
}

// Error is a structured error with a code, an optional source location and
// a fix suggestion.
type Error struct {
	// Code is a unique error identifier (e.g., "E301").
	Code string

	// Category is the error type.
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Location is the source position the error refers to, if any.
	Location *Location

	// Context contains the source lines around Location.
	Context []string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = e.Code + ": " + msg
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Wrapped
}

// WithLocation points the error at a line of a file and loads the
// surrounding lines for display.
func (e *Error) WithLocation(file string, line, column int) *Error {
	e.Location = &Location{File: file, Line: line, Column: column}
	e.Context = readContextLines(file, line, 5)
	return e
}

// WithSuggestion adds a fix suggestion to the error.
func (e *Error) WithSuggestion(s string) *Error {
	e.Suggestion = s
	return e
}

// WithDetail adds a detailed explanation to the error.
func (e *Error) WithDetail(d string) *Error {
	e.Detail = d
	return e
}

// Wrap wraps another error.
func (e *Error) Wrap(err error) *Error {
	e.Wrapped = err
	return e
}

// readContextLines reads lines around the specified line number from a file.
func readContextLines(filename string, targetLine, contextSize int) []string {
	file, err := os.Open(filename)
	if err != nil {
		return nil
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	lineNum := 0
	startLine := targetLine - contextSize/2
	endLine := targetLine + contextSize/2

	for scanner.Scan() {
		lineNum++
		if lineNum >= startLine && lineNum <= endLine {
			lines = append(lines, scanner.Text())
		}
		if lineNum > endLine {
			break
		}
	}

	return lines
}

// New creates an Error from a registered error code.
func New(code string) *Error {
	template, ok := registry[code]
	if !ok {
		return &Error{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &Error{
		Code:     code,
		Category: template.Category,
		Message:  template.Message,
		Detail:   template.Detail,
	}
}

// Newf creates an Error with a formatted message and no code.
func Newf(category Category, format string, args ...any) *Error {
	return &Error{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps err in an Error with the given code. Errors that already
// are *Error are returned unchanged.
func FromError(err error, code string) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if stderrors.As(err, &e) {
		return e
	}
	return New(code).WithDetail(err.Error()).Wrap(err)
}

// FromRouteError maps an error from the router package to its code.
// Other errors are reported as E200.
func FromRouteError(err error) *Error {
	if err == nil {
		return nil
	}

	var (
		cfg      *router.ConfigurationError
		unknown  *router.UnknownRouteError
		missing  *router.MissingParameterError
		invalid  *router.InvalidParameterError
		notFound *router.NotFoundError
	)
	switch {
	case stderrors.As(err, &cfg):
		return FromError(err, "E200").
			WithSuggestion("Give every route a unique name and a path starting with \"/\"")
	case stderrors.As(err, &unknown):
		return FromError(err, "E201").
			WithSuggestion("Run `ledgerdash routes` to list the registered names")
	case stderrors.As(err, &missing):
		return FromError(err, "E202").
			WithSuggestion(fmt.Sprintf("Pass a value for %q, e.g. %s=42", missing.Param, missing.Param))
	case stderrors.As(err, &invalid):
		return FromError(err, "E203").
			WithSuggestion(fmt.Sprintf("Parameter %q must be of type %s", invalid.Param, invalid.Type))
	case stderrors.As(err, &notFound):
		return FromError(err, "E204")
	default:
		return FromError(err, "E200")
	}
}
