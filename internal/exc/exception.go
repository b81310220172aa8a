// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package exc

import (
	"fmt"
	"strings"

	"github.com/edmundito/agsscript/internal/script"
)

type Exception interface {
	error
	Code() string
	Message() string
	Location() Location
	Kind() Kind
	Severity() Severity
	// Expected names the productions the parser would have accepted at the
	// failure point. It is empty for anything but syntax errors.
	Expected() []string
}

type Location struct {
	script.Location
	URI string
}

type exc struct {
	code     string
	message  string
	location Location
	severity Severity
	expected []string
}

func (e *exc) Error() string {
	return fmt.Sprintf("%s:%d:%d -- %s: %s", e.location.URI, e.location.Line, e.location.Column, e.code, e.message)
}

func (e *exc) Code() string {
	return e.code
}

func (e *exc) Message() string {
	return e.message
}

func (e *exc) Location() Location {
	return e.location
}

func (e *exc) Kind() Kind {
	return KindOf(e.code)
}

func (e *exc) Severity() Severity {
	return e.severity
}

func (e *exc) Expected() []string {
	return e.expected
}

type excUnwrap struct {
	Exception
	cause error
}

func (e *excUnwrap) Unwrap() error {
	return e.cause
}

func New(location Location, code string, message string) Exception {
	return &exc{
		location: location,
		message:  message,
		code:     code,
	}
}

// NewWarning creates an exception that does not make a result invalid.
func NewWarning(location Location, code string, message string) Exception {
	return &exc{
		location: location,
		message:  message,
		code:     code,
		severity: SeverityWarning,
	}
}

// NewSyntax creates a parse error that records the productions which were
// expected at the failure point. The message is derived from found and
// expected when message is empty.
func NewSyntax(location Location, code string, message string, found string, expected []string) Exception {
	if message == "" {
		message = fmt.Sprintf("unexpected %s", found)
		if len(expected) > 0 {
			message = fmt.Sprintf("%s (expecting %s)", message, strings.Join(expected, ", "))
		}
	}
	return &exc{
		location: location,
		message:  message,
		code:     code,
		expected: expected,
	}
}

func Wrap(location Location, code string, err error) Exception {
	if err == nil {
		return nil
	}
	if e, ok := err.(Exception); ok {
		return &excUnwrap{
			Exception: New(location, code, e.Message()),
			cause:     e,
		}
	}
	return &excUnwrap{
		cause:     err,
		Exception: New(location, code, err.Error()),
	}
}

func WrapUnknown(location Location, err error) Exception {
	return Wrap(location, CodeUnknownFatal, err)
}
