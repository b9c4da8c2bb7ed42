/*
Copyright 2018 The pdfcpu Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package pdfdoc

import "github.com/pkg/errors"

// ErrKind classifies a pdfdoc error (spec.md §7).
type ErrKind int

const (
	// MalformedInput covers bad PNG/TrueType/other caller-supplied input.
	MalformedInput ErrKind = iota
	// EncodingInvariantViolation marks a condition the encoder believes can
	// never happen on valid input; treat as a bug, not a user error.
	EncodingInvariantViolation
	// IoFailure marks a failed write to the underlying output sink.
	IoFailure
)

func (k ErrKind) String() string {
	switch k {
	case MalformedInput:
		return "MalformedInput"
	case EncodingInvariantViolation:
		return "EncodingInvariantViolation"
	case IoFailure:
		return "IoFailure"
	default:
		return "Unknown"
	}
}

// Error wraps an ErrKind with a location (byte offset, glyph index, or
// similar) and the underlying cause.
type Error struct {
	Kind     ErrKind
	Location string
	Err      error
}

func (e *Error) Error() string {
	if e.Location != "" {
		return e.Kind.String() + " at " + e.Location + ": " + e.Err.Error()
	}
	return e.Kind.String() + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

func wrapErr(kind ErrKind, location string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Location: location, Err: err}
}

func newErr(kind ErrKind, location, msg string) error {
	return &Error{Kind: kind, Location: location, Err: errors.New(msg)}
}
