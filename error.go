// Copyright 2025 The moonbind Authors
// SPDX-License-Identifier: MIT

package lua

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrorKind classifies the outcome of a failed protected entry point.
type ErrorKind int

const (
	// ErrorUnknown is the kind of an error whose status code the dialect
	// does not define.
	ErrorUnknown ErrorKind = iota
	// ErrorRuntime is a script-level failure during execution.
	ErrorRuntime
	// ErrorSyntax is a compile failure of source text.
	ErrorSyntax
	// ErrorMemory means the allocator could not fulfill a request.
	// The message handler is not called for memory errors.
	ErrorMemory
	// ErrorMessageHandler means the message handler itself failed
	// while processing another error.
	ErrorMessageHandler
	// ErrorGCMetamethod means a __gc metamethod failed.
	// Only Lua 5.2 and 5.3 report this as a distinct status.
	ErrorGCMetamethod
	// ErrorFile means a chunk file could not be opened or read.
	ErrorFile
)

// String returns a short description of the kind.
func (k ErrorKind) String() string {
	switch k {
	case ErrorRuntime:
		return "runtime error"
	case ErrorSyntax:
		return "syntax error"
	case ErrorMemory:
		return "memory allocation error"
	case ErrorMessageHandler:
		return "error while running message handler"
	case ErrorGCMetamethod:
		return "error while running __gc metamethod"
	case ErrorFile:
		return "file error"
	default:
		return "unknown error"
	}
}

// Error is the structured outcome of a failed call, load,
// or other protected entry point.
// Unless documented otherwise, the error object that produced it
// is left as the single value on top of the affected stack region.
type Error struct {
	kind ErrorKind
	code int
	msg  string
}

// newError captures the error object on top of the stack
// for the given status code.
func (l *State) newError(code cInt) error {
	e := &Error{
		kind: statusKind(code),
		code: int(code),
	}
	e.msg, _ = l.ToString(-1)
	return e
}

func (l *State) wrapError(op string, code cInt) error {
	return fmt.Errorf("lua: %s: %w", op, l.newError(code))
}

func wrapOpError(op string, err error) error {
	return fmt.Errorf("lua: %s: %w", op, err)
}

// newFileError returns an [*Error] of kind [ErrorFile].
// File errors originate in the host, not the VM,
// so there is no status code and no error object on the stack.
func newFileError(msg string) *Error {
	return &Error{kind: ErrorFile, code: -1, msg: msg}
}

// Kind returns the error's classification.
func (e *Error) Kind() ErrorKind {
	return e.kind
}

// StatusCode returns the dialect's raw status code,
// or -1 for errors that did not come from the VM.
func (e *Error) StatusCode() int {
	return e.code
}

// Error returns the error object's string rendering
// or, if the error object was not a string, the kind's description.
func (e *Error) Error() string {
	if e.msg != "" {
		return e.msg
	}
	return e.kind.String()
}

// AsError reports whether err (or an error it wraps) is an [*Error],
// and if so returns it.
func AsError(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

func newClientError(msg string) error {
	return errors.New(msg)
}

func quote(s string) string {
	return strconv.Quote(s)
}

func formatValue(v any) string {
	return fmt.Sprintf("%v", v)
}
