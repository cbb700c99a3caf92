// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package core

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrorCode is the kind of error reported through a device error channel.
//
// The integer values are stable, they are part of the ABI.
type ErrorCode int

//go:generate go tool enumer -type=ErrorCode -trimprefix=Error -output=gen_errorcode_enumer.go errors.go

const (
	// ErrorNone means no error has occurred.
	ErrorNone ErrorCode = iota

	// ErrorUnknown is any internal failure not covered by the other codes.
	ErrorUnknown

	// ErrorInvalidArgument is a bad parameter, a null handle, objects of different devices, etc.
	ErrorInvalidArgument

	// ErrorInvalidOperation is an operation not allowed in the current state, e.g.: using a device before commit.
	ErrorInvalidOperation

	// ErrorOutOfMemory is a failure to allocate host or device memory.
	ErrorOutOfMemory

	// ErrorUnsupportedHardware means the device type has no supported hardware available.
	ErrorUnsupportedHardware

	// ErrorCancelled means the execution was cancelled by a progress monitor callback.
	ErrorCancelled
)

// Error is a failure with an ErrorCode.
type Error struct {
	Code    ErrorCode
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// Errorf creates an *Error with the given code and a formatted message.
//
// The returned error is wrapped with a stack trace (github.com/pkg/errors), print it with "%+v" to see it.
func Errorf(code ErrorCode, format string, args ...any) error {
	return errors.WithStack(&Error{Code: code, Message: fmt.Sprintf(format, args...)})
}

// ErrOutOfMemory is the error backends wrap to signal an allocation failure.
var ErrOutOfMemory = errors.New("out of memory")

// CodeOf converts any error to an ErrorCode and the message to report.
//
// Errors wrapping an *Error keep its code and message; errors wrapping ErrOutOfMemory are reported
// as ErrorOutOfMemory; anything else is ErrorUnknown, with the message preserved verbatim.
func CodeOf(err error) (ErrorCode, string) {
	if err == nil {
		return ErrorNone, ""
	}
	var coreErr *Error
	if errors.As(err, &coreErr) {
		return coreErr.Code, coreErr.Message
	}
	if errors.Is(err, ErrOutOfMemory) {
		return ErrorOutOfMemory, "out of memory"
	}
	return ErrorUnknown, err.Error()
}

// IsCode returns whether err carries the given ErrorCode.
func IsCode(err error, code ErrorCode) bool {
	got, _ := CodeOf(err)
	return got == code
}
