// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package core

import (
	"sync"

	"k8s.io/klog/v2"
)

// ErrorFunc is called every time an error is reported on a channel.
// It runs with the device mutex held, so it must not call back into the same device.
type ErrorFunc func(code ErrorCode, message string)

// errorChannel holds a sticky last-error slot: each error overwrites the previous one, and reading
// it consumes it.
type errorChannel struct {
	mu      sync.Mutex
	code    ErrorCode
	message string
	fn      ErrorFunc
}

func (c *errorChannel) set(code ErrorCode, message string) {
	c.mu.Lock()
	c.code = code
	c.message = message
	fn := c.fn
	c.mu.Unlock()
	if fn != nil && code != ErrorNone {
		fn(code, message)
	}
}

func (c *errorChannel) get() (ErrorCode, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	code, message := c.code, c.message
	c.code, c.message = ErrorNone, ""
	return code, message
}

func (c *errorChannel) setFunc(fn ErrorFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fn = fn
}

// globalErrors receives errors that cannot be attributed to a device, e.g. a null device handle.
var globalErrors errorChannel

// SetGlobalError reports an error not associated with any device.
func SetGlobalError(code ErrorCode, message string) {
	if code != ErrorNone {
		klog.V(1).Infof("error (no device): %s: %s", code, message)
	}
	globalErrors.set(code, message)
}

// GetGlobalError returns and clears the last error not associated with any device.
func GetGlobalError() (ErrorCode, string) {
	return globalErrors.get()
}

// SetGlobalErrorFunc installs the callback for errors not associated with any device.
// Pass nil to remove it.
func SetGlobalErrorFunc(fn ErrorFunc) {
	globalErrors.setFunc(fn)
}

// ReportError sets err on the device error channel, or on the global one if device is nil.
// It does nothing if err is nil.
func ReportError(device *Device, err error) {
	if err == nil {
		return
	}
	code, message := CodeOf(err)
	if device == nil {
		SetGlobalError(code, message)
		return
	}
	device.SetError(code, message)
}
