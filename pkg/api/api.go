// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package api is the handle based API of the denoiser, one function per entry point of the C API
// (see cmd/oidn_cabi, which exports them to C).
//
// Objects are referred to by integer handles (Device, Buffer, Filter), 0 being the null handle.
// Each handle holds one reference: it must be released with the matching Release* function, and
// Retain* adds references.
//
// Functions never return errors nor panic: failures are reported on the error channel of the
// device involved (see GetDeviceError and SetDeviceErrorFunction) and the function returns a
// sentinel value (a null handle, zero, false or nil). Errors not bound to any device, e.g. a null
// device handle, are reported on a process-wide channel, read with GetDeviceError(0).
//
// Every function locks the mutex of the device involved, so the API can be used concurrently.
// Error callbacks run with the device mutex held. Progress callbacks of ExecuteFilter run while the
// calling goroutine holds the mutex; those of ExecuteFilterAsync run later, on engine goroutines,
// without it, possibly concurrently with other API calls. In neither case may a callback call the
// API for the same device: SyncDevice waits for the callback while holding the mutex.
package api

import (
	"fmt"

	"github.com/gomlx/denoise/internal/handles"
	"github.com/gomlx/denoise/pkg/core"
	"github.com/gomlx/exceptions"
	"github.com/pkg/errors"

	_ "github.com/gomlx/denoise/backends/default"
)

// Handles of the API objects.
type (
	Device handles.Handle
	Buffer handles.Handle
	Filter handles.Handle
)

var (
	devices handles.Table[*core.Device]
	buffers handles.Table[*core.Buffer]
	filters handles.Table[*core.Filter]
)

// NumLiveObjects returns the number of devices, buffers and filters not yet destroyed.
// Used to investigate leaks.
func NumLiveObjects() (numDevices, numBuffers, numFilters int) {
	return devices.Len(), buffers.Len(), filters.Len()
}

func newDeviceHandle(d *core.Device) Device {
	h := devices.Acquire(d)
	d.OnDestroy(func() { devices.Release(h) })
	return Device(h)
}

func newBufferHandle(b *core.Buffer) Buffer {
	h := buffers.Acquire(b)
	b.OnDestroy(func() { buffers.Release(h) })
	return Buffer(h)
}

func newFilterHandle(f *core.Filter) Filter {
	h := filters.Acquire(f)
	f.OnDestroy(func() { filters.Release(h) })
	return Filter(h)
}

func lookupDevice(h Device) (*core.Device, bool) {
	d, ok := devices.Get(handles.Handle(h))
	if !ok {
		reportInvalidHandle("device", uintptr(h))
	}
	return d, ok
}

func lookupBuffer(h Buffer) (*core.Buffer, bool) {
	b, ok := buffers.Get(handles.Handle(h))
	if !ok {
		reportInvalidHandle("buffer", uintptr(h))
	}
	return b, ok
}

func lookupFilter(h Filter) (*core.Filter, bool) {
	f, ok := filters.Get(handles.Handle(h))
	if !ok {
		reportInvalidHandle("filter", uintptr(h))
	}
	return f, ok
}

func reportInvalidHandle(kind string, h uintptr) {
	if h == 0 {
		core.SetGlobalError(core.ErrorInvalidArgument, kind+" handle is null")
		return
	}
	core.SetGlobalError(core.ErrorInvalidArgument, fmt.Sprintf("invalid %s handle %d", kind, h))
}

// locked runs fn with the device mutex held, see translate.
func locked(d *core.Device, fn func() error) bool {
	d.Lock()
	defer d.Unlock()
	return translate(d, fn)
}

// translate runs fn and reports its error or panic on the device error channel (or the global one
// if d is nil). It returns whether fn succeeded.
func translate(d *core.Device, fn func() error) bool {
	var err error
	if exception := exceptions.Try(func() { err = fn() }); exception != nil {
		err = exceptionToError(exception)
	}
	if err != nil {
		core.ReportError(d, err)
		return false
	}
	return true
}

// exceptionToError converts a panic to an error reported as ErrorUnknown, unless it carries an
// ErrorCode.
func exceptionToError(exception any) error {
	if err, ok := exception.(error); ok {
		return err
	}
	return errors.Errorf("%v", exception)
}
