// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package gpu

import (
	"sync"

	"github.com/gomlx/denoise/internal/kernels"
	"github.com/gomlx/denoise/pkg/core"
)

// Driver is the native runtime of a GPU device type (CUDA, HIP or SYCL): it enumerates devices,
// allocates memory and creates streams.
//
// Device memory is represented as a []byte spanning the device address range: it must only be
// accessed by the host if its storage is host accessible.
type Driver interface {
	// Name of the runtime, for logging.
	Name() string

	// NumDevices available. 0 means the device type is not supported.
	NumDevices() int

	// SupportsStorage returns whether memory of the given storage can be allocated.
	SupportsStorage(storage core.Storage) bool

	// ExternalMemoryTypes that can be imported.
	ExternalMemoryTypes() core.ExternalMemoryTypeFlag

	// NewStream creates a stream (a CUDA/HIP stream or an in-order SYCL queue) on the device.
	NewStream(deviceID int) (Stream, error)

	// Alloc allocates memory on the device. Failures to allocate must wrap core.ErrOutOfMemory.
	Alloc(deviceID int, byteSize int, storage core.Storage) ([]byte, error)

	// Free memory returned by Alloc.
	Free(mem []byte, storage core.Storage) error

	// ImportExternal imports external memory into the device address space.
	ImportExternal(deviceID int, desc core.ExternalMemoryDesc, byteSize int) (ExternalMemory, error)
}

// ExternalMemory is memory imported from another API.
type ExternalMemory interface {
	// Data in the device address space.
	Data() []byte

	// Release the imported memory object. The original handle is not closed.
	Release() error
}

// Stream is an in-order queue of device work. All methods enqueue work and return immediately,
// except Synchronize and Destroy.
//
// Errors raised by enqueued work are returned by the next Synchronize.
type Stream interface {
	// Memcpy copies len(src) bytes from src to dst, any of them may be device memory.
	Memcpy(dst, src []byte) error

	// Copy copies the image src to dst, converting formats.
	Copy(dst, src kernels.View) error

	// AutoExposure computes the input scale of src and stores it in result.
	AutoExposure(src kernels.View, result *float32) error

	// Denoise runs the denoising kernel on rows [y0, y1). If scale is not nil, it overrides
	// params.InputScale with the value it points to when the kernel runs.
	Denoise(dst, src kernels.View, params kernels.Params, scale *float32, y0, y1 int) error

	// HostFunc runs fn on the host, in stream order.
	HostFunc(fn func() error) error

	// RecordEvent returns an event triggered when the work enqueued so far is finished.
	RecordEvent() (Event, error)

	// WaitEvent makes the work enqueued after it wait for ev.
	WaitEvent(ev Event) error

	// Synchronize blocks until the work enqueued so far is finished, and returns the first error
	// raised by it since the last Synchronize.
	Synchronize() error

	// Destroy the stream, after synchronizing it.
	Destroy() error
}

// Event is a point in the work of a stream, used for dependencies between streams and with
// the application (e.g. SYCL events).
type Event interface {
	// Synchronize blocks until the event is triggered.
	Synchronize() error

	// Query returns whether the event was triggered, without blocking.
	Query() bool
}

// NativeStreamWrapper is implemented by drivers that can use streams (or SYCL queues) created by
// the application with the native runtime, referred to by their native handle.
type NativeStreamWrapper interface {
	WrapNativeStream(native uintptr) (Stream, error)
}

// WrapNativeStreams converts native stream handles of the device type to Streams.
func WrapNativeStreams(deviceType core.DeviceType, natives []uintptr) ([]Stream, error) {
	if len(natives) == 0 {
		return nil, nil
	}
	wrapper, ok := lookupDriver(deviceType).(NativeStreamWrapper)
	if !ok {
		return nil, core.Errorf(core.ErrorUnsupportedHardware, "native %s streams are not supported", deviceType)
	}
	streams := make([]Stream, len(natives))
	for i, native := range natives {
		if native == 0 {
			return nil, core.Errorf(core.ErrorInvalidArgument, "native stream %d is null", i)
		}
		var err error
		streams[i], err = wrapper.WrapNativeStream(native)
		if err != nil {
			return nil, err
		}
	}
	return streams, nil
}

var (
	muDrivers sync.Mutex
	drivers   = make(map[core.DeviceType]Driver)
)

// RegisterDriver sets the native runtime of a GPU device type. Until a driver is registered, the
// device type is unsupported.
func RegisterDriver(deviceType core.DeviceType, driver Driver) {
	muDrivers.Lock()
	defer muDrivers.Unlock()
	if driver == nil {
		delete(drivers, deviceType)
		return
	}
	drivers[deviceType] = driver
}

func lookupDriver(deviceType core.DeviceType) Driver {
	muDrivers.Lock()
	defer muDrivers.Unlock()
	return drivers[deviceType]
}
