// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package api

import (
	"github.com/gomlx/denoise/backends/gpu"
	"github.com/gomlx/denoise/internal/handles"
	"github.com/gomlx/denoise/pkg/core"
)

func newDevice(create func() (*core.Device, error)) Device {
	var d *core.Device
	if !translate(nil, func() (err error) {
		d, err = create()
		return
	}) {
		return 0
	}
	return newDeviceHandle(d)
}

// NewDevice creates an unconfigured device of the given type. core.DeviceTypeDefault selects the
// best device available.
func NewDevice(deviceType core.DeviceType) Device {
	return newDevice(func() (*core.Device, error) { return core.NewDevice(deviceType) })
}

// NewSYCLDevice creates a SYCL device using the given queues.
func NewSYCLDevice(queues []gpu.Stream) Device {
	return newDevice(func() (*core.Device, error) { return gpu.NewSYCLDevice(queues) })
}

// NewCUDADevice creates a CUDA device using the given stream, at most one.
func NewCUDADevice(streams []gpu.Stream) Device {
	return newDevice(func() (*core.Device, error) { return gpu.NewCUDADevice(streams) })
}

// NewHIPDevice creates a HIP device using the given stream, at most one.
func NewHIPDevice(streams []gpu.Stream) Device {
	return newDevice(func() (*core.Device, error) { return gpu.NewHIPDevice(streams) })
}

// NewSYCLDeviceFromNative creates a SYCL device over native queue handles, wrapped by the
// registered SYCL driver.
func NewSYCLDeviceFromNative(queues []uintptr) Device {
	return newDevice(func() (*core.Device, error) {
		streams, err := gpu.WrapNativeStreams(core.DeviceTypeSYCL, queues)
		if err != nil {
			return nil, err
		}
		return gpu.NewSYCLDevice(streams)
	})
}

// NewCUDADeviceFromNative creates a CUDA device over native (deviceID, stream) pairs, at most one.
// The device ID of the first pair selects the physical device.
func NewCUDADeviceFromNative(deviceIDs []int, streams []uintptr) Device {
	return newNativeStreamDevice(core.DeviceTypeCUDA, deviceIDs, streams, gpu.NewCUDADevice)
}

// NewHIPDeviceFromNative creates a HIP device over native (deviceID, stream) pairs, at most one.
func NewHIPDeviceFromNative(deviceIDs []int, streams []uintptr) Device {
	return newNativeStreamDevice(core.DeviceTypeHIP, deviceIDs, streams, gpu.NewHIPDevice)
}

func newNativeStreamDevice(deviceType core.DeviceType, deviceIDs []int, natives []uintptr,
	create func([]gpu.Stream) (*core.Device, error)) Device {
	h := newDevice(func() (*core.Device, error) {
		if len(natives) > 1 {
			return nil, core.Errorf(core.ErrorInvalidArgument, "unsupported number of streams")
		}
		streams, err := gpu.WrapNativeStreams(deviceType, natives)
		if err != nil {
			return nil, err
		}
		return create(streams)
	})
	if h != 0 && len(deviceIDs) > 0 {
		SetDevice1i(h, "deviceID", deviceIDs[0])
	}
	return h
}

// RetainDevice adds a reference to the device.
func RetainDevice(h Device) {
	if d, ok := lookupDevice(h); ok {
		d.IncRef()
	}
}

// ReleaseDevice drops a reference to the device. The last reference waits for all the work of
// the device and destroys it, without locking it: errors raised then are reported on the global
// error channel, since the device is gone.
func ReleaseDevice(h Device) {
	d, ok := lookupDevice(h)
	if !ok {
		return
	}
	translate(nil, func() error { return core.ReleaseDevice(d) })
}

// SetDevice1b sets a boolean device option.
func SetDevice1b(h Device, name string, value bool) {
	SetDevice1i(h, name, boolToInt(value))
}

// SetDevice1i sets an integer device option.
func SetDevice1i(h Device, name string, value int) {
	if d, ok := lookupDevice(h); ok {
		locked(d, func() error { return d.Set1i(name, value) })
	}
}

// GetDevice1b returns a boolean device option.
func GetDevice1b(h Device, name string) bool {
	return GetDevice1i(h, name) != 0
}

// GetDevice1i returns an integer device option.
func GetDevice1i(h Device, name string) int {
	d, ok := lookupDevice(h)
	if !ok {
		return 0
	}
	var value int
	locked(d, func() (err error) {
		value, err = d.Get1i(name)
		return
	})
	return value
}

// GetDeviceData returns an opaque data device property, e.g. "uuid".
func GetDeviceData(h Device, name string) []byte {
	d, ok := lookupDevice(h)
	if !ok {
		return nil
	}
	var data []byte
	locked(d, func() (err error) {
		data, err = d.GetData(name)
		return
	})
	return data
}

// SetDeviceErrorFunction installs fn to be called on every error of the device. With a null
// device handle, it is installed for the errors not bound to any device.
func SetDeviceErrorFunction(h Device, fn core.ErrorFunc) {
	if h == 0 {
		core.SetGlobalErrorFunc(fn)
		return
	}
	if d, ok := lookupDevice(h); ok {
		locked(d, func() error {
			d.SetErrorFunc(fn)
			return nil
		})
	}
}

// GetDeviceError returns and clears the last error of the device. With a null device handle, it
// returns the last error not bound to any device.
//
// It does not lock the device, so it can be called from any goroutine at any time.
func GetDeviceError(h Device) (core.ErrorCode, string) {
	if h == 0 {
		return core.GetGlobalError()
	}
	d, ok := devices.Get(handles.Handle(h))
	if !ok {
		return core.ErrorInvalidArgument, "invalid device handle"
	}
	return d.GetError()
}

// CommitDevice finalizes the configuration of the device. Buffers and filters can only be
// created after.
func CommitDevice(h Device) {
	if d, ok := lookupDevice(h); ok {
		locked(d, d.Commit)
	}
}

// SyncDevice waits for all the asynchronous work of the device. Errors raised by that work are
// reported.
func SyncDevice(h Device) {
	if d, ok := lookupDevice(h); ok {
		locked(d, d.Wait)
	}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
