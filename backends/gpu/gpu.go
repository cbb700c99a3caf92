// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package gpu implements the SYCL, CUDA and HIP devices on top of a native Driver.
//
// All three device types share the same engine: device memory allocated by the driver, and work
// enqueued in order on driver streams. The driver of each device type is set with RegisterDriver;
// device types without a driver are registered but unsupported.
//
// To use it simply include:
//
//	import _ "github.com/gomlx/denoise/backends/gpu"
package gpu

import (
	"github.com/gomlx/denoise/pkg/core"
	"github.com/pkg/errors"
)

func init() {
	for _, deviceType := range []core.DeviceType{core.DeviceTypeCUDA, core.DeviceTypeHIP, core.DeviceTypeSYCL} {
		core.RegisterDeviceType(deviceType, func() (core.DeviceBackend, error) {
			return &Backend{deviceType: deviceType}, nil
		})
	}
}

// Backend implements core.DeviceBackend for a GPU device type.
type Backend struct {
	deviceType core.DeviceType

	// streams provided by the application, used instead of creating new ones. They are not
	// destroyed with the device.
	streams []Stream
}

var _ core.DeviceBackend = &Backend{}

// Type implements core.DeviceBackend.
func (b *Backend) Type() core.DeviceType {
	return b.deviceType
}

// IsSupported implements core.DeviceBackend: a driver must be registered and report devices.
func (b *Backend) IsSupported() bool {
	driver := lookupDriver(b.deviceType)
	return driver != nil && driver.NumDevices() > 0
}

// Streams provided by the application.
func (b *Backend) Streams() []Stream {
	return b.streams
}

// NewEngine implements core.DeviceBackend.
func (b *Backend) NewEngine(config core.EngineConfig) (core.Engine, error) {
	driver := lookupDriver(b.deviceType)
	if driver == nil {
		return nil, core.Errorf(core.ErrorUnsupportedHardware, "no %s driver registered", b.deviceType)
	}
	if config.DeviceID >= driver.NumDevices() {
		return nil, core.Errorf(core.ErrorInvalidArgument, "invalid %s device ID %d, only %d devices available",
			b.deviceType, config.DeviceID, driver.NumDevices())
	}
	if config.Logf == nil {
		config.Logf = func(int, string, ...any) {}
	}
	e := &Engine{
		deviceType: b.deviceType,
		config:     config,
		driver:     driver,
		deviceID:   config.DeviceID,
		streams:    b.streams,
	}
	if len(e.streams) == 0 {
		stream, err := driver.NewStream(config.DeviceID)
		if err != nil {
			return nil, errors.WithMessagef(err, "failed to create %s stream", driver.Name())
		}
		e.streams = []Stream{stream}
		e.ownsStreams = true
	}
	e.dirty = make([]bool, len(e.streams))
	config.Logf(1, "%s engine: device %d of %d, %d stream(s)", driver.Name(), config.DeviceID, driver.NumDevices(), len(e.streams))
	return e, nil
}

// newDeviceWithStreams creates a device of the given type using the application streams.
func newDeviceWithStreams(deviceType core.DeviceType, streams []Stream) *core.Device {
	return core.NewDeviceWithBackend(&Backend{deviceType: deviceType, streams: streams})
}
