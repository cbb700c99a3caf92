// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package core

import (
	"os"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// DeviceBackend is the device type specific part of a Device: one variant for each of
// CPU, SYCL, CUDA and HIP.
type DeviceBackend interface {
	// Type of the device.
	Type() DeviceType

	// IsSupported returns whether there is hardware available for this backend.
	IsSupported() bool

	// NewEngine creates the engine, it is called by Device.Commit.
	NewEngine(config EngineConfig) (Engine, error)
}

// EngineConfig holds the device options frozen by Device.Commit.
type EngineConfig struct {
	Verbose     int
	NumThreads  int
	SetAffinity bool
	DeviceID    int

	// Logf logs on behalf of the device, see Device.Logf.
	Logf func(level int, format string, args ...any)
}

// DeviceConstructor creates the default DeviceBackend for a registered device type.
type DeviceConstructor func() (DeviceBackend, error)

var (
	muRegistry             sync.Mutex
	registeredConstructors = make(map[DeviceType]DeviceConstructor)
)

// DefaultDeviceEnv is the environment variable with the device type used for DeviceTypeDefault,
// e.g.: "cpu" or "cuda".
const DefaultDeviceEnv = "OIDN_DEFAULT_DEVICE"

// defaultDeviceOrder is the preference order for DeviceTypeDefault.
var defaultDeviceOrder = []DeviceType{DeviceTypeCUDA, DeviceTypeHIP, DeviceTypeSYCL, DeviceTypeCPU}

// RegisterDeviceType registers the constructor for a device type.
//
// Backends call it during package initialization, see package backends/default.
func RegisterDeviceType(deviceType DeviceType, constructor DeviceConstructor) {
	muRegistry.Lock()
	defer muRegistry.Unlock()
	registeredConstructors[deviceType] = constructor
}

func lookupConstructor(deviceType DeviceType) (DeviceConstructor, bool) {
	muRegistry.Lock()
	defer muRegistry.Unlock()
	constructor, found := registeredConstructors[deviceType]
	return constructor, found
}

// RegisteredDeviceTypes lists the registered device types, in the default preference order.
func RegisteredDeviceTypes() []DeviceType {
	var types []DeviceType
	for _, deviceType := range defaultDeviceOrder {
		if _, found := lookupConstructor(deviceType); found {
			types = append(types, deviceType)
		}
	}
	return types
}

// NewDevice creates an unconfigured device of the given type.
//
// For DeviceTypeDefault the device type is read from $OIDN_DEFAULT_DEVICE if set; otherwise the
// first supported type in the order CUDA, HIP, SYCL, CPU is used.
func NewDevice(deviceType DeviceType) (*Device, error) {
	if deviceType == DeviceTypeDefault {
		if config, found := os.LookupEnv(DefaultDeviceEnv); found && config != "" {
			var err error
			deviceType, err = DeviceTypeString(strings.ToUpper(config))
			if err != nil || deviceType == DeviceTypeDefault {
				return nil, Errorf(ErrorInvalidArgument, "invalid device type %q in $%s", config, DefaultDeviceEnv)
			}
			return newRegisteredDevice(deviceType)
		}
		for _, candidate := range RegisteredDeviceTypes() {
			constructor, _ := lookupConstructor(candidate)
			backend, err := constructor()
			if err != nil || !backend.IsSupported() {
				continue
			}
			return NewDeviceWithBackend(backend), nil
		}
		return nil, Errorf(ErrorUnsupportedHardware, "no supported device found")
	}
	return newRegisteredDevice(deviceType)
}

func newRegisteredDevice(deviceType DeviceType) (*Device, error) {
	constructor, found := lookupConstructor(deviceType)
	if !found {
		return nil, Errorf(ErrorInvalidArgument, "unsupported device type")
	}
	backend, err := constructor()
	if err != nil {
		return nil, errors.WithMessagef(err, "failed to create %s device", deviceType)
	}
	return NewDeviceWithBackend(backend), nil
}
