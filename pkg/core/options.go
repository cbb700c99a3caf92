// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package core

import (
	"os"
	"strconv"
	"sync/atomic"

	"k8s.io/klog/v2"
)

// Environment variables read by Device.Commit. A set variable wins over the value set by the user.
const (
	VerboseEnv     = "OIDN_VERBOSE"
	NumThreadsEnv  = "OIDN_NUM_THREADS"
	SetAffinityEnv = "OIDN_SET_AFFINITY"
)

// deviceOptions are the integer options of a Device.
type deviceOptions struct {
	// verbose is read by async work through Device.Logf.
	verbose     atomic.Int32
	numThreads  int
	setAffinity bool
	deviceID    int
}

func (o *deviceOptions) engineConfig() EngineConfig {
	return EngineConfig{
		Verbose:     int(o.verbose.Load()),
		NumThreads:  o.numThreads,
		SetAffinity: o.setAffinity,
		DeviceID:    o.deviceID,
	}
}

// applyEnv overrides the options with the environment variables set.
func (o *deviceOptions) applyEnv() {
	if value, ok := lookupEnvInt(VerboseEnv); ok {
		o.verbose.Store(int32(value))
	}
	if value, ok := lookupEnvInt(NumThreadsEnv); ok {
		o.numThreads = value
	}
	if value, ok := lookupEnvInt(SetAffinityEnv); ok {
		o.setAffinity = value != 0
	}
}

func lookupEnvInt(name string) (int, bool) {
	str, found := os.LookupEnv(name)
	if !found || str == "" {
		return 0, false
	}
	value, err := strconv.Atoi(str)
	if err != nil {
		klog.Warningf("ignoring invalid value %q for $%s: %v", str, name, err)
		return 0, false
	}
	return value, true
}

func envIsSet(name string) bool {
	_, ok := lookupEnvInt(name)
	return ok
}

// Set1i sets an integer (or boolean) device option.
//
// Options that shape the engine ("numThreads", "setAffinity", "deviceID") can only be changed
// before Commit; "verbose" can be changed at any time.
func (d *Device) Set1i(name string, value int) error {
	switch name {
	case "verbose":
		if envIsSet(VerboseEnv) {
			klog.Warningf("%s: ignoring \"verbose\" option, it is set by $%s", d, VerboseEnv)
			return nil
		}
		d.options.verbose.Store(int32(value))
		return nil
	case "numThreads", "setAffinity", "deviceID":
		if d.committed {
			return Errorf(ErrorInvalidOperation, "device parameter %q cannot be changed after commit", name)
		}
		switch name {
		case "numThreads":
			if value < 0 {
				return Errorf(ErrorInvalidArgument, "invalid number of threads %d", value)
			}
			d.options.numThreads = value
		case "setAffinity":
			d.options.setAffinity = value != 0
		case "deviceID":
			if value < 0 {
				return Errorf(ErrorInvalidArgument, "invalid device ID %d", value)
			}
			d.options.deviceID = value
		}
		return nil
	case "type", "version", "versionMajor", "versionMinor", "versionPatch",
		"externalMemoryTypes", "systemMemorySupported", "managedMemorySupported":
		return Errorf(ErrorInvalidArgument, "device parameter %q is read-only", name)
	default:
		klog.Warningf("%s: unknown device parameter %q", d, name)
		return nil
	}
}

// Get1i returns an integer (or boolean) device option.
func (d *Device) Get1i(name string) (int, error) {
	switch name {
	case "type":
		return int(d.Type()), nil
	case "version":
		return VersionMajor*10000 + VersionMinor*100 + VersionPatch, nil
	case "versionMajor":
		return VersionMajor, nil
	case "versionMinor":
		return VersionMinor, nil
	case "versionPatch":
		return VersionPatch, nil
	case "verbose":
		return int(d.options.verbose.Load()), nil
	case "numThreads":
		return d.options.numThreads, nil
	case "setAffinity":
		return boolToInt(d.options.setAffinity), nil
	case "deviceID":
		return d.options.deviceID, nil
	case "externalMemoryTypes":
		return int(d.ExternalMemoryTypes()), nil
	case "systemMemorySupported":
		return boolToInt(d.engine != nil && d.engine.DefaultStorage() == StorageHost), nil
	case "managedMemorySupported":
		return boolToInt(d.supportsStorage(StorageManaged)), nil
	default:
		return 0, Errorf(ErrorInvalidArgument, "unknown device parameter %q", name)
	}
}

// GetData returns an opaque byte property of the device: "uuid" is the only one.
func (d *Device) GetData(name string) ([]byte, error) {
	switch name {
	case "uuid":
		data := d.uuid
		return data[:], nil
	default:
		return nil, Errorf(ErrorInvalidArgument, "unknown device parameter %q", name)
	}
}

// supportsStorage returns whether the engine can allocate the given storage. It is only known
// after commit.
func (d *Device) supportsStorage(storage Storage) bool {
	if d.engine == nil {
		return false
	}
	if s, ok := d.engine.(interface{ SupportsStorage(Storage) bool }); ok {
		return s.SupportsStorage(storage)
	}
	return false
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
