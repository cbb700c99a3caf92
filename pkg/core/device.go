// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package core

import (
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Version of the runtime, reported by the "version" device option as major*10000 + minor*100 + patch.
const (
	VersionMajor = 2
	VersionMinor = 0
	VersionPatch = 0
)

// Device is the top-level object bound to one compute backend.
//
// A device is created unconfigured: options can be set, but buffers and filters can only be
// created after Commit, which constructs the engine.
//
// The device mutex serializes every operation on the device and its children. Methods of Device,
// Buffer and Filter expect the caller to hold it (see Lock), except where noted.
type Device struct {
	Object

	mu        sync.Mutex
	backend   DeviceBackend
	errors    errorChannel
	committed bool
	engine    Engine
	options   deviceOptions
	uuid      uuid.UUID
}

// NewDeviceWithBackend creates an unconfigured device for the given backend variant.
//
// Most users want NewDevice; backend packages use this for their specialized constructors
// (e.g. a CUDA device using an existing stream).
func NewDeviceWithBackend(backend DeviceBackend) *Device {
	d := &Device{
		backend: backend,
		uuid:    uuid.New(),
	}
	d.options.setAffinity = true
	d.InitRef()
	return d
}

// Lock the device mutex.
func (d *Device) Lock() { d.mu.Lock() }

// Unlock the device mutex.
func (d *Device) Unlock() { d.mu.Unlock() }

// Type of the device.
func (d *Device) Type() DeviceType {
	return d.backend.Type()
}

// Backend returns the device type specific variant, used by backend-specific entry points.
func (d *Device) Backend() DeviceBackend {
	return d.backend
}

// UUID identifies the device for the life of the process.
func (d *Device) UUID() uuid.UUID {
	return d.uuid
}

// String implements fmt.Stringer.
func (d *Device) String() string {
	return d.Type().String() + " device " + d.uuid.String()[:8]
}

// Logf logs the message if the device verbosity or the klog verbosity is at least level.
func (d *Device) Logf(level int, format string, args ...any) {
	if int(d.options.verbose.Load()) >= level || klog.V(klog.Level(level)).Enabled() {
		klog.InfofDepth(1, "%s: "+format, append([]any{d}, args...)...)
	}
}

// SetError sets the sticky error of the device and calls the error function, if one is installed.
func (d *Device) SetError(code ErrorCode, message string) {
	if code != ErrorNone {
		d.Logf(1, "error: %s: %s", code, message)
	}
	d.errors.set(code, message)
}

// GetError returns the last error and clears it.
// It can be called without holding the device mutex.
func (d *Device) GetError() (ErrorCode, string) {
	return d.errors.get()
}

// SetErrorFunc installs fn to be called on every error. Pass nil to remove it.
func (d *Device) SetErrorFunc(fn ErrorFunc) {
	d.errors.setFunc(fn)
}

// IsCommitted returns whether Commit was called.
func (d *Device) IsCommitted() bool {
	return d.committed
}

// CheckCommitted returns an ErrorInvalidOperation if the device is not committed.
func (d *Device) CheckCommitted() error {
	if !d.committed {
		return Errorf(ErrorInvalidOperation, "the device is not committed")
	}
	return nil
}

// Commit finalizes the device configuration and constructs the engine.
// It is idempotent: calls after the first one do nothing.
func (d *Device) Commit() error {
	if d.committed {
		return nil
	}
	if !d.backend.IsSupported() {
		return Errorf(ErrorUnsupportedHardware, "unsupported hardware: no %s device found", d.Type())
	}
	d.options.applyEnv()
	config := d.options.engineConfig()
	config.Logf = d.Logf
	engine, err := d.backend.NewEngine(config)
	if err != nil {
		return errors.WithMessagef(err, "failed to create engine for %s", d)
	}
	d.engine = engine
	d.committed = true
	d.Logf(1, "committed: numThreads=%d, setAffinity=%v, deviceID=%d, externalMemoryTypes=%s",
		config.NumThreads, config.SetAffinity, config.DeviceID, engine.ExternalMemoryTypes())
	return nil
}

// Engine of the device, nil before commit.
func (d *Device) Engine() Engine {
	return d.engine
}

// ExternalMemoryTypes supported by the device: none before commit.
func (d *Device) ExternalMemoryTypes() ExternalMemoryTypeFlag {
	if d.engine == nil {
		return ExternalMemoryTypeFlagNone
	}
	return d.engine.ExternalMemoryTypes()
}

// Wait blocks until all asynchronous work on the device is finished. It returns the first error
// raised by the asynchronous work since the last Wait.
func (d *Device) Wait() error {
	if d.engine == nil {
		return nil
	}
	return d.engine.Wait()
}

// NewBuffer allocates a buffer owned by the device. StorageUndefined selects the engine default.
func (d *Device) NewBuffer(byteSize int, storage Storage) (*Buffer, error) {
	if err := d.CheckCommitted(); err != nil {
		return nil, err
	}
	if byteSize < 0 {
		return nil, Errorf(ErrorInvalidArgument, "invalid buffer size %d", byteSize)
	}
	if storage < StorageUndefined || storage > StorageManaged {
		return nil, Errorf(ErrorInvalidArgument, "invalid storage mode %d", int(storage))
	}
	if storage == StorageUndefined {
		storage = d.engine.DefaultStorage()
	}
	mem, err := d.engine.NewMemory(byteSize, storage)
	if err != nil {
		return nil, err
	}
	return newBuffer(d, mem, byteSize), nil
}

// NewSharedBuffer creates a buffer over memory owned by the user.
// The memory must stay valid until the buffer is destroyed.
func (d *Device) NewSharedBuffer(data []byte) (*Buffer, error) {
	if err := d.CheckCommitted(); err != nil {
		return nil, err
	}
	if data == nil {
		return nil, Errorf(ErrorInvalidArgument, "shared buffer memory is null")
	}
	mem, err := d.engine.NewSharedMemory(data)
	if err != nil {
		return nil, err
	}
	return newBuffer(d, mem, len(data)), nil
}

// NewExternalBufferFromFD imports memory exported by another API as a POSIX file descriptor.
func (d *Device) NewExternalBufferFromFD(fdType ExternalMemoryTypeFlag, fd int, byteSize int) (*Buffer, error) {
	if err := d.CheckCommitted(); err != nil {
		return nil, err
	}
	if err := d.checkExternalMemoryType(fdType); err != nil {
		return nil, err
	}
	if !fdType.IsFD() {
		return nil, Errorf(ErrorInvalidArgument, "external memory type %s is not a file descriptor type", fdType)
	}
	return d.importExternal(ExternalMemoryDesc{Type: fdType, FD: fd}, byteSize)
}

// NewExternalBufferFromWin32Handle imports memory exported by another API as a Win32 handle or
// a named object. Exactly one of handle and name must be set.
func (d *Device) NewExternalBufferFromWin32Handle(handleType ExternalMemoryTypeFlag, handle uintptr, name string, byteSize int) (*Buffer, error) {
	if err := d.CheckCommitted(); err != nil {
		return nil, err
	}
	if err := d.checkExternalMemoryType(handleType); err != nil {
		return nil, err
	}
	if handleType.IsFD() {
		return nil, Errorf(ErrorInvalidArgument, "external memory type %s is not a Win32 handle type", handleType)
	}
	if (handle == 0 && name == "") || (handle != 0 && name != "") {
		return nil, Errorf(ErrorInvalidArgument, "exactly one of the external memory handle and name must be non-null")
	}
	return d.importExternal(ExternalMemoryDesc{Type: handleType, Handle: handle, Name: name}, byteSize)
}

func (d *Device) checkExternalMemoryType(memType ExternalMemoryTypeFlag) error {
	if !memType.IsSingle() || memType&d.ExternalMemoryTypes() == 0 {
		return Errorf(ErrorInvalidArgument, "external memory type not supported by the device")
	}
	return nil
}

func (d *Device) importExternal(desc ExternalMemoryDesc, byteSize int) (*Buffer, error) {
	if byteSize < 0 {
		return nil, Errorf(ErrorInvalidArgument, "invalid buffer size %d", byteSize)
	}
	mem, err := d.engine.ImportExternalMemory(desc, byteSize)
	if err != nil {
		return nil, err
	}
	return newBuffer(d, mem, byteSize), nil
}

// NewFilter creates a filter of the given type, e.g. "RT".
func (d *Device) NewFilter(filterType string) (*Filter, error) {
	if err := d.CheckCommitted(); err != nil {
		return nil, err
	}
	impl, err := d.engine.NewFilter(filterType)
	if err != nil {
		return nil, err
	}
	return newFilter(d, filterType, impl), nil
}

// destroy waits for pending work and closes the engine.
// It must not be called with the device mutex held: the device owns it.
func (d *Device) destroy() error {
	var err error
	if d.engine != nil {
		err = d.engine.Wait()
		if closeErr := d.engine.Close(); err == nil {
			err = closeErr
		}
		d.engine = nil
	}
	d.Logf(1, "destroyed")
	d.runDestroyHooks()
	return err
}

// ReleaseDevice drops a reference to the device. The last reference waits for all asynchronous
// work and destroys the engine, without locking the device mutex.
func ReleaseDevice(d *Device) error {
	if d.DecRefKeep() != 1 {
		return nil
	}
	return d.destroy()
}
