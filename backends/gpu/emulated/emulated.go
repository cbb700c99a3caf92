// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package emulated implements a gpu.Driver on the host, so the GPU engine can run (and be tested)
// without GPU hardware: device memory is host memory and each stream runs its work in order on
// its own goroutine.
//
// External memory is emulated by a registry: Export* functions return fake file descriptors or
// Win32 handles for host memory that can later be imported.
package emulated

import (
	"sync"
	"sync/atomic"

	"github.com/dustin/go-humanize"
	"github.com/gomlx/denoise/backends/gpu"
	"github.com/gomlx/denoise/internal/kernels"
	"github.com/gomlx/denoise/internal/xsync"
	"github.com/gomlx/denoise/pkg/core"
	"github.com/pkg/errors"
)

// Driver implements gpu.Driver on the host.
type Driver struct {
	numDevices int

	// memoryLimit in bytes for all allocations, 0 for no limit.
	memoryLimit atomic.Int64
	allocated   atomic.Int64

	externalTypes core.ExternalMemoryTypeFlag

	muExports sync.Mutex
	nextFD    int
	nextKey   uintptr
	fds       map[int][]byte
	handles   map[uintptr][]byte
	names     map[string][]byte
	imported  atomic.Int32
	natives   map[uintptr]*Stream

	streamsCreated atomic.Int32
}

var _ gpu.Driver = &Driver{}

// New creates a driver with numDevices devices, supporting the import of opaque FDs and opaque
// Win32 handles.
func New(numDevices int) *Driver {
	return &Driver{
		numDevices:    numDevices,
		externalTypes: core.ExternalMemoryTypeFlagOpaqueFD | core.ExternalMemoryTypeFlagOpaqueWin32,
		nextFD:        1000,
		nextKey:       0x1000,
		fds:           make(map[int][]byte),
		handles:       make(map[uintptr][]byte),
		names:         make(map[string][]byte),
		natives:       make(map[uintptr]*Stream),
	}
}

// Register creates a driver with one device and registers it for deviceType.
func Register(deviceType core.DeviceType) *Driver {
	d := New(1)
	gpu.RegisterDriver(deviceType, d)
	return d
}

// Name implements gpu.Driver.
func (d *Driver) Name() string { return "emulated" }

// NumDevices implements gpu.Driver.
func (d *Driver) NumDevices() int { return d.numDevices }

// SetMemoryLimit limits the total allocated memory. 0 means no limit.
func (d *Driver) SetMemoryLimit(byteSize int64) {
	d.memoryLimit.Store(byteSize)
}

// Allocated returns the memory currently allocated, in bytes.
func (d *Driver) Allocated() int64 { return d.allocated.Load() }

// SetExternalMemoryTypes changes the external memory types advertised.
func (d *Driver) SetExternalMemoryTypes(types core.ExternalMemoryTypeFlag) {
	d.externalTypes = types
}

// ExternalMemoryTypes implements gpu.Driver.
func (d *Driver) ExternalMemoryTypes() core.ExternalMemoryTypeFlag { return d.externalTypes }

// SupportsStorage implements gpu.Driver.
func (d *Driver) SupportsStorage(storage core.Storage) bool {
	return storage >= core.StorageHost && storage <= core.StorageManaged
}

// Alloc implements gpu.Driver.
func (d *Driver) Alloc(deviceID int, byteSize int, storage core.Storage) ([]byte, error) {
	total := d.allocated.Add(int64(byteSize))
	if limit := d.memoryLimit.Load(); limit > 0 && total > limit {
		d.allocated.Add(-int64(byteSize))
		return nil, errors.Wrapf(core.ErrOutOfMemory, "device %d: %s requested, %s of %s in use",
			deviceID, humanize.Bytes(uint64(byteSize)), humanize.Bytes(uint64(total-int64(byteSize))), humanize.Bytes(uint64(limit)))
	}
	return make([]byte, byteSize), nil
}

// Free implements gpu.Driver.
func (d *Driver) Free(mem []byte, _ core.Storage) error {
	d.allocated.Add(-int64(len(mem)))
	return nil
}

// ExportFD returns a fake file descriptor for mem, to be imported as external memory.
func (d *Driver) ExportFD(mem []byte) int {
	d.muExports.Lock()
	defer d.muExports.Unlock()
	d.nextFD++
	d.fds[d.nextFD] = mem
	return d.nextFD
}

// ExportWin32 returns a fake Win32 handle for mem. If name is not empty, mem can also be imported
// by name.
func (d *Driver) ExportWin32(mem []byte, name string) uintptr {
	d.muExports.Lock()
	defer d.muExports.Unlock()
	d.nextKey++
	d.handles[d.nextKey] = mem
	if name != "" {
		d.names[name] = mem
	}
	return d.nextKey
}

// NativeHandle returns a fake native handle for s, as an application using the native runtime
// would pass it.
func (d *Driver) NativeHandle(s *Stream) uintptr {
	d.muExports.Lock()
	defer d.muExports.Unlock()
	d.nextKey++
	d.natives[d.nextKey] = s
	return d.nextKey
}

// WrapNativeStream implements gpu.NativeStreamWrapper for handles returned by NativeHandle.
func (d *Driver) WrapNativeStream(native uintptr) (gpu.Stream, error) {
	d.muExports.Lock()
	defer d.muExports.Unlock()
	s, found := d.natives[native]
	if !found {
		return nil, core.Errorf(core.ErrorInvalidArgument, "invalid native stream handle 0x%x", native)
	}
	return s, nil
}

// NumImported returns the number of imported memory objects not yet released.
func (d *Driver) NumImported() int { return int(d.imported.Load()) }

// ImportExternal implements gpu.Driver.
func (d *Driver) ImportExternal(_ int, desc core.ExternalMemoryDesc, byteSize int) (gpu.ExternalMemory, error) {
	d.muExports.Lock()
	defer d.muExports.Unlock()
	var mem []byte
	var found bool
	switch {
	case desc.Type.IsFD():
		mem, found = d.fds[desc.FD]
	case desc.Name != "":
		mem, found = d.names[desc.Name]
	default:
		mem, found = d.handles[desc.Handle]
	}
	if !found {
		return nil, core.Errorf(core.ErrorInvalidArgument, "invalid external memory handle")
	}
	if byteSize > len(mem) {
		return nil, core.Errorf(core.ErrorInvalidArgument, "external memory is smaller (%d bytes) than requested (%d bytes)", len(mem), byteSize)
	}
	d.imported.Add(1)
	return &externalMemory{driver: d, data: mem[:byteSize:byteSize]}, nil
}

type externalMemory struct {
	driver   *Driver
	data     []byte
	released bool
}

func (m *externalMemory) Data() []byte { return m.data }

func (m *externalMemory) Release() error {
	if m.released {
		return errors.New("external memory released twice")
	}
	m.released = true
	m.driver.imported.Add(-1)
	return nil
}

// NumStreams returns the number of streams created.
func (d *Driver) NumStreams() int { return int(d.streamsCreated.Load()) }

// NewStream implements gpu.Driver.
func (d *Driver) NewStream(deviceID int) (gpu.Stream, error) {
	if deviceID < 0 || deviceID >= d.numDevices {
		return nil, errors.Errorf("invalid device %d", deviceID)
	}
	d.streamsCreated.Add(1)
	return NewStream(), nil
}

// Stream implements gpu.Stream with a FIFO queue.
type Stream struct {
	queue      *xsync.Queue
	numKernels atomic.Int32
	destroyed  atomic.Bool
}

var _ gpu.Stream = &Stream{}

// NewStream creates a stream not associated to any driver: it can be given to the gpu device
// constructors as an application stream.
func NewStream() *Stream {
	return &Stream{queue: xsync.NewQueue()}
}

// NumKernels returns the number of kernels (copies and filter kernels) enqueued so far.
func (s *Stream) NumKernels() int { return int(s.numKernels.Load()) }

// IsDestroyed returns whether Destroy was called.
func (s *Stream) IsDestroyed() bool { return s.destroyed.Load() }

func (s *Stream) submitKernel(fn xsync.Task) error {
	s.numKernels.Add(1)
	return s.queue.Submit(fn)
}

// Memcpy implements gpu.Stream.
func (s *Stream) Memcpy(dst, src []byte) error {
	if len(dst) < len(src) {
		return errors.Errorf("memcpy of %d bytes to a %d bytes region", len(src), len(dst))
	}
	return s.submitKernel(func() error {
		copy(dst, src)
		return nil
	})
}

// Copy implements gpu.Stream.
func (s *Stream) Copy(dst, src kernels.View) error {
	return s.submitKernel(func() error {
		kernels.CopyRows(dst, src, 0, src.Height)
		return nil
	})
}

// AutoExposure implements gpu.Stream.
func (s *Stream) AutoExposure(src kernels.View, result *float32) error {
	return s.submitKernel(func() error {
		*result = kernels.AutoExposure(src)
		return nil
	})
}

// Denoise implements gpu.Stream.
func (s *Stream) Denoise(dst, src kernels.View, params kernels.Params, scale *float32, y0, y1 int) error {
	return s.submitKernel(func() error {
		if scale != nil {
			params.InputScale = *scale
		}
		kernels.DenoiseRows(dst, src, params, y0, y1)
		return nil
	})
}

// HostFunc implements gpu.Stream.
func (s *Stream) HostFunc(fn func() error) error {
	return s.queue.Submit(fn)
}

// Event implements gpu.Event with a latch.
type Event struct {
	latch *xsync.Latch
}

// Synchronize implements gpu.Event.
func (ev *Event) Synchronize() error {
	ev.latch.Wait()
	return nil
}

// Query implements gpu.Event.
func (ev *Event) Query() bool {
	return ev.latch.Test()
}

// RecordEvent implements gpu.Stream.
func (s *Stream) RecordEvent() (gpu.Event, error) {
	ev := &Event{latch: xsync.NewLatch()}
	err := s.queue.Submit(func() error {
		ev.latch.Trigger()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ev, nil
}

// WaitEvent implements gpu.Stream.
func (s *Stream) WaitEvent(ev gpu.Event) error {
	return s.queue.Submit(ev.Synchronize)
}

// Synchronize implements gpu.Stream.
func (s *Stream) Synchronize() error {
	return s.queue.Wait()
}

// Destroy implements gpu.Stream.
func (s *Stream) Destroy() error {
	s.destroyed.Store(true)
	return s.queue.Close()
}
