// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package api

import (
	"github.com/gomlx/denoise/pkg/core"
)

func newBuffer(h Device, create func(d *core.Device) (*core.Buffer, error)) Buffer {
	d, ok := lookupDevice(h)
	if !ok {
		return 0
	}
	var b *core.Buffer
	if !locked(d, func() (err error) {
		b, err = create(d)
		return
	}) {
		return 0
	}
	return newBufferHandle(b)
}

// NewBuffer allocates a buffer with the default storage of the device.
func NewBuffer(h Device, byteSize int) Buffer {
	return NewBufferWithStorage(h, byteSize, core.StorageUndefined)
}

// NewBufferWithStorage allocates a buffer with the given storage.
func NewBufferWithStorage(h Device, byteSize int, storage core.Storage) Buffer {
	return newBuffer(h, func(d *core.Device) (*core.Buffer, error) { return d.NewBuffer(byteSize, storage) })
}

// NewSharedBuffer creates a buffer over memory owned by the application, which must outlive it.
func NewSharedBuffer(h Device, data []byte) Buffer {
	return newBuffer(h, func(d *core.Device) (*core.Buffer, error) { return d.NewSharedBuffer(data) })
}

// NewSharedBufferFromFD imports external memory from a POSIX file descriptor. The file
// descriptor is not closed.
func NewSharedBufferFromFD(h Device, fdType core.ExternalMemoryTypeFlag, fd int, byteSize int) Buffer {
	return newBuffer(h, func(d *core.Device) (*core.Buffer, error) {
		return d.NewExternalBufferFromFD(fdType, fd, byteSize)
	})
}

// NewSharedBufferFromWin32Handle imports external memory from a Win32 handle or named object:
// exactly one of handle and name must be set.
func NewSharedBufferFromWin32Handle(h Device, handleType core.ExternalMemoryTypeFlag, handle uintptr, name string, byteSize int) Buffer {
	return newBuffer(h, func(d *core.Device) (*core.Buffer, error) {
		return d.NewExternalBufferFromWin32Handle(handleType, handle, name, byteSize)
	})
}

// RetainBuffer adds a reference to the buffer.
func RetainBuffer(h Buffer) {
	if b, ok := lookupBuffer(h); ok {
		b.IncRef()
	}
}

// ReleaseBuffer drops a reference to the buffer. The last reference waits for the work of the
// device and frees the buffer.
func ReleaseBuffer(h Buffer) {
	b, ok := lookupBuffer(h)
	if !ok {
		return
	}
	d := b.Device()
	// Keep the device alive to report errors.
	d.IncRef()
	translate(d, func() error { return core.ReleaseBuffer(b) })
	translate(nil, func() error { return core.ReleaseDevice(d) })
}

// GetBufferDevice returns the device of the buffer. The handle does not hold a new reference.
func GetBufferDevice(h Buffer) Device {
	b, ok := lookupBuffer(h)
	if !ok {
		return 0
	}
	for _, dh := range devices.ListLive() {
		if d, _ := devices.Get(dh); d == b.Device() {
			return Device(dh)
		}
	}
	return 0
}

// GetBufferSize returns the size of the buffer in bytes.
func GetBufferSize(h Buffer) int {
	if b, ok := lookupBuffer(h); ok {
		return b.ByteSize()
	}
	return 0
}

// GetBufferStorage returns the storage of the buffer.
func GetBufferStorage(h Buffer) core.Storage {
	if b, ok := lookupBuffer(h); ok {
		return b.Storage()
	}
	return core.StorageUndefined
}

// GetBufferData returns the memory of the buffer. It is only accessible by the host if the
// storage is host accessible.
func GetBufferData(h Buffer) []byte {
	if b, ok := lookupBuffer(h); ok {
		return b.Data()
	}
	return nil
}

// MapBuffer maps a region of the buffer to host memory, valid until UnmapBuffer.
// A byteSize of 0 maps until the end of the buffer.
func MapBuffer(h Buffer, access core.Access, byteOffset, byteSize int) []byte {
	b, ok := lookupBuffer(h)
	if !ok {
		return nil
	}
	var mapped []byte
	locked(b.Device(), func() (err error) {
		mapped, err = b.Map(byteOffset, byteSize, access)
		return
	})
	return mapped
}

// UnmapBuffer releases a region returned by MapBuffer.
func UnmapBuffer(h Buffer, mapped []byte) {
	if b, ok := lookupBuffer(h); ok {
		locked(b.Device(), func() error { return b.Unmap(mapped) })
	}
}

func readBuffer(h Buffer, byteOffset int, dst []byte, sync core.SyncMode) {
	if b, ok := lookupBuffer(h); ok {
		locked(b.Device(), func() error { return b.Read(byteOffset, dst, sync) })
	}
}

func writeBuffer(h Buffer, byteOffset int, src []byte, sync core.SyncMode) {
	if b, ok := lookupBuffer(h); ok {
		locked(b.Device(), func() error { return b.Write(byteOffset, src, sync) })
	}
}

// ReadBuffer copies len(dst) bytes from the buffer, starting at byteOffset.
func ReadBuffer(h Buffer, byteOffset int, dst []byte) {
	readBuffer(h, byteOffset, dst, core.SyncModeSync)
}

// ReadBufferAsync enqueues the copy of len(dst) bytes from the buffer. dst must not be accessed
// until the device is synchronized.
func ReadBufferAsync(h Buffer, byteOffset int, dst []byte) {
	readBuffer(h, byteOffset, dst, core.SyncModeAsync)
}

// WriteBuffer copies src to the buffer, starting at byteOffset.
func WriteBuffer(h Buffer, byteOffset int, src []byte) {
	writeBuffer(h, byteOffset, src, core.SyncModeSync)
}

// WriteBufferAsync enqueues the copy of src to the buffer. src must not be modified until the
// device is synchronized.
func WriteBufferAsync(h Buffer, byteOffset int, src []byte) {
	writeBuffer(h, byteOffset, src, core.SyncModeAsync)
}
