// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package core

import (
	"unsafe"

	"github.com/dustin/go-humanize"
	"github.com/gomlx/exceptions"
	"github.com/pkg/errors"
)

// Buffer is a contiguous byte region owned by a Device: owned device memory, user memory shared
// with the device, or external memory imported from another API.
//
// A buffer holds a reference to its device, so the device outlives it. The byte size never changes.
type Buffer struct {
	Object

	device   *Device
	mem      Memory
	byteSize int
	freed    bool

	// mapped regions, indexed by the address of their first byte.
	mapped map[*byte]mappedRegion
}

type mappedRegion struct {
	byteOffset, byteSize int
	access               Access
}

func newBuffer(device *Device, mem Memory, byteSize int) *Buffer {
	b := &Buffer{
		device:   device,
		mem:      mem,
		byteSize: byteSize,
		mapped:   make(map[*byte]mappedRegion),
	}
	b.InitRef()
	device.IncRef()
	device.Logf(2, "new buffer: %s, storage %s", humanize.Bytes(uint64(byteSize)), mem.Storage())
	return b
}

// Device that owns the buffer.
func (b *Buffer) Device() *Device {
	return b.device
}

// ByteSize of the buffer.
func (b *Buffer) ByteSize() int {
	return b.byteSize
}

// Storage where the buffer memory resides.
func (b *Buffer) Storage() Storage {
	return b.mem.Storage()
}

// Memory returns the backend allocation.
func (b *Buffer) Memory() Memory {
	return b.mem
}

// Data returns the buffer memory as seen by the engine: for StorageDevice it is a device address
// range that must not be dereferenced by the host.
func (b *Buffer) Data() []byte {
	return b.mem.Data()
}

func (b *Buffer) checkRange(byteOffset, byteSize int) error {
	if byteOffset < 0 || byteSize < 0 || byteOffset > b.byteSize || byteSize > b.byteSize-byteOffset {
		return Errorf(ErrorInvalidArgument, "buffer region out of range")
	}
	return nil
}

// Map returns a host view of the region [byteOffset, byteOffset+byteSize), valid until Unmap.
// A byteSize of 0 maps until the end of the buffer.
func (b *Buffer) Map(byteOffset, byteSize int, access Access) ([]byte, error) {
	if access < AccessRead || access > AccessWriteDiscard {
		return nil, Errorf(ErrorInvalidArgument, "invalid access mode %d", int(access))
	}
	if byteOffset >= 0 && byteOffset <= b.byteSize && byteSize == 0 {
		byteSize = b.byteSize - byteOffset
	}
	if err := b.checkRange(byteOffset, byteSize); err != nil {
		return nil, err
	}
	mapped, err := b.mem.Map(byteOffset, byteSize, access)
	if err != nil {
		return nil, err
	}
	if len(mapped) > 0 {
		b.mapped[unsafe.SliceData(mapped)] = mappedRegion{byteOffset: byteOffset, byteSize: byteSize, access: access}
	}
	return mapped, nil
}

// Unmap releases a view returned by Map.
func (b *Buffer) Unmap(mapped []byte) error {
	if len(mapped) == 0 {
		return nil
	}
	key := unsafe.SliceData(mapped)
	region, found := b.mapped[key]
	if !found {
		return Errorf(ErrorInvalidArgument, "invalid mapped region")
	}
	delete(b.mapped, key)
	return b.mem.Unmap(mapped[:region.byteSize], region.byteOffset, region.access)
}

// Read copies len(dst) bytes from the buffer, starting at byteOffset.
//
// With SyncModeAsync the copy is enqueued and dst must not be accessed until the device is
// synchronized.
func (b *Buffer) Read(byteOffset int, dst []byte, sync SyncMode) error {
	if err := b.checkRange(byteOffset, len(dst)); err != nil {
		return err
	}
	if len(dst) == 0 {
		return nil
	}
	return b.mem.Read(byteOffset, dst, sync)
}

// Write copies src to the buffer, starting at byteOffset.
//
// With SyncModeAsync the copy is enqueued and src must not be modified until the device is
// synchronized.
func (b *Buffer) Write(byteOffset int, src []byte, sync SyncMode) error {
	if err := b.checkRange(byteOffset, len(src)); err != nil {
		return err
	}
	if len(src) == 0 {
		return nil
	}
	return b.mem.Write(byteOffset, src, sync)
}

// destroyLocked releases the memory. The device mutex must be held and pending work drained.
func (b *Buffer) destroyLocked() error {
	if b.freed {
		exceptions.Panicf("buffer (%s) destroyed twice", humanize.Bytes(uint64(b.byteSize)))
	}
	b.freed = true
	for key, region := range b.mapped {
		if err := b.mem.Unmap(unsafe.Slice(key, region.byteSize), region.byteOffset, region.access); err != nil {
			b.device.Logf(1, "failed to unmap buffer region on destruction: %v", err)
		}
	}
	clear(b.mapped)
	err := b.mem.Free()
	b.device.Logf(2, "freed buffer: %s", humanize.Bytes(uint64(b.byteSize)))
	b.runDestroyHooks()
	return errors.WithMessage(err, "failed to free buffer")
}

// ReleaseBuffer drops a reference to the buffer. The last reference locks the device, waits for
// its asynchronous work and frees the memory; then the buffer reference to the device is dropped.
func ReleaseBuffer(b *Buffer) error {
	if b.DecRefKeep() != 1 {
		return nil
	}
	d := b.device
	d.Lock()
	err := d.Wait()
	if destroyErr := b.destroyLocked(); err == nil {
		err = destroyErr
	}
	d.Unlock()
	if releaseErr := ReleaseDevice(d); err == nil {
		err = releaseErr
	}
	return err
}

// releaseBufferLocked drops a reference to the buffer with the device mutex already held.
// The caller must itself hold a reference to the device, which is checked.
func releaseBufferLocked(b *Buffer) error {
	if b.DecRefKeep() != 1 {
		return nil
	}
	d := b.device
	err := d.Wait()
	if destroyErr := b.destroyLocked(); err == nil {
		err = destroyErr
	}
	if d.DecRefKeep() == 1 {
		exceptions.Panicf("device released by a buffer while its mutex is held")
	}
	return err
}
