// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package core

// Engine is the backend-specific object owned by a committed Device: it owns the native
// command queue (a thread pool, a GPU stream, a SYCL queue) and creates memory and filters.
//
// Engines are never exposed through the handle API. All methods are called with the device
// mutex held, except Wait and Close when called during device destruction.
type Engine interface {
	// DefaultStorage is the storage used for StorageUndefined.
	DefaultStorage() Storage

	// ExternalMemoryTypes returns the set of external memory types that can be imported.
	ExternalMemoryTypes() ExternalMemoryTypeFlag

	// NewMemory allocates byteSize bytes of the given storage.
	// Allocation failures must wrap ErrOutOfMemory.
	NewMemory(byteSize int, storage Storage) (Memory, error)

	// NewSharedMemory wraps memory owned by the user. It is never freed by the engine.
	NewSharedMemory(data []byte) (Memory, error)

	// ImportExternalMemory imports memory exported by another API.
	ImportExternalMemory(desc ExternalMemoryDesc, byteSize int) (Memory, error)

	// NewFilter creates the implementation of the given filter type, e.g. "RT".
	NewFilter(filterType string) (FilterImpl, error)

	// Wait blocks until all asynchronous work enqueued so far is finished, and returns the
	// first error raised by that work, if any.
	Wait() error

	// Close releases the engine resources. It is called once, after Wait.
	Close() error
}

// Memory is a backend allocation backing a Buffer.
//
// Offsets and sizes are validated by Buffer before reaching Memory.
type Memory interface {
	// Storage where the memory resides.
	Storage() Storage

	// Data returns the memory as seen by the engine: host memory for host accessible storage,
	// or a device address range otherwise (which must not be dereferenced by the host).
	Data() []byte

	// Map returns a host accessible view of the region, valid until Unmap.
	Map(byteOffset, byteSize int, access Access) ([]byte, error)

	// Unmap releases a view returned by Map: written data becomes visible to the device.
	Unmap(mapped []byte, byteOffset int, access Access) error

	// Read copies len(dst) bytes starting at byteOffset to dst.
	Read(byteOffset int, dst []byte, sync SyncMode) error

	// Write copies src to the memory starting at byteOffset.
	Write(byteOffset int, src []byte, sync SyncMode) error

	// Free releases owned memory, or the external memory object for imported memory.
	Free() error
}

// ExternalMemoryDesc describes memory to import from another API.
type ExternalMemoryDesc struct {
	// Type has exactly one flag set.
	Type ExternalMemoryTypeFlag

	// FD for POSIX file descriptor types. The importer does not close it.
	FD int

	// Handle or Name for Win32 types: exactly one of them is set.
	Handle uintptr
	Name   string
}

// FilterImpl is the engine side of a Filter: it builds the compute graph on commit and runs it.
type FilterImpl interface {
	// Schema declares the image slots, data slots and options of the filter type.
	Schema() *FilterSchema

	// Commit validates filter specific constraints and prepares execution.
	// The generic constraints declared in the schema have already been checked.
	Commit(state *FilterState) error

	// Execute runs the committed filter. With SyncModeAsync it enqueues the work on the engine
	// queue and returns.
	Execute(progress *Progress, sync SyncMode) error

	// Free releases resources held by the implementation.
	Free()
}
