// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package hostmem allocates host memory outside the Go heap, so its address can be handed to C
// callers (see cmd/oidn_cabi), which may keep it for as long as the memory is not released.
//
// Go's cgo rules forbid returning Go heap pointers to C, so every host memory exposed through
// the C API (CPU buffers, staging copies of mapped device memory) comes from Alloc.
package hostmem

// Alloc allocates byteSize bytes of zeroed, page aligned memory. release must be called exactly
// once to free it, and is nil for empty allocations.
func Alloc(byteSize int) (data []byte, release func() error, err error) {
	if byteSize == 0 {
		return []byte{}, nil, nil
	}
	return alloc(byteSize)
}
