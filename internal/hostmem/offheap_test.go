// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

//go:build unix || windows

package hostmem

import (
	"os"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Memory mapped by the OS starts at a page boundary, unlike small Go heap objects.
func TestAllocPageAligned(t *testing.T) {
	for _, size := range []int{1, 100, 5000} {
		data, release, err := Alloc(size)
		require.NoError(t, err)
		assert.Zero(t, uintptr(unsafe.Pointer(unsafe.SliceData(data)))%uintptr(os.Getpagesize()))
		require.NoError(t, release())
	}
}
