// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

//go:build windows

package hostmem

import (
	"unsafe"

	"github.com/pkg/errors"
	"golang.org/x/sys/windows"
)

// alloc commits virtual memory pages.
func alloc(byteSize int) (data []byte, release func() error, err error) {
	addr, err := windows.VirtualAlloc(0, uintptr(byteSize), windows.MEM_COMMIT|windows.MEM_RESERVE, windows.PAGE_READWRITE)
	if err != nil {
		return nil, nil, err
	}
	data = unsafe.Slice((*byte)(unsafe.Pointer(addr)), byteSize)
	release = func() error {
		return errors.Wrap(windows.VirtualFree(addr, 0, windows.MEM_RELEASE), "failed to free host memory")
	}
	return data, release, nil
}
