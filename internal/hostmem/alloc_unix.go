// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

//go:build unix

package hostmem

import (
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// alloc maps anonymous memory.
func alloc(byteSize int) (data []byte, release func() error, err error) {
	data, err = unix.Mmap(-1, 0, byteSize, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, nil, err
	}
	release = func() error {
		return errors.Wrap(unix.Munmap(data), "failed to unmap host memory")
	}
	return data, release, nil
}
