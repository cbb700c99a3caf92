// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

//go:build unix

package cpu

import (
	"github.com/gomlx/denoise/pkg/core"
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

const externalMemoryTypes = core.ExternalMemoryTypeFlagOpaqueFD | core.ExternalMemoryTypeFlagDMABuf

// importExternal maps byteSize bytes of the file descriptor. The descriptor is not closed, the
// mapping is released by the returned function.
func importExternal(desc core.ExternalMemoryDesc, byteSize int) (data []byte, release func() error, err error) {
	if !desc.Type.IsFD() {
		return nil, nil, core.Errorf(core.ErrorInvalidArgument, "external memory type not supported by the device")
	}
	if byteSize == 0 {
		return []byte{}, func() error { return nil }, nil
	}
	data, err = unix.Mmap(desc.FD, 0, byteSize, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, nil, core.Errorf(core.ErrorInvalidArgument, "failed to import external memory from file descriptor %d: %v", desc.FD, err)
	}
	release = func() error {
		return errors.Wrap(unix.Munmap(data), "failed to unmap external memory")
	}
	return data, release, nil
}
