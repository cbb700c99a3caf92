// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

//go:build linux

package cpu

import (
	"testing"

	"github.com/gomlx/denoise/pkg/core"
	"github.com/janpfeifer/must"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestImportFD(t *testing.T) {
	fd, err := unix.MemfdCreate("denoise-test", 0)
	if err != nil {
		t.Skipf("memfd_create not available: %v", err)
	}
	defer func() { _ = unix.Close(fd) }()
	const byteSize = 4096
	require.NoError(t, unix.Ftruncate(fd, byteSize))
	_, err = unix.Pwrite(fd, []byte("external"), 0)
	require.NoError(t, err)

	d := newDevice(t, 1)
	types := core.ExternalMemoryTypeFlag(must.M1(d.Get1i("externalMemoryTypes")))
	require.Equal(t, core.ExternalMemoryTypeFlagOpaqueFD|core.ExternalMemoryTypeFlagDMABuf, types)

	_, err = d.NewExternalBufferFromWin32Handle(core.ExternalMemoryTypeFlagOpaqueWin32, 1, "", byteSize)
	require.True(t, core.IsCode(err, core.ErrorInvalidArgument))
	_, err = d.NewExternalBufferFromFD(core.ExternalMemoryTypeFlagOpaqueFD|core.ExternalMemoryTypeFlagDMABuf, fd, byteSize)
	require.True(t, core.IsCode(err, core.ErrorInvalidArgument))

	buf := must.M1(d.NewExternalBufferFromFD(core.ExternalMemoryTypeFlagOpaqueFD, fd, byteSize))
	got := make([]byte, 8)
	require.NoError(t, buf.Read(0, got, core.SyncModeSync))
	assert.Equal(t, "external", string(got))

	// Writes through the buffer are visible through the file descriptor.
	require.NoError(t, buf.Write(8, []byte("!"), core.SyncModeSync))
	require.NoError(t, core.ReleaseBuffer(buf))
	check := make([]byte, 9)
	_, err = unix.Pread(fd, check, 0)
	require.NoError(t, err)
	assert.Equal(t, "external!", string(check))
}
