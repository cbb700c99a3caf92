// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package cpu

import (
	"github.com/gomlx/denoise/pkg/core"
)

// hostMemory implements core.Memory over host memory: owned, shared by the user or mapped from an
// external file descriptor.
type hostMemory struct {
	engine  *Engine
	data    []byte
	storage core.Storage

	// shared memory is not owned: Free only drops the reference.
	shared bool

	// release the external memory object, if imported.
	release func() error
}

var _ core.Memory = &hostMemory{}

func (m *hostMemory) Storage() core.Storage { return m.storage }

func (m *hostMemory) Data() []byte { return m.data }

// Map is a no-op for host memory, the returned slice aliases the memory.
func (m *hostMemory) Map(byteOffset, byteSize int, _ core.Access) ([]byte, error) {
	return m.data[byteOffset : byteOffset+byteSize : byteOffset+byteSize], nil
}

func (m *hostMemory) Unmap([]byte, int, core.Access) error {
	return nil
}

func (m *hostMemory) Read(byteOffset int, dst []byte, sync core.SyncMode) error {
	return m.engine.run(sync, "buffer read", func() error {
		copy(dst, m.data[byteOffset:])
		return nil
	})
}

func (m *hostMemory) Write(byteOffset int, src []byte, sync core.SyncMode) error {
	return m.engine.run(sync, "buffer write", func() error {
		copy(m.data[byteOffset:byteOffset+len(src)], src)
		return nil
	})
}

func (m *hostMemory) Free() error {
	m.data = nil
	if m.release != nil {
		release := m.release
		m.release = nil
		return release()
	}
	return nil
}
