// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package gpu

import (
	"github.com/dustin/go-humanize"
	"github.com/gomlx/denoise/internal/hostmem"
	"github.com/gomlx/denoise/pkg/core"
	"github.com/pkg/errors"
)

// deviceMemory implements core.Memory for memory allocated by the driver, shared host memory or
// imported external memory.
type deviceMemory struct {
	engine   *Engine
	data     []byte
	storage  core.Storage
	owned    bool
	external ExternalMemory

	// staging holds the host copies of mapped regions of device-only memory, allocated outside
	// the Go heap so C callers can access them.
	staging map[*byte]func() error
}

var _ core.Memory = &deviceMemory{}

func (m *deviceMemory) Storage() core.Storage { return m.storage }

func (m *deviceMemory) Data() []byte { return m.data }

// Map returns the memory itself if it is host accessible. Otherwise, the region is copied to a
// host staging slice (unless access is write-only) and copied back on Unmap.
func (m *deviceMemory) Map(byteOffset, byteSize int, access core.Access) ([]byte, error) {
	region := m.data[byteOffset : byteOffset+byteSize : byteOffset+byteSize]
	if m.storage.IsHostAccessible() {
		if err := m.engine.primary().Synchronize(); err != nil {
			return nil, err
		}
		return region, nil
	}
	staging, release, err := hostmem.Alloc(byteSize)
	if err != nil {
		return nil, errors.Wrapf(core.ErrOutOfMemory, "failed to allocate %s of staging memory: %v",
			humanize.Bytes(uint64(byteSize)), err)
	}
	if access == core.AccessRead || access == core.AccessReadWrite {
		if err := m.copySync(staging, region); err != nil {
			if release != nil {
				_ = release()
			}
			return nil, err
		}
	}
	if byteSize > 0 {
		if m.staging == nil {
			m.staging = make(map[*byte]func() error)
		}
		m.staging[&staging[0]] = release
	}
	return staging, nil
}

func (m *deviceMemory) Unmap(mapped []byte, byteOffset int, access core.Access) error {
	if m.storage.IsHostAccessible() || len(mapped) == 0 {
		return nil
	}
	key := &mapped[0]
	release, found := m.staging[key]
	if !found {
		return core.Errorf(core.ErrorInvalidArgument, "invalid mapped region")
	}
	delete(m.staging, key)
	if access != core.AccessRead {
		if err := m.copySync(m.data[byteOffset:byteOffset+len(mapped)], mapped); err != nil {
			_ = release()
			return err
		}
	}
	return errors.Wrap(release(), "failed to release staging memory")
}

func (m *deviceMemory) copySync(dst, src []byte) error {
	if err := m.engine.primary().Memcpy(dst, src); err != nil {
		return err
	}
	return m.engine.primary().Synchronize()
}

func (m *deviceMemory) Read(byteOffset int, dst []byte, sync core.SyncMode) error {
	src := m.data[byteOffset : byteOffset+len(dst)]
	if err := m.engine.primary().Memcpy(dst, src); err != nil {
		return err
	}
	m.engine.markDirty(0)
	if sync == core.SyncModeSync {
		return m.engine.primary().Synchronize()
	}
	return nil
}

func (m *deviceMemory) Write(byteOffset int, src []byte, sync core.SyncMode) error {
	dst := m.data[byteOffset : byteOffset+len(src)]
	if err := m.engine.primary().Memcpy(dst, src); err != nil {
		return err
	}
	m.engine.markDirty(0)
	if sync == core.SyncModeSync {
		return m.engine.primary().Synchronize()
	}
	return nil
}

func (m *deviceMemory) Free() error {
	data := m.data
	m.data = nil
	for key, release := range m.staging {
		delete(m.staging, key)
		if err := release(); err != nil {
			return err
		}
	}
	switch {
	case m.external != nil:
		return errors.WithMessage(m.external.Release(), "failed to release external memory")
	case m.owned:
		return m.engine.driver.Free(data, m.storage)
	}
	return nil
}
