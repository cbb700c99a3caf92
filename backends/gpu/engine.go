// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package gpu

import (
	"github.com/dustin/go-humanize"
	"github.com/gomlx/denoise/internal/filters"
	"github.com/gomlx/denoise/pkg/core"
	"github.com/gomlx/exceptions"
	"github.com/pkg/errors"
)

// Engine implements core.Engine over one or more driver streams.
//
// The first stream is the primary one: all memory operations go to it, and kernel work spread
// over the other streams is forked from and joined back into it, so the device order is the
// order of the primary stream.
type Engine struct {
	deviceType  core.DeviceType
	config      core.EngineConfig
	driver      Driver
	deviceID    int
	streams     []Stream
	ownsStreams bool

	// dirty marks the streams with work enqueued since the last barrier.
	dirty []bool
}

var _ core.Engine = &Engine{}

// Driver of the engine.
func (e *Engine) Driver() Driver { return e.driver }

// Streams used by the engine, the first one is the primary.
func (e *Engine) Streams() []Stream { return e.streams }

func (e *Engine) primary() Stream { return e.streams[0] }

// DefaultStorage implements core.Engine.
func (e *Engine) DefaultStorage() core.Storage { return core.StorageDevice }

// SupportsStorage returns whether the driver can allocate memory of the storage.
func (e *Engine) SupportsStorage(storage core.Storage) bool {
	return e.driver.SupportsStorage(storage)
}

// ExternalMemoryTypes implements core.Engine.
func (e *Engine) ExternalMemoryTypes() core.ExternalMemoryTypeFlag {
	return e.driver.ExternalMemoryTypes()
}

// NewMemory implements core.Engine.
func (e *Engine) NewMemory(byteSize int, storage core.Storage) (core.Memory, error) {
	if !e.driver.SupportsStorage(storage) {
		return nil, core.Errorf(core.ErrorInvalidArgument, "%s storage not supported by the %s device", storage, e.deviceType)
	}
	data, err := e.driver.Alloc(e.deviceID, byteSize, storage)
	if err != nil {
		return nil, errors.WithMessagef(err, "%s failed to allocate %s", e.driver.Name(), humanize.Bytes(uint64(byteSize)))
	}
	return &deviceMemory{engine: e, data: data, storage: storage, owned: true}, nil
}

// NewSharedMemory implements core.Engine: the device accesses the host memory directly.
func (e *Engine) NewSharedMemory(data []byte) (core.Memory, error) {
	return &deviceMemory{engine: e, data: data, storage: core.StorageHost}, nil
}

// ImportExternalMemory implements core.Engine.
func (e *Engine) ImportExternalMemory(desc core.ExternalMemoryDesc, byteSize int) (core.Memory, error) {
	ext, err := e.driver.ImportExternal(e.deviceID, desc, byteSize)
	if err != nil {
		return nil, errors.WithMessagef(err, "%s failed to import %s external memory", e.driver.Name(), desc.Type)
	}
	return &deviceMemory{engine: e, data: ext.Data(), storage: core.StorageDevice, external: ext}, nil
}

// NewFilter implements core.Engine.
func (e *Engine) NewFilter(filterType string) (core.FilterImpl, error) {
	schema, err := filters.Schema(filterType)
	if err != nil {
		return nil, err
	}
	return &filter{engine: e, filterType: filterType, schema: schema}, nil
}

// markDirty records that work was enqueued on stream i.
func (e *Engine) markDirty(i int) {
	e.dirty[i] = true
}

// fork makes every secondary stream wait for the work enqueued so far on the primary one.
func (e *Engine) fork() error {
	if len(e.streams) == 1 {
		return nil
	}
	ev, err := e.primary().RecordEvent()
	if err != nil {
		return err
	}
	for _, s := range e.streams[1:] {
		if err := s.WaitEvent(ev); err != nil {
			return err
		}
	}
	return nil
}

// barrier joins the work enqueued on secondary streams back into the primary one.
func (e *Engine) barrier() error {
	for i := 1; i < len(e.streams); i++ {
		if !e.dirty[i] {
			continue
		}
		ev, err := e.streams[i].RecordEvent()
		if err != nil {
			return err
		}
		if err := e.primary().WaitEvent(ev); err != nil {
			return err
		}
		e.dirty[i] = false
		e.dirty[0] = true
	}
	return nil
}

// beginCapture starts tracking the streams that receive work, see doneEvent.
func (e *Engine) beginCapture() {
	clear(e.dirty)
}

// doneEvent returns the event of completion of the work enqueued since beginCapture: nil if no
// work was enqueued. Work left on more than one stream is a bug: a barrier must join it first.
func (e *Engine) doneEvent() (Event, error) {
	var events []Event
	for i, dirty := range e.dirty {
		if !dirty {
			continue
		}
		ev, err := e.streams[i].RecordEvent()
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	switch len(events) {
	case 0:
		return nil, nil
	case 1:
		return events[0], nil
	default:
		exceptions.Panicf("missing barrier after filter kernels")
		return nil, nil
	}
}

// Wait implements core.Engine.
func (e *Engine) Wait() error {
	var firstErr error
	for _, s := range e.streams {
		if err := s.Synchronize(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Close implements core.Engine: streams created by the engine are destroyed.
func (e *Engine) Close() error {
	if !e.ownsStreams {
		return nil
	}
	var firstErr error
	for _, s := range e.streams {
		if err := s.Destroy(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
