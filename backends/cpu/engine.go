// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package cpu

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/gomlx/denoise/internal/filters"
	"github.com/gomlx/denoise/internal/hostmem"
	"github.com/gomlx/denoise/internal/workerspool"
	"github.com/gomlx/denoise/internal/xsync"
	"github.com/gomlx/denoise/pkg/core"
	"github.com/pkg/errors"
)

// Engine implements core.Engine on the host.
type Engine struct {
	config core.EngineConfig
	pool   *workerspool.Pool
	queue  *xsync.Queue
}

var _ core.Engine = &Engine{}

func newEngine(config core.EngineConfig) *Engine {
	if config.Logf == nil {
		config.Logf = func(int, string, ...any) {}
	}
	pool := workerspool.New(config.NumThreads)
	pool.SetAffinity(config.SetAffinity)
	return &Engine{
		config: config,
		pool:   pool,
		queue:  xsync.NewQueue(),
	}
}

// NumThreads used by the kernels.
func (e *Engine) NumThreads() int {
	return e.pool.MaxParallelism()
}

// DefaultStorage implements core.Engine.
func (e *Engine) DefaultStorage() core.Storage { return core.StorageHost }

// SupportsStorage returns whether the storage can be allocated: all of them are host memory.
func (e *Engine) SupportsStorage(storage core.Storage) bool {
	return storage >= core.StorageHost && storage <= core.StorageManaged
}

// ExternalMemoryTypes implements core.Engine.
func (e *Engine) ExternalMemoryTypes() core.ExternalMemoryTypeFlag {
	return externalMemoryTypes
}

// NewMemory implements core.Engine.
func (e *Engine) NewMemory(byteSize int, storage core.Storage) (core.Memory, error) {
	if byteSize < 0 {
		return nil, errors.Wrapf(core.ErrOutOfMemory, "invalid allocation of %d bytes", byteSize)
	}
	data, release, err := hostmem.Alloc(byteSize)
	if err != nil {
		return nil, errors.Wrapf(core.ErrOutOfMemory, "failed to allocate %s: %v", humanize.Bytes(uint64(byteSize)), err)
	}
	return &hostMemory{engine: e, data: data, storage: storage, release: release}, nil
}

// NewSharedMemory implements core.Engine.
func (e *Engine) NewSharedMemory(data []byte) (core.Memory, error) {
	return &hostMemory{engine: e, data: data, storage: core.StorageHost, shared: true}, nil
}

// ImportExternalMemory implements core.Engine: file descriptors are memory mapped.
func (e *Engine) ImportExternalMemory(desc core.ExternalMemoryDesc, byteSize int) (core.Memory, error) {
	data, release, err := importExternal(desc, byteSize)
	if err != nil {
		return nil, err
	}
	e.config.Logf(2, "imported %s external memory: %s", desc.Type, humanize.Bytes(uint64(byteSize)))
	return &hostMemory{engine: e, data: data, storage: core.StorageHost, shared: true, release: release}, nil
}

// NewFilter implements core.Engine.
func (e *Engine) NewFilter(filterType string) (core.FilterImpl, error) {
	schema, err := filters.Schema(filterType)
	if err != nil {
		return nil, err
	}
	return &filter{engine: e, filterType: filterType, schema: schema}, nil
}

// run fn synchronously or on the queue. Synchronous work still runs after the work already
// queued, to keep the device order.
func (e *Engine) run(sync core.SyncMode, name string, fn xsync.Task) error {
	if sync == core.SyncModeAsync {
		e.config.Logf(3, "enqueued %s", name)
		return e.queue.Submit(fn)
	}
	if e.queue.Pending() == 0 {
		return fn()
	}
	done := xsync.NewLatchWithValue[error]()
	err := e.queue.Submit(func() error {
		done.Trigger(runRecovered(fn))
		return nil
	})
	if err != nil {
		return err
	}
	return done.Wait()
}

func runRecovered(fn xsync.Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("%v", r)
		}
	}()
	return fn()
}

// Wait implements core.Engine.
func (e *Engine) Wait() error {
	return e.queue.Wait()
}

// Close implements core.Engine.
func (e *Engine) Close() error {
	return e.queue.Close()
}

// String implements fmt.Stringer.
func (e *Engine) String() string {
	return fmt.Sprintf("CPU engine (%d threads)", e.NumThreads())
}
