// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package cpu implements the CPU device: host memory, a pool of worker goroutines for the kernels
// and a FIFO queue for asynchronous work.
//
// It registers itself as core.DeviceTypeCPU, to use it simply include:
//
//	import _ "github.com/gomlx/denoise/backends/cpu"
package cpu

import (
	"runtime"

	"github.com/gomlx/denoise/pkg/core"
)

func init() {
	core.RegisterDeviceType(core.DeviceTypeCPU, New)
}

// New returns the CPU DeviceBackend.
func New() (core.DeviceBackend, error) {
	return &Backend{}, nil
}

// Backend implements core.DeviceBackend for the CPU.
type Backend struct{}

var _ core.DeviceBackend = &Backend{}

// Type implements core.DeviceBackend.
func (b *Backend) Type() core.DeviceType { return core.DeviceTypeCPU }

// IsSupported implements core.DeviceBackend: there is always a CPU.
func (b *Backend) IsSupported() bool { return true }

// NewEngine implements core.DeviceBackend.
func (b *Backend) NewEngine(config core.EngineConfig) (core.Engine, error) {
	e := newEngine(config)
	e.config.Logf(1, "CPU engine: %d threads (%d CPUs), affinity %v, %s",
		e.pool.MaxParallelism(), runtime.NumCPU(), config.SetAffinity, runtime.GOARCH)
	return e, nil
}
