// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package gpu

import (
	"github.com/gomlx/denoise/pkg/core"
)

// NewSYCLDevice creates a SYCL device using the given in-order queues, the work of a filter is
// spread over all of them. With no queues, the device creates its own.
func NewSYCLDevice(queues []Stream) (*core.Device, error) {
	for _, q := range queues {
		if q == nil {
			return nil, core.Errorf(core.ErrorInvalidArgument, "SYCL queue is null")
		}
	}
	return newDeviceWithStreams(core.DeviceTypeSYCL, queues), nil
}

// ExecuteSYCLFilterAsync enqueues the execution of a committed filter of a SYCL device, after
// the work of depEvents. It returns the event of completion of the filter, or nil if the filter
// enqueued no work.
//
// Like the other filter operations, the device mutex must be held.
func ExecuteSYCLFilterAsync(f *core.Filter, depEvents []Event) (Event, error) {
	d := f.Device()
	if d.Type() != core.DeviceTypeSYCL {
		return nil, core.Errorf(core.ErrorInvalidArgument, "filter does not belong to a SYCL device")
	}
	e := d.Engine().(*Engine)
	for _, ev := range depEvents {
		if ev == nil {
			continue
		}
		if err := e.primary().WaitEvent(ev); err != nil {
			return nil, err
		}
	}
	e.beginCapture()
	if err := f.Execute(core.SyncModeAsync); err != nil {
		return nil, err
	}
	return e.doneEvent()
}
