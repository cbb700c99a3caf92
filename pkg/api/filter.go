// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package api

import (
	"github.com/gomlx/denoise/backends/gpu"
	"github.com/gomlx/denoise/pkg/core"
)

// NewFilter creates a filter of the given type, e.g. "RT" or "RTLightmap".
func NewFilter(h Device, filterType string) Filter {
	d, ok := lookupDevice(h)
	if !ok {
		return 0
	}
	var f *core.Filter
	if !locked(d, func() (err error) {
		f, err = d.NewFilter(filterType)
		return
	}) {
		return 0
	}
	return newFilterHandle(f)
}

// RetainFilter adds a reference to the filter.
func RetainFilter(h Filter) {
	if f, ok := lookupFilter(h); ok {
		f.IncRef()
	}
}

// ReleaseFilter drops a reference to the filter. The last reference waits for the work of the
// device, releases the images bound to the filter and destroys it.
func ReleaseFilter(h Filter) {
	f, ok := lookupFilter(h)
	if !ok {
		return
	}
	d := f.Device()
	d.IncRef()
	translate(d, func() error { return core.ReleaseFilter(f) })
	translate(nil, func() error { return core.ReleaseDevice(d) })
}

// SetFilterImage binds a region of a buffer to the named image slot of the filter.
// Strides of 0 default to the packed layout.
func SetFilterImage(h Filter, name string, buffer Buffer, format core.Format, width, height, byteOffset, pixelByteStride, rowByteStride int) {
	f, ok := lookupFilter(h)
	if !ok {
		return
	}
	b, ok := lookupBuffer(buffer)
	if !ok {
		return
	}
	d := f.Device()
	locked(d, func() error {
		if b.Device() != d {
			return core.Errorf(core.ErrorInvalidArgument, "the specified objects are bound to different devices")
		}
		desc, err := core.NewImageDesc(format, width, height, pixelByteStride, rowByteStride)
		if err != nil {
			return err
		}
		img, err := core.NewBufferImage(b, desc, byteOffset)
		if err != nil {
			return err
		}
		return f.SetImage(name, img)
	})
}

// SetSharedFilterImage binds memory owned by the application to the named image slot. The memory
// must stay valid until the image is removed or the filter destroyed. A nil data is allowed only
// for an empty image, which unbinds the slot at commit.
func SetSharedFilterImage(h Filter, name string, data []byte, format core.Format, width, height, byteOffset, pixelByteStride, rowByteStride int) {
	f, ok := lookupFilter(h)
	if !ok {
		return
	}
	locked(f.Device(), func() error {
		img, err := core.NewImage(data, format, width, height, byteOffset, pixelByteStride, rowByteStride)
		if err != nil {
			return err
		}
		return f.SetImage(name, img)
	})
}

// RemoveFilterImage unbinds the named image slot.
func RemoveFilterImage(h Filter, name string) {
	if f, ok := lookupFilter(h); ok {
		locked(f.Device(), func() error { return f.RemoveImage(name) })
	}
}

// SetSharedFilterData binds opaque data owned by the application (e.g. "weights") to the filter.
func SetSharedFilterData(h Filter, name string, data []byte) {
	if f, ok := lookupFilter(h); ok {
		locked(f.Device(), func() error { return f.SetData(name, data) })
	}
}

// UpdateFilterData notifies the filter that the contents of the named data changed.
func UpdateFilterData(h Filter, name string) {
	if f, ok := lookupFilter(h); ok {
		locked(f.Device(), func() error { return f.UpdateData(name) })
	}
}

// RemoveFilterData unbinds the named data.
func RemoveFilterData(h Filter, name string) {
	if f, ok := lookupFilter(h); ok {
		locked(f.Device(), func() error { return f.RemoveData(name) })
	}
}

// SetFilter1b sets a boolean filter parameter.
func SetFilter1b(h Filter, name string, value bool) {
	SetFilter1i(h, name, boolToInt(value))
}

// GetFilter1b returns a boolean filter parameter.
func GetFilter1b(h Filter, name string) bool {
	return GetFilter1i(h, name) != 0
}

// SetFilter1i sets an integer filter parameter.
func SetFilter1i(h Filter, name string, value int) {
	if f, ok := lookupFilter(h); ok {
		locked(f.Device(), func() error { return f.Set1i(name, value) })
	}
}

// GetFilter1i returns an integer filter parameter.
func GetFilter1i(h Filter, name string) int {
	f, ok := lookupFilter(h)
	if !ok {
		return 0
	}
	var value int
	locked(f.Device(), func() (err error) {
		value, err = f.Get1i(name)
		return
	})
	return value
}

// SetFilter1f sets a float filter parameter.
func SetFilter1f(h Filter, name string, value float32) {
	if f, ok := lookupFilter(h); ok {
		locked(f.Device(), func() error { return f.Set1f(name, value) })
	}
}

// GetFilter1f returns a float filter parameter.
func GetFilter1f(h Filter, name string) float32 {
	f, ok := lookupFilter(h)
	if !ok {
		return 0
	}
	var value float32
	locked(f.Device(), func() (err error) {
		value, err = f.Get1f(name)
		return
	})
	return value
}

// SetFilterProgressMonitorFunction installs fn to monitor the executions of the filter.
// fn returning false cancels the execution.
func SetFilterProgressMonitorFunction(h Filter, fn core.ProgressMonitorFunc) {
	if f, ok := lookupFilter(h); ok {
		locked(f.Device(), func() error {
			f.SetProgressMonitorFunc(fn)
			return nil
		})
	}
}

// CommitFilter validates the parameters and images of the filter. It must be called before
// execution, and again after any change.
func CommitFilter(h Filter) {
	if f, ok := lookupFilter(h); ok {
		locked(f.Device(), f.Commit)
	}
}

// ExecuteFilter runs the filter and waits for it to finish.
func ExecuteFilter(h Filter) {
	if f, ok := lookupFilter(h); ok {
		locked(f.Device(), func() error { return f.Execute(core.SyncModeSync) })
	}
}

// ExecuteFilterAsync enqueues the execution of the filter. Completion, and any error, is observed
// with SyncDevice.
func ExecuteFilterAsync(h Filter) {
	if f, ok := lookupFilter(h); ok {
		locked(f.Device(), func() error { return f.Execute(core.SyncModeAsync) })
	}
}

// ExecuteSYCLFilterAsync enqueues the execution of a filter of a SYCL device after depEvents, and
// returns the event triggered when it is done (nil if no work was enqueued).
func ExecuteSYCLFilterAsync(h Filter, depEvents []gpu.Event) gpu.Event {
	f, ok := lookupFilter(h)
	if !ok {
		return nil
	}
	var done gpu.Event
	locked(f.Device(), func() (err error) {
		done, err = gpu.ExecuteSYCLFilterAsync(f, depEvents)
		return
	})
	return done
}
