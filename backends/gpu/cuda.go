// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package gpu

import (
	"github.com/gomlx/denoise/pkg/core"
)

// NewCUDADevice creates a CUDA device that enqueues its work on the given stream. With no
// streams, the device creates its own. At most one stream is supported.
func NewCUDADevice(streams []Stream) (*core.Device, error) {
	return newSingleStreamDevice(core.DeviceTypeCUDA, streams)
}

// NewHIPDevice creates a HIP device that enqueues its work on the given stream. With no
// streams, the device creates its own. At most one stream is supported.
func NewHIPDevice(streams []Stream) (*core.Device, error) {
	return newSingleStreamDevice(core.DeviceTypeHIP, streams)
}

func newSingleStreamDevice(deviceType core.DeviceType, streams []Stream) (*core.Device, error) {
	if len(streams) > 1 {
		return nil, core.Errorf(core.ErrorInvalidArgument, "unsupported number of streams")
	}
	for _, s := range streams {
		if s == nil {
			return nil, core.Errorf(core.ErrorInvalidArgument, "%s stream is null", deviceType)
		}
	}
	return newDeviceWithStreams(deviceType, streams), nil
}
