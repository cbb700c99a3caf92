// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package commandline contains convenience tools to use the denoiser from command-line programs:
// a progress bar for filter executions and tables describing devices and buffers.
package commandline

import (
	"fmt"

	"github.com/gomlx/denoise/pkg/api"
	"github.com/gomlx/denoise/pkg/core"
	"github.com/google/uuid"
)

// DeviceInfo renders a table with the properties of the device.
func DeviceInfo(d api.Device) string {
	table := newTable()
	table.Row("Type", core.DeviceType(api.GetDevice1i(d, "type")).String())
	table.Row("Version", fmt.Sprintf("%d.%d.%d",
		api.GetDevice1i(d, "versionMajor"), api.GetDevice1i(d, "versionMinor"), api.GetDevice1i(d, "versionPatch")))
	if id, err := uuid.FromBytes(api.GetDeviceData(d, "uuid")); err == nil {
		table.Row("UUID", id.String())
	}
	table.Row("Threads", fmt.Sprintf("%d", api.GetDevice1i(d, "numThreads")))
	table.Row("External memory", core.ExternalMemoryTypeFlag(api.GetDevice1i(d, "externalMemoryTypes")).String())
	table.Row("System memory", yesNo(api.GetDevice1b(d, "systemMemorySupported")))
	table.Row("Managed memory", yesNo(api.GetDevice1b(d, "managedMemorySupported")))
	return table.String()
}

// BufferInfo renders a table with the size and storage of the buffer.
func BufferInfo(b api.Buffer) string {
	table := newTable()
	table.Row("Size", humanizeBytes(api.GetBufferSize(b)))
	table.Row("Storage", api.GetBufferStorage(b).String())
	return table.String()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
