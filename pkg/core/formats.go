// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package core

import (
	"fmt"
	"strings"
)

// DeviceType selects the compute backend of a Device.
type DeviceType int

//go:generate go tool enumer -type=DeviceType -trimprefix=DeviceType -output=gen_devicetype_enumer.go formats.go

const (
	// DeviceTypeDefault selects the best supported device, see NewDevice.
	DeviceTypeDefault DeviceType = iota
	DeviceTypeCPU
	DeviceTypeSYCL
	DeviceTypeCUDA
	DeviceTypeHIP
)

// DataType of the channels of a pixel.
type DataType int

//go:generate go tool enumer -type=DataType -trimprefix=DataType -output=gen_datatype_enumer.go formats.go

const (
	DataTypeUndefined DataType = iota
	DataTypeFloat32
	DataTypeFloat16
	DataTypeUInt8
)

// Size in bytes of one channel of the given data type.
func (t DataType) Size() int {
	switch t {
	case DataTypeFloat32:
		return 4
	case DataTypeFloat16:
		return 2
	case DataTypeUInt8:
		return 1
	default:
		return 0
	}
}

// Format of an image: it encodes both the number of channels and the DataType.
//
// The integer values are stable, they are part of the ABI: the data type lives in the high byte
// and the number of channels in the low byte.
type Format int

const (
	FormatUndefined Format = 0

	FormatFloat  Format = 1
	FormatFloat2 Format = 2
	FormatFloat3 Format = 3
	FormatFloat4 Format = 4

	FormatHalf  Format = 257
	FormatHalf2 Format = 258
	FormatHalf3 Format = 259
	FormatHalf4 Format = 260

	FormatUChar  Format = 513
	FormatUChar2 Format = 514
	FormatUChar3 Format = 515
	FormatUChar4 Format = 516
)

var formatNames = map[Format]string{
	FormatUndefined: "Undefined",
	FormatFloat:     "Float",
	FormatFloat2:    "Float2",
	FormatFloat3:    "Float3",
	FormatFloat4:    "Float4",
	FormatHalf:      "Half",
	FormatHalf2:     "Half2",
	FormatHalf3:     "Half3",
	FormatHalf4:     "Half4",
	FormatUChar:     "UChar",
	FormatUChar2:    "UChar2",
	FormatUChar3:    "UChar3",
	FormatUChar4:    "UChar4",
}

// String implements fmt.Stringer.
func (f Format) String() string {
	if name, found := formatNames[f]; found {
		return name
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// IsValid returns whether f is one of the known formats, excluding FormatUndefined.
func (f Format) IsValid() bool {
	_, found := formatNames[f]
	return found && f != FormatUndefined
}

// DataType of the channels of the format.
func (f Format) DataType() DataType {
	if !f.IsValid() {
		return DataTypeUndefined
	}
	switch int(f) >> 8 {
	case 0:
		return DataTypeFloat32
	case 1:
		return DataTypeFloat16
	case 2:
		return DataTypeUInt8
	}
	return DataTypeUndefined
}

// NumChannels of the format, 0 for FormatUndefined.
func (f Format) NumChannels() int {
	if !f.IsValid() {
		return 0
	}
	return int(f) & 0xff
}

// Size in bytes of one pixel of the format.
func (f Format) Size() int {
	return f.NumChannels() * f.DataType().Size()
}

// Storage is where the memory of a buffer physically resides.
type Storage int

//go:generate go tool enumer -type=Storage -trimprefix=Storage -output=gen_storage_enumer.go formats.go

const (
	// StorageUndefined lets the engine choose its default storage.
	StorageUndefined Storage = iota

	// StorageHost memory is accessible by the host and the device (through the system interconnect).
	StorageHost

	// StorageDevice memory is only accessible by the device.
	StorageDevice

	// StorageManaged memory migrates automatically between the host and the device.
	StorageManaged
)

// IsHostAccessible returns whether memory of this storage can be read and written directly by the host.
func (s Storage) IsHostAccessible() bool {
	return s == StorageHost || s == StorageManaged
}

// Access mode requested when mapping a buffer.
type Access int

//go:generate go tool enumer -type=Access -trimprefix=Access -output=gen_access_enumer.go formats.go

const (
	AccessRead Access = iota
	AccessWrite
	AccessReadWrite

	// AccessWriteDiscard is like AccessWrite, but the previous contents are not needed.
	AccessWriteDiscard
)

// SyncMode of read/write/execute operations.
type SyncMode int

//go:generate go tool enumer -type=SyncMode -trimprefix=SyncMode -output=gen_syncmode_enumer.go formats.go

const (
	// SyncModeSync blocks until the operation is complete.
	SyncModeSync SyncMode = iota

	// SyncModeAsync enqueues the operation on the engine and returns immediately.
	SyncModeAsync
)

// ExternalMemoryTypeFlag is a bit set of external memory types that can be imported into a buffer.
type ExternalMemoryTypeFlag uint32

const (
	ExternalMemoryTypeFlagNone ExternalMemoryTypeFlag = 0

	// ExternalMemoryTypeFlagOpaqueFD is an opaque POSIX file descriptor handle.
	ExternalMemoryTypeFlagOpaqueFD ExternalMemoryTypeFlag = 1 << 0

	// ExternalMemoryTypeFlagDMABuf is a file descriptor handle to a Linux dma_buf.
	ExternalMemoryTypeFlagDMABuf ExternalMemoryTypeFlag = 1 << 1

	// ExternalMemoryTypeFlagOpaqueWin32 is an NT handle.
	ExternalMemoryTypeFlagOpaqueWin32 ExternalMemoryTypeFlag = 1 << 2

	// ExternalMemoryTypeFlagOpaqueWin32KMT is a global share (KMT) handle.
	ExternalMemoryTypeFlagOpaqueWin32KMT ExternalMemoryTypeFlag = 1 << 3

	ExternalMemoryTypeFlagD3D11Texture     ExternalMemoryTypeFlag = 1 << 4
	ExternalMemoryTypeFlagD3D11TextureKMT  ExternalMemoryTypeFlag = 1 << 5
	ExternalMemoryTypeFlagD3D11Resource    ExternalMemoryTypeFlag = 1 << 6
	ExternalMemoryTypeFlagD3D11ResourceKMT ExternalMemoryTypeFlag = 1 << 7
	ExternalMemoryTypeFlagD3D12Heap        ExternalMemoryTypeFlag = 1 << 8
	ExternalMemoryTypeFlagD3D12Resource    ExternalMemoryTypeFlag = 1 << 9
)

var externalMemoryTypeNames = []struct {
	flag ExternalMemoryTypeFlag
	name string
}{
	{ExternalMemoryTypeFlagOpaqueFD, "OpaqueFD"},
	{ExternalMemoryTypeFlagDMABuf, "DMABuf"},
	{ExternalMemoryTypeFlagOpaqueWin32, "OpaqueWin32"},
	{ExternalMemoryTypeFlagOpaqueWin32KMT, "OpaqueWin32KMT"},
	{ExternalMemoryTypeFlagD3D11Texture, "D3D11Texture"},
	{ExternalMemoryTypeFlagD3D11TextureKMT, "D3D11TextureKMT"},
	{ExternalMemoryTypeFlagD3D11Resource, "D3D11Resource"},
	{ExternalMemoryTypeFlagD3D11ResourceKMT, "D3D11ResourceKMT"},
	{ExternalMemoryTypeFlagD3D12Heap, "D3D12Heap"},
	{ExternalMemoryTypeFlagD3D12Resource, "D3D12Resource"},
}

// String implements fmt.Stringer, listing the flags set separated by "|".
func (f ExternalMemoryTypeFlag) String() string {
	if f == ExternalMemoryTypeFlagNone {
		return "None"
	}
	var parts []string
	remaining := f
	for _, entry := range externalMemoryTypeNames {
		if f&entry.flag != 0 {
			parts = append(parts, entry.name)
			remaining &^= entry.flag
		}
	}
	if remaining != 0 {
		parts = append(parts, fmt.Sprintf("0x%x", uint32(remaining)))
	}
	return strings.Join(parts, "|")
}

// IsFD returns whether the flag describes a POSIX file descriptor type.
func (f ExternalMemoryTypeFlag) IsFD() bool {
	return f == ExternalMemoryTypeFlagOpaqueFD || f == ExternalMemoryTypeFlagDMABuf
}

// IsSingle returns whether exactly one flag is set.
func (f ExternalMemoryTypeFlag) IsSingle() bool {
	return f != 0 && f&(f-1) == 0
}
