// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package kernels implements the host (CPU) image kernels: pixel load/store for every image
// format, copies and the reference denoising filter.
package kernels

import (
	"encoding/binary"
	"math"

	"github.com/gomlx/denoise/pkg/core"
	"github.com/x448/float16"
)

// Pixel holds up to 4 channels as float32. Missing channels load as 0.
type Pixel [4]float32

// View is a host-accessible strided image, decoupled from core.Image so kernels can also run on
// scratch memory.
type View struct {
	core.ImageDesc
	Data []byte
}

// ViewOf returns the view of a host-accessible image.
func ViewOf(img *core.Image) View {
	return View{ImageDesc: img.ImageDesc, Data: img.Data()}
}

// NewScratch allocates a tightly packed view with the same size and format as desc.
func NewScratch(desc core.ImageDesc) View {
	packed := core.ImageDesc{
		Format:      desc.Format,
		Width:       desc.Width,
		Height:      desc.Height,
		WByteStride: desc.Format.Size(),
		HByteStride: desc.Width * desc.Format.Size(),
	}
	return View{ImageDesc: packed, Data: make([]byte, packed.ByteSize())}
}

func (v View) pixelBytes(x, y int) []byte {
	offset := y*v.HByteStride + x*v.WByteStride
	return v.Data[offset : offset+v.Format.Size()]
}

// Load the pixel at (x, y), converting to float32. UInt8 channels are normalized to [0, 1].
func (v View) Load(x, y int) (p Pixel) {
	b := v.pixelBytes(x, y)
	numChannels := v.NumChannels()
	switch v.DataType() {
	case core.DataTypeFloat32:
		for c := range numChannels {
			p[c] = math.Float32frombits(binary.LittleEndian.Uint32(b[4*c:]))
		}
	case core.DataTypeFloat16:
		for c := range numChannels {
			p[c] = float16.Frombits(binary.LittleEndian.Uint16(b[2*c:])).Float32()
		}
	case core.DataTypeUInt8:
		for c := range numChannels {
			p[c] = float32(b[c]) / 255
		}
	}
	return
}

// Store the pixel at (x, y), converting from float32. UInt8 channels are clamped to [0, 1] and
// rounded.
func (v View) Store(x, y int, p Pixel) {
	b := v.pixelBytes(x, y)
	numChannels := v.NumChannels()
	switch v.DataType() {
	case core.DataTypeFloat32:
		for c := range numChannels {
			binary.LittleEndian.PutUint32(b[4*c:], math.Float32bits(p[c]))
		}
	case core.DataTypeFloat16:
		for c := range numChannels {
			binary.LittleEndian.PutUint16(b[2*c:], float16.Fromfloat32(p[c]).Bits())
		}
	case core.DataTypeUInt8:
		for c := range numChannels {
			b[c] = uint8(math.Round(float64(clamp01(p[c])) * 255))
		}
	}
}

// CopyRows copies rows [y0, y1) from src to dst, converting formats if needed.
// Both views must have the same width.
func CopyRows(dst, src View, y0, y1 int) {
	if dst.Format == src.Format {
		rowBytes := (src.Width-1)*src.WByteStride + src.Format.Size()
		if src.WByteStride == dst.WByteStride {
			for y := y0; y < y1; y++ {
				copy(dst.Data[y*dst.HByteStride:y*dst.HByteStride+rowBytes], src.Data[y*src.HByteStride:y*src.HByteStride+rowBytes])
			}
			return
		}
	}
	for y := y0; y < y1; y++ {
		for x := range src.Width {
			dst.Store(x, y, src.Load(x, y))
		}
	}
}

func clamp01(v float32) float32 {
	if v < 0 || v != v {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
