// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package kernels

import (
	"math"
)

// Params of the reference denoising kernel.
type Params struct {
	// HDR input: values are scaled by InputScale before filtering and unscaled after, and the
	// output is not clamped.
	HDR bool

	// SRGB input: values are converted to linear before filtering and back after.
	SRGB bool

	// InputScale multiplies the input values. Must be > 0.
	InputScale float32
}

// TileRows is the number of rows processed by one denoising task.
const TileRows = 32

// NumTiles returns the number of tiles for an image of the given height.
func NumTiles(height int) int {
	return (height + TileRows - 1) / TileRows
}

// TileBounds returns the rows [y0, y1) of tile.
func TileBounds(tile, height int) (y0, y1 int) {
	y0 = tile * TileRows
	y1 = min(y0+TileRows, height)
	return
}

// DenoiseRows applies a 3x3 box filter (edge clamped) to the color channels of src, rows
// [y0, y1), writing to dst. Alpha, if present in dst, is copied from src.
//
// src and dst must not overlap: callers copy aliased inputs to scratch memory first.
func DenoiseRows(dst, src View, params Params, y0, y1 int) {
	scale := params.InputScale
	if scale <= 0 || math.IsNaN(float64(scale)) {
		scale = 1
	}
	width, height := src.Width, src.Height
	for y := y0; y < y1; y++ {
		for x := range width {
			var sum Pixel
			for dy := -1; dy <= 1; dy++ {
				sy := min(max(y+dy, 0), height-1)
				for dx := -1; dx <= 1; dx++ {
					sx := min(max(x+dx, 0), width-1)
					p := src.Load(sx, sy)
					for c := range 3 {
						v := p[c]
						if params.SRGB {
							v = srgbToLinear(v)
						}
						sum[c] += v * scale
					}
				}
			}
			out := src.Load(x, y)
			for c := range 3 {
				v := sum[c] / 9 / scale
				if !params.HDR {
					v = clamp01(v)
				}
				if params.SRGB {
					v = linearToSRGB(v)
				}
				out[c] = v
			}
			dst.Store(x, y, out)
		}
	}
}

// AutoExposure returns the input scale that maps the geometric mean luminance of the image to
// middle gray (0.18). It returns 1 for black images.
func AutoExposure(src View) float32 {
	const key = 0.18
	const eps = 1e-8
	var sumLog float64
	var count int
	// Subsample large images.
	step := max(1, min(src.Width, src.Height)/256)
	for y := 0; y < src.Height; y += step {
		for x := 0; x < src.Width; x += step {
			p := src.Load(x, y)
			lum := 0.212671*float64(p[0]) + 0.715160*float64(p[1]) + 0.072169*float64(p[2])
			if lum > eps && !math.IsInf(lum, 0) {
				sumLog += math.Log2(lum)
				count++
			}
		}
	}
	if count == 0 {
		return 1
	}
	return float32(key / math.Exp2(sumLog/float64(count)))
}

func srgbToLinear(v float32) float32 {
	if v <= 0.04045 {
		return v / 12.92
	}
	return float32(math.Pow((float64(v)+0.055)/1.055, 2.4))
}

func linearToSRGB(v float32) float32 {
	if v <= 0.0031308 {
		return v * 12.92
	}
	return float32(1.055*math.Pow(float64(v), 1/2.4) - 0.055)
}
