// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package kernels

import (
	"testing"

	"github.com/gomlx/denoise/pkg/core"
	"github.com/janpfeifer/must"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newView(t *testing.T, format core.Format, width, height, pixelStride, rowStride int) View {
	desc, err := core.NewImageDesc(format, width, height, pixelStride, rowStride)
	require.NoError(t, err)
	return View{ImageDesc: desc, Data: make([]byte, desc.ByteSize())}
}

func TestLoadStore(t *testing.T) {
	want := Pixel{0.25, 0.5, 1, 0.75}
	for _, format := range []core.Format{
		core.FormatFloat, core.FormatFloat2, core.FormatFloat3, core.FormatFloat4,
		core.FormatHalf, core.FormatHalf2, core.FormatHalf3, core.FormatHalf4,
		core.FormatUChar, core.FormatUChar2, core.FormatUChar3, core.FormatUChar4,
	} {
		v := newView(t, format, 3, 2, format.Size()+2, 0)
		v.Store(2, 1, want)
		got := v.Load(2, 1)
		for c := range 4 {
			if c < format.NumChannels() {
				assert.InDelta(t, want[c], got[c], 1.0/255, "format %s, channel %d", format, c)
			} else {
				assert.Zero(t, got[c], "format %s, channel %d", format, c)
			}
		}
		// Neighbors are untouched.
		assert.Equal(t, Pixel{}, v.Load(1, 1))
		assert.Equal(t, Pixel{}, v.Load(2, 0))
	}

	// UInt8 clamps.
	v := newView(t, core.FormatUChar3, 1, 1, 0, 0)
	v.Store(0, 0, Pixel{-1, 2, 0.5})
	assert.Equal(t, []byte{0, 255, 128}, v.Data)
}

func TestCopyRows(t *testing.T) {
	src := newView(t, core.FormatFloat3, 4, 4, 0, 0)
	for y := range 4 {
		for x := range 4 {
			src.Store(x, y, Pixel{float32(x), float32(y), 1})
		}
	}
	same := NewScratch(src.ImageDesc)
	CopyRows(same, src, 0, 4)
	assert.Equal(t, src.Data, same.Data)

	half := newView(t, core.FormatHalf4, 4, 4, 0, 0)
	CopyRows(half, src, 1, 3)
	assert.Equal(t, Pixel{3, 2, 1, 0}, half.Load(3, 2))
	assert.Equal(t, Pixel{}, half.Load(3, 0), "rows outside the range are not copied")
}

func TestDenoiseRows(t *testing.T) {
	const width, height = 8, 70
	src := newView(t, core.FormatFloat3, width, height, 0, 0)
	for y := range height {
		for x := range width {
			// Checkerboard: the box filter averages it to ~0.5.
			v := float32((x + y) % 2)
			src.Store(x, y, Pixel{v, v, v})
		}
	}
	dst := newView(t, core.FormatHalf3, width, height, 0, 0)
	params := Params{InputScale: 1}
	for tile := range NumTiles(height) {
		y0, y1 := TileBounds(tile, height)
		DenoiseRows(dst, src, params, y0, y1)
	}
	assert.Equal(t, 3, NumTiles(height))
	center := dst.Load(4, 35)
	assert.InDelta(t, 5.0/9.0, center[0], 1e-3)
	for y := range height {
		for x := range width {
			p := dst.Load(x, y)
			require.True(t, p[0] >= 0.3 && p[0] <= 0.7, "pixel (%d, %d) = %v", x, y, p)
		}
	}
}

func TestAutoExposure(t *testing.T) {
	src := newView(t, core.FormatFloat3, 4, 4, 0, 0)
	assert.Equal(t, float32(1), AutoExposure(src))
	for y := range 4 {
		for x := range 4 {
			src.Store(x, y, Pixel{2, 2, 2})
		}
	}
	assert.InDelta(t, 0.09, AutoExposure(src), 1e-4)

	desc := must.M1(core.NewImageDesc(core.FormatFloat3, 2, 2, 0, 0))
	assert.Equal(t, 24, NewScratch(desc).ByteSize())
}
