// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package imageio

import (
	"flag"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/gomlx/denoise/pkg/core"
	"github.com/janpfeifer/must"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/klog/v2"
)

func TestMain(m *testing.M) {
	klog.InitFlags(nil)
	flag.Parse()
	os.Exit(m.Run())
}

func gradient(width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := range height {
		for x := range width {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 17), G: uint8(y * 29), B: uint8((x + y) * 7), A: 255})
		}
	}
	return img
}

func TestEncodeDecode(t *testing.T) {
	img := gradient(9, 5)
	for _, format := range []core.Format{core.FormatFloat3, core.FormatFloat4, core.FormatHalf3, core.FormatHalf4, core.FormatUChar3, core.FormatUChar4} {
		data, desc, err := Encode(img, format)
		require.NoError(t, err)
		assert.Equal(t, 9, desc.Width)
		assert.Equal(t, 5, desc.Height)
		assert.Len(t, data, 9*5*format.Size())
		decoded, err := Decode(data, desc)
		require.NoError(t, err)
		assert.Equal(t, img.Pix, decoded.Pix, "format %s", format)
	}
}

func TestDecodeChannels(t *testing.T) {
	data, desc, err := Encode(gradient(4, 4), core.FormatFloat)
	require.NoError(t, err)
	gray, err := Decode(data, desc)
	require.NoError(t, err)
	c := gray.NRGBAAt(3, 0)
	assert.Equal(t, color.NRGBA{R: 51, G: 51, B: 51, A: 255}, c)

	// HDR values are clamped.
	desc = must.M1(core.NewImageDesc(core.FormatFloat3, 1, 1, 0, 0))
	hdr := []byte{0, 0, 0x80, 0x40 /* 4.0 */, 0, 0, 0x80, 0xbf /* -1.0 */, 0, 0, 0, 0x3f /* 0.5 */}
	clamped, err := Decode(hdr, desc)
	require.NoError(t, err)
	assert.Equal(t, []uint8{255, 0, 128, 255}, clamped.Pix)

	_, err = Decode(hdr[:8], desc)
	assert.True(t, core.IsCode(err, core.ErrorInvalidArgument))
	_, err = Decode(hdr, core.ImageDesc{})
	assert.True(t, core.IsCode(err, core.ErrorInvalidArgument))
	_, _, err = Encode(gradient(2, 2), core.FormatUndefined)
	assert.True(t, core.IsCode(err, core.ErrorInvalidArgument))
}

func TestOpenSave(t *testing.T) {
	img := gradient(16, 8)
	data, desc, err := Encode(img, core.FormatHalf3)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "gradient.png")
	require.NoError(t, Save(path, data, desc))

	loaded, loadedDesc, err := Open(path, core.FormatHalf3)
	require.NoError(t, err)
	assert.Equal(t, desc, loadedDesc)
	assert.Equal(t, data, loaded)

	_, _, err = Open(filepath.Join(t.TempDir(), "missing.png"), core.FormatFloat3)
	assert.Error(t, err)
	assert.Error(t, Save(filepath.Join(t.TempDir(), "image.unknown"), data, desc))
}
