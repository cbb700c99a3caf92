// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package imageio converts between Go images (image.Image) and the pixel layouts of the denoiser
// images, and reads and writes them from and to files.
//
// Channel values are normalized to [0, 1] and kept in the color space of the file (usually sRGB):
// set the "srgb" parameter of the filter accordingly. Alpha is never premultiplied.
package imageio

import (
	"image"

	"github.com/disintegration/imaging"
	"github.com/gomlx/denoise/internal/kernels"
	"github.com/gomlx/denoise/pkg/core"
	"github.com/pkg/errors"
)

// Encode converts img to a packed image of the given format. The first channels of the format
// take R, G, B and A, in this order.
func Encode(img image.Image, format core.Format) ([]byte, core.ImageDesc, error) {
	if !format.IsValid() {
		return nil, core.ImageDesc{}, core.Errorf(core.ErrorInvalidArgument, "invalid image format %s", format)
	}
	bounds := img.Bounds()
	desc, err := core.NewImageDesc(format, bounds.Dx(), bounds.Dy(), 0, 0)
	if err != nil {
		return nil, desc, err
	}
	nrgba := imaging.Clone(img)
	view := kernels.NewScratch(desc)
	for y := range desc.Height {
		row := nrgba.Pix[y*nrgba.Stride:]
		for x := range desc.Width {
			c := row[4*x : 4*x+4]
			view.Store(x, y, kernels.Pixel{
				float32(c[0]) / 255, float32(c[1]) / 255, float32(c[2]) / 255, float32(c[3]) / 255,
			})
		}
	}
	return view.Data, view.ImageDesc, nil
}

// Decode converts the image of the given layout to an 8 bits NRGBA image. Values are clamped to
// [0, 1]. Single channel images are decoded as gray, and images without alpha as opaque.
func Decode(data []byte, desc core.ImageDesc) (*image.NRGBA, error) {
	if !desc.Format.IsValid() || desc.Width <= 0 || desc.Height <= 0 {
		return nil, core.Errorf(core.ErrorInvalidArgument, "invalid image %s", desc)
	}
	if len(data) < desc.ByteSize() {
		return nil, core.Errorf(core.ErrorInvalidArgument, "image %s needs %d bytes, got %d", desc, desc.ByteSize(), len(data))
	}
	view := kernels.View{ImageDesc: desc, Data: data}
	numChannels := desc.NumChannels()
	img := image.NewNRGBA(image.Rect(0, 0, desc.Width, desc.Height))
	for y := range desc.Height {
		row := img.Pix[y*img.Stride:]
		for x := range desc.Width {
			p := view.Load(x, y)
			switch numChannels {
			case 1:
				p[1], p[2] = p[0], p[0]
				p[3] = 1
			case 2, 3:
				p[3] = 1
			}
			for c := range 4 {
				row[4*x+c] = toUint8(p[c])
			}
		}
	}
	return img, nil
}

func toUint8(v float32) uint8 {
	if !(v > 0) {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}

// Open reads an image file (any format supported by imaging: PNG, JPEG, TIFF, BMP, GIF) and
// encodes it in the given format.
func Open(path string, format core.Format) ([]byte, core.ImageDesc, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, core.ImageDesc{}, errors.Wrapf(err, "imageio.Open(%q)", path)
	}
	return Encode(img, format)
}

// Save decodes the image and writes it to path, in the file format given by its extension.
func Save(path string, data []byte, desc core.ImageDesc) error {
	img, err := Decode(data, desc)
	if err != nil {
		return err
	}
	if err = imaging.Save(img, path); err != nil {
		return errors.Wrapf(err, "imageio.Save(%q)", path)
	}
	return nil
}
