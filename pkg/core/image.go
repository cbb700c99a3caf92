// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package core

import (
	"fmt"
	"math"
	"unsafe"
)

// MaxDim is the maximum width or height of an image.
const MaxDim = 65536

// ImageDesc describes the layout of a strided 2D image.
type ImageDesc struct {
	Format Format
	Width  int
	Height int

	// WByteStride is the distance in bytes between two pixels of a row.
	WByteStride int

	// HByteStride is the distance in bytes between two rows.
	HByteStride int
}

// NewImageDesc validates the image dimensions and computes the strides.
//
// A pixelByteStride of 0 defaults to the format size, and a rowByteStride of 0 defaults to
// width*pixelByteStride (tightly packed). Explicit strides smaller than the defaults are errors.
func NewImageDesc(format Format, width, height, pixelByteStride, rowByteStride int) (ImageDesc, error) {
	if format != FormatUndefined && !format.IsValid() {
		return ImageDesc{}, Errorf(ErrorInvalidArgument, "invalid image format %s", format)
	}
	if width < 0 || height < 0 || pixelByteStride < 0 || rowByteStride < 0 {
		return ImageDesc{}, Errorf(ErrorInvalidArgument, "invalid image dimensions or strides")
	}
	if width > MaxDim || height > MaxDim || int64(width)*int64(height)*int64(format.NumChannels()) > math.MaxInt32 {
		return ImageDesc{}, Errorf(ErrorInvalidArgument, "image size too large")
	}
	desc := ImageDesc{Format: format, Width: width, Height: height}

	pixelByteSize := format.Size()
	if pixelByteStride != 0 {
		if pixelByteStride < pixelByteSize {
			return ImageDesc{}, Errorf(ErrorInvalidArgument, "pixel stride smaller than pixel size")
		}
		desc.WByteStride = pixelByteStride
	} else {
		desc.WByteStride = pixelByteSize
	}
	if width > 0 && desc.WByteStride > (math.MaxInt-pixelByteSize)/width {
		return ImageDesc{}, Errorf(ErrorInvalidArgument, "image pixel stride too large")
	}

	if rowByteStride != 0 {
		if rowByteStride < width*desc.WByteStride {
			return ImageDesc{}, Errorf(ErrorInvalidArgument, "row stride smaller than width * pixel stride")
		}
		desc.HByteStride = rowByteStride
	} else {
		desc.HByteStride = width * desc.WByteStride
	}
	// The span of the image, (height-1)*rowStride + width*pixelStride, must fit an int.
	if height > 0 && desc.HByteStride > (math.MaxInt-width*desc.WByteStride)/height {
		return ImageDesc{}, Errorf(ErrorInvalidArgument, "image row stride too large")
	}
	return desc, nil
}

// NumChannels of the image format.
func (d ImageDesc) NumChannels() int {
	return d.Format.NumChannels()
}

// DataType of the image format.
func (d ImageDesc) DataType() DataType {
	return d.Format.DataType()
}

// ByteSize is the number of bytes spanned by the image, from its first to its last byte.
func (d ImageDesc) ByteSize() int {
	if d.Width == 0 || d.Height == 0 {
		return 0
	}
	return (d.Height-1)*d.HByteStride + (d.Width-1)*d.WByteStride + d.Format.Size()
}

// String implements fmt.Stringer.
func (d ImageDesc) String() string {
	return fmt.Sprintf("%dx%d %s", d.Width, d.Height, d.Format)
}

// Image is a typed, strided 2D view over a buffer region or over user memory.
//
// Buffer-backed images hold a reference to their buffer.
type Image struct {
	ImageDesc

	buffer     *Buffer
	byteOffset int

	// data is the image memory, starting at the first pixel; nil for empty images.
	data []byte
}

// NewImage creates an image over user memory (a "shared" image). data may be nil only if the
// image is empty.
func NewImage(data []byte, format Format, width, height, byteOffset, pixelByteStride, rowByteStride int) (*Image, error) {
	desc, err := NewImageDesc(format, width, height, pixelByteStride, rowByteStride)
	if err != nil {
		return nil, err
	}
	if byteOffset < 0 {
		return nil, Errorf(ErrorInvalidArgument, "invalid image byte offset %d", byteOffset)
	}
	byteSize := desc.ByteSize()
	if data == nil {
		if byteSize > 0 || byteOffset > 0 {
			return nil, Errorf(ErrorInvalidArgument, "buffer region out of range")
		}
		return &Image{ImageDesc: desc}, nil
	}
	if byteSize > len(data)-byteOffset {
		return nil, Errorf(ErrorInvalidArgument, "buffer region out of range")
	}
	return &Image{
		ImageDesc:  desc,
		byteOffset: byteOffset,
		data:       data[byteOffset : byteOffset+byteSize],
	}, nil
}

// NewBufferImage creates an image over a region of buffer, starting at byteOffset.
// The image takes a reference to the buffer.
func NewBufferImage(buffer *Buffer, desc ImageDesc, byteOffset int) (*Image, error) {
	if byteOffset < 0 || desc.ByteSize() > buffer.ByteSize()-byteOffset {
		return nil, Errorf(ErrorInvalidArgument, "buffer region out of range")
	}
	img := &Image{
		ImageDesc:  desc,
		buffer:     buffer,
		byteOffset: byteOffset,
	}
	img.refreshData()
	buffer.IncRef()
	return img, nil
}

func (img *Image) refreshData() {
	data := img.buffer.Data()
	byteSize := img.ByteSize()
	if data == nil || byteSize == 0 {
		img.data = nil
		return
	}
	img.data = data[img.byteOffset : img.byteOffset+byteSize]
}

// Buffer backing the image, nil for images over user memory.
func (img *Image) Buffer() *Buffer {
	return img.buffer
}

// ByteOffset of the first pixel in the buffer.
func (img *Image) ByteOffset() int {
	return img.byteOffset
}

// Data returns the image memory starting at its first pixel, nil for empty images.
func (img *Image) Data() []byte {
	return img.data
}

// IsEmpty returns whether the image has no pixels.
func (img *Image) IsEmpty() bool {
	return img.data == nil
}

// Device of the backing buffer, nil for images over user memory.
func (img *Image) Device() *Device {
	if img.buffer == nil {
		return nil
	}
	return img.buffer.device
}

// UpdatePtr refreshes the cached memory of a buffer-backed image. It must be called if the
// buffer memory may have moved (e.g. remapped).
func (img *Image) UpdatePtr() error {
	if img.buffer == nil {
		return nil
	}
	if img.ByteSize() > img.buffer.ByteSize()-img.byteOffset {
		return Errorf(ErrorInvalidArgument, "buffer region out of range")
	}
	img.refreshData()
	return nil
}

// Overlaps returns whether the memory of both images intersects.
//
// Only images over the same buffer can overlap: images over user memory are never reported as
// overlapping, since the runtime cannot prove anything about them.
func (img *Image) Overlaps(other *Image) bool {
	if img == nil || other == nil || img.data == nil || other.data == nil {
		return false
	}
	if img.buffer == nil || img.buffer != other.buffer {
		return false
	}
	begin1, end1 := img.byteOffset, img.byteOffset+img.ByteSize()
	begin2, end2 := other.byteOffset, other.byteOffset+other.ByteSize()
	return begin1 < end2 && begin2 < end1
}

// SharesMemory returns whether the bytes of both images intersect, whatever memory backs them.
// Unlike Overlaps, images over user memory are compared by address: kernels use it to decide
// whether the input must be copied before being overwritten.
func (img *Image) SharesMemory(other *Image) bool {
	if img.Overlaps(other) {
		return true
	}
	if img == nil || other == nil || len(img.data) == 0 || len(other.data) == 0 {
		return false
	}
	begin1 := uintptr(unsafe.Pointer(unsafe.SliceData(img.data)))
	begin2 := uintptr(unsafe.Pointer(unsafe.SliceData(other.data)))
	return begin1 < begin2+uintptr(len(other.data)) && begin2 < begin1+uintptr(len(img.data))
}

// releaseLocked drops the image reference to its buffer, with the device mutex held.
func (img *Image) releaseLocked() error {
	if img.buffer == nil {
		return nil
	}
	b := img.buffer
	img.buffer = nil
	img.data = nil
	return releaseBufferLocked(b)
}
