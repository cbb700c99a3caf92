// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package core

import (
	"maps"
	"slices"
	"strings"

	"github.com/gomlx/exceptions"
	"k8s.io/klog/v2"
)

// Data is a non-owning view of host memory given to a filter, e.g. trained weights.
type Data []byte

// ImageSlot declares a named image parameter of a filter type.
type ImageSlot struct {
	Name     string
	Required bool

	// Output slots are written by the filter.
	Output bool

	// Formats accepted by the slot.
	Formats []Format
}

// FilterSchema declares the parameters of a filter type.
type FilterSchema struct {
	Images []ImageSlot

	// Ints and Floats map option names to their default values.
	Ints   map[string]int
	Floats map[string]float32

	// Data lists the accepted data slot names.
	Data []string

	// AllowedAliases lists the {output, input} slot pairs whose images may overlap.
	// Any other overlap between an output and another image is rejected by Commit.
	AllowedAliases [][2]string
}

func (s *FilterSchema) imageSlot(name string) (ImageSlot, bool) {
	for _, slot := range s.Images {
		if slot.Name == name {
			return slot, true
		}
	}
	return ImageSlot{}, false
}

func (s *FilterSchema) aliasAllowed(output, input string) bool {
	for _, pair := range s.AllowedAliases {
		if pair[0] == output && pair[1] == input {
			return true
		}
	}
	return false
}

// FilterState is the committed configuration of a filter, given to FilterImpl.Commit.
// It is a snapshot: later changes to the Filter do not affect it.
type FilterState struct {
	Images map[string]*Image
	Data   map[string]Data
	Ints   map[string]int
	Floats map[string]float32
}

// Image returns the image bound to the slot, or nil.
func (s *FilterState) Image(name string) *Image {
	img := s.Images[name]
	if img == nil || img.IsEmpty() {
		return nil
	}
	return img
}

// Filter is a configured denoising computation: a bag of named images, data and options,
// committed into an engine specific implementation and then executed.
//
// Changing any parameter after Commit makes the filter dirty: it must be committed again before
// being executed.
type Filter struct {
	Object

	device     *Device
	filterType string
	impl       FilterImpl
	schema     *FilterSchema

	images     map[string]*Image
	data       map[string]Data
	ints       map[string]int
	floats     map[string]float32
	progressFn ProgressMonitorFunc
	dirty      bool
	destroyed  bool
}

func newFilter(device *Device, filterType string, impl FilterImpl) *Filter {
	schema := impl.Schema()
	f := &Filter{
		device:     device,
		filterType: filterType,
		impl:       impl,
		schema:     schema,
		images:     make(map[string]*Image),
		data:       make(map[string]Data),
		ints:       maps.Clone(schema.Ints),
		floats:     maps.Clone(schema.Floats),
		dirty:      true,
	}
	if f.ints == nil {
		f.ints = make(map[string]int)
	}
	if f.floats == nil {
		f.floats = make(map[string]float32)
	}
	f.InitRef()
	device.IncRef()
	device.Logf(2, "new filter %q", filterType)
	return f
}

// Device that owns the filter.
func (f *Filter) Device() *Device {
	return f.device
}

// Type of the filter, e.g. "RT".
func (f *Filter) Type() string {
	return f.filterType
}

// IsCommitted returns whether the filter is committed and not modified since.
func (f *Filter) IsCommitted() bool {
	return !f.dirty
}

// SetImage binds img to the named image slot. The filter takes ownership of img: it is released
// when replaced, removed or when the filter is destroyed.
func (f *Filter) SetImage(name string, img *Image) error {
	if img.buffer != nil && img.buffer.device != f.device {
		_ = img.releaseLocked()
		return Errorf(ErrorInvalidArgument, "the specified objects are bound to different devices")
	}
	slot, found := f.schema.imageSlot(name)
	if !found {
		klog.Warningf("%s: unknown filter parameter or type mismatch: %q", f.device, name)
		return img.releaseLocked()
	}
	if !img.IsEmpty() && len(slot.Formats) > 0 && !slices.Contains(slot.Formats, img.Format) {
		_ = img.releaseLocked()
		return Errorf(ErrorInvalidArgument, "unsupported %q image format %s", name, img.Format)
	}
	err := f.removeImageLocked(name)
	f.images[name] = img
	f.dirty = true
	return err
}

// RemoveImage unbinds the named image slot, if bound.
func (f *Filter) RemoveImage(name string) error {
	if _, found := f.schema.imageSlot(name); !found {
		klog.Warningf("%s: unknown filter parameter or type mismatch: %q", f.device, name)
		return nil
	}
	f.dirty = true
	return f.removeImageLocked(name)
}

func (f *Filter) removeImageLocked(name string) error {
	old, found := f.images[name]
	if !found {
		return nil
	}
	delete(f.images, name)
	return old.releaseLocked()
}

// SetData binds host memory to the named data slot. The memory is not copied: it must stay valid
// until the slot is removed or the filter destroyed.
func (f *Filter) SetData(name string, data Data) error {
	if !slices.Contains(f.schema.Data, name) {
		klog.Warningf("%s: unknown filter parameter or type mismatch: %q", f.device, name)
		return nil
	}
	f.data[name] = data
	f.dirty = true
	return nil
}

// UpdateData notifies the filter that the contents of the named data slot changed.
func (f *Filter) UpdateData(name string) error {
	if _, found := f.data[name]; !found {
		return Errorf(ErrorInvalidArgument, "cannot update data %q: not set", name)
	}
	f.dirty = true
	return nil
}

// RemoveData unbinds the named data slot, if bound.
func (f *Filter) RemoveData(name string) error {
	if !slices.Contains(f.schema.Data, name) {
		klog.Warningf("%s: unknown filter parameter or type mismatch: %q", f.device, name)
		return nil
	}
	if _, found := f.data[name]; found {
		delete(f.data, name)
		f.dirty = true
	}
	return nil
}

// Set1i sets an integer (or boolean) option. Unknown options are ignored with a warning.
func (f *Filter) Set1i(name string, value int) error {
	if _, found := f.ints[name]; !found {
		klog.Warningf("%s: unknown filter parameter or type mismatch: %q", f.device, name)
		return nil
	}
	f.ints[name] = value
	f.dirty = true
	return nil
}

// Get1i returns an integer (or boolean) option.
func (f *Filter) Get1i(name string) (int, error) {
	value, found := f.ints[name]
	if !found {
		return 0, Errorf(ErrorInvalidArgument, "unknown filter parameter or type mismatch: %q", name)
	}
	return value, nil
}

// Set1f sets a float option. Unknown options are ignored with a warning.
func (f *Filter) Set1f(name string, value float32) error {
	if _, found := f.floats[name]; !found {
		klog.Warningf("%s: unknown filter parameter or type mismatch: %q", f.device, name)
		return nil
	}
	f.floats[name] = value
	f.dirty = true
	return nil
}

// Get1f returns a float option.
func (f *Filter) Get1f(name string) (float32, error) {
	value, found := f.floats[name]
	if !found {
		return 0, Errorf(ErrorInvalidArgument, "unknown filter parameter or type mismatch: %q", name)
	}
	return value, nil
}

// SetProgressMonitorFunc installs fn to monitor executions. Pass nil to remove it.
// Synchronous executions call fn while the executing goroutine holds the device mutex;
// asynchronous ones call it from engine goroutines without the mutex, after Execute returned.
// Calls are serialized in both cases, and fn must not call back into the device.
func (f *Filter) SetProgressMonitorFunc(fn ProgressMonitorFunc) {
	f.progressFn = fn
}

// Commit validates the configuration and prepares the filter for execution:
// required images are bound, formats are accepted, all images have the same size and outputs
// only overlap inputs the filter allows.
func (f *Filter) Commit() error {
	var size *ImageDesc
	var sizeSlot string
	for _, slot := range f.schema.Images {
		img, found := f.images[slot.Name]
		if !found || img.IsEmpty() {
			if slot.Required {
				return Errorf(ErrorInvalidOperation, "%q image not set for %q filter", slot.Name, f.filterType)
			}
			continue
		}
		if size == nil {
			size, sizeSlot = &img.ImageDesc, slot.Name
		} else if img.Width != size.Width || img.Height != size.Height {
			return Errorf(ErrorInvalidArgument, "%q image size %dx%d does not match %q image size %dx%d",
				slot.Name, img.Width, img.Height, sizeSlot, size.Width, size.Height)
		}
	}
	if err := f.checkAliases(); err != nil {
		return err
	}

	state := &FilterState{
		Images: maps.Clone(f.images),
		Data:   maps.Clone(f.data),
		Ints:   maps.Clone(f.ints),
		Floats: maps.Clone(f.floats),
	}
	if err := f.impl.Commit(state); err != nil {
		return err
	}
	f.dirty = false
	f.device.Logf(2, "committed %q filter: %s", f.filterType, f.describeImages())
	return nil
}

func (f *Filter) checkAliases() error {
	for _, outSlot := range f.schema.Images {
		if !outSlot.Output {
			continue
		}
		out := f.images[outSlot.Name]
		for _, slot := range f.schema.Images {
			if slot.Name == outSlot.Name {
				continue
			}
			img := f.images[slot.Name]
			if out.Overlaps(img) && !f.schema.aliasAllowed(outSlot.Name, slot.Name) {
				return Errorf(ErrorInvalidArgument, "%s image overlaps an auxiliary input image (%s)", outSlot.Name, slot.Name)
			}
		}
	}
	return nil
}

func (f *Filter) describeImages() string {
	parts := make([]string, 0, len(f.images))
	for _, slot := range f.schema.Images {
		if img, found := f.images[slot.Name]; found && !img.IsEmpty() {
			parts = append(parts, slot.Name+"="+img.ImageDesc.String())
		}
	}
	return strings.Join(parts, ", ")
}

// Execute runs the committed filter. With SyncModeAsync the work is enqueued and completion is
// observed by waiting on the device.
func (f *Filter) Execute(sync SyncMode) error {
	if f.dirty {
		return Errorf(ErrorInvalidOperation, "filter is not committed")
	}
	for _, img := range f.images {
		if err := img.UpdatePtr(); err != nil {
			return err
		}
	}
	return f.impl.Execute(NewProgress(f.progressFn, 1), sync)
}

// destroyLocked frees the implementation and releases all images.
func (f *Filter) destroyLocked() error {
	if f.destroyed {
		exceptions.Panicf("%q filter destroyed twice", f.filterType)
	}
	f.destroyed = true
	f.impl.Free()
	var err error
	for name := range f.images {
		if removeErr := f.removeImageLocked(name); err == nil {
			err = removeErr
		}
	}
	clear(f.data)
	f.runDestroyHooks()
	return err
}

// ReleaseFilter drops a reference to the filter. The last reference locks the device, waits for
// its asynchronous work and destroys the filter; then the filter reference to the device is dropped.
func ReleaseFilter(f *Filter) error {
	if f.DecRefKeep() != 1 {
		return nil
	}
	d := f.device
	d.Lock()
	err := d.Wait()
	if destroyErr := f.destroyLocked(); err == nil {
		err = destroyErr
	}
	d.Unlock()
	if releaseErr := ReleaseDevice(d); err == nil {
		err = releaseErr
	}
	return err
}
