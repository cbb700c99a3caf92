// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// oidn_cabi exports the denoiser API as a C shared library:
//
//	go build -buildmode=c-shared -o libOpenImageDenoise.so ./cmd/oidn_cabi
//
// Objects are passed to C as integer handles (see pkg/api), C callbacks are called through the
// static trampolines declared below.
package main

/*
#include <stdbool.h>
#include <stddef.h>
#include <stdint.h>
#include <stdlib.h>

typedef uintptr_t OIDNDevice;
typedef uintptr_t OIDNBuffer;
typedef uintptr_t OIDNFilter;
typedef uintptr_t OIDNSYCLEvent;

typedef void (*OIDNErrorFunction)(void* userPtr, int code, const char* message);
typedef bool (*OIDNProgressMonitorFunction)(void* userPtr, double n);

static inline void oidnCallErrorFunction(OIDNErrorFunction fn, void* userPtr, int code, const char* message) {
	fn(userPtr, code, message);
}

static inline bool oidnCallProgressMonitorFunction(OIDNProgressMonitorFunction fn, void* userPtr, double n) {
	return fn(userPtr, n);
}
*/
import "C"

import (
	"sync"
	"unsafe"

	"github.com/gomlx/denoise/backends/gpu"
	"github.com/gomlx/denoise/internal/handles"
	"github.com/gomlx/denoise/pkg/api"
	"github.com/gomlx/denoise/pkg/core"
)

func main() {}

var (
	// errorMessages holds the last message returned by oidnGetDeviceError for each device, valid
	// until the next call.
	muErrorMessages sync.Mutex
	errorMessages   = make(map[C.OIDNDevice]*C.char)

	// mappedRegions indexes the regions returned by oidnMapBuffer by their address.
	muMapped      sync.Mutex
	mappedRegions = make(map[unsafe.Pointer][]byte)

	// syclEvents are the done events returned by oidnExecuteSYCLFilterAsync.
	syclEvents handles.Table[gpu.Event]
)

// bytesOf returns the C memory [ptr, ptr+size) as a slice, nil for a null pointer.
func bytesOf(ptr unsafe.Pointer, size C.size_t) []byte {
	if ptr == nil {
		return nil
	}
	return unsafe.Slice((*byte)(ptr), int(size))
}

// nativeHandles copies the C array [ptr, ptr+n). A negative n is reported as an invalid number
// of what.
func nativeHandles(ptr *C.uintptr_t, n C.int, what string) ([]uintptr, bool) {
	if !checkCount(int(n), what) {
		return nil, false
	}
	if ptr == nil || n == 0 {
		return nil, true
	}
	natives := make([]uintptr, int(n))
	for i, native := range unsafe.Slice(ptr, int(n)) {
		natives[i] = uintptr(native)
	}
	return natives, true
}

//export oidnNewDevice
func oidnNewDevice(deviceType C.int) C.OIDNDevice {
	return C.OIDNDevice(api.NewDevice(core.DeviceType(deviceType)))
}

//export oidnNewSYCLDevice
func oidnNewSYCLDevice(queues *C.uintptr_t, numQueues C.int) C.OIDNDevice {
	natives, ok := nativeHandles(queues, numQueues, "queues")
	if !ok {
		return 0
	}
	return C.OIDNDevice(api.NewSYCLDeviceFromNative(natives))
}

// newStreamDevice implements the CUDA and HIP constructors.
func newStreamDevice(deviceIDs *C.int, streams *C.uintptr_t, numPairs C.int,
	create func(deviceIDs []int, streams []uintptr) api.Device) C.OIDNDevice {
	natives, ok := nativeHandles(streams, numPairs, "streams")
	if !ok {
		return 0
	}
	var ids []int
	if deviceIDs != nil && numPairs > 0 {
		for _, id := range unsafe.Slice(deviceIDs, int(numPairs)) {
			ids = append(ids, int(id))
		}
	}
	return C.OIDNDevice(create(ids, natives))
}

//export oidnNewCUDADevice
func oidnNewCUDADevice(deviceIDs *C.int, streams *C.uintptr_t, numPairs C.int) C.OIDNDevice {
	return newStreamDevice(deviceIDs, streams, numPairs, api.NewCUDADeviceFromNative)
}

//export oidnNewHIPDevice
func oidnNewHIPDevice(deviceIDs *C.int, streams *C.uintptr_t, numPairs C.int) C.OIDNDevice {
	return newStreamDevice(deviceIDs, streams, numPairs, api.NewHIPDeviceFromNative)
}

//export oidnRetainDevice
func oidnRetainDevice(device C.OIDNDevice) {
	api.RetainDevice(api.Device(device))
}

//export oidnReleaseDevice
func oidnReleaseDevice(device C.OIDNDevice) {
	api.ReleaseDevice(api.Device(device))
}

//export oidnSetDeviceBool
func oidnSetDeviceBool(device C.OIDNDevice, name *C.char, value C.bool) {
	api.SetDevice1b(api.Device(device), C.GoString(name), bool(value))
}

//export oidnSetDeviceInt
func oidnSetDeviceInt(device C.OIDNDevice, name *C.char, value C.int) {
	api.SetDevice1i(api.Device(device), C.GoString(name), int(value))
}

//export oidnGetDeviceBool
func oidnGetDeviceBool(device C.OIDNDevice, name *C.char) C.bool {
	return C.bool(api.GetDevice1b(api.Device(device), C.GoString(name)))
}

//export oidnGetDeviceInt
func oidnGetDeviceInt(device C.OIDNDevice, name *C.char) C.int {
	return C.int(api.GetDevice1i(api.Device(device), C.GoString(name)))
}

// oidnGetDeviceData copies the named opaque property to dst, if dst is not null, and returns its
// size in *byteSize.
//
//export oidnGetDeviceData
func oidnGetDeviceData(device C.OIDNDevice, name *C.char, dst unsafe.Pointer, byteSize *C.size_t) {
	data := api.GetDeviceData(api.Device(device), C.GoString(name))
	if dst != nil && byteSize != nil {
		copy(bytesOf(dst, *byteSize), data)
	}
	if byteSize != nil {
		*byteSize = C.size_t(len(data))
	}
}

//export oidnSetDeviceErrorFunction
func oidnSetDeviceErrorFunction(device C.OIDNDevice, fn C.OIDNErrorFunction, userPtr unsafe.Pointer) {
	if fn == nil {
		api.SetDeviceErrorFunction(api.Device(device), nil)
		return
	}
	api.SetDeviceErrorFunction(api.Device(device), func(code core.ErrorCode, message string) {
		cMessage := C.CString(message)
		defer C.free(unsafe.Pointer(cMessage))
		C.oidnCallErrorFunction(fn, userPtr, C.int(code), cMessage)
	})
}

// oidnGetDeviceError returns and clears the last error. The message, if outMessage is not null,
// is valid until the next call for the same device.
//
//export oidnGetDeviceError
func oidnGetDeviceError(device C.OIDNDevice, outMessage **C.char) C.int {
	code, message := api.GetDeviceError(api.Device(device))
	if outMessage != nil {
		muErrorMessages.Lock()
		if old := errorMessages[device]; old != nil {
			C.free(unsafe.Pointer(old))
		}
		cMessage := C.CString(message)
		errorMessages[device] = cMessage
		muErrorMessages.Unlock()
		*outMessage = cMessage
	}
	return C.int(code)
}

//export oidnCommitDevice
func oidnCommitDevice(device C.OIDNDevice) {
	api.CommitDevice(api.Device(device))
}

//export oidnSyncDevice
func oidnSyncDevice(device C.OIDNDevice) {
	api.SyncDevice(api.Device(device))
}

//export oidnNewBuffer
func oidnNewBuffer(device C.OIDNDevice, byteSize C.size_t) C.OIDNBuffer {
	return C.OIDNBuffer(api.NewBuffer(api.Device(device), int(byteSize)))
}

//export oidnNewBufferWithStorage
func oidnNewBufferWithStorage(device C.OIDNDevice, byteSize C.size_t, storage C.int) C.OIDNBuffer {
	return C.OIDNBuffer(api.NewBufferWithStorage(api.Device(device), int(byteSize), core.Storage(storage)))
}

//export oidnNewSharedBuffer
func oidnNewSharedBuffer(device C.OIDNDevice, devPtr unsafe.Pointer, byteSize C.size_t) C.OIDNBuffer {
	return C.OIDNBuffer(api.NewSharedBuffer(api.Device(device), bytesOf(devPtr, byteSize)))
}

//export oidnNewSharedBufferFromFD
func oidnNewSharedBufferFromFD(device C.OIDNDevice, fdType C.int, fd C.int, byteSize C.size_t) C.OIDNBuffer {
	return C.OIDNBuffer(api.NewSharedBufferFromFD(api.Device(device), core.ExternalMemoryTypeFlag(fdType), int(fd), int(byteSize)))
}

//export oidnNewSharedBufferFromWin32Handle
func oidnNewSharedBufferFromWin32Handle(device C.OIDNDevice, handleType C.int, handle unsafe.Pointer, name *C.char, byteSize C.size_t) C.OIDNBuffer {
	var goName string
	if name != nil {
		goName = C.GoString(name)
	}
	return C.OIDNBuffer(api.NewSharedBufferFromWin32Handle(api.Device(device), core.ExternalMemoryTypeFlag(handleType),
		uintptr(handle), goName, int(byteSize)))
}

//export oidnGetBufferSize
func oidnGetBufferSize(buffer C.OIDNBuffer) C.size_t {
	return C.size_t(api.GetBufferSize(api.Buffer(buffer)))
}

//export oidnGetBufferStorage
func oidnGetBufferStorage(buffer C.OIDNBuffer) C.int {
	return C.int(api.GetBufferStorage(api.Buffer(buffer)))
}

// oidnGetBufferData returns the address of the buffer memory. Host buffers are allocated outside
// the Go heap, so the address can be kept by C.
//
//export oidnGetBufferData
func oidnGetBufferData(buffer C.OIDNBuffer) unsafe.Pointer {
	data := api.GetBufferData(api.Buffer(buffer))
	if len(data) == 0 {
		return nil
	}
	return unsafe.Pointer(unsafe.SliceData(data))
}

//export oidnMapBuffer
func oidnMapBuffer(buffer C.OIDNBuffer, access C.int, byteOffset, byteSize C.size_t) unsafe.Pointer {
	mapped := api.MapBuffer(api.Buffer(buffer), core.Access(access), int(byteOffset), int(byteSize))
	if len(mapped) == 0 {
		return nil
	}
	ptr := unsafe.Pointer(unsafe.SliceData(mapped))
	muMapped.Lock()
	mappedRegions[ptr] = mapped
	muMapped.Unlock()
	return ptr
}

//export oidnUnmapBuffer
func oidnUnmapBuffer(buffer C.OIDNBuffer, mappedPtr unsafe.Pointer) {
	muMapped.Lock()
	mapped, found := mappedRegions[mappedPtr]
	delete(mappedRegions, mappedPtr)
	muMapped.Unlock()
	if !found {
		// Reported by the buffer as an invalid region.
		mapped = bytesOf(mappedPtr, 1)
	}
	api.UnmapBuffer(api.Buffer(buffer), mapped)
}

//export oidnReadBuffer
func oidnReadBuffer(buffer C.OIDNBuffer, byteOffset, byteSize C.size_t, dstHostPtr unsafe.Pointer) {
	api.ReadBuffer(api.Buffer(buffer), int(byteOffset), bytesOf(dstHostPtr, byteSize))
}

//export oidnReadBufferAsync
func oidnReadBufferAsync(buffer C.OIDNBuffer, byteOffset, byteSize C.size_t, dstHostPtr unsafe.Pointer) {
	api.ReadBufferAsync(api.Buffer(buffer), int(byteOffset), bytesOf(dstHostPtr, byteSize))
}

//export oidnWriteBuffer
func oidnWriteBuffer(buffer C.OIDNBuffer, byteOffset, byteSize C.size_t, srcHostPtr unsafe.Pointer) {
	api.WriteBuffer(api.Buffer(buffer), int(byteOffset), bytesOf(srcHostPtr, byteSize))
}

//export oidnWriteBufferAsync
func oidnWriteBufferAsync(buffer C.OIDNBuffer, byteOffset, byteSize C.size_t, srcHostPtr unsafe.Pointer) {
	api.WriteBufferAsync(api.Buffer(buffer), int(byteOffset), bytesOf(srcHostPtr, byteSize))
}

//export oidnRetainBuffer
func oidnRetainBuffer(buffer C.OIDNBuffer) {
	api.RetainBuffer(api.Buffer(buffer))
}

//export oidnReleaseBuffer
func oidnReleaseBuffer(buffer C.OIDNBuffer) {
	api.ReleaseBuffer(api.Buffer(buffer))
}

//export oidnNewFilter
func oidnNewFilter(device C.OIDNDevice, filterType *C.char) C.OIDNFilter {
	return C.OIDNFilter(api.NewFilter(api.Device(device), C.GoString(filterType)))
}

//export oidnRetainFilter
func oidnRetainFilter(filter C.OIDNFilter) {
	api.RetainFilter(api.Filter(filter))
}

//export oidnReleaseFilter
func oidnReleaseFilter(filter C.OIDNFilter) {
	api.ReleaseFilter(api.Filter(filter))
}

//export oidnSetFilterImage
func oidnSetFilterImage(filter C.OIDNFilter, name *C.char, buffer C.OIDNBuffer, format C.int,
	width, height, byteOffset, pixelByteStride, rowByteStride C.size_t) {
	api.SetFilterImage(api.Filter(filter), C.GoString(name), api.Buffer(buffer), core.Format(format),
		int(width), int(height), int(byteOffset), int(pixelByteStride), int(rowByteStride))
}

// oidnSetSharedFilterImage binds C memory: its size is derived from the image layout, invalid
// layouts are reported by the filter.
//
//export oidnSetSharedFilterImage
func oidnSetSharedFilterImage(filter C.OIDNFilter, name *C.char, devPtr unsafe.Pointer, format C.int,
	width, height, byteOffset, pixelByteStride, rowByteStride C.size_t) {
	var data []byte
	if devPtr != nil {
		desc, err := core.NewImageDesc(core.Format(format), int(width), int(height), int(pixelByteStride), int(rowByteStride))
		if err == nil {
			data = bytesOf(devPtr, byteOffset+C.size_t(desc.ByteSize()))
		}
	}
	api.SetSharedFilterImage(api.Filter(filter), C.GoString(name), data, core.Format(format),
		int(width), int(height), int(byteOffset), int(pixelByteStride), int(rowByteStride))
}

//export oidnRemoveFilterImage
func oidnRemoveFilterImage(filter C.OIDNFilter, name *C.char) {
	api.RemoveFilterImage(api.Filter(filter), C.GoString(name))
}

//export oidnSetSharedFilterData
func oidnSetSharedFilterData(filter C.OIDNFilter, name *C.char, hostPtr unsafe.Pointer, byteSize C.size_t) {
	api.SetSharedFilterData(api.Filter(filter), C.GoString(name), bytesOf(hostPtr, byteSize))
}

//export oidnUpdateFilterData
func oidnUpdateFilterData(filter C.OIDNFilter, name *C.char) {
	api.UpdateFilterData(api.Filter(filter), C.GoString(name))
}

//export oidnRemoveFilterData
func oidnRemoveFilterData(filter C.OIDNFilter, name *C.char) {
	api.RemoveFilterData(api.Filter(filter), C.GoString(name))
}

//export oidnSetFilterBool
func oidnSetFilterBool(filter C.OIDNFilter, name *C.char, value C.bool) {
	api.SetFilter1b(api.Filter(filter), C.GoString(name), bool(value))
}

//export oidnGetFilterBool
func oidnGetFilterBool(filter C.OIDNFilter, name *C.char) C.bool {
	return C.bool(api.GetFilter1b(api.Filter(filter), C.GoString(name)))
}

//export oidnSetFilterInt
func oidnSetFilterInt(filter C.OIDNFilter, name *C.char, value C.int) {
	api.SetFilter1i(api.Filter(filter), C.GoString(name), int(value))
}

//export oidnGetFilterInt
func oidnGetFilterInt(filter C.OIDNFilter, name *C.char) C.int {
	return C.int(api.GetFilter1i(api.Filter(filter), C.GoString(name)))
}

//export oidnSetFilterFloat
func oidnSetFilterFloat(filter C.OIDNFilter, name *C.char, value C.float) {
	api.SetFilter1f(api.Filter(filter), C.GoString(name), float32(value))
}

//export oidnGetFilterFloat
func oidnGetFilterFloat(filter C.OIDNFilter, name *C.char) C.float {
	return C.float(api.GetFilter1f(api.Filter(filter), C.GoString(name)))
}

//export oidnSetFilterProgressMonitorFunction
func oidnSetFilterProgressMonitorFunction(filter C.OIDNFilter, fn C.OIDNProgressMonitorFunction, userPtr unsafe.Pointer) {
	if fn == nil {
		api.SetFilterProgressMonitorFunction(api.Filter(filter), nil)
		return
	}
	api.SetFilterProgressMonitorFunction(api.Filter(filter), func(n float64) bool {
		return bool(C.oidnCallProgressMonitorFunction(fn, userPtr, C.double(n)))
	})
}

//export oidnCommitFilter
func oidnCommitFilter(filter C.OIDNFilter) {
	api.CommitFilter(api.Filter(filter))
}

//export oidnExecuteFilter
func oidnExecuteFilter(filter C.OIDNFilter) {
	api.ExecuteFilter(api.Filter(filter))
}

//export oidnExecuteFilterAsync
func oidnExecuteFilterAsync(filter C.OIDNFilter) {
	api.ExecuteFilterAsync(api.Filter(filter))
}

// oidnExecuteSYCLFilterAsync enqueues the filter after the given events. If doneEvent is not
// null it receives the event of completion (0 if no work was enqueued), which must be released
// with oidnReleaseSYCLEvent.
//
//export oidnExecuteSYCLFilterAsync
func oidnExecuteSYCLFilterAsync(filter C.OIDNFilter, depEvents *C.OIDNSYCLEvent, numDepEvents C.int, doneEvent *C.OIDNSYCLEvent) {
	if !checkCount(int(numDepEvents), "dependent events") {
		return
	}
	var deps []gpu.Event
	if depEvents != nil && numDepEvents > 0 {
		for _, h := range unsafe.Slice(depEvents, int(numDepEvents)) {
			ev, found := syclEvents.Get(handles.Handle(h))
			if !found {
				core.SetGlobalError(core.ErrorInvalidArgument, "invalid SYCL event")
				return
			}
			deps = append(deps, ev)
		}
	}
	done := api.ExecuteSYCLFilterAsync(api.Filter(filter), deps)
	if doneEvent == nil {
		return
	}
	*doneEvent = 0
	if done != nil {
		*doneEvent = C.OIDNSYCLEvent(syclEvents.Acquire(done))
	}
}

//export oidnSyncSYCLEvent
func oidnSyncSYCLEvent(event C.OIDNSYCLEvent) C.bool {
	ev, found := syclEvents.Get(handles.Handle(event))
	if !found {
		core.SetGlobalError(core.ErrorInvalidArgument, "invalid SYCL event")
		return false
	}
	if err := ev.Synchronize(); err != nil {
		core.ReportError(nil, err)
		return false
	}
	return true
}

//export oidnReleaseSYCLEvent
func oidnReleaseSYCLEvent(event C.OIDNSYCLEvent) {
	syclEvents.Release(handles.Handle(event))
}
