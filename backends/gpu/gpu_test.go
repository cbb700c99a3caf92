// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package gpu_test

import (
	"flag"
	"os"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gomlx/denoise/backends/gpu"
	"github.com/gomlx/denoise/backends/gpu/emulated"
	"github.com/gomlx/denoise/internal/kernels"
	"github.com/gomlx/denoise/pkg/core"
	"github.com/janpfeifer/must"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/klog/v2"
)

var cudaDriver, syclDriver *emulated.Driver

func TestMain(m *testing.M) {
	klog.InitFlags(nil)
	flag.Parse()
	cudaDriver = emulated.Register(core.DeviceTypeCUDA)
	syclDriver = emulated.Register(core.DeviceTypeSYCL)
	os.Exit(m.Run())
}

func commit(t *testing.T, d *core.Device) *core.Device {
	require.NoError(t, d.Commit())
	t.Cleanup(func() { require.NoError(t, core.ReleaseDevice(d)) })
	return d
}

func TestUnsupported(t *testing.T) {
	d := must.M1(core.NewDevice(core.DeviceTypeHIP))
	err := d.Commit()
	require.Error(t, err)
	assert.True(t, core.IsCode(err, core.ErrorUnsupportedHardware))
	_, err = d.NewBuffer(16, core.StorageUndefined)
	assert.True(t, core.IsCode(err, core.ErrorInvalidOperation))
	require.NoError(t, core.ReleaseDevice(d))

	// Default device picks the first supported device type: CUDA before CPU.
	d = must.M1(core.NewDevice(core.DeviceTypeDefault))
	assert.Equal(t, core.DeviceTypeCUDA, d.Type())
	require.NoError(t, core.ReleaseDevice(d))
}

func TestStreams(t *testing.T) {
	_, err := gpu.NewCUDADevice([]gpu.Stream{emulated.NewStream(), emulated.NewStream()})
	require.Error(t, err)
	code, msg := core.CodeOf(err)
	assert.Equal(t, core.ErrorInvalidArgument, code)
	assert.Equal(t, "unsupported number of streams", msg)

	_, err = gpu.NewHIPDevice([]gpu.Stream{emulated.NewStream(), emulated.NewStream()})
	assert.True(t, core.IsCode(err, core.ErrorInvalidArgument))

	// The device creates and destroys its own stream.
	before := cudaDriver.NumStreams()
	d := must.M1(gpu.NewCUDADevice(nil))
	require.NoError(t, d.Commit())
	assert.Equal(t, before+1, cudaDriver.NumStreams())
	own := d.Engine().(*gpu.Engine).Streams()[0].(*emulated.Stream)
	require.NoError(t, core.ReleaseDevice(d))
	assert.True(t, own.IsDestroyed())

	// Application streams are used, and not destroyed.
	appStream := emulated.NewStream()
	d = must.M1(gpu.NewCUDADevice([]gpu.Stream{appStream}))
	require.NoError(t, d.Commit())
	buf := must.M1(d.NewBuffer(64, core.StorageUndefined))
	require.NoError(t, buf.Write(0, []byte("hello"), core.SyncModeAsync))
	assert.Equal(t, 1, appStream.NumKernels())
	require.NoError(t, core.ReleaseBuffer(buf))
	require.NoError(t, core.ReleaseDevice(d))
	assert.False(t, appStream.IsDestroyed())
}

func TestDeviceMemory(t *testing.T) {
	d := commit(t, must.M1(core.NewDevice(core.DeviceTypeCUDA)))
	buf := must.M1(d.NewBuffer(256, core.StorageUndefined))
	defer func() { require.NoError(t, core.ReleaseBuffer(buf)) }()
	assert.Equal(t, core.StorageDevice, buf.Storage())

	src := make([]byte, 256)
	for i := range src {
		src[i] = byte(i)
	}
	require.NoError(t, buf.Write(0, src, core.SyncModeSync))

	// Device memory is mapped through a staging copy.
	mapped := must.M1(buf.Map(16, 16, core.AccessReadWrite))
	assert.Equal(t, src[16:32], mapped)
	mapped[0] = 200
	require.NoError(t, buf.Unmap(mapped))
	dst := make([]byte, 4)
	require.NoError(t, buf.Read(15, dst, core.SyncModeSync))
	assert.Equal(t, []byte{15, 200, 17, 18}, dst)

	// Write-discard mappings do not read the device.
	mapped = must.M1(buf.Map(0, 0, core.AccessWriteDiscard))
	assert.Len(t, mapped, 256)
	assert.Equal(t, byte(0), mapped[1])
	require.NoError(t, buf.Unmap(mapped))

	err := buf.Unmap(make([]byte, 4))
	assert.True(t, core.IsCode(err, core.ErrorInvalidArgument))

	// Regions still mapped are released with the buffer.
	mapped = must.M1(buf.Map(8, 8, core.AccessRead))
	assert.Equal(t, src[8:16], mapped)
}

func TestOutOfMemory(t *testing.T) {
	d := commit(t, must.M1(core.NewDevice(core.DeviceTypeCUDA)))
	cudaDriver.SetMemoryLimit(1 << 20)
	defer cudaDriver.SetMemoryLimit(0)
	_, err := d.NewBuffer(2<<20, core.StorageDevice)
	require.Error(t, err)
	code, msg := core.CodeOf(err)
	assert.Equal(t, core.ErrorOutOfMemory, code)
	assert.Equal(t, "out of memory", msg)
}

func TestExternalMemory(t *testing.T) {
	d := commit(t, must.M1(core.NewDevice(core.DeviceTypeCUDA)))
	assert.Equal(t, core.ExternalMemoryTypeFlagOpaqueFD|core.ExternalMemoryTypeFlagOpaqueWin32, d.ExternalMemoryTypes())

	shared := []byte("exported memory")
	fd := cudaDriver.ExportFD(shared)
	_, err := d.NewExternalBufferFromFD(core.ExternalMemoryTypeFlagDMABuf, fd, len(shared))
	assert.True(t, core.IsCode(err, core.ErrorInvalidArgument), "DMABuf is not supported")
	buf := must.M1(d.NewExternalBufferFromFD(core.ExternalMemoryTypeFlagOpaqueFD, fd, 8))
	assert.Equal(t, 1, cudaDriver.NumImported())
	got := make([]byte, 8)
	require.NoError(t, buf.Read(0, got, core.SyncModeSync))
	assert.Equal(t, "exported", string(got))
	require.NoError(t, core.ReleaseBuffer(buf))
	assert.Equal(t, 0, cudaDriver.NumImported())

	handle := cudaDriver.ExportWin32(shared, "shared-name")
	_, err = d.NewExternalBufferFromWin32Handle(core.ExternalMemoryTypeFlagOpaqueWin32, 0, "", 8)
	assert.True(t, core.IsCode(err, core.ErrorInvalidArgument))
	_, err = d.NewExternalBufferFromWin32Handle(core.ExternalMemoryTypeFlagOpaqueWin32, handle, "shared-name", 8)
	assert.True(t, core.IsCode(err, core.ErrorInvalidArgument))
	for _, byName := range []bool{false, true} {
		var buf *core.Buffer
		if byName {
			buf = must.M1(d.NewExternalBufferFromWin32Handle(core.ExternalMemoryTypeFlagOpaqueWin32, 0, "shared-name", len(shared)))
		} else {
			buf = must.M1(d.NewExternalBufferFromWin32Handle(core.ExternalMemoryTypeFlagOpaqueWin32, handle, "", len(shared)))
		}
		require.NoError(t, buf.Write(0, []byte("EX"), core.SyncModeSync))
		require.NoError(t, core.ReleaseBuffer(buf))
	}
	assert.True(t, strings.HasPrefix(string(shared), "EX"))
}

// fillCheckerboard writes a Float3 checkerboard image to buf.
func fillCheckerboard(t *testing.T, buf *core.Buffer, width, height int) {
	view := kernels.NewScratch(must.M1(core.NewImageDesc(core.FormatFloat3, width, height, 0, 0)))
	for y := range height {
		for x := range width {
			v := float32((x + y) % 2)
			view.Store(x, y, kernels.Pixel{v, v, v})
		}
	}
	require.NoError(t, buf.Write(0, view.Data, core.SyncModeSync))
}

func newRTFilter(t *testing.T, d *core.Device, color, output *core.Buffer, width, height int) *core.Filter {
	desc := must.M1(core.NewImageDesc(core.FormatFloat3, width, height, 0, 0))
	f := must.M1(d.NewFilter("RT"))
	require.NoError(t, f.SetImage("color", must.M1(core.NewBufferImage(color, desc, 0))))
	require.NoError(t, f.SetImage("output", must.M1(core.NewBufferImage(output, desc, 0))))
	require.NoError(t, f.Commit())
	return f
}

func TestSYCLExecute(t *testing.T) {
	queues := []gpu.Stream{emulated.NewStream(), emulated.NewStream(), emulated.NewStream()}
	d := commit(t, must.M1(gpu.NewSYCLDevice(queues)))
	const width, height = 8, 100
	color := must.M1(d.NewBuffer(width*height*12, core.StorageUndefined))
	output := must.M1(d.NewBuffer(width*height*12, core.StorageManaged))
	fillCheckerboard(t, color, width, height)
	f := newRTFilter(t, d, color, output, width, height)

	dep := must.M1(queues[0].RecordEvent())
	var progress atomic.Int32
	f.SetProgressMonitorFunc(func(float64) bool { progress.Add(1); return true })
	ev, err := gpu.ExecuteSYCLFilterAsync(f, []gpu.Event{dep})
	require.NoError(t, err)
	require.NotNil(t, ev)
	require.NoError(t, ev.Synchronize())
	assert.True(t, ev.Query())
	require.NoError(t, d.Wait())

	// The 4 tiles are spread over the 3 queues.
	for i, q := range queues {
		assert.Greater(t, q.(*emulated.Stream).NumKernels(), 0, "queue %d", i)
	}
	assert.GreaterOrEqual(t, int(progress.Load()), 6)
	view := kernels.View{ImageDesc: must.M1(core.NewImageDesc(core.FormatFloat3, width, height, 0, 0)), Data: output.Data()}
	for y := range height {
		for x := range width {
			p := view.Load(x, y)
			require.True(t, p[0] > 0.3 && p[0] < 0.7, "pixel (%d, %d) = %v", x, y, p)
		}
	}

	// Only filters of SYCL devices.
	cuda := commit(t, must.M1(core.NewDevice(core.DeviceTypeCUDA)))
	cudaBuf := must.M1(cuda.NewBuffer(width*height*12, core.StorageUndefined))
	cudaFilter := newRTFilter(t, cuda, cudaBuf, cudaBuf, width, height)
	_, err = gpu.ExecuteSYCLFilterAsync(cudaFilter, nil)
	assert.True(t, core.IsCode(err, core.ErrorInvalidArgument))

	require.NoError(t, core.ReleaseFilter(cudaFilter))
	require.NoError(t, core.ReleaseBuffer(cudaBuf))
	require.NoError(t, core.ReleaseFilter(f))
	require.NoError(t, core.ReleaseBuffer(color))
	require.NoError(t, core.ReleaseBuffer(output))
	assert.Equal(t, int64(0), syclDriver.Allocated())
}

func TestCancel(t *testing.T) {
	d := commit(t, must.M1(core.NewDevice(core.DeviceTypeCUDA)))
	const width, height = 4, 128
	buf := must.M1(d.NewBuffer(width*height*12, core.StorageUndefined))
	f := newRTFilter(t, d, buf, buf, width, height)
	f.SetProgressMonitorFunc(func(n float64) bool { return n < 0.5 })
	err := f.Execute(core.SyncModeSync)
	require.Error(t, err)
	assert.True(t, core.IsCode(err, core.ErrorCancelled))

	// Asynchronous cancellation is reported by the next wait.
	require.NoError(t, f.Execute(core.SyncModeAsync))
	err = d.Wait()
	assert.True(t, core.IsCode(err, core.ErrorCancelled), "got %v", err)
	require.NoError(t, core.ReleaseFilter(f))
	require.NoError(t, core.ReleaseBuffer(buf))
}

func TestNativeStreams(t *testing.T) {
	s := emulated.NewStream()
	native := cudaDriver.NativeHandle(s)
	streams, err := gpu.WrapNativeStreams(core.DeviceTypeCUDA, []uintptr{native})
	require.NoError(t, err)
	require.Len(t, streams, 1)
	assert.Same(t, s, streams[0].(*emulated.Stream))

	_, err = gpu.WrapNativeStreams(core.DeviceTypeCUDA, []uintptr{native + 1000})
	assert.True(t, core.IsCode(err, core.ErrorInvalidArgument))
	_, err = gpu.WrapNativeStreams(core.DeviceTypeCUDA, []uintptr{0})
	assert.True(t, core.IsCode(err, core.ErrorInvalidArgument))
	_, err = gpu.WrapNativeStreams(core.DeviceTypeHIP, []uintptr{native})
	assert.True(t, core.IsCode(err, core.ErrorUnsupportedHardware))
	streams, err = gpu.WrapNativeStreams(core.DeviceTypeHIP, nil)
	require.NoError(t, err)
	assert.Nil(t, streams)
}
