// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package cpu

import (
	"flag"
	"os"
	"sync/atomic"
	"testing"

	"github.com/gomlx/denoise/internal/kernels"
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

// newDevice returns a committed CPU device, released at the end of the test.
func newDevice(t *testing.T, numThreads int) *core.Device {
	d := must.M1(core.NewDevice(core.DeviceTypeCPU))
	require.NoError(t, d.Set1i("numThreads", numThreads))
	require.NoError(t, d.Commit())
	t.Cleanup(func() { require.NoError(t, core.ReleaseDevice(d)) })
	return d
}

func TestEngine(t *testing.T) {
	d := newDevice(t, 3)
	e := d.Engine().(*Engine)
	assert.Equal(t, 3, e.NumThreads())
	assert.Equal(t, core.StorageHost, e.DefaultStorage())
	assert.True(t, e.SupportsStorage(core.StorageManaged))
	assert.Equal(t, 1, must.M1(d.Get1i("managedMemorySupported")))
	assert.Equal(t, 1, must.M1(d.Get1i("systemMemorySupported")))

	_, err := e.NewMemory(-1, core.StorageHost)
	require.Error(t, err)
	assert.True(t, core.IsCode(err, core.ErrorOutOfMemory), "got %+v", err)
}

func TestAsyncOrdering(t *testing.T) {
	d := newDevice(t, 2)
	buf := must.M1(d.NewBuffer(1024, core.StorageUndefined))
	defer func() { require.NoError(t, core.ReleaseBuffer(buf)) }()

	// Enqueue many writes followed by a read: the read observes the last write.
	for i := range 64 {
		src := make([]byte, 1024)
		for j := range src {
			src[j] = byte(i)
		}
		require.NoError(t, buf.Write(0, src, core.SyncModeAsync))
	}
	dst := make([]byte, 1024)
	require.NoError(t, buf.Read(0, dst, core.SyncModeAsync))
	require.NoError(t, d.Wait())
	for _, v := range dst {
		require.Equal(t, byte(63), v)
	}

	// A synchronous read after async writes also observes them.
	require.NoError(t, buf.Write(0, []byte{1, 2, 3}, core.SyncModeAsync))
	got := make([]byte, 3)
	require.NoError(t, buf.Read(0, got, core.SyncModeSync))
	assert.Equal(t, []byte{1, 2, 3}, got)
}

func newFloat3Image(t *testing.T, buf *core.Buffer, width, height, byteOffset int) *core.Image {
	desc := must.M1(core.NewImageDesc(core.FormatFloat3, width, height, 0, 0))
	return must.M1(core.NewBufferImage(buf, desc, byteOffset))
}

func TestFilterInPlace(t *testing.T) {
	d := newDevice(t, 0)
	const width, height = 16, 40
	buf := must.M1(d.NewBuffer(width*height*12, core.StorageHost))
	view := kernels.View{ImageDesc: must.M1(core.NewImageDesc(core.FormatFloat3, width, height, 0, 0)), Data: buf.Data()}
	for y := range height {
		for x := range width {
			v := float32((x + y) % 2)
			view.Store(x, y, kernels.Pixel{v, v, v})
		}
	}

	f := must.M1(d.NewFilter("RT"))
	require.NoError(t, f.SetImage("color", newFloat3Image(t, buf, width, height, 0)))
	require.NoError(t, f.SetImage("output", newFloat3Image(t, buf, width, height, 0)))
	require.NoError(t, core.ReleaseBuffer(buf))
	var calls atomic.Int32
	var last float64
	f.SetProgressMonitorFunc(func(n float64) bool {
		calls.Add(1)
		assert.GreaterOrEqual(t, n, last)
		last = n
		return true
	})
	require.NoError(t, f.Commit())
	require.NoError(t, f.Execute(core.SyncModeSync))
	assert.Equal(t, 1.0, last)
	assert.Greater(t, int(calls.Load()), 2)

	// The input was read before being overwritten: the result is the filtered checkerboard.
	for y := range height {
		for x := range width {
			p := view.Load(x, y)
			require.True(t, p[0] > 0.3 && p[0] < 0.7, "pixel (%d, %d) = %v", x, y, p)
		}
	}
	require.NoError(t, core.ReleaseFilter(f))
}
