// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package gpu

import (
	"testing"

	"github.com/gomlx/denoise/internal/kernels"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingStream only records events, which are always triggered.
type recordingStream struct {
	numEvents int
}

type doneEvent struct{}

func (doneEvent) Synchronize() error { return nil }
func (doneEvent) Query() bool        { return true }

func (s *recordingStream) Memcpy(dst, src []byte) error                { return nil }
func (s *recordingStream) Copy(dst, src kernels.View) error            { return nil }
func (s *recordingStream) AutoExposure(kernels.View, *float32) error   { return nil }
func (s *recordingStream) HostFunc(func() error) error                 { return nil }
func (s *recordingStream) WaitEvent(Event) error                       { return nil }
func (s *recordingStream) Synchronize() error                          { return nil }
func (s *recordingStream) Destroy() error                              { return nil }
func (s *recordingStream) RecordEvent() (Event, error)                 { s.numEvents++; return doneEvent{}, nil }
func (s *recordingStream) Denoise(_, _ kernels.View, _ kernels.Params, _ *float32, _, _ int) error {
	return nil
}

func TestDoneEvent(t *testing.T) {
	streams := []Stream{&recordingStream{}, &recordingStream{}}
	e := &Engine{streams: streams, dirty: make([]bool, 2)}

	// No work: empty event.
	e.beginCapture()
	ev, err := e.doneEvent()
	require.NoError(t, err)
	assert.Nil(t, ev)

	// Work on both streams joined by a barrier: one event.
	e.beginCapture()
	e.markDirty(0)
	e.markDirty(1)
	require.NoError(t, e.barrier())
	ev, err = e.doneEvent()
	require.NoError(t, err)
	require.NotNil(t, ev)
	assert.Equal(t, 2, streams[0].(*recordingStream).numEvents)

	// Work left on two streams is a bug.
	e.beginCapture()
	e.markDirty(0)
	e.markDirty(1)
	require.PanicsWithError(t, "missing barrier after filter kernels", func() { _, _ = e.doneEvent() })
}
