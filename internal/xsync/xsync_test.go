// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package xsync

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLatch(t *testing.T) {
	l := NewLatch()
	assert.False(t, l.Test())
	go l.Trigger()
	select {
	case <-l.WaitChan():
	case <-time.After(time.Second):
		t.Fatal("latch never triggered")
	}
	l.Trigger()
	l.Wait()
	assert.True(t, l.Test())
	assert.True(t, NewTriggeredLatch().Test())

	lv := NewLatchWithValue[error]()
	want := errors.New("first")
	lv.Trigger(want)
	lv.Trigger(errors.New("second"))
	assert.Equal(t, want, lv.Wait())
	assert.True(t, lv.Test())
}

func TestDynamicWaitGroup(t *testing.T) {
	wg := NewDynamicWaitGroup()
	wg.Add(1)
	var done atomic.Bool
	go func() {
		// Add more work while someone waits.
		wg.Add(1)
		wg.Done()
		done.Store(true)
		wg.Done()
	}()
	wg.Wait()
	assert.True(t, done.Load())
	assert.Equal(t, 0, wg.Pending())
	assert.Panics(t, func() { wg.Done() })
}

func TestQueue(t *testing.T) {
	q := NewQueue()
	var mu sync.Mutex
	var order []int
	for i := range 100 {
		require.NoError(t, q.Submit(func() error {
			mu.Lock()
			defer mu.Unlock()
			order = append(order, i)
			return nil
		}))
	}
	require.NoError(t, q.Wait())
	require.Len(t, order, 100)
	for i, v := range order {
		require.Equal(t, i, v, "tasks must run in submission order")
	}

	// Only the first error is returned, and only once.
	first := errors.New("first failure")
	require.NoError(t, q.Submit(func() error { return first }))
	require.NoError(t, q.Submit(func() error { panic("second failure") }))
	var ranAfterError atomic.Bool
	require.NoError(t, q.Submit(func() error { ranAfterError.Store(true); return nil }))
	require.ErrorIs(t, q.Wait(), first)
	require.True(t, ranAfterError.Load())
	require.NoError(t, q.Wait())

	require.NoError(t, q.Close())
	require.Error(t, q.Submit(func() error { return nil }))
	assert.Equal(t, 0, q.Pending())
}
