// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package workerspool

import (
	"runtime"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gomlx/denoise/internal/xsync"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPool_Saturate(t *testing.T) {
	wantTasks := 5
	pool := New(wantTasks)

	var count atomic.Int32
	doneNewTasks := xsync.NewLatch()
	doneTest := xsync.NewLatch()
	go func() {
		pool.Saturate(func() {
			got := count.Add(1)
			runtime.Gosched()
			if int(got) == wantTasks {
				doneNewTasks.Trigger()
				return
			}
			doneNewTasks.Wait()
		})
		doneTest.Trigger()
	}()

	select {
	case <-doneTest.WaitChan():
	case <-time.After(5 * time.Second):
		t.Fatal("Timeout before all tasks were executed.")
	}
	assert.Equal(t, int32(wantTasks), count.Load())

	// No parallelism: runs inline, once.
	pool.SetMaxParallelism(0)
	count.Store(0)
	pool.Saturate(func() { count.Add(1) })
	assert.Equal(t, int32(1), count.Load())
}

func TestPool_ParallelFor(t *testing.T) {
	for _, numThreads := range []int{0, 1, 3, -1} {
		pool := New(numThreads)
		pool.SetAffinity(true)
		const n = 1000
		var visited [n]atomic.Int32
		require.NoError(t, pool.ParallelFor(n, func(i int) error {
			visited[i].Add(1)
			return nil
		}))
		for i := range visited {
			require.Equal(t, int32(1), visited[i].Load(), "numThreads=%d, index %d", numThreads, i)
		}
	}

	pool := New(4)
	wantErr := errors.New("tile failed")
	var calls atomic.Int32
	err := pool.ParallelFor(10000, func(i int) error {
		calls.Add(1)
		if i == 10 {
			return wantErr
		}
		return nil
	})
	require.ErrorIs(t, err, wantErr)
	assert.Less(t, int(calls.Load()), 10000)
	require.NoError(t, pool.ParallelFor(0, func(int) error { return wantErr }))
}
