// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package handles

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable(t *testing.T) {
	var table Table[*float64]
	var someData float64
	_, ok := table.Get(Null)
	require.False(t, ok)

	h1 := table.Acquire(&someData)
	h2 := table.Acquire(&someData)
	require.NotEqual(t, Null, h1)
	require.NotEqual(t, h1, h2)
	got, ok := table.Get(h1)
	require.True(t, ok)
	require.Same(t, &someData, got)
	require.Equal(t, []Handle{h1, h2}, table.ListLive())

	require.True(t, table.Release(h1))
	require.False(t, table.Release(h1))
	_, ok = table.Get(h1)
	require.False(t, ok)

	// Handles are not reused.
	h3 := table.Acquire(&someData)
	require.NotEqual(t, h1, h3)
	require.Equal(t, []Handle{h2, h3}, table.ListLive())
	require.Equal(t, 2, table.Len())
}

func TestTableConcurrent(t *testing.T) {
	var table Table[int]
	const numGoroutines, numHandles = 8, 100
	var wg sync.WaitGroup
	for g := range numGoroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			acquired := make([]Handle, 0, numHandles)
			for i := range numHandles {
				acquired = append(acquired, table.Acquire(g*numHandles+i))
			}
			for i, h := range acquired {
				v, ok := table.Get(h)
				assert.True(t, ok)
				assert.Equal(t, g*numHandles+i, v)
				assert.True(t, table.Release(h))
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 0, table.Len())
	assert.Empty(t, table.ListLive())
}
