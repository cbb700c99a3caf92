// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package hostmem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlloc(t *testing.T) {
	data, release, err := Alloc(0)
	require.NoError(t, err)
	assert.Empty(t, data)
	assert.Nil(t, release)

	data, release, err = Alloc(10000)
	require.NoError(t, err)
	require.Len(t, data, 10000)
	for _, b := range data {
		require.Zero(t, b)
	}
	data[0], data[9999] = 1, 2
	assert.Equal(t, byte(2), data[9999])
	require.NoError(t, release())
}
