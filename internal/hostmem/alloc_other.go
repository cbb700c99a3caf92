// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

//go:build !unix && !windows

package hostmem

import (
	"github.com/pkg/errors"
)

// alloc falls back to the Go heap on platforms without cgo support (e.g. js/wasm), converting
// failures to allocate into errors.
func alloc(byteSize int) (data []byte, release func() error, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("%v", r)
		}
	}()
	return make([]byte, byteSize), func() error { return nil }, nil
}
