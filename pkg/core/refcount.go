// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package core

import "sync/atomic"

// RefCount is an intrusive, atomic reference counter. The zero value must be initialized with
// InitRef, objects start with one reference owned by their creator.
type RefCount struct {
	count atomic.Int64
}

// InitRef sets the count to 1.
func (r *RefCount) InitRef() {
	r.count.Store(1)
}

// IncRef adds a reference and returns the new count.
func (r *RefCount) IncRef() int64 {
	return r.count.Add(1)
}

// DecRefKeep removes a reference without destroying anything, and returns the count before
// the decrement: the caller that reads 1 owns the teardown.
func (r *RefCount) DecRefKeep() int64 {
	return r.count.Add(-1) + 1
}

// Refs returns the current count, only meaningful for debugging and tests.
func (r *RefCount) Refs() int64 {
	return r.count.Load()
}
