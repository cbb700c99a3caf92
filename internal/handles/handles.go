// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package handles maps Go objects to integer handles that can safely cross the C ABI.
//
// Go pointers cannot be held by C code across calls, so objects handed out to C are kept alive
// in a Table and referred to by their Handle:
//
//	h := table.Acquire(device)
//	...
//	device, ok := table.Get(h)
//	...
//	table.Release(h)
//
// Handles are never reused, so a stale handle is reliably detected as invalid. The zero Handle
// is the null handle.
//
// ListLive lists the objects acquired and not released, to investigate leaks.
package handles

import (
	"slices"
	"sync"
)

// Handle is the integer identifier of an object in a Table. 0 is the null handle.
type Handle uintptr

// Null is the null handle.
const Null Handle = 0

// Table holds the objects referenced by handles. The zero value is ready to use.
type Table[T any] struct {
	mu      sync.RWMutex
	objects map[Handle]T
	last    Handle
}

// Acquire stores obj and returns its new handle.
func (t *Table[T]) Acquire(obj T) Handle {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.objects == nil {
		t.objects = make(map[Handle]T)
	}
	t.last++
	t.objects[t.last] = obj
	return t.last
}

// Get returns the object of the handle, and false if the handle is null or not live.
func (t *Table[T]) Get(h Handle) (obj T, ok bool) {
	if h == Null {
		return obj, false
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	obj, ok = t.objects[h]
	return
}

// Release forgets the handle. It returns false if it was not live.
func (t *Table[T]) Release(h Handle) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, found := t.objects[h]; !found {
		return false
	}
	delete(t.objects, h)
	return true
}

// Len returns the number of live handles.
func (t *Table[T]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.objects)
}

// ListLive returns the live handles, in creation order.
func (t *Table[T]) ListLive() []Handle {
	t.mu.RLock()
	list := make([]Handle, 0, len(t.objects))
	for h := range t.objects {
		list = append(list, h)
	}
	t.mu.RUnlock()
	slices.Sort(list)
	return list
}
