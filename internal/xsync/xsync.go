// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package xsync implements the synchronization tools used by the engines: latches for completion
// events, a dynamic wait group and an ordered task queue.
package xsync

import "sync"

// Latch is a one-shot signal: it can be waited for until triggered, and once triggered it stays so.
//
// The GPU engines use it to implement completion events.
type Latch struct {
	once sync.Once
	done chan struct{}
}

// NewLatch returns an un-triggered latch.
func NewLatch() *Latch {
	return &Latch{done: make(chan struct{})}
}

// NewTriggeredLatch returns a latch that is already triggered.
func NewTriggeredLatch() *Latch {
	l := NewLatch()
	l.Trigger()
	return l
}

// Trigger the latch. Extra calls are no-ops.
func (l *Latch) Trigger() {
	l.once.Do(func() { close(l.done) })
}

// Wait blocks until the latch is triggered.
func (l *Latch) Wait() {
	<-l.done
}

// Test returns whether the latch was triggered, without blocking.
func (l *Latch) Test() bool {
	select {
	case <-l.done:
		return true
	default:
		return false
	}
}

// WaitChan returns a channel closed when the latch is triggered, to be used in a select.
func (l *Latch) WaitChan() <-chan struct{} {
	return l.done
}

// LatchWithValue is a Latch that carries a value set by the trigger, e.g. the error of an
// asynchronous operation.
type LatchWithValue[T any] struct {
	value T
	latch Latch
}

// NewLatchWithValue returns an un-triggered latch.
func NewLatchWithValue[T any]() *LatchWithValue[T] {
	return &LatchWithValue[T]{latch: Latch{done: make(chan struct{})}}
}

// Trigger the latch with value. Only the first call has an effect.
func (l *LatchWithValue[T]) Trigger(value T) {
	l.latch.once.Do(func() {
		l.value = value
		close(l.latch.done)
	})
}

// Wait blocks until the latch is triggered and returns its value.
func (l *LatchWithValue[T]) Wait() T {
	l.latch.Wait()
	return l.value
}

// Test returns whether the latch was triggered.
func (l *LatchWithValue[T]) Test() bool {
	return l.latch.Test()
}
