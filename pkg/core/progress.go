// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package core

import (
	"sync"
)

// ProgressMonitorFunc is called during filter execution with the fraction of work done, in [0, 1].
// Returning false cancels the execution.
type ProgressMonitorFunc func(n float64) bool

// Progress tracks the work done by one filter execution and reports it to a ProgressMonitorFunc.
//
// It is safe for concurrent use: engines update it from their workers, and calls to the monitor
// function are serialized, with non-decreasing values.
type Progress struct {
	mu        sync.Mutex
	fn        ProgressMonitorFunc
	total     int64
	done      int64
	last      float64
	cancelled bool
}

// NewProgress creates the progress of an execution with total units of work. fn may be nil.
func NewProgress(fn ProgressMonitorFunc, total int) *Progress {
	if total < 1 {
		total = 1
	}
	return &Progress{fn: fn, total: int64(total)}
}

// SetTotal sets the total units of work, before Start.
func (p *Progress) SetTotal(total int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.total = int64(max(total, 1))
}

// Start reports 0 work done.
func (p *Progress) Start() error {
	return p.report(0)
}

// Update adds units of work done. It returns an ErrorCancelled if the monitor cancelled the
// execution, now or before.
func (p *Progress) Update(units int) error {
	return p.report(int64(units))
}

// Finish reports all the work done.
func (p *Progress) Finish() error {
	p.mu.Lock()
	remaining := p.total - p.done
	p.mu.Unlock()
	if remaining < 0 {
		remaining = 0
	}
	return p.report(remaining)
}

// Cancelled returns whether the monitor cancelled the execution.
func (p *Progress) Cancelled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cancelled
}

func (p *Progress) report(units int64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancelled {
		return errCancelled()
	}
	p.done = min(p.done+units, p.total)
	n := float64(p.done) / float64(p.total)
	if n < p.last {
		n = p.last
	}
	p.last = n
	if p.fn == nil {
		return nil
	}
	if !p.fn(n) {
		p.cancelled = true
		return errCancelled()
	}
	return nil
}

func errCancelled() error {
	return Errorf(ErrorCancelled, "execution was cancelled")
}
