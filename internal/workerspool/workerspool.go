// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package workerspool implements the bounded pool of goroutines used by the CPU engine to run
// kernels in parallel.
package workerspool

import (
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"
)

// Pool limits the number of goroutines running kernel work at the same time.
type Pool struct {
	// maxParallelism is the limit of tasks running in parallel: 0 disables parallelism
	// (tasks run inline) and a negative value means unlimited.
	maxParallelism int
	setAffinity    bool

	mu         sync.Mutex
	cond       sync.Cond // Signaled whenever numRunning decreases.
	numRunning int

	// extraParallelism is temporarily increased while a worker sleeps waiting for others.
	extraParallelism atomic.Int32
}

// New returns a Pool with parallelism numThreads. numThreads == 0 means runtime.NumCPU().
func New(numThreads int) *Pool {
	if numThreads == 0 {
		numThreads = runtime.NumCPU()
	}
	w := &Pool{maxParallelism: numThreads}
	w.cond.L = &w.mu
	return w
}

// MaxParallelism returns the limit of tasks running in parallel.
func (w *Pool) MaxParallelism() int {
	return w.maxParallelism
}

// SetMaxParallelism changes the parallelism. It must not be called while tasks are running.
func (w *Pool) SetMaxParallelism(maxParallelism int) {
	w.maxParallelism = maxParallelism
}

// SetAffinity makes each task run locked to its OS thread.
func (w *Pool) SetAffinity(pin bool) {
	w.setAffinity = pin
}

// lockedIsFull must be called with w.mu held.
func (w *Pool) lockedIsFull() bool {
	if w.maxParallelism == 0 {
		return true
	} else if w.maxParallelism < 0 {
		return false
	}
	return w.numRunning >= w.maxParallelism+int(w.extraParallelism.Load())
}

func (w *Pool) wrap(task func()) func() {
	if !w.setAffinity {
		return task
	}
	return func() {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		task()
	}
}

// WaitToStart blocks until a worker is available and starts task on it.
// With parallelism disabled the task runs inline.
func (w *Pool) WaitToStart(task func()) {
	task = w.wrap(task)
	if w.maxParallelism < 0 {
		go task()
		return
	} else if w.maxParallelism == 0 {
		task()
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	for w.lockedIsFull() {
		w.cond.Wait()
	}
	w.lockedStart(task)
}

// lockedStart must be called with w.mu held.
func (w *Pool) lockedStart(task func()) {
	w.numRunning++
	go func() {
		task()
		w.mu.Lock()
		w.numRunning--
		w.cond.Signal()
		w.mu.Unlock()
	}()
}

// StartIfAvailable starts task if a worker is available, and returns whether it did.
func (w *Pool) StartIfAvailable(task func()) bool {
	task = w.wrap(task)
	if w.maxParallelism < 0 {
		go task()
		return true
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.lockedIsFull() {
		return false
	}
	w.lockedStart(task)
	return true
}

// Saturate runs task on every available worker, at least once, and returns when all of them
// are finished. Tasks are expected to pull their work from a shared source.
func (w *Pool) Saturate(task func()) {
	if w.maxParallelism == 0 {
		task()
		return
	}
	var wg sync.WaitGroup
	numTasks := w.maxParallelism
	if numTasks < 0 {
		numTasks = runtime.NumCPU()
	}
	for range numTasks {
		wg.Add(1)
		w.WaitToStart(func() {
			defer wg.Done()
			task()
		})
	}
	wg.Wait()
}

// ParallelFor calls fn(i) for i in [0, n), in parallel, and returns the first error.
// After an error no new index is started.
func (w *Pool) ParallelFor(n int, fn func(i int) error) error {
	if n <= 0 {
		return nil
	}
	var next atomic.Int64
	var firstErr atomic.Pointer[error]
	worker := func() {
		for firstErr.Load() == nil {
			i := int(next.Add(1) - 1)
			if i >= n {
				return
			}
			if err := callRecovered(fn, i); err != nil {
				firstErr.CompareAndSwap(nil, &err)
				return
			}
		}
	}
	if n == 1 {
		worker()
	} else {
		w.Saturate(worker)
	}
	if errPtr := firstErr.Load(); errPtr != nil {
		return *errPtr
	}
	return nil
}

// callRecovered converts a panic of fn to an error: panics in worker goroutines would otherwise
// crash the program.
func callRecovered(fn func(i int) error, i int) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if rErr, ok := r.(error); ok {
				err = rErr
			} else {
				err = errors.Errorf("%v", r)
			}
		}
	}()
	return fn(i)
}

// WorkerIsAsleep indicates the calling worker is going to sleep waiting for other workers:
// it temporarily frees a slot. Call WorkerRestarted when it resumes.
func (w *Pool) WorkerIsAsleep() {
	w.extraParallelism.Add(1)
	w.mu.Lock()
	w.cond.Signal()
	w.mu.Unlock()
}

// WorkerRestarted undoes WorkerIsAsleep.
func (w *Pool) WorkerRestarted() {
	w.extraParallelism.Add(-1)
}
