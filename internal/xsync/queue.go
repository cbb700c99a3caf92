// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package xsync

import (
	"fmt"
	"sync"

	"github.com/pkg/errors"
)

// Task is a unit of asynchronous work.
type Task func() error

// Queue runs tasks asynchronously in FIFO order, one at a time, on its own goroutine:
// a task enqueued earlier completes before a task enqueued later starts.
//
// Errors (and panics) raised by tasks are recorded and returned, first one only, by the next Wait.
// Tasks keep running after an error: each one decides whether its inputs are still valid.
type Queue struct {
	mu       sync.Mutex
	tasks    []Task
	pending  *DynamicWaitGroup
	running  bool
	closed   bool
	firstErr error
}

// NewQueue creates an empty queue. Its goroutine is started on demand.
func NewQueue() *Queue {
	return &Queue{pending: NewDynamicWaitGroup()}
}

// Submit enqueues task. It returns an error if the queue is closed.
func (q *Queue) Submit(task Task) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return errors.New("task submitted to a closed queue")
	}
	q.tasks = append(q.tasks, task)
	q.pending.Add(1)
	if !q.running {
		q.running = true
		go q.loop()
	}
	return nil
}

func (q *Queue) loop() {
	for {
		q.mu.Lock()
		if len(q.tasks) == 0 {
			q.running = false
			q.mu.Unlock()
			return
		}
		task := q.tasks[0]
		q.tasks[0] = nil
		q.tasks = q.tasks[1:]
		q.mu.Unlock()

		err := runTask(task)
		if err != nil {
			q.mu.Lock()
			if q.firstErr == nil {
				q.firstErr = err
			}
			q.mu.Unlock()
		}
		q.pending.Done()
	}
}

func runTask(task Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if rErr, ok := r.(error); ok {
				err = rErr
			} else {
				err = errors.New(fmt.Sprint(r))
			}
		}
	}()
	return task()
}

// Pending returns the number of tasks enqueued and not yet finished.
func (q *Queue) Pending() int {
	return q.pending.Pending()
}

// Wait blocks until every task submitted so far is finished, and returns the first error raised
// since the previous Wait.
func (q *Queue) Wait() error {
	q.pending.Wait()
	q.mu.Lock()
	defer q.mu.Unlock()
	err := q.firstErr
	q.firstErr = nil
	return err
}

// Close waits for the pending tasks and rejects further submissions.
func (q *Queue) Close() error {
	err := q.Wait()
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	return err
}
