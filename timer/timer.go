// Package timer runs deferred and recurring tasks off a single heap-ordered
// queue. The registry uses it for room garbage collection.
package timer

import (
	"container/heap"
	"sync"
	"time"
)

type task struct {
	id       int64
	runAt    time.Time
	interval time.Duration // zero means one-shot
	fn       func()
	index    int
}

type taskQueue []*task

func (q taskQueue) Len() int { return len(q) }

func (q taskQueue) Less(i, j int) bool {
	return q[i].runAt.Before(q[j].runAt)
}

func (q taskQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *taskQueue) Push(x interface{}) {
	t := x.(*task)
	t.index = len(*q)
	*q = append(*q, t)
}

func (q *taskQueue) Pop() interface{} {
	old := *q
	n := len(old)
	t := old[n-1]
	t.index = -1
	*q = old[:n-1]
	return t
}

// Scheduler polls the queue on a coarse tick; due tasks run on their own
// goroutines so a slow callback never delays the queue.
type Scheduler struct {
	mu         sync.Mutex
	queue      taskQueue
	nextID     int64
	resolution time.Duration
	closeChan  chan struct{}
	closeOnce  sync.Once
}

func NewScheduler() *Scheduler {
	s := &Scheduler{
		queue:      make(taskQueue, 0),
		nextID:     1,
		resolution: 100 * time.Millisecond,
		closeChan:  make(chan struct{}),
	}
	heap.Init(&s.queue)
	go s.run()
	return s
}

// After schedules fn once after delay and returns a cancellation id.
func (s *Scheduler) After(delay time.Duration, fn func()) int64 {
	return s.add(delay, 0, fn)
}

// Every schedules fn repeatedly at the given interval, first firing after
// one interval.
func (s *Scheduler) Every(interval time.Duration, fn func()) int64 {
	return s.add(interval, interval, fn)
}

func (s *Scheduler) add(delay, interval time.Duration, fn func()) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := &task{
		id:       s.nextID,
		runAt:    time.Now().Add(delay),
		interval: interval,
		fn:       fn,
	}
	s.nextID++
	heap.Push(&s.queue, t)
	return t.id
}

// Cancel drops a pending task. A task already dispatched still runs.
func (s *Scheduler) Cancel(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, t := range s.queue {
		if t.id == id {
			heap.Remove(&s.queue, i)
			return
		}
	}
}

func (s *Scheduler) Close() {
	s.closeOnce.Do(func() {
		close(s.closeChan)
	})
}

func (s *Scheduler) run() {
	ticker := time.NewTicker(s.resolution)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			for _, t := range s.collectDue(now) {
				go t.fn()
			}
		case <-s.closeChan:
			return
		}
	}
}

func (s *Scheduler) collectDue(now time.Time) []*task {
	s.mu.Lock()
	defer s.mu.Unlock()

	var due []*task
	for s.queue.Len() > 0 {
		t := s.queue[0]
		if t.runAt.After(now) {
			break
		}
		heap.Pop(&s.queue)
		due = append(due, t)

		if t.interval > 0 {
			t.runAt = now.Add(t.interval)
			heap.Push(&s.queue, t)
		}
	}
	return due
}
