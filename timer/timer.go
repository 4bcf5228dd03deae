// timer/timer.go
package timer

import (
	"container/heap"
	"sync"
	"time"
)

const tickInterval = 50 * time.Millisecond

type task struct {
	key      string
	execute  time.Time
	callback func()
	index    int
}

type taskQueue []*task

func (q taskQueue) Len() int { return len(q) }

func (q taskQueue) Less(i, j int) bool {
	return q[i].execute.Before(q[j].execute)
}

func (q taskQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *taskQueue) Push(x interface{}) {
	n := len(*q)
	t := x.(*task)
	t.index = n
	*q = append(*q, t)
}

func (q *taskQueue) Pop() interface{} {
	old := *q
	n := len(old)
	t := old[n-1]
	t.index = -1
	*q = old[0 : n-1]
	return t
}

// Scheduler runs deferred one-shot actions keyed by an arbitrary string,
// typically a connection ID. Scheduling under an existing key replaces the
// pending action, and a pending action can be cancelled until it fires.
type Scheduler struct {
	queue     taskQueue
	byKey     map[string]*task
	mutex     sync.Mutex
	closeChan chan struct{}
	closeOnce sync.Once
}

func NewScheduler() *Scheduler {
	s := &Scheduler{
		queue:     make(taskQueue, 0),
		byKey:     make(map[string]*task),
		closeChan: make(chan struct{}),
	}
	heap.Init(&s.queue)
	go s.process()
	return s
}

// Schedule arranges for callback to run once delay has elapsed. Any action
// already pending under the same key is discarded first.
func (s *Scheduler) Schedule(key string, delay time.Duration, callback func()) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if existing, ok := s.byKey[key]; ok {
		heap.Remove(&s.queue, existing.index)
	}

	t := &task{
		key:      key,
		execute:  time.Now().Add(delay),
		callback: callback,
	}
	s.byKey[key] = t
	heap.Push(&s.queue, t)
}

// Cancel discards the pending action for key, reporting whether one existed.
func (s *Scheduler) Cancel(key string) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	t, ok := s.byKey[key]
	if !ok {
		return false
	}
	heap.Remove(&s.queue, t.index)
	delete(s.byKey, key)
	return true
}

// Pending reports whether an action is still scheduled for key.
func (s *Scheduler) Pending(key string) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	_, ok := s.byKey[key]
	return ok
}

// Stop halts the scheduler loop. Pending actions never fire after Stop.
func (s *Scheduler) Stop() {
	s.closeOnce.Do(func() {
		close(s.closeChan)
	})
}

func (s *Scheduler) process() {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			var due []*task

			s.mutex.Lock()
			now := time.Now()
			for s.queue.Len() > 0 {
				t := s.queue[0]
				if t.execute.After(now) {
					break
				}
				heap.Pop(&s.queue)
				delete(s.byKey, t.key)
				due = append(due, t)
			}
			s.mutex.Unlock()

			// Callbacks run outside the lock so they may reschedule
			// or cancel freely.
			for _, t := range due {
				go t.callback()
			}

		case <-s.closeChan:
			return
		}
	}
}
