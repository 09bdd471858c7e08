// Package scheduler provides a service for running named one-shot tasks at a
// fixed future time. Tasks are keyed by id: scheduling an id that is already
// pending replaces the earlier timer, and cancellation by id is always safe,
// including against a task that has already fired.
package scheduler

import (
	"log"
	"sync"
	"time"
)

type task struct {
	timer  *time.Timer
	fireAt time.Time
}

// Scheduler manages delayed one-shot tasks. Construct one per subsystem with
// New and share it by handle; the zero value is not usable.
type Scheduler struct {
	name  string
	mu    sync.Mutex
	tasks map[string]*task
}

// New creates an empty scheduler. The name only appears in log lines.
func New(name string) *Scheduler {
	return &Scheduler{
		name:  name,
		tasks: make(map[string]*task),
	}
}

// Schedule arms fn to run once at the given time. A task already pending
// under the same id is replaced. Times in the past fire immediately. The
// callback runs on its own goroutine; a panic inside it is recovered and
// logged so it can never take the scheduler down with it.
func (s *Scheduler) Schedule(id string, at time.Time, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.tasks[id]; ok {
		prev.timer.Stop()
		log.Printf("[Scheduler:%s] Replacing pending task %s", s.name, id)
	}

	delay := time.Until(at)
	if delay < 0 {
		delay = 0
	}

	t := &task{fireAt: at}
	t.timer = time.AfterFunc(delay, func() {
		s.run(id, t, fn)
	})
	s.tasks[id] = t
}

// run executes a fired task, unless the registration it belongs to has been
// canceled or replaced since the timer went off.
func (s *Scheduler) run(id string, t *task, fn func()) {
	s.mu.Lock()
	current, ok := s.tasks[id]
	if !ok || current != t {
		s.mu.Unlock()
		return
	}
	delete(s.tasks, id)
	s.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Scheduler:%s] Task %s panicked: %v", s.name, id, r)
		}
	}()
	fn()
}

// Cancel stops the pending task with the given id. Canceling an unknown or
// already-fired id is a no-op.
func (s *Scheduler) Cancel(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	if !ok {
		return
	}
	t.timer.Stop()
	delete(s.tasks, id)
}

// Contains reports whether a task with the given id is still pending.
func (s *Scheduler) Contains(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.tasks[id]
	return ok
}

// FireAt returns the time the pending task with the given id will run.
func (s *Scheduler) FireAt(id string) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok {
		return time.Time{}, false
	}
	return t.fireAt, true
}

// Len returns the number of pending tasks.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// Stop cancels every pending task. Used during shutdown.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, t := range s.tasks {
		t.timer.Stop()
		delete(s.tasks, id)
	}
	log.Printf("[Scheduler:%s] Stopped", s.name)
}
