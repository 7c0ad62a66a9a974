package services

import (
	"log"
	"sync"
	"time"
)

// Scheduler runs named background jobs, either on a fixed interval or once
// at an absolute time. Re-adding an existing id replaces the job, so
// registration is idempotent.
type Scheduler struct {
	mu   sync.Mutex
	jobs map[string]chan struct{}
	wg   sync.WaitGroup
}

// Jobs is the process-wide scheduler, started from main.
var Jobs = NewScheduler()

func NewScheduler() *Scheduler {
	return &Scheduler{jobs: make(map[string]chan struct{})}
}

// AddInterval runs fn every interval until the job is removed or the
// scheduler shuts down. The first run happens after one full interval.
func (s *Scheduler) AddInterval(id string, interval time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked(id)

	stop := make(chan struct{})
	s.jobs[id] = stop
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				runJob(id, fn)
			case <-stop:
				return
			}
		}
	}()
}

// AddAt runs fn once at the given time, then removes the job. Times in the
// past fire immediately.
func (s *Scheduler) AddAt(id string, at time.Time, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked(id)

	stop := make(chan struct{})
	s.jobs[id] = stop
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		timer := time.NewTimer(time.Until(at))
		defer timer.Stop()
		select {
		case <-timer.C:
			runJob(id, fn)
			s.mu.Lock()
			if s.jobs[id] == stop {
				delete(s.jobs, id)
			}
			s.mu.Unlock()
		case <-stop:
			return
		}
	}()
}

// Remove cancels a job. Removing an unknown id is a no-op.
func (s *Scheduler) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked(id)
}

// Has reports whether a job with the id is currently registered.
func (s *Scheduler) Has(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.jobs[id]
	return ok
}

// Shutdown cancels every job and waits for in-flight runs to finish.
func (s *Scheduler) Shutdown() {
	s.mu.Lock()
	for id := range s.jobs {
		s.stopLocked(id)
	}
	s.mu.Unlock()
	s.wg.Wait()
}

func (s *Scheduler) stopLocked(id string) {
	if stop, ok := s.jobs[id]; ok {
		close(stop)
		delete(s.jobs, id)
	}
}

func runJob(id string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("scheduler: job %s panicked: %v", id, r)
		}
	}()
	fn()
}
