package services

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestSchedulerAddAndRemove(t *testing.T) {
	s := NewScheduler()
	defer s.Shutdown()

	s.AddInterval("tick", time.Hour, func() {})
	if !s.Has("tick") {
		t.Fatal("job should be registered")
	}

	s.Remove("tick")
	if s.Has("tick") {
		t.Fatal("job should be gone after Remove")
	}

	// Removing twice is a no-op
	s.Remove("tick")
}

func TestSchedulerAddReplacesExisting(t *testing.T) {
	s := NewScheduler()
	defer s.Shutdown()

	var first, second int32
	s.AddAt("job", time.Now().Add(50*time.Millisecond), func() {
		atomic.AddInt32(&first, 1)
	})
	s.AddAt("job", time.Now().Add(50*time.Millisecond), func() {
		atomic.AddInt32(&second, 1)
	})

	time.Sleep(200 * time.Millisecond)

	if atomic.LoadInt32(&first) != 0 {
		t.Fatal("replaced job should never run")
	}
	if atomic.LoadInt32(&second) != 1 {
		t.Fatalf("replacement ran %d times, want 1", atomic.LoadInt32(&second))
	}
}

func TestSchedulerAddAtRunsOnceAndUnregisters(t *testing.T) {
	s := NewScheduler()
	defer s.Shutdown()

	var runs int32
	s.AddAt("once", time.Now().Add(20*time.Millisecond), func() {
		atomic.AddInt32(&runs, 1)
	})

	time.Sleep(150 * time.Millisecond)

	if atomic.LoadInt32(&runs) != 1 {
		t.Fatalf("job ran %d times, want 1", atomic.LoadInt32(&runs))
	}
	if s.Has("once") {
		t.Fatal("one-shot job should unregister itself after running")
	}
}

func TestSchedulerIntervalFires(t *testing.T) {
	s := NewScheduler()
	defer s.Shutdown()

	var runs int32
	s.AddInterval("fast", 20*time.Millisecond, func() {
		atomic.AddInt32(&runs, 1)
	})

	time.Sleep(110 * time.Millisecond)
	s.Remove("fast")

	if n := atomic.LoadInt32(&runs); n < 2 {
		t.Fatalf("interval job ran %d times, want at least 2", n)
	}
}

func TestSchedulerShutdownStopsJobs(t *testing.T) {
	s := NewScheduler()

	var runs int32
	s.AddInterval("a", 10*time.Millisecond, func() { atomic.AddInt32(&runs, 1) })
	s.AddInterval("b", 10*time.Millisecond, func() { atomic.AddInt32(&runs, 1) })

	time.Sleep(50 * time.Millisecond)
	s.Shutdown()
	after := atomic.LoadInt32(&runs)

	time.Sleep(50 * time.Millisecond)
	if atomic.LoadInt32(&runs) != after {
		t.Fatal("jobs kept running after Shutdown")
	}
	if s.Has("a") || s.Has("b") {
		t.Fatal("jobs should be unregistered after Shutdown")
	}
}

func TestSchedulerRecoversFromPanicInJob(t *testing.T) {
	s := NewScheduler()
	defer s.Shutdown()

	done := make(chan struct{})
	s.AddAt("panics", time.Now().Add(10*time.Millisecond), func() {
		defer close(done)
		panic("boom")
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("panicking job never ran")
	}
	// The scheduler itself must survive
	s.AddInterval("alive", time.Hour, func() {})
	if !s.Has("alive") {
		t.Fatal("scheduler unusable after a job panic")
	}
}

func TestReminderJobID(t *testing.T) {
	if got := ReminderJobID(42); got != "reminder-reservation-42" {
		t.Fatalf("ReminderJobID(42) = %q", got)
	}
}
