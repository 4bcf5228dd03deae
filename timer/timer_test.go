package timer

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestScheduler_Fires(t *testing.T) {
	s := NewScheduler()
	defer s.Stop()

	fired := make(chan struct{})
	s.Schedule("conn-1", 50*time.Millisecond, func() {
		close(fired)
	})

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("Scheduled action did not fire")
	}

	if s.Pending("conn-1") {
		t.Error("Fired action should no longer be pending")
	}
}

func TestScheduler_Cancel(t *testing.T) {
	s := NewScheduler()
	defer s.Stop()

	var fired atomic.Bool
	s.Schedule("conn-1", 100*time.Millisecond, func() {
		fired.Store(true)
	})

	if !s.Cancel("conn-1") {
		t.Fatal("Cancel should report an existing pending action")
	}

	time.Sleep(500 * time.Millisecond)

	if fired.Load() {
		t.Error("Cancelled action must not fire")
	}
	if s.Cancel("conn-1") {
		t.Error("Second Cancel should report no pending action")
	}
}

func TestScheduler_ScheduleReplacesPending(t *testing.T) {
	s := NewScheduler()
	defer s.Stop()

	var first, second atomic.Bool
	s.Schedule("conn-1", 100*time.Millisecond, func() {
		first.Store(true)
	})
	s.Schedule("conn-1", 100*time.Millisecond, func() {
		second.Store(true)
	})

	time.Sleep(500 * time.Millisecond)

	if first.Load() {
		t.Error("Replaced action must not fire")
	}
	if !second.Load() {
		t.Error("Replacement action should fire")
	}
}

func TestScheduler_IndependentKeys(t *testing.T) {
	s := NewScheduler()
	defer s.Stop()

	var a, b atomic.Bool
	s.Schedule("conn-a", 50*time.Millisecond, func() { a.Store(true) })
	s.Schedule("conn-b", 50*time.Millisecond, func() { b.Store(true) })

	s.Cancel("conn-a")
	time.Sleep(500 * time.Millisecond)

	if a.Load() {
		t.Error("Cancelled key fired")
	}
	if !b.Load() {
		t.Error("Unrelated key should still fire")
	}
}
