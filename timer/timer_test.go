package timer

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestScheduler_After(t *testing.T) {
	s := NewScheduler()
	defer s.Close()

	var fired atomic.Int32
	s.After(50*time.Millisecond, func() { fired.Add(1) })

	time.Sleep(300 * time.Millisecond)
	if got := fired.Load(); got != 1 {
		t.Errorf("one-shot task fired %d times, want 1", got)
	}
}

func TestScheduler_Every(t *testing.T) {
	s := NewScheduler()
	defer s.Close()

	var fired atomic.Int32
	s.Every(100*time.Millisecond, func() { fired.Add(1) })

	time.Sleep(550 * time.Millisecond)
	if got := fired.Load(); got < 2 {
		t.Errorf("recurring task fired %d times, want at least 2", got)
	}
}

func TestScheduler_Cancel(t *testing.T) {
	s := NewScheduler()
	defer s.Close()

	var fired atomic.Int32
	id := s.After(200*time.Millisecond, func() { fired.Add(1) })
	s.Cancel(id)

	time.Sleep(400 * time.Millisecond)
	if got := fired.Load(); got != 0 {
		t.Errorf("cancelled task fired %d times", got)
	}
}
