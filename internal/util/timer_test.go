package util

import (
	"testing"
	"time"
)

func TestSynchronousTimer(t *testing.T) {
	var s Synchronous
	calls := 0
	s.Schedule(time.Hour, func() { calls++ })
	s.CancelAll()
	s.Schedule(0, func() { calls++ })
	s.Reset()
	s.Schedule(0, func() { calls++ })
	if calls != 2 {
		t.Fatalf("calls = %d, want 2", calls)
	}
}

func TestManualTimerOrder(t *testing.T) {
	m := NewManualTimer()
	var got []string
	m.Schedule(2*time.Second, func() { got = append(got, "b") })
	m.Schedule(time.Second, func() { got = append(got, "a") })
	m.Schedule(2*time.Second, func() { got = append(got, "c") })

	m.Advance(1500 * time.Millisecond)
	if len(got) != 1 || m.Pending() != 2 || m.Now() != 1500*time.Millisecond {
		t.Fatalf("after 1.5s: %v pending %d", got, m.Pending())
	}
	m.Advance(time.Second)
	if len(got) != 3 || got[1] != "b" || got[2] != "c" {
		t.Fatalf("order = %v", got)
	}
}

func TestManualTimerChains(t *testing.T) {
	m := NewManualTimer()
	n := 0
	var tick func()
	tick = func() {
		n++
		if n < 3 {
			m.Schedule(time.Second, tick)
		}
	}
	m.Schedule(time.Second, tick)
	m.Advance(2 * time.Second)
	if n != 2 {
		t.Fatalf("ticks after 2s = %d", n)
	}
	m.Flush()
	if n != 3 || m.Pending() != 0 {
		t.Fatalf("ticks after flush = %d", n)
	}

	m.Schedule(time.Second, func() { n++ })
	m.CancelAll()
	m.Flush()
	if n != 3 {
		t.Fatalf("cancelled callback ran")
	}
}
