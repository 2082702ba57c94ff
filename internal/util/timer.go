package util

import (
	"sort"
	"time"
)

// Timer schedules delayed callbacks. It never drives simulation state on its own.
type Timer interface {
	Schedule(delay time.Duration, fn func())
	CancelAll()
}

// Synchronous runs every callback immediately.
type Synchronous struct {
	cancelled bool
}

func (s *Synchronous) Schedule(_ time.Duration, fn func()) {
	if s.cancelled {
		return
	}
	fn()
}

// CancelAll drops every later callback until Reset.
func (s *Synchronous) CancelAll() { s.cancelled = true }
func (s *Synchronous) Reset()     { s.cancelled = false }

type scheduled struct {
	at  time.Duration
	seq int
	fn  func()
}

// ManualTimer keeps callbacks on a virtual clock moved by Advance.
type ManualTimer struct {
	now     time.Duration
	seq     int
	pending []scheduled
}

func NewManualTimer() *ManualTimer { return &ManualTimer{} }

func (m *ManualTimer) Now() time.Duration { return m.now }
func (m *ManualTimer) Pending() int       { return len(m.pending) }

func (m *ManualTimer) Schedule(delay time.Duration, fn func()) {
	if delay < 0 {
		delay = 0
	}
	m.seq++
	m.pending = append(m.pending, scheduled{at: m.now + delay, seq: m.seq, fn: fn})
}

func (m *ManualTimer) CancelAll() { m.pending = nil }

// Advance moves the clock by d and runs every callback due by then, including those
// scheduled by the callbacks themselves.
func (m *ManualTimer) Advance(d time.Duration) {
	end := m.now + d
	for {
		if len(m.pending) == 0 {
			break
		}
		sort.SliceStable(m.pending, func(i, j int) bool {
			if m.pending[i].at != m.pending[j].at {
				return m.pending[i].at < m.pending[j].at
			}
			return m.pending[i].seq < m.pending[j].seq
		})
		next := m.pending[0]
		if next.at > end {
			break
		}
		m.pending = m.pending[1:]
		m.now = next.at
		next.fn()
	}
	m.now = end
}

// Flush runs everything queued, however far in the future.
func (m *ManualTimer) Flush() {
	for len(m.pending) > 0 {
		last := m.now
		for _, p := range m.pending {
			if p.at > last {
				last = p.at
			}
		}
		m.Advance(last - m.now)
	}
}
