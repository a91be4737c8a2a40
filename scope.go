package main

import "sync"

// Scope keeps the most recent output samples for display. The audio side
// only ever TryLocks, so a reader holding the lock costs a dropped block in
// the picture, never a late block of audio.
type Scope struct {
	lk       sync.Mutex
	buf      []Sample
	position int
}

func NewScope(size int) *Scope {
	return &Scope{
		buf: make([]Sample, size),
	}
}

func (s *Scope) Write(samples []Sample) {
	if !s.lk.TryLock() {
		return
	}
	defer s.lk.Unlock()

	for _, v := range samples {
		s.buf[s.position%len(s.buf)] = v
		s.position++
	}
}

// Snapshot copies the newest samples into buf, oldest first, and returns
// how many were copied.
func (s *Scope) Snapshot(buf []float64) int {
	s.lk.Lock()
	defer s.lk.Unlock()

	lim := len(buf)
	if len(s.buf) < lim {
		lim = len(s.buf)
	}

	start := s.position - lim
	for i := 0; i < lim; i++ {
		ix := start + i
		if ix < 0 {
			buf[i] = 0
			continue
		}
		buf[i] = sampleToFloat(s.buf[ix%len(s.buf)])
	}

	return lim
}
