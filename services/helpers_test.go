package services

import (
	"sync"
)

// stubRand returns offset from the range minimum and a fixed trial value.
type stubRand struct {
	mu     sync.Mutex
	offset int64
	trial  float64
	calls  int
}

func (s *stubRand) IntN(n int64) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.offset >= n {
		return n - 1
	}
	return s.offset
}

func (s *stubRand) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.trial
}
