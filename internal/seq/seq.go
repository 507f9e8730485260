package seq

import "sync"

// Sequence hands out incrementing frame sequence numbers starting at 1
type Sequence struct {
	n int64
	sync.Mutex
}

func New() *Sequence {
	return &Sequence{}
}

// Next returns the next number in the sequence
func (s *Sequence) Next() int64 {
	s.Lock()
	defer s.Unlock()
	s.n++
	return s.n
}

// Last returns the most recent number handed out, or 0
func (s *Sequence) Last() int64 {
	s.Lock()
	defer s.Unlock()
	return s.n
}
