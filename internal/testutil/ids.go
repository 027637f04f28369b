package testutil

import (
	"fmt"
	"sync"
)

// SequentialIDs hands out predictable GUID-shaped identifiers for tests.
//
// The first call to NewID returns "{00000000-0000-0000-0000-000000000001}",
// the second "...0002" and so on. Reset starts the sequence over so the same
// scenario can be replayed with identical ids.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type SequentialIDs struct {
	mu  sync.Mutex
	seq int64
}

// NewSequentialIDs creates a generator whose first id ends in 1.
func NewSequentialIDs() *SequentialIDs {
	return &SequentialIDs{}
}

// NewID returns the next identifier.
func (s *SequentialIDs) NewID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	return FormatID(s.seq)
}

// Issued returns how many identifiers have been handed out.
func (s *SequentialIDs) Issued() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq
}

// Reset restarts the sequence.
func (s *SequentialIDs) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq = 0
}

// FormatID renders n the way SequentialIDs does.
func FormatID(n int64) string {
	return fmt.Sprintf("{00000000-0000-0000-0000-%012d}", n)
}
