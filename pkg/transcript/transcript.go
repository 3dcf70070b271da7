// Package transcript keeps the bounded rolling conversation history shared by
// every relayed message and /ask invocation.
package transcript

import (
	"fmt"
	"strings"
	"sync"
)

const (
	header      = "**Recent Conversation:**"
	emptyHeader = "**Conversation:**"
)

// Store is a bounded FIFO of "name: text" lines. Append never lets the
// length exceed the capacity, not even transiently.
type Store interface {
	Append(displayName, text string) error
	Render() (string, error)
	Reset() error
}

type MemoryStore struct {
	mu      sync.Mutex
	max     int
	entries []string
}

func NewMemoryStore(maxMessages int) *MemoryStore {
	if maxMessages < 1 {
		maxMessages = 1
	}
	return &MemoryStore{max: maxMessages}
}

func (s *MemoryStore) Append(displayName, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.entries) == s.max {
		copy(s.entries, s.entries[1:])
		s.entries = s.entries[:s.max-1]
	}
	s.entries = append(s.entries, fmt.Sprintf("%s: %s", displayName, text))
	return nil
}

func (s *MemoryStore) Render() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return render(s.entries), nil
}

func (s *MemoryStore) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
	return nil
}

func render(entries []string) string {
	if len(entries) == 0 {
		return emptyHeader
	}
	return header + "\n" + strings.Join(entries, "\n")
}
