package mocks

import (
	"fmt"
	"sync"

	"github.com/mcoot/chesspie/internal/dependencies/random"
)

// MockRandom returns queued strings, then numbered fallbacks once the
// queue is drained so that repeated game creation still yields unique IDs
type MockRandom struct {
	mu       sync.Mutex
	queue    []string
	fallback int
}

var _ random.Random = (*MockRandom)(nil)

// NewMockRandom creates a new MockRandom
func NewMockRandom() *MockRandom {
	return &MockRandom{}
}

// String returns the next queued value, or MOCK000001, MOCK000002, ...
func (r *MockRandom) String(length int, alphabet string) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.queue) > 0 {
		next := r.queue[0]
		r.queue = r.queue[1:]
		return next
	}
	r.fallback++
	return fmt.Sprintf("MOCK%06d", r.fallback)
}

// QueueString adds values to the String result queue
func (r *MockRandom) QueueString(values ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.queue = append(r.queue, values...)
}
