package generate

import "sync"

// Sequence hands out test-case numbers. Numbers start at 1.
type Sequence interface {
	Next() int
}

// Counter is a Sequence safe for concurrent use.
type Counter struct {
	mu   sync.Mutex
	last int
}

// NewCounter returns a Counter whose first Next is issued + 1. Pass the
// number of test cases already stored to continue a running total.
func NewCounter(issued int) *Counter {
	return &Counter{last: issued}
}

func (c *Counter) Next() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.last++
	return c.last
}

// Issued returns how many numbers have been handed out, including the seed.
func (c *Counter) Issued() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}
