package event

import "sync"

// ReaderID is a cursor into a Channel.
type ReaderID int

// Channel is an in-order event stream with independent reader cursors.
// Every registered reader sees every event written after it registered,
// exactly once. Events are dropped once all readers have consumed them.
type Channel[T any] struct {
	mu      sync.Mutex
	events  []T
	base    uint64 // sequence number of events[0]
	cursors []uint64
}

func NewChannel[T any]() *Channel[T] {
	return &Channel[T]{events: make([]T, 0, 32)}
}

// RegisterReader returns a cursor positioned at the end of the stream.
func (c *Channel[T]) RegisterReader() ReaderID {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cursors = append(c.cursors, c.base+uint64(len(c.events)))
	return ReaderID(len(c.cursors) - 1)
}

// Write appends events to the stream.
func (c *Channel[T]) Write(events ...T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.cursors) == 0 {
		// Nobody could ever read them.
		return
	}
	c.events = append(c.events, events...)
}

// Read returns every event the reader has not seen yet and advances its
// cursor. The returned slice is owned by the caller.
func (c *Channel[T]) Read(r ReaderID) []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	cur := c.cursors[r]
	start := int(cur - c.base)
	out := make([]T, len(c.events)-start)
	copy(out, c.events[start:])
	c.cursors[r] = c.base + uint64(len(c.events))
	c.compact()
	return out
}

// Len returns the number of retained events.
func (c *Channel[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.events)
}

// compact drops the prefix every reader has consumed.
func (c *Channel[T]) compact() {
	low := c.cursors[0]
	for _, cur := range c.cursors[1:] {
		if cur < low {
			low = cur
		}
	}
	n := int(low - c.base)
	if n == 0 {
		return
	}
	var zero T
	for i := 0; i < n; i++ {
		c.events[i] = zero
	}
	c.events = append(c.events[:0], c.events[n:]...)
	c.base = low
}
