package tui

import (
	"sync"

	"queuewatch/internal/models"
)

// Recent is a fixed-capacity, thread-safe ring of the latest samples shown
// by the view. It is display state only.
type Recent struct {
	mu       sync.RWMutex
	buf      []models.Sample
	capacity int
	head     int // next write position
	count    int // number of valid entries
	seen     uint64
}

// NewRecent creates a ring holding up to capacity samples.
func NewRecent(capacity int) *Recent {
	if capacity <= 0 {
		capacity = 1
	}
	return &Recent{
		buf:      make([]models.Sample, capacity),
		capacity: capacity,
	}
}

// Add stores s, overwriting the oldest sample when the ring is full.
func (r *Recent) Add(s models.Sample) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.buf[r.head] = s
	r.head = (r.head + 1) % r.capacity
	if r.count < r.capacity {
		r.count++
	}
	r.seen++
}

// All returns the samples currently held, most recent first.
func (r *Recent) All() []models.Sample {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]models.Sample, 0, r.count)
	for i := 0; i < r.count; i++ {
		idx := (r.head - 1 - i + r.capacity) % r.capacity
		result = append(result, r.buf[idx])
	}
	return result
}

// Seen returns how many samples have been added since creation.
func (r *Recent) Seen() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.seen
}
