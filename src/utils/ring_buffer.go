package utils

import (
	"sync"

	"unblocker/src/models"
)

// -----------------------------------------------------------------------------
// RingBuffer is a fixed-size circular buffer of attempt records.
// Safe for concurrent use.
// -----------------------------------------------------------------------------

type RingBuffer struct {
	data     []models.MAttemptRecord
	capacity int
	index    int // Next write position
	size     int // Current number of elements
	mu       sync.RWMutex
}

// -----------------------------------------------------------------------------

// NewRingBuffer creates a new buffer with fixed capacity
func NewRingBuffer(capacity int) *RingBuffer {
	if capacity <= 0 {
		capacity = 100
	}

	return &RingBuffer{
		data:     make([]models.MAttemptRecord, capacity),
		capacity: capacity,
	}
}

// -----------------------------------------------------------------------------

// Append adds a record, overwriting the oldest when full
func (rb *RingBuffer) Append(record models.MAttemptRecord) {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	rb.data[rb.index] = record
	rb.index = (rb.index + 1) % rb.capacity

	// Update size (never exceeds capacity)
	if rb.size < rb.capacity {
		rb.size++
	}
}

// -----------------------------------------------------------------------------

// GetLatest returns up to n records, newest first
func (rb *RingBuffer) GetLatest(n int) []models.MAttemptRecord {
	rb.mu.RLock()
	defer rb.mu.RUnlock()

	if rb.size == 0 || n <= 0 {
		return []models.MAttemptRecord{}
	}

	count := n
	if n > rb.size {
		count = rb.size
	}

	result := make([]models.MAttemptRecord, count)

	// Latest data is at index-1
	for i := 0; i < count; i++ {
		idx := (rb.index - 1 - i + rb.capacity) % rb.capacity
		result[i] = rb.data[idx]
	}

	return result
}

// -----------------------------------------------------------------------------

// Size returns current number of elements
func (rb *RingBuffer) Size() int {
	rb.mu.RLock()
	defer rb.mu.RUnlock()
	return rb.size
}

// -----------------------------------------------------------------------------

// Capacity returns buffer capacity (fixed)
func (rb *RingBuffer) Capacity() int {
	return rb.capacity
}
