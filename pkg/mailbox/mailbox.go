// Package mailbox provides the single-slot handoff between the measuring
// task and the publishing task. The slot is lossy by design: only the
// latest unsent value is kept when the consumer falls behind.
package mailbox

import "sync"

type Mailbox[T any] struct {
	mu    sync.Mutex
	value T
	full  bool
}

// Put stores a value, overwriting any unconsumed prior value.
func (m *Mailbox[T]) Put(v T) {
	m.mu.Lock()
	m.value = v
	m.full = true
	m.mu.Unlock()
}

// PutIfEmpty stores a value only when the slot is empty. The publisher
// uses it to return an undelivered value without clobbering a newer one.
func (m *Mailbox[T]) PutIfEmpty(v T) {
	m.mu.Lock()
	if !m.full {
		m.value = v
		m.full = true
	}
	m.mu.Unlock()
}

// Take removes and returns the stored value. The second return is false
// when the slot is empty.
func (m *Mailbox[T]) Take() (T, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.full {
		var zero T
		return zero, false
	}
	v := m.value
	var zero T
	m.value = zero
	m.full = false
	return v, true
}
