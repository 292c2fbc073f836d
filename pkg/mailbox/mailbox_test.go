package mailbox

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTakeEmpty(t *testing.T) {
	var m Mailbox[string]
	v, ok := m.Take()
	assert.False(t, ok)
	assert.Empty(t, v)
}

func TestPutThenTake(t *testing.T) {
	var m Mailbox[string]
	m.Put("12:00:00,600.00,300.00")
	v, ok := m.Take()
	assert.True(t, ok)
	assert.Equal(t, "12:00:00,600.00,300.00", v)
}

func TestSecondPutOverwritesFirst(t *testing.T) {
	var m Mailbox[string]
	m.Put("old")
	m.Put("new")
	v, ok := m.Take()
	assert.True(t, ok)
	assert.Equal(t, "new", v)
}

func TestTakeClearsSlot(t *testing.T) {
	var m Mailbox[int]
	m.Put(42)
	_, ok := m.Take()
	assert.True(t, ok)
	_, ok = m.Take()
	assert.False(t, ok, "slot must be empty after a take")
}

func TestPutIfEmpty(t *testing.T) {
	var m Mailbox[string]
	m.PutIfEmpty("returned")
	v, ok := m.Take()
	assert.True(t, ok)
	assert.Equal(t, "returned", v)

	m.Put("newer")
	m.PutIfEmpty("returned")
	v, ok = m.Take()
	assert.True(t, ok)
	assert.Equal(t, "newer", v, "a newer value must win over a returned one")
}

func TestConcurrentProducerConsumer(t *testing.T) {
	var m Mailbox[int]
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 1; i <= 1000; i++ {
			m.Put(i)
		}
	}()

	last := 0
	for last != 1000 {
		if v, ok := m.Take(); ok {
			// latest-wins: values only move forward
			assert.Greater(t, v, last)
			last = v
		}
	}
	wg.Wait()
}
