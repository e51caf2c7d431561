package store

import (
	"sort"
	"strconv"
	"sync"
)

// subscriberBuffer is the channel buffer of each subscription.
const subscriberBuffer = 100

// MemoryStore is an in-memory implementation of [Store].
//
// Updates are sent to subscribers without blocking; if a subscriber's buffer
// is full the update is dropped for that subscriber.
type MemoryStore struct {
	mu          sync.RWMutex
	statuses    map[string]WorkerStatus
	subscribers map[chan WorkerStatus]struct{}
	subMu       sync.RWMutex
}

// NewMemoryStore creates a new in-memory [Store] implementation.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		statuses:    make(map[string]WorkerStatus),
		subscribers: make(map[chan WorkerStatus]struct{}),
	}
}

// Update stores a [WorkerStatus] and notifies all subscribers.
func (m *MemoryStore) Update(status WorkerStatus) {
	m.mu.Lock()
	m.statuses[status.ServiceID] = status
	m.mu.Unlock()

	m.notifySubscribers(status)
}

// GetAll returns a snapshot of all stored statuses ordered by ServiceID.
// Numeric ids compare as numbers and sort before non-numeric ones.
func (m *MemoryStore) GetAll() []WorkerStatus {
	m.mu.RLock()
	results := make([]WorkerStatus, 0, len(m.statuses))
	for _, status := range m.statuses {
		results = append(results, status)
	}
	m.mu.RUnlock()

	sort.Slice(results, func(i, j int) bool {
		return serviceIDLess(results[i].ServiceID, results[j].ServiceID)
	})
	return results
}

func serviceIDLess(a, b string) bool {
	na, errA := strconv.ParseInt(a, 10, 64)
	nb, errB := strconv.ParseInt(b, 10, 64)
	switch {
	case errA == nil && errB == nil:
		return na < nb
	case errA == nil:
		return true
	case errB == nil:
		return false
	default:
		return a < b
	}
}

// Subscribe creates a new subscription and returns a channel for receiving updates.
//
// Caller must call [MemoryStore.Unsubscribe] when done to prevent resource leaks.
func (m *MemoryStore) Subscribe() <-chan WorkerStatus {
	ch := make(chan WorkerStatus, subscriberBuffer)

	m.subMu.Lock()
	m.subscribers[ch] = struct{}{}
	m.subMu.Unlock()

	return ch
}

// Unsubscribe removes a subscription and closes its channel.
// Safe to call multiple times or with an unknown channel.
func (m *MemoryStore) Unsubscribe(ch <-chan WorkerStatus) {
	m.subMu.Lock()
	defer m.subMu.Unlock()

	for subCh := range m.subscribers {
		if subCh == ch {
			delete(m.subscribers, subCh)
			close(subCh)
			break
		}
	}
}

// notifySubscribers sends the status to all active subscribers without blocking.
func (m *MemoryStore) notifySubscribers(status WorkerStatus) {
	m.subMu.RLock()
	defer m.subMu.RUnlock()

	for ch := range m.subscribers {
		select {
		case ch <- status:
		default:
			// subscriber is slow, drop the message
		}
	}
}
