// Package state tracks the last observed status per monitored target and
// detects notification-worthy transitions between consecutive observations.
//
// Statuses are handled as plain strings to keep this package decoupled from
// the public downwatch.Status type; the root package converts at the
// boundary.
package state

import "sync"

// Initial is the sentinel status for a target that has never been
// observed. It is distinct from every classifier output, so a target's
// first real observation replaces it without registering as a transition.
const Initial = "initial"

// Store defines the interface for tracking the last observed status per
// target URL.
//
// Store implementations must be safe for concurrent access. Entries are
// created by [Store.Init] at loop start, mutated only through
// [Store.Set] after a successful classification, and never deleted during
// the process lifetime.
type Store interface {
	// Init creates an entry for each URL set to [Initial]. Existing
	// entries are reset.
	Init(urls []string)

	// Get returns the stored status for a URL. Unregistered URLs report
	// [Initial].
	Get(url string) string

	// Set stores a new status for a URL, replacing any previous value.
	Set(url, status string)

	// Snapshot returns a copy of the full URL → status mapping.
	Snapshot() map[string]string
}

// MemoryStore is an in-memory implementation of [Store].
//
// MemoryStore holds only the latest status per URL; history is not kept
// and nothing survives process exit.
type MemoryStore struct {
	mu       sync.RWMutex
	statuses map[string]string
}

// NewMemoryStore creates an empty in-memory [Store] implementation.
// The store is immediately ready for use. No cleanup is required when done.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		statuses: make(map[string]string),
	}
}

// Init creates an [Initial] entry for each URL, resetting any existing
// entries.
func (m *MemoryStore) Init(urls []string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range urls {
		m.statuses[u] = Initial
	}
}

// Get returns the stored status for a URL, or [Initial] if the URL was
// never registered.
func (m *MemoryStore) Get(url string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	status, ok := m.statuses[url]
	if !ok {
		return Initial
	}
	return status
}

// Set stores a status for a URL, replacing any previous value.
func (m *MemoryStore) Set(url, status string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.statuses[url] = status
}

// Snapshot returns a copy of the full URL → status mapping.
// Modifications to the returned map do not affect the store.
func (m *MemoryStore) Snapshot() map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cp := make(map[string]string, len(m.statuses))
	for k, v := range m.statuses {
		cp[k] = v
	}
	return cp
}
