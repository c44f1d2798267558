// Package storage persists the task list in a synchronous key-value store
// and validates whatever it reads back.
package storage

import (
	"fmt"
	"sync"
)

// KV is a synchronous string key-value store with limited capacity.
type KV interface {
	// Get returns the value at key and whether it exists.
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Remove(key string) error
}

// MemoryKV is a map-backed KV. A zero Quota means unlimited.
type MemoryKV struct {
	mu          sync.Mutex
	data        map[string]string
	quota       int
	unavailable error
	setErr      error
	writes      map[string]int
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{
		data:   make(map[string]string),
		writes: make(map[string]int),
	}
}

// NewUnavailableKV returns a KV on which every operation fails with cause.
// Used when the durable store cannot be opened.
func NewUnavailableKV(cause error) *MemoryKV {
	m := NewMemoryKV()
	m.SetUnavailable(cause)
	return m
}

// SetQuota limits the total bytes of keys plus values.
func (m *MemoryKV) SetQuota(bytes int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.quota = bytes
}

// SetUnavailable makes every operation fail with err; nil restores it.
func (m *MemoryKV) SetUnavailable(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unavailable = err
}

// FailSets makes Set (but not the availability probe key) fail with err.
func (m *MemoryKV) FailSets(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setErr = err
}

// Writes returns how many successful Set calls key has received.
func (m *MemoryKV) Writes(key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes[key]
}

func (m *MemoryKV) Get(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.unavailable != nil {
		return "", false, m.unavailable
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *MemoryKV) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.unavailable != nil {
		return m.unavailable
	}
	if m.setErr != nil && key != probeKey {
		return m.setErr
	}
	if m.quota > 0 {
		used := 0
		for k, v := range m.data {
			if k != key {
				used += len(k) + len(v)
			}
		}
		if used+len(key)+len(value) > m.quota {
			return fmt.Errorf("set %q: %w", key, ErrQuotaExceeded)
		}
	}
	m.data[key] = value
	m.writes[key]++
	return nil
}

func (m *MemoryKV) Remove(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.unavailable != nil {
		return m.unavailable
	}
	delete(m.data, key)
	return nil
}
