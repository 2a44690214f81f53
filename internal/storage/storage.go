package storage

import (
	"errors"
	"sync"
)

// Durable record names
const (
	KeyTasks    = "tasks"
	KeyUsername = "username"
	KeyTheme    = "theme"
)

// ErrClosed is returned by backends after Close
var ErrClosed = errors.New("storage closed")

// Storage is the durable key/value port the task store writes through.
// Values are opaque strings; a missing key is reported with ok=false, not an error.
type Storage interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
	Close() error
}

// Memory is an in-process Storage, mostly for tests
type Memory struct {
	mu      sync.RWMutex
	records map[string]string
	closed  bool

	// FailSet makes every Set return this error when non-nil
	FailSet error
}

// NewMemory returns an empty in-memory backend
func NewMemory() *Memory {
	return &Memory{records: make(map[string]string)}
}

func (m *Memory) Get(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return "", false, ErrClosed
	}
	v, ok := m.records[key]
	return v, ok, nil
}

func (m *Memory) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	if m.FailSet != nil {
		return m.FailSet
	}
	m.records[key] = value
	return nil
}

func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
