// Package storage is the single point of contact with the host's
// durable key-value slot. The Gateway enforces the capacity policy and
// exposes size diagnostics; Slot implementations adapt the gateway to
// whatever durable medium the deployment provides (a plain file, an
// embedded SQLite database, a Postgres table, or memory for tests).
package storage

import (
	"context"
	"sync"
)

// Slot keys. The document itself and the auto-backup bookkeeping live
// side by side in the same slot, mirroring the sibling keys of the
// original storage layout.
const (
	KeyDocument       = "document"
	KeyLastAutoBackup = "lastAutoBackup"
)

// Slot is a tiny durable KV surface: named byte payloads with
// read-your-writes semantics. One slot holds one clinic's data.
type Slot interface {
	// Read returns the payload for key, with ok=false when the key has
	// never been written.
	Read(ctx context.Context, key string) (data []byte, ok bool, err error)
	Write(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// MemorySlot is an in-process Slot used by tests and the "memory"
// storage driver.
type MemorySlot struct {
	mu   sync.Mutex
	data map[string][]byte

	// WriteErr, when set, is returned by every Write. Tests use it to
	// simulate the host refusing a write (quota).
	WriteErr error
}

// NewMemorySlot returns an empty in-memory slot.
func NewMemorySlot() *MemorySlot {
	return &MemorySlot{data: make(map[string][]byte)}
}

func (m *MemorySlot) Read(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return cp, true, nil
}

func (m *MemorySlot) Write(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.WriteErr != nil {
		return m.WriteErr
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	m.data[key] = cp
	return nil
}

func (m *MemorySlot) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *MemorySlot) Close() error { return nil }
