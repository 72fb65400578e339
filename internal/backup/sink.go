// Package backup exports the whole clinic document to an external sink
// on a rolling 24 hour schedule. Everything here is best-effort: a
// failed backup is logged and swallowed, never surfaced to the CRUD
// operation that triggered the check.
package backup

import (
	"context"
	"sync"
)

// Sink receives full-document exports.
type Sink interface {
	// Put stores data under key, overwriting any previous object.
	Put(ctx context.Context, key string, data []byte) error
	// Name identifies the sink in logs ("fs", "s3", "memory").
	Name() string
}

// MemorySink collects backups in memory for tests.
type MemorySink struct {
	mu      sync.Mutex
	objects map[string][]byte

	// PutErr, when set, is returned by every Put.
	PutErr error
}

// NewMemorySink returns an empty in-memory sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{objects: make(map[string][]byte)}
}

func (m *MemorySink) Put(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.PutErr != nil {
		return m.PutErr
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	m.objects[key] = cp
	return nil
}

func (m *MemorySink) Name() string { return "memory" }

// Objects returns a snapshot of everything stored so far.
func (m *MemorySink) Objects() map[string][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string][]byte, len(m.objects))
	for k, v := range m.objects {
		out[k] = v
	}
	return out
}
