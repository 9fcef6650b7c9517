package kv

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/siivi-app/siivi-server/pkg/errx"
)

// Store is the device-scoped key-value port. It stands in for the browser's
// localStorage: synchronous get/set/remove by string key, plain serialized
// records. Implementations must treat a corrupted record as absent so callers
// can reinitialize instead of failing.
type Store interface {
	// Get deserializes the record under key into dest.
	// Returns ErrKeyNotFound when the key is absent or unreadable.
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any) error
	Delete(ctx context.Context, key string) error
}

var ErrRegistry = errx.NewRegistry("KV")

var (
	CodeKeyNotFound = ErrRegistry.Register("KEY_NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "Key not found")
)

func ErrKeyNotFound() *errx.Error {
	return ErrRegistry.New(CodeKeyNotFound)
}

// IsNotFound reporta si err corresponde a una clave ausente
func IsNotFound(err error) bool {
	return errx.IsCode(err, CodeKeyNotFound)
}

// ============================================================================
// In-memory implementation
// ============================================================================

// MemoryStore implementación en memoria del Store
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string][]byte
}

// NewMemoryStore crea un nuevo store en memoria
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string][]byte),
	}
}

func (s *MemoryStore) Get(ctx context.Context, key string, dest any) error {
	s.mu.RLock()
	raw, ok := s.records[key]
	s.mu.RUnlock()

	if !ok {
		return ErrKeyNotFound().WithDetail("key", key)
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		// Corrupted record: callers reinitialize from scratch.
		return ErrKeyNotFound().WithDetail("key", key).WithCause(err)
	}
	return nil
}

func (s *MemoryStore) Set(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return errx.Wrap(err, "failed to marshal record", errx.TypeInternal).WithDetail("key", key)
	}

	s.mu.Lock()
	s.records[key] = raw
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	delete(s.records, key)
	s.mu.Unlock()
	return nil
}

// SetRaw stores an unparsed payload. Test helper for simulating corruption.
func (s *MemoryStore) SetRaw(key string, raw []byte) {
	s.mu.Lock()
	s.records[key] = raw
	s.mu.Unlock()
}
