package storage

import (
	"errors"
	"fmt"
	json "github.com/goccy/go-json"
	"sort"
	"sync"
)

// Well-known keys.
const (
	KeyUserRole     = "userRole"
	KeyUserPlots    = "user_plots"
	KeyWeatherCache = "weatherCache"
)

var ErrQuotaExceeded = errors.New("storage quota exceeded")

type StoreInterface interface {
	Save(key string, value any) error
	Load(key string, dest any) bool
	Remove(key string)
	Has(key string) bool
	Keys() []string
	Size() int
	Snapshot() map[string]json.RawMessage
	Replace(data map[string]json.RawMessage)
}

// Store is a string-keyed store of JSON documents, the process-local
// equivalent of a browser origin's localStorage.
type Store struct {
	mu    sync.RWMutex
	data  map[string][]byte
	size  int
	quota int
}

// NewStore creates an empty store. quota bounds the combined byte length of
// keys and values; zero or negative disables the bound.
func NewStore(quota int) *Store {
	return &Store{
		data:  make(map[string][]byte),
		quota: quota,
	}
}

func (s *Store) Save(key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %q: %w", key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	newSize := s.size + len(key) + len(raw)
	if old, ok := s.data[key]; ok {
		newSize -= len(key) + len(old)
	}
	if s.quota > 0 && newSize > s.quota {
		return fmt.Errorf("save %q (%d bytes): %w", key, len(raw), ErrQuotaExceeded)
	}

	s.data[key] = raw
	s.size = newSize
	return nil
}

// Load decodes the value stored under key into dest. It reports false when
// the key is unset or its stored text does not decode into dest.
func (s *Store) Load(key string, dest any) bool {
	s.mu.RLock()
	raw, ok := s.data[key]
	s.mu.RUnlock()
	if !ok {
		return false
	}
	return json.Unmarshal(raw, dest) == nil
}

func (s *Store) Remove(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.data[key]; ok {
		s.size -= len(key) + len(old)
		delete(s.data, key)
	}
}

func (s *Store) Has(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.data[key]
	return ok
}

func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (s *Store) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.size
}

// Snapshot returns a copy of the stored documents for persistence.
func (s *Store) Snapshot() map[string]json.RawMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]json.RawMessage, len(s.data))
	for k, v := range s.data {
		cp := make([]byte, len(v))
		copy(cp, v)
		out[k] = cp
	}
	return out
}

// Replace swaps the whole content, used when restoring from disk. The quota
// is not enforced here so a restored store is never truncated.
func (s *Store) Replace(data map[string]json.RawMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = make(map[string][]byte, len(data))
	s.size = 0
	for k, v := range data {
		s.data[k] = v
		s.size += len(k) + len(v)
	}
}
