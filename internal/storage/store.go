package storage

// Store is the local map backing the KV server side of a node (C2). It is
// single-threaded: the node that owns a Store never shares it, so no
// locking is needed (§5 "Shared resources").
type Store interface {
	// Create fails iff key already exists.
	Create(key, value string) bool
	// Read never fails; an empty string means the key is absent.
	Read(key string) string
	// Update fails iff key is absent.
	Update(key, value string) bool
	// Delete fails iff key is absent.
	Delete(key string) bool
	// Keys returns every key currently stored, for the stabilization scan
	// (§4.5). Order is unspecified.
	Keys() []string
}

// InMemoryStore is the trivial single-owner map implementation of Store.
type InMemoryStore struct {
	data map[string]string
}

// NewInMemoryStore creates an empty store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{data: make(map[string]string)}
}

// Create inserts key=value, failing if key is already present.
func (s *InMemoryStore) Create(key, value string) bool {
	if _, exists := s.data[key]; exists {
		return false
	}
	s.data[key] = value
	return true
}

// Read returns the value for key, or "" if absent.
func (s *InMemoryStore) Read(key string) string {
	return s.data[key]
}

// Update overwrites key's value, failing if key is absent.
func (s *InMemoryStore) Update(key, value string) bool {
	if _, exists := s.data[key]; !exists {
		return false
	}
	s.data[key] = value
	return true
}

// Delete removes key, failing if key is absent.
func (s *InMemoryStore) Delete(key string) bool {
	if _, exists := s.data[key]; !exists {
		return false
	}
	delete(s.data, key)
	return true
}

// Keys returns a snapshot of every stored key.
func (s *InMemoryStore) Keys() []string {
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	return keys
}
