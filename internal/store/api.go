package store

import "fmt"

// Put upserts a single record and persists the store. The bool reports
// whether this was a fresh insert (true) or an overwrite (false), so callers
// can say "stored" vs "updated". On a save failure the in-memory change is
// rolled back; a Put that errors is not committed anywhere.
func (s *Store) Put(namespace, key, value string, tags []string, ttlSeconds *int64) (*Record, bool, error) {
	if key == "" {
		return nil, false, validationf("key is required")
	}
	if value == "" {
		return nil, false, validationf("value is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ck := CompositeKey(namespace, key)
	prev, hadPrev := s.records[ck]

	rec, created := s.upsert(namespace, key, value, tags, ttlSeconds, s.now())
	if err := s.saveLocked(); err != nil {
		if hadPrev {
			s.records[ck] = prev
		} else {
			delete(s.records, ck)
		}
		return nil, false, fmt.Errorf("persist store: %w", err)
	}
	return rec.clone(), created, nil
}

// Get returns the live record at (namespace, key), or ErrNotFound. An
// expired record is a miss and is evicted as a side effect; the eviction is
// not persisted on its own; the next save sweeps it to disk.
func (s *Store) Get(namespace, key string) (*Record, error) {
	if key == "" {
		return nil, validationf("key is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	r := s.get(namespace, key)
	if r == nil {
		return nil, ErrNotFound
	}
	return r.clone(), nil
}

// Delete removes the record at (namespace, key) and persists when something
// was actually removed. Deleting a missing or expired key is not an error;
// the bool reports whether a live record went away.
func (s *Store) Delete(namespace, key string) (bool, error) {
	if key == "" {
		return false, validationf("key is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	r := s.get(namespace, key)
	if r == nil {
		return false, nil
	}
	delete(s.records, CompositeKey(namespace, key))
	if err := s.saveLocked(); err != nil {
		s.records[CompositeKey(namespace, key)] = r
		return false, fmt.Errorf("persist store: %w", err)
	}
	return true, nil
}
