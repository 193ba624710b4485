package store

import (
	"encoding/json"
	"fmt"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/google/uuid"
)

// BulkEntry is one record in a BulkPut batch.
type BulkEntry struct {
	Namespace string   `json:"namespace,omitempty"`
	Key       string   `json:"key"`
	Value     string   `json:"value"`
	Tags      []string `json:"tags,omitempty"`
}

// BulkPut upserts every entry with a single shared timestamp, so the batch
// reads as one moment in time, and persists once at the end. The whole batch
// is validated before anything is touched.
func (s *Store) BulkPut(entries []BulkEntry) (int, error) {
	if len(entries) == 0 {
		return 0, validationf("at least one entry is required")
	}
	for i, e := range entries {
		if e.Key == "" {
			return 0, validationf("entry %d: key is required", i)
		}
		if e.Value == "" {
			return 0, validationf("entry %d: value is required", i)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	at := s.now()
	undo := s.snapshot()

	for _, e := range entries {
		s.upsert(e.Namespace, e.Key, e.Value, e.Tags, nil, at)
	}
	if err := s.saveLocked(); err != nil {
		s.restore(undo)
		return 0, fmt.Errorf("persist store: %w", err)
	}

	s.log.Debug("bulk store", "entries", len(entries))
	return len(entries), nil
}

// BulkDelete removes every live record matched by namespace and/or a glob
// pattern over the bare key. At least one selector is required; a bare
// namespace wipes that namespace, a bare pattern sweeps all namespaces.
// Returns how many records were removed; one save at the end.
func (s *Store) BulkDelete(namespace, keyPattern string) (int, error) {
	if namespace == "" && keyPattern == "" {
		return 0, validationf("either namespace or key pattern is required")
	}
	if keyPattern != "" {
		if !doublestar.ValidatePattern(keyPattern) {
			return 0, validationf("invalid key pattern %q", keyPattern)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	var doomed []string
	for ck, r := range s.records {
		if r.Expired(now) {
			continue
		}
		if namespace != "" && r.Namespace != namespace {
			continue
		}
		if keyPattern != "" {
			ok, err := doublestar.Match(keyPattern, r.Key)
			if err != nil || !ok {
				continue
			}
		}
		doomed = append(doomed, ck)
	}
	if len(doomed) == 0 {
		return 0, nil
	}

	undo := s.snapshot()
	for _, ck := range doomed {
		delete(s.records, ck)
	}
	if err := s.saveLocked(); err != nil {
		s.restore(undo)
		return 0, fmt.Errorf("persist store: %w", err)
	}

	s.log.Debug("bulk delete", "namespace", namespace, "pattern", keyPattern, "removed", len(doomed))
	return len(doomed), nil
}

// Snapshot is the transportable export format for backup and migration.
type Snapshot struct {
	Version    int       `json:"version"`
	SnapshotID string    `json:"snapshotId"`
	ExportedAt int64     `json:"exportedAt"`
	Records    []*Record `json:"records"`
}

// Export serializes every live record (optionally restricted to one
// namespace) into a Snapshot. Read-only; the store is not mutated.
func (s *Store) Export(namespace string) (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := &Snapshot{
		Version:    DocumentVersion,
		SnapshotID: uuid.NewString(),
		ExportedAt: s.now().UnixMilli(),
		Records:    []*Record{},
	}
	for _, r := range s.allLive() {
		if namespace != "" && r.Namespace != namespace {
			continue
		}
		snap.Records = append(snap.Records, r.clone())
	}
	return snap, nil
}

// Import replays a Snapshot into the store. Records are taken verbatim:
// imported timestamps, tags and expirations are preserved, not recomputed.
// When overwrite is false an existing live (namespace, key) wins and the
// incoming record is counted as skipped. A malformed payload rejects the
// whole import with a ParseError and zero side effects; one save at the end.
func (s *Store) Import(payload []byte, overwrite bool) (imported, skipped int, err error) {
	var snap Snapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return 0, 0, &ParseError{Msg: "malformed import payload", Err: err}
	}
	if snap.Records == nil {
		return 0, 0, &ParseError{Msg: "malformed import payload: missing records list"}
	}
	for i, r := range snap.Records {
		if r == nil || r.Key == "" {
			return 0, 0, &ParseError{Msg: fmt.Sprintf("malformed import payload: record %d has no key", i)}
		}
		if r.Value == "" {
			return 0, 0, &ParseError{Msg: fmt.Sprintf("malformed import payload: record %d has no value", i)}
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	undo := s.snapshot()

	for _, r := range snap.Records {
		in := r.clone()
		if in.Namespace == "" {
			in.Namespace = DefaultNamespace
		}
		if in.CreatedAt == 0 {
			in.CreatedAt = now.UnixMilli()
		}
		if in.UpdatedAt == 0 {
			in.UpdatedAt = in.CreatedAt
		}
		in.Tags = normalizeTags(in.Tags)

		ck := CompositeKey(in.Namespace, in.Key)
		if existing, ok := s.records[ck]; ok && !existing.Expired(now) && !overwrite {
			skipped++
			continue
		}
		s.records[ck] = in
		imported++
	}
	s.purgeExpired()

	if err := s.saveLocked(); err != nil {
		s.restore(undo)
		return 0, 0, fmt.Errorf("persist store: %w", err)
	}

	s.log.Debug("import", "imported", imported, "skipped", skipped, "overwrite", overwrite)
	return imported, skipped, nil
}

// snapshot shallow-copies the record map for rollback when a save fails
// after an in-memory mutation. Records themselves are never mutated in
// place, so sharing pointers is safe.
func (s *Store) snapshot() map[string]*Record {
	undo := make(map[string]*Record, len(s.records))
	for ck, r := range s.records {
		undo[ck] = r
	}
	return undo
}

// restore swaps a snapshot back in.
func (s *Store) restore(undo map[string]*Record) {
	s.records = undo
}
