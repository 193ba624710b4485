package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// DocumentVersion is written into every persisted document.
const DocumentVersion = 1

// Store owns every record and is the unit of persistence: the whole map
// round-trips to a single JSON document on each save. It is built for one
// caller at a time (a protocol handler working through requests serially);
// the mutex only guards against accidental concurrent use inside the same
// process. Separate processes sharing the file race, last save wins; see
// DESIGN.md.
type Store struct {
	mu      sync.RWMutex
	path    string
	records map[string]*Record
	// Unknown top-level fields from the on-disk document, preserved verbatim
	// across load/save for forward compatibility.
	extra  map[string]json.RawMessage
	now          func() time.Time
	pretty       bool
	defaultLimit int
	log          *slog.Logger
}

// Option configures a Store at Open time.
type Option func(*Store)

// WithClock injects the time source. Tests use this to control expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.log = l }
}

// WithPrettySave makes saves indent the JSON document.
func WithPrettySave(pretty bool) Option {
	return func(s *Store) { s.pretty = pretty }
}

// WithDefaultLimit overrides the result cap applied when a query asks for no
// explicit limit.
func WithDefaultLimit(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.defaultLimit = n
		}
	}
}

// Open loads the document at path, or starts empty when the file does not
// exist. A document that exists but cannot be parsed is a hard error: the
// store must never treat corruption as "empty" and silently clobber data on
// the next save. Expired records are purged before Open returns.
func Open(path string, opts ...Option) (*Store, error) {
	s := &Store{
		path:         path,
		records:      make(map[string]*Record),
		extra:        make(map[string]json.RawMessage),
		now:          time.Now,
		defaultLimit: DefaultSearchLimit,
		log:          slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			s.log.Debug("no memory file, starting empty", "path", path)
			return s, nil
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	if err := s.decode(data); err != nil {
		return nil, err
	}

	purged := s.purgeExpired()
	s.log.Debug("memory loaded",
		"path", path,
		"records", len(s.records),
		"purged", purged)
	return s, nil
}

// Path returns the canonical document path.
func (s *Store) Path() string { return s.path }

func (s *Store) decode(data []byte) error {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return &ParseError{Msg: fmt.Sprintf("malformed memory file %s", s.path), Err: err}
	}

	if raw, ok := top["records"]; ok {
		if err := json.Unmarshal(raw, &s.records); err != nil {
			return &ParseError{Msg: fmt.Sprintf("malformed records in %s", s.path), Err: err}
		}
		delete(top, "records")
	}
	delete(top, "version")
	s.extra = top

	// Drop null entries and default missing namespaces (hand-edited files).
	for ck, r := range s.records {
		if r == nil {
			delete(s.records, ck)
			continue
		}
		if r.Namespace == "" {
			r.Namespace = DefaultNamespace
		}
	}
	return nil
}

func (s *Store) encode() ([]byte, error) {
	doc := make(map[string]any, len(s.extra)+2)
	for k, v := range s.extra {
		doc[k] = v
	}
	doc["version"] = DocumentVersion
	doc["records"] = s.records

	if s.pretty {
		return json.MarshalIndent(doc, "", "  ")
	}
	return json.Marshal(doc)
}

// Save serializes the full store and atomically replaces the document:
// write to a sibling temp file, then rename over the canonical path. A crash
// mid-save leaves the previous document intact.
func (s *Store) Save() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saveLocked()
}

func (s *Store) saveLocked() error {
	data, err := s.encode()
	if err != nil {
		return fmt.Errorf("encode memory document: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".mnemo-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename over %s: %w", s.path, err)
	}

	s.log.Debug("memory saved", "path", s.path, "records", len(s.records), "bytes", len(data))
	return nil
}

// purgeExpired removes every dead record from the map. Expiration is lazy:
// this runs on load and opportunistically inside mutating paths, never on a
// timer. Read paths additionally filter, so a record past its expiry is
// invisible even before a sweep lands. Caller must hold the write lock or
// have exclusive access.
func (s *Store) purgeExpired() int {
	now := s.now()
	removed := 0
	for ck, r := range s.records {
		if r.Expired(now) {
			delete(s.records, ck)
			removed++
		}
	}
	return removed
}

// upsert creates or overwrites the record at (namespace, key). CreatedAt is
// preserved across overwrites; everything else is replaced wholesale: tags
// and TTL from a previous version do not survive unless resupplied. A nil
// ttl means no expiry; a zero ttl expires the record immediately. Caller
// must hold the write lock.
func (s *Store) upsert(namespace, key, value string, tags []string, ttlSeconds *int64, at time.Time) (*Record, bool) {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	ck := CompositeKey(namespace, key)
	nowMillis := at.UnixMilli()

	rec := &Record{
		Key:       key,
		Namespace: namespace,
		Value:     value,
		Tags:      normalizeTags(tags),
		CreatedAt: nowMillis,
		UpdatedAt: nowMillis,
	}
	if ttlSeconds != nil {
		rec.ExpiresAt = at.Add(time.Duration(*ttlSeconds) * time.Second).UnixMilli()
	}

	prev, existed := s.records[ck]
	if existed && !prev.Expired(at) {
		rec.CreatedAt = prev.CreatedAt
		s.records[ck] = rec
		return rec, false
	}
	s.records[ck] = rec
	return rec, true
}

// get returns the live record or nil, lazily evicting it when expired.
// Caller must hold the write lock (eviction mutates the map).
func (s *Store) get(namespace, key string) *Record {
	ck := CompositeKey(namespace, key)
	r, ok := s.records[ck]
	if !ok {
		return nil
	}
	if r.Expired(s.now()) {
		delete(s.records, ck)
		return nil
	}
	return r
}

// allLive returns every non-expired record in composite-key order. The order
// is deterministic but not chronological; sorts downstream rely on it as the
// stable base order. Caller must hold at least the read lock.
func (s *Store) allLive() []*Record {
	now := s.now()
	keys := make([]string, 0, len(s.records))
	for ck, r := range s.records {
		if !r.Expired(now) {
			keys = append(keys, ck)
		}
	}
	sort.Strings(keys)

	out := make([]*Record, 0, len(keys))
	for _, ck := range keys {
		out = append(out, s.records[ck])
	}
	return out
}

// Len reports the number of live records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	now := s.now()
	n := 0
	for _, r := range s.records {
		if !r.Expired(now) {
			n++
		}
	}
	return n
}
