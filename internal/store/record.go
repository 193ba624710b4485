package store

import (
	"strings"
	"time"
)

// DefaultNamespace is used whenever a caller omits the namespace.
const DefaultNamespace = "default"

// Record is the atomic unit of memory. The (Namespace, Key) pair is the only
// identity; timestamps are epoch milliseconds to match the on-disk document.
type Record struct {
	Key       string   `json:"key"`
	Namespace string   `json:"namespace"`
	Value     string   `json:"value"`
	Tags      []string `json:"tags,omitempty"`
	CreatedAt int64    `json:"createdAt"`
	UpdatedAt int64    `json:"updatedAt"`
	ExpiresAt int64    `json:"expiresAt,omitempty"`
}

// CompositeKey returns the map key under which the record is stored.
func CompositeKey(namespace, key string) string {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return namespace + ":" + key
}

// Expired reports whether the record is logically dead at the given instant.
func (r *Record) Expired(now time.Time) bool {
	return r.ExpiresAt != 0 && r.ExpiresAt <= now.UnixMilli()
}

// ExpiresWithin reports whether the record is still live at now but will
// expire before now+d.
func (r *Record) ExpiresWithin(now time.Time, d time.Duration) bool {
	if r.ExpiresAt == 0 || r.Expired(now) {
		return false
	}
	return r.ExpiresAt <= now.Add(d).UnixMilli()
}

// HasTag reports whether the record carries the given tag (exact match).
func (r *Record) HasTag(tag string) bool {
	for _, t := range r.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// HasAllTags reports whether every tag in want is present on the record.
func (r *Record) HasAllTags(want []string) bool {
	for _, t := range want {
		if !r.HasTag(t) {
			return false
		}
	}
	return true
}

// clone returns a copy so callers can't mutate store-owned records.
func (r *Record) clone() *Record {
	c := *r
	if r.Tags != nil {
		c.Tags = append([]string(nil), r.Tags...)
	}
	return &c
}

// normalizeTags trims whitespace and drops empties and duplicates while
// preserving first-seen order.
func normalizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// keyTokens splits a key into lowercase tokens on whitespace, hyphens and
// underscores, for relatedness scoring.
func keyTokens(key string) []string {
	fields := strings.FieldsFunc(strings.ToLower(key), func(r rune) bool {
		return r == '-' || r == '_' || r == ' ' || r == '\t' || r == '\n'
	})
	seen := make(map[string]bool, len(fields))
	out := fields[:0]
	for _, f := range fields {
		if f == "" || seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	return out
}

// EstimateTokens gives a rough LLM token count (~4 chars per token). Used for
// reporting only, never for correctness.
func EstimateTokens(s string) int {
	return len(s) / 4
}
