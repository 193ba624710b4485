package store

import (
	"sort"
	"strings"
	"time"
)

// DefaultSearchLimit caps result counts when the caller does not ask for one.
const DefaultSearchLimit = 10

// Sort orders accepted by Search.
const (
	SortRecency   = "recency"
	SortRelevance = "relevance"
)

// relatedWindow is the createdAt proximity window for relatedness scoring.
const relatedWindow = time.Hour

// SearchOptions filter and order a Search. Zero values mean "no filter":
// empty Namespace searches everywhere, empty Tags requires nothing, empty
// Query keeps every live record.
type SearchOptions struct {
	Query     string
	Namespace string
	Tags      []string
	Limit     int
	SortBy    string
}

// Search returns live records matching every given filter. Tags use AND
// semantics: each listed tag must be present. The keyword matches key or
// value as a case-insensitive substring.
//
// SortRecency orders by updatedAt descending. SortRelevance is the coarse
// tiering from the original servers: exact case-insensitive key match, then
// key-contains-query, then value-only matches, stable within each tier.
func (s *Store) Search(opts SearchOptions) ([]*Record, error) {
	switch opts.SortBy {
	case "", SortRecency, SortRelevance:
	default:
		return nil, validationf("sortBy must be %q or %q", SortRecency, SortRelevance)
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = s.defaultLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	query := strings.ToLower(opts.Query)
	var matches []*Record
	for _, r := range s.allLive() {
		if opts.Namespace != "" && r.Namespace != opts.Namespace {
			continue
		}
		if !r.HasAllTags(opts.Tags) {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(r.Key), query) &&
			!strings.Contains(strings.ToLower(r.Value), query) {
			continue
		}
		matches = append(matches, r)
	}

	if opts.SortBy == SortRelevance && query != "" {
		tier := func(r *Record) int {
			k := strings.ToLower(r.Key)
			switch {
			case k == query:
				return 0
			case strings.Contains(k, query):
				return 1
			default:
				return 2
			}
		}
		sort.SliceStable(matches, func(i, j int) bool {
			return tier(matches[i]) < tier(matches[j])
		})
	} else {
		sort.SliceStable(matches, func(i, j int) bool {
			return matches[i].UpdatedAt > matches[j].UpdatedAt
		})
	}

	if len(matches) > limit {
		matches = matches[:limit]
	}
	out := make([]*Record, len(matches))
	for i, r := range matches {
		out[i] = r.clone()
	}
	return out, nil
}

// Listing is the cheap grouped-by-namespace view: keys only, no payloads.
type Listing struct {
	Namespaces map[string][]string `json:"namespaces"`
	Total      int                 `json:"total"`
}

// List returns every live key grouped by namespace, optionally restricted to
// one namespace and/or a tag AND-filter. This is the first-class "give me
// everything in this namespace" path and never runs the keyword machinery.
func (s *Store) List(namespace string, tags []string) (*Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l := &Listing{Namespaces: make(map[string][]string)}
	for _, r := range s.allLive() {
		if namespace != "" && r.Namespace != namespace {
			continue
		}
		if !r.HasAllTags(tags) {
			continue
		}
		l.Namespaces[r.Namespace] = append(l.Namespaces[r.Namespace], r.Key)
		l.Total++
	}
	for _, keys := range l.Namespaces {
		sort.Strings(keys)
	}
	return l, nil
}

// Related pairs a record with its relatedness score against an anchor.
type Related struct {
	Record *Record `json:"record"`
	Score  int     `json:"score"`
}

// FindRelated scores every other live record against the anchor at
// (namespace, key): +2 same namespace, +3 per shared tag, +2 per shared key
// token (split on whitespace, hyphens, underscores, case-insensitive), +1
// when createdAt falls within an hour of the anchor's. Zero scorers are
// never related; the rest come back by descending score, stable within ties,
// truncated to limit.
func (s *Store) FindRelated(namespace, key string, limit int) ([]Related, error) {
	if key == "" {
		return nil, validationf("key is required")
	}
	if limit <= 0 {
		limit = s.defaultLimit
	}

	// Write lock: looking up the anchor may lazily evict it.
	s.mu.Lock()
	defer s.mu.Unlock()

	anchor := s.get(namespace, key)
	if anchor == nil {
		return nil, ErrNotFound
	}

	anchorTokens := keyTokens(anchor.Key)
	anchorCK := CompositeKey(anchor.Namespace, anchor.Key)

	var out []Related
	for _, r := range s.allLive() {
		if CompositeKey(r.Namespace, r.Key) == anchorCK {
			continue
		}
		score := relatednessScore(anchor, r, anchorTokens)
		if score == 0 {
			continue
		}
		out = append(out, Related{Record: r.clone(), Score: score})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func relatednessScore(anchor, candidate *Record, anchorTokens []string) int {
	score := 0
	if candidate.Namespace == anchor.Namespace {
		score += 2
	}
	for _, t := range candidate.Tags {
		if anchor.HasTag(t) {
			score += 3
		}
	}
	candTokens := keyTokens(candidate.Key)
	for _, tok := range candTokens {
		for _, at := range anchorTokens {
			if tok == at {
				score += 2
				break
			}
		}
	}
	delta := anchor.CreatedAt - candidate.CreatedAt
	if delta < 0 {
		delta = -delta
	}
	if delta <= relatedWindow.Milliseconds() {
		score++
	}
	return score
}
